package domain

// Operator is a comparison in a query predicate.
type Operator string

const (
	OpEQ   Operator = "="
	OpGT   Operator = ">"
	OpGTEQ Operator = ">="
	OpLT   Operator = "<"
	OpLTEQ Operator = "<="
	OpNE   Operator = "!="
)

// IsInequality reports whether the operator constrains a range rather than a single value.
func (o Operator) IsInequality() bool {
	return o != OpEQ
}

// Queryable property names.
const (
	PropCity                 = "city"
	PropTopics               = "topics"
	PropMonth                = "month"
	PropMaxAttendees         = "maxAttendees"
	PropName                 = "name"
	PropSeatsAvailable       = "seatsAvailable"
	PropWebsafeConferenceKey = "websafeConferenceKey"
	PropStartTime            = "startTime"
	PropTypeOfSession        = "typeOfSession"
)

// Predicate compares one property with a value.
type Predicate struct {
	Property string
	Operator Operator
	Value    any
}

// Conjunction is a list of predicates that must all hold.
type Conjunction []Predicate

// QueryPlan is a store-independent query over one kind.
// Where is in disjunctive normal form: a row matches when any conjunction holds.
// A single empty conjunction matches every row; a nil or empty Where matches none.
type QueryPlan struct {
	Kind  Kind
	Where []Conjunction
	Order []string
}

// MatchAll returns the plan that selects every entity of kind under the given ordering.
func MatchAll(kind Kind, order ...string) QueryPlan {
	return QueryPlan{Kind: kind, Where: []Conjunction{{}}, Order: order}
}

// QueryFilter is a user-supplied (field, operator, value) triple, e.g. ("MONTH", "GT", "6").
type QueryFilter struct {
	Field    string
	Operator string
	Value    string
}
