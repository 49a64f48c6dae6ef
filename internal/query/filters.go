// Package query builds store-independent query plans from user-supplied filters.
package query

import (
	"fmt"
	"strconv"

	"conferencecentral/internal/domain"
)

var operators = map[string]domain.Operator{
	"EQ":   domain.OpEQ,
	"GT":   domain.OpGT,
	"GTEQ": domain.OpGTEQ,
	"LT":   domain.OpLT,
	"LTEQ": domain.OpLTEQ,
	"NE":   domain.OpNE,
}

var fields = map[string]string{
	"CITY":          domain.PropCity,
	"TOPIC":         domain.PropTopics,
	"MONTH":         domain.PropMonth,
	"MAX_ATTENDEES": domain.PropMaxAttendees,
}

var numericFields = map[string]bool{
	domain.PropMonth:        true,
	domain.PropMaxAttendees: true,
}

// CompileConferenceFilters turns filters into a plan over conferences. Predicates are
// ANDed in input order. At most one distinct property may carry an inequality; when one
// does, results are ordered by it first and by name second, otherwise by name only.
func CompileConferenceFilters(filters []domain.QueryFilter) (domain.QueryPlan, error) {
	var inequalityProp string
	where := make(domain.Conjunction, 0, len(filters))

	for _, f := range filters {
		prop, ok := fields[f.Field]
		if !ok {
			return domain.QueryPlan{}, fmt.Errorf("%w: field %q", domain.ErrInvalidFilter, f.Field)
		}
		op, ok := operators[f.Operator]
		if !ok {
			return domain.QueryPlan{}, fmt.Errorf("%w: operator %q", domain.ErrInvalidFilter, f.Operator)
		}

		if op.IsInequality() {
			if inequalityProp != "" && inequalityProp != prop {
				return domain.QueryPlan{}, fmt.Errorf("%w: %s and %s", domain.ErrMultipleInequalityFields, inequalityProp, prop)
			}
			inequalityProp = prop
		}

		var value any = f.Value
		if numericFields[prop] {
			n, err := strconv.Atoi(f.Value)
			if err != nil {
				return domain.QueryPlan{}, fmt.Errorf("%w: %s=%q", domain.ErrInvalidValue, f.Field, f.Value)
			}
			value = n
		}
		where = append(where, domain.Predicate{Property: prop, Operator: op, Value: value})
	}

	order := []string{domain.PropName}
	if inequalityProp != "" {
		order = []string{inequalityProp, domain.PropName}
	}
	return domain.QueryPlan{
		Kind:  domain.KindConference,
		Where: []domain.Conjunction{where},
		Order: order,
	}, nil
}
