package postgres

import (
	"errors"
	"fmt"
	"strings"

	"conferencecentral/internal/domain"
)

// errNoBranches marks a plan with no disjuncts; it selects nothing and is never sent to the database.
var errNoBranches = errors.New("plan has no branches")

type column struct {
	name  string
	array bool
}

// orderExpr is the sort key of the column. A list sorts ascending by its smallest element.
func (c column) orderExpr() string {
	if c.array {
		return fmt.Sprintf("(SELECT min(v) FROM unnest(%s) AS v)", c.name)
	}
	return c.name
}

// sqlOperators maps plan operators to SQL for scalar columns.
var sqlOperators = map[domain.Operator]string{
	domain.OpEQ:   "=",
	domain.OpGT:   ">",
	domain.OpGTEQ: ">=",
	domain.OpLT:   "<",
	domain.OpLTEQ: "<=",
	domain.OpNE:   "<>",
}

// flipped maps plan operators to SQL for array columns, where the value sits on the left
// of ANY(col): "col > v" for some element becomes "v < ANY(col)".
var flipped = map[domain.Operator]string{
	domain.OpEQ:   "=",
	domain.OpGT:   "<",
	domain.OpGTEQ: "<=",
	domain.OpLT:   ">",
	domain.OpLTEQ: ">=",
	domain.OpNE:   "<>",
}

// renderPlan renders the WHERE and ORDER BY clauses of plan against columns.
// Placeholders are numbered from 1.
func renderPlan(plan domain.QueryPlan, kind domain.Kind, columns map[string]column) (string, []any, error) {
	if plan.Kind != kind {
		return "", nil, fmt.Errorf("%w: plan over %s run against %s", domain.ErrInvalidInput, plan.Kind, kind)
	}
	if len(plan.Where) == 0 {
		return "", nil, errNoBranches
	}

	var args []any
	branches := make([]string, 0, len(plan.Where))
	for _, conj := range plan.Where {
		if len(conj) == 0 {
			branches = append(branches, "TRUE")
			continue
		}
		terms := make([]string, 0, len(conj))
		for _, p := range conj {
			col, ok := columns[p.Property]
			if !ok {
				return "", nil, fmt.Errorf("%w: property %q cannot be queried", domain.ErrInvalidInput, p.Property)
			}
			args = append(args, p.Value)
			if col.array {
				op, ok := flipped[p.Operator]
				if !ok {
					return "", nil, fmt.Errorf("%w: operator %q", domain.ErrInvalidFilter, p.Operator)
				}
				terms = append(terms, fmt.Sprintf("$%d %s ANY(%s)", len(args), op, col.name))
				continue
			}
			op, ok := sqlOperators[p.Operator]
			if !ok {
				return "", nil, fmt.Errorf("%w: operator %q", domain.ErrInvalidFilter, p.Operator)
			}
			terms = append(terms, fmt.Sprintf("%s %s $%d", col.name, op, len(args)))
		}
		branches = append(branches, "("+strings.Join(terms, " AND ")+")")
	}

	clause := "WHERE " + strings.Join(branches, " OR ")
	if len(plan.Order) > 0 {
		order := make([]string, 0, len(plan.Order))
		for _, prop := range plan.Order {
			col, ok := columns[prop]
			if !ok {
				return "", nil, fmt.Errorf("%w: cannot order by %q", domain.ErrInvalidInput, prop)
			}
			order = append(order, col.orderExpr())
		}
		clause += " ORDER BY " + strings.Join(order, ", ")
	}
	return clause, args, nil
}
