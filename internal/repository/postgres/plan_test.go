package postgres

import (
	"errors"
	"testing"

	"conferencecentral/internal/domain"
	"conferencecentral/internal/query"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderPlan(t *testing.T) {
	tests := []struct {
		name       string
		plan       domain.QueryPlan
		kind       domain.Kind
		columns    map[string]column
		wantClause string
		wantArgs   []any
		wantErr    error
	}{
		{
			name:       "match all",
			plan:       domain.MatchAll(domain.KindConference, domain.PropName),
			kind:       domain.KindConference,
			columns:    conferenceQueryColumns,
			wantClause: "WHERE TRUE ORDER BY name",
		},
		{
			name: "scalar and array predicates",
			plan: domain.QueryPlan{
				Kind: domain.KindConference,
				Where: []domain.Conjunction{{
					{Property: domain.PropCity, Operator: domain.OpEQ, Value: "London"},
					{Property: domain.PropTopics, Operator: domain.OpEQ, Value: "Go"},
					{Property: domain.PropMonth, Operator: domain.OpNE, Value: 6},
				}},
				Order: []string{domain.PropMonth, domain.PropName},
			},
			kind:       domain.KindConference,
			columns:    conferenceQueryColumns,
			wantClause: "WHERE (city = $1 AND $2 = ANY(topics) AND month <> $3) ORDER BY month, name",
			wantArgs:   []any{"London", "Go", 6},
		},
		{
			name: "array inequality flips the operator",
			plan: domain.QueryPlan{
				Kind:  domain.KindConference,
				Where: []domain.Conjunction{{{Property: domain.PropTopics, Operator: domain.OpGT, Value: "M"}}},
			},
			kind:       domain.KindConference,
			columns:    conferenceQueryColumns,
			wantClause: "WHERE ($1 < ANY(topics))",
			wantArgs:   []any{"M"},
		},
		{
			name: "branches are ORed",
			plan: domain.QueryPlan{
				Kind: domain.KindSession,
				Where: []domain.Conjunction{
					{{Property: domain.PropTypeOfSession, Operator: domain.OpEQ, Value: "LECTURE"}},
					{{Property: domain.PropTypeOfSession, Operator: domain.OpEQ, Value: "KEYNOTE"}},
				},
			},
			kind:       domain.KindSession,
			columns:    sessionQueryColumns,
			wantClause: "WHERE (type_of_session = $1) OR (type_of_session = $2)",
			wantArgs:   []any{"LECTURE", "KEYNOTE"},
		},
		{
			name:    "no branches",
			plan:    domain.QueryPlan{Kind: domain.KindSession},
			kind:    domain.KindSession,
			columns: sessionQueryColumns,
			wantErr: errNoBranches,
		},
		{
			name:    "kind mismatch",
			plan:    domain.MatchAll(domain.KindSession),
			kind:    domain.KindConference,
			columns: conferenceQueryColumns,
			wantErr: domain.ErrInvalidInput,
		},
		{
			name: "unknown property",
			plan: domain.QueryPlan{
				Kind:  domain.KindConference,
				Where: []domain.Conjunction{{{Property: "organizerUserId", Operator: domain.OpEQ, Value: "x"}}},
			},
			kind:    domain.KindConference,
			columns: conferenceQueryColumns,
			wantErr: domain.ErrInvalidInput,
		},
		{
			name:       "array order uses smallest element",
			plan:       domain.MatchAll(domain.KindConference, domain.PropTopics, domain.PropName),
			kind:       domain.KindConference,
			columns:    conferenceQueryColumns,
			wantClause: "WHERE TRUE ORDER BY (SELECT min(v) FROM unnest(topics) AS v), name",
		},
		{
			name:    "cannot order by unknown property",
			plan:    domain.MatchAll(domain.KindConference, "organizerUserId"),
			kind:    domain.KindConference,
			columns: conferenceQueryColumns,
			wantErr: domain.ErrInvalidInput,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args, err := renderPlan(tt.plan, tt.kind, tt.columns)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantClause, clause)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestRenderPlan_ExpandedExclusion(t *testing.T) {
	plan := query.ExpandExclusion("wsck", 3600, domain.TypeOfSessionWorkshop, domain.TypesOfSession())
	clause, args, err := renderPlan(plan, domain.KindSession, sessionQueryColumns)
	require.NoError(t, err)
	assert.Len(t, args, 3*(len(domain.TypesOfSession())-1))
	assert.Contains(t, clause, "(websafe_conference_key = $1 AND start_time < $2 AND type_of_session = $3) OR ")
	assert.Contains(t, clause, "ORDER BY start_time, name")
	assert.NotContains(t, clause, "<>")
}

func TestRenderPlan_CompiledTopicInequality(t *testing.T) {
	tests := []struct {
		operator   string
		wantClause string
	}{
		{"NE", "WHERE ($1 <> ANY(topics)) ORDER BY (SELECT min(v) FROM unnest(topics) AS v), name"},
		{"GT", "WHERE ($1 < ANY(topics)) ORDER BY (SELECT min(v) FROM unnest(topics) AS v), name"},
	}

	for _, tt := range tests {
		t.Run(tt.operator, func(t *testing.T) {
			plan, err := query.CompileConferenceFilters([]domain.QueryFilter{{Field: "TOPIC", Operator: tt.operator, Value: "Go"}})
			require.NoError(t, err)

			clause, args, err := renderPlan(plan, domain.KindConference, conferenceQueryColumns)
			require.NoError(t, err)
			assert.Equal(t, tt.wantClause, clause)
			assert.Equal(t, []any{"Go"}, args)
		})
	}
}
