package query

import "conferencecentral/internal/domain"

// ExpandExclusion builds the plan for
//
//	websafeConferenceKey == conf AND startTime < before AND typeOfSession != excluded
//
// without a second inequality: the exclusion becomes one equality branch per remaining
// member of types, and the branches are ORed. Since a session has exactly one type the
// branches select disjoint rows. With no remaining member the plan has no branches and
// matches nothing.
func ExpandExclusion(websafeConferenceKey string, beforeSeconds int, excluded domain.TypeOfSession, types []domain.TypeOfSession) domain.QueryPlan {
	plan := domain.QueryPlan{
		Kind:  domain.KindSession,
		Order: []string{domain.PropStartTime, domain.PropName},
	}
	for _, t := range types {
		if t == excluded {
			continue
		}
		plan.Where = append(plan.Where, domain.Conjunction{
			{Property: domain.PropWebsafeConferenceKey, Operator: domain.OpEQ, Value: websafeConferenceKey},
			{Property: domain.PropStartTime, Operator: domain.OpLT, Value: beforeSeconds},
			{Property: domain.PropTypeOfSession, Operator: domain.OpEQ, Value: string(t)},
		})
	}
	return plan
}
