package solver

import (
	"context"
	"sort"

	"github.com/brunokim/asp-engine/errors"
	"github.com/brunokim/asp-engine/logic"
)

// Outcomes maps a subject, like a team, to its outcome, like "win".
type Outcomes map[string]string

// TeamOutcomes are the outcomes of a game for a team.
var TeamOutcomes = []string{"win", "loss"}

// Facts translates each outcome into a 0-ary fact '<subject>_<outcome>', in
// subject order.
//
// It returns an *errors.InvalidFactError if an outcome is not allowed, or if a
// subject is not a valid identifier.
func Facts(outcomes Outcomes, allowed []string) ([]*logic.Atom, error) {
	subjects := make([]string, 0, len(outcomes))
	for subject := range outcomes {
		subjects = append(subjects, subject)
	}
	sort.Strings(subjects)
	facts := make([]*logic.Atom, len(subjects))
	for i, subject := range subjects {
		outcome := outcomes[subject]
		if !logic.IsSym(subject) {
			return nil, &errors.InvalidFactError{Subject: subject, Outcome: outcome}
		}
		if !contains(allowed, outcome) {
			return nil, &errors.InvalidFactError{Subject: subject, Outcome: outcome, Allowed: allowed}
		}
		facts[i] = logic.NewAtom(subject + "_" + outcome)
	}
	return facts, nil
}

func contains(xs []string, x string) bool {
	for _, y := range xs {
		if x == y {
			return true
		}
	}
	return false
}

// SolveOutcomes solves with the facts of team outcomes, each either "win" or
// "loss".
func (s *Solver) SolveOutcomes(ctx context.Context, outcomes Outcomes, shown ...logic.Indicator) ([]*logic.Atom, error) {
	facts, err := Facts(outcomes, TeamOutcomes)
	if err != nil {
		return nil, err
	}
	return s.Solve(ctx, facts, shown...)
}
