// Package sat enumerates the stable models of a ground program with a SAT
// solver.
//
// The program is translated into its Clark completion: every rule body is an
// AND gate over its literals, every true body implies its head, and every true
// atom implies the disjunction of the bodies that may derive it. Choice bounds
// are encoded with sorting networks.
//
// Models of the completion are a superset of the stable models, since atoms in
// a positive loop may support each other. Each candidate model is blocked
// after being found, and is only reported if it is stable.
package sat

import (
	"context"
	"time"

	"github.com/go-air/gini"
	"github.com/go-air/gini/logic"
	"github.com/go-air/gini/z"

	"github.com/brunokim/asp-engine/errors"
	"github.com/brunokim/asp-engine/ground"
	asplogic "github.com/brunokim/asp-engine/logic"
)

// pollInterval is the longest time a solve call runs without checking the
// context.
const pollInterval = 50 * time.Millisecond

// Options configures an enumeration.
type Options struct {
	// StepLimit is the maximum number of candidate models to examine. A zero
	// value means no limit.
	StepLimit int
}

// Solver enumerates stable models with a SAT solver.
type Solver struct {
	prog  *ground.Program
	opts  Options
	g     *gini.Gini
	atoms []z.Lit
	steps int
	err   error
}

// New translates the program's completion into a SAT problem.
//
// The completion is built as a circuit, whose roots are asserted after it is
// converted to CNF. Blocking clauses are added to the solver directly.
func New(prog *ground.Program, opts Options) *Solver {
	c := logic.NewC()
	s := &Solver{prog: prog, opts: opts, g: gini.New(), atoms: make([]z.Lit, len(prog.Atoms))}
	for i := range s.atoms {
		s.atoms[i] = c.Lit()
	}
	roots := []z.Lit{c.T}
	supports := make([][]z.Lit, len(prog.Atoms))
	for _, r := range prog.Rules {
		body := s.body(c, r)
		switch {
		case r.Choice != nil:
			ms := make([]z.Lit, len(r.Choice.Elements))
			for i, id := range r.Choice.Elements {
				ms[i] = s.atoms[id]
				supports[id] = append(supports[id], body)
			}
			roots = append(roots, c.Implies(body, bounds(c, ms, r.Choice)))
		case r.Head < 0:
			roots = append(roots, body.Not())
		default:
			roots = append(roots, c.Implies(body, s.atoms[r.Head]))
			supports[r.Head] = append(supports[r.Head], body)
		}
	}
	for id, bodies := range supports {
		if len(bodies) == 0 {
			roots = append(roots, s.atoms[id].Not())
			continue
		}
		roots = append(roots, c.Implies(s.atoms[id], c.Ors(bodies...)))
	}
	c.ToCnf(s.g)
	for _, root := range roots {
		s.clause(root)
	}
	return s
}

func (s *Solver) clause(ms ...z.Lit) {
	for _, m := range ms {
		s.g.Add(m)
	}
	s.g.Add(z.LitNull)
}

// body returns a literal equivalent to the conjunction of a rule's body.
func (s *Solver) body(c *logic.C, r *ground.Rule) z.Lit {
	var ms []z.Lit
	for _, id := range r.Pos {
		ms = append(ms, s.atoms[id])
	}
	for _, id := range r.Neg {
		ms = append(ms, s.atoms[id].Not())
	}
	if len(ms) == 0 {
		return c.T
	}
	return c.Ands(ms...)
}

// bounds returns a literal that holds iff the number of true literals in ms is
// within the choice bounds.
func bounds(c *logic.C, ms []z.Lit, ch *ground.Choice) z.Lit {
	hasUpper := ch.Upper != asplogic.NoBound
	if len(ms) == 0 {
		if ch.Lower > 0 || (hasUpper && ch.Upper < 0) {
			return c.F
		}
		return c.T
	}
	card := logic.NewCardSort(ms, c)
	if !hasUpper {
		return card.Geq(ch.Lower)
	}
	return c.And(card.Geq(ch.Lower), card.Leq(ch.Upper))
}

// Next returns the next stable model.
//
// It returns errors.ErrExhausted when there are no more models, and an error
// wrapping errors.ErrTimeout if the step limit is reached or ctx is done.
func (s *Solver) Next(ctx context.Context) (*ground.Model, error) {
	for {
		if s.err != nil {
			return nil, s.err
		}
		s.steps++
		if s.opts.StepLimit > 0 && s.steps > s.opts.StepLimit {
			s.err = errors.New("%v: step limit reached: %d", errors.ErrTimeout, s.opts.StepLimit)
			return nil, s.err
		}
		res, err := s.solve(ctx)
		if err != nil {
			s.err = err
			return nil, err
		}
		if res < 0 {
			s.err = errors.ErrExhausted
			return nil, s.err
		}
		truth := make([]bool, len(s.atoms))
		block := make([]z.Lit, len(s.atoms))
		for i, m := range s.atoms {
			truth[i] = s.g.Value(m)
			if truth[i] {
				block[i] = m.Not()
			} else {
				block[i] = m
			}
		}
		if len(block) == 0 {
			// An empty universe has a single candidate.
			s.err = errors.ErrExhausted
		} else {
			s.clause(block...)
		}
		if s.prog.Stable(truth) {
			return &ground.Model{Program: s.prog, Truth: truth}, nil
		}
	}
}

// solve runs the SAT solver until it finds an answer or ctx is done.
func (s *Solver) solve(ctx context.Context) (int, error) {
	for {
		wait := pollInterval
		if deadline, ok := ctx.Deadline(); ok {
			if d := time.Until(deadline); d < wait {
				wait = d
			}
		}
		err := ctx.Err()
		if err == nil && wait <= 0 {
			err = context.DeadlineExceeded
		}
		if err != nil {
			return 0, errors.New("%v: solve interrupted after %d candidates: %v", errors.ErrTimeout, s.steps-1, err)
		}
		if res := s.g.GoSolve().Try(wait); res != 0 {
			return res, nil
		}
	}
}
