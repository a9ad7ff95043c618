// Package search enumerates the stable models of a ground program with a
// backtracking search over atom assignments.
//
// Each search step propagates the consequences of the current partial
// assignment, and then branches over an unassigned atom, trying true before
// false. Propagation includes
//
// * forward inference: a rule with a true body makes its head true;
//
// * backward inference: a rule with a false head and a single undecided body
// literal makes that literal false;
//
// * support: an atom without any rule that may derive it is false, and a true
// atom with a single possible support makes that rule's body true;
//
// * cardinality: a choice with a true body must have a number of true elements
// within its bounds.
//
// Total assignments are only reported if they are stable models, which
// excludes atoms that only support themselves in a positive loop.
package search

import (
	"context"
	"fmt"
	"io"

	"github.com/brunokim/asp-engine/errors"
	"github.com/brunokim/asp-engine/ground"
	"github.com/brunokim/asp-engine/logic"
)

// pollInterval is the number of search steps between context checks.
const pollInterval = 64

type value int8

const (
	unknown value = iota
	isTrue
	isFalse
)

func (v value) String() string {
	switch v {
	case isTrue:
		return "true"
	case isFalse:
		return "false"
	}
	return "unknown"
}

// Options configures a search.
type Options struct {
	// StepLimit is the maximum number of decisions and propagated atoms. A zero
	// value means no limit.
	StepLimit int
	// DebugFilename is a file to write a JSON line per search step.
	DebugFilename string
}

type decision struct {
	trailLen int
	atom     int
	flipped  bool
}

// Solver is a search over the stable models of a ground program.
//
// Models are produced lazily by Next, in a deterministic order.
type Solver struct {
	prog *ground.Program
	opts Options

	vals      []value
	trail     []int
	qhead     int
	decisions []decision

	// watch lists the rules mentioning each atom, in the head or body.
	watch [][]int
	// supports lists the rules that may derive each atom.
	supports [][]int
	choices  []int

	started bool
	err     error
	steps   int
	debug   io.WriteCloser
}

// New creates a search over the program's stable models.
func New(prog *ground.Program, opts Options) *Solver {
	n := len(prog.Atoms)
	s := &Solver{
		prog:     prog,
		opts:     opts,
		vals:     make([]value, n),
		watch:    make([][]int, n),
		supports: make([][]int, n),
	}
	for i, r := range prog.Rules {
		seen := make(map[int]bool)
		add := func(id int) {
			if !seen[id] {
				seen[id] = true
				s.watch[id] = append(s.watch[id], i)
			}
		}
		for _, id := range r.Pos {
			add(id)
		}
		for _, id := range r.Neg {
			add(id)
		}
		for _, id := range r.Supports() {
			add(id)
			s.supports[id] = append(s.supports[id], i)
		}
		if r.Choice != nil {
			s.choices = append(s.choices, i)
		}
	}
	return s
}

// Next returns the next stable model.
//
// It returns errors.ErrExhausted when there are no more models, and an error
// wrapping errors.ErrTimeout if the step limit is reached or ctx is done.
// Once Next returns an error, it keeps returning the same error.
func (s *Solver) Next(ctx context.Context) (*ground.Model, error) {
	if s.err != nil {
		return nil, s.err
	}
	if !s.started {
		s.started = true
		s.debug = s.debugInit()
		if !s.initial() {
			return nil, s.fail(errors.ErrExhausted)
		}
	} else if !s.backtrack() {
		return nil, s.fail(errors.ErrExhausted)
	}
	for {
		if err := s.tick(ctx); err != nil {
			return nil, s.fail(err)
		}
		atom, ok := s.branch()
		if !ok {
			truth := s.truth()
			if s.prog.Stable(truth) {
				s.debugWrite("model", -1)
				return &ground.Model{Program: s.prog, Truth: truth}, nil
			}
			s.debugWrite("unstable", -1)
			if !s.backtrack() {
				return nil, s.fail(errors.ErrExhausted)
			}
			continue
		}
		s.decisions = append(s.decisions, decision{trailLen: len(s.trail), atom: atom})
		s.debugWrite("decide", atom)
		if !s.assign(atom, isTrue) || !s.propagate() {
			if !s.backtrack() {
				return nil, s.fail(errors.ErrExhausted)
			}
		}
	}
}

// Close releases the debug file, if any.
func (s *Solver) Close() error {
	if s.debug == nil {
		return nil
	}
	err := s.debug.Close()
	s.debug = nil
	return err
}

func (s *Solver) fail(err error) error {
	s.err = err
	s.debugWrite(fmt.Sprintf("stop: %v", err), -1)
	s.Close()
	return err
}

func (s *Solver) tick(ctx context.Context) error {
	s.steps++
	if s.opts.StepLimit > 0 && s.steps > s.opts.StepLimit {
		return errors.New("%v: step limit reached: %d", errors.ErrTimeout, s.opts.StepLimit)
	}
	if s.steps%pollInterval == 0 {
		if err := ctx.Err(); err != nil {
			return errors.New("%v: search interrupted after %d steps: %v", errors.ErrTimeout, s.steps, err)
		}
	}
	return nil
}

func (s *Solver) truth() []bool {
	truth := make([]bool, len(s.vals))
	for i, v := range s.vals {
		truth[i] = v == isTrue
	}
	return truth
}

// ---- Branching

// branch picks the next atom to decide. Elements of a choice with a true body
// are preferred, starting from the choice with fewest undecided elements.
func (s *Solver) branch() (int, bool) {
	best, bestCount := -1, 0
	for _, i := range s.choices {
		r := s.prog.Rules[i]
		if st, _, _ := s.body(r); st != isTrue {
			continue
		}
		n, first := 0, -1
		for _, id := range r.Choice.Elements {
			if s.vals[id] == unknown {
				if first < 0 {
					first = id
				}
				n++
			}
		}
		if n > 0 && (best < 0 || n < bestCount) {
			best, bestCount = first, n
		}
	}
	if best >= 0 {
		return best, true
	}
	for id, v := range s.vals {
		if v == unknown {
			return id, true
		}
	}
	return -1, false
}

// backtrack undoes assignments up to the latest decision that was not yet
// flipped, and tries its other value. It returns false if there are no more
// decisions to flip.
func (s *Solver) backtrack() bool {
	for len(s.decisions) > 0 {
		d := s.decisions[len(s.decisions)-1]
		s.decisions = s.decisions[:len(s.decisions)-1]
		s.undo(d.trailLen)
		if d.flipped {
			continue
		}
		s.steps++
		s.decisions = append(s.decisions, decision{trailLen: d.trailLen, atom: d.atom, flipped: true})
		s.debugWrite("flip", d.atom)
		if s.assign(d.atom, isFalse) && s.propagate() {
			return true
		}
	}
	return false
}

func (s *Solver) undo(trailLen int) {
	for _, id := range s.trail[trailLen:] {
		s.vals[id] = unknown
	}
	s.trail = s.trail[:trailLen]
	s.qhead = trailLen
}

// ---- Propagation

// assign sets the value of an atom, and returns false on conflict.
func (s *Solver) assign(id int, v value) bool {
	switch s.vals[id] {
	case v:
		return true
	case unknown:
		s.vals[id] = v
		s.trail = append(s.trail, id)
		return true
	}
	return false
}

// initial propagates every rule and atom before the first decision.
func (s *Solver) initial() bool {
	for i := range s.prog.Rules {
		if !s.checkRule(i) {
			return false
		}
	}
	for id := range s.vals {
		if !s.checkSupport(id) {
			return false
		}
	}
	return s.propagate()
}

func (s *Solver) propagate() bool {
	for s.qhead < len(s.trail) {
		id := s.trail[s.qhead]
		s.qhead++
		s.steps++
		for _, i := range s.watch[id] {
			if !s.checkRule(i) {
				return false
			}
		}
		if !s.checkSupport(id) {
			return false
		}
	}
	return true
}

// body returns the state of a rule's body, the number of undecided literals,
// and the last undecided literal as an atom and the value that would make it
// hold.
func (s *Solver) body(r *ground.Rule) (value, int, lit) {
	st := isTrue
	n := 0
	var last lit
	for _, id := range r.Pos {
		switch s.vals[id] {
		case isFalse:
			return isFalse, 0, lit{}
		case unknown:
			st = unknown
			n++
			last = lit{id, isTrue}
		}
	}
	for _, id := range r.Neg {
		switch s.vals[id] {
		case isTrue:
			return isFalse, 0, lit{}
		case unknown:
			st = unknown
			n++
			last = lit{id, isFalse}
		}
	}
	return st, n, last
}

type lit struct {
	atom int
	// holds is the atom value that makes the literal true.
	holds value
}

func (l lit) negate() value {
	if l.holds == isTrue {
		return isFalse
	}
	return isTrue
}

func (s *Solver) checkRule(i int) bool {
	r := s.prog.Rules[i]
	st, n, last := s.body(r)
	if st == isFalse {
		for _, id := range r.Supports() {
			if !s.checkSupport(id) {
				return false
			}
		}
		return true
	}
	if r.Choice != nil {
		t, u := s.count(r.Choice)
		violated := t+u < r.Choice.Lower || (r.Choice.Upper != logic.NoBound && t > r.Choice.Upper)
		if st == unknown {
			if violated && n == 1 {
				return s.assign(last.atom, last.negate())
			}
			return true
		}
		if violated {
			return false
		}
		if u == 0 {
			return true
		}
		switch {
		case r.Choice.Upper != logic.NoBound && t == r.Choice.Upper:
			return s.setUnknown(r.Choice.Elements, isFalse)
		case t+u == r.Choice.Lower:
			return s.setUnknown(r.Choice.Elements, isTrue)
		}
		return true
	}
	if r.Head < 0 || s.vals[r.Head] == isFalse {
		switch {
		case st == isTrue:
			return false
		case n == 1:
			return s.assign(last.atom, last.negate())
		}
		return true
	}
	if st == isTrue {
		return s.assign(r.Head, isTrue)
	}
	return true
}

func (s *Solver) count(c *ground.Choice) (t, u int) {
	for _, id := range c.Elements {
		switch s.vals[id] {
		case isTrue:
			t++
		case unknown:
			u++
		}
	}
	return t, u
}

func (s *Solver) setUnknown(ids []int, v value) bool {
	for _, id := range ids {
		if s.vals[id] == unknown && !s.assign(id, v) {
			return false
		}
	}
	return true
}

// checkSupport falsifies atoms without possible support, and makes true the
// body of the single possible support of a true atom.
func (s *Solver) checkSupport(id int) bool {
	if s.vals[id] == isFalse {
		return true
	}
	support, n := -1, 0
	for _, i := range s.supports[id] {
		if st, _, _ := s.body(s.prog.Rules[i]); st != isFalse {
			support = i
			n++
			if n > 1 {
				return true
			}
		}
	}
	if n == 0 {
		return s.assign(id, isFalse)
	}
	if s.vals[id] != isTrue {
		return true
	}
	r := s.prog.Rules[support]
	for _, a := range r.Pos {
		if !s.assign(a, isTrue) {
			return false
		}
	}
	for _, a := range r.Neg {
		if !s.assign(a, isFalse) {
			return false
		}
	}
	return true
}
