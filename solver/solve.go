// Package solver computes the stable models of a program made of a fixed rule
// source and per-request facts.
//
// A Solver holds only the parsed rules, and each call to Solve or Models builds
// its own program, so concurrent calls are safe.
package solver

import (
	"context"
	"fmt"
	"time"

	"github.com/brunokim/asp-engine/errors"
	"github.com/brunokim/asp-engine/ground"
	"github.com/brunokim/asp-engine/logic"
	"github.com/brunokim/asp-engine/parser"
	"github.com/brunokim/asp-engine/program"
	"github.com/brunokim/asp-engine/sat"
	"github.com/brunokim/asp-engine/search"
)

// Engine selects the algorithm that enumerates stable models.
type Engine int

const (
	// SearchEngine is a backtracking search with native propagation. Its first
	// model is deterministic.
	SearchEngine Engine = iota
	// SATEngine enumerates models of the program's completion with a SAT solver.
	SATEngine
)

func (e Engine) String() string {
	switch e {
	case SearchEngine:
		return "search"
	case SATEngine:
		return "sat"
	}
	return fmt.Sprintf("engine(%d)", int(e))
}

// ParseEngine returns the engine with the given name.
func ParseEngine(name string) (Engine, error) {
	switch name {
	case "search":
		return SearchEngine, nil
	case "sat":
		return SATEngine, nil
	}
	return 0, errors.New("unknown engine %q (want search or sat)", name)
}

// Options configures a Solver.
type Options struct {
	// Timeout bounds each Solve call, and each Models enumeration as a whole.
	// A zero value means no limit besides the caller's context.
	Timeout time.Duration
	// StepLimit bounds the steps of the engine. A zero value means no limit.
	StepLimit int
	Engine    Engine
	// DebugFilename is a file for the search engine's JSONL trace.
	DebugFilename string
}

// Solver finds stable models of a rule source combined with facts.
type Solver struct {
	source string
	rules  []*logic.Rule
	shown  []logic.Indicator
	opts   Options
}

// Result is an element of a model enumeration.
type Result struct {
	// Atoms is the projection of the model over the shown predicates.
	Atoms []*logic.Atom
	Model *ground.Model
	Err   error
}

// New reads, parses and checks the rules of a source.
//
// Any failure is returned as an *errors.LoadError.
func New(src RuleSource, opts Options) (*Solver, error) {
	text, err := src.ReadRules()
	if err != nil {
		return nil, &errors.LoadError{Source: src.String(), Err: err}
	}
	stmts, err := parser.ParseProgram(text)
	if err != nil {
		return nil, &errors.LoadError{Source: src.String(), Err: err}
	}
	// Checks safety and grounding plans once, so that requests only fail on
	// their own facts.
	p := program.New()
	for _, r := range stmts.Rules {
		if err := p.AddRule(r); err != nil {
			return nil, &errors.LoadError{Source: src.String(), Err: err}
		}
	}
	if err := ground.Check(p.Rules()); err != nil {
		return nil, &errors.LoadError{Source: src.String(), Err: err}
	}
	return &Solver{
		source: src.String(),
		rules:  stmts.Rules,
		shown:  stmts.Show,
		opts:   opts,
	}, nil
}

// Shown returns the predicates shown by the rule source.
func (s *Solver) Shown() []logic.Indicator {
	return append([]logic.Indicator(nil), s.shown...)
}

func (s *Solver) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opts.Timeout > 0 {
		return context.WithTimeout(ctx, s.opts.Timeout)
	}
	return context.WithCancel(ctx)
}

// load builds a program with the rules, facts and shown predicates of a
// request.
func (s *Solver) load(facts []*logic.Atom, shown []logic.Indicator) (*program.Program, error) {
	p := program.New()
	for _, ind := range s.shown {
		p.MarkShown(ind.Name, ind.Arity)
	}
	for _, ind := range shown {
		p.MarkShown(ind.Name, ind.Arity)
	}
	for _, r := range s.rules {
		if err := p.AddRule(r); err != nil {
			return nil, &errors.LoadError{Source: s.source, Err: err}
		}
	}
	for _, fact := range facts {
		if err := p.AddFact(fact); err != nil {
			return nil, err
		}
	}
	return p, nil
}

// Ground builds and grounds the program with the given facts.
func (s *Solver) Ground(ctx context.Context, facts []*logic.Atom) (*ground.Program, error) {
	p, err := s.load(facts, nil)
	if err != nil {
		return nil, err
	}
	return s.ground(ctx, p)
}

func (s *Solver) ground(ctx context.Context, p *program.Program) (*ground.Program, error) {
	gp, err := ground.Ground(ctx, p)
	if err != nil {
		if errors.Is(err, errors.ErrTimeout) {
			return nil, err
		}
		return nil, &errors.LoadError{Source: s.source, Err: err}
	}
	return gp, nil
}

type enumerator interface {
	Next(ctx context.Context) (*ground.Model, error)
}

func (s *Solver) enumerator(gp *ground.Program) (enumerator, func()) {
	switch s.opts.Engine {
	case SATEngine:
		return sat.New(gp, sat.Options{StepLimit: s.opts.StepLimit}), func() {}
	default:
		e := search.New(gp, search.Options{StepLimit: s.opts.StepLimit, DebugFilename: s.opts.DebugFilename})
		return e, func() { e.Close() }
	}
}

// Solve returns the first stable model of the rules and facts, projected over
// the shown predicates of the rule source and the extra shown predicates.
//
// It returns errors.ErrUnsatisfiable if there are no stable models, and an
// error wrapping errors.ErrTimeout if the budget is exhausted. A model without
// shown atoms is returned as an empty, non-nil slice.
func (s *Solver) Solve(ctx context.Context, facts []*logic.Atom, shown ...logic.Indicator) ([]*logic.Atom, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	p, err := s.load(facts, shown)
	if err != nil {
		return nil, err
	}
	gp, err := s.ground(ctx, p)
	if err != nil {
		return nil, err
	}
	e, done := s.enumerator(gp)
	defer done()
	m, err := e.Next(ctx)
	if errors.Is(err, errors.ErrExhausted) {
		return nil, errors.ErrUnsatisfiable
	}
	if err != nil {
		return nil, err
	}
	return Project(m, p.Shown()), nil
}

// Models enumerates the stable models of the rules and facts lazily.
//
// Each model is sent when the previous one is received. If there are no models,
// a single Result with errors.ErrUnsatisfiable is sent. The channel is closed
// after the last model or the first error. Calling the returned function stops
// the enumeration.
func (s *Solver) Models(ctx context.Context, facts []*logic.Atom, shown ...logic.Indicator) (<-chan Result, func()) {
	ctx, cancel := s.withTimeout(ctx)
	stream := make(chan Result)
	send := func(r Result) bool {
		select {
		case stream <- r:
			return true
		case <-ctx.Done():
			return false
		}
	}
	go func() {
		defer close(stream)
		defer cancel()
		p, err := s.load(facts, shown)
		if err != nil {
			send(Result{Err: err})
			return
		}
		gp, err := s.ground(ctx, p)
		if err != nil {
			send(Result{Err: err})
			return
		}
		visible := p.Shown()
		e, done := s.enumerator(gp)
		defer done()
		for i := 0; ; i++ {
			m, err := e.Next(ctx)
			if errors.Is(err, errors.ErrExhausted) {
				if i == 0 {
					send(Result{Err: errors.ErrUnsatisfiable})
				}
				return
			}
			if err != nil {
				send(Result{Err: err})
				return
			}
			if !send(Result{Atoms: Project(m, visible), Model: m}) {
				return
			}
		}
	}()
	return stream, cancel
}
