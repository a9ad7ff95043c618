// Package program implements the store of facts, rules and shown predicates
// that make up a program before grounding.
//
// The store is purely additive: there is no way to retract a rule. Facts are
// deduplicated, so adding the same fact twice has no further effect.
package program

import (
	"github.com/brunokim/asp-engine/errors"
	"github.com/brunokim/asp-engine/logic"
)

// Shown is the set of predicates visible in a projected model.
type Shown map[logic.Indicator]bool

// Visible returns whether the atom's predicate is shown.
func (s Shown) Visible(a *logic.Atom) bool {
	return s[a.Indicator()]
}

// Program holds the rules of a program, in insertion order.
type Program struct {
	rules []*logic.Rule
	facts map[string]bool
	shown Shown
}

// New returns an empty program.
func New() *Program {
	return &Program{
		facts: make(map[string]bool),
		shown: make(Shown),
	}
}

// AddFact adds a ground atom as fact. Adding an existing fact is a no-op.
func (p *Program) AddFact(a *logic.Atom) error {
	if !a.IsGround() {
		return &errors.UngroundedVariableError{Var: a.Vars()[0].Name, Rule: a.String() + "."}
	}
	if a.HasRange() {
		for _, fact := range expandRanges(a) {
			if err := p.AddFact(fact); err != nil {
				return err
			}
		}
		return nil
	}
	// Evaluates arithmetic, e.g., p(1+1) => p(2).
	ground, err := a.Subst(nil)
	if err != nil {
		return errors.New("invalid fact %v: %v", a, err)
	}
	key := ground.String()
	if p.facts[key] {
		return nil
	}
	p.facts[key] = true
	p.rules = append(p.rules, logic.NewFact(ground))
	return nil
}

// AddRule adds a rule after checking that it is domain-restricted.
//
// Ground facts are handled by AddFact. Ranges are only accepted in facts.
func (p *Program) AddRule(r *logic.Rule) error {
	if r.IsFact() {
		return p.AddFact(r.Head.(*logic.Atom))
	}
	if err := r.Safe(); err != nil {
		return err
	}
	if hasRange(r) {
		return errors.New("ranges are only supported in facts: %v", r)
	}
	p.rules = append(p.rules, r)
	return nil
}

// MarkShown makes a predicate visible in projected models.
func (p *Program) MarkShown(name string, arity int) {
	p.shown[logic.Indicator{Name: name, Arity: arity}] = true
}

// Rules returns all facts and rules, in insertion order.
func (p *Program) Rules() []*logic.Rule {
	return p.rules
}

// Shown returns a copy of the set of shown predicates.
func (p *Program) Shown() Shown {
	shown := make(Shown, len(p.shown))
	for ind := range p.shown {
		shown[ind] = true
	}
	return shown
}

func hasRange(r *logic.Rule) bool {
	atoms := bodyAtoms(r.Body)
	switch h := r.Head.(type) {
	case *logic.Atom:
		atoms = append(atoms, h)
	case *logic.Choice:
		for _, elem := range h.Elements {
			atoms = append(atoms, elem.Atom)
			atoms = append(atoms, bodyAtoms(elem.Condition)...)
		}
	}
	for _, a := range atoms {
		if a.HasRange() {
			return true
		}
	}
	for _, lit := range r.Body {
		if c, ok := lit.(logic.Comparison); ok {
			if _, ok := c.Left.(*logic.Range); ok {
				return true
			}
			if _, ok := c.Right.(*logic.Range); ok {
				return true
			}
		}
	}
	return false
}

func bodyAtoms(lits []logic.Literal) []*logic.Atom {
	var atoms []*logic.Atom
	for _, lit := range lits {
		if l, ok := lit.(logic.Lit); ok {
			atoms = append(atoms, l.Atom)
		}
	}
	return atoms
}

// expandRanges returns the cross product of a ground atom's ranges, in
// ascending order of each argument. Ranges that can't be evaluated are empty.
func expandRanges(a *logic.Atom) []*logic.Atom {
	combos := [][]logic.Term{nil}
	for _, arg := range a.Args {
		var values []logic.Term
		if r, ok := arg.(*logic.Range); ok {
			lo, err1 := logic.Eval(r.Lo, nil)
			hi, err2 := logic.Eval(r.Hi, nil)
			l, ok1 := lo.(logic.Int)
			h, ok2 := hi.(logic.Int)
			if err1 == nil && err2 == nil && ok1 && ok2 {
				for i := l.Value; i <= h.Value; i++ {
					values = append(values, logic.Int{Value: i})
				}
			}
		} else {
			values = []logic.Term{arg}
		}
		var next [][]logic.Term
		for _, combo := range combos {
			for _, v := range values {
				args := make([]logic.Term, len(combo), len(combo)+1)
				copy(args, combo)
				next = append(next, append(args, v))
			}
		}
		combos = next
	}
	atoms := make([]*logic.Atom, len(combos))
	for i, args := range combos {
		atoms[i] = logic.NewAtom(a.Predicate, args...)
	}
	return atoms
}
