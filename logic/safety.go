package logic

import (
	"github.com/brunokim/asp-engine/errors"
)

// Safe checks that the rule is domain-restricted: every variable must be bound
// by a positive body atom, where it appears as a plain argument, or by an
// assignment 'X = t' whose right side is bound. Variables local to a choice
// element must be bound by the element's condition.
func (r *Rule) Safe() error {
	bound := make(map[Var]bool)
	bindLiterals(r.Body, bound)
	var unbound []Var
	for _, lit := range r.Body {
		unbound = appendUnbound(unbound, LiteralVars(lit), bound)
	}
	switch h := r.Head.(type) {
	case *Atom:
		unbound = appendUnbound(unbound, h.Vars(), bound)
	case *Choice:
		for _, elem := range h.Elements {
			local := make(map[Var]bool, len(bound))
			for x := range bound {
				local[x] = true
			}
			bindLiterals(elem.Condition, local)
			unbound = appendUnbound(unbound, elem.Atom.Vars(), local)
			for _, lit := range elem.Condition {
				unbound = appendUnbound(unbound, LiteralVars(lit), local)
			}
		}
	}
	if len(unbound) > 0 {
		return &errors.UngroundedVariableError{Var: unbound[0].Name, Rule: r.String()}
	}
	return nil
}

func appendUnbound(unbound, xs []Var, bound map[Var]bool) []Var {
	for _, x := range xs {
		if !bound[x] {
			unbound = append(unbound, x)
		}
	}
	return unbound
}

// bindLiterals marks vars that a sequence of literals binds, in place.
func bindLiterals(lits []Literal, bound map[Var]bool) {
	for _, lit := range lits {
		if l, ok := lit.(Lit); ok && !l.Negated {
			for _, arg := range l.Atom.Args {
				if x, ok := arg.(Var); ok {
					bound[x] = true
				}
			}
		}
	}
	for changed := true; changed; {
		changed = false
		for _, lit := range lits {
			c, ok := lit.(Comparison)
			if !ok {
				continue
			}
			if x, ok := AssignedVar(c, bound); ok {
				bound[x] = true
				changed = true
			}
		}
	}
}

// AssignedVar returns the var that an "=" comparison binds, given the set of
// already bound vars. It returns false if the comparison is not an assignment.
func AssignedVar(c Comparison, bound map[Var]bool) (Var, bool) {
	if c.Op != "=" {
		return Var{}, false
	}
	if x, ok := c.Left.(Var); ok && !bound[x] && allBound(Vars(c.Right), bound) {
		return x, true
	}
	if x, ok := c.Right.(Var); ok && !bound[x] && allBound(Vars(c.Left), bound) {
		return x, true
	}
	return Var{}, false
}

func allBound(xs []Var, bound map[Var]bool) bool {
	for _, x := range xs {
		if !bound[x] {
			return false
		}
	}
	return true
}

// AllBound returns whether every var of t is in bound.
func AllBound(t Term, bound map[Var]bool) bool {
	return allBound(Vars(t), bound)
}
