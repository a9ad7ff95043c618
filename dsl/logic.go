// Package dsl provides short constructors for terms, atoms and rules.
package dsl

import (
	"github.com/brunokim/asp-engine/logic"
)

func Terms(terms ...logic.Term) []logic.Term {
	return terms
}

func Sym(name string) logic.Sym {
	return logic.Sym{Name: name}
}

func Int(i int) logic.Int {
	return logic.Int{Value: i}
}

func Str(s string) logic.Str {
	return logic.Str{Value: s}
}

func Var(name string) logic.Var {
	return logic.Var{Name: name}
}

func Op(op string, left, right logic.Term) *logic.BinOp {
	return logic.NewBinOp(op, left, right)
}

func Range(lo, hi int) *logic.Range {
	return logic.NewRange(Int(lo), Int(hi))
}

func Atom(predicate string, args ...logic.Term) *logic.Atom {
	return logic.NewAtom(predicate, args...)
}

func Indicator(name string, arity int) logic.Indicator {
	return logic.Indicator{Name: name, Arity: arity}
}

// ----

func Pos(a *logic.Atom) logic.Literal {
	return logic.Lit{Atom: a}
}

func Not(a *logic.Atom) logic.Literal {
	return logic.Lit{Atom: a, Negated: true}
}

func Cmp(op string, left, right logic.Term) logic.Literal {
	return logic.Comparison{Op: op, Left: left, Right: right}
}

// Body converts atoms to positive literals and keeps other literals as is.
func Body(items ...interface{}) []logic.Literal {
	if len(items) == 0 {
		return nil
	}
	lits := make([]logic.Literal, len(items))
	for i, item := range items {
		switch x := item.(type) {
		case *logic.Atom:
			lits[i] = Pos(x)
		case logic.Literal:
			lits[i] = x
		default:
			panic("dsl.Body: expected *logic.Atom or logic.Literal")
		}
	}
	return lits
}

// ----

func Fact(a *logic.Atom) *logic.Rule {
	return logic.NewFact(a)
}

func Rule(head logic.Head, body ...interface{}) *logic.Rule {
	return logic.NewRule(head, Body(body...)...)
}

func Constraint(body ...interface{}) *logic.Rule {
	return logic.NewConstraint(Body(body...)...)
}

func Rules(rs ...*logic.Rule) []*logic.Rule {
	return rs
}

// ----

func Elem(a *logic.Atom, cond ...interface{}) *logic.Element {
	return &logic.Element{Atom: a, Condition: Body(cond...)}
}

func Choice(lower, upper int, elems ...*logic.Element) *logic.Choice {
	return logic.NewChoice(lower, upper, elems...)
}

// Exactly returns a choice with '= k' bounds.
func Exactly(k int, elems ...*logic.Element) *logic.Choice {
	return logic.NewChoice(k, k, elems...)
}
