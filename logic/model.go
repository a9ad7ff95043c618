// Package logic implements the terms, atoms and rules of an answer set program.
//
// A logic term can fall in one of three categories:
//
// * constant: a term that represents an immutable value (Sym, Int, Str).
//
// * variable: a term that represents a value to be bound during grounding.
//
// * expression: an arithmetic operation or range over other terms.
//
// Programs are function-free: atoms contain terms, but terms never contain atoms.
//
// A program is composed of rules of the form 'head :- lit1, lit2.', that must
// be read as "head holds if lit1 and lit2 hold". A rule with no body is a fact,
// and a rule with no head is an integrity constraint, forbidding its body from
// holding. A choice head '{ p(X) : q(X) } = K' allows any subset of its
// candidates to hold, as long as its cardinality is within bounds.
package logic

import (
	"fmt"
	"strings"
)

// ---- Basic types

// Term is a representation of a logic term.
type Term interface {
	fmt.Stringer
	vars(seen map[Var]struct{}, xs []Var) []Var
	hasVar() bool
}

// Sym is a symbolic constant, like 'bama' or 'win'.
type Sym struct {
	// Name is the identifier for a symbol.
	Name string
}

// Int is an integer constant.
type Int struct {
	// Value is the (immutable) value of an int.
	Value int
}

// Str is a string constant, written between double quotes.
type Str struct {
	Value string
}

// Var is a variable term.
type Var struct {
	// Name is the identifier for a var.
	Name string
}

// BinOp is an arithmetic operation over two terms.
type BinOp struct {
	// Op is one of "+", "-", "*", "/", "\" (modulo).
	Op          string
	Left, Right Term
	hasVar_     bool
}

// Range is an interval of integers 'lo..hi', inclusive on both ends.
type Range struct {
	Lo, Hi  Term
	hasVar_ bool
}

// Atom is a predicate applied to a sequence of terms.
//
// Atoms are not terms, since programs are function-free.
type Atom struct {
	Predicate string
	Args      []Term
	hasVar_   bool
}

// Indicator is a notation for a predicate, usually shown as name/arity, e.g., sec/1.
type Indicator struct {
	// Name is the predicate's name.
	Name string
	// Arity is the predicate's number of args.
	Arity int
}

func (i Indicator) String() string {
	return fmt.Sprintf("%s/%d", i.Name, i.Arity)
}

// ---- Literals

// Literal is a condition within a rule body.
type Literal interface {
	fmt.Stringer
	vars(seen map[Var]struct{}, xs []Var) []Var
	isLiteral()
}

// Lit is an atom, optionally under default negation ('not p').
type Lit struct {
	Atom    *Atom
	Negated bool
}

// Comparison is a builtin relation between two terms.
//
// If Op is "=" and one side is an unbound var, the comparison is an
// assignment that binds the var to the value of the other side.
type Comparison struct {
	// Op is one of "=", "!=", "<", "<=", ">", ">=".
	Op          string
	Left, Right Term
}

func (Lit) isLiteral()        {}
func (Comparison) isLiteral() {}

// ---- Heads

// Head is the consequent of a rule, either an *Atom or a *Choice.
type Head interface {
	fmt.Stringer
	vars(seen map[Var]struct{}, xs []Var) []Var
	isHead()
}

// NoBound is the value of Choice.Upper for choices without an upper bound. It is
// the largest int, so negative uppers remain real, unsatisfiable bounds.
const NoBound = int(^uint(0) >> 1)

// Choice is a head that derives any subset of its elements with a number of
// members between Lower and Upper.
type Choice struct {
	Elements []*Element
	Lower    int
	// Upper is NoBound when the choice is not bounded from above.
	Upper int
}

// Element is a candidate atom of a choice, with local conditions.
//
// Variables that appear only within the element are local, and are expanded
// over all bindings of the condition.
type Element struct {
	Atom      *Atom
	Condition []Literal
}

func (*Atom) isHead()   {}
func (*Choice) isHead() {}

// ---- Rules

// Rule is the representation of a logic rule.
type Rule struct {
	// Head is the consequent of a rule. It's nil for integrity constraints.
	Head Head
	// Body is the antecedent of a rule.
	Body    []Literal
	hasVar_ bool
}

// ---- Constructors

// NewAtom creates an atom.
func NewAtom(predicate string, args ...Term) *Atom {
	var hasVar bool
	for _, arg := range args {
		if arg.hasVar() {
			hasVar = true
			break
		}
	}
	return &Atom{Predicate: predicate, Args: args, hasVar_: hasVar}
}

// NewBinOp creates an arithmetic expression.
func NewBinOp(op string, left, right Term) *BinOp {
	return &BinOp{Op: op, Left: left, Right: right, hasVar_: left.hasVar() || right.hasVar()}
}

// NewRange creates a range term.
func NewRange(lo, hi Term) *Range {
	return &Range{Lo: lo, Hi: hi, hasVar_: lo.hasVar() || hi.hasVar()}
}

// NewChoice creates a choice head. Use NoBound for an unbounded upper limit.
func NewChoice(lower, upper int, elems ...*Element) *Choice {
	return &Choice{Elements: elems, Lower: lower, Upper: upper}
}

// NewRule returns a rule with the provided head and literals as body.
func NewRule(head Head, body ...Literal) *Rule {
	r := &Rule{Head: head, Body: body}
	r.hasVar_ = len(r.Vars()) > 0
	return r
}

// NewFact returns a rule with an atom head and empty body.
func NewFact(a *Atom) *Rule {
	return &Rule{Head: a, hasVar_: a.hasVar_}
}

// NewConstraint returns an integrity constraint.
func NewConstraint(body ...Literal) *Rule {
	return NewRule(nil, body...)
}

// Indicator returns the atom's indicator.
func (a *Atom) Indicator() Indicator {
	return Indicator{a.Predicate, len(a.Args)}
}

// IsGround returns whether the atom has no variables.
func (a *Atom) IsGround() bool { return !a.hasVar_ }

// IsGround returns whether the rule has no variables.
func (r *Rule) IsGround() bool { return !r.hasVar_ }

// IsFact returns whether the rule is a ground atom with empty body.
func (r *Rule) IsFact() bool {
	a, ok := r.Head.(*Atom)
	return ok && len(r.Body) == 0 && a.IsGround()
}

// IsConstraint returns whether the rule has no head.
func (r *Rule) IsConstraint() bool { return r.Head == nil }

// ---- vars()

// Vars returns a set with all term variables, in insertion order.
func Vars(term Term) []Var {
	if !term.hasVar() {
		return nil
	}
	return term.vars(make(map[Var]struct{}), nil)
}

func (t Sym) vars(seen map[Var]struct{}, xs []Var) []Var { return xs }
func (t Int) vars(seen map[Var]struct{}, xs []Var) []Var { return xs }
func (t Str) vars(seen map[Var]struct{}, xs []Var) []Var { return xs }

func (t Var) vars(seen map[Var]struct{}, xs []Var) []Var {
	if _, ok := seen[t]; ok {
		return xs
	}
	seen[t] = struct{}{}
	return append(xs, t)
}

func (t *BinOp) vars(seen map[Var]struct{}, xs []Var) []Var {
	if !t.hasVar_ {
		return xs
	}
	xs = t.Left.vars(seen, xs)
	return t.Right.vars(seen, xs)
}

func (t *Range) vars(seen map[Var]struct{}, xs []Var) []Var {
	if !t.hasVar_ {
		return xs
	}
	xs = t.Lo.vars(seen, xs)
	return t.Hi.vars(seen, xs)
}

func (a *Atom) vars(seen map[Var]struct{}, xs []Var) []Var {
	if !a.hasVar_ {
		return xs
	}
	for _, arg := range a.Args {
		xs = arg.vars(seen, xs)
	}
	return xs
}

func (l Lit) vars(seen map[Var]struct{}, xs []Var) []Var {
	return l.Atom.vars(seen, xs)
}

func (c Comparison) vars(seen map[Var]struct{}, xs []Var) []Var {
	xs = c.Left.vars(seen, xs)
	return c.Right.vars(seen, xs)
}

func (e *Element) vars(seen map[Var]struct{}, xs []Var) []Var {
	xs = e.Atom.vars(seen, xs)
	for _, lit := range e.Condition {
		xs = lit.vars(seen, xs)
	}
	return xs
}

func (c *Choice) vars(seen map[Var]struct{}, xs []Var) []Var {
	for _, elem := range c.Elements {
		xs = elem.vars(seen, xs)
	}
	return xs
}

// Vars returns the variables of an atom, in insertion order.
func (a *Atom) Vars() []Var {
	return a.vars(make(map[Var]struct{}), nil)
}

// LiteralVars returns the variables of a literal, in insertion order.
func LiteralVars(lit Literal) []Var {
	return lit.vars(make(map[Var]struct{}), nil)
}

// Vars returns a set with all variables, in insertion order.
func (r *Rule) Vars() []Var {
	seen := make(map[Var]struct{})
	var xs []Var
	if r.Head != nil {
		xs = r.Head.vars(seen, xs)
	}
	for _, lit := range r.Body {
		xs = lit.vars(seen, xs)
	}
	return xs
}

// ---- hasVar()

func (t Sym) hasVar() bool    { return false }
func (t Int) hasVar() bool    { return false }
func (t Str) hasVar() bool    { return false }
func (t Var) hasVar() bool    { return true }
func (t *BinOp) hasVar() bool { return t.hasVar_ }
func (t *Range) hasVar() bool { return t.hasVar_ }

// HasRange returns whether any of the atom's args is a range.
func (a *Atom) HasRange() bool {
	for _, arg := range a.Args {
		if hasRange(arg) {
			return true
		}
	}
	return false
}

func hasRange(t Term) bool {
	switch t := t.(type) {
	case *Range:
		return true
	case *BinOp:
		return hasRange(t.Left) || hasRange(t.Right)
	}
	return false
}

// ---- String()

func (t Sym) String() string { return FormatSym(t.Name) }
func (t Int) String() string { return fmt.Sprintf("%d", t.Value) }
func (t Str) String() string { return FormatString(t.Value) }
func (t Var) String() string { return t.Name }

func (t *BinOp) String() string {
	return fmt.Sprintf("(%v%s%v)", t.Left, t.Op, t.Right)
}

func (t *Range) String() string {
	return fmt.Sprintf("%v..%v", t.Lo, t.Hi)
}

func (a *Atom) String() string {
	if len(a.Args) == 0 {
		return a.Predicate
	}
	args := make([]string, len(a.Args))
	for i, arg := range a.Args {
		args[i] = arg.String()
	}
	return fmt.Sprintf("%s(%s)", a.Predicate, strings.Join(args, ","))
}

func (l Lit) String() string {
	if l.Negated {
		return "not " + l.Atom.String()
	}
	return l.Atom.String()
}

func (c Comparison) String() string {
	return fmt.Sprintf("%v%s%v", c.Left, c.Op, c.Right)
}

func (e *Element) String() string {
	if len(e.Condition) == 0 {
		return e.Atom.String()
	}
	return fmt.Sprintf("%v:%s", e.Atom, joinLiterals(e.Condition))
}

func (c *Choice) String() string {
	elems := make([]string, len(c.Elements))
	for i, elem := range c.Elements {
		elems[i] = elem.String()
	}
	var b strings.Builder
	if c.Lower > 0 && c.Lower != c.Upper {
		fmt.Fprintf(&b, "%d", c.Lower)
	}
	fmt.Fprintf(&b, "{%s}", strings.Join(elems, ";"))
	switch {
	case c.Lower == c.Upper:
		fmt.Fprintf(&b, "=%d", c.Upper)
	case c.Upper < 0:
		fmt.Fprintf(&b, "<=%d", c.Upper)
	case c.Upper != NoBound:
		fmt.Fprintf(&b, "%d", c.Upper)
	}
	return b.String()
}

func joinLiterals(lits []Literal) string {
	strs := make([]string, len(lits))
	for i, lit := range lits {
		strs[i] = lit.String()
	}
	return strings.Join(strs, ",")
}

func (r *Rule) String() string {
	switch {
	case r.Head == nil:
		return fmt.Sprintf(":- %s.", joinLiterals(r.Body))
	case len(r.Body) == 0:
		return r.Head.String() + "."
	default:
		return fmt.Sprintf("%v :- %s.", r.Head, joinLiterals(r.Body))
	}
}
