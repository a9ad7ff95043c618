package logic

import (
	"fmt"
	"sort"
	"strings"
)

// Bindings maps variables to constant terms.
type Bindings map[Var]Term

func (b Bindings) with(x Var, t Term) Bindings {
	next := make(Bindings, len(b)+1)
	for k, v := range b {
		next[k] = v
	}
	next[x] = t
	return next
}

// Bind returns a copy of b with x bound to t.
func (b Bindings) Bind(x Var, t Term) Bindings { return b.with(x, t) }

func (b Bindings) String() string {
	xs := make([]Var, 0, len(b))
	for x := range b {
		xs = append(xs, x)
	}
	sort.Slice(xs, func(i, j int) bool { return xs[i].Name < xs[j].Name })
	strs := make([]string, len(xs))
	for i, x := range xs {
		strs[i] = fmt.Sprintf("%v = %v", x, b[x])
	}
	return strings.Join(strs, ", ")
}

// ---- Match

// Match unifies a pattern atom against a ground atom, extending the bindings.
//
// Atoms with different predicates or arities never match. Args of the pattern
// that are not plain vars must be evaluable under b, and are compared by value.
// The input bindings are never modified.
func Match(pattern, ground *Atom, b Bindings) (Bindings, bool) {
	if pattern.Predicate != ground.Predicate || len(pattern.Args) != len(ground.Args) {
		return nil, false
	}
	for i, arg := range pattern.Args {
		value := ground.Args[i]
		switch t := arg.(type) {
		case Var:
			if bound, ok := b[t]; ok {
				if !Eq(bound, value) {
					return nil, false
				}
				continue
			}
			b = b.with(t, value)
		default:
			v, err := Eval(arg, b)
			if err != nil || !Eq(v, value) {
				return nil, false
			}
		}
	}
	return b, true
}

// ---- Eval

// Eval computes the constant value of a term under bindings.
//
// It fails if a var is unbound, for ranges, and for arithmetic over
// non-integers or division by zero.
func Eval(t Term, b Bindings) (Term, error) {
	switch t := t.(type) {
	case Sym, Int, Str:
		return t, nil
	case Var:
		if v, ok := b[t]; ok {
			return v, nil
		}
		return nil, fmt.Errorf("unbound var %v", t)
	case *BinOp:
		left, err := Eval(t.Left, b)
		if err != nil {
			return nil, err
		}
		right, err := Eval(t.Right, b)
		if err != nil {
			return nil, err
		}
		l, ok1 := left.(Int)
		r, ok2 := right.(Int)
		if !ok1 || !ok2 {
			return nil, fmt.Errorf("non-integer operands in %v", t)
		}
		return evalOp(t.Op, l.Value, r.Value)
	case *Range:
		return nil, fmt.Errorf("range %v is not a value", t)
	default:
		panic(fmt.Sprintf("logic.Eval: unhandled type %T", t))
	}
}

func evalOp(op string, a, b int) (Term, error) {
	switch op {
	case "+":
		return Int{a + b}, nil
	case "-":
		return Int{a - b}, nil
	case "*":
		return Int{a * b}, nil
	case "/", "\\":
		if b == 0 {
			return nil, fmt.Errorf("division by zero")
		}
		if op == "/" {
			return Int{a / b}, nil
		}
		return Int{a % b}, nil
	}
	return nil, fmt.Errorf("unknown operator %q", op)
}

// Subst replaces the atom's vars with their bindings, evaluating arithmetic.
func (a *Atom) Subst(b Bindings) (*Atom, error) {
	if !a.hasVar_ && !hasExpr(a.Args) {
		return a, nil
	}
	args := make([]Term, len(a.Args))
	for i, arg := range a.Args {
		v, err := Eval(arg, b)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return &Atom{Predicate: a.Predicate, Args: args}, nil
}

func hasExpr(args []Term) bool {
	for _, arg := range args {
		if _, ok := arg.(*BinOp); ok {
			return true
		}
	}
	return false
}

// Holds evaluates a comparison between ground values.
func (c Comparison) Holds(b Bindings) (bool, error) {
	left, err := Eval(c.Left, b)
	if err != nil {
		return false, err
	}
	right, err := Eval(c.Right, b)
	if err != nil {
		return false, err
	}
	o := compare(left, right)
	switch c.Op {
	case "=":
		return o == equal, nil
	case "!=":
		return o != equal, nil
	case "<":
		return o == less, nil
	case "<=":
		return o != more, nil
	case ">":
		return o == more, nil
	case ">=":
		return o != less, nil
	}
	return false, fmt.Errorf("unknown comparison %q", c.Op)
}

// ---- Comparisons

func termOrder(t Term) int {
	switch t.(type) {
	case Var:
		return 1
	case Int:
		return 2
	case Sym:
		return 3
	case Str:
		return 4
	case *BinOp:
		return 5
	case *Range:
		return 6
	default:
		panic(fmt.Sprintf("logic.termOrder: unhandled type %T", t))
	}
}

type ordering int

const (
	less ordering = iota
	equal
	more
)

func compareStrings(s1, s2 string) ordering {
	if s1 < s2 {
		return less
	}
	if s1 > s2 {
		return more
	}
	return equal
}

func compareInts(a, b int) ordering {
	if a < b {
		return less
	}
	if a > b {
		return more
	}
	return equal
}

func compare(t1, t2 Term) ordering {
	switch u := t1.(type) {
	case Sym:
		if v, ok := t2.(Sym); ok {
			return compareStrings(u.Name, v.Name)
		}
	case Int:
		if v, ok := t2.(Int); ok {
			return compareInts(u.Value, v.Value)
		}
	case Str:
		if v, ok := t2.(Str); ok {
			return compareStrings(u.Value, v.Value)
		}
	case Var:
		if v, ok := t2.(Var); ok {
			return compareStrings(u.Name, v.Name)
		}
	case *BinOp:
		if v, ok := t2.(*BinOp); ok {
			if o := compareStrings(u.Op, v.Op); o != equal {
				return o
			}
			if o := compare(u.Left, v.Left); o != equal {
				return o
			}
			return compare(u.Right, v.Right)
		}
	case *Range:
		if v, ok := t2.(*Range); ok {
			if o := compare(u.Lo, v.Lo); o != equal {
				return o
			}
			return compare(u.Hi, v.Hi)
		}
	}
	return compareInts(termOrder(t1), termOrder(t2))
}

// Less returns the order between t1 and t2, following the standard of terms.
//
// The order of terms is: Vars < Ints < Syms < Strs < BinOps < Ranges
func Less(t1, t2 Term) bool {
	return compare(t1, t2) == less
}

// Eq returns whether t1 and t2 are identical terms.
//
// Note that this only takes into account the structure of terms, not whether
// any binding may make them identical.
func Eq(t1, t2 Term) bool {
	return compare(t1, t2) == equal
}

// CompareAtoms orders atoms by predicate, then arity, then args pairwise.
func CompareAtoms(a, b *Atom) int {
	if o := compareStrings(a.Predicate, b.Predicate); o != equal {
		return int(o) - 1
	}
	if o := compareInts(len(a.Args), len(b.Args)); o != equal {
		return int(o) - 1
	}
	for i := range a.Args {
		if o := compare(a.Args[i], b.Args[i]); o != equal {
			return int(o) - 1
		}
	}
	return 0
}

// Eq returns whether two atoms are structurally equal.
func (a *Atom) Eq(other *Atom) bool { return CompareAtoms(a, other) == 0 }
