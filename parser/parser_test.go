package parser_test

import (
	"testing"

	"github.com/brunokim/asp-engine/dsl"
	"github.com/brunokim/asp-engine/errors"
	"github.com/brunokim/asp-engine/logic"
	"github.com/brunokim/asp-engine/parser"
	"github.com/brunokim/asp-engine/test_helpers"

	"github.com/google/go-cmp/cmp"
)

var (
	atom       = dsl.Atom
	sym        = dsl.Sym
	int_       = dsl.Int
	str        = dsl.Str
	var_       = dsl.Var
	op         = dsl.Op
	not        = dsl.Not
	cmp_       = dsl.Cmp
	rule       = dsl.Rule
	rules      = dsl.Rules
	fact       = dsl.Fact
	constraint = dsl.Constraint
	elem       = dsl.Elem
	choice     = dsl.Choice
	exactly    = dsl.Exactly
	indicator  = dsl.Indicator
)

func TestParseTerm(t *testing.T) {
	tests := []struct {
		text string
		want logic.Term
	}{
		{`a`, sym("a")},
		{`  a `, sym("a")},
		{`word_123`, sym("word_123")},
		{`_a`, sym("_a")},
		{`123`, int_(123)},
		{`-5`, int_(-5)},
		{`"a b"`, str("a b")},
		{`"a\"b\n"`, str("a\"b\n")},
		{`X`, var_("X")},
		{`X_1`, var_("X_1")},
		{`_X`, var_("_X")},
		{`_`, var_("_1")},
		{`X+1`, op("+", var_("X"), int_(1))},
		{`1+2*3`, op("+", int_(1), op("*", int_(2), int_(3)))},
		{`(1+2)*3`, op("*", op("+", int_(1), int_(2)), int_(3))},
		{`X-Y-1`, op("-", op("-", var_("X"), var_("Y")), int_(1))},
		{`X\2`, op("\\", var_("X"), int_(2))},
		{`-X`, op("-", int_(0), var_("X"))},
		{`1..3`, logic.NewRange(int_(1), int_(3))},
	}
	for _, test := range tests {
		got, err := parser.ParseTerm(test.text)
		if err != nil {
			t.Errorf("%q: got err: %v", test.text, err)
			continue
		}
		if diff := cmp.Diff(test.want, got, test_helpers.IgnoreUnexported); diff != "" {
			t.Errorf("%q: (-want, +got)\n%s", test.text, diff)
		}
	}
}

func TestParseAtom(t *testing.T) {
	tests := []struct {
		text string
		want *logic.Atom
	}{
		{`tamu_win`, atom("tamu_win")},
		{`tamu_win.`, atom("tamu_win")},
		{`p()`, atom("p")},
		{`p(1,)`, atom("p", int_(1))},
		{`edge(a, b)`, atom("edge", sym("a"), sym("b"))},
		{`p(X, "s", 1+1)`, atom("p", var_("X"), str("s"), op("+", int_(1), int_(1)))},
	}
	for _, test := range tests {
		got, err := parser.ParseAtom(test.text)
		if err != nil {
			t.Errorf("%q: got err: %v", test.text, err)
			continue
		}
		if diff := cmp.Diff(test.want, got, test_helpers.IgnoreUnexported); diff != "" {
			t.Errorf("%q: (-want, +got)\n%s", test.text, diff)
		}
	}
}

func TestParseRules(t *testing.T) {
	tests := []struct {
		text string
		want []*logic.Rule
	}{
		{`a.`, rules(fact(atom("a")))},
		{`p(1..3).`, rules(fact(atom("p", logic.NewRange(int_(1), int_(3)))))},
		{
			`sec(T) :- tamu_win, uga_win, T = bama.`,
			rules(rule(atom("sec", var_("T")), atom("tamu_win"), atom("uga_win"), cmp_("=", var_("T"), sym("bama")))),
		},
		{
			`h :- a, not b; X < Y, X != Y, X <> Y, X == Y, X >= 1.`,
			rules(rule(atom("h"), atom("a"), not(atom("b")),
				cmp_("<", var_("X"), var_("Y")),
				cmp_("!=", var_("X"), var_("Y")),
				cmp_("!=", var_("X"), var_("Y")),
				cmp_("=", var_("X"), var_("Y")),
				cmp_(">=", var_("X"), int_(1)))),
		},
		{`:- a, not b.`, rules(constraint(atom("a"), not(atom("b"))))},
		{`a :- .`, rules(fact(atom("a")))},
		{
			`{ p(X) : d(X) } = 1.`,
			rules(rule(exactly(1, elem(atom("p", var_("X")), atom("d", var_("X")))))),
		},
		{
			`1 { a; b } 2 :- c.`,
			rules(rule(choice(1, 2, elem(atom("a")), elem(atom("b"))), atom("c"))),
		},
		{`{ a }.`, rules(rule(choice(0, logic.NoBound, elem(atom("a")))))},
		{`{ a } <= 1.`, rules(rule(choice(0, 1, elem(atom("a")))))},
		{`{ a } < 1.`, rules(rule(choice(0, 0, elem(atom("a")))))},
		{`{ a } > 0.`, rules(rule(choice(1, logic.NoBound, elem(atom("a")))))},
		{`{ a } < 0.`, rules(rule(choice(0, -1, elem(atom("a")))))},
		{`{ a; b } = -1.`, rules(rule(exactly(-1, elem(atom("a")), elem(atom("b")))))},
		{`{ a } <= 0.`, rules(rule(choice(0, 0, elem(atom("a")))))},
		{`#const k = 0. { a } < k.`, rules(rule(choice(0, -1, elem(atom("a")))))},
		{`2 <= { a; b; c }.`, rules(rule(choice(2, logic.NoBound, elem(atom("a")), elem(atom("b")), elem(atom("c")))))},
		{
			`{ p(X, Y) : d(X), e(Y), X < Y } >= 1.`,
			rules(rule(choice(1, logic.NoBound,
				elem(atom("p", var_("X"), var_("Y")), atom("d", var_("X")), atom("e", var_("Y")), cmp_("<", var_("X"), var_("Y")))))),
		},
		{
			`% line comment
             a. %* block
             comment *% b.`,
			rules(fact(atom("a")), fact(atom("b"))),
		},
		{
			`p(n). #const n = 3. q(n+1).`,
			rules(fact(atom("p", int_(3))), fact(atom("q", op("+", int_(3), int_(1))))),
		},
		{`p(_, _).`, rules(fact(atom("p", var_("_1"), var_("_2"))))},
	}
	for _, test := range tests {
		got, err := parser.ParseRules(test.text)
		if err != nil {
			t.Errorf("%q: got err: %v", test.text, err)
			continue
		}
		if diff := cmp.Diff(test.want, got, test_helpers.IgnoreUnexported); diff != "" {
			t.Errorf("%q: (-want, +got)\n%s", test.text, diff)
		}
	}
}

func TestParseProgram_Show(t *testing.T) {
	stmts, err := parser.ParseProgram(`
        #show sec/1.
        #show tamu_win/0.
        sec(bama).
    `)
	if err != nil {
		t.Fatalf("got err: %v", err)
	}
	want := []logic.Indicator{indicator("sec", 1), indicator("tamu_win", 0)}
	if diff := cmp.Diff(want, stmts.Show); diff != "" {
		t.Errorf("(-want, +got)\n%s", diff)
	}
	if len(stmts.Rules) != 1 {
		t.Errorf("want 1 rule, got %v", stmts.Rules)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		text      string
		line, col int
	}{
		{`a`, 1, 2},
		{`p(X :- q.`, 1, 5},
		{"a.\nb :- c\nd.", 3, 1},
		{`a :- f(g(1)).`, 1, 8},
		{`"unterminated`, 1, 1},
		{"a.\n  %* open", 2, 3},
		{`a :- b & c.`, 1, 8},
		{`#minimize { X : p(X) }.`, 1, 1},
		{`{ a } = X.`, 1, 9},
		{`a :- X.`, 1, 7},
	}
	for _, test := range tests {
		_, err := parser.ParseRules(test.text)
		var perr *errors.ParseError
		if !errors.As(err, &perr) {
			t.Errorf("%q: want ParseError, got %v", test.text, err)
			continue
		}
		if perr.Line != test.line || perr.Col != test.col {
			t.Errorf("%q: got error at %d:%d, want %d:%d (%v)", test.text, perr.Line, perr.Col, test.line, test.col, err)
		}
	}
}

func TestParseFacts(t *testing.T) {
	tests := []struct {
		text string
		want []*logic.Atom
	}{
		{`.`, nil},
		{``, []*logic.Atom{}},
		{`tamu_win. bama_loss.`, []*logic.Atom{atom("tamu_win"), atom("bama_loss")}},
		{`beat(uga, bama).`, []*logic.Atom{atom("beat", sym("uga"), sym("bama"))}},
	}
	for _, test := range tests {
		got, err := parser.ParseFacts(test.text)
		if err != nil {
			t.Errorf("%q: got err: %v", test.text, err)
			continue
		}
		if diff := cmp.Diff(test.want, got, test_helpers.IgnoreUnexported); diff != "" {
			t.Errorf("%q: (-want, +got)\n%s", test.text, diff)
		}
	}
	for _, text := range []string{`a :- b.`, `:- a.`, `{ a }.`, `a`} {
		if _, err := parser.ParseFacts(text); err == nil {
			t.Errorf("%q: want error", text)
		}
	}
}
