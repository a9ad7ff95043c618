package ground_test

import (
	"context"
	"sort"
	"testing"

	"github.com/brunokim/asp-engine/errors"
	"github.com/brunokim/asp-engine/ground"
	"github.com/brunokim/asp-engine/parser"
	"github.com/brunokim/asp-engine/program"
	"github.com/brunokim/asp-engine/test_helpers"

	"github.com/google/go-cmp/cmp"
)

func groundText(t *testing.T, ctx context.Context, text string) (*ground.Program, error) {
	t.Helper()
	rules, err := parser.ParseRules(text)
	if err != nil {
		t.Fatalf("ParseRules: got err: %v", err)
	}
	p := program.New()
	for _, r := range rules {
		if err := p.AddRule(r); err != nil {
			t.Fatalf("AddRule(%v): got err: %v", r, err)
		}
	}
	return ground.Ground(ctx, p)
}

func mustGround(t *testing.T, text string) *ground.Program {
	t.Helper()
	gp, err := groundText(t, context.Background(), text)
	if err != nil {
		t.Fatalf("Ground: got err: %v", err)
	}
	return gp
}

func TestGround(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{
			`d(1..3).
             p(X) :- d(X), not q(X).
             q(X) :- d(X), not p(X).`,
			`d(1).
             d(2).
             d(3).
             p(1) :- not q(1).
             p(2) :- not q(2).
             p(3) :- not q(3).
             q(1) :- not p(1).
             q(2) :- not p(2).
             q(3) :- not p(3).`,
		},
		{
			`team(bama). team(tamu).
             won(bama).
             lost(T) :- team(T), not won(T).`,
			`team(bama).
             team(tamu).
             won(bama).
             lost(tamu).`,
		},
		{
			`d(1..2).
             { p(X) : d(X) } = 1 :- go.
             go.`,
			`d(1).
             d(2).
             {p(1);p(2)}=1.
             go.`,
		},
		{
			`n(1..3).
             s(Y) :- n(X), Y = X * 2.
             :- s(Y), Y > 4, not ok.`,
			`n(1).
             n(2).
             n(3).
             s(2).
             s(4).
             s(6).
             :- .`,
		},
		{
			`a :- not b.
             b :- c.
             c :- b, not a.`,
			`a.`,
		},
		{
			`p :- q(X).
             r :- p, p.`,
			``,
		},
	}
	for _, test := range tests {
		gp := mustGround(t, test.text)
		want := test_helpers.Dedent(test.want)
		if diff := cmp.Diff(want, gp.String()); diff != "" {
			t.Errorf("%s: (-want, +got)\n%s", test.text, diff)
		}
	}
}

func TestGround_Recursion(t *testing.T) {
	gp := mustGround(t, `
        edge(1,2). edge(2,3). edge(3,4).
        path(X,Y) :- edge(X,Y).
        path(X,Z) :- path(X,Y), edge(Y,Z).
    `)
	var got []string
	for _, a := range gp.Atoms {
		if a.Predicate == "path" {
			got = append(got, a.String())
		}
	}
	sort.Strings(got)
	want := []string{"path(1,2)", "path(1,3)", "path(1,4)", "path(2,3)", "path(2,4)", "path(3,4)"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("(-want, +got)%s", diff)
	}
	if len(gp.Rules) != 9 {
		t.Errorf("want 9 ground facts, got:\n%v", gp)
	}
	for _, r := range gp.Rules {
		if len(r.Pos)+len(r.Neg) > 0 {
			t.Errorf("rule over domain predicates has a body: %s", gp.RuleString(r))
		}
	}
}

func TestGround_Errors(t *testing.T) {
	_, err := groundText(t, context.Background(), `
        d(1). e(X) :- d(X), not f(X).
        { p(X) : e(X) }.
    `)
	if err == nil {
		t.Errorf("want error for choice condition over non-domain predicate")
	}
}

func TestCheck(t *testing.T) {
	tests := []struct {
		text    string
		wantErr bool
	}{
		{`d(1..3). { p(X) : d(X) } = 1.`, false},
		{`d(1). e(X) :- d(X). { p(X) : e(X) }.`, false},
		{`d(1). e(X) :- d(X), not f(X). { p(X) : e(X) }.`, true},
		{`{ q }. { p : q }.`, true},
		{`{ p(X) : d(X) }.`, false},
	}
	for _, test := range tests {
		rules, err := parser.ParseRules(test.text)
		if err != nil {
			t.Fatalf("%s: ParseRules: got err: %v", test.text, err)
		}
		err = ground.Check(rules)
		if (err != nil) != test.wantErr {
			t.Errorf("%s: Check() = %v, want error: %t", test.text, err, test.wantErr)
		}
	}
}

func TestGround_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := groundText(t, ctx, `
        n(1..100).
        p(X, Y) :- n(X), n(Y).
    `)
	if !errors.Is(err, errors.ErrTimeout) {
		t.Errorf("want ErrTimeout, got %v", err)
	}
}

func TestStable(t *testing.T) {
	tests := []struct {
		text  string
		truth []bool
		sat   bool
		want  bool
	}{
		{`a :- not b. b :- not a.`, []bool{true, false}, true, true},
		{`a :- not b. b :- not a.`, []bool{false, true}, true, true},
		{`a :- not b. b :- not a.`, []bool{true, true}, true, false},
		{`a :- not b. b :- not a.`, []bool{false, false}, false, false},
		{`{ a; b } = 1.`, []bool{true, false}, true, true},
		{`{ a; b } = 1.`, []bool{true, true}, false, false},
		{`{ a; b } = 1.`, []bool{false, false}, false, false},
		{`{ a; b }. :- a, b.`, []bool{false, false}, true, true},
		// Universe in derivation order: a, c, b.
		{`a :- not c. b :- a. c :- not a. c :- b.`, []bool{false, true, false}, true, true},
		{`a :- not c. b :- a. c :- not a. c :- b.`, []bool{true, false, true}, false, false},
		{`a :- not c. b :- a. c :- not a. c :- b.`, []bool{true, true, true}, true, false},
	}
	for _, test := range tests {
		gp := mustGround(t, test.text)
		if len(gp.Atoms) != len(test.truth) {
			t.Fatalf("%s: universe %v doesn't fit truth %v", test.text, gp.Atoms, test.truth)
		}
		if got := gp.Satisfied(test.truth); got != test.sat {
			t.Errorf("%s: Satisfied(%v) = %t, want %t", test.text, test.truth, got, test.sat)
		}
		if got := gp.Stable(test.truth); got != test.want {
			t.Errorf("%s: Stable(%v) = %t, want %t", test.text, test.truth, got, test.want)
		}
	}
}

func TestModel(t *testing.T) {
	gp := mustGround(t, `{ a; b; c }.`)
	m := &ground.Model{Program: gp, Truth: []bool{true, false, true}}
	if diff := cmp.Diff([]string{"a", "c"}, test_helpers.Strings(m.Atoms())); diff != "" {
		t.Errorf("(-want, +got)%s", diff)
	}
	a, _ := parser.ParseAtom("c")
	if !m.Contains(a) {
		t.Errorf("model %v doesn't contain %v", m, a)
	}
	if got := m.String(); got != "a c" {
		t.Errorf("got %q, want %q", got, "a c")
	}
}
