package sat_test

import (
	"context"
	"sort"
	"testing"

	"github.com/brunokim/asp-engine/errors"
	"github.com/brunokim/asp-engine/sat"
	"github.com/brunokim/asp-engine/search"
	"github.com/brunokim/asp-engine/test_helpers"

	"github.com/google/go-cmp/cmp"
)

func TestNext(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{`a.`, []string{"a"}},
		{`a :- not b. b :- not a.`, []string{"a", "b"}},
		// Supported models of the completion that aren't stable are skipped.
		{`{ c }. a :- b. b :- a. a :- c.`, []string{"", "a b c"}},
		{`a :- b. b :- a.`, []string{""}},
		{`{ a; b }. :- a, b.`, []string{"", "a", "b"}},
		{`{ a; b; c } = 2.`, []string{"a b", "a c", "b c"}},
		{`2 { a; b; c }.`, []string{"a b", "a b c", "a c", "b c"}},
		{`{ a; b; c } 1 :- go. go.`, []string{"a go", "b go", "c go", "go"}},
		{`a :- not a.`, []string{}},
		{`{ a; b } = -1.`, []string{}},
		{`{ a } < 0.`, []string{}},
		{`{ a; b } = 0.`, []string{""}},
		{`3 { a; b }.`, []string{}},
		{`p :- not q. q :- not p. r :- p. r :- q. :- not r.`, []string{"p r", "q r"}},
	}
	for _, test := range tests {
		s := sat.New(test_helpers.MustGround(t, test.text), sat.Options{})
		got, err := test_helpers.ModelStrings(context.Background(), s)
		if err != nil {
			t.Errorf("%s: got err: %v", test.text, err)
			continue
		}
		sort.Strings(got)
		if diff := cmp.Diff(test.want, got); diff != "" {
			t.Errorf("%s: (-want, +got)\n%s", test.text, diff)
		}
	}
}

func TestNext_SameAsSearch(t *testing.T) {
	texts := []string{
		`d(1..4). { p(X) : d(X) } = 2. q(X) :- d(X), not p(X). :- p(1), p(4).`,
		`n(1..3). { in(X) : n(X) }. out(X) :- n(X), not in(X). :- in(X), in(Y), X < Y, Y - X = 1.`,
		`a :- not b. b :- not c. c :- not d. d :- not a.`,
		`{ x }. y :- x. x :- y. z :- not y.`,
	}
	for _, text := range texts {
		gp := test_helpers.MustGround(t, text)
		want, err := test_helpers.ModelStrings(context.Background(), search.New(gp, search.Options{}))
		if err != nil {
			t.Fatalf("%s: search: %v", text, err)
		}
		got, err := test_helpers.ModelStrings(context.Background(), sat.New(gp, sat.Options{}))
		if err != nil {
			t.Fatalf("%s: sat: %v", text, err)
		}
		sort.Strings(want)
		sort.Strings(got)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Errorf("%s: (-search, +sat)\n%s", text, diff)
		}
	}
}

func TestNext_BoundsInClauses(t *testing.T) {
	// Each Next call takes a step, so every candidate must already be within
	// the bounds to reach the end within the limit.
	tests := []struct {
		text string
		want int
	}{
		{`{ a; b; c } = 2.`, 3},
		{`{ a; b; c; d; e; f } = 3.`, 20},
		{`2 { a; b; c; d; e } 2 :- go. go.`, 10},
		{`{ a; b; c; d } = -1.`, 0},
		{`{ a; b; c; d } <= 0.`, 1},
		{`4 { a; b; c; d }.`, 1},
	}
	for _, test := range tests {
		s := sat.New(test_helpers.MustGround(t, test.text), sat.Options{StepLimit: test.want + 1})
		got, err := test_helpers.ModelStrings(context.Background(), s)
		if err != nil {
			t.Errorf("%s: got err: %v", test.text, err)
			continue
		}
		if len(got) != test.want {
			t.Errorf("%s: want %d models, got %v", test.text, test.want, got)
		}
	}
}

func TestNext_StepLimit(t *testing.T) {
	s := sat.New(test_helpers.MustGround(t, `{ a; b; c; d }.`), sat.Options{StepLimit: 3})
	models, err := test_helpers.ModelStrings(context.Background(), s)
	if !errors.Is(err, errors.ErrTimeout) {
		t.Fatalf("want ErrTimeout, got %v", err)
	}
	if len(models) != 3 {
		t.Errorf("want 3 models before the limit, got %v", models)
	}
}

func TestNext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := sat.New(test_helpers.MustGround(t, `{ a; b }.`), sat.Options{})
	if _, err := s.Next(ctx); !errors.Is(err, errors.ErrTimeout) {
		t.Errorf("want ErrTimeout, got %v", err)
	}
	if _, err := s.Next(context.Background()); !errors.Is(err, errors.ErrTimeout) {
		t.Errorf("want sticky ErrTimeout, got %v", err)
	}
}
