package search_test

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"testing"

	"github.com/brunokim/asp-engine/errors"
	"github.com/brunokim/asp-engine/search"
	"github.com/brunokim/asp-engine/test_helpers"

	"github.com/google/go-cmp/cmp"
)

var modelTests = []struct {
	text string
	want []string
}{
	{`a.`, []string{"a"}},
	{`a :- not b. b :- not a.`, []string{"a", "b"}},
	{`a :- b. b :- a.`, []string{""}},
	{`{ a }. b :- a. a :- b.`, []string{"", "a b"}},
	{`{ a; b }. :- a, b.`, []string{"", "a", "b"}},
	{`d(1..3). { p(X) : d(X) } = 2.`, []string{"d(1) d(2) d(3) p(1) p(2)", "d(1) d(2) d(3) p(1) p(3)", "d(1) d(2) d(3) p(2) p(3)"}},
	{`1 { a; b; c } 1. :- b.`, []string{"a", "c"}},
	{`a :- not a.`, []string{}},
	{`a :- not b. b :- not c. c :- not a.`, []string{}},
	{`p :- not q. q :- not p. r :- p. r :- q. :- not r.`, []string{"p r", "q r"}},
	{`p :- not q. q :- not p. :- p.`, []string{"q"}},
	{`{ a }. b :- not a. c :- a, not b. :- c.`, []string{"b"}},
	{
		`team(tamu). team(bama).
         { win(T) : team(T) } = 1.
         lose(T) :- team(T), not win(T).`,
		[]string{"lose(bama) team(bama) team(tamu) win(tamu)", "lose(tamu) team(bama) team(tamu) win(bama)"},
	},
}

func TestNext(t *testing.T) {
	for _, test := range modelTests {
		s := search.New(test_helpers.MustGround(t, test.text), search.Options{})
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

func TestNext_Deterministic(t *testing.T) {
	text := `d(1..4). { p(X) : d(X) }. q(X) :- d(X), not p(X).`
	var runs [][]string
	for i := 0; i < 3; i++ {
		s := search.New(test_helpers.MustGround(t, text), search.Options{})
		models, err := test_helpers.ModelStrings(context.Background(), s)
		if err != nil {
			t.Fatalf("got err: %v", err)
		}
		runs = append(runs, models)
	}
	if len(runs[0]) != 16 {
		t.Errorf("want 16 models, got %d", len(runs[0]))
	}
	for _, run := range runs[1:] {
		if diff := cmp.Diff(runs[0], run); diff != "" {
			t.Errorf("enumeration order changed (-first, +other)\n%s", diff)
		}
	}
}

func TestNext_Exhausted(t *testing.T) {
	s := search.New(test_helpers.MustGround(t, `a.`), search.Options{})
	ctx := context.Background()
	if _, err := s.Next(ctx); err != nil {
		t.Fatalf("got err: %v", err)
	}
	for i := 0; i < 2; i++ {
		if _, err := s.Next(ctx); !errors.Is(err, errors.ErrExhausted) {
			t.Errorf("want ErrExhausted, got %v", err)
		}
	}
}

func TestNext_StepLimit(t *testing.T) {
	gp := test_helpers.MustGround(t, `d(1..10). { p(X) : d(X) }.`)
	s := search.New(gp, search.Options{StepLimit: 50})
	ctx := context.Background()
	models, err := test_helpers.ModelStrings(ctx, s)
	if !errors.Is(err, errors.ErrTimeout) {
		t.Fatalf("want ErrTimeout, got %v", err)
	}
	if len(models) >= 1024 {
		t.Errorf("step limit didn't cut the enumeration: %d models", len(models))
	}
	if _, err2 := s.Next(ctx); err2 == nil || err2.Error() != err.Error() {
		t.Errorf("want the same error after failure, got %v", err2)
	}
}

func TestNext_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := search.New(test_helpers.MustGround(t, `d(1..10). { p(X) : d(X) }.`), search.Options{})
	_, err := test_helpers.ModelStrings(ctx, s)
	if !errors.Is(err, errors.ErrTimeout) {
		t.Errorf("want ErrTimeout, got %v", err)
	}
}

func TestDebugFile(t *testing.T) {
	filename := filepath.Join(t.TempDir(), "debug.jsonl")
	s := search.New(test_helpers.MustGround(t, `a :- not b. b :- not a.`), search.Options{DebugFilename: filename})
	if _, err := test_helpers.ModelStrings(context.Background(), s); err != nil {
		t.Fatalf("got err: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close: got err: %v", err)
	}

	f, err := os.Open(filename)
	if err != nil {
		t.Fatalf("got err: %v", err)
	}
	defer f.Close()
	scanner := bufio.NewScanner(f)
	if !scanner.Scan() {
		t.Fatalf("empty debug file")
	}
	var header struct{ Rules []string }
	if err := json.Unmarshal(scanner.Bytes(), &header); err != nil {
		t.Fatalf("header: %v", err)
	}
	if diff := cmp.Diff([]string{"a :- not b.", "b :- not a."}, header.Rules); diff != "" {
		t.Errorf("(-want, +got)\n%s", diff)
	}
	counts := make(map[string]int)
	for scanner.Scan() {
		var e struct {
			Event string
			Step  int
		}
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("%s: %v", scanner.Text(), err)
		}
		counts[e.Event]++
	}
	if counts["model"] != 2 {
		t.Errorf("want 2 model events, got %v", counts)
	}
	if counts["decide"] == 0 {
		t.Errorf("want decide events, got %v", counts)
	}
}
