package test_helpers

import (
	"context"
	"sort"
	"strings"
	"testing"

	"github.com/brunokim/asp-engine/errors"
	"github.com/brunokim/asp-engine/ground"
	"github.com/brunokim/asp-engine/parser"
	"github.com/brunokim/asp-engine/program"
)

// MustGround parses and grounds a program, failing the test on error.
func MustGround(t testing.TB, text string) *ground.Program {
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
	gp, err := ground.Ground(context.Background(), p)
	if err != nil {
		t.Fatalf("Ground: got err: %v", err)
	}
	return gp
}

// Enumerator produces models until it returns an error.
type Enumerator interface {
	Next(ctx context.Context) (*ground.Model, error)
}

// ModelStrings drains an enumerator, formatting each model as its sorted atoms
// separated by spaces. It returns the models in the order they were produced,
// and the error that stopped the enumeration if it was not errors.ErrExhausted.
func ModelStrings(ctx context.Context, e Enumerator) ([]string, error) {
	models := []string{}
	for {
		m, err := e.Next(ctx)
		if errors.Is(err, errors.ErrExhausted) {
			return models, nil
		}
		if err != nil {
			return models, err
		}
		atoms := m.Atoms()
		strs := make([]string, len(atoms))
		for i, a := range atoms {
			strs[i] = a.String()
		}
		sort.Strings(strs)
		models = append(models, strings.Join(strs, " "))
	}
}
