package test_helpers

import (
	"github.com/brunokim/asp-engine/logic"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var (
	IgnoreUnexported = cmp.Options{
		cmpopts.IgnoreUnexported(logic.Atom{}),
		cmpopts.IgnoreUnexported(logic.BinOp{}),
		cmpopts.IgnoreUnexported(logic.Range{}),
		cmpopts.IgnoreUnexported(logic.Rule{}),
	}

	// AtomStrings compares atoms by their textual form.
	AtomStrings = cmp.Transformer("AtomStrings", Strings)
)

// Strings formats each atom.
func Strings(atoms []*logic.Atom) []string {
	if atoms == nil {
		return nil
	}
	strs := make([]string, len(atoms))
	for i, a := range atoms {
		strs[i] = a.String()
	}
	return strs
}
