package solver

import (
	"github.com/brunokim/asp-engine/ground"
	"github.com/brunokim/asp-engine/logic"
	"github.com/brunokim/asp-engine/program"
)

// Project returns the true atoms of a model whose predicates are shown, in
// universe order.
func Project(m *ground.Model, shown program.Shown) []*logic.Atom {
	atoms := []*logic.Atom{}
	for id, ok := range m.Truth {
		if a := m.Program.Atoms[id]; ok && shown.Visible(a) {
			atoms = append(atoms, a)
		}
	}
	return atoms
}
