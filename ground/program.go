package ground

import (
	"fmt"
	"strings"

	"github.com/brunokim/asp-engine/logic"
)

// Program is a ground program: a finite set of ground rules over a fixed
// universe of atoms.
type Program struct {
	// Atoms is the universe of the program. An atom's id is its position, and
	// atoms are ordered by first derivation.
	Atoms []*logic.Atom
	Rules []*Rule
	index map[string]int
}

// Rule is a ground rule over atom ids.
type Rule struct {
	// Head is the atom derived by a normal rule, or -1 for integrity
	// constraints and choice rules.
	Head int
	// Choice is non-nil for choice rules.
	Choice *Choice
	// Pos and Neg are the atoms of positive and negated body literals, without
	// duplicates.
	Pos, Neg []int
}

// Choice is a ground choice head.
type Choice struct {
	Elements []int
	Lower    int
	// Upper is logic.NoBound when the choice is unbounded.
	Upper int
}

// NewProgram returns an empty ground program.
func NewProgram() *Program {
	return &Program{index: make(map[string]int)}
}

// Lookup returns the id of a ground atom.
func (p *Program) Lookup(a *logic.Atom) (int, bool) {
	id, ok := p.index[a.String()]
	return id, ok
}

// AddAtom adds a ground atom to the universe if absent, and returns its id.
func (p *Program) AddAtom(a *logic.Atom) int {
	key := a.String()
	if id, ok := p.index[key]; ok {
		return id
	}
	id := len(p.Atoms)
	p.Atoms = append(p.Atoms, a)
	p.index[key] = id
	return id
}

// IsConstraint returns whether the rule has no head.
func (r *Rule) IsConstraint() bool { return r.Head < 0 && r.Choice == nil }

// Supports returns the atoms that the rule may derive.
func (r *Rule) Supports() []int {
	if r.Choice != nil {
		return r.Choice.Elements
	}
	if r.Head >= 0 {
		return []int{r.Head}
	}
	return nil
}

func (r *Rule) key() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%d|%v|%v", r.Head, r.Pos, r.Neg)
	if r.Choice != nil {
		fmt.Fprintf(&b, "|%v|%d|%d", r.Choice.Elements, r.Choice.Lower, r.Choice.Upper)
	}
	return b.String()
}

// ---- String()

// RuleString formats a ground rule with atom names.
func (p *Program) RuleString(r *Rule) string {
	var head string
	switch {
	case r.Choice != nil:
		elems := make([]*logic.Element, len(r.Choice.Elements))
		for i, id := range r.Choice.Elements {
			elems[i] = &logic.Element{Atom: p.Atoms[id]}
		}
		head = logic.NewChoice(r.Choice.Lower, r.Choice.Upper, elems...).String()
	case r.Head >= 0:
		head = p.Atoms[r.Head].String()
	}
	var body []string
	for _, id := range r.Pos {
		body = append(body, p.Atoms[id].String())
	}
	for _, id := range r.Neg {
		body = append(body, "not "+p.Atoms[id].String())
	}
	switch {
	case head == "":
		return fmt.Sprintf(":- %s.", strings.Join(body, ","))
	case len(body) == 0:
		return head + "."
	default:
		return fmt.Sprintf("%s :- %s.", head, strings.Join(body, ","))
	}
}

func (p *Program) String() string {
	lines := make([]string, len(p.Rules))
	for i, r := range p.Rules {
		lines[i] = p.RuleString(r)
	}
	return strings.Join(lines, "\n")
}

// ---- Semantics

func (p *Program) bodyHolds(r *Rule, truth []bool) bool {
	for _, id := range r.Pos {
		if !truth[id] {
			return false
		}
	}
	for _, id := range r.Neg {
		if truth[id] {
			return false
		}
	}
	return true
}

// Satisfied returns whether truth, a value for every atom in the universe,
// satisfies every rule, constraint and cardinality bound.
func (p *Program) Satisfied(truth []bool) bool {
	if len(truth) != len(p.Atoms) {
		return false
	}
	for _, r := range p.Rules {
		if !p.bodyHolds(r, truth) {
			continue
		}
		switch {
		case r.Choice != nil:
			n := 0
			for _, id := range r.Choice.Elements {
				if truth[id] {
					n++
				}
			}
			if n < r.Choice.Lower || (r.Choice.Upper != logic.NoBound && n > r.Choice.Upper) {
				return false
			}
		case r.Head < 0:
			return false
		case !truth[r.Head]:
			return false
		}
	}
	return true
}

// Stable returns whether truth is a stable model: it satisfies every rule, and
// every true atom is derived by the least model of the program's reduct.
//
// The reduct drops rules with a negated atom that is true in truth, and the
// negative literals of the remaining ones. A choice rule contributes the
// elements that are true in truth.
func (p *Program) Stable(truth []bool) bool {
	if !p.Satisfied(truth) {
		return false
	}
	derived := p.leastModel(truth)
	for i := range truth {
		if truth[i] != derived[i] {
			return false
		}
	}
	return true
}

func (p *Program) leastModel(truth []bool) []bool {
	waiting := make([]int, len(p.Rules))
	watch := make([][]int, len(p.Atoms))
	derived := make([]bool, len(p.Atoms))
	var queue []int
	fire := func(r *Rule) {
		for _, id := range r.Supports() {
			if truth[id] && !derived[id] {
				derived[id] = true
				queue = append(queue, id)
			}
		}
	}
	for i, r := range p.Rules {
		blocked := false
		for _, id := range r.Neg {
			if truth[id] {
				blocked = true
				break
			}
		}
		if blocked {
			continue
		}
		waiting[i] = len(r.Pos)
		for _, id := range r.Pos {
			watch[id] = append(watch[id], i)
		}
		if waiting[i] == 0 {
			fire(r)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, i := range watch[id] {
			waiting[i]--
			if waiting[i] == 0 {
				fire(p.Rules[i])
			}
		}
	}
	return derived
}

// ---- Model

// Model is a total assignment over the universe of a program.
type Model struct {
	Program *Program
	Truth   []bool
}

// Atoms returns the true atoms, in universe order.
func (m *Model) Atoms() []*logic.Atom {
	var atoms []*logic.Atom
	for id, ok := range m.Truth {
		if ok {
			atoms = append(atoms, m.Program.Atoms[id])
		}
	}
	return atoms
}

// Contains returns whether a ground atom is true in the model.
func (m *Model) Contains(a *logic.Atom) bool {
	id, ok := m.Program.Lookup(a)
	return ok && m.Truth[id]
}

func (m *Model) String() string {
	atoms := m.Atoms()
	strs := make([]string, len(atoms))
	for i, a := range atoms {
		strs[i] = a.String()
	}
	return strings.Join(strs, " ")
}
