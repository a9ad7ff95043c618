// Package ground instantiates a program with variables into an equivalent
// ground program.
//
// Grounding proceeds in two strata. Domain predicates, whose extension is
// fully determined by facts and by positive rules over other domain
// predicates, are computed first. Then the remaining rules are instantiated
// over the possible atoms, an over-approximation of what any stable model
// may contain. Both strata use a semi-naive fixpoint, so that each rule
// instance is only found once.
//
// Choice element conditions must be made of domain predicates, so that the
// set of candidates of a choice is known after the first stratum.
package ground

import (
	"context"
	"sort"

	"github.com/brunokim/asp-engine/errors"
	"github.com/brunokim/asp-engine/logic"
	"github.com/brunokim/asp-engine/program"
)

// pollInterval is the number of grounding steps between context checks.
const pollInterval = 1024

type stepKind int

const (
	joinStep stepKind = iota
	assignStep
	filterStep
	negStep
)

// step is one operation of a body's evaluation plan.
type step struct {
	kind stepKind
	// atom is the pattern of join and negation steps.
	atom *logic.Atom
	// cmp is the comparison of assign and filter steps.
	cmp logic.Comparison
	// x is the var bound by an assign step.
	x logic.Var
	// join is the position of a join step among the joins of a plan.
	join int
}

type plan struct {
	rule  *logic.Rule
	steps []step
	joins int
	// elems holds the condition plans of a choice head, in order.
	elems [][]step
}

// window restricts the atom ids visible to each join of a plan, implementing
// semi-naive evaluation. The join at position pivot only reads atoms from the
// last round, [old, limit); joins before it read [0, old), and joins after it
// read [0, limit).
type window struct {
	old, limit int
	pivot      int
	seminaive  bool
	// final enables negation and literal collection for rule instances.
	final bool
}

func (w window) bounds(join int) (int, int) {
	if !w.seminaive {
		return 0, w.limit
	}
	switch {
	case join < w.pivot:
		return 0, w.old
	case join == w.pivot:
		return w.old, w.limit
	default:
		return 0, w.limit
	}
}

type grounder struct {
	ctx    context.Context
	prog   *Program
	byPred map[logic.Indicator][]int
	domain map[logic.Indicator]bool
	seen   map[string]bool
	steps  int
}

// Ground instantiates every rule of the program.
//
// It returns an error wrapping errors.ErrTimeout if ctx is done before
// grounding finishes.
func Ground(ctx context.Context, p *program.Program) (*Program, error) {
	return Rules(ctx, p.Rules())
}

// Rules instantiates a sequence of domain-restricted rules.
func Rules(ctx context.Context, rules []*logic.Rule) (*Program, error) {
	g := &grounder{
		ctx:    ctx,
		prog:   NewProgram(),
		byPred: make(map[logic.Indicator][]int),
		domain: domainPredicates(rules),
		seen:   make(map[string]bool),
	}
	var plans, domainPlans, otherPlans []*plan
	for _, r := range rules {
		pl, err := g.newPlan(r)
		if err != nil {
			return nil, err
		}
		plans = append(plans, pl)
		if h, ok := r.Head.(*logic.Atom); ok && g.domain[h.Indicator()] {
			domainPlans = append(domainPlans, pl)
		} else {
			otherPlans = append(otherPlans, pl)
		}
	}
	if err := g.fixpoint(domainPlans); err != nil {
		return nil, err
	}
	if err := g.fixpoint(otherPlans); err != nil {
		return nil, err
	}
	for _, pl := range plans {
		if err := g.instantiate(pl); err != nil {
			return nil, err
		}
	}
	return g.prog, nil
}

// domainPredicates returns the predicates whose extension doesn't depend on
// negation or choices. Predicates without rules are domain predicates, with
// an empty extension.
func domainPredicates(rules []*logic.Rule) map[logic.Indicator]bool {
	nonDomain := make(map[logic.Indicator]bool)
	for _, r := range rules {
		if c, ok := r.Head.(*logic.Choice); ok {
			for _, elem := range c.Elements {
				nonDomain[elem.Atom.Indicator()] = true
			}
		}
	}
	for changed := true; changed; {
		changed = false
		for _, r := range rules {
			h, ok := r.Head.(*logic.Atom)
			if !ok || nonDomain[h.Indicator()] {
				continue
			}
			for _, lit := range r.Body {
				l, ok := lit.(logic.Lit)
				if ok && (l.Negated || nonDomain[l.Atom.Indicator()]) {
					nonDomain[h.Indicator()] = true
					changed = true
					break
				}
			}
		}
	}
	domain := make(map[logic.Indicator]bool)
	for _, r := range rules {
		for _, a := range ruleAtoms(r) {
			if ind := a.Indicator(); !nonDomain[ind] {
				domain[ind] = true
			}
		}
	}
	return domain
}

func ruleAtoms(r *logic.Rule) []*logic.Atom {
	var atoms []*logic.Atom
	switch h := r.Head.(type) {
	case *logic.Atom:
		atoms = append(atoms, h)
	case *logic.Choice:
		for _, elem := range h.Elements {
			atoms = append(atoms, elem.Atom)
			atoms = append(atoms, literalAtoms(elem.Condition)...)
		}
	}
	return append(atoms, literalAtoms(r.Body)...)
}

func literalAtoms(lits []logic.Literal) []*logic.Atom {
	var atoms []*logic.Atom
	for _, lit := range lits {
		if l, ok := lit.(logic.Lit); ok {
			atoms = append(atoms, l.Atom)
		}
	}
	return atoms
}

// Check builds the evaluation plans of the rules without instantiating them,
// and returns the first rule that can't be grounded. Adding facts never turns
// a domain predicate into a non-domain one, so a rule set that passes Check
// only fails Ground on its facts or on ctx.
func Check(rules []*logic.Rule) error {
	g := &grounder{domain: domainPredicates(rules)}
	for _, r := range rules {
		if _, err := g.newPlan(r); err != nil {
			return err
		}
	}
	return nil
}

// ---- Plans

func (g *grounder) newPlan(r *logic.Rule) (*plan, error) {
	bound := make(map[logic.Var]bool)
	steps, err := orderLiterals(r.Body, bound)
	if err != nil {
		return nil, errors.New("%v: %v", r, err)
	}
	pl := &plan{rule: r, steps: steps}
	for _, s := range steps {
		if s.kind == joinStep {
			pl.joins++
		}
	}
	if c, ok := r.Head.(*logic.Choice); ok {
		for _, elem := range c.Elements {
			for _, a := range literalAtoms(elem.Condition) {
				if !g.domain[a.Indicator()] {
					return nil, errors.New("%v: choice condition %v must be a domain predicate", r, a)
				}
			}
			local := make(map[logic.Var]bool, len(bound))
			for x := range bound {
				local[x] = true
			}
			elemSteps, err := orderLiterals(elem.Condition, local)
			if err != nil {
				return nil, errors.New("%v: %v", r, err)
			}
			pl.elems = append(pl.elems, elemSteps)
		}
	}
	return pl, nil
}

// orderLiterals builds a static evaluation plan for a body. Comparisons are
// placed as soon as their vars are bound, and atoms are joined in source order
// as soon as their non-var args are evaluable. Negated atoms come last.
// bound is updated with the vars bound by the plan.
func orderLiterals(lits []logic.Literal, bound map[logic.Var]bool) ([]step, error) {
	var pos, negs []*logic.Atom
	var cmps []logic.Comparison
	for _, lit := range lits {
		switch l := lit.(type) {
		case logic.Lit:
			if l.Negated {
				negs = append(negs, l.Atom)
			} else {
				pos = append(pos, l.Atom)
			}
		case logic.Comparison:
			cmps = append(cmps, l)
		}
	}
	var steps []step
	usedPos := make([]bool, len(pos))
	placed := make([]bool, len(cmps))
	joins := 0
	for {
		for changed := true; changed; {
			changed = false
			for i, c := range cmps {
				if placed[i] {
					continue
				}
				if x, ok := logic.AssignedVar(c, bound); ok {
					steps = append(steps, step{kind: assignStep, cmp: c, x: x})
					bound[x] = true
				} else if logic.AllBound(c.Left, bound) && logic.AllBound(c.Right, bound) {
					steps = append(steps, step{kind: filterStep, cmp: c})
				} else {
					continue
				}
				placed[i] = true
				changed = true
			}
		}
		next := -1
		for i, a := range pos {
			if !usedPos[i] && joinable(a, bound) {
				next = i
				break
			}
		}
		if next < 0 {
			break
		}
		usedPos[next] = true
		steps = append(steps, step{kind: joinStep, atom: pos[next], join: joins})
		joins++
		for _, arg := range pos[next].Args {
			if x, ok := arg.(logic.Var); ok {
				bound[x] = true
			}
		}
	}
	for i, a := range pos {
		if !usedPos[i] {
			return nil, errors.New("can't bind the args of %v", a)
		}
	}
	for i, c := range cmps {
		if !placed[i] {
			return nil, errors.New("can't evaluate %v", c)
		}
	}
	for _, a := range negs {
		steps = append(steps, step{kind: negStep, atom: a})
	}
	return steps, nil
}

// joinable returns whether every arg of a that is not a plain var is evaluable.
func joinable(a *logic.Atom, bound map[logic.Var]bool) bool {
	for _, arg := range a.Args {
		if _, ok := arg.(logic.Var); ok {
			continue
		}
		if !logic.AllBound(arg, bound) {
			return false
		}
	}
	return true
}

// ---- Evaluation

func (g *grounder) tick() error {
	g.steps++
	if g.steps%pollInterval != 0 {
		return nil
	}
	if err := g.ctx.Err(); err != nil {
		return errors.New("%v: grounding interrupted after %d steps: %v", errors.ErrTimeout, g.steps, err)
	}
	return nil
}

// instance is a partial rule instance, with the ids of non-domain body atoms.
type instance struct {
	b        logic.Bindings
	pos, neg []int
}

type emitFunc func(inst instance) error

// solve enumerates the bindings that satisfy steps, in plan order.
func (g *grounder) solve(steps []step, w window, inst instance, emit emitFunc) error {
	if err := g.tick(); err != nil {
		return err
	}
	if len(steps) == 0 {
		return emit(inst)
	}
	s, rest := steps[0], steps[1:]
	switch s.kind {
	case assignStep:
		expr := s.cmp.Right
		if x, ok := s.cmp.Right.(logic.Var); ok && x == s.x {
			expr = s.cmp.Left
		}
		v, err := logic.Eval(expr, inst.b)
		if err != nil {
			return nil
		}
		inst.b = inst.b.Bind(s.x, v)
		return g.solve(rest, w, inst, emit)
	case filterStep:
		ok, err := s.cmp.Holds(inst.b)
		if err != nil || !ok {
			return nil
		}
		return g.solve(rest, w, inst, emit)
	case negStep:
		if !w.final && !g.domain[s.atom.Indicator()] {
			return g.solve(rest, w, inst, emit)
		}
		a, err := s.atom.Subst(inst.b)
		if err != nil {
			return nil
		}
		id, ok := g.prog.Lookup(a)
		if !ok {
			// Impossible atoms are false in every model.
			return g.solve(rest, w, inst, emit)
		}
		if g.domain[a.Indicator()] {
			return nil
		}
		inst.neg = append(inst.neg, id)
		return g.solve(rest, w, inst, emit)
	case joinStep:
		ids := g.byPred[s.atom.Indicator()]
		lo, hi := w.bounds(s.join)
		start := sort.SearchInts(ids, lo)
		certain := g.domain[s.atom.Indicator()]
		for _, id := range ids[start:] {
			if id >= hi {
				break
			}
			b, ok := logic.Match(s.atom, g.prog.Atoms[id], inst.b)
			if !ok {
				continue
			}
			next := instance{b: b, pos: inst.pos, neg: inst.neg}
			if w.final && !certain {
				next.pos = append(next.pos, id)
			}
			if err := g.solve(rest, w, next, emit); err != nil {
				return err
			}
		}
		return nil
	}
	return nil
}

func (g *grounder) add(a *logic.Atom) {
	n := len(g.prog.Atoms)
	id := g.prog.AddAtom(a)
	if id == n {
		ind := a.Indicator()
		g.byPred[ind] = append(g.byPred[ind], id)
	}
}

// derive adds the head atoms of a rule instance to the universe.
func (g *grounder) derive(pl *plan, inst instance) error {
	switch h := pl.rule.Head.(type) {
	case *logic.Atom:
		a, err := h.Subst(inst.b)
		if err != nil {
			return nil
		}
		g.add(a)
	case *logic.Choice:
		all := window{limit: len(g.prog.Atoms)}
		for i, elem := range h.Elements {
			err := g.solve(pl.elems[i], all, instance{b: inst.b}, func(e instance) error {
				if a, err := elem.Atom.Subst(e.b); err == nil {
					g.add(a)
				}
				return nil
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// fixpoint computes the possible atoms derived by a set of rules.
func (g *grounder) fixpoint(plans []*plan) error {
	old, limit := 0, len(g.prog.Atoms)
	for round := 0; ; round++ {
		for _, pl := range plans {
			if pl.rule.Head == nil {
				continue
			}
			emit := func(inst instance) error { return g.derive(pl, inst) }
			if pl.joins == 0 {
				if round == 0 {
					if err := g.solve(pl.steps, window{limit: limit}, instance{}, emit); err != nil {
						return err
					}
				}
				continue
			}
			for pivot := 0; pivot < pl.joins; pivot++ {
				w := window{old: old, limit: limit, pivot: pivot, seminaive: true}
				if err := g.solve(pl.steps, w, instance{}, emit); err != nil {
					return err
				}
			}
		}
		if len(g.prog.Atoms) == limit {
			return nil
		}
		old, limit = limit, len(g.prog.Atoms)
	}
}

// instantiate emits the ground instances of a rule over the final universe.
func (g *grounder) instantiate(pl *plan) error {
	w := window{limit: len(g.prog.Atoms), final: true}
	return g.solve(pl.steps, w, instance{}, func(inst instance) error {
		r := &Rule{Head: -1, Pos: dedupe(inst.pos), Neg: dedupe(inst.neg)}
		if overlaps(r.Pos, r.Neg) {
			return nil
		}
		switch h := pl.rule.Head.(type) {
		case *logic.Atom:
			a, err := h.Subst(inst.b)
			if err != nil {
				return nil
			}
			id, ok := g.prog.Lookup(a)
			if !ok {
				return nil
			}
			r.Head = id
		case *logic.Choice:
			c := &Choice{Lower: h.Lower, Upper: h.Upper}
			for i, elem := range h.Elements {
				err := g.solve(pl.elems[i], window{limit: w.limit}, instance{b: inst.b}, func(e instance) error {
					if a, err := elem.Atom.Subst(e.b); err == nil {
						if id, ok := g.prog.Lookup(a); ok {
							c.Elements = append(c.Elements, id)
						}
					}
					return nil
				})
				if err != nil {
					return err
				}
			}
			c.Elements = dedupe(c.Elements)
			r.Choice = c
		}
		if key := r.key(); !g.seen[key] {
			g.seen[key] = true
			g.prog.Rules = append(g.prog.Rules, r)
		}
		return nil
	})
}

// dedupe returns a copy of ids without repeated elements, keeping the first
// occurrence of each.
func dedupe(ids []int) []int {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int]bool, len(ids))
	out := make([]int, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func overlaps(pos, neg []int) bool {
	for _, a := range pos {
		for _, b := range neg {
			if a == b {
				return true
			}
		}
	}
	return false
}
