// Package parser implements a parser for answer set programs in a clingo-like
// syntax.
//
// The supported statements are facts 'p(1..3).', rules 'h :- b, not c, X < Y.',
// integrity constraints ':- b.', choice rules '{ p(X) : q(X) } = 1 :- b.', and
// the directives '#show p/1.' and '#const n = 3.'. Comments start with '%' and
// go until the end of line, or are enclosed in '%*' and '*%'.
package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/brunokim/asp-engine/errors"
	"github.com/brunokim/asp-engine/logic"
)

// Statements are the contents of a rule source.
type Statements struct {
	Rules []*logic.Rule
	// Show lists the predicates from '#show' directives, in order.
	Show []logic.Indicator
}

type parser struct {
	toks   []token
	pos    int
	consts map[string]logic.Term
	anon   int
}

// ParseProgram parses a sequence of rules and directives.
func ParseProgram(text string) (stmts *Statements, err error) {
	p, err := newParser(text)
	if err != nil {
		return nil, err
	}
	defer recoverParseError(&err)
	p.readConsts()
	stmts = new(Statements)
	for p.peek().kind != tokEOF {
		p.statement(stmts)
	}
	return stmts, nil
}

// ParseRules parses a sequence of rules. Directives are accepted, but only
// '#const' has any effect.
func ParseRules(text string) ([]*logic.Rule, error) {
	stmts, err := ParseProgram(text)
	if err != nil {
		return nil, err
	}
	return stmts.Rules, nil
}

// ParseFacts parses a sequence of facts, like 'tamu_win. bama_loss.'. The
// text "." alone is an empty sequence.
func ParseFacts(text string) ([]*logic.Atom, error) {
	stmts, err := ParseProgram(text)
	if err != nil {
		if strings.TrimSpace(text) == "." {
			return nil, nil
		}
		return nil, err
	}
	atoms := make([]*logic.Atom, len(stmts.Rules))
	for i, r := range stmts.Rules {
		if !r.IsFact() {
			return nil, errors.New("expecting only facts, got %v", r)
		}
		atoms[i] = r.Head.(*logic.Atom)
	}
	return atoms, nil
}

// ParseTerm parses a single term.
func ParseTerm(text string) (t logic.Term, err error) {
	p, err := newParser(text)
	if err != nil {
		return nil, err
	}
	defer recoverParseError(&err)
	t = p.term()
	p.expectKind(tokEOF)
	return t, nil
}

// ParseAtom parses a single atom, with an optional final '.'.
func ParseAtom(text string) (a *logic.Atom, err error) {
	p, err := newParser(text)
	if err != nil {
		return nil, err
	}
	defer recoverParseError(&err)
	a = p.atom()
	p.accept(".")
	p.expectKind(tokEOF)
	return a, nil
}

func newParser(text string) (*parser, error) {
	toks, err := lex(text)
	if err != nil {
		return nil, err
	}
	return &parser{toks: toks, consts: make(map[string]logic.Term)}, nil
}

func recoverParseError(err *error) {
	if r := recover(); r != nil {
		perr, ok := r.(*errors.ParseError)
		if !ok {
			panic(r)
		}
		*err = perr
	}
}

// ---- token helpers

func (p *parser) peek() token { return p.at(0) }

func (p *parser) at(offset int) token {
	i := p.pos + offset
	if i >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[i]
}

func (p *parser) next() token {
	tok := p.peek()
	if tok.kind != tokEOF {
		p.pos++
	}
	return tok
}

func (p *parser) fail(tok token, format string, args ...interface{}) {
	panic(&errors.ParseError{Line: tok.line, Col: tok.col, Msg: fmt.Sprintf(format, args...)})
}

func (p *parser) isPunct(text string) bool {
	tok := p.peek()
	return tok.kind == tokPunct && tok.text == text
}

func (p *parser) accept(text string) bool {
	if p.isPunct(text) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(text string) token {
	tok := p.next()
	if tok.kind != tokPunct || tok.text != text {
		p.fail(tok, "expected %q, got %v", text, tok)
	}
	return tok
}

func (p *parser) expectKind(kind tokenKind) token {
	tok := p.next()
	if tok.kind != kind {
		p.fail(tok, "expected %v, got %v", kind, tok)
	}
	return tok
}

var cmpOps = map[string]bool{"=": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true}

var arithOps = map[string]bool{"+": true, "-": true, "*": true, "/": true, "\\": true, "..": true}

func isCmp(tok token) bool   { return tok.kind == tokPunct && cmpOps[tok.text] }
func isArith(tok token) bool { return tok.kind == tokPunct && arithOps[tok.text] }

// ---- statements

// readConsts reads every '#const' directive before the main pass, so that
// constants can be used before their definition.
func (p *parser) readConsts() {
	for i, tok := range p.toks {
		if tok.kind != tokDirective || tok.text != "#const" {
			continue
		}
		p.pos = i + 1
		name := p.expectKind(tokIdent)
		p.expect("=")
		t := p.term()
		p.expect(".")
		if v, err := logic.Eval(t, nil); err == nil {
			t = v
		}
		p.consts[name.text] = t
	}
	p.pos = 0
}

func (p *parser) statement(stmts *Statements) {
	if p.peek().kind == tokDirective {
		p.directive(stmts)
		return
	}
	if p.accept(":-") {
		body := p.body()
		p.expect(".")
		stmts.Rules = append(stmts.Rules, logic.NewConstraint(body...))
		return
	}
	head := p.head()
	var body []logic.Literal
	if p.accept(":-") && !p.isPunct(".") {
		body = p.body()
	}
	p.expect(".")
	stmts.Rules = append(stmts.Rules, logic.NewRule(head, body...))
}

func (p *parser) directive(stmts *Statements) {
	tok := p.next()
	switch tok.text {
	case "#show":
		name := p.expectKind(tokIdent)
		p.expect("/")
		arity := p.intValue(p.expectKind(tokInt))
		p.expect(".")
		stmts.Show = append(stmts.Show, logic.Indicator{Name: name.text, Arity: arity})
	case "#const":
		// Already read by readConsts.
		p.expectKind(tokIdent)
		p.expect("=")
		p.term()
		p.expect(".")
	default:
		p.fail(tok, "unknown directive %s", tok.text)
	}
}

func (p *parser) intValue(tok token) int {
	i, err := strconv.Atoi(tok.text)
	if err != nil {
		p.fail(tok, "invalid integer %q", tok.text)
	}
	return i
}

// ---- heads

func (p *parser) head() logic.Head {
	if p.isPunct("{") || p.startsLowerBound() {
		return p.choice()
	}
	return p.atom()
}

// startsLowerBound looks ahead for 'K {' or 'K <= {'.
func (p *parser) startsLowerBound() bool {
	tok := p.peek()
	if tok.kind != tokInt && tok.kind != tokIdent {
		return false
	}
	if next := p.at(1); next.kind == tokPunct && next.text == "{" {
		return true
	}
	return isCmp(p.at(1)) && p.at(2).kind == tokPunct && p.at(2).text == "{"
}

func (p *parser) choice() *logic.Choice {
	lower, upper := 0, logic.NoBound
	if !p.isPunct("{") {
		tok := p.peek()
		k := p.bound()
		op := "<="
		if isCmp(p.peek()) {
			op = p.next().text
		}
		switch op {
		case "<=":
			lower = k
		case "<":
			lower = k + 1
		case "=":
			lower, upper = k, k
		case ">=":
			upper = k
		case ">":
			upper = k - 1
		default:
			p.fail(tok, "invalid choice bound operator %q", op)
		}
	}
	p.expect("{")
	var elems []*logic.Element
	for !p.isPunct("}") {
		elems = append(elems, p.element())
		if !p.accept(";") {
			break
		}
	}
	p.expect("}")
	tok := p.peek()
	switch {
	case isCmp(tok):
		op := p.next().text
		k := p.bound()
		switch op {
		case "=":
			lower, upper = k, k
		case "<=":
			upper = k
		case "<":
			upper = k - 1
		case ">=":
			lower = k
		case ">":
			lower = k + 1
		default:
			p.fail(tok, "invalid choice bound operator %q", op)
		}
	case tok.kind == tokInt || tok.kind == tokIdent || (tok.kind == tokPunct && tok.text == "("):
		upper = p.bound()
	}
	return logic.NewChoice(lower, upper, elems...)
}

func (p *parser) bound() int {
	tok := p.peek()
	t := p.additive()
	v, err := logic.Eval(t, nil)
	if err != nil {
		p.fail(tok, "choice bound must be a constant integer: %v", err)
	}
	i, ok := v.(logic.Int)
	if !ok {
		p.fail(tok, "choice bound must be an integer, got %v", v)
	}
	return i.Value
}

func (p *parser) element() *logic.Element {
	a := p.atom()
	var cond []logic.Literal
	if p.accept(":") {
		cond = append(cond, p.literal())
		for p.accept(",") {
			cond = append(cond, p.literal())
		}
	}
	return &logic.Element{Atom: a, Condition: cond}
}

// ---- bodies

func (p *parser) body() []logic.Literal {
	lits := []logic.Literal{p.literal()}
	for p.accept(",") || p.accept(";") {
		lits = append(lits, p.literal())
	}
	return lits
}

func (p *parser) literal() logic.Literal {
	tok := p.peek()
	if tok.kind == tokIdent && tok.text == "not" {
		p.next()
		return logic.Lit{Atom: p.atom(), Negated: true}
	}
	if tok.kind == tokIdent && !isCmp(p.at(1)) && !isArith(p.at(1)) {
		return logic.Lit{Atom: p.atom()}
	}
	left := p.term()
	op := p.next()
	if !isCmp(op) {
		p.fail(op, "expected comparison operator, got %v", op)
	}
	right := p.term()
	return logic.Comparison{Op: op.text, Left: left, Right: right}
}

func (p *parser) atom() *logic.Atom {
	tok := p.next()
	if tok.kind != tokIdent || tok.text == "not" {
		p.fail(tok, "expected atom, got %v", tok)
	}
	var args []logic.Term
	if p.accept("(") {
		for !p.isPunct(")") {
			args = append(args, p.term())
			if !p.accept(",") {
				break
			}
		}
		p.expect(")")
	}
	return logic.NewAtom(tok.text, args...)
}

// ---- terms

func (p *parser) term() logic.Term {
	t := p.additive()
	if p.accept("..") {
		return logic.NewRange(t, p.additive())
	}
	return t
}

func (p *parser) additive() logic.Term {
	t := p.multiplicative()
	for p.isPunct("+") || p.isPunct("-") {
		op := p.next().text
		t = logic.NewBinOp(op, t, p.multiplicative())
	}
	return t
}

func (p *parser) multiplicative() logic.Term {
	t := p.unary()
	for p.isPunct("*") || p.isPunct("/") || p.isPunct("\\") {
		op := p.next().text
		t = logic.NewBinOp(op, t, p.unary())
	}
	return t
}

func (p *parser) unary() logic.Term {
	if p.accept("-") {
		t := p.unary()
		if i, ok := t.(logic.Int); ok {
			return logic.Int{Value: -i.Value}
		}
		return logic.NewBinOp("-", logic.Int{Value: 0}, t)
	}
	return p.primary()
}

func (p *parser) primary() logic.Term {
	tok := p.next()
	switch tok.kind {
	case tokInt:
		return logic.Int{Value: p.intValue(tok)}
	case tokString:
		return logic.Str{Value: tok.text}
	case tokVar:
		if tok.text == "_" {
			p.anon++
			return logic.Var{Name: fmt.Sprintf("_%d", p.anon)}
		}
		return logic.Var{Name: tok.text}
	case tokIdent:
		if p.isPunct("(") {
			p.fail(tok, "function symbols are not supported: %s(...)", tok.text)
		}
		if t, ok := p.consts[tok.text]; ok {
			return t
		}
		return logic.Sym{Name: tok.text}
	case tokPunct:
		if tok.text == "(" {
			t := p.term()
			p.expect(")")
			return t
		}
	}
	p.fail(tok, "expected term, got %v", tok)
	return nil
}
