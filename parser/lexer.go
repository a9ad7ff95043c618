package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/brunokim/asp-engine/errors"
	"github.com/brunokim/asp-engine/runes"
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokIdent
	tokVar
	tokInt
	tokString
	tokPunct
	tokDirective
)

func (k tokenKind) String() string {
	switch k {
	case tokEOF:
		return "end of input"
	case tokIdent:
		return "identifier"
	case tokVar:
		return "variable"
	case tokInt:
		return "integer"
	case tokString:
		return "string"
	case tokPunct:
		return "symbol"
	case tokDirective:
		return "directive"
	}
	return fmt.Sprintf("token(%d)", int(k))
}

type token struct {
	kind      tokenKind
	text      string
	line, col int
}

func (t token) String() string {
	if t.kind == tokEOF {
		return t.kind.String()
	}
	return fmt.Sprintf("%s %q", t.kind, t.text)
}

// Longer symbols come first, so that ":-" is not read as ":" and "-".
var puncts = []string{
	":-", "..", "!=", "<>", "==", "<=", ">=",
	"(", ")", "{", "}", ",", ";", ".", ":", "=", "<", ">", "+", "-", "*", "/", "\\",
}

type lexer struct {
	text      string
	pos       int
	line, col int
	toks      []token
}

func lex(text string) ([]token, error) {
	l := &lexer{text: text, line: 1, col: 1}
	for {
		if err := l.skipSpace(); err != nil {
			return nil, err
		}
		if l.pos >= len(l.text) {
			l.toks = append(l.toks, token{kind: tokEOF, line: l.line, col: l.col})
			return l.toks, nil
		}
		if err := l.token(); err != nil {
			return nil, err
		}
	}
}

func (l *lexer) errorf(line, col int, format string, args ...interface{}) error {
	return &errors.ParseError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (l *lexer) peekRune() (rune, int) {
	return utf8.DecodeRuneInString(l.text[l.pos:])
}

func (l *lexer) advance(n int) {
	for _, ch := range l.text[l.pos : l.pos+n] {
		if ch == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
	}
	l.pos += n
}

func (l *lexer) skipSpace() error {
	for l.pos < len(l.text) {
		ch, size := l.peekRune()
		switch {
		case unicode.IsSpace(ch):
			l.advance(size)
		case strings.HasPrefix(l.text[l.pos:], "%*"):
			line, col := l.line, l.col
			end := strings.Index(l.text[l.pos+2:], "*%")
			if end < 0 {
				return l.errorf(line, col, "unterminated block comment")
			}
			l.advance(end + 4)
		case ch == '%':
			end := strings.IndexByte(l.text[l.pos:], '\n')
			if end < 0 {
				end = len(l.text) - l.pos
			}
			l.advance(end)
		default:
			return nil
		}
	}
	return nil
}

func (l *lexer) emit(kind tokenKind, text string, line, col int) {
	l.toks = append(l.toks, token{kind: kind, text: text, line: line, col: col})
}

func (l *lexer) token() error {
	line, col := l.line, l.col
	ch, _ := l.peekRune()
	rest := l.text[l.pos:]
	switch {
	case ch == '_' || unicode.IsLetter(ch):
		n := l.identLen(rest)
		name := rest[:n]
		l.advance(n)
		kind, ok := runes.Kind(name)
		if !ok || unicode.IsUpper(kind) {
			l.emit(tokVar, name, line, col)
		} else if unicode.IsLower(kind) {
			l.emit(tokIdent, name, line, col)
		} else {
			return l.errorf(line, col, "invalid name %q", name)
		}
	case unicode.IsDigit(ch):
		n := 0
		for n < len(rest) && rest[n] >= '0' && rest[n] <= '9' {
			n++
		}
		l.emit(tokInt, rest[:n], line, col)
		l.advance(n)
	case ch == '"':
		return l.quoted(line, col)
	case ch == '#':
		n := 1 + l.identLen(rest[1:])
		if n == 1 {
			return l.errorf(line, col, "expected directive name after '#'")
		}
		l.emit(tokDirective, rest[:n], line, col)
		l.advance(n)
	default:
		for _, p := range puncts {
			if strings.HasPrefix(rest, p) {
				text := p
				switch p {
				case "<>":
					text = "!="
				case "==":
					text = "="
				}
				l.emit(tokPunct, text, line, col)
				l.advance(len(p))
				return nil
			}
		}
		return l.errorf(line, col, "unexpected character %q", ch)
	}
	return nil
}

func (l *lexer) identLen(s string) int {
	n := 0
	for n < len(s) {
		ch, size := utf8.DecodeRuneInString(s[n:])
		if !runes.IsIdent(ch) {
			break
		}
		n += size
	}
	return n
}

func (l *lexer) quoted(line, col int) error {
	var b strings.Builder
	i := l.pos + 1
	for i < len(l.text) {
		ch, size := utf8.DecodeRuneInString(l.text[i:])
		switch ch {
		case '"':
			l.emit(tokString, b.String(), line, col)
			l.advance(i + size - l.pos)
			return nil
		case '\n':
			return l.errorf(line, col, "unterminated string")
		case '\\':
			if i+1 >= len(l.text) {
				return l.errorf(line, col, "unterminated string")
			}
			switch l.text[i+1] {
			case 'n':
				b.WriteByte('\n')
			case 't':
				b.WriteByte('\t')
			case '"', '\\':
				b.WriteByte(l.text[i+1])
			default:
				return l.errorf(line, col, "invalid escape \\%c", l.text[i+1])
			}
			i += 2
			continue
		default:
			b.WriteRune(ch)
		}
		i += size
	}
	return l.errorf(line, col, "unterminated string")
}
