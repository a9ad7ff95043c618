package logic

import (
	"strings"
	"unicode"

	"github.com/brunokim/asp-engine/runes"
)

// IsVar returns whether text is a valid variable name: after optional leading
// underscores, it starts with an uppercase letter. A single "_" is the
// anonymous variable.
func IsVar(text string) bool {
	if text == "_" {
		return true
	}
	ch, ok := runes.Kind(text)
	if !ok || !unicode.IsUpper(ch) {
		return false
	}
	return runes.IsIdents(text)
}

// IsSym returns whether text can be written as an unquoted symbol.
func IsSym(text string) bool {
	ch, ok := runes.Kind(text)
	if !ok || !unicode.IsLower(ch) {
		return false
	}
	return runes.IsIdents(text) && text != "not"
}

var escapeChars = map[rune]string{
	'\n': "\\n",
	'\t': "\\t",
	'"':  "\\\"",
	'\\': "\\\\",
}

// FormatString returns the quoted representation of a string constant.
func FormatString(text string) string {
	var b strings.Builder
	b.WriteRune('"')
	for _, ch := range text {
		if exp, ok := escapeChars[ch]; ok {
			b.WriteString(exp)
		} else {
			b.WriteRune(ch)
		}
	}
	b.WriteRune('"')
	return b.String()
}

// FormatSym returns the representation of a symbol, quoting it if it can't be
// read back as a symbol.
func FormatSym(text string) string {
	if IsSym(text) {
		return text
	}
	return FormatString(text)
}
