// Package runes contains some generally useful operations on runes.
package runes

import (
	"unicode"
	"unicode/utf8"
)

// First returns the first rune of s. If the string is empty or not proper UTF-8, returns false.
func First(s string) (rune, bool) {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError && size < 2 {
		return 0, false
	}
	return r, true
}

// Single returns the single rune of s. If the string doesn't have exactly one rune, returns
// false.
func Single(s string) (rune, bool) {
	r, size := utf8.DecodeRuneInString(s)
	return r, size == len(s)
}

// IsIdent reports whether r may appear after the first rune of a name.
func IsIdent(r rune) bool {
	return r == '_' || r == '\'' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Kind returns the rune deciding whether a name is a constant or a variable,
// that is, its first rune after leading underscores. Returns false for names
// that are all underscores.
func Kind(s string) (rune, bool) {
	for _, r := range s {
		if r != '_' {
			return r, true
		}
	}
	return 0, false
}

// IsIdents reports whether every rune of s is an identifier rune.
func IsIdents(s string) bool {
	for _, r := range s {
		if !IsIdent(r) {
			return false
		}
	}
	return true
}
