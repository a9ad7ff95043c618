package solver

import (
	"io/ioutil"
)

// RuleSource provides the text of the rules of a program.
//
// A source is read once, when a Solver is created.
type RuleSource interface {
	ReadRules() (string, error)
	// String identifies the source in error messages.
	String() string
}

// FileSource reads rules from a file.
type FileSource string

// ReadRules returns the contents of the file.
func (f FileSource) ReadRules() (string, error) {
	bs, err := ioutil.ReadFile(string(f))
	if err != nil {
		return "", err
	}
	return string(bs), nil
}

func (f FileSource) String() string { return string(f) }

// TextSource is a rule source held in memory.
type TextSource string

// ReadRules returns the text itself.
func (t TextSource) ReadRules() (string, error) { return string(t), nil }

func (t TextSource) String() string { return "<text>" }
