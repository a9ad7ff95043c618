// Package errors contains the error values returned by the engine.
//
// Load-time failures (ParseError, UngroundedVariableError) are wrapped in a
// LoadError. Solve-time outcomes (ErrUnsatisfiable, ErrTimeout) are returned as
// sentinels that callers test with Is.
package errors

import (
	goerrors "errors"
	"fmt"
	"strings"
)

type err struct {
	msg  string
	args []interface{}
}

func (err err) Error() string {
	return fmt.Sprintf(err.msg, err.args...)
}

func (err err) Unwrap() error {
	for _, arg := range err.args {
		if wrapped, ok := arg.(error); ok {
			return wrapped
		}
	}
	return nil
}

// New returns an error formatted lazily from msg and args. The first arg that is
// an error is returned by Unwrap.
func New(msg string, args ...interface{}) error {
	return err{msg, args}
}

var (
	// ErrUnsatisfiable is returned when a valid program has no stable model.
	ErrUnsatisfiable = goerrors.New("unsatisfiable")
	// ErrTimeout is returned when grounding or search exceeds its budget.
	ErrTimeout = goerrors.New("timeout")
	// ErrExhausted is returned by model enumerators after the last model.
	ErrExhausted = goerrors.New("no more models")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return goerrors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool { return goerrors.As(err, target) }

// ParseError is a syntax error in a rule source.
type ParseError struct {
	Line, Col int
	Msg       string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s", e.Line, e.Col, e.Msg)
}

// UngroundedVariableError is returned for rules that are not domain-restricted.
type UngroundedVariableError struct {
	Var  string
	Rule string
}

func (e *UngroundedVariableError) Error() string {
	return fmt.Sprintf("ungrounded variable %s in rule %s", e.Var, e.Rule)
}

// InvalidFactError is returned when an injected outcome is not in its enumeration.
type InvalidFactError struct {
	Subject string
	Outcome string
	Allowed []string
}

func (e *InvalidFactError) Error() string {
	if len(e.Allowed) == 0 {
		return fmt.Sprintf("invalid fact subject %q", e.Subject)
	}
	return fmt.Sprintf("invalid outcome %q for %q (want one of %s)",
		e.Outcome, e.Subject, strings.Join(e.Allowed, ", "))
}

// LoadError wraps any failure to turn a rule source into a program.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e.Source == "" {
		return fmt.Sprintf("load: %v", e.Err)
	}
	return fmt.Sprintf("load %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }
