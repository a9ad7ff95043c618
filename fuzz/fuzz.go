// Package fuzz is an entry point for go-fuzz over the rule parser.
package fuzz

import (
	"github.com/brunokim/asp-engine/parser"
	"github.com/brunokim/asp-engine/program"
)

// Fuzz parses data as a program and loads its rules, to find inputs that make
// either panic.
func Fuzz(data []byte) int {
	stmts, err := parser.ParseProgram(string(data))
	if err != nil {
		return 0
	}
	p := program.New()
	for _, r := range stmts.Rules {
		if err := p.AddRule(r); err != nil {
			return 0
		}
	}
	return 1
}
