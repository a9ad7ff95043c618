// Command ground prints the ground program of a rule file.
package main

import (
	"context"
	"flag"
	"fmt"
	"io/ioutil"
	"log"
	"strings"

	"github.com/brunokim/asp-engine/parser"
	"github.com/brunokim/asp-engine/solver"
)

var (
	inputFilename  = flag.String("input", "", "Input rule file (required)")
	outputFilename = flag.String("output", "", "Output file, or stdout if empty")
	facts          = flag.String("facts", "", "Facts to add to the rules, like 'tamu_win. bama_loss.'")
	timeout        = flag.Duration("timeout", 0, "Time limit for grounding (0 for none)")
)

func main() {
	flag.Parse()
	if *inputFilename == "" {
		log.Fatalf("-input is required")
	}
	s, err := solver.New(solver.FileSource(*inputFilename), solver.Options{})
	if err != nil {
		log.Fatalf("%v", err)
	}
	atoms, err := parser.ParseFacts(*facts)
	if err != nil {
		log.Fatalf("facts: %v", err)
	}
	ctx := context.Background()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}
	gp, err := s.Ground(ctx, atoms)
	if err != nil {
		log.Fatalf("ground: %v", err)
	}
	log.Printf("%d atoms, %d rules", len(gp.Atoms), len(gp.Rules))
	var b strings.Builder
	b.WriteString(gp.String())
	b.WriteString("\n")
	if *outputFilename == "" {
		fmt.Print(b.String())
		return
	}
	if err := ioutil.WriteFile(*outputFilename, []byte(b.String()), 0644); err != nil {
		log.Fatalf("output: %v", err)
	}
}
