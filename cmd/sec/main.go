// Command sec computes the championship game participant for a set of game
// outcomes.
//
// Usage:
//
//	sec -rules sec.lp tamu=win bama=loss uga=win
//	sec -rules sec.lp -random -teams tamu,bama,uga,miss -seed 42
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/brunokim/asp-engine/errors"
	"github.com/brunokim/asp-engine/solver"
)

var (
	rulesFilename = flag.String("rules", "", "Championship rule file (required)")
	timeout       = flag.Duration("timeout", 5*time.Second, "Time limit for solving (0 for none)")
	engine        = flag.String("engine", "search", "Model enumeration engine: search or sat")
	stepLimit     = flag.Int("step-limit", 0, "Step limit for solving (0 for none)")
	debugFilename = flag.String("debug-file", "", "File to write the search trace to")
	random        = flag.Bool("random", false, "Draw a random outcome for every team in -teams")
	teams         = flag.String("teams", "", "Comma-separated teams for -random")
	seed          = flag.Int64("seed", 0, "Seed for -random (0 uses the current time)")
)

type output struct {
	Outcomes solver.Outcomes `json:"outcomes"`
	Atoms    []string        `json:"atoms"`
	Error    string          `json:"error,omitempty"`
}

func main() {
	flag.Parse()
	if *rulesFilename == "" {
		log.Fatalf("-rules is required")
	}
	eng, err := solver.ParseEngine(*engine)
	if err != nil {
		log.Fatalf("%v", err)
	}
	var outcomes solver.Outcomes
	if *random {
		outcomes = randomOutcomes(strings.Split(*teams, ","))
	} else {
		outcomes, err = parseOutcomes(flag.Args())
		if err != nil {
			log.Fatalf("%v", err)
		}
	}

	s, err := solver.New(solver.FileSource(*rulesFilename), solver.Options{
		Timeout:       *timeout,
		StepLimit:     *stepLimit,
		Engine:        eng,
		DebugFilename: *debugFilename,
	})
	if err != nil {
		log.Fatalf("%v", err)
	}
	atoms, err := s.SolveOutcomes(context.Background(), outcomes)

	out := output{Outcomes: outcomes, Atoms: []string{}}
	for _, a := range atoms {
		out.Atoms = append(out.Atoms, a.String())
	}
	if err != nil {
		out.Error = err.Error()
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		log.Fatalf("Failed to marshal data: %v", err)
	}
	if err != nil && !errors.Is(err, errors.ErrUnsatisfiable) {
		os.Exit(1)
	}
}

// parseOutcomes reads args in the form 'team=outcome'.
func parseOutcomes(args []string) (solver.Outcomes, error) {
	outcomes := make(solver.Outcomes)
	for _, arg := range args {
		parts := strings.SplitN(arg, "=", 2)
		if len(parts) != 2 {
			return nil, errors.New("invalid outcome %q (want team=outcome)", arg)
		}
		if _, ok := outcomes[parts[0]]; ok {
			return nil, errors.New("repeated team %q", parts[0])
		}
		outcomes[parts[0]] = parts[1]
	}
	return outcomes, nil
}

func randomOutcomes(teams []string) solver.Outcomes {
	s := *seed
	if s == 0 {
		s = time.Now().UnixNano()
	}
	rnd := rand.New(rand.NewSource(s))
	outcomes := make(solver.Outcomes)
	for _, team := range teams {
		if team == "" {
			continue
		}
		outcomes[team] = solver.TeamOutcomes[rnd.Intn(len(solver.TeamOutcomes))]
	}
	log.Printf("seed %d: %v", s, outcomes)
	return outcomes
}
