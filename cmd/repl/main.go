package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/brunokim/asp-engine/errors"
	"github.com/brunokim/asp-engine/parser"
	"github.com/brunokim/asp-engine/solver"

	"github.com/chzyer/readline"
)

var (
	consultFiles  = flag.String("consult-files", "", "Comma-separated rule files to consult, in order")
	facts         = flag.String("facts", "", "Initial facts to solve with, like 'tamu_win. bama_loss.'")
	interactive   = flag.Bool("interactive", true, "Whether the REPL is interactive")
	engine        = flag.String("engine", "search", "Model enumeration engine: search or sat")
	timeout       = flag.Duration("timeout", 0, "Time limit for each enumeration (0 for none)")
	stepLimit     = flag.Int("step-limit", 0, "Step limit for each enumeration (0 for none)")
	debugFilename = flag.String("debug-file", "", "File to write the search trace to")
)

type inputState int

const (
	readingFacts inputState = iota
	enumerateModels
)

type ctx struct {
	interrupt chan os.Signal
	solver    *solver.Solver
	readline  *readline.Instance
}

func main() {
	flag.Parse()
	if !*interactive && len(*facts) == 0 {
		log.Fatal("No facts provided for non-interactive REPL")
	}
	eng, err := solver.ParseEngine(*engine)
	if err != nil {
		log.Fatal(err)
	}

	ctx := ctx{}
	ctx.interrupt = make(chan os.Signal, 1)
	signal.Notify(ctx.interrupt, syscall.SIGINT)

	ctx.solver, err = solver.New(consult(*consultFiles), solver.Options{
		Timeout:       *timeout,
		StepLimit:     *stepLimit,
		Engine:        eng,
		DebugFilename: *debugFilename,
	})
	if err != nil {
		log.Fatal(err)
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 "?- ",
		HistoryFile:            "/tmp/readline-history",
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer rl.Close()
	ctx.readline = rl

	ctx.mainLoop()
}

// consult concatenates the rule files into a single source.
func consult(filenames string) solver.RuleSource {
	var texts []string
	for _, filename := range strings.Split(filenames, ",") {
		if len(filename) == 0 {
			continue
		}
		text, err := solver.FileSource(filename).ReadRules()
		if err != nil {
			log.Print(err)
			continue
		}
		texts = append(texts, text)
	}
	return solver.TextSource(strings.Join(texts, "\n"))
}

func (ctx ctx) mainLoop() {
	state := readingFacts
	var models <-chan solver.Result
	var cancel func()
	if len(*facts) > 0 {
		atoms, err := parser.ParseFacts(*facts)
		if err != nil {
			log.Fatal(err)
		}
		models, cancel = ctx.solver.Models(context.Background(), atoms)
		state = enumerateModels
	}
	if !*interactive {
		defer cancel()
		for result := range models {
			printResult(result, true)
		}
		return
	}
	for {
		switch state {
		default:
			log.Print("Invalid state:", state)
			return
		case readingFacts:
			text, isClose := ctx.readFacts()
			if isClose {
				return
			}
			atoms, err := parser.ParseFacts(text)
			if err != nil {
				log.Print(err)
				continue
			}
			models, cancel = ctx.solver.Models(context.Background(), atoms)
			state = enumerateModels
		case enumerateModels:
			if isClose := ctx.modelState(models, cancel); isClose {
				state = readingFacts
			}
		}
	}
}

func (ctx ctx) readFacts() (string, bool) {
	ctx.readline.SetPrompt("?- ")
	var lines []string
	for {
		line, err := ctx.readline.Readline()
		if err != nil {
			return "", true
		}
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		lines = append(lines, line)
		if !strings.HasSuffix(line, ".") {
			ctx.readline.SetPrompt("|  ")
			continue
		}
		break
	}
	text := strings.Join(lines, " ")
	ctx.readline.SaveHistory(text)
	return text, false
}

func (ctx ctx) modelState(models <-chan solver.Result, cancel func()) bool {
	select {
	case result, ok := <-models:
		if isClose := printResult(result, ok); isClose {
			cancel()
			return true
		}
		if isClose := ctx.readCommand(); isClose {
			cancel()
			return true
		}
		return false
	case <-ctx.interrupt:
		cancel()
		return true
	}
}

// printResult prints a model, and returns true if the enumeration is over.
func printResult(result solver.Result, ok bool) bool {
	switch {
	case !ok:
		fmt.Println("false.")
		return true
	case errors.Is(result.Err, errors.ErrUnsatisfiable):
		fmt.Println("false.")
		return true
	case result.Err != nil:
		log.Print(result.Err)
		return true
	case len(result.Atoms) == 0:
		fmt.Println("true")
	default:
		strs := make([]string, len(result.Atoms))
		for i, a := range result.Atoms {
			strs[i] = a.String()
		}
		fmt.Println(strings.Join(strs, " "))
	}
	return false
}

func (ctx ctx) readCommand() bool {
	for {
		ctx.readline.SetPrompt("")
		line, err := ctx.readline.Readline()
		if err != nil {
			log.Fatal(err)
			return true
		}
		line = strings.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		if line == ";" {
			return false
		}
		if line == "." {
			return true
		}
		log.Print("Expecting '.' or ';'")
	}
}
