package search

import (
	"encoding/json"
	"io"
	"log"
	"os"
)

// event is a line of the debug file.
type event struct {
	Step     int               `json:"step"`
	Event    string            `json:"event"`
	Atom     string            `json:"atom,omitempty"`
	Level    int               `json:"level"`
	Assigned map[string]string `json:"assigned,omitempty"`
}

func (s *Solver) debugInit() io.WriteCloser {
	if s.opts.DebugFilename == "" {
		return nil
	}
	f, err := os.Create(s.opts.DebugFilename)
	if err != nil {
		log.Printf("Failed to open debug file: %v", err)
		return nil
	}
	rules := make([]string, len(s.prog.Rules))
	for i, r := range s.prog.Rules {
		rules[i] = s.prog.RuleString(r)
	}
	data, err := json.Marshal(map[string]interface{}{"rules": rules})
	if err != nil {
		log.Printf("Failed to marshal data: %v", err)
		return f
	}
	if _, err := f.Write(append(data, '\n')); err != nil {
		log.Printf("Failed to write debug file: %v", err)
		f.Close()
		return nil
	}
	return f
}

func (s *Solver) debugWrite(name string, atom int) {
	if s.debug == nil {
		return
	}
	e := event{Step: s.steps, Event: name, Level: len(s.decisions), Assigned: make(map[string]string)}
	if atom >= 0 {
		e.Atom = s.prog.Atoms[atom].String()
	}
	for _, id := range s.trail {
		e.Assigned[s.prog.Atoms[id].String()] = s.vals[id].String()
	}
	data, err := json.Marshal(e)
	if err != nil {
		log.Printf("Failed to marshal data: %v", err)
		return
	}
	if _, err := s.debug.Write(append(data, '\n')); err != nil {
		// Stops tracing after the first failure.
		log.Printf("Failed to write debug file: %v", err)
		s.Close()
	}
}
