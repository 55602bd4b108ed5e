// Scenario scripts replay list commands offline, e.g. to reproduce a bug report or to smoke-test a build.
// A script is a YAML document:
//
//	name: insert and sort
//	steps:
//	  - cmd: LADD
//	    args: [nums, "3", "1", "2"]
//	    expect: "3"
//	  - cmd: LSORT
//	    args: [nums]
//
// Every step goes through the same port.Handler as the Redis server. A step with `expect` fails the run when the
// rendered reply differs.

package script

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/nobletooth/tlist/pkg/port"
	"gopkg.in/yaml.v3"
)

// Step is a single command of a script.
type Step struct {
	Cmd    string   `yaml:"cmd"`
	Args   []string `yaml:"args"`
	Expect *string  `yaml:"expect"` // Optional; compared against port.Reply.String().
}

// Script is a named sequence of steps.
type Script struct {
	Name  string `yaml:"name"`
	Steps []Step `yaml:"steps"`
}

// ErrExpectationFailed is returned when a step's reply differs from its expectation.
var ErrExpectationFailed = errors.New("expectation failed")

// Parse decodes a YAML script.
func Parse(data []byte) (*Script, error) {
	script := new(Script)
	if err := yaml.Unmarshal(data, script); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	for i, step := range script.Steps {
		if step.Cmd == "" {
			return nil, fmt.Errorf("step %d has no command", i)
		}
	}
	return script, nil
}

// Load reads and decodes the YAML script at `path`.
func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(data)
}

// Run executes every step against `handler` and returns the replies so far. It stops at the first failed
// expectation.
func (s *Script) Run(handler *port.Handler) ([]port.Reply, error) {
	replies := make([]port.Reply, 0, len(s.Steps))
	for i, step := range s.Steps {
		reply := handler.Handle(step.Cmd, step.Args...)
		replies = append(replies, reply)
		slog.Debug("Ran script step.", "script", s.Name, "step", i, "cmd", step.Cmd, "reply", reply.String())
		if step.Expect != nil && *step.Expect != reply.String() {
			return replies, fmt.Errorf("%w: step %d (%s %v): expected %q, got %q",
				ErrExpectationFailed, i, step.Cmd, step.Args, *step.Expect, reply.String())
		}
	}
	return replies, nil
}
