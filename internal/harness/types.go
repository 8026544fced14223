package harness

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// IDGenerator produces run IDs.
type IDGenerator interface {
	Generate() string
}

// UUIDv7Generator generates time-sortable UUIDv7 run IDs.
type UUIDv7Generator struct{}

// Generate returns a new UUIDv7 string.
func (UUIDv7Generator) Generate() string {
	return uuid.Must(uuid.NewV7()).String()
}

// StepResult is the outcome of one scenario step.
type StepResult struct {
	Index  int    `json:"index"`
	Action string `json:"action"`
	Table  string `json:"table"`
	Pass   bool   `json:"pass"`
	Detail string `json:"detail,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Result is the outcome of a scenario run.
type Result struct {
	// Scenario is the scenario name.
	Scenario string `json:"scenario"`

	// RunID identifies this run.
	RunID string `json:"run_id"`

	// Pass is true if every step passed.
	Pass bool `json:"pass"`

	// Steps holds one entry per executed step, setup excluded.
	Steps []StepResult `json:"steps"`

	// Errors contains failure messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`
}

// NewResult creates a new passing result.
func NewResult(scenario, runID string) *Result {
	return &Result{
		Scenario: scenario,
		RunID:    runID,
		Pass:     true,
		Steps:    []StepResult{},
		Errors:   []string{},
	}
}

// AddError adds a failure message and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddStep records a step outcome. A failed step also adds an error.
func (r *Result) AddStep(s StepResult) {
	r.Steps = append(r.Steps, s)
	if !s.Pass {
		r.AddError(fmt.Sprintf("step %d (%s %s): %s", s.Index, s.Action, s.Table, s.Error))
	}
}

// Failed returns the number of failed steps.
func (r *Result) Failed() int {
	n := 0
	for _, s := range r.Steps {
		if !s.Pass {
			n++
		}
	}
	return n
}

// Summary renders the result as stable, human-readable text.
func (r *Result) Summary() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "scenario: %s\n", r.Scenario)
	fmt.Fprintf(&buf, "run: %s\n", r.RunID)
	for _, s := range r.Steps {
		status := "ok"
		if !s.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(&buf, "  %d. %s %s: %s", s.Index, s.Action, s.Table, status)
		if s.Detail != "" {
			fmt.Fprintf(&buf, " (%s)", s.Detail)
		}
		buf.WriteByte('\n')
		if s.Error != "" {
			for _, line := range strings.Split(s.Error, "\n") {
				if line == "" {
					continue
				}
				fmt.Fprintf(&buf, "     %s\n", line)
			}
		}
	}
	if r.Pass {
		fmt.Fprintf(&buf, "result: PASS (%d steps)\n", len(r.Steps))
	} else {
		fmt.Fprintf(&buf, "result: FAIL (%d of %d steps failed)\n", r.Failed(), len(r.Steps))
	}
	return buf.String()
}
