package workflow

import (
	"errors"
	"time"
)

// Step is one entry of a workflow.
type Step struct {
	Name   string         `json:"name,omitempty" yaml:"name,omitempty"`
	Plugin string         `json:"plugin" yaml:"plugin"`
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// Label returns the step's display name.
func (s Step) Label() string {
	if s.Name != "" {
		return s.Name
	}
	return s.Plugin
}

// Status is the lifecycle state of a step.
type Status string

const (
	StatusPending   Status = "pending"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// StepResult is the outcome of one step.
type StepResult struct {
	Index    int           `json:"index"`
	Plugin   string        `json:"plugin"`
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration"`
	Err      error         `json:"-"`
	Error    string        `json:"error,omitempty"`
}

// Report summarises a workflow run.
type Report struct {
	Steps    []StepResult  `json:"steps"`
	Duration time.Duration `json:"duration"`
}

// Count returns the number of steps in the given state.
func (r *Report) Count(s Status) int {
	n := 0
	for _, st := range r.Steps {
		if st.Status == s {
			n++
		}
	}
	return n
}

// Failed returns the failed steps.
func (r *Report) Failed() []StepResult {
	var out []StepResult
	for _, st := range r.Steps {
		if st.Status == StatusFailed {
			out = append(out, st)
		}
	}
	return out
}

// OK reports whether every step completed.
func (r *Report) OK() bool {
	return r.Count(StatusCompleted) == len(r.Steps)
}

// Err joins the errors of all failed steps, nil when none failed.
func (r *Report) Err() error {
	var errs []error
	for _, st := range r.Failed() {
		errs = append(errs, st.Err)
	}
	return errors.Join(errs...)
}
