package workflow

import (
	"errors"
	"fmt"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/exitcode"
)

var (
	// ErrInvalidWorkflowFile is returned when a workflow file cannot be loaded.
	ErrInvalidWorkflowFile = errors.New("invalid workflow file")
	// ErrMissingPluginName marks a step without a plugin name.
	ErrMissingPluginName = errors.New("step has no plugin name")
	// ErrInvalidStepConfig marks a step whose config fails the plugin's schema.
	ErrInvalidStepConfig = errors.New("invalid step config")
	// ErrSkipped marks steps not run because the workflow was cancelled.
	ErrSkipped = errors.New("step skipped")
)

// InvalidWorkflowFileError describes why a workflow file was rejected.
type InvalidWorkflowFileError struct {
	Path   string
	Reason string
	Err    error
}

func (e *InvalidWorkflowFileError) Error() string {
	msg := "invalid workflow file"
	if e.Path != "" {
		msg += " " + e.Path
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidWorkflowFileError) Unwrap() error { return e.Err }

func (e *InvalidWorkflowFileError) Is(target error) bool { return target == ErrInvalidWorkflowFile }

// ExitCode maps to the process exit code.
func (e *InvalidWorkflowFileError) ExitCode() int { return exitcode.ValidationError }

// StepError records the failure of one step. Index is 1-based.
type StepError struct {
	Index  int
	Plugin string
	Err    error
}

func (e *StepError) Error() string {
	name := e.Plugin
	if name == "" {
		name = "<none>"
	}
	return fmt.Sprintf("step %d (%s): %v", e.Index, name, e.Err)
}

func (e *StepError) Unwrap() error { return e.Err }
