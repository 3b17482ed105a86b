package sandbox

import (
	"errors"
	"fmt"
	"time"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/exitcode"
)

var (
	// ErrInvalidTarget is returned when the scan target is missing or is neither a file nor a directory.
	ErrInvalidTarget = errors.New("invalid target")

	// ErrEmptyCommand is returned when no argv was supplied.
	ErrEmptyCommand = errors.New("empty command")

	// ErrTimeout is returned when a tool exceeds its time budget.
	ErrTimeout = errors.New("execution timed out")

	// ErrExecution matches every *ExecutionError.
	ErrExecution = errors.New("execution failed")
)

// InvalidTargetError describes why a target cannot be staged.
type InvalidTargetError struct {
	Path   string
	Reason string
}

func (e *InvalidTargetError) Error() string {
	return fmt.Sprintf("invalid target %q: %s", e.Path, e.Reason)
}

func (e *InvalidTargetError) Is(target error) bool { return target == ErrInvalidTarget }

// ExitCode maps the error to a CLI exit status.
func (e *InvalidTargetError) ExitCode() int { return exitcode.FileSystemError }

// ExecutionError reports a failure to spawn or stage a command for a reason
// other than the executable being absent.
type ExecutionError struct {
	Command string
	Err     error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("failed to run %s in sandbox: %v", e.Command, e.Err)
}

func (e *ExecutionError) Unwrap() error { return e.Err }

func (e *ExecutionError) Is(target error) bool { return target == ErrExecution }

// TimeoutError reports that the process tree was killed after the budget elapsed.
type TimeoutError struct {
	Command string
	Timeout time.Duration
	// Partial output captured before the kill.
	Result Result
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s exceeded timeout of %s", e.Command, e.Timeout)
}

func (e *TimeoutError) Is(target error) bool { return target == ErrTimeout }

// ExitCode maps the error to a CLI exit status.
func (e *TimeoutError) ExitCode() int { return exitcode.TimeoutError }
