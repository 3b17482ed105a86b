package scanners

import (
	"errors"
	"fmt"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/exitcode"
)

var (
	// ErrToolNotInstalled is returned before spawning when a tool's binary is missing.
	ErrToolNotInstalled = errors.New("tool not installed")
	// ErrInvalidTarget is returned when a URL or host target fails validation.
	ErrInvalidTarget = errors.New("invalid scan target")
	// ErrUnknownTool is returned for names with no built-in tool.
	ErrUnknownTool = errors.New("unknown tool")
)

// NotInstalledError names the missing binary and how to get it.
type NotInstalledError struct {
	Tool   string
	Binary string
	Hint   string
}

func (e *NotInstalledError) Error() string {
	msg := fmt.Sprintf("%s is not installed; install %s to use this feature", e.Tool, e.Binary)
	if e.Hint != "" {
		msg += " (" + e.Hint + ")"
	}
	return msg
}

func (e *NotInstalledError) Is(target error) bool { return target == ErrToolNotInstalled }

// ExitCode maps to the process exit code.
func (e *NotInstalledError) ExitCode() int { return exitcode.ToolNotFound }

// TargetError describes why a target was rejected.
type TargetError struct {
	Tool   string
	Target string
	Reason string
}

func (e *TargetError) Error() string {
	return fmt.Sprintf("%s: invalid target %q: %s", e.Tool, e.Target, e.Reason)
}

func (e *TargetError) Is(target error) bool { return target == ErrInvalidTarget }

// ExitCode maps to the process exit code.
func (e *TargetError) ExitCode() int { return exitcode.ValidationError }
