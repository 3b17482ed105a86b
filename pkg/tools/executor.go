/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package tools

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ExecutionMode selects where sandboxed tools run.
type ExecutionMode string

// Execution modes accepted by sandbox.mode.
const (
	ModeLocal  ExecutionMode = "local"
	ModeDocker ExecutionMode = "docker"
	// ModeAuto prefers a host binary and falls back to the scanner image.
	ModeAuto ExecutionMode = "auto"
)

// ErrToolNotFound is returned when an executor cannot start the requested binary.
var ErrToolNotFound = errors.New("tool not found")

// ErrUnknownMode is returned by ParseMode for values outside local, docker and auto.
var ErrUnknownMode = errors.New("unknown execution mode")

// ParseMode normalizes a configured mode. The empty string means ModeLocal.
func ParseMode(s string) (ExecutionMode, error) {
	switch m := ExecutionMode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeLocal, nil
	case ModeLocal, ModeDocker, ModeAuto:
		return m, nil
	default:
		return "", fmt.Errorf("%w %q (use local, docker or auto)", ErrUnknownMode, s)
	}
}

// ExecuteOptions describes one process invocation.
type ExecuteOptions struct {
	// Tool is a binary name resolved by the executor, or an absolute path.
	Tool string
	Args []string
	// WorkDir is the sandbox directory the tool starts in.
	WorkDir string
	Stdin   io.Reader
	// Env entries override inherited variables of the same name.
	Env map[string]string
}

// ExecuteResult is the captured output of a finished process.
type ExecuteResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	// Executor names the executor that ran the process.
	Executor string
}

// ToolExecutor starts external tools. Implementations must be safe for concurrent use.
type ToolExecutor interface {
	// Execute runs a tool to completion. A non-zero exit status is reported in
	// the result, not as an error.
	Execute(ctx context.Context, opts ExecuteOptions) (*ExecuteResult, error)
	IsAvailable(tool string) bool
	Name() string
}

// PathTranslator is implemented by executors whose tools see the sandbox
// under a different path than the host.
type PathTranslator interface {
	TranslatePath(workDir, hostPath string) string
}

// Selector is implemented by executors that pick a concrete executor per tool.
type Selector interface {
	Select(tool string) ToolExecutor
}

// NewExecutor returns the executor for mode. Unknown modes run locally; call
// ParseMode first to reject them.
func NewExecutor(mode ExecutionMode, image string) ToolExecutor {
	switch mode {
	case ModeDocker:
		return NewDockerExecutor(image)
	case ModeAuto:
		return NewAutoExecutor(image)
	default:
		return NewLocalExecutor()
	}
}
