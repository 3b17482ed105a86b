// Package exitcode provides standardized exit codes for bughunter
package exitcode

import (
	"context"
	"errors"
)

// Exit codes for bughunter CLI
const (
	Success           = 0
	GeneralError      = 1
	ConfigError       = 2
	ValidationError   = 3
	FileSystemError   = 4
	NetworkError      = 5
	PermissionError   = 6
	TimeoutError      = 7
	UnsupportedFormat = 8
	ToolNotFound      = 9
	Interrupted       = 130

	// CommandNotFound mirrors the shell convention for a missing executable.
	CommandNotFound = 127
)

// String returns a human-readable description of the exit code
func String(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case ConfigError:
		return "Configuration error"
	case ValidationError:
		return "Validation error"
	case FileSystemError:
		return "File system error"
	case NetworkError:
		return "Network error"
	case PermissionError:
		return "Permission error"
	case TimeoutError:
		return "Timeout error"
	case UnsupportedFormat:
		return "Unsupported format"
	case ToolNotFound:
		return "Tool not found"
	case CommandNotFound:
		return "Command not found"
	case Interrupted:
		return "Interrupted"
	default:
		return "Unknown error"
	}
}

// Coder is implemented by errors that know which exit code they map to.
type Coder interface {
	ExitCode() int
}

// FromError maps an error to a process exit code.
func FromError(err error) int {
	if err == nil {
		return Success
	}
	var c Coder
	if errors.As(err, &c) {
		return c.ExitCode()
	}
	switch {
	case errors.Is(err, context.Canceled):
		return Interrupted
	case errors.Is(err, context.DeadlineExceeded):
		return TimeoutError
	default:
		return GeneralError
	}
}
