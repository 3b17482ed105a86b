package tools

import (
	"errors"
	"fmt"
	"strings"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/exitcode"
)

var (
	// ErrUnsupportedPlatform indicates automatic installation is not available on this OS
	ErrUnsupportedPlatform = errors.New("unsupported platform")

	// ErrDependencyInstall indicates a package manager install attempt failed
	ErrDependencyInstall = errors.New("dependency installation failed")
)

// UnsupportedPlatformError names the operating system that has no package manager support.
type UnsupportedPlatformError struct {
	GOOS string
}

func (e *UnsupportedPlatformError) Error() string {
	return fmt.Sprintf("unsupported platform %q: install dependencies manually", e.GOOS)
}

func (e *UnsupportedPlatformError) Is(target error) bool { return target == ErrUnsupportedPlatform }

// ExitCode maps the error to a CLI exit status.
func (e *UnsupportedPlatformError) ExitCode() int { return exitcode.UnsupportedFormat }

// DependencyInstallError carries the diagnostics of a failed install attempt.
// Command is empty when no usable package manager or sudo was found.
type DependencyInstallError struct {
	Manager  string
	Packages []string
	Command  []string
	Stderr   string
	Err      error
}

func (e *DependencyInstallError) Error() string {
	var b strings.Builder
	b.WriteString("failed to install ")
	b.WriteString(strings.Join(e.Packages, ", "))
	if e.Manager != "" {
		b.WriteString(" via ")
		b.WriteString(e.Manager)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if s := strings.TrimSpace(e.Stderr); s != "" {
		b.WriteString("\n")
		b.WriteString(s)
	}
	if m, err := GetManager(e.Manager); err == nil {
		b.WriteString("\nsee ")
		b.WriteString(m.InstallationURL())
		b.WriteString(" to install manually")
	}
	return b.String()
}

func (e *DependencyInstallError) Unwrap() error { return e.Err }

func (e *DependencyInstallError) Is(target error) bool { return target == ErrDependencyInstall }

// ExitCode maps the error to a CLI exit status.
func (e *DependencyInstallError) ExitCode() int { return exitcode.ToolNotFound }
