package plugin

import (
	"errors"
	"fmt"
	"strings"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/exitcode"
)

var (
	// ErrPluginNotFound is returned when no plugin is registered under a name.
	ErrPluginNotFound = errors.New("plugin not found")
	// ErrMissingDependency is returned when required tools are absent and were not installed.
	ErrMissingDependency = errors.New("missing dependency")
	// ErrInvalidManifest is returned for plugin manifests that fail to load.
	ErrInvalidManifest = errors.New("invalid plugin manifest")
)

// NotFoundError names the plugin that could not be found.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("plugin '%s' not found", e.Name)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrPluginNotFound }

// ExitCode maps to the process exit code.
func (e *NotFoundError) ExitCode() int { return exitcode.ToolNotFound }

// MissingDependencyError lists the tools a plugin needs but cannot find.
type MissingDependencyError struct {
	Plugin  string
	Missing []string
}

func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("plugin '%s' is missing dependencies: %s", e.Plugin, strings.Join(e.Missing, ", "))
}

func (e *MissingDependencyError) Is(target error) bool { return target == ErrMissingDependency }

// ExitCode maps to the process exit code.
func (e *MissingDependencyError) ExitCode() int { return exitcode.ToolNotFound }

// ManifestError wraps the reason a manifest was rejected.
type ManifestError struct {
	Path string
	Err  error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestError) Unwrap() error { return e.Err }

func (e *ManifestError) Is(target error) bool { return target == ErrInvalidManifest }

// ExitStatusError reports a tool exit code the plugin does not accept.
type ExitStatusError struct {
	Plugin   string
	ExitCode int
	Stderr   string
}

func (e *ExitStatusError) Error() string {
	msg := fmt.Sprintf("plugin '%s' exited with status %d", e.Plugin, e.ExitCode)
	if s := strings.TrimSpace(e.Stderr); s != "" {
		msg += ": " + firstLine(s)
	}
	return msg
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
