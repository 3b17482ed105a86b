// Package plugin holds the process-wide plugin registry, manifest discovery
// and the dependency-aware resolver that turns a name into a runnable plugin.
package plugin

import (
	"context"
	"maps"
)

// Context is the shared state threaded through a workflow. Plugins read
// earlier results from it and return it with their own additions.
type Context map[string]any

// Clone returns a shallow copy. A nil Context clones to an empty one.
func (c Context) Clone() Context {
	out := make(Context, len(c))
	maps.Copy(out, c)
	return out
}

// String returns the value under key when it is a non-empty string.
func (c Context) String(key string) (string, bool) {
	s, ok := c[key].(string)
	return s, ok && s != ""
}

// Plugin is a workflow step implementation.
type Plugin interface {
	// Execute runs the plugin. The returned Context replaces the caller's.
	Execute(ctx context.Context, wctx Context, config map[string]any) (Context, error)
}

// Installable is implemented by plugins that can report whether their
// external tool is present.
type Installable interface {
	IsInstalled() bool
}

// Factory creates a fresh plugin instance.
type Factory func() (Plugin, error)

// Descriptor describes a registered plugin.
type Descriptor struct {
	Name         string
	Version      string
	Description  string
	Dependencies []string
	Factory      Factory
	// ConfigSchema is an optional JSON Schema for step configuration.
	ConfigSchema map[string]any
	// Source is "builtin" or the manifest path the plugin was loaded from.
	Source string
}

// Func adapts an ordinary function to the Plugin interface.
type Func func(ctx context.Context, wctx Context, config map[string]any) (Context, error)

// Execute implements Plugin.
func (f Func) Execute(ctx context.Context, wctx Context, config map[string]any) (Context, error) {
	return f(ctx, wctx, config)
}
