// Package scanners wraps the external security tools bughunter drives and
// adapts them to workflow plugins.
package scanners

import (
	"context"
)

// Tool is a scanner that can be run directly from the CLI or as a workflow step.
type Tool interface {
	Name() string
	Description() string
	// Run scans target and returns the tool's raw report. When outputFile is
	// set the report is also written there.
	Run(ctx context.Context, target, outputFile string, opts Options) (string, error)
}

// Options tune a single run. Tools ignore fields they do not use.
type Options struct {
	// Ports is the nmap port specification (default "1-1000").
	Ports string
	// TopPorts is the number of most common ports for port_scanner (default 100).
	TopPorts int
	// Ruleset overrides the semgrep config.
	Ruleset string
	// Args are inserted before the target.
	Args []string
}

// TargetKind says what a tool scans.
type TargetKind int

const (
	// KindPath tools get a sandboxed copy of a local file or directory.
	KindPath TargetKind = iota
	// KindURL tools get an http(s) URL.
	KindURL
	// KindHost tools get a hostname or IP address.
	KindHost
)

func (k TargetKind) String() string {
	switch k {
	case KindURL:
		return "url"
	case KindHost:
		return "host"
	default:
		return "path"
	}
}

// Kinded is implemented by tools that declare their target kind.
type Kinded interface {
	Kind() TargetKind
}

// Enricher is implemented by tools whose report can be parsed into
// structured workflow context entries.
type Enricher interface {
	Enrich(report string, wctx map[string]any) error
}

// Dependent is implemented by tools that need executables on PATH.
type Dependent interface {
	Dependencies() []string
}
