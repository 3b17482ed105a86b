package scanners

import (
	"context"
	"fmt"
	"slices"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/plugin"
	"github.com/akadevbarki76-collab/scaling-parakeet/internal/sandbox"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/exitcode"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/safeio"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/tools"
)

// targetToken is the argv placeholder the sandbox replaces with the target.
const targetToken = "{target}"

// commandSpec declares an external scanner.
type commandSpec struct {
	name        string
	description string
	binary      string
	hint        string
	kind        TargetKind
	// args returns the arguments between the binary and the target.
	args func(opts Options) []string
	// accept lists exit codes that still mean success; default {0}.
	accept []int
	// stderrReport is set for tools that write findings to stderr.
	stderrReport bool
	enrich       func(report string, wctx map[string]any) error
}

// commandTool runs a commandSpec through the sandbox executor.
type commandTool struct {
	spec    commandSpec
	sandbox *sandbox.Executor
	locator *tools.Locator
}

func newCommandTool(spec commandSpec, sb *sandbox.Executor) *commandTool {
	return &commandTool{spec: spec, sandbox: sb, locator: tools.NewLocator()}
}

func (t *commandTool) Name() string           { return t.spec.name }
func (t *commandTool) Description() string    { return t.spec.description }
func (t *commandTool) Kind() TargetKind       { return t.spec.kind }
func (t *commandTool) Dependencies() []string { return []string{t.spec.binary} }

// IsInstalled reports whether the tool's binary can be located.
func (t *commandTool) IsInstalled() bool {
	_, ok := t.locator.Find(t.spec.binary)
	return ok
}

// Enrich parses a report into context entries when the tool has a parser.
func (t *commandTool) Enrich(report string, wctx map[string]any) error {
	if t.spec.enrich == nil {
		return nil
	}
	return t.spec.enrich(report, wctx)
}

// Argv returns the command line for opts with the target placeholder last.
func (t *commandTool) Argv(opts Options) []string {
	argv := []string{t.spec.binary}
	if t.spec.args != nil {
		argv = append(argv, t.spec.args(opts)...)
	}
	argv = append(argv, opts.Args...)
	return append(argv, targetToken)
}

// Run implements Tool.
func (t *commandTool) Run(ctx context.Context, target, outputFile string, opts Options) (string, error) {
	notInstalled := &NotInstalledError{Tool: t.spec.name, Binary: t.spec.binary, Hint: t.spec.hint}
	if !t.IsInstalled() {
		return "", notInstalled
	}
	if err := validateTarget(t.spec.name, t.spec.kind, target); err != nil {
		return "", err
	}

	argv := t.Argv(opts)
	description := fmt.Sprintf("Scanning %s with %s", target, t.spec.name)
	var (
		res sandbox.Result
		err error
	)
	if t.spec.kind == KindPath {
		res, err = t.sandbox.Run(ctx, argv, target, description)
	} else {
		res, err = t.sandbox.RunNetwork(ctx, argv, target, description)
	}
	if err != nil {
		return "", err
	}
	if res.ExitCode == exitcode.CommandNotFound && res.Stdout == "" {
		return "", notInstalled
	}

	accept := t.spec.accept
	if len(accept) == 0 {
		accept = []int{0}
	}
	if !slices.Contains(accept, res.ExitCode) {
		return "", &plugin.ExitStatusError{Plugin: t.spec.name, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}

	report := res.Stdout
	if t.spec.stderrReport {
		report = res.Stderr
	}
	if outputFile != "" {
		if err := safeio.WriteFilePreservePerms(outputFile, []byte(report)); err != nil {
			return report, fmt.Errorf("write %s output: %w", t.spec.name, err)
		}
		logger.Debug("tool output saved", logger.String("tool", t.spec.name), logger.String("file", outputFile))
	}
	return report, nil
}
