package plugin

import (
	"context"
	"fmt"
	"slices"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/sandbox"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/tools"
)

// CommandPlugin runs the external command declared by a manifest inside a sandbox.
type CommandPlugin struct {
	manifest *Manifest
	sandbox  *sandbox.Executor
	locator  *tools.Locator
}

// NewCommandPlugin creates a plugin for m that runs through sb.
func NewCommandPlugin(m *Manifest, sb *sandbox.Executor) *CommandPlugin {
	if t := m.TimeoutDuration(); t > 0 {
		sb = sb.WithTimeout(t)
	}
	return &CommandPlugin{manifest: m, sandbox: sb, locator: tools.NewLocator()}
}

// Descriptor returns the registry entry for m.
func (m *Manifest) Descriptor(sb *sandbox.Executor) Descriptor {
	return Descriptor{
		Name:         m.Name,
		Version:      m.Version,
		Description:  m.Description,
		Dependencies: m.Dependencies,
		ConfigSchema: m.ConfigSchema,
		Source:       m.Path,
		Factory: func() (Plugin, error) {
			return NewCommandPlugin(m, sb), nil
		},
	}
}

// IsInstalled reports whether every declared dependency can be located.
func (p *CommandPlugin) IsInstalled() bool {
	return len(p.locator.Missing(p.manifest.Dependencies)) == 0
}

// Execute runs the command against config.target, falling back to the
// context's "target". Extra tokens from config.args go before the target.
func (p *CommandPlugin) Execute(ctx context.Context, wctx Context, config map[string]any) (Context, error) {
	target, ok := Context(config).String("target")
	if !ok {
		if target, ok = wctx.String("target"); !ok {
			return nil, fmt.Errorf("plugin '%s': no target in step config or workflow context", p.manifest.Name)
		}
	}

	command := p.command(config)
	var (
		res sandbox.Result
		err error
	)
	description := "plugin " + p.manifest.Name
	if p.manifest.Target == TargetPath {
		res, err = p.sandbox.Run(ctx, command, target, description)
	} else {
		res, err = p.sandbox.RunNetwork(ctx, command, target, description)
	}
	if err != nil {
		return nil, err
	}

	accept := p.manifest.AcceptExitCodes
	if len(accept) == 0 {
		accept = []int{0}
	}
	if !slices.Contains(accept, res.ExitCode) {
		return nil, &ExitStatusError{Plugin: p.manifest.Name, ExitCode: res.ExitCode, Stderr: res.Stderr}
	}

	out := wctx.Clone()
	out[p.manifest.OutputKey] = res.Stdout
	out[NormalizeName(p.manifest.Name)+"_exit_code"] = res.ExitCode
	return out, nil
}

func (p *CommandPlugin) command(config map[string]any) []string {
	base := p.manifest.Command
	var extra []string
	switch args := config["args"].(type) {
	case []string:
		extra = args
	case []any:
		for _, a := range args {
			extra = append(extra, fmt.Sprint(a))
		}
	}
	if len(extra) == 0 {
		return base
	}
	cmd := make([]string, 0, len(base)+len(extra))
	cmd = append(cmd, base[:len(base)-1]...)
	cmd = append(cmd, extra...)
	return append(cmd, base[len(base)-1])
}
