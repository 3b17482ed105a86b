package scanners

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/plugin"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/safeio"
)

var stepConfigSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"target":      map[string]any{"type": "string", "minLength": 1},
		"output_key":  map[string]any{"type": "string", "minLength": 1},
		"output_file": map[string]any{"type": "string"},
		"ports":       map[string]any{"type": "string"},
		"top_ports":   map[string]any{"type": "integer", "minimum": 1},
		"ruleset":     map[string]any{"type": "string"},
		"args": map[string]any{
			"type":  "array",
			"items": map[string]any{"type": "string"},
		},
	},
}

// Descriptor builds the registry entry for t.
func Descriptor(t Tool) plugin.Descriptor {
	var deps []string
	if d, ok := t.(Dependent); ok {
		deps = d.Dependencies()
	}
	return plugin.Descriptor{
		Name:         t.Name(),
		Version:      "1.0.0",
		Description:  t.Description(),
		Dependencies: deps,
		ConfigSchema: stepConfigSchema,
		Source:       "builtin",
		Factory: func() (plugin.Plugin, error) {
			return ToolPlugin(t), nil
		},
	}
}

// ToolPlugin adapts t to a workflow step. The target comes from config.target
// or the context's "target"; the report is stored under config.output_key
// (default "<tool>_output").
func ToolPlugin(t Tool) plugin.Plugin {
	return &toolPlugin{tool: t}
}

type toolPlugin struct {
	tool Tool
}

// IsInstalled delegates to the wrapped tool when it can tell.
func (p *toolPlugin) IsInstalled() bool {
	if i, ok := p.tool.(plugin.Installable); ok {
		return i.IsInstalled()
	}
	return true
}

// Execute implements plugin.Plugin.
func (p *toolPlugin) Execute(ctx context.Context, wctx plugin.Context, config map[string]any) (plugin.Context, error) {
	cfg := plugin.Context(config)
	target, ok := cfg.String("target")
	if !ok {
		if target, ok = wctx.String("target"); !ok {
			return nil, fmt.Errorf("%s: no target in step config or workflow context", p.tool.Name())
		}
	}
	outputFile, _ := cfg.String("output_file")
	if outputFile != "" {
		clean, err := safeio.CleanUserPath(outputFile)
		if err != nil {
			return nil, fmt.Errorf("%s: output_file %q: %w", p.tool.Name(), outputFile, err)
		}
		outputFile = filepath.FromSlash(clean)
	}
	key, ok := cfg.String("output_key")
	if !ok {
		key = p.tool.Name() + "_output"
	}

	report, err := p.tool.Run(ctx, target, outputFile, optionsFrom(config))
	if err != nil {
		return nil, err
	}

	out := wctx.Clone()
	out[key] = report
	if e, ok := p.tool.(Enricher); ok {
		if err := e.Enrich(report, out); err != nil {
			logger.Warn("could not parse tool report",
				logger.String("tool", p.tool.Name()),
				logger.Err(err))
		}
	}
	return out, nil
}

func optionsFrom(config map[string]any) Options {
	var o Options
	o.Ports, _ = config["ports"].(string)
	o.Ruleset, _ = config["ruleset"].(string)
	switch n := config["top_ports"].(type) {
	case int:
		o.TopPorts = n
	case int64:
		o.TopPorts = int(n)
	case float64:
		o.TopPorts = int(n)
	}
	switch args := config["args"].(type) {
	case []string:
		o.Args = args
	case []any:
		for _, a := range args {
			o.Args = append(o.Args, fmt.Sprint(a))
		}
	}
	return o
}
