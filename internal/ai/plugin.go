package ai

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/plugin"
)

// PluginName is the registry name of the analysis step.
const PluginName = "ai_analyze"

// OutputKey is where the analysis text is stored in the workflow context.
const OutputKey = "ai_analysis"

// Descriptor registers the AI analysis step. newClient is called on each
// execution so a missing API key only fails workflows that use the step.
func Descriptor(newClient func() (Client, error)) plugin.Descriptor {
	return plugin.Descriptor{
		Name:        PluginName,
		Version:     "1.0.0",
		Description: "Summarise scanner findings in the workflow context with an AI model",
		Source:      "builtin",
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"target":     map[string]any{"type": "string"},
				"output_key": map[string]any{"type": "string"},
				"template":   map[string]any{"type": "string"},
			},
		},
		Factory: func() (plugin.Plugin, error) {
			return &analyzePlugin{newClient: newClient}, nil
		},
	}
}

type analyzePlugin struct {
	newClient func() (Client, error)
}

// Execute implements plugin.Plugin.
func (a *analyzePlugin) Execute(ctx context.Context, wctx plugin.Context, config map[string]any) (plugin.Context, error) {
	data := AnalysisData(wctx)
	if t, ok := plugin.Context(config).String("target"); ok {
		data["target"] = t
	}
	name := "analyze"
	if t, ok := plugin.Context(config).String("template"); ok {
		name = t
	}
	prompt, err := Render(name, data)
	if err != nil {
		return nil, err
	}

	client, err := a.newClient()
	if err != nil {
		return nil, err
	}
	reply, err := client.SendPrompt(ctx, prompt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", PluginName, err)
	}

	key := OutputKey
	if k, ok := plugin.Context(config).String("output_key"); ok {
		key = k
	}
	out := wctx.Clone()
	out[key] = StripCodeFence(reply)
	return out, nil
}

// AnalysisData extracts the template inputs from a workflow context: the
// target, subdomains, compliance frameworks and every "*_output" string as a
// finding keyed by the producing step.
func AnalysisData(wctx plugin.Context) map[string]any {
	data := map[string]any{}
	if t, ok := wctx.String("target"); ok {
		data["target"] = t
	}
	if subs := stringList(wctx["subdomains"]); len(subs) > 0 {
		data["subdomains"] = subs
	}
	if c := stringList(wctx["compliance"]); len(c) > 0 {
		data["compliance"] = c
	}

	keys := make([]string, 0, len(wctx))
	for k := range wctx {
		if strings.HasSuffix(k, "_output") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	findings := make(map[string]any, len(keys))
	for _, k := range keys {
		if s, ok := wctx[k].(string); ok && strings.TrimSpace(s) != "" {
			findings[strings.TrimSuffix(k, "_output")] = truncate(s, MaxSnippet)
		}
	}
	if len(findings) > 0 {
		data["findings"] = findings
	}
	return data
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "\n[truncated]"
}
