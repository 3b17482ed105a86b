package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/plugin"
)

// PluginName is the registry name of the policy check step.
const PluginName = "policy_check"

// ErrNonCompliant is returned by the policy step when fail_on_violation is set.
var ErrNonCompliant = errors.New("target violates the security policy")

// Descriptor registers the policy step. load is called on every execution so
// policy edits take effect without restarting.
func Descriptor(load func() (*Policy, error)) plugin.Descriptor {
	return plugin.Descriptor{
		Name:        PluginName,
		Version:     "1.0.0",
		Description: "Check a path against the security policy's disallowed patterns",
		Source:      "builtin",
		ConfigSchema: map[string]any{
			"type": "object",
			"properties": map[string]any{
				"target":            map[string]any{"type": "string"},
				"fail_on_violation": map[string]any{"type": "boolean"},
			},
		},
		Factory: func() (plugin.Plugin, error) {
			return &checkPlugin{load: load}, nil
		},
	}
}

type checkPlugin struct {
	load func() (*Policy, error)
}

// Execute stores the report under "policy_report" and the compliance verdict
// under "policy_compliant".
func (c *checkPlugin) Execute(ctx context.Context, wctx plugin.Context, config map[string]any) (plugin.Context, error) {
	target, ok := plugin.Context(config).String("target")
	if !ok {
		if target, ok = wctx.String("target"); !ok {
			return nil, fmt.Errorf("%s: no target in step config or workflow context", PluginName)
		}
	}
	p, err := c.load()
	if err != nil {
		return nil, err
	}
	report, err := Evaluate(ctx, p, target)
	if err != nil {
		return nil, err
	}
	if fail, _ := config["fail_on_violation"].(bool); fail && !report.Compliant {
		return nil, fmt.Errorf("%w: %d blocking violation(s)", ErrNonCompliant, len(report.Blocking()))
	}
	out := wctx.Clone()
	out["policy_report"] = report
	out["policy_compliant"] = report.Compliant
	return out, nil
}
