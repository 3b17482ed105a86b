package workflow

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"pgregory.net/rapid"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/plugin"
)

// Each step either records its index in the context or fails. Failed steps
// never change the context and never stop later steps.
func TestPropertyPartialFailure(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		outcomes := rapid.SliceOfN(rapid.Bool(), 0, 12).Draw(rt, "outcomes")

		reg := plugin.NewRegistry()
		reg.Register(plugin.Descriptor{Name: "ok", Factory: func() (plugin.Plugin, error) {
			return plugin.Func(func(_ context.Context, wctx plugin.Context, cfg map[string]any) (plugin.Context, error) {
				wctx[fmt.Sprint(cfg["i"])] = true
				return wctx, nil
			}), nil
		}})
		reg.Register(plugin.Descriptor{Name: "fail", Factory: func() (plugin.Plugin, error) {
			return plugin.Func(func(_ context.Context, wctx plugin.Context, cfg map[string]any) (plugin.Context, error) {
				wctx[fmt.Sprint(cfg["i"])] = true
				return nil, errors.New("failed")
			}), nil
		}})

		steps := make([]Step, len(outcomes))
		want := plugin.Context{}
		for i, ok := range outcomes {
			name := "fail"
			if ok {
				name = "ok"
				want[fmt.Sprint(i)] = true
			}
			steps[i] = Step{Plugin: name, Config: map[string]any{"i": i}}
		}

		out, report := newEngine(reg).Execute(context.Background(), steps, nil)

		if len(report.Steps) != len(steps) {
			rt.Fatalf("report has %d steps, want %d", len(report.Steps), len(steps))
		}
		for i, ok := range outcomes {
			st := report.Steps[i]
			if st.Index != i+1 {
				rt.Fatalf("step %d has index %d", i, st.Index)
			}
			if ok != (st.Status == StatusCompleted) {
				rt.Fatalf("step %d status %s, expected success=%v", i+1, st.Status, ok)
			}
		}
		if len(out) != len(want) {
			rt.Fatalf("context = %v, want %v", out, want)
		}
		for k := range want {
			if out[k] != true {
				rt.Fatalf("context missing %s: %v", k, out)
			}
		}
	})
}

// Running the same workflow twice from equal initial contexts gives equal results.
func TestPropertyDeterministic(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		keys := rapid.SliceOfN(rapid.StringMatching(`[a-z]{1,4}`), 0, 8).Draw(rt, "keys")

		reg := plugin.NewRegistry()
		reg.Register(plugin.Descriptor{Name: "set", Factory: func() (plugin.Plugin, error) {
			return plugin.Func(func(_ context.Context, wctx plugin.Context, cfg map[string]any) (plugin.Context, error) {
				k := cfg["k"].(string)
				n, _ := wctx[k].(int)
				wctx[k] = n + 1
				return wctx, nil
			}), nil
		}})

		steps := make([]Step, len(keys))
		for i, k := range keys {
			steps[i] = Step{Plugin: "set", Config: map[string]any{"k": k}}
		}

		e := newEngine(reg)
		a, _ := e.Execute(context.Background(), steps, plugin.Context{})
		b, _ := e.Execute(context.Background(), steps, plugin.Context{})
		if fmt.Sprint(a) != fmt.Sprint(b) {
			rt.Fatalf("non-deterministic: %v vs %v", a, b)
		}
		total := 0
		for _, v := range a {
			total += v.(int)
		}
		if total != len(keys) {
			rt.Fatalf("counted %d increments, want %d", total, len(keys))
		}
	})
}
