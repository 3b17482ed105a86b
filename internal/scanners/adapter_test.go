package scanners

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/plugin"
)

type fakeTool struct {
	mu      sync.Mutex
	targets []string
	output  string
	opts    Options
	err     error
}

func (f *fakeTool) Name() string        { return "fake" }
func (f *fakeTool) Description() string { return "fake scanner" }

func (f *fakeTool) Run(_ context.Context, target, outputFile string, opts Options) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.targets = append(f.targets, target)
	f.output = outputFile
	f.opts = opts
	if f.err != nil {
		return "", f.err
	}
	return "report for " + target, nil
}

func (f *fakeTool) Enrich(report string, wctx map[string]any) error {
	wctx["fake_words"] = len(strings.Fields(report))
	return nil
}

func TestToolPluginStoresReport(t *testing.T) {
	ft := &fakeTool{}
	p := ToolPlugin(ft)
	wctx := plugin.Context{"target": "example.com"}

	out, err := p.Execute(context.Background(), wctx, nil)
	require.NoError(t, err)
	assert.Equal(t, "report for example.com", out["fake_output"])
	assert.Equal(t, 3, out["fake_words"])
	assert.NotContains(t, wctx, "fake_output", "input context must not be modified")
}

func TestToolPluginConfigOverrides(t *testing.T) {
	ft := &fakeTool{}
	config := map[string]any{
		"target":     "other.org",
		"output_key": "scan",
		"ports":      "22,80",
		"top_ports":  float64(50),
		"ruleset":    "p/ci",
		"args":       []any{"-v", 2},
	}
	out, err := ToolPlugin(ft).Execute(context.Background(), plugin.Context{"target": "ignored"}, config)
	require.NoError(t, err)
	assert.Equal(t, "report for other.org", out["scan"])
	assert.Equal(t, Options{Ports: "22,80", TopPorts: 50, Ruleset: "p/ci", Args: []string{"-v", "2"}}, ft.opts)
}

func TestToolPluginOutputFile(t *testing.T) {
	ft := &fakeTool{}
	wctx := plugin.Context{"target": "example.com"}

	_, err := ToolPlugin(ft).Execute(context.Background(), wctx, map[string]any{"output_file": "./reports//scan.txt"})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("reports", "scan.txt"), ft.output)

	ft = &fakeTool{}
	_, err = ToolPlugin(ft).Execute(context.Background(), wctx, map[string]any{"output_file": "../../etc/cron.d/x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "traversal")
	assert.Empty(t, ft.targets, "tool must not run with a rejected output path")
}

func TestToolPluginErrors(t *testing.T) {
	_, err := ToolPlugin(&fakeTool{}).Execute(context.Background(), plugin.Context{}, nil)
	assert.Error(t, err)

	boom := errors.New("boom")
	_, err = ToolPlugin(&fakeTool{err: boom}).Execute(context.Background(), plugin.Context{"target": "x"}, nil)
	assert.ErrorIs(t, err, boom)
}

func TestToolPluginInstallable(t *testing.T) {
	p := ToolPlugin(&fakeTool{}).(plugin.Installable)
	assert.True(t, p.IsInstalled())

	missing := newCommandTool(commandSpec{name: "ghost", binary: "bughunter-no-such-binary"}, testSandbox())
	assert.False(t, ToolPlugin(missing).(plugin.Installable).IsInstalled())
}

type slowTool struct {
	inFlight, peak atomic.Int32
}

func (s *slowTool) Name() string        { return "slow" }
func (s *slowTool) Description() string { return "" }

func (s *slowTool) Run(_ context.Context, target, _ string, _ Options) (string, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		p := s.peak.Load()
		if n <= p || s.peak.CompareAndSwap(p, n) {
			break
		}
	}
	time.Sleep(20 * time.Millisecond)
	if target == "bad" {
		return "", errors.New("bad target")
	}
	return target, nil
}

func TestScanAll(t *testing.T) {
	st := &slowTool{}
	targets := []string{"a", "bad", "c", "d", "e"}
	outcomes := ScanAll(context.Background(), st, targets, Options{}, 2)

	require.Len(t, outcomes, len(targets))
	for i, o := range outcomes {
		assert.Equal(t, targets[i], o.Target)
	}
	assert.Error(t, outcomes[1].Err)
	assert.Equal(t, "e", outcomes[4].Report)
	assert.LessOrEqual(t, st.peak.Load(), int32(2))
}
