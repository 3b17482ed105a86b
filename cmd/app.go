package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/ai"
	"github.com/akadevbarki76-collab/scaling-parakeet/internal/audit"
	"github.com/akadevbarki76-collab/scaling-parakeet/internal/plugin"
	"github.com/akadevbarki76-collab/scaling-parakeet/internal/policy"
	"github.com/akadevbarki76-collab/scaling-parakeet/internal/sandbox"
	"github.com/akadevbarki76-collab/scaling-parakeet/internal/scanners"
	"github.com/akadevbarki76-collab/scaling-parakeet/internal/workflow"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/config"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/exitcode"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/tools"
)

// newRegistry supplies the plugin registry; tests swap in an isolated one.
var newRegistry = plugin.Default

// app is the per-invocation wiring of config, sandbox, plugins and workflows.
type app struct {
	cfg       *config.Config
	sandbox   *sandbox.Executor
	registry  *plugin.Registry
	resolver  *plugin.Resolver
	engine    *workflow.Engine
	toolbox   *scanners.Toolbox
	audit     *audit.Log
	pluginDir string
}

type configError struct{ err error }

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }
func (e *configError) ExitCode() int { return exitcode.ConfigError }

func newApp(cmd *cobra.Command) (*app, error) {
	configPath, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, &configError{err}
	}

	mode, err := tools.ParseMode(cfg.Sandbox.Mode)
	if err != nil {
		return nil, &configError{fmt.Errorf("sandbox.mode: %w", err)}
	}
	sb := sandbox.New(sandbox.Config{
		Timeout:  cfg.Sandbox.Timeout,
		Env:      cfg.Sandbox.Env,
		Runner:   tools.NewExecutor(mode, cfg.Sandbox.DockerImage),
		TempRoot: cfg.Sandbox.TempRoot,
	})

	reg := newRegistry()
	box := scanners.RegisterBuiltins(reg, scanners.Deps{
		Sandbox:     sb,
		LoadPolicy:  func() (*policy.Policy, error) { return policy.Load(cfg.Policy.File) },
		NewAIClient: aiClientFactory(cfg),
	})

	a := &app{
		cfg:       cfg,
		sandbox:   sb,
		registry:  reg,
		resolver:  plugin.NewResolver(reg, confirmer(cmd, cfg), cmd.ErrOrStderr()),
		toolbox:   box,
		pluginDir: cfg.Plugins.Dir,
	}
	a.engine = workflow.NewEngine(a.resolver, reg,
		workflow.WithDiscovery(a.discover),
		workflow.WithConfigValidation(cfg.Workflow.SchemaValidation))

	if dir, err := cfg.AuditDir(); err != nil {
		logger.Warn("audit log disabled", logger.Err(err))
	} else {
		a.audit = audit.New(dir, cfg.Audit.Enabled)
	}
	return a, nil
}

func aiClientFactory(cfg *config.Config) func() (ai.Client, error) {
	return func() (ai.Client, error) {
		return ai.New(ai.Config{
			Provider:   cfg.AI.Provider,
			Model:      cfg.AI.Model,
			Endpoint:   cfg.AI.Endpoint,
			APIKey:     cfg.AI.ResolveAPIKey(os.Getenv),
			Timeout:    cfg.AI.Timeout,
			MaxRetries: cfg.AI.MaxRetries,
		})
	}
}

// confirmer answers dependency-install prompts: --yes or plugins.auto_install
// agree, a terminal asks, anything else declines.
func confirmer(cmd *cobra.Command, cfg *config.Config) tools.Confirmer {
	yes, _ := cmd.Flags().GetBool("yes")
	if yes || cfg.Plugins.AutoInstall {
		return tools.StaticConfirmer(true)
	}
	if isTerminal(cmd.InOrStdin()) {
		return tools.NewPromptConfirmer(cmd.InOrStdin(), cmd.ErrOrStderr())
	}
	return tools.StaticConfirmer(false)
}

func isTerminal(in any) bool {
	f, ok := in.(*os.File)
	if !ok {
		return false
	}
	st, err := f.Stat()
	return err == nil && st.Mode()&os.ModeCharDevice != 0
}

// discover loads manifests from the plugin directory. Invalid manifests are
// logged; the valid ones stay registered.
func (a *app) discover() error {
	dir := a.pluginDir
	if dir == "" {
		return nil
	}
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}
	err := a.registry.Discover(dir, a.sandbox)
	if err != nil {
		logger.Warn("some plugin manifests were skipped", logger.String("dir", dir), logger.Err(err))
	}
	return err
}

// tool returns the built-in tool name after making sure its binaries are
// installed (asking for consent when they are not).
func (a *app) tool(ctx context.Context, name string) (scanners.Tool, error) {
	t, err := a.toolbox.Get(name)
	if err != nil {
		return nil, err
	}
	if d, ok := a.registry.Lookup(t.Name()); ok {
		if err := a.resolver.EnsureDependencies(ctx, d); err != nil {
			return nil, err
		}
	}
	return t, nil
}

func (a *app) record(action, message string, metadata map[string]any, target string) {
	if a.audit == nil {
		return
	}
	if err := a.audit.Record(action, message, metadata, target); err != nil {
		logger.Warn("audit write failed",
			logger.String("action", action),
			logger.Err(err))
	}
}

func (a *app) loadPolicy() (*policy.Policy, error) {
	return policy.Load(a.cfg.Policy.File)
}

// outputFormat validates the --format flag.
func outputFormat(cmd *cobra.Command) (string, error) {
	f, _ := cmd.Flags().GetString("format")
	switch f {
	case "", "text":
		return "text", nil
	case "json":
		return "json", nil
	default:
		return "", fmt.Errorf("unsupported format %q (use text or json)", f)
	}
}
