// Package workflow runs ordered plugin steps over a shared context. A failing
// step is reported and the run moves on to the next one.
package workflow

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/plugin"
	"github.com/akadevbarki76-collab/scaling-parakeet/internal/schema"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
)

// Resolver turns a plugin name into a runnable instance.
type Resolver interface {
	Resolve(ctx context.Context, name string) (plugin.Plugin, error)
}

// Engine executes workflows. It is safe to reuse across runs.
type Engine struct {
	resolver Resolver
	registry *plugin.Registry
	discover func() error
	validate bool

	discoverOnce sync.Once
}

// Option configures an Engine.
type Option func(*Engine)

// WithDiscovery runs fn once before the first workflow executes.
func WithDiscovery(fn func() error) Option {
	return func(e *Engine) { e.discover = fn }
}

// WithConfigValidation toggles validation of step config against the
// plugin's schema. It is on by default.
func WithConfigValidation(on bool) Option {
	return func(e *Engine) { e.validate = on }
}

// NewEngine creates an Engine. registry supplies config schemas and may be nil.
func NewEngine(resolver Resolver, registry *plugin.Registry, opts ...Option) *Engine {
	e := &Engine{resolver: resolver, registry: registry, validate: true}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Execute runs steps in order starting from initial (an empty context when
// nil) and returns the final context with a per-step report. Step failures
// never abort the run. Cancelling ctx marks the remaining steps skipped.
func (e *Engine) Execute(ctx context.Context, steps []Step, initial plugin.Context) (plugin.Context, *Report) {
	e.discoverOnce.Do(func() {
		if e.discover == nil {
			return
		}
		if err := e.discover(); err != nil {
			logger.Warn("plugin discovery reported errors", logger.Err(err))
		}
	})

	wctx := initial
	if wctx == nil {
		wctx = plugin.Context{}
	}

	start := time.Now()
	report := &Report{Steps: make([]StepResult, len(steps))}
	for i, step := range steps {
		report.Steps[i] = StepResult{Index: i + 1, Plugin: step.Plugin, Status: StatusPending}
	}

	logger.Info("workflow started", logger.Int("steps", len(steps)))
	for i, step := range steps {
		res := &report.Steps[i]
		if err := ctx.Err(); err != nil {
			res.Status = StatusSkipped
			res.Err = &StepError{Index: res.Index, Plugin: step.Plugin, Err: fmt.Errorf("%w: %v", ErrSkipped, err)}
			res.Error = res.Err.Error()
			continue
		}

		res.Status = StatusRunning
		stepStart := time.Now()
		next, err := e.runStep(ctx, res.Index, step, wctx)
		res.Duration = time.Since(stepStart)

		if err != nil {
			res.Status = StatusFailed
			res.Err = err
			res.Error = err.Error()
			logger.Error("workflow step failed",
				logger.Int("step", res.Index),
				logger.String("plugin", step.Plugin),
				logger.Err(err))
			continue
		}

		res.Status = StatusCompleted
		if next != nil {
			wctx = next
		}
		logger.Info("workflow step completed",
			logger.Int("step", res.Index),
			logger.String("plugin", step.Plugin),
			logger.Duration("elapsed", res.Duration))
	}

	report.Duration = time.Since(start)
	logger.Info("workflow finished",
		logger.Int("completed", report.Count(StatusCompleted)),
		logger.Int("failed", report.Count(StatusFailed)),
		logger.Int("skipped", report.Count(StatusSkipped)))
	return wctx, report
}

func (e *Engine) runStep(ctx context.Context, index int, step Step, wctx plugin.Context) (next plugin.Context, err error) {
	fail := func(err error) (plugin.Context, error) {
		return nil, &StepError{Index: index, Plugin: step.Plugin, Err: err}
	}

	if step.Plugin == "" {
		return fail(ErrMissingPluginName)
	}

	p, err := e.resolver.Resolve(ctx, step.Plugin)
	if err != nil {
		return fail(err)
	}

	config := step.Config
	if config == nil {
		config = map[string]any{}
	}
	if err := e.validateConfig(step.Plugin, config); err != nil {
		return fail(err)
	}

	defer func() {
		if r := recover(); r != nil {
			logger.Debug("plugin panic", logger.String("stack", string(debug.Stack())))
			next, err = fail(fmt.Errorf("plugin panicked: %v", r))
		}
	}()

	logger.Debug("executing workflow step", logger.Int("step", index), logger.String("plugin", step.Plugin))
	out, err := p.Execute(ctx, wctx.Clone(), config)
	if err != nil {
		return fail(err)
	}
	return out, nil
}

func (e *Engine) validateConfig(name string, config map[string]any) error {
	if !e.validate || e.registry == nil {
		return nil
	}
	d, ok := e.registry.Lookup(name)
	if !ok || len(d.ConfigSchema) == 0 {
		return nil
	}
	res, err := schema.ValidateDocument(d.ConfigSchema, config)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStepConfig, err)
	}
	if !res.Valid {
		return fmt.Errorf("%w: %s", ErrInvalidStepConfig, res.Summary())
	}
	return nil
}
