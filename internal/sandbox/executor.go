// Package sandbox runs external tools against a private, throwaway copy of a scan target.
package sandbox

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/exitcode"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/tools"
)

// DefaultTimeout bounds a single tool invocation when no timeout is configured.
const DefaultTimeout = 10 * time.Minute

// Result is the captured outcome of one invocation.
type Result struct {
	Stdout   string        `json:"stdout"`
	Stderr   string        `json:"stderr"`
	ExitCode int           `json:"exit_code"`
	Duration time.Duration `json:"duration"`
	Executor string        `json:"executor,omitempty"`
}

// Config configures an Executor.
type Config struct {
	// Timeout per invocation; zero disables the limit.
	Timeout time.Duration
	// Env is added to the inherited process environment.
	Env map[string]string
	// Runner executes the process; defaults to a local executor.
	Runner tools.ToolExecutor
	// TempRoot is the parent of sandbox directories; defaults to os.TempDir.
	TempRoot string
}

// Executor stages targets and runs commands inside sandboxes. It holds no
// per-call state and is safe for concurrent use.
type Executor struct {
	cfg Config
}

// New creates an Executor.
func New(cfg Config) *Executor {
	if cfg.Runner == nil {
		cfg.Runner = tools.NewLocalExecutor()
	}
	return &Executor{cfg: cfg}
}

// Timeout returns the configured per-invocation budget.
func (e *Executor) Timeout() time.Duration { return e.cfg.Timeout }

// WithTimeout returns a copy of e with a different per-invocation budget.
func (e *Executor) WithTimeout(d time.Duration) *Executor {
	cfg := e.cfg
	cfg.Timeout = d
	return &Executor{cfg: cfg}
}

// Run copies targetPath into a fresh sandbox, substitutes the staged path for
// the last token of command and runs it with the sandbox as working directory.
//
// A missing executable is reported as a Result with exit code 127 and a nil
// error. The sandbox is removed before Run returns on every path.
func (e *Executor) Run(ctx context.Context, command []string, targetPath, description string) (Result, error) {
	if len(command) == 0 {
		return Result{}, ErrEmptyCommand
	}

	session, err := Stage(e.cfg.TempRoot, targetPath)
	if err != nil {
		if errors.Is(err, ErrInvalidTarget) {
			return Result{}, err
		}
		return Result{}, &ExecutionError{Command: command[0], Err: err}
	}
	defer func() { _ = session.Close() }()

	return e.invoke(ctx, session, command, description, true)
}

// RunNetwork runs command against a network target (URL or host) from an
// empty sandbox directory. target replaces the last token verbatim.
func (e *Executor) RunNetwork(ctx context.Context, command []string, target, description string) (Result, error) {
	if len(command) == 0 {
		return Result{}, ErrEmptyCommand
	}
	if strings.TrimSpace(target) == "" {
		return Result{}, &InvalidTargetError{Path: target, Reason: "no target given"}
	}
	session, err := Empty(e.cfg.TempRoot, target)
	if err != nil {
		return Result{}, &ExecutionError{Command: command[0], Err: err}
	}
	defer func() { _ = session.Close() }()

	return e.invoke(ctx, session, command, description, false)
}

func (e *Executor) invoke(ctx context.Context, session *Session, command []string, description string, translate bool) (Result, error) {
	runner := e.cfg.Runner
	if sel, ok := runner.(tools.Selector); ok {
		runner = sel.Select(command[0])
	}

	staged := session.Staged
	if tr, ok := runner.(tools.PathTranslator); ok && translate {
		staged = tr.TranslatePath(session.Dir, staged)
	}
	argv := rewriteTarget(command, staged)

	runCtx := ctx
	var cancel context.CancelFunc
	if e.cfg.Timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, e.cfg.Timeout)
		defer cancel()
	}

	logger.Info("running tool in sandbox",
		logger.String("description", description),
		logger.String("tool", argv[0]),
		logger.String("executor", runner.Name()))

	start := time.Now()
	res, err := runner.Execute(runCtx, tools.ExecuteOptions{
		Tool:    argv[0],
		Args:    argv[1:],
		WorkDir: session.Dir,
		Env:     e.cfg.Env,
	})
	elapsed := time.Since(start)

	result := Result{Duration: elapsed, Executor: runner.Name()}
	if res != nil {
		result.Stdout = string(res.Stdout)
		result.Stderr = string(res.Stderr)
		result.ExitCode = res.ExitCode
	}

	if err != nil {
		switch {
		case errors.Is(err, tools.ErrToolNotFound):
			logger.Warn("command not found", logger.String("tool", argv[0]))
			return Result{
				Stderr:   fmt.Sprintf("Error: Command '%s' not found in sandbox environment.", argv[0]),
				ExitCode: exitcode.CommandNotFound,
				Duration: elapsed,
				Executor: runner.Name(),
			}, nil
		case ctx.Err() != nil:
			return result, fmt.Errorf("%s: %w", description, ctx.Err())
		case runCtx.Err() != nil:
			logger.Warn("tool timed out",
				logger.String("tool", argv[0]),
				logger.Duration("timeout", e.cfg.Timeout))
			return result, &TimeoutError{Command: argv[0], Timeout: e.cfg.Timeout, Result: result}
		default:
			return result, &ExecutionError{Command: argv[0], Err: err}
		}
	}

	logger.Debug("tool finished",
		logger.String("tool", argv[0]),
		logger.Int("exit_code", result.ExitCode),
		logger.Duration("elapsed", elapsed))
	return result, nil
}

// rewriteTarget returns a copy of command whose last token is replaced by
// staged. A bare command with no arguments gets the path appended instead.
func rewriteTarget(command []string, staged string) []string {
	argv := make([]string, len(command), len(command)+1)
	copy(argv, command)
	if len(argv) == 1 {
		return append(argv, staged)
	}
	argv[len(argv)-1] = staged
	return argv
}
