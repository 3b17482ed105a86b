/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package tools

import (
	"context"
	"fmt"
	"os"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
)

// LocalExecutor runs binaries installed on the host.
type LocalExecutor struct {
	locator *Locator
}

// NewLocalExecutor creates a LocalExecutor that searches PATH and the usual
// package-manager shim directories.
func NewLocalExecutor() *LocalExecutor {
	return &LocalExecutor{locator: NewLocator()}
}

func (e *LocalExecutor) Name() string { return "local" }

func (e *LocalExecutor) IsAvailable(tool string) bool {
	_, ok := e.locator.Find(tool)
	return ok
}

// Execute runs the tool in opts.WorkDir with the host environment plus opts.Env.
func (e *LocalExecutor) Execute(ctx context.Context, opts ExecuteOptions) (*ExecuteResult, error) {
	path, ok := e.locator.Find(opts.Tool)
	if !ok {
		return nil, fmt.Errorf("%w: %s not found in PATH or shim directories", ErrToolNotFound, opts.Tool)
	}
	logger.Trace("local executor: starting", logger.String("tool", path), logger.Strings("args", opts.Args))
	return process{
		path:     path,
		args:     opts.Args,
		dir:      opts.WorkDir,
		env:      mergeEnv(os.Environ(), opts.Env),
		stdin:    opts.Stdin,
		executor: e.Name(),
	}.run(ctx)
}
