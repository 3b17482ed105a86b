/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package tools

import (
	"context"
	"fmt"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
)

// AutoExecutor runs host binaries when present and otherwise uses the scanner image.
type AutoExecutor struct {
	local  *LocalExecutor
	docker *DockerExecutor
}

// NewAutoExecutor creates an AutoExecutor whose docker fallback uses image.
func NewAutoExecutor(image string) *AutoExecutor {
	return &AutoExecutor{local: NewLocalExecutor(), docker: NewDockerExecutor(image)}
}

func (e *AutoExecutor) Name() string { return "auto" }

func (e *AutoExecutor) IsAvailable(tool string) bool {
	return e.local.IsAvailable(tool) || e.docker.IsAvailable(tool)
}

// Select returns the local executor when the host has tool, docker when the
// daemon CLI is installed, and the local executor otherwise.
func (e *AutoExecutor) Select(tool string) ToolExecutor {
	switch {
	case e.local.IsAvailable(tool):
		return e.local
	case e.docker.IsAvailable(tool):
		return e.docker
	default:
		return e.local
	}
}

// Execute delegates to the executor chosen by Select.
func (e *AutoExecutor) Execute(ctx context.Context, opts ExecuteOptions) (*ExecuteResult, error) {
	if e.IsAvailable(opts.Tool) {
		runner := e.Select(opts.Tool)
		logger.Debug("auto executor: delegating", logger.String("tool", opts.Tool), logger.String("executor", runner.Name()))
		return runner.Execute(ctx, opts)
	}
	return nil, fmt.Errorf(`%w: %s is not installed and docker is unavailable

Install it with "bughunter plugins install <plugin>", or install docker and
set sandbox.mode to docker (scanner image %s)`, ErrToolNotFound, opts.Tool, e.docker.Image())
}
