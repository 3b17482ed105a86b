package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"
)

// killGrace bounds how long Wait blocks on inherited pipes after the process tree is killed.
const killGrace = 5 * time.Second

// process is a prepared invocation shared by the local and docker executors.
type process struct {
	path     string
	args     []string
	dir      string
	env      []string
	stdin    io.Reader
	executor string
	// onCancel runs before the local process tree is killed.
	onCancel func()
}

// run starts the process, kills its whole tree when ctx ends and collects
// its output. Exit statuses are returned in the result.
func (p process) run(ctx context.Context) (*ExecuteResult, error) {
	// #nosec G204 - path is resolved by the caller's locator or exec.LookPath
	cmd := exec.CommandContext(ctx, p.path, p.args...)
	cmd.Cancel = func() error {
		if p.onCancel != nil {
			p.onCancel()
		}
		if cmd.Process == nil {
			return nil
		}
		return KillTree(cmd.Process.Pid)
	}
	cmd.WaitDelay = killGrace
	cmd.Dir = p.dir
	cmd.Env = p.env
	if p.stdin != nil {
		cmd.Stdin = p.stdin
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()

	result := &ExecuteResult{Stdout: stdout.Bytes(), Stderr: stderr.Bytes(), Executor: p.executor}
	if err == nil {
		return result, nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return result, fmt.Errorf("%s interrupted: %w", p.path, ctxErr)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, nil
	}
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s: %v", ErrToolNotFound, p.path, err)
	}
	return nil, fmt.Errorf("start %s: %w", p.path, err)
}

// mergeEnv returns base with extra applied on top. Keys from extra replace
// base entries of the same name and are appended in sorted order.
func mergeEnv(base []string, extra map[string]string) []string {
	if len(extra) == 0 {
		return base
	}
	out := make([]string, 0, len(base)+len(extra))
	for _, kv := range base {
		k, _, _ := strings.Cut(kv, "=")
		if _, override := extra[k]; !override {
			out = append(out, kv)
		}
	}
	keys := make([]string, 0, len(extra))
	for k := range extra {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		out = append(out, k+"="+extra[k])
	}
	return out
}
