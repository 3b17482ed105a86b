/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package tools

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/exitcode"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
)

// DefaultScannerImage ships the scanners bughunter wraps.
const DefaultScannerImage = "docker.io/kalilinux/kali-rolling:latest"

// containerWorkDir is where the sandbox is bind-mounted inside the container.
const containerWorkDir = "/work"

// DockerExecutor runs each tool in a fresh container of the scanner image
// with only the sandbox directory mounted.
type DockerExecutor struct {
	image      string
	dockerPath string
}

// NewDockerExecutor creates a DockerExecutor. An empty image means DefaultScannerImage.
func NewDockerExecutor(image string) *DockerExecutor {
	if strings.TrimSpace(image) == "" {
		image = DefaultScannerImage
	}
	dockerPath, _ := exec.LookPath("docker")
	return &DockerExecutor{image: image, dockerPath: dockerPath}
}

func (e *DockerExecutor) Name() string { return "docker" }

// IsAvailable reports whether the docker CLI is installed. Whether the image
// contains tool is only known once the container runs.
func (e *DockerExecutor) IsAvailable(string) bool { return e.dockerPath != "" }

// Image returns the scanner image.
func (e *DockerExecutor) Image() string { return e.image }

// TranslatePath maps a host path under workDir to its location inside the container.
func (e *DockerExecutor) TranslatePath(workDir, hostPath string) string {
	rel, err := filepath.Rel(workDir, hostPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return hostPath
	}
	if rel == "." {
		return containerWorkDir
	}
	return containerWorkDir + "/" + filepath.ToSlash(rel)
}

// containerName returns a unique name so a cancelled run can be killed by name.
func containerName() string {
	b := make([]byte, 6)
	_, _ = rand.Read(b)
	return "bughunter-" + hex.EncodeToString(b)
}

// killContainer stops a named container. Killing the docker CLI alone leaves
// the container running under the daemon.
func (e *DockerExecutor) killContainer(name string) {
	ctx, cancel := context.WithTimeout(context.Background(), killGrace)
	defer cancel()
	// #nosec G204 - name is generated by containerName
	out, err := exec.CommandContext(ctx, e.dockerPath, "kill", name).CombinedOutput()
	if err != nil {
		logger.Debug("docker kill failed",
			logger.String("container", name),
			logger.String("output", strings.TrimSpace(string(out))),
			logger.Err(err))
		return
	}
	logger.Debug("killed container", logger.String("container", name))
}

// runArgs builds the docker CLI arguments for opts with workDir mounted.
func (e *DockerExecutor) runArgs(workDir, name string, opts ExecuteOptions) []string {
	args := []string{
		"run", "--rm",
		"--name", name,
		"--security-opt", "no-new-privileges",
		"-v", workDir + ":" + containerWorkDir,
		"-w", containerWorkDir,
	}
	keys := make([]string, 0, len(opts.Env))
	for k := range opts.Env {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		args = append(args, "-e", k+"="+opts.Env[k])
	}
	if opts.Stdin != nil {
		args = append(args, "-i")
	}
	args = append(args, e.image, opts.Tool)
	return append(args, opts.Args...)
}

// Execute runs the tool in a container. Only opts.Env is passed in; the host
// environment stays outside.
func (e *DockerExecutor) Execute(ctx context.Context, opts ExecuteOptions) (*ExecuteResult, error) {
	if e.dockerPath == "" {
		return nil, fmt.Errorf("%w: docker not found in PATH", ErrToolNotFound)
	}
	workDir := opts.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		workDir = wd
	}

	name := containerName()
	args := e.runArgs(workDir, name, opts)
	logger.Debug("docker executor", logger.Strings("args", args))
	res, err := process{
		path:     e.dockerPath,
		args:     args,
		env:      os.Environ(),
		stdin:    opts.Stdin,
		executor: e.Name(),
		onCancel: func() { e.killContainer(name) },
	}.run(ctx)
	if err != nil {
		return res, err
	}
	// docker exits 127 when the entrypoint binary is missing from the image.
	if res.ExitCode == exitcode.CommandNotFound {
		return res, fmt.Errorf("%w: %s not present in image %s", ErrToolNotFound, opts.Tool, e.image)
	}
	return res, nil
}
