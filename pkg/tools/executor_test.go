/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package tools

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    ExecutionMode
		wantErr bool
	}{
		{"", ModeLocal, false},
		{"local", ModeLocal, false},
		{"DOCKER", ModeDocker, false},
		{" auto ", ModeAuto, false},
		{"podman", "", true},
	}
	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrUnknownMode) {
				t.Errorf("ParseMode(%q) error = %v, want ErrUnknownMode", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseMode(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}

func TestNewExecutor(t *testing.T) {
	tests := []struct {
		mode ExecutionMode
		want string
	}{
		{ModeLocal, "local"},
		{ModeDocker, "docker"},
		{ModeAuto, "auto"},
		{"", "local"},
	}
	for _, tt := range tests {
		if got := NewExecutor(tt.mode, "").Name(); got != tt.want {
			t.Errorf("NewExecutor(%q).Name() = %v, want %v", tt.mode, got, tt.want)
		}
	}
}

func TestMergeEnvOverrides(t *testing.T) {
	got := mergeEnv([]string{"A=1", "B=2", "C=3"}, map[string]string{"Z": "26", "B": "two"})
	want := []string{"A=1", "C=3", "B=two", "Z=26"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("mergeEnv() = %v, want %v", got, want)
	}
}

func requireSh(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("POSIX shell required")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available, skipping")
	}
}

func TestLocalExecutor_Execute(t *testing.T) {
	requireSh(t)
	executor := NewLocalExecutor()

	result, err := executor.Execute(context.Background(), ExecuteOptions{
		Tool: "sh",
		Args: []string{"-c", "echo out; echo err 1>&2; exit 3"},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if result.ExitCode != 3 {
		t.Errorf("exit code = %d, want 3", result.ExitCode)
	}
	if string(result.Stdout) != "out\n" {
		t.Errorf("stdout = %q", result.Stdout)
	}
	if string(result.Stderr) != "err\n" {
		t.Errorf("stderr = %q", result.Stderr)
	}
	if result.Executor != "local" {
		t.Errorf("executor = %v, want local", result.Executor)
	}
}

func TestLocalExecutor_WorkDirAndEnv(t *testing.T) {
	requireSh(t)
	dir := t.TempDir()
	executor := NewLocalExecutor()

	result, err := executor.Execute(context.Background(), ExecuteOptions{
		Tool:    "sh",
		Args:    []string{"-c", `pwd; printf "%s" "$BH_TEST_VAR"`},
		WorkDir: dir,
		Env:     map[string]string{"BH_TEST_VAR": "sandboxed"},
	})
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	out := string(result.Stdout)
	if want := "sandboxed"; len(out) < len(want) || out[len(out)-len(want):] != want {
		t.Errorf("stdout = %q, want env value at end", out)
	}
}

func TestLocalExecutor_ToolNotFound(t *testing.T) {
	executor := NewLocalExecutor()
	_, err := executor.Execute(context.Background(), ExecuteOptions{Tool: "nonexistent-tool-xyz-123"})
	if !errors.Is(err, ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
}

func TestLocalExecutor_CancelKillsProcessTree(t *testing.T) {
	requireSh(t)
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	executor := NewLocalExecutor()
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := executor.Execute(ctx, ExecuteOptions{
		Tool: "sh",
		Args: []string{"-c", "sleep 30 & sleep 30; wait"},
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("execution was not interrupted promptly: %v", elapsed)
	}
}

func TestDockerExecutor_Image(t *testing.T) {
	if got := NewDockerExecutor("").Image(); got != DefaultScannerImage {
		t.Errorf("Image() = %v, want %v", got, DefaultScannerImage)
	}
	if got := NewDockerExecutor("explicit:tag").Image(); got != "explicit:tag" {
		t.Errorf("Image() = %v, want explicit:tag", got)
	}
}

func TestDockerExecutor_RunArgs(t *testing.T) {
	e := NewDockerExecutor("img:1")
	got := e.runArgs("/tmp/sb", "bughunter-abc", ExecuteOptions{
		Tool: "semgrep",
		Args: []string{"--json", "/work"},
		Env:  map[string]string{"B": "2", "A": "1"},
	})
	want := "run --rm --name bughunter-abc --security-opt no-new-privileges -v /tmp/sb:/work -w /work -e A=1 -e B=2 img:1 semgrep --json /work"
	if strings.Join(got, " ") != want {
		t.Errorf("runArgs() = %q\nwant %q", strings.Join(got, " "), want)
	}
}

func TestDockerExecutor_CancelKillsContainer(t *testing.T) {
	requireSh(t)
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	dir := t.TempDir()
	log := filepath.Join(dir, "calls.log")
	fakeDocker := filepath.Join(dir, "docker")
	script := "#!/bin/sh\n" +
		"echo \"$@\" >> " + log + "\n" +
		"if [ \"$1\" = run ]; then sleep 30; fi\n"
	if err := os.WriteFile(fakeDocker, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	e := &DockerExecutor{image: "img:1", dockerPath: fakeDocker}
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	_, err := e.Execute(ctx, ExecuteOptions{Tool: "semgrep", WorkDir: dir})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}

	data, err := os.ReadFile(log)
	if err != nil {
		t.Fatal(err)
	}
	var runName, killName string
	for _, line := range strings.Split(strings.TrimSpace(string(data)), "\n") {
		fields := strings.Fields(line)
		switch {
		case len(fields) > 3 && fields[0] == "run" && fields[2] == "--name":
			runName = fields[3]
		case len(fields) == 2 && fields[0] == "kill":
			killName = fields[1]
		}
	}
	if !strings.HasPrefix(runName, "bughunter-") {
		t.Fatalf("container was not named: %q", string(data))
	}
	if killName != runName {
		t.Errorf("docker kill %q, want %q", killName, runName)
	}
}

func TestContainerNameIsUnique(t *testing.T) {
	a, b := containerName(), containerName()
	if a == b {
		t.Errorf("containerName() returned %q twice", a)
	}
}

func TestDockerExecutor_TranslatePath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("POSIX paths")
	}
	e := NewDockerExecutor("img")
	tests := []struct {
		host string
		want string
	}{
		{"/tmp/sb", "/work"},
		{"/tmp/sb/app.c", "/work/app.c"},
		{"/tmp/sb/src/lib/x.c", "/work/src/lib/x.c"},
		{"/etc/passwd", "/etc/passwd"},
	}
	for _, tt := range tests {
		if got := e.TranslatePath("/tmp/sb", tt.host); got != tt.want {
			t.Errorf("TranslatePath(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}

func TestAutoExecutor_SelectPrefersLocal(t *testing.T) {
	requireSh(t)
	e := NewAutoExecutor("")
	if got := e.Select("sh").Name(); got != "local" {
		t.Errorf("Select(sh) = %s, want local", got)
	}
}

func TestAutoExecutor_MissingEverywhere(t *testing.T) {
	e := NewAutoExecutor("")
	e.docker.dockerPath = ""
	_, err := e.Execute(context.Background(), ExecuteOptions{Tool: "nonexistent-tool-xyz-123"})
	if !errors.Is(err, ErrToolNotFound) {
		t.Fatalf("expected ErrToolNotFound, got %v", err)
	}
	if got := e.Select("nonexistent-tool-xyz-123").Name(); got != "local" {
		t.Errorf("Select() = %s, want local fallback", got)
	}
}
