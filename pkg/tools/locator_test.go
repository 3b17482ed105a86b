package tools

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noPath(string) (string, error) { return "", exec.ErrNotFound }

func TestLocator_PathLookup(t *testing.T) {
	l := &Locator{
		LookPath: func(name string) (string, error) {
			if name == "nmap" {
				return "/usr/bin/nmap", nil
			}
			return "", exec.ErrNotFound
		},
	}
	p, ok := l.Find("nmap")
	assert.True(t, ok)
	assert.Equal(t, "/usr/bin/nmap", p)

	_, ok = l.Find("nuclei")
	assert.False(t, ok)

	_, ok = l.Find("")
	assert.False(t, ok)
}

func TestLocator_ShimDirectory(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "waybackurls")
	require.NoError(t, os.WriteFile(bin, []byte("#!/bin/sh\n"), 0o755))

	l := &Locator{LookPath: noPath, ShimDirs: []string{"", dir}}
	if runtime.GOOS == "windows" {
		t.Skip("windows shims carry an .exe suffix")
	}
	p, ok := l.Find("waybackurls")
	assert.True(t, ok)
	assert.Equal(t, bin, p)
}

func TestLocator_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	bin := filepath.Join(dir, "custom-osv")
	require.NoError(t, os.WriteFile(bin, []byte("x"), 0o755))

	env := map[string]string{"BUGHUNTER_TOOL_OSV_SCANNER": bin}
	l := &Locator{LookPath: noPath, Getenv: func(k string) string { return env[k] }}

	p, ok := l.Find("osv-scanner")
	assert.True(t, ok)
	assert.Equal(t, bin, p)

	env["BUGHUNTER_TOOL_OSV_SCANNER"] = filepath.Join(dir, "missing")
	_, ok = l.Find("osv-scanner")
	assert.False(t, ok)
}

func TestLocator_Missing(t *testing.T) {
	l := &Locator{LookPath: func(name string) (string, error) {
		if name == "nmap" {
			return "/bin/nmap", nil
		}
		return "", exec.ErrNotFound
	}}
	assert.Equal(t, []string{"sqlmap", "nikto"}, l.Missing([]string{"nmap", "sqlmap", "nikto"}))
	assert.Nil(t, l.Missing([]string{"nmap"}))
}

func TestOverrideEnvVar(t *testing.T) {
	assert.Equal(t, "BUGHUNTER_TOOL_NMAP", OverrideEnvVar("nmap"))
	assert.Equal(t, "BUGHUNTER_TOOL_OSV_SCANNER", OverrideEnvVar("osv-scanner"))
	assert.Equal(t, "BUGHUNTER_TOOL_SQLMAP_PY", OverrideEnvVar("/opt/sqlmap.py"))
}
