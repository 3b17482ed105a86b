package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/plugin"
)

// testEnv isolates a test from the user's home, config and the process-wide
// plugin registry. It returns a directory for fixtures.
func testEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("BUGHUNTER_HOME", filepath.Join(dir, ".bughunter"))
	prev := newRegistry
	newRegistry = plugin.NewRegistry
	t.Cleanup(func() { newRegistry = prev })
	return dir
}

// writeConfig writes a bughunter.yaml into dir and returns its path.
func writeConfig(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "bughunter.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func execRoot(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	root := newRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetIn(strings.NewReader(""))
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func TestInitializeLogger(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("log-level", "info", "")
	cmd.Flags().Bool("json", false, "")
	cmd.Flags().Bool("no-color", false, "")

	initializeLogger(cmd)
}

func TestInitializeLogger_InvalidLevel(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("log-level", "invalid", "")
	cmd.Flags().Bool("json", true, "")
	cmd.Flags().Bool("no-color", true, "")

	// Falls back to info.
	initializeLogger(cmd)
}

func TestRootHelpListsGroups(t *testing.T) {
	testEnv(t)
	out, _, err := execRoot(t, "--help")
	require.NoError(t, err)
	assert.Contains(t, out, "Bughunter drives third-party security scanners")
	assert.Contains(t, out, "run-tool")
	assert.Contains(t, out, "workflow")
}

func TestSubcommandsRegistered(t *testing.T) {
	root := newRootCommand()
	for _, name := range []string{"scan", "run-tool", "workflow", "plugins", "ai", "audit", "version"} {
		c, _, err := root.Find([]string{name})
		require.NoError(t, err, name)
		assert.Equal(t, name, c.Name())
	}
}

func TestOutputFormat(t *testing.T) {
	cmd := &cobra.Command{}
	cmd.Flags().String("format", "text", "")
	f, err := outputFormat(cmd)
	require.NoError(t, err)
	assert.Equal(t, "text", f)

	require.NoError(t, cmd.Flags().Set("format", "json"))
	f, err = outputFormat(cmd)
	require.NoError(t, err)
	assert.Equal(t, "json", f)

	require.NoError(t, cmd.Flags().Set("format", "xml"))
	_, err = outputFormat(cmd)
	assert.Error(t, err)
}

func TestBadConfigIsConfigError(t *testing.T) {
	dir := testEnv(t)
	_, _, err := execRoot(t, "--config", filepath.Join(dir, "missing.yaml"), "plugins", "list")
	require.Error(t, err)
	var ce *configError
	assert.ErrorAs(t, err, &ce)
}
