package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/plugin"
)

func TestPluginsListText(t *testing.T) {
	_, config := workflowFixture(t)
	out, _, err := execRoot(t, "--config", config, "plugins", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "echoer")
	assert.Contains(t, out, "policy_check")
}

func TestPluginsListJSON(t *testing.T) {
	dir, config := workflowFixture(t)
	out, _, err := execRoot(t, "--config", config, "plugins", "list", "--format", "json")
	require.NoError(t, err)

	var rows []pluginRow
	require.NoError(t, json.Unmarshal([]byte(out), &rows))
	var found bool
	for _, r := range rows {
		if r.Name == "echoer" {
			found = true
			assert.Equal(t, "1.0.0", r.Version)
			assert.Equal(t, filepath.Join(dir, "plugins", "echoer.plugin.yaml"), r.Source)
		}
	}
	assert.True(t, found)
}

func TestPluginsCheckMissingDependency(t *testing.T) {
	dir, config := workflowFixture(t)
	manifest := "name: ghost\nversion: 0.1.0\ncommand: [ghost-scanner-does-not-exist, T]\ndependencies: [ghost-scanner-does-not-exist]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plugins", "ghost.plugin.yaml"), []byte(manifest), 0o644))

	out, _, err := execRoot(t, "--config", config, "plugins", "check", "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, plugin.ErrMissingDependency))
	assert.Contains(t, out, "ghost: missing ghost-scanner-does-not-exist")
}

func TestPluginsCheckUnknown(t *testing.T) {
	_, config := workflowFixture(t)
	_, _, err := execRoot(t, "--config", config, "plugins", "check", "nope")
	require.Error(t, err)
	assert.True(t, errors.Is(err, plugin.ErrPluginNotFound))
}

func TestPluginsInstallDeclinedWithoutTerminal(t *testing.T) {
	dir, config := workflowFixture(t)
	manifest := "name: ghost\nversion: 0.1.0\ncommand: [ghost-scanner-does-not-exist, T]\ndependencies: [ghost-scanner-does-not-exist]\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "plugins", "ghost.plugin.yaml"), []byte(manifest), 0o644))

	_, _, err := execRoot(t, "--config", config, "plugins", "install", "ghost")
	require.Error(t, err)
	assert.True(t, errors.Is(err, plugin.ErrMissingDependency))
}
