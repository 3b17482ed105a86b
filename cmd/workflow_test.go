package cmd

import (
	"encoding/json"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/exitcode"
)

const echoManifest = `name: echoer
version: 1.0.0
description: echoes the target
command: [echo, T]
target: host
`

// workflowFixture prepares a plugin directory with the echo manifest and a
// config pointing at it.
func workflowFixture(t *testing.T) (dir, config string) {
	t.Helper()
	dir = testEnv(t)
	plugins := filepath.Join(dir, "plugins")
	require.NoError(t, os.MkdirAll(plugins, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(plugins, "echoer.plugin.yaml"), []byte(echoManifest), 0o644))
	config = writeConfig(t, dir, "plugins:\n  dir: "+plugins+"\naudit:\n  enabled: false\n")
	return dir, config
}

func writeWorkflow(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, "flow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestWorkflowValidate(t *testing.T) {
	dir, config := workflowFixture(t)
	flow := writeWorkflow(t, dir, "- plugin: echoer\n- plugin: subdomains\n")

	out, _, err := execRoot(t, "--config", config, "workflow", "validate", flow)
	require.NoError(t, err)
	assert.Contains(t, out, "is valid (2 step(s))")
}

func TestWorkflowValidateReportsProblems(t *testing.T) {
	dir, config := workflowFixture(t)
	flow := writeWorkflow(t, dir, "- plugin: nope\n- plugin: nmap\n  config:\n    top_ports: \"many\"\n")

	_, _, err := execRoot(t, "--config", config, "workflow", "validate", flow)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "step 1: plugin 'nope' not found")
	assert.Contains(t, err.Error(), "step 2 (nmap)")
	assert.Equal(t, exitcode.ValidationError, exitcode.FromError(err))
}

func TestWorkflowRunEcho(t *testing.T) {
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skip("echo not available")
	}
	dir, config := workflowFixture(t)
	flow := writeWorkflow(t, dir, "- plugin: echoer\n")

	out, _, err := execRoot(t, "--config", config, "workflow", "run", flow, "-t", "example.com", "--format", "json")
	require.NoError(t, err)

	var got struct {
		Context map[string]any `json:"context"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.Equal(t, "example.com\n", got.Context["echoer_output"])
	assert.Equal(t, "example.com", got.Context["target"])
}

func TestWorkflowRunContinuesPastFailures(t *testing.T) {
	if _, err := exec.LookPath("echo"); err != nil {
		t.Skip("echo not available")
	}
	dir, config := workflowFixture(t)
	flow := writeWorkflow(t, dir, "- plugin: missing_plugin\n- plugin: echoer\n")

	out, _, err := execRoot(t, "--config", config, "workflow", "run", flow, "--set", "target=example.org")
	require.Error(t, err)
	var sf *stepFailureError
	require.ErrorAs(t, err, &sf)
	assert.Equal(t, 1, sf.failed)
	assert.Contains(t, out, "1 completed, 1 failed, 0 skipped")
	assert.Contains(t, out, "echoer_output")
}

func TestWorkflowRunRejectsBadSet(t *testing.T) {
	dir, config := workflowFixture(t)
	flow := writeWorkflow(t, dir, "- plugin: echoer\n")

	_, _, err := execRoot(t, "--config", config, "workflow", "run", flow, "--set", "novalue")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "want key=value")
}

func TestWorkflowRunMissingFile(t *testing.T) {
	dir, config := workflowFixture(t)
	_, _, err := execRoot(t, "--config", config, "workflow", "run", filepath.Join(dir, "absent.yaml"))
	require.Error(t, err)
	assert.Equal(t, exitcode.ValidationError, exitcode.FromError(err))
}
