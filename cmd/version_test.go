package cmd

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/buildinfo"
)

func TestVersionText(t *testing.T) {
	out, _, err := execRoot(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "bughunter "+buildinfo.Current().Version)
}

func TestVersionExtended(t *testing.T) {
	out, _, err := execRoot(t, "version", "--extended")
	require.NoError(t, err)
	assert.Contains(t, out, "Go: ")
	assert.Contains(t, out, "Platform: ")
}

func TestVersionJSON(t *testing.T) {
	out, _, err := execRoot(t, "version", "--format", "json")
	require.NoError(t, err)
	var info buildinfo.Info
	require.NoError(t, json.Unmarshal([]byte(out), &info))
	assert.NotEmpty(t, info.GoVersion)
	assert.NotEmpty(t, info.Platform)
}
