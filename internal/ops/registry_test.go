package ops

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGroups(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("workflow", GroupWorkflow, &cobra.Command{Use: "workflow"}, "Run workflows"))
	require.NoError(t, r.Register("scan", GroupScan, &cobra.Command{Use: "scan"}, "Run scanners"))
	require.NoError(t, r.Register("plugins", GroupWorkflow, &cobra.Command{Use: "plugins"}, "Manage plugins"))

	wf := r.GetCommandsByGroup(GroupWorkflow)
	require.Len(t, wf, 2)
	assert.Equal(t, "plugins", wf[0].Name)
	assert.Equal(t, "workflow", wf[1].Name)
	assert.Empty(t, r.GetCommandsByGroup(GroupSupport))

	c, ok := r.GetCommand("scan")
	require.True(t, ok)
	assert.Equal(t, "Run scanners", c.Description)
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("scan", GroupScan, nil, ""))
	assert.Error(t, r.Register("scan", GroupSupport, nil, ""))
}

func TestGroupTitles(t *testing.T) {
	assert.Equal(t, "Scan Commands", GroupScan.Title())
	assert.Equal(t, "Support Commands", GroupSupport.Title())
	assert.Len(t, Groups, 3)
}
