package tools

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromptConfirmer(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{"  yes  \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"maybe\n", false},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		c := NewPromptConfirmer(strings.NewReader(tt.input), &out)
		got, err := c.Confirm("Install nmap?")
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "input %q", tt.input)
		assert.Contains(t, out.String(), "Install nmap? (y/N)")
	}
}

func TestStaticConfirmer(t *testing.T) {
	ok, err := StaticConfirmer(true).Confirm("x")
	assert.NoError(t, err)
	assert.True(t, ok)

	ok, _ = StaticConfirmer(false).Confirm("x")
	assert.False(t, ok)
}
