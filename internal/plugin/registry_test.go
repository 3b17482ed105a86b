package plugin

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop() (Plugin, error) {
	return Func(func(_ context.Context, wctx Context, _ map[string]any) (Context, error) {
		return wctx, nil
	}), nil
}

func TestRegistryRegisterLookup(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Descriptor{Name: "  Semgrep ", Version: "1.0.0", Factory: noop})

	d, ok := reg.Lookup("semgrep")
	require.True(t, ok)
	assert.Equal(t, "semgrep", d.Name)

	_, ok = reg.Lookup("SEMGREP")
	assert.True(t, ok, "lookup is case-insensitive")

	_, ok = reg.Lookup("nmap")
	assert.False(t, ok)
}

func TestRegistryLastRegistrationWins(t *testing.T) {
	reg := NewRegistry()
	reg.Register(Descriptor{Name: "x", Version: "1.0.0"})
	reg.Register(Descriptor{Name: "X", Version: "2.0.0"})

	d, ok := reg.Lookup("x")
	require.True(t, ok)
	assert.Equal(t, "2.0.0", d.Version)
	assert.Equal(t, 1, reg.Len())
}

func TestIsDowngrade(t *testing.T) {
	assert.True(t, isDowngrade("2.0.0", "1.9.9"))
	assert.True(t, isDowngrade("1.0.0", "1.0.0-rc.1"))
	assert.False(t, isDowngrade("1.0.0", "1.0.1"))
	assert.False(t, isDowngrade("1.0.0", "1.0.0"))
	assert.False(t, isDowngrade("builtin", "1.0.0"))
	assert.False(t, isDowngrade("1.0.0", ""))
}

func TestRegistryNamesSorted(t *testing.T) {
	reg := NewRegistry()
	for _, n := range []string{"nuclei", "cppcheck", "semgrep"} {
		reg.Register(Descriptor{Name: n})
	}
	assert.Equal(t, []string{"cppcheck", "nuclei", "semgrep"}, reg.Names())

	ds := reg.Descriptors()
	require.Len(t, ds, 3)
	assert.Equal(t, "cppcheck", ds[0].Name)
}

func TestRegistryCopiesDependencies(t *testing.T) {
	deps := []string{"nmap"}
	reg := NewRegistry()
	reg.Register(Descriptor{Name: "n", Dependencies: deps})
	deps[0] = "changed"

	d, _ := reg.Lookup("n")
	assert.Equal(t, []string{"nmap"}, d.Dependencies)
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			reg.Register(Descriptor{Name: "p", Factory: noop})
		}()
		go func() {
			defer wg.Done()
			_, _ = reg.Lookup("p")
			_ = reg.Names()
		}()
	}
	wg.Wait()
	assert.Equal(t, []string{"p"}, reg.Names())
}

func TestContextClone(t *testing.T) {
	var nilCtx Context
	c := nilCtx.Clone()
	require.NotNil(t, c)
	c["a"] = 1

	orig := Context{"k": "v"}
	cl := orig.Clone()
	cl["k"] = "changed"
	assert.Equal(t, "v", orig["k"])

	s, ok := orig.String("k")
	assert.True(t, ok)
	assert.Equal(t, "v", s)
	_, ok = Context{"n": 3}.String("n")
	assert.False(t, ok)
}
