package scanners

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubdomainLookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "%.example.com", r.URL.Query().Get("q"))
		assert.Equal(t, "json", r.URL.Query().Get("output"))
		_, _ = w.Write([]byte(`[{"name_value":"b.example.com\n*.example.com"},{"name_value":"a.example.com"}]`))
	}))
	defer srv.Close()

	tool := newSubdomainTool(srv.URL+"/", srv.Client())
	out := filepath.Join(t.TempDir(), "subs.txt")
	report, err := tool.Run(context.Background(), "example.com", out, Options{})
	require.NoError(t, err)
	assert.Equal(t, "a.example.com\nb.example.com\nexample.com\n", report)

	saved, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, report, string(saved))

	wctx := map[string]any{}
	require.NoError(t, tool.Enrich(report, wctx))
	assert.Equal(t, []string{"a.example.com", "b.example.com", "example.com"}, wctx["subdomains"])
}

func TestSubdomainLookupHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newSubdomainTool(srv.URL, srv.Client()).Lookup(context.Background(), "example.com")
	var ce *CrtshError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, http.StatusServiceUnavailable, ce.StatusCode)
}

func TestSubdomainRejectsBadDomain(t *testing.T) {
	_, err := newSubdomainTool("http://127.0.0.1:1", nil).Lookup(context.Background(), "-x")
	assert.ErrorIs(t, err, ErrInvalidTarget)
}
