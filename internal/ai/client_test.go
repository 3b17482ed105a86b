package ai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRequiresKey(t *testing.T) {
	_, err := New(Config{Provider: ProviderGemini})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMissingAPIKey))
}

func TestNewUnknownProvider(t *testing.T) {
	_, err := New(Config{Provider: "llama", APIKey: "k"})
	assert.Error(t, err)
}

func TestGeminiSendPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/test-model:generateContent", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("x-goog-api-key"))
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Contains(t, body, "contents")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"looks "},{"text":"fine"}]}}]}`))
	}))
	defer srv.Close()

	c, err := New(Config{Provider: ProviderGemini, Model: "test-model", Endpoint: srv.URL, APIKey: "secret"})
	require.NoError(t, err)
	out, err := c.SendPrompt(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "looks fine", out)
}

func TestOpenAISendPrompt(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer k", r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"ok"}}]}`))
	}))
	defer srv.Close()

	c, err := New(Config{Provider: "OpenAI", Endpoint: srv.URL + "/", APIKey: "k"})
	require.NoError(t, err)
	out, err := c.SendPrompt(context.Background(), "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
}

func TestRetryOnTooManyRequests(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"third time"}}]}`))
	}))
	defer srv.Close()

	c, err := New(Config{Provider: ProviderOpenAI, Endpoint: srv.URL, APIKey: "k", MaxRetries: 3, Backoff: time.Millisecond})
	require.NoError(t, err)
	out, err := c.SendPrompt(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, "third time", out)
	assert.EqualValues(t, 3, calls.Load())
}

func TestNoRetryOnClientError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`bad key`))
	}))
	defer srv.Close()

	c, err := New(Config{Provider: ProviderOpenAI, Endpoint: srv.URL, APIKey: "k", MaxRetries: 3, Backoff: time.Millisecond})
	require.NoError(t, err)
	_, err = c.SendPrompt(context.Background(), "x")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Error(), "bad key")
	assert.EqualValues(t, 1, calls.Load())
}

func TestRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c, err := New(Config{Provider: ProviderGemini, Endpoint: srv.URL, APIKey: "k", MaxRetries: 1, Backoff: time.Millisecond})
	require.NoError(t, err)
	_, err = c.SendPrompt(context.Background(), "x")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.True(t, apiErr.Retryable())
}

func TestEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"candidates":[]}`))
	}))
	defer srv.Close()

	c, err := New(Config{Endpoint: srv.URL, APIKey: "k"})
	require.NoError(t, err)
	_, err = c.SendPrompt(context.Background(), "x")
	assert.ErrorIs(t, err, ErrEmptyResponse)
}
