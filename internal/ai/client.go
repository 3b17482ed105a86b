// Package ai talks to the LLM backends used for scan analysis.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/exitcode"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
)

// Client sends a prompt and returns the model's text reply.
type Client interface {
	SendPrompt(ctx context.Context, prompt string) (string, error)
}

// Providers.
const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

var (
	// ErrMissingAPIKey is returned when no key is configured for the provider.
	ErrMissingAPIKey = errors.New("AI API key not configured")
	// ErrEmptyResponse is returned when the backend answers without content.
	ErrEmptyResponse = errors.New("AI backend returned no content")
)

// APIError is a non-success HTTP response.
type APIError struct {
	Provider   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	body := strings.TrimSpace(e.Body)
	if len(body) > 300 {
		body = body[:300] + "..."
	}
	return fmt.Sprintf("%s API error: status %d: %s", e.Provider, e.StatusCode, body)
}

// ExitCode maps to the process exit code.
func (e *APIError) ExitCode() int { return exitcode.NetworkError }

// Retryable reports whether the request may succeed if repeated.
func (e *APIError) Retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// Config selects and configures a provider.
type Config struct {
	Provider   string
	Model      string
	Endpoint   string
	APIKey     string
	Timeout    time.Duration
	MaxRetries int
	// HTTPClient overrides the transport, mainly for tests.
	HTTPClient *http.Client
	// Backoff is the delay before the first retry; it doubles per attempt.
	Backoff time.Duration
}

// New builds the client for cfg.Provider.
func New(cfg Config) (Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w for provider %q (set ai.api_key or the provider's API key variable)", ErrMissingAPIKey, cfg.Provider)
	}
	t := newTransport(cfg)
	switch strings.ToLower(cfg.Provider) {
	case "", ProviderGemini:
		return newGemini(cfg, t), nil
	case ProviderOpenAI:
		return newOpenAI(cfg, t), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider %q", cfg.Provider)
	}
}

// transport posts JSON with retry on 429 and 5xx responses.
type transport struct {
	provider   string
	http       *http.Client
	maxRetries int
	backoff    time.Duration
}

func newTransport(cfg Config) *transport {
	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 60 * time.Second
		}
		hc = &http.Client{Timeout: timeout}
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = time.Second
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return &transport{provider: cfg.Provider, http: hc, maxRetries: retries, backoff: backoff}
}

func (t *transport) postJSON(ctx context.Context, url string, headers map[string]string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	delay := t.backoff
	for attempt := 0; ; attempt++ {
		err = t.once(ctx, url, headers, body, out)
		var apiErr *APIError
		if err == nil || attempt >= t.maxRetries || !errors.As(err, &apiErr) || !apiErr.Retryable() {
			return err
		}
		logger.Warn("AI request failed, retrying",
			logger.String("provider", t.provider),
			logger.Int("status", apiErr.StatusCode),
			logger.Int("attempt", attempt+1),
			logger.Duration("delay", delay))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
}

func (t *transport) once(ctx context.Context, url string, headers map[string]string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := t.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request: %w", t.provider, err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("%s response: %w", t.provider, err)
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{Provider: t.provider, StatusCode: resp.StatusCode, Body: string(data)}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s response: %w", t.provider, err)
	}
	return nil
}
