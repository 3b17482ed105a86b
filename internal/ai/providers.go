package ai

import (
	"context"
	"net/url"
	"strings"
)

const (
	defaultGeminiEndpoint = "https://generativelanguage.googleapis.com/v1beta"
	defaultGeminiModel    = "gemini-1.5-flash"
	defaultOpenAIEndpoint = "https://api.openai.com/v1"
	defaultOpenAIModel    = "gpt-4o-mini"
)

type geminiClient struct {
	endpoint, model, key string
	t                    *transport
}

func newGemini(cfg Config, t *transport) *geminiClient {
	t.provider = ProviderGemini
	return &geminiClient{
		endpoint: strings.TrimRight(orDefault(cfg.Endpoint, defaultGeminiEndpoint), "/"),
		model:    orDefault(cfg.Model, defaultGeminiModel),
		key:      cfg.APIKey,
		t:        t,
	}
}

// SendPrompt implements Client.
func (c *geminiClient) SendPrompt(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"contents": []map[string]any{
			{"parts": []map[string]string{{"text": prompt}}},
		},
	}
	var result struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	u := c.endpoint + "/models/" + url.PathEscape(c.model) + ":generateContent"
	if err := c.t.postJSON(ctx, u, map[string]string{"x-goog-api-key": c.key}, payload, &result); err != nil {
		return "", err
	}
	var sb strings.Builder
	if len(result.Candidates) > 0 {
		for _, p := range result.Candidates[0].Content.Parts {
			sb.WriteString(p.Text)
		}
	}
	if sb.Len() == 0 {
		return "", ErrEmptyResponse
	}
	return sb.String(), nil
}

type openAIClient struct {
	endpoint, model, key string
	t                    *transport
}

func newOpenAI(cfg Config, t *transport) *openAIClient {
	t.provider = ProviderOpenAI
	return &openAIClient{
		endpoint: strings.TrimRight(orDefault(cfg.Endpoint, defaultOpenAIEndpoint), "/"),
		model:    orDefault(cfg.Model, defaultOpenAIModel),
		key:      cfg.APIKey,
		t:        t,
	}
}

// SendPrompt implements Client for OpenAI-compatible chat completion APIs.
func (c *openAIClient) SendPrompt(ctx context.Context, prompt string) (string, error) {
	payload := map[string]any{
		"model":       c.model,
		"messages":    []map[string]string{{"role": "user", "content": prompt}},
		"temperature": 0.1,
	}
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	headers := map[string]string{"Authorization": "Bearer " + c.key}
	if err := c.t.postJSON(ctx, c.endpoint+"/chat/completions", headers, payload, &result); err != nil {
		return "", err
	}
	if len(result.Choices) == 0 || result.Choices[0].Message.Content == "" {
		return "", ErrEmptyResponse
	}
	return result.Choices[0].Message.Content, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
