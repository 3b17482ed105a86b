package ai

import (
	"fmt"
	"strings"
	"sync"

	"github.com/aymerick/raymond"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/assets"
)

// MaxSnippet bounds the code included in a prompt.
const MaxSnippet = 2000

var (
	tplMu    sync.Mutex
	tplCache = map[string]*raymond.Template{}
)

func template(name string) (*raymond.Template, error) {
	tplMu.Lock()
	defer tplMu.Unlock()
	if t, ok := tplCache[name]; ok {
		return t, nil
	}
	src, err := assets.Template(name)
	if err != nil {
		return nil, fmt.Errorf("prompt template %q: %w", name, err)
	}
	t, err := raymond.Parse(string(src))
	if err != nil {
		return nil, fmt.Errorf("prompt template %q: %w", name, err)
	}
	tplCache[name] = t
	return t, nil
}

// Render executes the named prompt template with data.
func Render(name string, data map[string]any) (string, error) {
	t, err := template(name)
	if err != nil {
		return "", err
	}
	out, err := t.Exec(data)
	if err != nil {
		return "", fmt.Errorf("render prompt %q: %w", name, err)
	}
	return strings.TrimSpace(out) + "\n", nil
}

// BuildPrompt picks the template for scanType (web, api, c-cpp), falling
// back to the generic code template. code_snippet is truncated to MaxSnippet bytes.
func BuildPrompt(scanType string, data map[string]any) (string, error) {
	name := "code"
	switch scanType {
	case "web", "api", "c-cpp":
		name = scanType
	}
	clone := make(map[string]any, len(data))
	for k, v := range data {
		clone[k] = v
	}
	if s, ok := clone["code_snippet"].(string); ok && len(s) > MaxSnippet {
		clone["code_snippet"] = s[:MaxSnippet]
	}
	return Render(name, clone)
}

// StripCodeFence removes a surrounding Markdown code fence from a model reply.
func StripCodeFence(s string) string {
	trimmed := strings.TrimSpace(s)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") || len(trimmed) < 6 {
		return trimmed
	}
	lines := strings.Split(trimmed, "\n")
	if len(lines) < 2 {
		return strings.Trim(trimmed, "`")
	}
	return strings.Join(lines[1:len(lines)-1], "\n")
}
