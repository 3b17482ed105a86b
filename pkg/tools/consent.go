package tools

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Confirmer asks the operator for permission to perform an action.
type Confirmer interface {
	Confirm(prompt string) (bool, error)
}

// StaticConfirmer answers every prompt with the same value (--yes, non-interactive runs).
type StaticConfirmer bool

// Confirm implements Confirmer.
func (s StaticConfirmer) Confirm(string) (bool, error) { return bool(s), nil }

// PromptConfirmer reads a y/N answer from in after writing the prompt to out.
type PromptConfirmer struct {
	mu     sync.Mutex
	reader *bufio.Reader
	out    io.Writer
}

// NewPromptConfirmer creates a PromptConfirmer.
func NewPromptConfirmer(in io.Reader, out io.Writer) *PromptConfirmer {
	return &PromptConfirmer{reader: bufio.NewReader(in), out: out}
}

// Confirm implements Confirmer. EOF counts as "no".
func (p *PromptConfirmer) Confirm(prompt string) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, err := fmt.Fprintf(p.out, "❓ %s (y/N): ", prompt); err != nil {
		return false, err
	}
	response, err := p.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return false, fmt.Errorf("failed to read input: %w", err)
	}
	switch strings.ToLower(strings.TrimSpace(response)) {
	case "y", "yes":
		return true, nil
	default:
		return false, nil
	}
}
