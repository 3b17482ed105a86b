// Package policy loads the security policy and evaluates scan targets
// against it with OPA.
package policy

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/assets"
	"github.com/akadevbarki76-collab/scaling-parakeet/internal/schema"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
)

// Severities in ascending order.
var Severities = []string{"low", "medium", "high", "critical"}

// Pattern is a disallowed pattern. A plain string in the policy file is a
// literal; the mapping form holds a regular expression.
type Pattern struct {
	ID       string `yaml:"id" json:"id"`
	Pattern  string `yaml:"pattern" json:"pattern"`
	Severity string `yaml:"severity" json:"severity"`
	Message  string `yaml:"message" json:"message"`
	Literal  bool   `yaml:"-" json:"literal"`

	re *regexp.Regexp
}

// UnmarshalYAML accepts either a scalar or a mapping.
func (p *Pattern) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		p.Pattern = node.Value
		p.Literal = true
		return nil
	}
	type plain Pattern
	return node.Decode((*plain)(p))
}

// Policy is the security policy document.
type Policy struct {
	Compliance  any       `yaml:"compliance" json:"compliance,omitempty"`
	Patterns    []Pattern `yaml:"disallowed_patterns" json:"disallowed_patterns"`
	MaxSeverity string    `yaml:"max_severity" json:"max_severity,omitempty"`
}

// Empty returns a policy with no rules.
func Empty() *Policy { return &Policy{} }

// Default returns the built-in policy.
func Default() *Policy {
	p, err := Parse(assets.DefaultSecurityPolicy())
	if err != nil {
		panic(fmt.Sprintf("embedded security policy is invalid: %v", err))
	}
	return p
}

// Load reads a policy file. A missing file yields an empty policy and a
// warning. A malformed file yields an empty policy and the parse error.
func Load(path string) (*Policy, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- operator-configured policy path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("security policy file not found, using empty policy", logger.String("path", path))
			return Empty(), nil
		}
		return Empty(), fmt.Errorf("read security policy: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return Empty(), fmt.Errorf("security policy %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates policy YAML.
func Parse(data []byte) (*Policy, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	if doc == nil {
		return Empty(), nil
	}
	res, err := schema.Validate(doc, assets.SchemaSecurityPolicy)
	if err != nil {
		return nil, err
	}
	if !res.Valid {
		return nil, fmt.Errorf("schema validation failed: %s", res.Summary())
	}

	var p Policy
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := p.compile(); err != nil {
		return nil, err
	}
	return &p, nil
}

// ComplianceFrameworks lists the frameworks named in the policy.
func (p *Policy) ComplianceFrameworks() []string {
	var out []string
	switch c := p.Compliance.(type) {
	case []any:
		for _, v := range c {
			out = append(out, fmt.Sprint(v))
		}
	case map[string]any:
		for k := range c {
			out = append(out, k)
		}
	}
	return out
}

func (p *Policy) compile() error {
	for i := range p.Patterns {
		pat := &p.Patterns[i]
		expr := pat.Pattern
		if pat.Literal {
			expr = regexp.QuoteMeta(expr)
		}
		re, err := regexp.Compile(expr)
		if err != nil {
			return fmt.Errorf("disallowed_patterns[%d]: %w", i, err)
		}
		pat.re = re
		if pat.ID == "" {
			pat.ID = fmt.Sprintf("pattern-%d", i+1)
		}
		if pat.Severity == "" {
			pat.Severity = "medium"
		}
		if pat.Message == "" {
			pat.Message = fmt.Sprintf("disallowed pattern '%s' found", pat.Pattern)
		}
	}
	return nil
}
