package policy

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/open-policy-agent/opa/v1/rego"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/assets"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/ignore"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
)

const query = "data.bughunter.policy"

// maxLineBytes bounds a single scanned line; longer lines are skipped.
const maxLineBytes = 1 << 20

// Match is one occurrence of a disallowed pattern.
type Match struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	PatternID string `json:"pattern_id"`
	Severity  string `json:"severity"`
	Message   string `json:"message"`
}

// Violation is a match as judged by the policy.
type Violation struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Rule     string `json:"rule"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Blocking bool   `json:"blocking"`
}

// Report is the outcome of evaluating a target.
type Report struct {
	Target       string      `json:"target"`
	FilesScanned int         `json:"files_scanned"`
	Violations   []Violation `json:"violations"`
	Compliant    bool        `json:"compliant"`
	Compliance   []string    `json:"compliance,omitempty"`
}

// Blocking returns the violations that make the target non-compliant.
func (r *Report) Blocking() []Violation {
	var out []Violation
	for _, v := range r.Violations {
		if v.Blocking {
			out = append(out, v)
		}
	}
	return out
}

// Evaluate scans target (a file or a directory, honouring ignore files) for
// the policy's disallowed patterns and lets the rego module decide which
// matches block.
func Evaluate(ctx context.Context, p *Policy, target string) (*Report, error) {
	matches, scanned, err := scan(ctx, p, target)
	if err != nil {
		return nil, err
	}

	input := map[string]any{
		"matches": matches,
		"policy":  map[string]any{"max_severity": p.MaxSeverity},
	}
	rs, err := rego.New(
		rego.Query(query),
		rego.Module("policy.rego", string(assets.PolicyModule())),
		rego.Input(input),
	).Eval(ctx)
	if err != nil {
		return nil, fmt.Errorf("evaluate policy: %w", err)
	}
	if len(rs) == 0 || len(rs[0].Expressions) == 0 {
		return nil, fmt.Errorf("evaluate policy: empty result")
	}
	doc, ok := rs[0].Expressions[0].Value.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("evaluate policy: unexpected result %T", rs[0].Expressions[0].Value)
	}

	blocking := make(map[string]bool)
	for _, v := range toViolations(doc["blocking"]) {
		blocking[v.key()] = true
	}
	report := &Report{
		Target:       target,
		FilesScanned: scanned,
		Compliance:   p.ComplianceFrameworks(),
	}
	for _, v := range toViolations(doc["violations"]) {
		v.Blocking = blocking[v.key()]
		report.Violations = append(report.Violations, v)
	}
	sort.Slice(report.Violations, func(i, j int) bool {
		a, b := report.Violations[i], report.Violations[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Rule < b.Rule
	})
	report.Compliant, _ = doc["compliant"].(bool)

	logger.Debug("policy evaluated",
		logger.String("target", target),
		logger.Int("files", scanned),
		logger.Int("violations", len(report.Violations)),
		logger.Bool("compliant", report.Compliant))
	return report, nil
}

func (v Violation) key() string {
	return fmt.Sprintf("%s:%d:%s", v.File, v.Line, v.Rule)
}

func toViolations(raw any) []Violation {
	items, _ := raw.([]any)
	out := make([]Violation, 0, len(items))
	for _, it := range items {
		m, _ := it.(map[string]any)
		v := Violation{}
		v.File, _ = m["file"].(string)
		v.Rule, _ = m["rule"].(string)
		v.Severity, _ = m["severity"].(string)
		v.Message, _ = m["message"].(string)
		v.Line = toInt(m["line"])
		out = append(out, v)
	}
	return out
}

func toInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	case interface{ Int64() (int64, error) }:
		i, _ := n.Int64()
		return int(i)
	}
	return 0
}

func scan(ctx context.Context, p *Policy, target string) ([]Match, int, error) {
	info, err := os.Stat(target)
	if err != nil {
		return nil, 0, fmt.Errorf("policy target: %w", err)
	}
	if len(p.Patterns) == 0 {
		return []Match{}, 0, nil
	}

	matches := []Match{}
	scanned := 0
	visit := func(path, rel string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		found, err := scanFile(p, path, rel)
		if err != nil {
			logger.Debug("policy scan skipped file", logger.String("path", path), logger.Err(err))
			return nil
		}
		scanned++
		matches = append(matches, found...)
		return nil
	}

	if !info.IsDir() {
		if err := visit(target, filepath.Base(target)); err != nil {
			return nil, 0, err
		}
		return matches, scanned, nil
	}

	m, err := ignore.NewMatcher(target)
	if err != nil {
		return nil, 0, err
	}
	if err := m.Walk(visit); err != nil {
		return nil, 0, err
	}
	return matches, scanned, nil
}

func scanFile(p *Policy, path, rel string) ([]Match, error) {
	f, err := os.Open(path) // #nosec G304 -- walking the operator-chosen target
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	var out []Match
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), maxLineBytes)
	line := 0
	for sc.Scan() {
		line++
		text := sc.Bytes()
		for _, pat := range p.Patterns {
			if pat.re.Match(text) {
				out = append(out, Match{
					File:      rel,
					Line:      line,
					PatternID: pat.ID,
					Severity:  pat.Severity,
					Message:   pat.Message,
				})
			}
		}
	}
	return out, sc.Err()
}
