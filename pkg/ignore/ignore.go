// Package ignore filters scan inputs with gitignore semantics.
package ignore

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/config"
)

// FileName is the bughunter-specific ignore file.
const FileName = ".bughunterignore"

var defaultPatterns = []string{".git/**", "node_modules/**", "vendor/**", ".venv/**"}

// Matcher reports whether paths below a root are ignored.
type Matcher struct {
	root    string
	matcher gitignore.Matcher
}

// NewMatcher creates a matcher with layered ignore files:
//  1. built-in defaults
//  2. .gitignore files below root, .git/info/exclude
//  3. root/.bughunterignore
//  4. <bughunter home>/.bughunterignore
func NewMatcher(root string) (*Matcher, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	rootFS := osfs.New(abs)

	var patterns []gitignore.Pattern
	for _, p := range defaultPatterns {
		patterns = append(patterns, gitignore.ParsePattern(p, nil))
	}
	if gitPatterns, err := gitignore.ReadPatterns(rootFS, nil); err == nil {
		patterns = append(patterns, gitPatterns...)
	}
	patterns = append(patterns, readIgnoreFile(rootFS, FileName)...)
	if home, err := config.GetHome(); err == nil {
		patterns = append(patterns, readIgnoreFile(osfs.New(home), FileName)...)
	}

	return &Matcher{root: abs, matcher: gitignore.NewMatcher(patterns)}, nil
}

func readIgnoreFile(fsys billy.Filesystem, name string) []gitignore.Pattern {
	content, err := util.ReadFile(fsys, name)
	if err != nil {
		return nil
	}
	var out []gitignore.Pattern
	for _, line := range strings.Split(string(content), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, gitignore.ParsePattern(line, nil))
	}
	return out
}

// Root returns the absolute directory the matcher is anchored at.
func (m *Matcher) Root() string { return m.root }

// Match reports whether the slash-separated path rel (relative to the root) is ignored.
func (m *Matcher) Match(rel string, isDir bool) bool {
	parts := splitPath(rel)
	if len(parts) == 0 {
		return false
	}
	return m.matcher.Match(parts, isDir)
}

// IsIgnored reports whether path, absolute or relative to the root, is ignored.
func (m *Matcher) IsIgnored(path string, isDir bool) bool {
	if filepath.IsAbs(path) {
		rel, err := filepath.Rel(m.root, path)
		if err != nil || strings.HasPrefix(rel, "..") {
			return false
		}
		path = rel
	}
	return m.Match(filepath.ToSlash(path), isDir)
}

// Walk calls fn for every regular file below the root that is not ignored.
// Ignored directories are not descended into. rel is slash-separated.
func (m *Matcher) Walk(fn func(path, rel string) error) error {
	return filepath.WalkDir(m.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(m.root, path)
		if err != nil || rel == "." {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if m.Match(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || m.Match(rel, false) {
			return nil
		}
		return fn(path, rel)
	})
}

func splitPath(path string) []string {
	parts := strings.Split(strings.TrimPrefix(path, "/"), "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" && p != "." {
			out = append(out, p)
		}
	}
	return out
}
