package plugin

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/sandbox"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
)

// Discover registers a command plugin for every manifest found below dir.
// A missing directory is not an error. Invalid manifests are skipped and
// reported together in the returned error. Repeated calls for the same
// directory do nothing.
func (r *Registry) Discover(dir string, sb *sandbox.Executor) error {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return fmt.Errorf("resolve plugin directory: %w", err)
	}

	r.mu.Lock()
	if _, done := r.discovered[abs]; done {
		r.mu.Unlock()
		logger.Trace("plugin directory already discovered", logger.String("dir", abs))
		return nil
	}
	r.discovered[abs] = nil
	r.mu.Unlock()

	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Debug("plugin directory not found, using built-in plugins only", logger.String("dir", abs))
			return nil
		}
		return fmt.Errorf("plugin directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("plugin directory %s is not a directory", abs)
	}

	matches, err := doublestar.Glob(os.DirFS(abs), ManifestPattern)
	if err != nil {
		return fmt.Errorf("scan plugin directory: %w", err)
	}
	sort.Strings(matches)

	if sb == nil {
		sb = sandbox.New(sandbox.Config{})
	}

	var errs []error
	loaded := 0
	for _, rel := range matches {
		path := filepath.Join(abs, filepath.FromSlash(rel))
		m, err := LoadManifest(path)
		if err != nil {
			logger.Warn("skipping invalid plugin manifest", logger.String("path", path), logger.Err(err))
			errs = append(errs, err)
			continue
		}
		r.Register(m.Descriptor(sb))
		loaded++
	}

	logger.Debug("plugin discovery complete",
		logger.String("dir", abs),
		logger.Int("loaded", loaded),
		logger.Int("rejected", len(errs)))
	return errors.Join(errs...)
}
