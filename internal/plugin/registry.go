package plugin

import (
	"sort"
	"strings"
	"sync"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/versioning"
)

// Registry maps plugin names to descriptors. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	plugins    map[string]Descriptor
	discovered map[string]error
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		plugins:    make(map[string]Descriptor),
		discovered: make(map[string]error),
	}
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry { return defaultRegistry }

// NormalizeName trims and lower-cases a plugin name.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register adds d under its normalized name. An existing registration under
// the same name is replaced.
func (r *Registry) Register(d Descriptor) {
	d.Name = NormalizeName(d.Name)
	d.Dependencies = append([]string(nil), d.Dependencies...)

	r.mu.Lock()
	prev, replaced := r.plugins[d.Name]
	r.plugins[d.Name] = d
	r.mu.Unlock()

	if replaced {
		if isDowngrade(prev.Version, d.Version) {
			logger.Warn("plugin registration replaced a newer version",
				logger.String("plugin", d.Name),
				logger.String("old_version", prev.Version),
				logger.String("new_version", d.Version),
				logger.String("source", d.Source))
			return
		}
		logger.Debug("plugin registration replaced",
			logger.String("plugin", d.Name),
			logger.String("old_version", prev.Version),
			logger.String("new_version", d.Version),
			logger.String("source", d.Source))
		return
	}
	logger.Trace("plugin registered", logger.String("plugin", d.Name), logger.String("version", d.Version))
}

// isDowngrade reports whether next is an older semantic version than prev.
// Unparseable versions never count as a downgrade.
func isDowngrade(prev, next string) bool {
	c, err := versioning.Compare(next, prev)
	return err == nil && c < 0
}

// Lookup returns the descriptor registered under name.
func (r *Registry) Lookup(name string) (Descriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.plugins[NormalizeName(name)]
	return d, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.plugins))
	for name := range r.plugins {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}

// Descriptors returns all descriptors sorted by name.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	out := make([]Descriptor, 0, len(r.plugins))
	for _, d := range r.plugins {
		out = append(out, d)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered plugins.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.plugins)
}
