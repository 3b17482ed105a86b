package plugin

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/tools"
)

// DependencyChecker reports which executables are not available.
type DependencyChecker interface {
	Missing(deps []string) []string
}

// Installer installs OS packages.
type Installer interface {
	Install(ctx context.Context, packages []string) error
}

// Resolver turns plugin names into instances, installing missing
// dependencies when the operator agrees.
type Resolver struct {
	Registry  *Registry
	Checker   DependencyChecker
	Confirmer tools.Confirmer
	Installer Installer
}

// NewResolver wires a resolver to the real PATH and system package managers.
// Installer output is streamed to progress.
func NewResolver(reg *Registry, confirmer tools.Confirmer, progress io.Writer) *Resolver {
	if confirmer == nil {
		confirmer = tools.StaticConfirmer(false)
	}
	return &Resolver{
		Registry:  reg,
		Checker:   tools.NewLocator(),
		Confirmer: confirmer,
		Installer: tools.NewInstaller(progress),
	}
}

// Resolve looks up name, makes sure its dependencies are present and returns
// a fresh instance.
func (r *Resolver) Resolve(ctx context.Context, name string) (Plugin, error) {
	d, ok := r.Registry.Lookup(name)
	if !ok {
		return nil, &NotFoundError{Name: NormalizeName(name)}
	}
	if err := r.EnsureDependencies(ctx, d); err != nil {
		return nil, err
	}
	if d.Factory == nil {
		return nil, fmt.Errorf("plugin '%s' has no factory", d.Name)
	}
	p, err := d.Factory()
	if err != nil {
		return nil, fmt.Errorf("instantiate plugin '%s': %w", d.Name, err)
	}
	return p, nil
}

// EnsureDependencies checks d's dependencies and installs the missing ones
// after asking for consent.
func (r *Resolver) EnsureDependencies(ctx context.Context, d Descriptor) error {
	missing := r.Missing(d)
	if len(missing) == 0 {
		return nil
	}

	logger.Warn("plugin dependencies missing",
		logger.String("plugin", d.Name),
		logger.Strings("missing", missing))

	confirmer := r.Confirmer
	if confirmer == nil {
		confirmer = tools.StaticConfirmer(false)
	}
	prompt := fmt.Sprintf("Plugin '%s' requires %s which is not installed. Install now?",
		d.Name, strings.Join(missing, ", "))
	ok, err := confirmer.Confirm(prompt)
	if err != nil {
		return fmt.Errorf("ask for install consent: %w", err)
	}
	if !ok {
		return &MissingDependencyError{Plugin: d.Name, Missing: missing}
	}

	if r.Installer == nil {
		return &MissingDependencyError{Plugin: d.Name, Missing: missing}
	}
	if err := r.Installer.Install(ctx, missing); err != nil {
		return err
	}

	if still := r.Missing(d); len(still) > 0 {
		return &MissingDependencyError{Plugin: d.Name, Missing: still}
	}
	logger.Info("plugin dependencies installed", logger.String("plugin", d.Name), logger.Strings("packages", missing))
	return nil
}

// Missing returns d's dependencies that cannot be located.
func (r *Resolver) Missing(d Descriptor) []string {
	if len(d.Dependencies) == 0 {
		return nil
	}
	checker := r.Checker
	if checker == nil {
		checker = tools.NewLocator()
	}
	return checker.Missing(d.Dependencies)
}
