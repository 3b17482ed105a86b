package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/plugin"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/ascii"
)

func newPluginsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plugins",
		Short: "List plugins and manage their dependencies",
	}
	cmd.AddCommand(newPluginsListCommand(), newPluginsCheckCommand(), newPluginsInstallCommand())
	return cmd
}

type pluginRow struct {
	Name         string   `json:"name"`
	Version      string   `json:"version"`
	Description  string   `json:"description"`
	Source       string   `json:"source"`
	Dependencies []string `json:"dependencies,omitempty"`
	Missing      []string `json:"missing,omitempty"`
}

func (a *app) pluginRows() []pluginRow {
	descs := a.registry.Descriptors()
	rows := make([]pluginRow, 0, len(descs))
	for _, d := range descs {
		rows = append(rows, pluginRow{
			Name:         d.Name,
			Version:      d.Version,
			Description:  d.Description,
			Source:       d.Source,
			Dependencies: d.Dependencies,
			Missing:      a.resolver.Missing(d),
		})
	}
	return rows
}

func newPluginsListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List built-in and discovered plugins",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			_ = a.discover()
			rows := a.pluginRows()
			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), rows)
			}
			table := make([][]string, 0, len(rows))
			for _, r := range rows {
				status := "ready"
				if len(r.Missing) > 0 {
					status = "missing " + strings.Join(r.Missing, ",")
				}
				table = append(table, []string{r.Name, r.Version, status, r.Source, r.Description})
			}
			fmt.Fprint(cmd.OutOrStdout(), ascii.Table([]string{"name", "version", "status", "source", "description"}, table, 60))
			return nil
		},
	}
	cmd.Flags().String("format", "text", "Output format (text|json)")
	return cmd
}

func (a *app) selectDescriptors(names []string) ([]plugin.Descriptor, error) {
	if len(names) == 0 {
		return a.registry.Descriptors(), nil
	}
	out := make([]plugin.Descriptor, 0, len(names))
	for _, n := range names {
		d, ok := a.registry.Lookup(n)
		if !ok {
			return nil, &plugin.NotFoundError{Name: plugin.NormalizeName(n)}
		}
		out = append(out, d)
	}
	return out, nil
}

func newPluginsCheckCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "check [PLUGIN...]",
		Short: "Report plugins whose external dependencies are missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			_ = a.discover()
			descs, err := a.selectDescriptors(args)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			var errs []error
			for _, d := range descs {
				missing := a.resolver.Missing(d)
				if len(missing) == 0 {
					fmt.Fprintf(out, "✅ %s\n", d.Name)
					continue
				}
				fmt.Fprintf(out, "❌ %s: missing %s\n", d.Name, strings.Join(missing, ", "))
				errs = append(errs, &plugin.MissingDependencyError{Plugin: d.Name, Missing: missing})
			}
			return errors.Join(errs...)
		},
	}
}

func newPluginsInstallCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "install PLUGIN...",
		Short: "Install the missing dependencies of plugins with the system package manager",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			_ = a.discover()
			descs, err := a.selectDescriptors(args)
			if err != nil {
				return err
			}
			for _, d := range descs {
				missing := a.resolver.Missing(d)
				if len(missing) == 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "✅ %s: dependencies already installed\n", d.Name)
					continue
				}
				a.record("plugin_install", "installing dependencies of "+d.Name, map[string]any{"plugin": d.Name, "packages": missing}, "")
				if err := a.resolver.EnsureDependencies(cmd.Context(), d); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✅ %s: installed %s\n", d.Name, strings.Join(missing, ", "))
			}
			return nil
		},
	}
}
