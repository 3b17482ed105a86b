package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/plugin"
	"github.com/akadevbarki76-collab/scaling-parakeet/internal/schema"
	"github.com/akadevbarki76-collab/scaling-parakeet/internal/workflow"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/ascii"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/exitcode"
)

// stepFailureError reports that a workflow finished with failed steps.
type stepFailureError struct {
	failed int
	err    error
}

func (e *stepFailureError) Error() string {
	return fmt.Sprintf("%d workflow step(s) failed", e.failed)
}
func (e *stepFailureError) Unwrap() error { return e.err }
func (e *stepFailureError) ExitCode() int { return exitcode.GeneralError }

type validationError struct{ problems []string }

func (e *validationError) Error() string {
	return "workflow is invalid:\n  " + strings.Join(e.problems, "\n  ")
}
func (e *validationError) ExitCode() int { return exitcode.ValidationError }

func newWorkflowCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workflow",
		Short: "Run and validate workflow files",
	}
	cmd.AddCommand(newWorkflowRunCommand(), newWorkflowValidateCommand())
	return cmd
}

func newWorkflowRunCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Execute the steps of a workflow file in order",
		Long: `Execute the steps of a workflow file (.yaml, .yml or .json) in order.

Each step names a plugin and an optional config map. Steps share a context
seeded from --target and --set; a failing step is reported and the run
continues with the next one.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			steps, err := workflow.LoadFile(args[0])
			if err != nil {
				return err
			}
			initial, err := initialContext(cmd)
			if err != nil {
				return err
			}

			a.record("workflow_run", "workflow "+args[0], map[string]any{"file": args[0], "steps": len(steps)}, "")
			final, report := a.engine.Execute(cmd.Context(), steps, initial)

			out := cmd.OutOrStdout()
			if format == "json" {
				if err := writeJSON(out, map[string]any{"report": report, "context": final}); err != nil {
					return err
				}
			} else {
				renderReport(cmd, steps, report)
				keys := make([]string, 0, len(final))
				for k := range final {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				fmt.Fprintf(out, "\nContext keys: %s\n", strings.Join(keys, ", "))
				if s, ok := final.String("ai_analysis"); ok {
					fmt.Fprintf(out, "\n%s\n", s)
				}
			}

			if failed := report.Count(workflow.StatusFailed); failed > 0 {
				return &stepFailureError{failed: failed, err: report.Err()}
			}
			if err := cmd.Context().Err(); err != nil {
				return err
			}
			return nil
		},
	}
	cmd.Flags().StringP("target", "t", "", "Initial value of the context's target")
	cmd.Flags().StringArray("set", nil, "Initial context entry as key=value (repeatable)")
	cmd.Flags().String("format", "text", "Output format (text|json)")
	return cmd
}

func initialContext(cmd *cobra.Command) (plugin.Context, error) {
	wctx := plugin.Context{}
	sets, _ := cmd.Flags().GetStringArray("set")
	for _, kv := range sets {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --set %q, want key=value", kv)
		}
		wctx[strings.TrimSpace(k)] = v
	}
	if t, _ := cmd.Flags().GetString("target"); t != "" {
		wctx["target"] = t
	}
	return wctx, nil
}

func renderReport(cmd *cobra.Command, steps []workflow.Step, report *workflow.Report) {
	rows := make([][]string, 0, len(report.Steps))
	for _, r := range report.Steps {
		label := r.Plugin
		if r.Index >= 1 && r.Index <= len(steps) {
			label = steps[r.Index-1].Label()
		}
		rows = append(rows, []string{fmt.Sprint(r.Index), label, string(r.Status), r.Duration.Round(time.Millisecond).String(), r.Error})
	}
	out := cmd.OutOrStdout()
	fmt.Fprint(out, ascii.Table([]string{"step", "plugin", "status", "duration", "error"}, rows, 80))
	fmt.Fprintf(out, "%d completed, %d failed, %d skipped in %s\n",
		report.Count(workflow.StatusCompleted), report.Count(workflow.StatusFailed),
		report.Count(workflow.StatusSkipped), report.Duration.Round(time.Millisecond))
}

func newWorkflowValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate FILE",
		Short: "Check a workflow file's structure, plugin names and step configs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			steps, err := workflow.LoadFile(args[0])
			if err != nil {
				return err
			}
			_ = a.discover()

			var problems []string
			for i, s := range steps {
				n := i + 1
				if strings.TrimSpace(s.Plugin) == "" {
					problems = append(problems, fmt.Sprintf("step %d: %v", n, workflow.ErrMissingPluginName))
					continue
				}
				d, ok := a.registry.Lookup(s.Plugin)
				if !ok {
					problems = append(problems, fmt.Sprintf("step %d: %v", n, &plugin.NotFoundError{Name: plugin.NormalizeName(s.Plugin)}))
					continue
				}
				if len(d.ConfigSchema) == 0 {
					continue
				}
				res, err := schema.ValidateDocument(d.ConfigSchema, stepConfig(s))
				if err != nil {
					problems = append(problems, fmt.Sprintf("step %d (%s): %v", n, d.Name, err))
				} else if !res.Valid {
					problems = append(problems, fmt.Sprintf("step %d (%s): %v: %s", n, d.Name, workflow.ErrInvalidStepConfig, res.Summary()))
				}
			}
			if len(problems) > 0 {
				return &validationError{problems: problems}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✅ %s is valid (%d step(s))\n", args[0], len(steps))
			return nil
		},
	}
}

func stepConfig(s workflow.Step) map[string]any {
	if s.Config == nil {
		return map[string]any{}
	}
	return s.Config
}
