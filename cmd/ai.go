package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/ai"
	"github.com/akadevbarki76-collab/scaling-parakeet/internal/plugin"
	"github.com/akadevbarki76-collab/scaling-parakeet/internal/workflow"
)

func newAICommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ai",
		Short: "AI-assisted analysis of scan results",
	}
	cmd.AddCommand(newAIAnalyzeCommand())
	return cmd
}

func newAIAnalyzeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Enumerate a domain's subdomains and ask the AI backend for likely weak points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			target, _ := cmd.Flags().GetString("target")
			skipSubs, _ := cmd.Flags().GetBool("skip-subdomains")

			initial := plugin.Context{"target": target}
			if p, err := a.loadPolicy(); err == nil {
				if c := p.ComplianceFrameworks(); len(c) > 0 {
					initial["compliance"] = c
				}
			}
			var steps []workflow.Step
			if !skipSubs {
				steps = append(steps, workflow.Step{Plugin: "subdomains"})
			}
			steps = append(steps, workflow.Step{Plugin: ai.PluginName})

			a.record("ai_analyze", "AI analysis for "+target, map[string]any{"target": target}, "")
			fmt.Fprintf(cmd.ErrOrStderr(), "[*] Starting AI analysis for %s...\n", target)
			final, report := a.engine.Execute(cmd.Context(), steps, initial)

			analysis, ok := final.String(ai.OutputKey)
			if !ok {
				if err := report.Err(); err != nil {
					return err
				}
				return fmt.Errorf("AI analysis produced no output")
			}
			for _, f := range report.Failed() {
				fmt.Fprintf(cmd.ErrOrStderr(), "[-] %s\n", f.Error)
			}
			fmt.Fprintln(cmd.OutOrStdout(), analysis)
			return nil
		},
	}
	cmd.Flags().String("target", "", "The target domain to analyze")
	cmd.Flags().Bool("skip-subdomains", false, "Do not query certificate transparency logs first")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}
