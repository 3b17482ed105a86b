/*
Copyright © 2025 3 Leaps <info@3leaps.com>
*/
package cmd

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/ops"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/buildinfo"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/exitcode"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
)

// newRootCommand creates a fresh command tree so tests never share flag state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bughunter",
		Short: "Security scanning orchestrator with plugins, workflows and AI analysis",
		Long: `Bughunter drives third-party security scanners from one CLI. Path targets are
copied into a throwaway sandbox before any tool sees them, plugins are loaded
from manifests, and workflows chain scanners and AI analysis over a shared context.

Examples:
   bughunter scan code ./src              # Semgrep scan of a sandboxed copy
   bughunter run-tool nmap example.com    # Run one tool directly
   bughunter workflow run recon.yaml -t example.com
   bughunter plugins list                 # Built-in and discovered plugins`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
	}

	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().String("config", "", "Config file (default: bughunter.yaml in ., $HOME or ~/.bughunter)")
	cmd.PersistentFlags().BoolP("yes", "y", false, "Install missing plugin dependencies without asking")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("bughunter {{.Version}}\n")

	registerSubcommands(cmd)

	defaultHelp := cmd.HelpFunc()
	cmd.SetHelpFunc(func(c *cobra.Command, args []string) {
		if c != cmd {
			defaultHelp(c, args)
			return
		}
		c.Println(c.Long)
		c.Println()
		for _, g := range ops.Groups {
			c.Println(g.Title() + ":")
			for _, r := range ops.GetRegistry().GetCommandsByGroup(g) {
				c.Printf("  %-12s %s\n", r.Name, r.Description)
			}
			c.Println()
		}
		c.Println("Flags:")
		c.Print(c.LocalFlags().FlagUsages())
	})
	return cmd
}

// registerSubcommands adds every subcommand to root and classifies it for help.
func registerSubcommands(root *cobra.Command) {
	groups := []struct {
		group ops.CommandGroup
		cmd   *cobra.Command
	}{
		{ops.GroupScan, newScanCommand()},
		{ops.GroupScan, newRunToolCommand()},
		{ops.GroupWorkflow, newWorkflowCommand()},
		{ops.GroupWorkflow, newPluginsCommand()},
		{ops.GroupWorkflow, newAICommand()},
		{ops.GroupSupport, newAuditCommand()},
		{ops.GroupSupport, newVersionCommand()},
	}
	for _, g := range groups {
		root.AddCommand(g.cmd)
		// Tests build several trees; later registrations of a name are no-ops.
		_ = ops.RegisterCommand(g.group, g.cmd)
	}
}

// Execute runs the CLI and exits with the code mapped from the error.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := newRootCommand().ExecuteContext(ctx)
	logger.Sync()
	if err == nil {
		return
	}
	code := exitcode.FromError(err)
	if errors.Is(err, context.Canceled) {
		logger.Warn("interrupted")
	} else {
		logger.Error("command failed", logger.Err(err))
	}
	os.Exit(code)
}

// initializeLogger sets up the logger from the global flags.
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	config := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor,
		JSON:      jsonLogs,
		Component: "bughunter",
	}
	if err := logger.Initialize(config); err != nil {
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(exitcode.ConfigError)
	}
}
