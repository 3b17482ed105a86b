package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/scanners"
)

func newRunToolCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run-tool TOOL TARGET",
		Short: "Run one built-in tool against a target",
		Long: `Run one built-in tool against a target and print its raw report.

Path tools (semgrep, semgrep_web, osv_scanner, cppcheck) scan a sandboxed copy
of TARGET. URL tools (nuclei, sqlmap, nikto, dirsearch) need an http(s) URL.
Host tools (nmap, port_scanner, waybackurls, subdomains) take a hostname or IP.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			name, target := args[0], args[1]
			tool, err := a.tool(cmd.Context(), name)
			if err != nil {
				return err
			}

			opts := toolOptions(cmd.Flags())
			outputFile, _ := cmd.Flags().GetString("output")

			a.record("run_tool", fmt.Sprintf("%s run against %s", tool.Name(), target),
				map[string]any{"tool": tool.Name(), "target": target, "output_file": outputFile}, "")
			report, err := tool.Run(cmd.Context(), target, outputFile, opts)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report)
			if outputFile != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "[*] Output saved to %s\n", outputFile)
			}
			return nil
		},
	}
	cmd.Flags().StringP("output", "o", "", "Also write the report to this file")
	cmd.Flags().String("ports", "", "Port specification for nmap (default "+scanners.DefaultPorts+")")
	cmd.Flags().Int("top-ports", 0, "Number of common ports for port_scanner")
	cmd.Flags().String("ruleset", "", "Semgrep config override")
	cmd.Flags().StringArray("arg", nil, "Extra argument passed to the tool before the target (repeatable)")
	return cmd
}

// toolOptions collects the scanner options that were set explicitly; unset
// ones stay zero so each tool applies its own default.
func toolOptions(flags *pflag.FlagSet) scanners.Options {
	var opts scanners.Options
	if flags.Changed("ports") {
		opts.Ports, _ = flags.GetString("ports")
	}
	if flags.Changed("top-ports") {
		opts.TopPorts, _ = flags.GetInt("top-ports")
	}
	if flags.Changed("ruleset") {
		opts.Ruleset, _ = flags.GetString("ruleset")
	}
	opts.Args, _ = flags.GetStringArray("arg")
	return opts
}
