package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/buildinfo"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version and build information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			info := buildinfo.Current()
			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), info)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "bughunter %s\n", info.Version)
			if extended, _ := cmd.Flags().GetBool("extended"); extended {
				if info.Module != "" {
					fmt.Fprintf(out, "Module: %s\n", info.Module)
				}
				if info.Commit != "" {
					fmt.Fprintf(out, "Commit: %s\n", info.Commit)
				}
				if info.BuildDate != "" {
					fmt.Fprintf(out, "Built: %s\n", info.BuildDate)
				}
				fmt.Fprintf(out, "Go: %s\nPlatform: %s\n", info.GoVersion, info.Platform)
			}
			return nil
		},
	}
	cmd.Flags().Bool("extended", false, "Show detailed build information")
	cmd.Flags().String("format", "text", "Output format (text|json)")
	return cmd
}
