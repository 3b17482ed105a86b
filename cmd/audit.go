package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/ascii"
)

func newAuditCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "Show recent entries of the audit log",
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
			if a.audit == nil {
				return fmt.Errorf("audit log is not available")
			}
			events, err := a.audit.Read()
			if err != nil {
				return err
			}
			if limit, _ := cmd.Flags().GetInt("limit"); limit > 0 && len(events) > limit {
				events = events[len(events)-limit:]
			}
			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), events)
			}
			if len(events) == 0 {
				fmt.Fprintf(cmd.OutOrStdout(), "No audit events in %s\n", a.audit.Path())
				return nil
			}
			rows := make([][]string, 0, len(events))
			for _, e := range events {
				repo := ""
				if e.Repo != nil {
					repo = strings.TrimSpace(e.Repo.Branch + " " + e.Repo.ShortSHA())
				}
				rows = append(rows, []string{e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.User, e.Action, repo, e.Message})
			}
			fmt.Fprint(cmd.OutOrStdout(), ascii.Table([]string{"time", "user", "action", "repo", "message"}, rows, 60))
			return nil
		},
	}
	cmd.Flags().Int("limit", 20, "Show at most this many recent events (0 for all)")
	cmd.Flags().String("format", "text", "Output format (text|json)")
	return cmd
}
