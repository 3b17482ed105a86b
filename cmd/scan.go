package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/policy"
	"github.com/akadevbarki76-collab/scaling-parakeet/internal/scanners"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/ascii"
)

func newScanCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan code, dependencies, hosts and domains",
	}
	cmd.AddCommand(
		newPathScanCommand(pathScan{
			use: "code", tool: "semgrep", action: "scan_code",
			short:    "Static analysis of files or directories with Semgrep",
			rulesets: true, policyCheck: true, render: renderSemgrep,
		}),
		newPathScanCommand(pathScan{
			use: "web", tool: "semgrep_web", action: "scan_web",
			short:    "Scan a web project against the OWASP Top 10 Semgrep ruleset",
			rulesets: true, render: renderSemgrep,
		}),
		newPathScanCommand(pathScan{
			use: "dependencies", tool: "osv_scanner", action: "scan_dependencies",
			short:  "Find known vulnerabilities in project dependencies with OSV-Scanner",
			render: renderOSV,
		}),
		newPathScanCommand(pathScan{
			use: "c-cpp", tool: "cppcheck", action: "scan_c_cpp",
			short:  "Static analysis of C and C++ code with cppcheck",
			render: renderCppcheck,
		}),
		newPortsCommand(),
		newSubdomainsCommand(),
		newPolicyCommand(),
	)
	return cmd
}

type pathScan struct {
	use, short, tool, action string
	rulesets                 bool
	policyCheck              bool
	render                   func(w io.Writer, report string) error
}

type scanResult struct {
	Target   string          `json:"target"`
	Report   json.RawMessage `json:"report,omitempty"`
	Text     string          `json:"text,omitempty"`
	Error    string          `json:"error,omitempty"`
	Policy   *policy.Report  `json:"policy,omitempty"`
	Duration string          `json:"duration"`
}

func newPathScanCommand(s pathScan) *cobra.Command {
	cmd := &cobra.Command{
		Use:   s.use + " PATH...",
		Short: s.short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			concurrency, _ := cmd.Flags().GetInt("concurrency")
			if concurrency <= 0 {
				concurrency = a.cfg.Scan.Concurrency
			}
			var opts scanners.Options
			if s.rulesets {
				opts.Ruleset, _ = cmd.Flags().GetString("ruleset")
			}

			tool, err := a.tool(cmd.Context(), s.tool)
			if err != nil {
				return err
			}
			for _, p := range args {
				a.record(s.action, fmt.Sprintf("%s initiated for %s", s.use, p), map[string]any{"path": p, "tool": s.tool}, p)
			}

			outcomes := scanners.ScanAll(cmd.Context(), tool, args, opts, concurrency)
			out := cmd.OutOrStdout()
			var (
				errs    []error
				results []scanResult
			)
			for _, o := range outcomes {
				r := scanResult{Target: o.Target, Duration: o.Duration.String()}
				if o.Err != nil {
					errs = append(errs, fmt.Errorf("%s: %w", o.Target, o.Err))
					r.Error = o.Err.Error()
				} else if json.Valid([]byte(o.Report)) {
					r.Report = json.RawMessage(o.Report)
				} else {
					r.Text = o.Report
				}
				if s.policyCheck && o.Err == nil {
					if pr, err := a.policyReport(cmd, o.Target); err == nil {
						r.Policy = pr
					} else {
						errs = append(errs, err)
					}
				}
				results = append(results, r)

				if format == "text" {
					fmt.Fprintf(out, "[*] %s (%s)\n", o.Target, s.tool)
					if o.Err != nil {
						fmt.Fprintf(out, "[-] %v\n", o.Err)
					} else if err := s.render(out, o.Report); err != nil {
						errs = append(errs, fmt.Errorf("%s: %w", o.Target, err))
					}
					if r.Policy != nil {
						renderPolicyViolations(out, r.Policy)
					}
				}
			}
			if format == "json" {
				if err := writeJSON(out, results); err != nil {
					return err
				}
			}
			return errors.Join(errs...)
		},
	}
	cmd.Flags().String("format", "text", "Output format (text|json)")
	cmd.Flags().Int("concurrency", 0, "Targets scanned in parallel (default scan.concurrency)")
	if s.rulesets {
		cmd.Flags().String("ruleset", "", "Semgrep config to use instead of the default")
	}
	return cmd
}

func (a *app) policyReport(cmd *cobra.Command, target string) (*policy.Report, error) {
	p, err := a.loadPolicy()
	if err != nil {
		return nil, err
	}
	return policy.Evaluate(cmd.Context(), p, target)
}

func renderSemgrep(w io.Writer, report string) error {
	findings, err := scanners.ParseSemgrep([]byte(report))
	if err != nil {
		return err
	}
	if len(findings) == 0 {
		fmt.Fprintln(w, "[+] No vulnerabilities found.")
		return nil
	}
	fmt.Fprintf(w, "[!] Found %d vulnerabilities.\n", len(findings))
	for _, f := range findings {
		fmt.Fprintf(w, "\n- Rule: %s\n  File: %s:%d\n  Message: %s\n", f.CheckID, f.Path, f.StartLine, f.Message)
	}
	return nil
}

func renderOSV(w io.Writer, report string) error {
	vulns, err := scanners.ParseOSV([]byte(report))
	if err != nil {
		return err
	}
	if len(vulns) == 0 {
		fmt.Fprintln(w, "[+] No vulnerabilities found.")
		return nil
	}
	fmt.Fprintln(w, "[!] Found vulnerabilities:")
	for _, v := range vulns {
		fmt.Fprintf(w, "\n- Vulnerability: %s\n  Package: %s %s\n  Summary: %s\n", v.ID, v.Package, v.Version, v.Summary)
		if len(v.Aliases) > 0 {
			fmt.Fprintf(w, "  Aliases: %s\n", strings.Join(v.Aliases, ", "))
		}
	}
	return nil
}

func renderCppcheck(w io.Writer, report string) error {
	if strings.TrimSpace(report) == "" {
		fmt.Fprintln(w, "[+] No issues found by cppcheck.")
		return nil
	}
	fmt.Fprintln(w, "[!] cppcheck found the following issues:")
	fmt.Fprint(w, report)
	return nil
}

func renderPolicyViolations(w io.Writer, r *policy.Report) {
	for _, v := range r.Violations {
		fmt.Fprintf(w, "[!] Policy violation (%s, %s): %s at %s:%d\n", v.Rule, v.Severity, v.Message, v.File, v.Line)
	}
}

func newPortsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ports TARGET",
		Short: "Scan the most common ports on a host with nmap",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			top, _ := cmd.Flags().GetInt("top-ports")
			tool, err := a.tool(cmd.Context(), "port_scanner")
			if err != nil {
				return err
			}
			a.record("scan_ports", "port scan initiated for "+args[0], map[string]any{"target": args[0], "top_ports": top}, "")
			fmt.Fprintf(cmd.ErrOrStderr(), "[*] Scanning top %d ports on %s...\n", top, args[0])
			report, err := tool.Run(cmd.Context(), args[0], "", scanners.Options{TopPorts: top})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().Int("top-ports", scanners.DefaultTopPorts, "Scan the top N ports")
	return cmd
}

func newSubdomainsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subdomains DOMAIN",
		Short: "Find subdomains in certificate transparency logs",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			tool, err := a.tool(cmd.Context(), "subdomains")
			if err != nil {
				return err
			}
			a.record("scan_subdomains", "subdomain search for "+args[0], map[string]any{"domain": args[0]}, "")
			report, err := tool.Run(cmd.Context(), args[0], "", scanners.Options{})
			if err != nil {
				return err
			}
			subs := strings.Fields(report)
			if format == "json" {
				return writeJSON(cmd.OutOrStdout(), map[string]any{"domain": args[0], "subdomains": subs})
			}
			out := cmd.OutOrStdout()
			if len(subs) == 0 {
				fmt.Fprintln(out, "[-] No subdomains found.")
				return nil
			}
			fmt.Fprintf(out, "[+] Found %d unique subdomains:\n", len(subs))
			fmt.Fprint(out, report)
			return nil
		},
	}
	cmd.Flags().String("format", "text", "Output format (text|json)")
	return cmd
}

func newPolicyCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "policy PATH",
		Short: "Check a file or directory against the security policy",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd)
			if err != nil {
				return err
			}
			format, err := outputFormat(cmd)
			if err != nil {
				return err
			}
			a.record("scan_policy", "policy check for "+args[0], map[string]any{"path": args[0]}, args[0])
			report, err := a.policyReport(cmd, args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if format == "json" {
				if err := writeJSON(out, report); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "[*] %d file(s) scanned\n", report.FilesScanned)
				if len(report.Violations) == 0 {
					fmt.Fprintln(out, "[+] No policy violations.")
				} else {
					rows := make([][]string, 0, len(report.Violations))
					for _, v := range report.Violations {
						rows = append(rows, []string{
							fmt.Sprintf("%s:%d", v.File, v.Line), v.Rule, v.Severity, fmt.Sprint(v.Blocking), v.Message,
						})
					}
					fmt.Fprint(out, ascii.Table([]string{"location", "rule", "severity", "blocking", "message"}, rows, 60))
				}
				if len(report.Compliance) > 0 {
					fmt.Fprintf(out, "Compliance frameworks: %s\n", strings.Join(report.Compliance, ", "))
				}
			}
			if !report.Compliant {
				return fmt.Errorf("%w: %d blocking violation(s)", policy.ErrNonCompliant, len(report.Blocking()))
			}
			return nil
		},
	}
	cmd.Flags().String("format", "text", "Output format (text|json)")
	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
