package scanners

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/exitcode"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/safeio"
)

// DefaultCrtshEndpoint is the certificate transparency search used for
// subdomain enumeration.
const DefaultCrtshEndpoint = "https://crt.sh/"

// CrtshError is a failed certificate transparency lookup.
type CrtshError struct {
	StatusCode int
	Err        error
}

func (e *CrtshError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("error connecting to crt.sh: %v", e.Err)
	}
	return fmt.Sprintf("crt.sh returned status %d", e.StatusCode)
}

func (e *CrtshError) Unwrap() error { return e.Err }

// ExitCode maps to the process exit code.
func (e *CrtshError) ExitCode() int { return exitcode.NetworkError }

// subdomainTool enumerates subdomains from certificate transparency logs.
type subdomainTool struct {
	endpoint string
	client   *http.Client
}

func newSubdomainTool(endpoint string, client *http.Client) *subdomainTool {
	if endpoint == "" {
		endpoint = DefaultCrtshEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return &subdomainTool{endpoint: endpoint, client: client}
}

func (t *subdomainTool) Name() string { return "subdomains" }
func (t *subdomainTool) Description() string {
	return "Find subdomains of a domain in certificate transparency logs (crt.sh)"
}
func (t *subdomainTool) Kind() TargetKind { return KindHost }

// Lookup returns the sorted unique subdomains of domain.
func (t *subdomainTool) Lookup(ctx context.Context, domain string) ([]string, error) {
	if err := validateTarget(t.Name(), KindHost, domain); err != nil {
		return nil, err
	}
	if err := ValidateURL(t.endpoint); err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("q", "%."+domain)
	q.Set("output", "json")
	u := strings.TrimRight(t.endpoint, "?") + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	logger.Info("searching certificate transparency logs", logger.String("domain", domain))
	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &CrtshError{Err: err}
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return nil, &CrtshError{StatusCode: resp.StatusCode}
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 64<<20))
	if err != nil {
		return nil, &CrtshError{Err: err}
	}
	return ParseCrtsh(data)
}

// Run returns one subdomain per line.
func (t *subdomainTool) Run(ctx context.Context, target, outputFile string, _ Options) (string, error) {
	subs, err := t.Lookup(ctx, target)
	if err != nil {
		return "", err
	}
	report := strings.Join(subs, "\n")
	if report != "" {
		report += "\n"
	}
	if outputFile != "" {
		if err := safeio.WriteFilePreservePerms(outputFile, []byte(report)); err != nil {
			return report, fmt.Errorf("write subdomains output: %w", err)
		}
	}
	return report, nil
}

// Enrich stores the list under "subdomains".
func (t *subdomainTool) Enrich(report string, wctx map[string]any) error {
	wctx["subdomains"] = strings.Fields(report)
	return nil
}
