package scanners

import (
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/akadevbarki76-collab/scaling-parakeet/internal/ai"
	"github.com/akadevbarki76-collab/scaling-parakeet/internal/plugin"
	"github.com/akadevbarki76-collab/scaling-parakeet/internal/policy"
	"github.com/akadevbarki76-collab/scaling-parakeet/internal/sandbox"
)

// Default option values.
const (
	DefaultPorts    = "1-1000"
	DefaultTopPorts = 100
	DefaultRuleset  = "auto"
	WebRuleset      = "r/owasp-top-ten"
)

// Deps are the collaborators built-in tools and steps need.
type Deps struct {
	Sandbox *sandbox.Executor
	// HTTPClient and CrtshEndpoint configure subdomain enumeration.
	HTTPClient    *http.Client
	CrtshEndpoint string
	// LoadPolicy backs the policy_check step; nil uses the embedded default.
	LoadPolicy func() (*policy.Policy, error)
	// NewAIClient backs the ai_analyze step; nil leaves it unregistered.
	NewAIClient func() (ai.Client, error)
}

func builtinSpecs() []commandSpec {
	return []commandSpec{
		{
			name: "nmap", binary: "nmap", kind: KindHost,
			description: "Service and version detection on a port range (nmap -sV)",
			hint:        "https://nmap.org/download",
			args: func(o Options) []string {
				ports := o.Ports
				if ports == "" {
					ports = DefaultPorts
				}
				return []string{"-sV", "-p", ports, "-oX", "-"}
			},
			enrich: enrichNmap,
		},
		{
			name: "port_scanner", binary: "nmap", kind: KindHost,
			description: "Fast scan of the most common ports",
			hint:        "https://nmap.org/download",
			args: func(o Options) []string {
				n := o.TopPorts
				if n <= 0 {
					n = DefaultTopPorts
				}
				return []string{"--top-ports", strconv.Itoa(n), "-T4"}
			},
		},
		{
			name: "nuclei", binary: "nuclei", kind: KindURL,
			description: "Template-based vulnerability scan (medium and critical templates)",
			hint:        "go install github.com/projectdiscovery/nuclei/v3/cmd/nuclei@latest",
			args:        func(Options) []string { return []string{"-t", "medium,critical", "-json", "-u"} },
		},
		{
			name: "sqlmap", binary: "sqlmap", kind: KindURL,
			description: "Automatic SQL injection detection",
			args:        func(Options) []string { return []string{"--batch", "-u"} },
		},
		{
			name: "nikto", binary: "nikto", kind: KindURL,
			description: "Web server misconfiguration scan",
			args:        func(Options) []string { return []string{"-h"} },
		},
		{
			name: "dirsearch", binary: "dirsearch", kind: KindURL,
			description: "Brute-force web paths",
			hint:        "pip install dirsearch",
			args:        func(Options) []string { return []string{"-u"} },
		},
		{
			name: "waybackurls", binary: "waybackurls", kind: KindHost,
			description: "Fetch archived URLs for a domain from the Wayback Machine",
			hint:        "go install github.com/tomnomnom/waybackurls@latest",
		},
		{
			name: "semgrep", binary: "semgrep", kind: KindPath,
			description: "Static analysis of source code with Semgrep",
			hint:        "pip install semgrep",
			args:        semgrepArgs(DefaultRuleset),
			accept:      []int{0, 1},
			enrich:      enrichSemgrep("semgrep_findings"),
		},
		{
			name: "semgrep_web", binary: "semgrep", kind: KindPath,
			description: "Static analysis of a web project against the OWASP Top 10 ruleset",
			hint:        "pip install semgrep",
			args:        semgrepArgs(WebRuleset),
			accept:      []int{0, 1},
			enrich:      enrichSemgrep("semgrep_web_findings"),
		},
		{
			name: "osv_scanner", binary: "osv-scanner", kind: KindPath,
			description: "Known vulnerabilities in project dependencies (OSV database)",
			hint:        "https://google.github.io/osv-scanner/",
			args:        func(Options) []string { return []string{"--json"} },
			accept:      []int{0, 1},
			enrich:      enrichOSV,
		},
		{
			name: "cppcheck", binary: "cppcheck", kind: KindPath,
			description:  "Static analysis of C and C++ code",
			hint:         "on Debian/Ubuntu: sudo apt-get install cppcheck",
			args:         func(Options) []string { return []string{"--enable=all"} },
			stderrReport: true,
		},
	}
}

func semgrepArgs(ruleset string) func(Options) []string {
	return func(o Options) []string {
		rs := o.Ruleset
		if rs == "" {
			rs = ruleset
		}
		return []string{"scan", "--json", "--config", rs}
	}
}

func enrichNmap(report string, wctx map[string]any) error {
	ports, err := ParseNmapXML([]byte(report))
	if err != nil {
		return err
	}
	wctx["open_ports"] = OpenPorts(ports)
	return nil
}

func enrichSemgrep(key string) func(string, map[string]any) error {
	return func(report string, wctx map[string]any) error {
		findings, err := ParseSemgrep([]byte(report))
		if err != nil {
			return err
		}
		wctx[key] = findings
		return nil
	}
}

func enrichOSV(report string, wctx map[string]any) error {
	vulns, err := ParseOSV([]byte(report))
	if err != nil {
		return err
	}
	wctx["osv_vulnerabilities"] = vulns
	return nil
}

// Toolbox is the set of built-in tools by name.
type Toolbox struct {
	tools map[string]Tool
}

// NewToolbox builds every built-in tool.
func NewToolbox(d Deps) *Toolbox {
	sb := d.Sandbox
	if sb == nil {
		sb = sandbox.New(sandbox.Config{Timeout: sandbox.DefaultTimeout})
	}
	b := &Toolbox{tools: map[string]Tool{}}
	for _, spec := range builtinSpecs() {
		b.tools[spec.name] = newCommandTool(spec, sb)
	}
	sub := newSubdomainTool(d.CrtshEndpoint, d.HTTPClient)
	b.tools[sub.Name()] = sub
	return b
}

// Get returns the tool registered as name.
func (b *Toolbox) Get(name string) (Tool, error) {
	t, ok := b.tools[plugin.NormalizeName(name)]
	if !ok {
		return nil, &unknownToolError{name: name, known: b.Names()}
	}
	return t, nil
}

// Names lists the tool names in order.
func (b *Toolbox) Names() []string {
	names := make([]string, 0, len(b.tools))
	for n := range b.tools {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// RegisterBuiltins registers every built-in tool plus the policy and AI
// steps with reg and returns the toolbox for direct CLI use.
func RegisterBuiltins(reg *plugin.Registry, d Deps) *Toolbox {
	box := NewToolbox(d)
	for _, name := range box.Names() {
		reg.Register(Descriptor(box.tools[name]))
	}
	load := d.LoadPolicy
	if load == nil {
		load = func() (*policy.Policy, error) { return policy.Default(), nil }
	}
	reg.Register(policy.Descriptor(load))
	if d.NewAIClient != nil {
		reg.Register(ai.Descriptor(d.NewAIClient))
	}
	return box
}

type unknownToolError struct {
	name  string
	known []string
}

func (e *unknownToolError) Error() string {
	return "unknown tool '" + e.name + "'; available: " + strings.Join(e.known, ", ")
}

func (e *unknownToolError) Is(target error) bool { return target == ErrUnknownTool }
