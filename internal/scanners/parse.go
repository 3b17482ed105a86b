package scanners

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/beevik/etree"
)

// Port is one port from an nmap XML report.
type Port struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Protocol string `json:"protocol"`
	State    string `json:"state"`
	Service  string `json:"service,omitempty"`
	Product  string `json:"product,omitempty"`
	Version  string `json:"version,omitempty"`
}

func (p Port) String() string {
	s := fmt.Sprintf("%d/%s %s", p.Port, p.Protocol, p.State)
	if p.Service != "" {
		s += " " + p.Service
	}
	if v := strings.TrimSpace(p.Product + " " + p.Version); v != "" {
		s += " (" + v + ")"
	}
	return s
}

// ParseNmapXML extracts every port from nmap's -oX output.
func ParseNmapXML(data []byte) ([]Port, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("parse nmap XML: %w", err)
	}
	root := doc.SelectElement("nmaprun")
	if root == nil {
		return nil, fmt.Errorf("parse nmap XML: missing nmaprun element")
	}

	var ports []Port
	for _, host := range root.SelectElements("host") {
		addr := ""
		if a := host.SelectElement("address"); a != nil {
			addr = a.SelectAttrValue("addr", "")
		}
		for _, p := range host.FindElements("./ports/port") {
			n, err := strconv.Atoi(p.SelectAttrValue("portid", ""))
			if err != nil {
				continue
			}
			port := Port{Host: addr, Port: n, Protocol: p.SelectAttrValue("protocol", "tcp")}
			if st := p.SelectElement("state"); st != nil {
				port.State = st.SelectAttrValue("state", "")
			}
			if svc := p.SelectElement("service"); svc != nil {
				port.Service = svc.SelectAttrValue("name", "")
				port.Product = svc.SelectAttrValue("product", "")
				port.Version = svc.SelectAttrValue("version", "")
			}
			ports = append(ports, port)
		}
	}
	return ports, nil
}

// OpenPorts filters ports to those nmap reported open.
func OpenPorts(ports []Port) []Port {
	var out []Port
	for _, p := range ports {
		if p.State == "open" {
			out = append(out, p)
		}
	}
	return out
}

// SemgrepFinding is one result of `semgrep scan --json`.
type SemgrepFinding struct {
	CheckID   string `json:"check_id"`
	Path      string `json:"path"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
	Message   string `json:"message"`
	Severity  string `json:"severity,omitempty"`
}

type semgrepOutput struct {
	Results []struct {
		CheckID string `json:"check_id"`
		Path    string `json:"path"`
		Start   struct {
			Line int `json:"line"`
		} `json:"start"`
		End struct {
			Line int `json:"line"`
		} `json:"end"`
		Extra struct {
			Message  string `json:"message"`
			Severity string `json:"severity"`
		} `json:"extra"`
	} `json:"results"`
}

// ParseSemgrep decodes semgrep's JSON report.
func ParseSemgrep(data []byte) ([]SemgrepFinding, error) {
	var out semgrepOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse semgrep JSON: %w", err)
	}
	findings := make([]SemgrepFinding, 0, len(out.Results))
	for _, r := range out.Results {
		findings = append(findings, SemgrepFinding{
			CheckID:   r.CheckID,
			Path:      r.Path,
			StartLine: r.Start.Line,
			EndLine:   r.End.Line,
			Message:   r.Extra.Message,
			Severity:  r.Extra.Severity,
		})
	}
	return findings, nil
}

// Vulnerability is one advisory affecting a package, from osv-scanner.
type Vulnerability struct {
	ID        string   `json:"id"`
	Package   string   `json:"package"`
	Version   string   `json:"version,omitempty"`
	Ecosystem string   `json:"ecosystem,omitempty"`
	Summary   string   `json:"summary"`
	Aliases   []string `json:"aliases,omitempty"`
}

type osvOutput struct {
	Results []struct {
		Packages []struct {
			Package struct {
				Name      string `json:"name"`
				Version   string `json:"version"`
				Ecosystem string `json:"ecosystem"`
			} `json:"package"`
			Vulnerabilities []struct {
				ID      string   `json:"id"`
				Summary string   `json:"summary"`
				Aliases []string `json:"aliases"`
			} `json:"vulnerabilities"`
		} `json:"packages"`
	} `json:"results"`
}

// ParseOSV decodes osv-scanner's JSON report. Empty output means no findings.
func ParseOSV(data []byte) ([]Vulnerability, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, nil
	}
	var out osvOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse osv-scanner JSON: %w", err)
	}
	var vulns []Vulnerability
	for _, r := range out.Results {
		for _, p := range r.Packages {
			for _, v := range p.Vulnerabilities {
				summary := v.Summary
				if summary == "" {
					summary = "No summary available."
				}
				vulns = append(vulns, Vulnerability{
					ID:        v.ID,
					Package:   p.Package.Name,
					Version:   p.Package.Version,
					Ecosystem: p.Package.Ecosystem,
					Summary:   summary,
					Aliases:   v.Aliases,
				})
			}
		}
	}
	return vulns, nil
}

// ParseCrtsh extracts unique subdomains from crt.sh's JSON certificate list.
// Wildcard prefixes are dropped and the result is sorted.
func ParseCrtsh(data []byte) ([]string, error) {
	var entries []struct {
		NameValue string `json:"name_value"`
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse crt.sh JSON: %w", err)
	}
	seen := map[string]struct{}{}
	for _, e := range entries {
		for _, name := range strings.Split(e.NameValue, "\n") {
			name = strings.TrimPrefix(strings.TrimSpace(name), "*.")
			if name != "" {
				seen[strings.ToLower(name)] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out, nil
}
