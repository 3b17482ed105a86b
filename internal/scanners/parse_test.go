package scanners

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const nmapXML = `<?xml version="1.0" encoding="UTF-8"?>
<nmaprun scanner="nmap" args="nmap -sV -p 1-1000 -oX - scanme.nmap.org">
  <host>
    <status state="up"/>
    <address addr="45.33.32.156" addrtype="ipv4"/>
    <ports>
      <port protocol="tcp" portid="22"><state state="open"/><service name="ssh" product="OpenSSH" version="6.6.1p1"/></port>
      <port protocol="tcp" portid="80"><state state="open"/><service name="http" product="Apache httpd"/></port>
      <port protocol="tcp" portid="443"><state state="closed"/></port>
    </ports>
  </host>
</nmaprun>`

func TestParseNmapXML(t *testing.T) {
	ports, err := ParseNmapXML([]byte(nmapXML))
	require.NoError(t, err)
	require.Len(t, ports, 3)
	assert.Equal(t, Port{Host: "45.33.32.156", Port: 22, Protocol: "tcp", State: "open", Service: "ssh", Product: "OpenSSH", Version: "6.6.1p1"}, ports[0])

	open := OpenPorts(ports)
	require.Len(t, open, 2)
	assert.Equal(t, "80/tcp open http (Apache httpd)", open[1].String())
}

func TestParseNmapXMLInvalid(t *testing.T) {
	_, err := ParseNmapXML([]byte("Starting Nmap 7.94"))
	assert.Error(t, err)
	_, err = ParseNmapXML([]byte("<other/>"))
	assert.Error(t, err)
}

func TestParseSemgrep(t *testing.T) {
	data := `{"results":[{"check_id":"python.lang.security.eval","path":"app.py","start":{"line":3},"end":{"line":4},"extra":{"message":"eval is dangerous","severity":"ERROR"}}],"errors":[]}`
	findings, err := ParseSemgrep([]byte(data))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, SemgrepFinding{CheckID: "python.lang.security.eval", Path: "app.py", StartLine: 3, EndLine: 4, Message: "eval is dangerous", Severity: "ERROR"}, findings[0])

	_, err = ParseSemgrep([]byte("not json"))
	assert.Error(t, err)
}

func TestParseOSV(t *testing.T) {
	data := `{"results":[{"packages":[{"package":{"name":"lodash","version":"4.17.15","ecosystem":"npm"},"vulnerabilities":[{"id":"GHSA-p6mc-m468-83gw","summary":"Prototype pollution","aliases":["CVE-2020-8203"]},{"id":"GHSA-x"}]}]}]}`
	vulns, err := ParseOSV([]byte(data))
	require.NoError(t, err)
	require.Len(t, vulns, 2)
	assert.Equal(t, "lodash", vulns[0].Package)
	assert.Equal(t, []string{"CVE-2020-8203"}, vulns[0].Aliases)
	assert.Equal(t, "No summary available.", vulns[1].Summary)

	none, err := ParseOSV([]byte("  \n"))
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestParseCrtsh(t *testing.T) {
	data := `[{"name_value":"www.example.com\n*.example.com"},{"name_value":"API.example.com"},{"name_value":"www.example.com"},{"name_value":""}]`
	subs, err := ParseCrtsh([]byte(data))
	require.NoError(t, err)
	assert.Equal(t, []string{"api.example.com", "example.com", "www.example.com"}, subs)
}
