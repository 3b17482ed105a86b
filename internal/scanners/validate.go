package scanners

import (
	"net"
	"net/url"
	"regexp"
	"strings"
)

var hostPattern = regexp.MustCompile(`^[A-Za-z0-9_]([A-Za-z0-9_.\-]*[A-Za-z0-9_])?(/[0-9]{1,3})?$`)

// ValidateURL accepts absolute http and https URLs with a host.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) != raw || raw == "" {
		return &TargetError{Target: raw, Reason: "empty or padded URL"}
	}
	u, err := url.Parse(raw)
	if err != nil {
		return &TargetError{Target: raw, Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &TargetError{Target: raw, Reason: "URL scheme must be http or https"}
	}
	if u.Host == "" {
		return &TargetError{Target: raw, Reason: "missing host"}
	}
	return nil
}

// ValidateHost accepts a hostname, an IP address or a CIDR block. Anything
// that could be read as a command-line flag is rejected.
func ValidateHost(raw string) error {
	if raw == "" {
		return &TargetError{Target: raw, Reason: "empty host"}
	}
	if strings.HasPrefix(raw, "-") {
		return &TargetError{Target: raw, Reason: "host may not start with '-'"}
	}
	if net.ParseIP(raw) != nil {
		return nil
	}
	if _, _, err := net.ParseCIDR(raw); err == nil {
		return nil
	}
	if !hostPattern.MatchString(raw) {
		return &TargetError{Target: raw, Reason: "not a hostname or IP address"}
	}
	return nil
}

func validateTarget(tool string, kind TargetKind, target string) error {
	var err error
	switch kind {
	case KindURL:
		err = ValidateURL(target)
	case KindHost:
		err = ValidateHost(target)
	default:
		return nil
	}
	if te, ok := err.(*TargetError); ok {
		te.Tool = tool
	}
	return err
}
