// Package versioning parses and orders the semantic versions declared by plugins.
package versioning

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var semverPattern = regexp.MustCompile(`^(?:[vV])?(\d+)\.(\d+)\.(\d+)(?:-([0-9A-Za-z.-]+))?(?:\+([0-9A-Za-z.-]+))?$`)

type identifier struct {
	raw     string
	numeric bool
	num     int
}

// Version is a parsed SemVer 2.0.0 version. A leading "v" is accepted.
type Version struct {
	Major, Minor, Patch int

	pre   []identifier
	build string
	raw   string
}

// Prerelease returns the dot-joined prerelease identifiers, if any.
func (v *Version) Prerelease() string {
	parts := make([]string, len(v.pre))
	for i, id := range v.pre {
		parts[i] = id.raw
	}
	return strings.Join(parts, ".")
}

// Build returns the build metadata, if any.
func (v *Version) Build() string { return v.build }

// String returns the version as it was written.
func (v *Version) String() string {
	if v == nil {
		return ""
	}
	return v.raw
}

// Parse parses input as a semantic version.
func Parse(input string) (*Version, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, errors.New("empty version")
	}
	m := semverPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return nil, fmt.Errorf("invalid semver %q", input)
	}

	v := &Version{raw: trimmed}
	for i, dst := range []*int{&v.Major, &v.Minor, &v.Patch} {
		seg := m[i+1]
		if len(seg) > 1 && seg[0] == '0' {
			return nil, fmt.Errorf("invalid semver %q: leading zeros not allowed", input)
		}
		n, err := strconv.Atoi(seg)
		if err != nil {
			return nil, fmt.Errorf("segment '%s': %w", seg, err)
		}
		*dst = n
	}

	if m[4] != "" {
		for _, part := range strings.Split(m[4], ".") {
			if part == "" {
				return nil, fmt.Errorf("invalid prerelease identifier: empty segment")
			}
			id := identifier{raw: part}
			if isNumeric(part) {
				if len(part) > 1 && part[0] == '0' {
					return nil, fmt.Errorf("invalid prerelease identifier: leading zeros not allowed")
				}
				id.numeric = true
				id.num, _ = strconv.Atoi(part)
			}
			v.pre = append(v.pre, id)
		}
	}
	if m[5] != "" {
		for _, part := range strings.Split(m[5], ".") {
			if part == "" {
				return nil, fmt.Errorf("invalid build identifier: empty segment")
			}
		}
		v.build = m[5]
	}
	return v, nil
}

// Compare returns -1, 0 or 1 as a orders before, equal to or after b.
// Build metadata is ignored.
func Compare(a, b string) (int, error) {
	av, err := Parse(a)
	if err != nil {
		return 0, err
	}
	bv, err := Parse(b)
	if err != nil {
		return 0, err
	}
	return av.Compare(bv), nil
}

// Compare orders v against o.
func (v *Version) Compare(o *Version) int {
	for _, pair := range [][2]int{{v.Major, o.Major}, {v.Minor, o.Minor}, {v.Patch, o.Patch}} {
		if c := cmpInt(pair[0], pair[1]); c != 0 {
			return c
		}
	}

	switch {
	case len(v.pre) == 0 && len(o.pre) == 0:
		return 0
	case len(v.pre) == 0:
		return 1
	case len(o.pre) == 0:
		return -1
	}

	for i := 0; i < len(v.pre) && i < len(o.pre); i++ {
		a, b := v.pre[i], o.pre[i]
		switch {
		case a.numeric && b.numeric:
			if c := cmpInt(a.num, b.num); c != 0 {
				return c
			}
		case a.numeric:
			return -1
		case b.numeric:
			return 1
		default:
			if c := strings.Compare(a.raw, b.raw); c != 0 {
				return c
			}
		}
	}
	return cmpInt(len(v.pre), len(o.pre))
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func isNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
