// Package buildinfo exposes version metadata stamped at build time.
package buildinfo

import (
	"runtime"
	"runtime/debug"
)

// Set via -ldflags "-X .../pkg/buildinfo.BinaryVersion=v1.2.3".
var (
	BinaryVersion = "dev"
	Commit        = ""
	BuildDate     = ""
)

// Info is the version report printed by `bughunter version`.
type Info struct {
	Version   string `json:"version"`
	Module    string `json:"module_version,omitempty"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version"`
	Platform  string `json:"platform"`
}

// ModuleVersion returns the module version embedded by the Go toolchain, if any.
func ModuleVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return ""
}

// Current collects the build metadata of the running binary. The VCS
// revision recorded by the toolchain fills in Commit when ldflags did not.
func Current() Info {
	info := Info{
		Version:   BinaryVersion,
		Module:    ModuleVersion(),
		Commit:    Commit,
		BuildDate: BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if info.Commit == "" {
		if bi, ok := debug.ReadBuildInfo(); ok {
			for _, s := range bi.Settings {
				if s.Key == "vcs.revision" {
					info.Commit = s.Value
				}
			}
		}
	}
	return info
}
