package tools

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
)

// OverrideEnvPrefix names per-tool path overrides, e.g. BUGHUNTER_TOOL_NMAP=/opt/nmap/bin/nmap.
const OverrideEnvPrefix = "BUGHUNTER_TOOL_"

// Locator finds executables following the resolution order:
//  1. Environment variable override (BUGHUNTER_TOOL_<NAME>)
//  2. PATH
//  3. Homebrew bin directory
//  4. Known shim directories (go install, pipx, cargo, mise, scoop)
type Locator struct {
	LookPath func(string) (string, error)
	ShimDirs []string
	Getenv   func(string) string
}

// NewLocator creates a Locator backed by the real PATH and shim directories.
func NewLocator() *Locator {
	return &Locator{
		LookPath: exec.LookPath,
		ShimDirs: getShimDirectories(),
		Getenv:   os.Getenv,
	}
}

// OverrideEnvVar returns the override variable name for a tool.
func OverrideEnvVar(tool string) string {
	name := strings.ToUpper(filepath.Base(tool))
	name = strings.NewReplacer("-", "_", ".", "_").Replace(name)
	return OverrideEnvPrefix + name
}

// Find returns the full path of tool and whether it was found.
func (l *Locator) Find(tool string) (string, bool) {
	if tool == "" {
		return "", false
	}

	if l.Getenv != nil {
		if override := l.Getenv(OverrideEnvVar(tool)); override != "" {
			if fileExists(override) {
				logger.Debug("resolution successful: env override", logger.String("tool", tool), logger.String("path", override))
				return override, true
			}
			logger.Debug("env override path invalid", logger.String("path", override))
		}
	}

	lookPath := l.LookPath
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if path, err := lookPath(tool); err == nil {
		return path, true
	}

	// Explicit paths are not searched any further.
	if strings.ContainsRune(tool, os.PathSeparator) || strings.Contains(tool, "/") {
		return "", false
	}

	if brewPath, err := DetectBrew(); err == nil {
		candidate := filepath.Join(filepath.Dir(brewPath), tool)
		if fileExists(candidate) {
			logger.Debug("found tool in brew bin", logger.String("tool", tool), logger.String("path", candidate))
			return candidate, true
		}
	}

	for _, dir := range l.ShimDirs {
		if dir == "" {
			continue
		}
		candidate := filepath.Join(dir, tool)
		if runtime.GOOS == "windows" && !strings.HasSuffix(candidate, ".exe") {
			candidate += ".exe"
		}
		if fileExists(candidate) {
			logger.Debug("found tool in shim dir", logger.String("tool", tool), logger.String("path", candidate))
			return candidate, true
		}
	}

	return "", false
}

// Missing returns the subset of tools that cannot be located, in input order.
func (l *Locator) Missing(tools []string) []string {
	var missing []string
	for _, t := range tools {
		if _, ok := l.Find(t); !ok {
			missing = append(missing, t)
		}
	}
	return missing
}

// getShimDirectories returns known install directories that may not be on PATH
func getShimDirectories() []string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	goDir := os.Getenv("GOBIN")
	if goDir == "" {
		goDir = filepath.Join(homeDir, "go", "bin")
	}

	candidates := []string{
		goDir,
		filepath.Join(homeDir, ".local", "bin"),
		filepath.Join(homeDir, ".cargo", "bin"),
		filepath.Join(homeDir, ".local", "share", "mise", "shims"),
	}
	if runtime.GOOS == "windows" {
		candidates = append(candidates, filepath.Join(homeDir, "scoop", "shims"))
	}

	dirs := make([]string, 0, len(candidates))
	for _, d := range candidates {
		if st, err := os.Stat(d); err == nil && st.IsDir() {
			dirs = append(dirs, d)
		}
	}
	return dirs
}
