package tools

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
)

// brewCandidates lists well-known Homebrew prefixes in preference order:
// Apple Silicon, Intel macOS, Linuxbrew.
var brewCandidates = []string{
	"/opt/homebrew/bin/brew",
	"/usr/local/bin/brew",
	"/home/linuxbrew/.linuxbrew/bin/brew",
}

// DetectBrew returns the path of the preferred Homebrew binary. System
// locations win over a user-local ~/homebrew-local install, which wins over
// whatever brew PATH yields.
func DetectBrew() (string, error) {
	for _, p := range brewCandidates {
		if fileExists(p) {
			return p, nil
		}
	}

	if homeDir, err := os.UserHomeDir(); err == nil {
		userLocal := filepath.Join(homeDir, "homebrew-local", "bin", "brew")
		if fileExists(userLocal) {
			return userLocal, nil
		}
	}

	if p, err := exec.LookPath("brew"); err == nil {
		return p, nil
	}

	logger.Trace("no brew installation detected")
	return "", errors.New("brew not found")
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
