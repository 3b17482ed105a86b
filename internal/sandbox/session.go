package sandbox

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/logger"
	"github.com/akadevbarki76-collab/scaling-parakeet/pkg/safeio"
)

const dirPrefix = "bughunter-sandbox-"

// Session is one ephemeral directory holding a staged copy of a scan target.
// It lives for exactly one invocation.
type Session struct {
	// Dir is the sandbox root; it becomes the tool's working directory.
	Dir string
	// Target is the original host path that was staged.
	Target string
	// Staged is the path the tool receives: the copied file, or Dir for directory targets.
	Staged string
	// Files lists the slash-separated paths copied into Dir, relative to Dir.
	Files []string
}

// inspectTarget validates that path is an existing regular file or directory.
func inspectTarget(path string) (os.FileInfo, error) {
	if path == "" {
		return nil, &InvalidTargetError{Path: path, Reason: "no target given"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, &InvalidTargetError{Path: path, Reason: "does not exist"}
		}
		return nil, &InvalidTargetError{Path: path, Reason: err.Error()}
	}
	if !info.Mode().IsRegular() && !info.IsDir() {
		return nil, &InvalidTargetError{Path: path, Reason: "not a regular file or directory"}
	}
	return info, nil
}

// Stage creates a fresh sandbox under root (os.TempDir when empty) and copies
// target into it. On error nothing is left behind.
func Stage(root, target string) (*Session, error) {
	info, err := inspectTarget(target)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(root, dirPrefix)
	if err != nil {
		return nil, fmt.Errorf("create sandbox: %w", err)
	}
	s := &Session{Dir: dir, Target: target}

	if info.IsDir() {
		files, err := safeio.CopyTree(target, dir)
		if err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("stage directory: %w", err)
		}
		s.Files = files
		s.Staged = dir
	} else {
		name := filepath.Base(target)
		staged := filepath.Join(dir, name)
		if err := safeio.CopyFile(target, staged); err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("stage file: %w", err)
		}
		s.Files = []string{name}
		s.Staged = staged
	}

	logger.Debug("sandbox staged",
		logger.String("dir", dir),
		logger.String("target", target),
		logger.Int("files", len(s.Files)))
	return s, nil
}

// Empty creates a sandbox with nothing staged. Staged is set to target so the
// tool receives the network address unchanged.
func Empty(root, target string) (*Session, error) {
	dir, err := os.MkdirTemp(root, dirPrefix)
	if err != nil {
		return nil, fmt.Errorf("create sandbox: %w", err)
	}
	return &Session{Dir: dir, Target: target, Staged: target}, nil
}

// Close removes the sandbox directory and everything in it.
func (s *Session) Close() error {
	if s == nil || s.Dir == "" {
		return nil
	}
	if err := os.RemoveAll(s.Dir); err != nil {
		logger.Warn("failed to remove sandbox", logger.String("dir", s.Dir), logger.Err(err))
		return err
	}
	logger.Trace("sandbox removed", logger.String("dir", s.Dir))
	return nil
}
