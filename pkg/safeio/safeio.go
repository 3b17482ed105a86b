package safeio

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// CleanUserPath cleans a user-provided path and rejects traversal attempts.
// Returns paths with forward slashes for cross-platform consistency.
func CleanUserPath(p string) (string, error) {
	c := filepath.Clean(p)
	for _, part := range strings.Split(filepath.ToSlash(c), "/") {
		if part == ".." {
			return "", errors.New("path traversal detected")
		}
	}
	return filepath.ToSlash(c), nil
}

// WriteFilePreservePerms writes data to path preserving existing file mode when possible.
// When the file does not exist, it uses a sane default of 0644.
func WriteFilePreservePerms(path string, data []byte) error {
	var mode os.FileMode = 0o644
	if st, err := os.Stat(path); err == nil {
		mode = st.Mode() & 0o777
		if mode == 0 {
			mode = 0o644
		}
	}
	return os.WriteFile(path, data, mode)
}

// CopyFile copies a regular file from src to dst, keeping the permission bits.
// The parent directory of dst must exist.
func CopyFile(src, dst string) error {
	in, err := os.Open(src) // #nosec G304 -- caller-provided scan target
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	st, err := in.Stat()
	if err != nil {
		return err
	}
	if !st.Mode().IsRegular() {
		return fmt.Errorf("%s is not a regular file", src)
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, st.Mode().Perm()) // #nosec G304
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

// CopyTree recursively copies the contents of srcDir into dstDir, preserving
// relative paths and permission bits. srcDir may itself be a symlink.
// Symlinks inside the tree are followed and their targets copied as plain
// files or directories, so nothing in dstDir links back into the host
// filesystem. Dangling links and links that loop back into a directory
// being copied are skipped. Returns the slash-separated relative paths of
// every regular file copied.
func CopyTree(srcDir, dstDir string) ([]string, error) {
	root, err := filepath.EvalSymlinks(srcDir)
	if err != nil {
		return nil, fmt.Errorf("copy %s: %w", srcDir, err)
	}
	c := &treeCopier{active: map[string]bool{}}
	if err := c.copyDir(root, dstDir, ""); err != nil {
		return c.copied, fmt.Errorf("copy %s: %w", srcDir, err)
	}
	return c.copied, nil
}

type treeCopier struct {
	copied []string
	// active holds the resolved directories currently being walked.
	active map[string]bool
}

// copyDir copies the resolved directory src into dst. prefix is the
// slash-separated path of dst relative to the top-level destination.
func (c *treeCopier) copyDir(src, dst, prefix string) error {
	c.active[src] = true
	defer delete(c.active, src)

	return filepath.WalkDir(src, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dst, rel)
		relOut := filepath.ToSlash(filepath.Join(prefix, rel))

		switch {
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		case d.Type()&fs.ModeSymlink != 0:
			return c.copyLink(path, target, relOut)
		case d.Type().IsRegular():
			if err := CopyFile(path, target); err != nil {
				return err
			}
			c.copied = append(c.copied, relOut)
			return nil
		default:
			// sockets, devices and pipes are not staged
			return nil
		}
	})
}

func (c *treeCopier) copyLink(path, target, relOut string) error {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	info, err := os.Stat(resolved)
	if err != nil {
		return err
	}
	switch {
	case info.IsDir():
		if c.isActive(resolved) {
			return nil
		}
		if err := os.MkdirAll(target, info.Mode().Perm()|0o700); err != nil {
			return err
		}
		return c.copyDir(resolved, target, relOut)
	case info.Mode().IsRegular():
		if err := CopyFile(resolved, target); err != nil {
			return err
		}
		c.copied = append(c.copied, relOut)
		return nil
	default:
		return nil
	}
}

// isActive reports whether dir is one of the directories being walked or
// an ancestor of one, which would make copying it recurse forever.
func (c *treeCopier) isActive(dir string) bool {
	for a := range c.active {
		if a == dir {
			return true
		}
		if rel, err := filepath.Rel(dir, a); err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return true
		}
	}
	return false
}
