// Package gitctx reads repository metadata for scan targets.
package gitctx

import (
	"errors"
	"path/filepath"
	"sort"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// RepoInfo is a minimal description of the repository containing a target.
type RepoInfo struct {
	Root          string   `json:"root"`
	Branch        string   `json:"branch,omitempty"`
	SHA           string   `json:"sha,omitempty"`
	Dirty         bool     `json:"dirty"`
	ModifiedFiles []string `json:"modified_files,omitempty"`
}

// Collect returns repository information for target, searching parent
// directories for .git. It returns nil, nil when target is not inside a repository.
func Collect(target string) (*RepoInfo, error) {
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, err
	}
	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if errors.Is(err, git.ErrRepositoryNotExists) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	info := &RepoInfo{}
	wt, err := repo.Worktree()
	if err == nil {
		info.Root = wt.Filesystem.Root()
	}

	head, err := repo.Head()
	switch {
	case errors.Is(err, plumbing.ErrReferenceNotFound):
		// no commits yet
	case err != nil:
		return nil, err
	default:
		info.SHA = head.Hash().String()
		if head.Name().IsBranch() {
			info.Branch = head.Name().Short()
		}
	}

	if wt != nil {
		st, err := wt.Status()
		if err != nil {
			return info, nil
		}
		for path, s := range st {
			if s.Staging != git.Unmodified || s.Worktree != git.Unmodified {
				info.ModifiedFiles = append(info.ModifiedFiles, filepath.ToSlash(path))
			}
		}
		sort.Strings(info.ModifiedFiles)
		info.Dirty = len(info.ModifiedFiles) > 0
	}
	return info, nil
}

// ShortSHA returns the first 12 characters of the commit hash.
func (r *RepoInfo) ShortSHA() string {
	if len(r.SHA) > 12 {
		return r.SHA[:12]
	}
	return r.SHA
}
