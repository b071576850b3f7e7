package git

import (
	"fmt"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// FileStatus represents the status of a single file
type FileStatus struct {
	Path   string `json:"path"`
	Status string `json:"status"` // "modified", "added", "deleted", "untracked", etc.
}

// RepoStatus describes the working tree that contains an inspected directory.
// Dirty files are keyed by absolute path with symlinks resolved.
type RepoStatus struct {
	Branch string
	Clean  bool
	dirty  map[string]string
}

// Inspect opens the repository containing dir, walking up to find .git
func Inspect(dir string) (*RepoStatus, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s: %w", dir, err)
	}

	repo, err := git.PlainOpenWithOptions(abs, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("failed to open git repository: %w", err)
	}

	worktree, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("failed to get worktree: %w", err)
	}

	status, err := worktree.Status()
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	root := canonical(worktree.Filesystem.Root())
	repoStatus := &RepoStatus{
		Branch: currentBranch(repo),
		Clean:  status.IsClean(),
		dirty:  make(map[string]string),
	}

	for path, fileStatus := range status {
		code := fileStatus.Worktree
		if code == git.Unmodified {
			code = fileStatus.Staging
		}
		if code == git.Unmodified {
			continue
		}
		repoStatus.dirty[filepath.Join(root, filepath.FromSlash(path))] = mapStatusCode(code)
	}

	return repoStatus, nil
}

// Lookup returns the uncommitted status of path. Relative paths and paths
// reached through symlinks are resolved before the lookup. The returned
// FileStatus carries path as given.
func (s *RepoStatus) Lookup(path string) (FileStatus, bool) {
	status, ok := s.dirty[canonical(path)]
	if !ok {
		return FileStatus{}, false
	}
	return FileStatus{Path: path, Status: status}, true
}

// canonical makes path absolute and resolves symlinks when it exists
func canonical(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return filepath.Clean(path)
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		return resolved
	}
	return abs
}

// currentBranch reads the symbolic HEAD so unborn branches still have a name.
// A detached HEAD yields "".
func currentBranch(repo *git.Repository) string {
	ref, err := repo.Reference(plumbing.HEAD, false)
	if err != nil {
		return ""
	}
	if ref.Type() != plumbing.SymbolicReference {
		return ""
	}
	return ref.Target().Short()
}

// mapStatusCode converts go-git status codes to human-readable strings
func mapStatusCode(code git.StatusCode) string {
	switch code {
	case git.Unmodified:
		return "unmodified"
	case git.Untracked:
		return "untracked"
	case git.Modified:
		return "modified"
	case git.Added:
		return "added"
	case git.Deleted:
		return "deleted"
	case git.Renamed:
		return "renamed"
	case git.Copied:
		return "copied"
	case git.UpdatedButUnmerged:
		return "updated-but-unmerged"
	default:
		return "unknown"
	}
}
