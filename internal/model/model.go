// Package model defines the core data types used throughout gitsync.
package model

import (
	"path/filepath"
	"strings"
)

// RepoStatus is a point-in-time snapshot of a single repository's working tree
// and synchronization state. A refresh always produces a new value; a snapshot
// is never updated incrementally.
type RepoStatus struct {
	// Path is the absolute local filesystem path to the repository.
	Path string `json:"path" yaml:"path"`
	// Name is the last path segment of Path.
	Name string `json:"name" yaml:"name"`

	// Untracked lists files git does not track.
	Untracked []string `json:"untracked" yaml:"untracked"`
	// Modified lists tracked files changed in the worktree.
	Modified []string `json:"modified" yaml:"modified"`
	// Deleted lists tracked files removed from the worktree.
	Deleted []string `json:"deleted" yaml:"deleted"`
	// Staged lists files with index changes and a clean worktree side.
	Staged []string `json:"staged" yaml:"staged"`
	// Conflicted lists files with unmerged entries.
	Conflicted []string `json:"conflicted" yaml:"conflicted"`
	// Stashes holds one `git stash list` line per stash entry.
	Stashes []string `json:"stashes" yaml:"stashes"`

	// UnpushedCommits are one-line summaries reachable from HEAD but not upstream.
	UnpushedCommits []string `json:"unpushed_commits" yaml:"unpushed_commits"`
	// UnpulledCommits are one-line summaries reachable from upstream but not HEAD.
	UnpulledCommits []string `json:"unpulled_commits" yaml:"unpulled_commits"`

	// LocalBranch is empty when HEAD is detached or unborn.
	LocalBranch string `json:"local_branch" yaml:"local_branch"`
	// RemoteBranch is the upstream ref (for example "origin/main"). Empty when unset.
	RemoteBranch string `json:"remote_branch" yaml:"remote_branch"`

	// Error holds repository-specific refresh error text.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	// ErrorClass is a coarse category for Error (for example, network/auth/fetch).
	ErrorClass string `json:"error_class,omitempty" yaml:"error_class,omitempty"`
}

// NewRepoStatus returns an empty snapshot for the repository at path.
func NewRepoStatus(path string) RepoStatus {
	return RepoStatus{
		Path: path,
		Name: RepoName(path),
	}
}

// RepoName returns the display name for a repository path.
func RepoName(path string) string {
	trimmed := strings.TrimRight(path, `/\`)
	if trimmed == "" {
		return path
	}
	return filepath.Base(trimmed)
}

// HasRemoteUpdates reports whether upstream has commits not yet pulled.
func (s RepoStatus) HasRemoteUpdates() bool {
	return len(s.UnpulledCommits) > 0
}

// IsUpToDate reports whether there is nothing to pull.
func (s RepoStatus) IsUpToDate() bool {
	return !s.HasRemoteUpdates()
}

// IsSafeToPull reports whether a pull cannot disturb local work: both branches
// are known and there are no local file changes, stashes, or unpushed commits.
// Unpulled commits do not disqualify a repository.
func (s RepoStatus) IsSafeToPull() bool {
	if strings.TrimSpace(s.LocalBranch) == "" || strings.TrimSpace(s.RemoteBranch) == "" {
		return false
	}
	return len(s.Untracked) == 0 &&
		len(s.Modified) == 0 &&
		len(s.Deleted) == 0 &&
		len(s.Staged) == 0 &&
		len(s.Conflicted) == 0 &&
		len(s.Stashes) == 0 &&
		len(s.UnpushedCommits) == 0
}

// HasLocalChanges reports whether any file list or the stash list is non-empty.
func (s RepoStatus) HasLocalChanges() bool {
	return len(s.Untracked) > 0 ||
		len(s.Modified) > 0 ||
		len(s.Deleted) > 0 ||
		len(s.Staged) > 0 ||
		len(s.Conflicted) > 0 ||
		len(s.Stashes) > 0
}

// Failed reports whether the refresh for this snapshot failed.
func (s RepoStatus) Failed() bool {
	return s.Error != ""
}

// PullResult records the outcome of pulling one repository.
type PullResult struct {
	// Path is the repository filesystem path.
	Path string `json:"path" yaml:"path"`
	// Name is the repository display name.
	Name string `json:"name" yaml:"name"`
	// RemoteBranch is the upstream that was pulled.
	RemoteBranch string `json:"remote_branch" yaml:"remote_branch"`
	// OK is true when the pull succeeded.
	OK bool `json:"ok" yaml:"ok"`
	// Output is the captured git output.
	Output string `json:"output,omitempty" yaml:"output,omitempty"`
	// Error contains the failure text when OK is false.
	Error string `json:"error,omitempty" yaml:"error,omitempty"`
	// ErrorClass is a coarse category for Error.
	ErrorClass string `json:"error_class,omitempty" yaml:"error_class,omitempty"`
}
