package gitx

import (
	"strconv"
	"strings"
)

// FileState is the classification of one porcelain status entry.
type FileState int

const (
	FileIgnored FileState = iota
	FileUntracked
	FileConflicted
	FileModified
	FileDeleted
	FileStaged
)

func (s FileState) String() string {
	switch s {
	case FileUntracked:
		return "untracked"
	case FileConflicted:
		return "conflicted"
	case FileModified:
		return "modified"
	case FileDeleted:
		return "deleted"
	case FileStaged:
		return "staged"
	default:
		return "ignored"
	}
}

// ClassifyStatusCode maps the index (x) and worktree (y) characters of a
// porcelain v1 entry to a single FileState. Rules are checked in order:
// untracked, conflicted, modified, deleted, staged.
func ClassifyStatusCode(x, y byte) FileState {
	switch {
	case x == '?' && y == '?':
		return FileUntracked
	case x == 'U' || y == 'U' || (x == 'A' && y == 'A') || (x == 'D' && y == 'D'):
		return FileConflicted
	case strings.IndexByte("MTRC", y) >= 0:
		return FileModified
	case y == 'D':
		return FileDeleted
	case strings.IndexByte("MTADRC", x) >= 0:
		return FileStaged
	default:
		return FileIgnored
	}
}

// Classification holds porcelain entries grouped by FileState, each list in
// git's output order.
type Classification struct {
	Untracked  []string
	Modified   []string
	Deleted    []string
	Staged     []string
	Conflicted []string
}

// Add appends path to the list for state. Ignored entries are dropped.
func (c *Classification) Add(state FileState, path string) {
	switch state {
	case FileUntracked:
		c.Untracked = append(c.Untracked, path)
	case FileConflicted:
		c.Conflicted = append(c.Conflicted, path)
	case FileModified:
		c.Modified = append(c.Modified, path)
	case FileDeleted:
		c.Deleted = append(c.Deleted, path)
	case FileStaged:
		c.Staged = append(c.Staged, path)
	}
}

// ParsePorcelainStatus parses the output of `git status --porcelain`.
// Each entry is `XY path`; blank and short lines are skipped.
func ParsePorcelainStatus(output string) Classification {
	var c Classification
	for _, line := range splitLines(output) {
		if strings.TrimSpace(line) == "" || len(line) < 4 {
			continue
		}
		c.Add(ClassifyStatusCode(line[0], line[1]), unquotePath(line[3:]))
	}
	return c
}

// ParseLines returns every non-blank line of output verbatim.
func ParseLines(output string) []string {
	var lines []string
	for _, line := range splitLines(output) {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// SplitUpstream splits an upstream ref such as "origin/feature/x" at the first
// slash into remote ("origin") and branch ("feature/x").
func SplitUpstream(upstream string) (remote, branch string, ok bool) {
	remote, branch, found := strings.Cut(strings.TrimSpace(upstream), "/")
	if !found || remote == "" || branch == "" {
		return remote, "", false
	}
	return remote, branch, true
}

// RemoteName returns the remote part of an upstream ref.
func RemoteName(upstream string) string {
	remote, _, _ := SplitUpstream(upstream)
	return remote
}

func splitLines(output string) []string {
	if output == "" {
		return nil
	}
	lines := strings.Split(output, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}

// unquotePath undoes git's C-style quoting of paths with special characters.
func unquotePath(path string) string {
	if len(path) < 2 || path[0] != '"' || path[len(path)-1] != '"' {
		return path
	}
	if unquoted, err := strconv.Unquote(path); err == nil {
		return unquoted
	}
	return path
}
