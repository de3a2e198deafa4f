// Package discovery walks configured root directories to find git repositories.
package discovery

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/skaphos/gitsync/internal/sortutil"
)

// Result represents a discovered git repository.
type Result struct {
	Path   string // absolute path to the repo root
	GitDir string // resolved git directory; differs from Path/.git for worktrees and submodules
}

// Options configures the discovery scan.
type Options struct {
	Roots       []string
	IgnorePaths []string // absolute directories to skip, compared case-insensitively
	IgnoreNames []string // directory names to skip at any depth, case-insensitive
	Exclude     []string // doublestar glob patterns to skip
	// OnSkip is called for a directory whose entries could not be read. The
	// subtree is skipped and the scan continues.
	OnSkip func(path string, err error)
}

// Scan walks all roots and returns discovered repos ordered by path,
// ignoring case. A directory holding a .git marker is recorded and never
// descended into. Roots that do not exist are skipped.
func Scan(ctx context.Context, opts Options) ([]Result, error) {
	ignorePaths := make(map[string]struct{}, len(opts.IgnorePaths))
	for _, p := range opts.IgnorePaths {
		if strings.TrimSpace(p) == "" {
			continue
		}
		ignorePaths[foldPath(p)] = struct{}{}
	}
	ignoreNames := make(map[string]struct{}, len(opts.IgnoreNames))
	for _, n := range opts.IgnoreNames {
		if n = strings.TrimSpace(n); n != "" {
			ignoreNames[strings.ToLower(n)] = struct{}{}
		}
	}

	found := map[string]Result{}
	var paths []string
	for _, root := range opts.Roots {
		if strings.TrimSpace(root) == "" {
			continue
		}
		absRoot, err := filepath.Abs(root)
		if err != nil {
			return nil, err
		}
		info, err := os.Stat(absRoot)
		if err != nil || !info.IsDir() {
			continue
		}

		stack := []string{absRoot}
		for len(stack) > 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			dir := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			if _, ok := ignorePaths[foldPath(dir)]; ok {
				continue
			}
			if _, ok := ignoreNames[strings.ToLower(filepath.Base(dir))]; ok {
				continue
			}
			if MatchesExclude(dir, opts.Exclude) {
				continue
			}
			if gitDir, ok := repoMarker(dir); ok {
				key := strings.ToLower(dir)
				if _, seen := found[key]; !seen {
					found[key] = Result{Path: dir, GitDir: gitDir}
					paths = append(paths, dir)
				}
				continue
			}

			entries, err := os.ReadDir(dir)
			if err != nil {
				if opts.OnSkip != nil {
					opts.OnSkip(dir, err)
				}
				continue
			}
			// Push in reverse so subdirectories pop in name order.
			for _, entry := range slices.Backward(entries) {
				// Symlinked directories report a symlink type, not a directory.
				if !entry.IsDir() || entry.Name() == ".git" {
					continue
				}
				stack = append(stack, filepath.Join(dir, entry.Name()))
			}
		}
	}

	paths = sortutil.DedupeFold(paths)
	sortutil.SortPaths(paths)
	results := make([]Result, 0, len(paths))
	for _, p := range paths {
		results = append(results, found[strings.ToLower(p)])
	}
	return results, nil
}

// Paths returns just the repository roots of results.
func Paths(results []Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Path)
	}
	return out
}

// MatchesExclude checks whether a path matches any of the given exclude
// glob patterns.
func MatchesExclude(path string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	slashPath := filepath.ToSlash(path)
	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)
		match, err := doublestar.Match(pattern, slashPath)
		if err != nil {
			continue
		}
		if match {
			return true
		}
	}
	return false
}

// repoMarker reports whether dir holds a .git directory or a .git file with a
// gitdir: line, returning the git directory it points at.
func repoMarker(dir string) (string, bool) {
	gitPath := filepath.Join(dir, ".git")
	info, err := os.Lstat(gitPath)
	if err != nil {
		return "", false
	}
	if info.IsDir() {
		return gitPath, true
	}
	if info.Mode().IsRegular() {
		return gitdirFromFile(gitPath)
	}
	return "", false
}

func gitdirFromFile(path string) (string, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", false
	}
	content := strings.TrimSpace(string(data))
	if !strings.HasPrefix(content, "gitdir:") {
		return "", false
	}
	raw := strings.TrimSpace(strings.TrimPrefix(content, "gitdir:"))
	if raw == "" {
		return "", false
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw), true
	}
	return filepath.Clean(filepath.Join(filepath.Dir(path), raw)), true
}

func foldPath(p string) string {
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	return strings.ToLower(filepath.Clean(p))
}

// IsPermission reports whether a skip error came from missing permissions.
func IsPermission(err error) bool {
	return errors.Is(err, fs.ErrPermission)
}
