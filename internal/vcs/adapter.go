// SPDX-License-Identifier: MIT
package vcs

import (
	"context"

	"github.com/skaphos/gitsync/internal/gitx"
)

// Adapter defines the version-control operations gitsync relies on.
type Adapter interface {
	WorkingTree(ctx context.Context, dir string) (gitx.Classification, error)
	Stashes(ctx context.Context, dir string) ([]string, error)
	LocalBranch(ctx context.Context, dir string) string
	Upstream(ctx context.Context, dir string) string
	Unpushed(ctx context.Context, dir, upstream string) ([]string, error)
	Fetch(ctx context.Context, dir, remote string) error
	Unpulled(ctx context.Context, dir, upstream string) ([]string, error)
	Pull(ctx context.Context, dir, upstream string) (string, error)
}

// GitAdapter implements Adapter using the git CLI via gitx.
type GitAdapter struct {
	Runner gitx.Runner
}

// NewGitAdapter returns a GitAdapter. A nil runner uses gitx.GitRunner with
// the default per-invocation timeout.
func NewGitAdapter(runner gitx.Runner) *GitAdapter {
	if runner == nil {
		runner = &gitx.GitRunner{Timeout: gitx.DefaultTimeout}
	}
	return &GitAdapter{Runner: runner}
}

func (g *GitAdapter) WorkingTree(ctx context.Context, dir string) (gitx.Classification, error) {
	return gitx.WorkingTree(ctx, g.Runner, dir)
}

func (g *GitAdapter) Stashes(ctx context.Context, dir string) ([]string, error) {
	return gitx.StashList(ctx, g.Runner, dir)
}

func (g *GitAdapter) LocalBranch(ctx context.Context, dir string) string {
	return gitx.LocalBranch(ctx, g.Runner, dir)
}

func (g *GitAdapter) Upstream(ctx context.Context, dir string) string {
	return gitx.UpstreamBranch(ctx, g.Runner, dir)
}

func (g *GitAdapter) Unpushed(ctx context.Context, dir, upstream string) ([]string, error) {
	return gitx.Unpushed(ctx, g.Runner, dir, upstream)
}

func (g *GitAdapter) Fetch(ctx context.Context, dir, remote string) error {
	return gitx.FetchRemote(ctx, g.Runner, dir, remote)
}

func (g *GitAdapter) Unpulled(ctx context.Context, dir, upstream string) ([]string, error) {
	return gitx.Unpulled(ctx, g.Runner, dir, upstream)
}

func (g *GitAdapter) Pull(ctx context.Context, dir, upstream string) (string, error) {
	return gitx.Pull(ctx, g.Runner, dir, upstream)
}
