// Package engine orchestrates the core operations: scan, refresh, and pull.
// It coordinates between discovery, the vcs adapter, and the status model.
package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/skaphos/gitsync/internal/config"
	"github.com/skaphos/gitsync/internal/discovery"
	"github.com/skaphos/gitsync/internal/gitx"
	"github.com/skaphos/gitsync/internal/logging"
	"github.com/skaphos/gitsync/internal/model"
	"github.com/skaphos/gitsync/internal/sortutil"
	"github.com/skaphos/gitsync/internal/vcs"
)

// Engine is the core orchestrator for gitsync operations.
type Engine struct {
	cfg     *config.Config
	adapter vcs.Adapter
	log     *logrus.Entry
}

// New creates a new Engine. A nil adapter uses git with the default runner;
// a nil logger discards diagnostics.
func New(cfg *config.Config, adapter vcs.Adapter, logger logrus.FieldLogger) *Engine {
	if cfg == nil {
		def := config.DefaultConfig()
		cfg = &def
	}
	if adapter == nil {
		adapter = vcs.NewGitAdapter(nil)
	}
	return &Engine{
		cfg:     cfg,
		adapter: adapter,
		log:     logging.Component(logger, "engine"),
	}
}

// ScanOptions configures a scan operation.
type ScanOptions struct {
	Roots       []string
	IgnorePaths []string
	IgnoreNames []string
	Exclude     []string
	// OnSkip reports directories that could not be enumerated.
	OnSkip func(path string, err error)
}

// Scan discovers repositories below the configured roots.
func (e *Engine) Scan(ctx context.Context, opts ScanOptions) ([]discovery.Result, error) {
	if len(opts.Roots) == 0 {
		return nil, errors.New("no scan roots provided")
	}
	onSkip := opts.OnSkip
	if onSkip == nil {
		onSkip = func(path string, err error) {
			entry := e.log.WithField("path", path)
			if discovery.IsPermission(err) {
				entry.Warn("skipping directory: permission denied")
				return
			}
			entry.Warnf("skipping directory: %v", err)
		}
	}
	start := time.Now()
	results, err := discovery.Scan(ctx, discovery.Options{
		Roots:       opts.Roots,
		IgnorePaths: opts.IgnorePaths,
		IgnoreNames: opts.IgnoreNames,
		Exclude:     opts.Exclude,
		OnSkip:      onSkip,
	})
	if err != nil {
		return nil, err
	}
	e.log.WithFields(logrus.Fields{
		"roots":    len(opts.Roots),
		"found":    len(results),
		"duration": time.Since(start).Round(time.Millisecond),
	}).Debug("scan complete")
	return results, nil
}

// StatusCallback is invoked once per repository with its final snapshot.
// It runs on the worker goroutine that produced the snapshot, so it must be
// safe for concurrent use.
type StatusCallback func(model.RepoStatus)

// RefreshOptions configures a refresh of known repositories.
type RefreshOptions struct {
	// Concurrency caps parallel refreshes. Zero falls back to the config
	// default; zero there means one goroutine per repository.
	Concurrency int
	OnStatus    StatusCallback
}

// CheckOptions configures a full scan plus refresh.
type CheckOptions struct {
	ScanOptions
	RefreshOptions
}

// Check discovers repositories and refreshes each one concurrently. Results
// are ordered by name, then path.
func (e *Engine) Check(ctx context.Context, opts CheckOptions) ([]model.RepoStatus, error) {
	results, err := e.Scan(ctx, opts.ScanOptions)
	if err != nil {
		return nil, err
	}
	return e.Refresh(ctx, discovery.Paths(results), opts.RefreshOptions)
}

// Refresh inspects every path concurrently. A failing repository is
// recorded in-band and never stops its siblings. The returned error is
// non-nil only when ctx ended before every refresh finished.
func (e *Engine) Refresh(ctx context.Context, paths []string, opts RefreshOptions) ([]model.RepoStatus, error) {
	limit := opts.Concurrency
	if limit <= 0 {
		limit = e.cfg.Defaults.Concurrency
	}

	statuses := make([]model.RepoStatus, len(paths))
	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, path := range paths {
		g.Go(func() error {
			status := e.refreshOne(ctx, path)
			statuses[i] = status
			if opts.OnStatus != nil {
				opts.OnStatus(status)
			}
			return nil
		})
	}
	_ = g.Wait()

	sortutil.SortRepoStatuses(statuses)
	return statuses, ctx.Err()
}

func (e *Engine) refreshOne(ctx context.Context, path string) model.RepoStatus {
	start := time.Now()
	status, err := e.InspectRepo(ctx, path)
	fields := logrus.Fields{
		"repo":     status.Name,
		"path":     path,
		"duration": time.Since(start).Round(time.Millisecond),
	}
	if err != nil {
		// Keep failures in-band so the rest of the run still completes.
		failed := model.NewRepoStatus(path)
		failed.Error = err.Error()
		failed.ErrorClass = gitx.ClassifyError(err)
		e.log.WithFields(fields).WithField("class", failed.ErrorClass).Debugf("refresh failed: %v", err)
		return failed
	}
	e.log.WithFields(fields).Debug("refreshed")
	return status
}

// InspectRepo runs the refresh sequence for one repository and returns a
// new snapshot: working tree, stashes, branches, then unpushed and, after a
// fetch, unpulled commits. Missing branches are not errors.
func (e *Engine) InspectRepo(ctx context.Context, path string) (model.RepoStatus, error) {
	status := model.NewRepoStatus(path)

	tree, err := e.adapter.WorkingTree(ctx, path)
	if err != nil {
		return status, err
	}
	status.Untracked = tree.Untracked
	status.Modified = tree.Modified
	status.Deleted = tree.Deleted
	status.Staged = tree.Staged
	status.Conflicted = tree.Conflicted

	if status.Stashes, err = e.adapter.Stashes(ctx, path); err != nil {
		return status, err
	}

	status.LocalBranch = e.adapter.LocalBranch(ctx, path)
	status.RemoteBranch = e.adapter.Upstream(ctx, path)
	if status.RemoteBranch == "" {
		return status, nil
	}

	if status.UnpushedCommits, err = e.adapter.Unpushed(ctx, path, status.RemoteBranch); err != nil {
		return status, err
	}

	// An upstream without a remote part tracks a local branch; nothing to fetch.
	if remote, _, ok := gitx.SplitUpstream(status.RemoteBranch); ok {
		e.log.WithFields(logrus.Fields{"repo": status.Name, "remote": remote}).Trace("fetching")
		if err := e.adapter.Fetch(ctx, path, remote); err != nil {
			return status, err
		}
	}

	if status.UnpulledCommits, err = e.adapter.Unpulled(ctx, path, status.RemoteBranch); err != nil {
		return status, err
	}
	return status, nil
}

// AllUpToDate reports whether every repository refreshed and none has
// commits to pull. A failed refresh leaves the state unknown.
func AllUpToDate(statuses []model.RepoStatus) bool {
	for _, s := range statuses {
		if s.Failed() || !s.IsUpToDate() {
			return false
		}
	}
	return true
}

// PullCandidates returns the refreshed repositories that are behind their
// upstream and safe to pull, preserving input order.
func PullCandidates(statuses []model.RepoStatus) []model.RepoStatus {
	var out []model.RepoStatus
	for _, s := range statuses {
		if !s.Failed() && s.HasRemoteUpdates() && s.IsSafeToPull() {
			out = append(out, s)
		}
	}
	return out
}

// PullCallback is invoked after each pull completes.
type PullCallback func(model.PullResult)

// Pull pulls a single repository from its upstream.
func (e *Engine) Pull(ctx context.Context, status model.RepoStatus) model.PullResult {
	result := model.PullResult{
		Path:         status.Path,
		Name:         status.Name,
		RemoteBranch: status.RemoteBranch,
	}
	start := time.Now()
	out, err := e.adapter.Pull(ctx, status.Path, status.RemoteBranch)
	fields := logrus.Fields{
		"repo":     status.Name,
		"path":     status.Path,
		"duration": time.Since(start).Round(time.Millisecond),
	}
	if err != nil {
		result.Error = err.Error()
		result.ErrorClass = gitx.ClassifyError(err)
		e.log.WithFields(fields).Debugf("pull failed: %v", err)
		return result
	}
	result.OK = true
	result.Output = strings.TrimSpace(out)
	e.log.WithFields(fields).Debug("pulled")
	return result
}

// PullAll pulls candidates one at a time in order. Each outcome is reported
// independently; a failure does not stop later pulls. Cancellation stops
// before the next pull and returns the results so far.
func (e *Engine) PullAll(ctx context.Context, candidates []model.RepoStatus, onResult PullCallback) ([]model.PullResult, error) {
	results := make([]model.PullResult, 0, len(candidates))
	for _, status := range candidates {
		if err := ctx.Err(); err != nil {
			return results, fmt.Errorf("pull interrupted: %w", err)
		}
		result := e.Pull(ctx, status)
		results = append(results, result)
		if onResult != nil {
			onResult(result)
		}
	}
	return results, nil
}
