// Package gitx provides helpers for executing git commands and parsing
// their output. It shells out to the installed git binary.
package gitx

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single git invocation when no timeout is configured.
const DefaultTimeout = 120 * time.Second

// waitDelay bounds how long Run waits for output pipes after the process is killed.
const waitDelay = 5 * time.Second

// Runner executes git commands in a given repo directory.
// This interface allows mocking in tests.
type Runner interface {
	// Run executes a git command in the given directory and returns its
	// untrimmed stdout. Stderr text is folded into the returned error.
	Run(ctx context.Context, dir string, args ...string) (string, error)
}

// GitRunner is the default Runner implementation that shells out to git.
type GitRunner struct {
	// GitBin is the path to the git binary. Defaults to "git".
	GitBin string
	// Timeout is the deadline applied to each invocation. Zero disables it.
	Timeout time.Duration
}

// Run executes a git command. Cancellation or an expired deadline kills the
// whole process group started for the command.
func (g *GitRunner) Run(ctx context.Context, dir string, args ...string) (string, error) {
	bin := g.GitBin
	if bin == "" {
		bin = "git"
	}
	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	if strings.TrimSpace(dir) != "" {
		cmd.Dir = dir
	}
	// Never block on credential prompts; a hung prompt would only end at the deadline.
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	configureProcessGroup(cmd)
	cmd.WaitDelay = waitDelay

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = fmt.Errorf("%w (%v)", ctxErr, err)
		}
		errText := strings.TrimSpace(stderr.String())
		if errText != "" {
			return "", fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), errText, err)
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}
	return stdout.String(), nil
}

// WorkingTree classifies every entry of `git status --porcelain --no-renames`.
func WorkingTree(ctx context.Context, r Runner, dir string) (Classification, error) {
	out, err := r.Run(ctx, dir, "status", "--porcelain", "--no-renames")
	if err != nil {
		return Classification{}, err
	}
	return ParsePorcelainStatus(out), nil
}

// StashList returns one entry per `git stash list` line.
func StashList(ctx context.Context, r Runner, dir string) ([]string, error) {
	out, err := r.Run(ctx, dir, "stash", "list")
	if err != nil {
		return nil, err
	}
	return ParseLines(out), nil
}

// LocalBranch returns the current branch name, or "" when HEAD is detached,
// unborn, or cannot be resolved.
func LocalBranch(ctx context.Context, r Runner, dir string) string {
	out, err := r.Run(ctx, dir, "rev-parse", "--abbrev-ref", "HEAD")
	if err != nil {
		return ""
	}
	branch := strings.TrimSpace(out)
	if branch == "HEAD" {
		return ""
	}
	return branch
}

// UpstreamBranch returns the upstream of the current branch (for example
// "origin/main"). An unset upstream is not an error and yields "".
func UpstreamBranch(ctx context.Context, r Runner, dir string) string {
	out, err := r.Run(ctx, dir, "rev-parse", "--abbrev-ref", "--symbolic-full-name", "HEAD@{upstream}")
	if err != nil {
		return ""
	}
	return strings.TrimSpace(out)
}

// Log returns `git log <revRange> --oneline`, newest first.
func Log(ctx context.Context, r Runner, dir, revRange string) ([]string, error) {
	out, err := r.Run(ctx, dir, "log", revRange, "--oneline")
	if err != nil {
		return nil, err
	}
	return ParseLines(out), nil
}

// Unpushed lists commits on HEAD that upstream does not have.
func Unpushed(ctx context.Context, r Runner, dir, upstream string) ([]string, error) {
	return Log(ctx, r, dir, upstream+"..HEAD")
}

// Unpulled lists commits on upstream that HEAD does not have.
func Unpulled(ctx context.Context, r Runner, dir, upstream string) ([]string, error) {
	return Log(ctx, r, dir, "HEAD.."+upstream)
}

// FetchRemote refreshes remote-tracking refs for a single remote.
func FetchRemote(ctx context.Context, r Runner, dir, remote string) error {
	if _, err := r.Run(ctx, dir, "fetch", remote); err != nil {
		return fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}
	return nil
}

// Pull runs `git pull <remote> <branch>` for the given upstream ref and
// returns the captured output.
func Pull(ctx context.Context, r Runner, dir, upstream string) (string, error) {
	if strings.TrimSpace(upstream) == "" {
		return "", ErrNoUpstream
	}
	remote, branch, ok := SplitUpstream(upstream)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalidUpstream, upstream)
	}
	out, err := r.Run(ctx, dir, "pull", remote, branch)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrPullFailed, err)
	}
	return out, nil
}
