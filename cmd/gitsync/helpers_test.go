package gitsync

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/skaphos/gitsync/internal/gitx"
)

type fakeResponse struct {
	out string
	err error
}

// fakeRunner answers git invocations keyed by "dir:args".
type fakeRunner struct {
	responses map[string]fakeResponse

	mu    sync.Mutex
	calls []string
}

func (f *fakeRunner) Run(_ context.Context, dir string, args ...string) (string, error) {
	key := dir + ":" + strings.Join(args, " ")
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()
	if resp, ok := f.responses[key]; ok {
		return resp.out, resp.err
	}
	return "", errors.New("unexpected call: " + key)
}

func (f *fakeRunner) called(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.calls {
		if c == key {
			return true
		}
	}
	return false
}

func (f *fakeRunner) tracked(dir, porcelain, unpulled string) {
	f.responses[dir+":status --porcelain --no-renames"] = fakeResponse{out: porcelain}
	f.responses[dir+":stash list"] = fakeResponse{}
	f.responses[dir+":rev-parse --abbrev-ref HEAD"] = fakeResponse{out: "main\n"}
	f.responses[dir+":rev-parse --abbrev-ref --symbolic-full-name HEAD@{upstream}"] = fakeResponse{out: "origin/main\n"}
	f.responses[dir+":log origin/main..HEAD --oneline"] = fakeResponse{}
	f.responses[dir+":fetch origin"] = fakeResponse{}
	f.responses[dir+":log HEAD..origin/main --oneline"] = fakeResponse{out: unpulled}
}

// useFakeGit routes every git invocation to runner for the rest of the test.
func useFakeGit(t *testing.T, runner gitx.Runner) {
	t.Helper()
	prevLocate, prevRunner := locateGit, newGitRunner
	locateGit = func([]string) (string, error) { return "/usr/bin/git", nil }
	newGitRunner = func(string, time.Duration) gitx.Runner { return runner }
	t.Cleanup(func() {
		locateGit = prevLocate
		newGitRunner = prevRunner
	})
}

// isolate points config resolution away from the developer's machine and
// runs the test from a fresh working directory.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	t.Setenv("GITSYNC_CONFIG", "")
	t.Setenv("NO_COLOR", "")
	work := filepath.Join(dir, "work")
	if err := os.MkdirAll(work, 0o755); err != nil {
		t.Fatal(err)
	}
	t.Chdir(work)
	return work
}

func mkRepo(t *testing.T, parts ...string) string {
	t.Helper()
	dir := filepath.Join(parts...)
	if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

type cmdResult struct {
	code   int
	stdout string
	stderr string
}

// runCommand executes the command tree with args and stdin, returning the
// exit code and captured streams.
func runCommand(t *testing.T, stdin string, args ...string) cmdResult {
	t.Helper()
	return runCommandInput(t, strings.NewReader(stdin), args...)
}

func runCommandInput(t *testing.T, stdin io.Reader, args ...string) cmdResult {
	t.Helper()
	resetFlags(rootCmd)
	flagVerbose, flagQuiet, flagConfig, flagNoColor = 0, false, "", false
	out, errOut := &bytes.Buffer{}, &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(errOut)
	rootCmd.SetIn(stdin)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetIn(nil)
		rootCmd.SetArgs(nil)
		cliLog.SetOutput(os.Stderr)
	})
	code := executeContext(context.Background())
	return cmdResult{code: code, stdout: out.String(), stderr: errOut.String()}
}
