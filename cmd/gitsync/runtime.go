package gitsync

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/skaphos/gitsync/internal/config"
	"github.com/skaphos/gitsync/internal/console"
	"github.com/skaphos/gitsync/internal/engine"
	"github.com/skaphos/gitsync/internal/gitx"
	"github.com/skaphos/gitsync/internal/strutil"
	"github.com/skaphos/gitsync/internal/termstyle"
	"github.com/skaphos/gitsync/internal/vcs"
)

var (
	// locateGit and newGitRunner are overridable in tests.
	locateGit    = gitx.LocateGit
	newGitRunner = func(bin string, timeout time.Duration) gitx.Runner {
		return &gitx.GitRunner{GitBin: bin, Timeout: timeout}
	}
)

// commandRuntime bundles the resolved configuration for one command run.
type commandRuntime struct {
	cfg         *config.Config
	cfgPath     string
	engine      *engine.Engine
	scan        engine.ScanOptions
	concurrency int
}

// loadRuntime resolves config, applies flag overrides and, when needGit is
// set, locates the git executable. Missing git is fatal.
func loadRuntime(cmd *cobra.Command, needGit bool) (*commandRuntime, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	cfg, cfgPath, err := config.LoadResolved(flagConfig, cwd)
	if err != nil {
		return nil, err
	}
	if cfgPath == "" {
		debugf("no config file found; using defaults")
	} else {
		debugf("using config %s", cfgPath)
	}

	rt := &commandRuntime{cfg: cfg, cfgPath: cfgPath}
	if err := applyOverrides(cmd, rt, cwd); err != nil {
		return nil, err
	}

	var runner gitx.Runner
	if needGit {
		candidates := cfg.Git.PossiblePaths
		if raw := flagString(cmd, "git"); raw != "" {
			candidates = []string{absFrom(cwd, config.ExpandHome(raw))}
		}
		bin, err := locateGit(candidates)
		if err != nil {
			return nil, err
		}
		debugf("using git %s", bin)
		runner = newGitRunner(bin, cfg.Timeout())
	}
	rt.engine = engine.New(cfg, vcs.NewGitAdapter(runner), logger())
	return rt, nil
}

func applyOverrides(cmd *cobra.Command, rt *commandRuntime, cwd string) error {
	cfg := rt.cfg
	scan := engine.ScanOptions{
		Roots:       config.ResolvePaths(rt.cfgPath, cfg.Scan.RootDirectories),
		IgnorePaths: config.ResolvePaths(rt.cfgPath, cfg.Scan.IgnoreDirectoryPaths),
		IgnoreNames: cfg.Scan.IgnoreDirectoryNames,
		Exclude:     cfg.Scan.Exclude,
	}
	if flagChanged(cmd, "roots") {
		scan.Roots = absAll(cwd, strutil.SplitCSV(flagString(cmd, "roots")))
	}
	if flagChanged(cmd, "ignore-path") {
		scan.IgnorePaths = absAll(cwd, strutil.SplitCSV(flagString(cmd, "ignore-path")))
	}
	if flagChanged(cmd, "ignore-name") {
		scan.IgnoreNames = strutil.SplitCSV(flagString(cmd, "ignore-name"))
	}
	if flagChanged(cmd, "exclude") {
		scan.Exclude = strutil.SplitCSV(flagString(cmd, "exclude"))
	}
	if len(scan.Roots) == 0 {
		debugf("no scan roots configured; scanning %s", cwd)
		scan.Roots = []string{cwd}
	}
	rt.scan = scan

	if flagChanged(cmd, "concurrency") {
		n, _ := cmd.Flags().GetInt("concurrency")
		if n < 0 {
			return fmt.Errorf("--concurrency must be >= 0, got %d", n)
		}
		cfg.Defaults.Concurrency = n
	}
	if flagChanged(cmd, "timeout") {
		n, _ := cmd.Flags().GetInt("timeout")
		if n < 0 {
			return fmt.Errorf("--timeout must be >= 0, got %d", n)
		}
		cfg.Defaults.TimeoutSeconds = n
	}
	rt.concurrency = cfg.Defaults.Concurrency
	return nil
}

// newChannel opens the report channel on the command's stdout.
func newChannel(cmd *cobra.Command) *console.Channel {
	return console.New(cmd.OutOrStdout(), termstyle.Profile(colorEnabled(cmd)))
}

func flagChanged(cmd *cobra.Command, name string) bool {
	f := cmd.Flags().Lookup(name)
	return f != nil && f.Changed
}

func flagString(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func absAll(cwd string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, absFrom(cwd, config.ExpandHome(p)))
	}
	return out
}

func absFrom(cwd, p string) string {
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(cwd, p)
}
