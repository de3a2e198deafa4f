// Package gitsync contains the Cobra command tree for the gitsync CLI.
package gitsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/skaphos/gitsync/internal/logging"
)

var (
	// Global flags
	flagVerbose int
	flagQuiet   bool
	flagConfig  string
	flagNoColor bool
	// exitCode tracks the highest severity observed during a command run.
	exitCode int
	// cliLog receives diagnostics; it is rebuilt for each command run.
	cliLog = logging.Discard()
	// isTerminalFD is overridable in tests.
	isTerminalFD = term.IsTerminal
	// exitFunc is overridable in tests.
	exitFunc = os.Exit
)

var rootCmd = &cobra.Command{
	Use:   "gitsync",
	Short: "Check many git repositories and pull the ones that are safe",
	Long: "gitsync finds git repositories under the configured roots, checks each one concurrently " +
		"for local changes, stashes and unpushed or unpulled commits, and offers to pull every " +
		"repository that is clean and behind its upstream. Running gitsync without a subcommand is the same as `gitsync pull`.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		cliLog = logging.New(cmd.ErrOrStderr(), flagVerbose, flagQuiet)
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSync(cmd, syncOptionsFromFlags(cmd))
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&flagVerbose, "verbose", "v", "increase output verbosity (repeatable)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "suppress non-essential output")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "override config file path")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colored output")
	addScanFlags(rootCmd)
	addRefreshFlags(rootCmd)
	addPullFlags(rootCmd)
}

// Execute runs the root command.
func Execute() {
	exitFunc(ExecuteWithExitCode())
}

// ExecuteWithExitCode runs the root command and returns a shell-friendly exit code.
// Interrupts cancel the command context, which stops running git processes.
func ExecuteWithExitCode() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return executeContext(ctx)
}

func executeContext(ctx context.Context) int {
	exitCode = 0
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var reported reportedError
		if !errors.As(err, &reported) {
			fmt.Fprintln(rootCmd.ErrOrStderr(), "Error:", err)
		}
		return 3
	}
	return exitCode
}

// reportedError marks a fatal error already written to the report stream.
type reportedError struct {
	err error
}

func (e reportedError) Error() string { return e.err.Error() }

func (e reportedError) Unwrap() error { return e.err }

func raiseExitCode(code int) {
	// Keep the highest severity: 0 success, 1 warning, 2 error, 3 fatal.
	if code > exitCode {
		exitCode = code
	}
}

func infof(format string, args ...any) {
	cliLog.Infof(format, args...)
}

func debugf(format string, args ...any) {
	cliLog.Debugf(format, args...)
}

func warnf(format string, args ...any) {
	cliLog.Warnf(format, args...)
}

// logger exposes the CLI logger to the engine.
func logger() logrus.FieldLogger {
	return cliLog
}

// colorEnabled reports whether stdout is a terminal and color was not
// disabled by --no-color or a non-empty NO_COLOR.
func colorEnabled(cmd *cobra.Command) bool {
	if flagNoColor || strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		return false
	}
	file, ok := cmd.OutOrStdout().(*os.File)
	if !ok {
		return false
	}
	return isTerminalFD(int(file.Fd()))
}
