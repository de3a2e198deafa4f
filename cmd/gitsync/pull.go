// SPDX-License-Identifier: MIT
package gitsync

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/skaphos/gitsync/internal/cliio"
	"github.com/skaphos/gitsync/internal/console"
	"github.com/skaphos/gitsync/internal/engine"
	"github.com/skaphos/gitsync/internal/model"
	"github.com/skaphos/gitsync/internal/report"
	"github.com/skaphos/gitsync/internal/termstyle"
)

// PullPrompt asks for confirmation before pulling.
const PullPrompt = "Pull the repositories listed above? [y/n]: "

type syncOptions struct {
	yes    bool
	dryRun bool
}

var pullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Check every repository and pull the ones that are safe",
	Long: "Checks every discovered repository, reports local changes, stashes and unpushed or unpulled " +
		"commits, then offers to pull repositories that are clean and behind their upstream.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runSync(cmd, syncOptionsFromFlags(cmd))
	},
}

func init() {
	addScanFlags(pullCmd)
	addRefreshFlags(pullCmd)
	addPullFlags(pullCmd)
	rootCmd.AddCommand(pullCmd)
}

func syncOptionsFromFlags(cmd *cobra.Command) syncOptions {
	yes, _ := cmd.Flags().GetBool("yes")
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	return syncOptions{yes: yes, dryRun: dryRun}
}

func runSync(cmd *cobra.Command, opts syncOptions) error {
	rt, err := loadRuntime(cmd, true)
	if err != nil {
		return err
	}
	return withChannel(cmd, func(ch *console.Channel) error {
		return syncRepos(cmd, rt, ch, opts)
	})
}

func syncRepos(cmd *cobra.Command, rt *commandRuntime, ch *console.Channel, opts syncOptions) error {
	ctx := cmd.Context()
	statuses, err := rt.engine.Check(ctx, engine.CheckOptions{
		ScanOptions: rt.scan,
		RefreshOptions: engine.RefreshOptions{
			Concurrency: rt.concurrency,
			OnStatus:    enqueueStatus(ch),
		},
	})
	if err != nil {
		return err
	}
	debugf("checked %d repositories", len(statuses))
	noteRefreshFailures(statuses)

	if engine.AllUpToDate(statuses) {
		return ch.Enqueue(report.AllUpToDate())
	}
	candidates := engine.PullCandidates(statuses)
	if err := ch.Enqueue(report.Candidates(candidates)); err != nil {
		return err
	}
	if len(candidates) == 0 {
		return nil
	}
	if opts.dryRun {
		infof("dry run: not pulling %d repositories", len(candidates))
		return nil
	}
	if !opts.yes {
		if err := ch.Flush(ctx); err != nil {
			return err
		}
		ok, err := cliio.PromptYesNo(cmd.OutOrStdout(), cmd.InOrStdin(), PullPrompt)
		if err != nil {
			return err
		}
		if !ok {
			infof("pull skipped")
			return nil
		}
	}

	results, pullErr := rt.engine.PullAll(ctx, candidates, func(r model.PullResult) {
		_ = ch.Enqueue(report.PullResult(r))
	})
	if err := ch.Enqueue(report.Summary(results)); err != nil {
		return err
	}
	for _, r := range results {
		if !r.OK {
			raiseExitCode(2)
			break
		}
	}
	if pullErr != nil {
		return pullErr
	}
	if len(results) > 1 {
		if err := ch.Flush(ctx); err != nil {
			return err
		}
		return writePullTable(cmd, results)
	}
	return nil
}

// withChannel runs fn with a report channel on stdout. A failure of fn is
// written to the channel after the reports that preceded it, then the
// channel is drained.
func withChannel(cmd *cobra.Command, fn func(ch *console.Channel) error) error {
	ch := newChannel(cmd)
	runErr := fn(ch)
	var reported error
	if runErr != nil && ch.EnqueueError(runErr, "Error") == nil {
		reported = reportedError{err: runErr}
	}
	if closeErr := ch.Close(); closeErr != nil {
		return errors.Join(runErr, closeErr)
	}
	if reported != nil {
		return reported
	}
	return runErr
}

func enqueueStatus(ch *console.Channel) engine.StatusCallback {
	return func(s model.RepoStatus) {
		if b, ok := report.Status(s); ok {
			_ = ch.Enqueue(b)
		}
	}
}

func noteRefreshFailures(statuses []model.RepoStatus) {
	failed := 0
	for _, s := range statuses {
		if s.Failed() {
			failed++
		}
	}
	if failed > 0 {
		warnf("%d of %d repositories could not be checked", failed, len(statuses))
		raiseExitCode(1)
	}
}

// writePullTable prints one row per pulled repository after the summary.
func writePullTable(cmd *cobra.Command, results []model.PullResult) error {
	color := colorEnabled(cmd)
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		state := termstyle.Colorize(color, "pulled", termstyle.Healthy)
		if !r.OK {
			state = termstyle.Colorize(color, "failed", termstyle.Error)
			if r.ErrorClass != "" {
				state += " (" + r.ErrorClass + ")"
			}
		}
		rows = append(rows, []string{r.Name, r.RemoteBranch, state, r.Path})
	}
	return cliio.WriteTable(cmd.OutOrStdout(), color, false, []string{"NAME", "UPSTREAM", "RESULT", "PATH"}, rows)
}
