// SPDX-License-Identifier: MIT
package gitsync

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/skaphos/gitsync/internal/cliio"
	"github.com/skaphos/gitsync/internal/console"
	"github.com/skaphos/gitsync/internal/engine"
	"github.com/skaphos/gitsync/internal/model"
	"github.com/skaphos/gitsync/internal/report"
	"github.com/skaphos/gitsync/internal/termstyle"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Report the state of every repository without pulling",
	RunE:  runStatus,
}

func init() {
	addScanFlags(statusCmd)
	addRefreshFlags(statusCmd)
	addFormatFlag(statusCmd, "text", "output format: text, table, json or yaml")
	addNoHeadersFlag(statusCmd)
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	format, err := validateFormat(flagString(cmd, "format"), "text", "table", "json", "yaml")
	if err != nil {
		return err
	}
	rt, err := loadRuntime(cmd, true)
	if err != nil {
		return err
	}
	opts := engine.CheckOptions{
		ScanOptions:    rt.scan,
		RefreshOptions: engine.RefreshOptions{Concurrency: rt.concurrency},
	}

	if format != "text" {
		statuses, err := rt.engine.Check(cmd.Context(), opts)
		if err != nil {
			return err
		}
		noteRefreshFailures(statuses)
		noHeaders, _ := cmd.Flags().GetBool("no-headers")
		return writeStatuses(cmd.OutOrStdout(), format, noHeaders, colorEnabled(cmd), statuses)
	}

	return withChannel(cmd, func(ch *console.Channel) error {
		opts.OnStatus = enqueueStatus(ch)
		statuses, err := rt.engine.Check(cmd.Context(), opts)
		if err != nil {
			return err
		}
		noteRefreshFailures(statuses)
		if engine.AllUpToDate(statuses) {
			return ch.Enqueue(report.AllUpToDate())
		}
		return nil
	})
}

func writeStatuses(out io.Writer, format string, noHeaders, color bool, statuses []model.RepoStatus) error {
	if statuses == nil {
		statuses = []model.RepoStatus{}
	}
	switch format {
	case "json":
		data, err := json.MarshalIndent(statuses, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	case "yaml":
		data, err := yaml.Marshal(statuses)
		if err != nil {
			return err
		}
		_, err = out.Write(data)
		return err
	default:
		rows := make([][]string, 0, len(statuses))
		for _, s := range statuses {
			rows = append(rows, []string{
				s.Name,
				dash(s.LocalBranch),
				dash(s.RemoteBranch),
				strconv.Itoa(changeCount(s)),
				strconv.Itoa(len(s.UnpushedCommits)),
				strconv.Itoa(len(s.UnpulledCommits)),
				stateCell(color, s),
				s.Path,
			})
		}
		return cliio.WriteTable(out, color, noHeaders,
			[]string{"NAME", "BRANCH", "UPSTREAM", "CHANGES", "AHEAD", "BEHIND", "STATE", "PATH"}, rows)
	}
}

// repoState names the single most relevant condition of a snapshot.
func repoState(s model.RepoStatus) string {
	switch {
	case s.Failed():
		return "error"
	case s.LocalBranch == "" || s.RemoteBranch == "":
		return "no-upstream"
	case s.HasLocalChanges():
		return "dirty"
	case len(s.UnpushedCommits) > 0:
		return "ahead"
	case s.HasRemoteUpdates():
		return "behind"
	default:
		return "clean"
	}
}

func stateCell(color bool, s model.RepoStatus) string {
	state := repoState(s)
	switch state {
	case "error":
		return termstyle.Colorize(color, state, termstyle.Error)
	case "dirty", "ahead", "no-upstream":
		return termstyle.Colorize(color, state, termstyle.Warn)
	case "behind":
		return termstyle.Colorize(color, state, termstyle.Info)
	default:
		return termstyle.Colorize(color, state, termstyle.Healthy)
	}
}

func changeCount(s model.RepoStatus) int {
	return len(s.Untracked) + len(s.Modified) + len(s.Deleted) + len(s.Staged) + len(s.Conflicted) + len(s.Stashes)
}

func dash(v string) string {
	if v == "" {
		return "-"
	}
	return v
}
