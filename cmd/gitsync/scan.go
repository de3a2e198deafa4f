// SPDX-License-Identifier: MIT
package gitsync

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/skaphos/gitsync/internal/cliio"
	"github.com/skaphos/gitsync/internal/discovery"
	"github.com/skaphos/gitsync/internal/model"
	"github.com/skaphos/gitsync/internal/termstyle"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "List the git repositories found under the scan roots",
	RunE:  runScan,
}

func init() {
	addScanFlags(scanCmd)
	addFormatFlag(scanCmd, "table", "output format: table or json")
	addNoHeadersFlag(scanCmd)
	rootCmd.AddCommand(scanCmd)
}

type scanEntry struct {
	Name   string `json:"name"`
	Path   string `json:"path"`
	GitDir string `json:"git_dir"`
}

func runScan(cmd *cobra.Command, _ []string) error {
	format, err := validateFormat(flagString(cmd, "format"), "table", "json")
	if err != nil {
		return err
	}
	rt, err := loadRuntime(cmd, false)
	if err != nil {
		return err
	}
	results, err := rt.engine.Scan(cmd.Context(), rt.scan)
	if err != nil {
		return err
	}
	debugf("found %d repositories", len(results))

	out := cmd.OutOrStdout()
	if format == "json" {
		entries := make([]scanEntry, 0, len(results))
		for _, r := range results {
			entries = append(entries, scanEntry{Name: model.RepoName(r.Path), Path: r.Path, GitDir: r.GitDir})
		}
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(out, string(data))
		return err
	}

	noHeaders, _ := cmd.Flags().GetBool("no-headers")
	color := colorEnabled(cmd)
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			termstyle.Colorize(color, model.RepoName(r.Path), termstyle.Info),
			r.Path,
			gitDirKind(r),
		})
	}
	return cliio.WriteTable(out, color, noHeaders, []string{"NAME", "PATH", "GIT"}, rows)
}

// gitDirKind distinguishes ordinary clones from worktrees and submodules
// whose .git is a file.
func gitDirKind(r discovery.Result) string {
	if r.GitDir == filepath.Join(r.Path, ".git") {
		return "dir"
	}
	return "file"
}
