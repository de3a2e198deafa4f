// Package report turns repository snapshots and pull results into console
// batches. Every function is pure; callers decide where batches go.
package report

import (
	"fmt"
	"strings"

	"github.com/skaphos/gitsync/internal/console"
	"github.com/skaphos/gitsync/internal/model"
	"github.com/skaphos/gitsync/internal/termstyle"
)

const (
	MissingLocalBranch  = "Local branch is not set or could not be determined."
	MissingRemoteBranch = "Remote branch is not set or could not be determined."
)

type section struct {
	label string
	tag   string
	items func(model.RepoStatus) []string
}

var sections = []section{
	{"Untracked files", "untracked", func(s model.RepoStatus) []string { return s.Untracked }},
	{"Modified files", "modified", func(s model.RepoStatus) []string { return s.Modified }},
	{"Deleted files", "deleted", func(s model.RepoStatus) []string { return s.Deleted }},
	{"Staged files", "staged", func(s model.RepoStatus) []string { return s.Staged }},
	{"Conflicted files", "conflicted", func(s model.RepoStatus) []string { return s.Conflicted }},
	{"Stashed entries", "stashed", func(s model.RepoStatus) []string { return s.Stashes }},
	{"Unpushed commits", "unpushed", func(s model.RepoStatus) []string { return s.UnpushedCommits }},
	{"Unpulled commits", "unpulled", func(s model.RepoStatus) []string { return s.UnpulledCommits }},
}

// Header starts a batch with the repository label, name and path.
func Header(name, path string) console.Batch {
	var b console.Batch
	b.Text("Repository: ").
		Style(name, termstyle.ColorWhite, termstyle.ColorBlue).
		Textf(" (%s)\n", path)
	return b
}

// Status builds the report batch for a snapshot. The boolean is false when
// nothing needs attention and the batch should not be shown. A missing
// branch is always reported.
func Status(s model.RepoStatus) (console.Batch, bool) {
	if s.Failed() {
		return Failure(s), true
	}
	b := Header(s.Name, s.Path)
	if strings.TrimSpace(s.LocalBranch) == "" {
		b.Color(MissingLocalBranch+"\n", termstyle.ColorRed)
		return b, true
	}
	if strings.TrimSpace(s.RemoteBranch) == "" {
		b.Color(MissingRemoteBranch+"\n", termstyle.ColorRed)
		return b, true
	}
	b.Textf("Local Branch: %s\n", s.LocalBranch)
	b.Textf("Remote Branch: %s\n", s.RemoteBranch)

	actionable := false
	for _, sec := range sections {
		items := sec.items(s)
		if len(items) == 0 {
			continue
		}
		actionable = true
		b.Textf("%s: %d\n", sec.label, len(items))
		for _, item := range items {
			b.Color(fmt.Sprintf("    [%s] %s\n", sec.tag, item), termstyle.ColorYellow)
		}
	}
	if !actionable {
		return nil, false
	}
	return b, true
}

// Failure builds the red error batch for a snapshot whose refresh failed.
func Failure(s model.RepoStatus) console.Batch {
	b := Header(s.Name, s.Path)
	msg := s.Error
	if s.ErrorClass != "" {
		msg = fmt.Sprintf("[%s] %s", s.ErrorClass, s.Error)
	}
	b.Color(fmt.Sprintf("Error: %s\n", msg), termstyle.ColorRed)
	return b
}

// AllUpToDate is shown when no repository has commits to pull.
func AllUpToDate() console.Batch {
	var b console.Batch
	b.Color("All repositories are up to date.\n", termstyle.ColorGreen)
	return b
}

// Candidates lists the repositories that are safe to pull.
func Candidates(statuses []model.RepoStatus) console.Batch {
	var b console.Batch
	if len(statuses) == 0 {
		b.Color("No repositories are safe to pull automatically.\n", termstyle.ColorYellow)
		return b
	}
	b.Textf("Repositories safe to pull: %d\n", len(statuses))
	for _, s := range statuses {
		b.Text("    ").
			Style(s.Name, termstyle.ColorWhite, termstyle.ColorBlue).
			Textf(" (%s) %s: %d new commit(s)\n", s.Path, s.RemoteBranch, len(s.UnpulledCommits))
	}
	return b
}

// PullResult reports the outcome of a single pull.
func PullResult(r model.PullResult) console.Batch {
	var b console.Batch
	if r.OK {
		b.Color("Pulled ", termstyle.ColorGreen)
	} else {
		b.Color("Failed to pull ", termstyle.ColorRed)
	}
	b.Style(r.Name, termstyle.ColorWhite, termstyle.ColorBlue).Textf(" (%s)", r.Path)
	if r.RemoteBranch != "" {
		b.Textf(" from %s", r.RemoteBranch)
	}
	b.Text("\n")
	if !r.OK {
		b.Color(fmt.Sprintf("    %s\n", r.Error), termstyle.ColorRed)
		return b
	}
	for _, line := range strings.Split(strings.TrimRight(r.Output, "\n"), "\n") {
		if strings.TrimSpace(line) != "" {
			b.Textf("    %s\n", line)
		}
	}
	return b
}

// Summary totals a pull phase.
func Summary(results []model.PullResult) console.Batch {
	ok := 0
	for _, r := range results {
		if r.OK {
			ok++
		}
	}
	var b console.Batch
	color := termstyle.ColorGreen
	if ok != len(results) {
		color = termstyle.ColorRed
	}
	b.Color(fmt.Sprintf("Pulled %d of %d repositories.\n", ok, len(results)), color)
	return b
}
