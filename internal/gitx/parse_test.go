// SPDX-License-Identifier: MIT
package gitx_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/gitsync/internal/gitx"
)

var _ = Describe("ClassifyStatusCode", func() {
	DescribeTable("maps porcelain codes by precedence",
		func(code string, want gitx.FileState) {
			Expect(gitx.ClassifyStatusCode(code[0], code[1])).To(Equal(want))
		},
		Entry("untracked", "??", gitx.FileUntracked),
		Entry("ignored", "!!", gitx.FileIgnored),
		Entry("both modified", "UU", gitx.FileConflicted),
		Entry("added by us", "AU", gitx.FileConflicted),
		Entry("deleted by us", "DU", gitx.FileConflicted),
		Entry("added by them", "UA", gitx.FileConflicted),
		Entry("deleted by them", "UD", gitx.FileConflicted),
		Entry("both added", "AA", gitx.FileConflicted),
		Entry("both deleted", "DD", gitx.FileConflicted),
		Entry("worktree modified", " M", gitx.FileModified),
		Entry("worktree type change", " T", gitx.FileModified),
		Entry("worktree renamed", " R", gitx.FileModified),
		Entry("worktree copied", " C", gitx.FileModified),
		Entry("staged and modified", "MM", gitx.FileModified),
		Entry("added then modified", "AM", gitx.FileModified),
		Entry("renamed then modified", "RM", gitx.FileModified),
		Entry("worktree deleted", " D", gitx.FileDeleted),
		Entry("staged then deleted", "MD", gitx.FileDeleted),
		Entry("added then deleted", "AD", gitx.FileDeleted),
		Entry("index modified", "M ", gitx.FileStaged),
		Entry("index type change", "T ", gitx.FileStaged),
		Entry("index added", "A ", gitx.FileStaged),
		Entry("index deleted", "D ", gitx.FileStaged),
		Entry("index renamed", "R ", gitx.FileStaged),
		Entry("index copied", "C ", gitx.FileStaged),
		Entry("unchanged", "  ", gitx.FileIgnored),
	)

	It("is total over every two-character code", func() {
		alphabet := " MTADRCU?!"
		for i := 0; i < len(alphabet); i++ {
			for j := 0; j < len(alphabet); j++ {
				state := gitx.ClassifyStatusCode(alphabet[i], alphabet[j])
				Expect(state.String()).To(BeElementOf("untracked", "conflicted", "modified", "deleted", "staged", "ignored"))
			}
		}
	})
})

var _ = Describe("ParsePorcelainStatus", func() {
	It("returns empty lists for empty output", func() {
		c := gitx.ParsePorcelainStatus("")
		Expect(c.Untracked).To(BeEmpty())
		Expect(c.Modified).To(BeEmpty())
		Expect(c.Deleted).To(BeEmpty())
		Expect(c.Staged).To(BeEmpty())
		Expect(c.Conflicted).To(BeEmpty())
	})

	It("classifies a mixed listing", func() {
		output := "?? newfile.txt\n M changed.go\nD  removed.go\nUU conflict.md\n"
		c := gitx.ParsePorcelainStatus(output)
		Expect(c.Untracked).To(Equal([]string{"newfile.txt"}))
		Expect(c.Modified).To(Equal([]string{"changed.go"}))
		Expect(c.Staged).To(Equal([]string{"removed.go"}))
		Expect(c.Conflicted).To(Equal([]string{"conflict.md"}))
		Expect(c.Deleted).To(BeEmpty())
	})

	It("keeps the leading space of the first entry", func() {
		c := gitx.ParsePorcelainStatus(" D gone.go\n")
		Expect(c.Deleted).To(Equal([]string{"gone.go"}))
		Expect(c.Staged).To(BeEmpty())
	})

	It("preserves output order within a list", func() {
		c := gitx.ParsePorcelainStatus("?? b.txt\n?? a.txt\n?? c.txt\n")
		Expect(c.Untracked).To(Equal([]string{"b.txt", "a.txt", "c.txt"}))
	})

	It("handles CRLF line endings", func() {
		c := gitx.ParsePorcelainStatus("?? one.txt\r\n M two.go\r\n")
		Expect(c.Untracked).To(Equal([]string{"one.txt"}))
		Expect(c.Modified).To(Equal([]string{"two.go"}))
	})

	It("unquotes paths with special characters", func() {
		c := gitx.ParsePorcelainStatus("?? \"with space.txt\"\n?? \"tab\\there.txt\"\n")
		Expect(c.Untracked).To(Equal([]string{"with space.txt", "tab\there.txt"}))
	})

	It("skips blank, short and ignored lines", func() {
		c := gitx.ParsePorcelainStatus("\n   \nM\n!! build/\n?? kept.txt\n")
		Expect(c.Untracked).To(Equal([]string{"kept.txt"}))
		Expect(c.Staged).To(BeEmpty())
	})
})

var _ = Describe("ParseLines", func() {
	It("returns non-blank lines verbatim", func() {
		lines := gitx.ParseLines("stash@{0}: WIP on main: abc fix\n\n  \nstash@{1}: On dev: spike\n")
		Expect(lines).To(Equal([]string{"stash@{0}: WIP on main: abc fix", "stash@{1}: On dev: spike"}))
	})

	It("returns nil for empty output", func() {
		Expect(gitx.ParseLines("")).To(BeNil())
	})
})

var _ = Describe("SplitUpstream", func() {
	It("splits at the first slash", func() {
		remote, branch, ok := gitx.SplitUpstream("origin/feature/login")
		Expect(ok).To(BeTrue())
		Expect(remote).To(Equal("origin"))
		Expect(branch).To(Equal("feature/login"))
	})

	It("rejects refs without a branch part", func() {
		_, _, ok := gitx.SplitUpstream("origin")
		Expect(ok).To(BeFalse())
		_, _, ok = gitx.SplitUpstream("origin/")
		Expect(ok).To(BeFalse())
		_, _, ok = gitx.SplitUpstream("")
		Expect(ok).To(BeFalse())
	})

	It("derives the remote name", func() {
		Expect(gitx.RemoteName("upstream/release/1.2")).To(Equal("upstream"))
		Expect(gitx.RemoteName("origin")).To(Equal("origin"))
	})
})
