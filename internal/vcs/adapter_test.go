package vcs_test

import (
	"context"
	"errors"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/gitsync/internal/gitx"
	"github.com/skaphos/gitsync/internal/vcs"
)

type runnerStub struct {
	responses map[string]struct {
		out string
		err error
	}
}

func (r *runnerStub) Run(_ context.Context, dir string, args ...string) (string, error) {
	key := dir + ":" + strings.Join(args, " ")
	if resp, ok := r.responses[key]; ok {
		return resp.out, resp.err
	}
	return "", errors.New("unexpected " + key)
}

var _ = Describe("GitAdapter", func() {
	var (
		ctx     context.Context
		adapter *vcs.GitAdapter
	)

	BeforeEach(func() {
		ctx = context.Background()
		adapter = vcs.NewGitAdapter(&runnerStub{responses: map[string]struct {
			out string
			err error
		}{
			"/repo:status --porcelain --no-renames":                             {out: "M  staged.go\n M edited.go\n"},
			"/repo:stash list":                                                  {out: ""},
			"/repo:rev-parse --abbrev-ref HEAD":                                 {out: "main\n"},
			"/repo:rev-parse --abbrev-ref --symbolic-full-name HEAD@{upstream}": {out: "origin/main\n"},
			"/repo:log origin/main..HEAD --oneline":                             {out: ""},
			"/repo:fetch origin":                                                {out: ""},
			"/repo:log HEAD..origin/main --oneline":                             {out: "1234567 upstream fix\n"},
			"/repo:pull origin main":                                            {out: "Fast-forward\n"},
		}})
	})

	It("delegates every refresh step to gitx", func() {
		wt, err := adapter.WorkingTree(ctx, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(wt.Staged).To(Equal([]string{"staged.go"}))
		Expect(wt.Modified).To(Equal([]string{"edited.go"}))

		stashes, err := adapter.Stashes(ctx, "/repo")
		Expect(err).NotTo(HaveOccurred())
		Expect(stashes).To(BeEmpty())

		Expect(adapter.LocalBranch(ctx, "/repo")).To(Equal("main"))
		Expect(adapter.Upstream(ctx, "/repo")).To(Equal("origin/main"))

		unpushed, err := adapter.Unpushed(ctx, "/repo", "origin/main")
		Expect(err).NotTo(HaveOccurred())
		Expect(unpushed).To(BeEmpty())

		Expect(adapter.Fetch(ctx, "/repo", "origin")).To(Succeed())

		unpulled, err := adapter.Unpulled(ctx, "/repo", "origin/main")
		Expect(err).NotTo(HaveOccurred())
		Expect(unpulled).To(Equal([]string{"1234567 upstream fix"}))

		out, err := adapter.Pull(ctx, "/repo", "origin/main")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("Fast-forward\n"))
	})

	It("surfaces fetch failures as ErrFetchFailed", func() {
		err := adapter.Fetch(ctx, "/other", "origin")
		Expect(errors.Is(err, gitx.ErrFetchFailed)).To(BeTrue())
	})

	It("defaults to a real git runner", func() {
		def := vcs.NewGitAdapter(nil)
		runner, ok := def.Runner.(*gitx.GitRunner)
		Expect(ok).To(BeTrue())
		Expect(runner.Timeout).To(Equal(gitx.DefaultTimeout))
	})
})
