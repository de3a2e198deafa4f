//go:build integration

package engine_test

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/gitsync/internal/config"
	"github.com/skaphos/gitsync/internal/engine"
	"github.com/skaphos/gitsync/internal/gitx"
	"github.com/skaphos/gitsync/internal/vcs"
)

var _ = Describe("Engine integration", func() {
	It("detects and pulls a clean clone that is behind its upstream", func() {
		base := GinkgoT().TempDir()
		remote := filepath.Join(base, "remote.git")
		seed := filepath.Join(base, "seed")
		root := filepath.Join(base, "work")
		clone := filepath.Join(root, "app")

		runGit("", "init", "--bare", "-b", "main", remote)
		runGit("", "clone", remote, seed)
		commitFile(seed, "README.md", "one\n", "initial")
		runGit(seed, "push", "origin", "HEAD:main")
		runGit("", "clone", remote, clone)
		commitFile(seed, "README.md", "two\n", "second")
		runGit(seed, "push", "origin", "HEAD:main")

		cfg := config.DefaultConfig()
		eng := engine.New(&cfg, vcs.NewGitAdapter(&gitx.GitRunner{Timeout: gitx.DefaultTimeout}), nil)
		statuses, err := eng.Check(context.Background(), engine.CheckOptions{
			ScanOptions: engine.ScanOptions{Roots: []string{root}},
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(statuses).To(HaveLen(1))
		Expect(statuses[0].Error).To(BeEmpty())
		Expect(statuses[0].RemoteBranch).To(Equal("origin/main"))
		Expect(statuses[0].UnpulledCommits).To(HaveLen(1))

		candidates := engine.PullCandidates(statuses)
		Expect(candidates).To(HaveLen(1))
		results, err := eng.PullAll(context.Background(), candidates, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(results[0].OK).To(BeTrue(), results[0].Error)

		after, err := eng.InspectRepo(context.Background(), clone)
		Expect(err).NotTo(HaveOccurred())
		Expect(after.IsUpToDate()).To(BeTrue())
	})

	It("marks a repository with local edits as unsafe", func() {
		base := GinkgoT().TempDir()
		repo := filepath.Join(base, "repo")
		runGit("", "init", "-b", "main", repo)
		commitFile(repo, "a.txt", "a\n", "initial")
		Expect(os.WriteFile(filepath.Join(repo, "a.txt"), []byte("changed\n"), 0o644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(repo, "new file.txt"), []byte("x\n"), 0o644)).To(Succeed())

		eng := engine.New(nil, vcs.NewGitAdapter(nil), nil)
		status, err := eng.InspectRepo(context.Background(), repo)
		Expect(err).NotTo(HaveOccurred())
		Expect(status.Modified).To(Equal([]string{"a.txt"}))
		Expect(status.Untracked).To(Equal([]string{"new file.txt"}))
		Expect(status.RemoteBranch).To(BeEmpty())
		Expect(status.IsSafeToPull()).To(BeFalse())
	})
})

func commitFile(repo, name, content, message string) {
	GinkgoHelper()
	Expect(os.WriteFile(filepath.Join(repo, name), []byte(content), 0o644)).To(Succeed())
	runGit(repo, "add", name)
	runGit(repo, "-c", "user.name=gitsync", "-c", "user.email=gitsync@example.com", "commit", "-q", "-m", message)
}

func runGit(dir string, args ...string) string {
	GinkgoHelper()
	cmd := exec.Command("git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	Expect(err).NotTo(HaveOccurred(), stderr.String())
	return strings.TrimSpace(string(out))
}
