package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/gitsync/internal/config"
)

func setenv(key, value string) {
	prev, had := os.LookupEnv(key)
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(func() {
		if had {
			_ = os.Setenv(key, prev)
			return
		}
		_ = os.Unsetenv(key)
	})
}

// isolate points the user config dir at a temp dir and clears GITSYNC_CONFIG.
func isolate() string {
	home := GinkgoT().TempDir()
	setenv("HOME", home)
	setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	setenv("AppData", filepath.Join(home, "AppData"))
	setenv(config.EnvConfig, "")
	return home
}

var _ = Describe("Config", func() {
	BeforeEach(func() {
		isolate()
	})

	It("resolves config path from override directory", func() {
		path, err := config.ConfigPath(filepath.Join("C:", "tmp", "gitsync"))
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(HaveSuffix(filepath.Join("gitsync", "config.yaml")))
	})

	It("resolves config path from override file", func() {
		path, err := config.ConfigPath(filepath.Join("C:", "tmp", "custom.yml"))
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(HaveSuffix(filepath.Join("tmp", "custom.yml")))
	})

	It("resolves config path from env", func() {
		setenv(config.EnvConfig, filepath.Join("C:", "cfg", "config.yaml"))
		path, err := config.ConfigPath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(HaveSuffix(filepath.Join("cfg", "config.yaml")))
	})

	It("resolves init path to local dotfile by default", func() {
		dir := GinkgoT().TempDir()
		path, err := config.InitConfigPath("", dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(filepath.Join(dir, ".gitsync.yaml")))
	})

	It("resolves runtime config from nearest parent dotfile", func() {
		dir := GinkgoT().TempDir()
		parentPath := filepath.Join(dir, ".gitsync.yaml")
		Expect(os.WriteFile(parentPath, []byte("scan: {}\n"), 0o644)).To(Succeed())

		nested := filepath.Join(dir, "a", "b", "c")
		Expect(os.MkdirAll(nested, 0o755)).To(Succeed())

		path, err := config.ResolveConfigPath("", nested)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(parentPath))
	})

	It("prefers nearer dotfile over farther parent", func() {
		dir := GinkgoT().TempDir()
		Expect(os.WriteFile(filepath.Join(dir, ".gitsync.yaml"), []byte("scan: {}\n"), 0o644)).To(Succeed())

		childDir := filepath.Join(dir, "a", "b")
		Expect(os.MkdirAll(childDir, 0o755)).To(Succeed())
		childPath := filepath.Join(childDir, ".gitsync.yaml")
		Expect(os.WriteFile(childPath, []byte("scan: {}\n"), 0o644)).To(Succeed())

		path, err := config.ResolveConfigPath("", childDir)
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(childPath))
	})

	It("falls back to global runtime config when local dotfile is absent", func() {
		dir := GinkgoT().TempDir()
		path, err := config.ResolveConfigPath("", dir)
		Expect(err).NotTo(HaveOccurred())

		globalPath, err := config.ConfigPath("")
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(Equal(globalPath))
		Expect(path).To(HaveSuffix(filepath.Join("gitsync", "config.yaml")))
	})

	It("saves and loads config keeping defaults for missing keys", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "config.yaml")
		cfg := config.DefaultConfig()
		cfg.Scan.RootDirectories = []string{"repos"}
		cfg.Git.PossiblePaths = []string{"/opt/git/bin/git"}

		Expect(config.Save(&cfg, path)).To(Succeed())
		loaded, err := config.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Scan.RootDirectories).To(Equal([]string{"repos"}))
		Expect(loaded.Git.PossiblePaths).To(Equal([]string{"/opt/git/bin/git"}))
		Expect(loaded.Scan.IgnoreDirectoryNames).To(Equal([]string{"node_modules"}))
		Expect(loaded.Timeout()).To(Equal(120 * time.Second))
	})

	It("keeps an explicit zero timeout as no deadline", func() {
		path := filepath.Join(GinkgoT().TempDir(), "config.yaml")
		Expect(os.WriteFile(path, []byte("defaults:\n  timeout_seconds: 0\n  concurrency: 4\n"), 0o644)).To(Succeed())
		loaded, err := config.Load(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(loaded.Timeout()).To(BeZero())
		Expect(loaded.Defaults.Concurrency).To(Equal(4))
		Expect(loaded.Kind).To(Equal(config.ConfigKind))
	})

	It("rejects negative concurrency", func() {
		path := filepath.Join(GinkgoT().TempDir(), "config.yaml")
		Expect(os.WriteFile(path, []byte("defaults:\n  concurrency: -1\n"), 0o644)).To(Succeed())
		_, err := config.Load(path)
		Expect(err).To(MatchError(ContainSubstring("defaults.concurrency")))
	})

	It("uses defaults when no config file exists at the default locations", func() {
		cfg, path, err := config.LoadResolved("", GinkgoT().TempDir())
		Expect(err).NotTo(HaveOccurred())
		Expect(path).To(BeEmpty())
		Expect(*cfg).To(Equal(config.DefaultConfig()))
	})

	It("fails when an explicit config file is missing", func() {
		missing := filepath.Join(GinkgoT().TempDir(), "missing.yaml")
		_, _, err := config.LoadResolved(missing, "")
		Expect(err).To(MatchError(ContainSubstring("load config")))

		setenv(config.EnvConfig, missing)
		_, _, err = config.LoadResolved("", "")
		Expect(err).To(HaveOccurred())
	})

	It("resolves relative and home paths against the config file", func() {
		home := isolate()
		cfgPath := filepath.Join(string(filepath.Separator), "etc", "gitsync", "config.yaml")
		Expect(config.ResolvePath(cfgPath, "src")).To(Equal(filepath.Join(string(filepath.Separator), "etc", "gitsync", "src")))
		Expect(config.ResolvePath(cfgPath, "~/code")).To(Equal(filepath.Join(home, "code")))
		Expect(config.ResolvePath("", "a/../b")).To(Equal("b"))
		Expect(config.ResolvePaths(cfgPath, []string{" ", "/abs"})).To(Equal([]string{filepath.Clean("/abs")}))
	})
})
