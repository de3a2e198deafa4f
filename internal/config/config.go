// Package config handles loading, saving, and resolving the gitsync
// configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"
)

const (
	// LocalConfigFilename is the per-directory gitsync config file.
	LocalConfigFilename = ".gitsync.yaml"
	// ConfigAPIVersion is the current config schema apiVersion.
	ConfigAPIVersion = "skaphos.io/gitsync/v1beta1"
	// ConfigKind is the current config schema kind.
	ConfigKind = "GitSyncConfig"
	// EnvConfig names an explicit config file or directory.
	EnvConfig = "GITSYNC_CONFIG"
)

// Git holds git executable settings.
type Git struct {
	// PossiblePaths are absolute git executable candidates tried before the
	// platform's conventional locations.
	PossiblePaths []string `yaml:"possible_paths"`
}

// Scan holds repository discovery settings.
type Scan struct {
	RootDirectories      []string `yaml:"root_directories"`
	IgnoreDirectoryPaths []string `yaml:"ignore_directory_paths"`
	IgnoreDirectoryNames []string `yaml:"ignore_directory_names"`
	Exclude              []string `yaml:"exclude"`
}

// Defaults holds default values for operations.
type Defaults struct {
	// Concurrency caps parallel refreshes. Zero means one goroutine per repository.
	Concurrency int `yaml:"concurrency"`
	// TimeoutSeconds bounds each git invocation. Zero disables the deadline.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// Config represents the gitsync configuration.
type Config struct {
	APIVersion string   `yaml:"apiVersion"`
	Kind       string   `yaml:"kind"`
	Git        Git      `yaml:"git"`
	Scan       Scan     `yaml:"scan"`
	Defaults   Defaults `yaml:"defaults"`
}

// DefaultConfig returns a Config with sensible defaults applied.
func DefaultConfig() Config {
	return Config{
		APIVersion: ConfigAPIVersion,
		Kind:       ConfigKind,
		Scan: Scan{
			IgnoreDirectoryNames: []string{"node_modules"},
		},
		Defaults: Defaults{
			Concurrency:    0,
			TimeoutSeconds: 120,
		},
	}
}

// Timeout returns the per-invocation git deadline.
func (c *Config) Timeout() time.Duration {
	if c == nil || c.Defaults.TimeoutSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Defaults.TimeoutSeconds) * time.Second
}

// Validate rejects values no command can act on.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if err := validateConfigGVK(c); err != nil {
		return err
	}
	if c.Defaults.Concurrency < 0 {
		return fmt.Errorf("defaults.concurrency must be >= 0, got %d", c.Defaults.Concurrency)
	}
	if c.Defaults.TimeoutSeconds < 0 {
		return fmt.Errorf("defaults.timeout_seconds must be >= 0, got %d", c.Defaults.TimeoutSeconds)
	}
	return nil
}

// ConfigDir returns the platform-appropriate config directory path.
// It checks, in order: the override parameter, GITSYNC_CONFIG env var,
// and finally os.UserConfigDir()/gitsync.
func ConfigDir(override string) (string, error) {
	if override != "" {
		if isConfigFilePath(override) {
			return filepath.Dir(override), nil
		}
		return override, nil
	}

	if env := os.Getenv(EnvConfig); env != "" {
		if isConfigFilePath(env) {
			return filepath.Dir(env), nil
		}
		return env, nil
	}

	base, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(base, "gitsync"), nil
}

// ConfigPath resolves the config file path from override/env/defaults.
func ConfigPath(override string) (string, error) {
	if override != "" {
		if isConfigFilePath(override) {
			return override, nil
		}
		return filepath.Join(override, "config.yaml"), nil
	}

	if env := os.Getenv(EnvConfig); env != "" {
		if isConfigFilePath(env) {
			return env, nil
		}
		return filepath.Join(env, "config.yaml"), nil
	}

	dir, err := ConfigDir("")
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// InitConfigPath resolves where "gitsync init" should write config.
// Order: explicit override, GITSYNC_CONFIG, then local dotfile in cwd.
func InitConfigPath(override, cwd string) (string, error) {
	if explicit(override) {
		return ConfigPath(override)
	}

	if strings.TrimSpace(cwd) == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(cwd, LocalConfigFilename), nil
}

// ResolveConfigPath resolves config for runtime commands.
// Order: explicit override, GITSYNC_CONFIG, nearest local dotfile in cwd/parents,
// then global platform config path.
func ResolveConfigPath(override, cwd string) (string, error) {
	if explicit(override) {
		return ConfigPath(override)
	}

	if strings.TrimSpace(cwd) == "" {
		var err error
		cwd, err = os.Getwd()
		if err != nil {
			return "", err
		}
	}

	localPath, err := FindNearestConfigPath(cwd)
	if err != nil {
		return "", err
	}
	if localPath != "" {
		return localPath, nil
	}

	return ConfigPath("")
}

// FindNearestConfigPath searches cwd and each parent directory for .gitsync.yaml.
// It returns an empty string when no local config file is found.
func FindNearestConfigPath(cwd string) (string, error) {
	dir := cwd
	for {
		candidate := filepath.Join(dir, LocalConfigFilename)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		} else if !os.IsNotExist(err) {
			return "", err
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}

// LoadResolved resolves and loads the runtime config. A missing file at the
// default locations yields DefaultConfig; a missing file that was named
// explicitly by flag or environment is an error.
func LoadResolved(override, cwd string) (*Config, string, error) {
	path, err := ResolveConfigPath(override, cwd)
	if err != nil {
		return nil, "", err
	}
	cfg, err := Load(path)
	if err == nil {
		return cfg, path, nil
	}
	if errors.Is(err, os.ErrNotExist) && !explicit(override) {
		def := DefaultConfig()
		return &def, "", nil
	}
	return nil, path, fmt.Errorf("load config %s: %w", path, err)
}

// Load reads the config file from the given path. Keys missing from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigGVK(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config to the given path.
func Save(cfg *Config, path string) error {
	if cfg == nil {
		return errors.New("config is nil")
	}
	applyConfigGVK(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// ResolvePath expands a leading ~ and resolves a relative path against the
// directory containing configPath. Without a config path, relative paths
// are returned cleaned.
func ResolvePath(configPath, p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	p = ExpandHome(p)
	if filepath.IsAbs(p) || strings.TrimSpace(configPath) == "" {
		return filepath.Clean(p)
	}
	return filepath.Clean(filepath.Join(filepath.Dir(configPath), p))
}

// ResolvePaths applies ResolvePath to each entry, dropping blanks.
func ResolvePaths(configPath string, paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if resolved := ResolvePath(configPath, p); resolved != "" {
			out = append(out, resolved)
		}
	}
	return out
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(p string) string {
	if p != "~" && !strings.HasPrefix(p, "~/") && !strings.HasPrefix(p, `~\`) {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}

func explicit(override string) bool {
	return override != "" || os.Getenv(EnvConfig) != ""
}

func isConfigFilePath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func applyConfigGVK(cfg *Config) {
	if cfg == nil {
		return
	}
	if strings.TrimSpace(cfg.APIVersion) == "" {
		cfg.APIVersion = ConfigAPIVersion
	}
	if strings.TrimSpace(cfg.Kind) == "" {
		cfg.Kind = ConfigKind
	}
}

func validateConfigGVK(cfg *Config) error {
	if cfg.APIVersion != ConfigAPIVersion {
		return fmt.Errorf("unsupported config apiVersion %q (expected %q)", cfg.APIVersion, ConfigAPIVersion)
	}
	if cfg.Kind != ConfigKind {
		return fmt.Errorf("unsupported config kind %q (expected %q)", cfg.Kind, ConfigKind)
	}
	return nil
}
