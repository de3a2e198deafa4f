// SPDX-License-Identifier: MIT
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/skaphos/gitsync/internal/config"
	"github.com/skaphos/gitsync/internal/discovery"
	"github.com/skaphos/gitsync/internal/engine"
	"github.com/skaphos/gitsync/internal/strutil"
	"github.com/skaphos/gitsync/internal/vcs"
)

type metric struct {
	NsPerOp float64 `json:"ns_per_op"`
}

type runRecord struct {
	Timestamp string            `json:"timestamp"`
	Commit    string            `json:"commit"`
	GoVersion string            `json:"go_version"`
	Repos     int               `json:"repos"`
	Latency   string            `json:"latency"`
	Runs      int               `json:"runs"`
	Metrics   map[string]metric `json:"metrics"`
}

func main() {
	historyPath := flag.String("history", "perf/history.jsonl", "path to perf history jsonl")
	repoCount := flag.Int("repos", 500, "number of synthetic repositories")
	width := flag.Int("width", 20, "repositories per synthetic group directory")
	latency := flag.Duration("latency", 5*time.Millisecond, "simulated duration of each git invocation")
	levels := flag.String("concurrency", "0,4,16", "comma-separated refresh concurrency caps (0 = unbounded)")
	runs := flag.Int("runs", 3, "measurements per scenario")
	flag.Parse()

	caps, err := parseLevels(*levels)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	root, err := os.MkdirTemp("", "gitsync-perf-*")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create tree: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = os.RemoveAll(root) }()
	if err := buildTree(root, *repoCount, *width); err != nil {
		fmt.Fprintf(os.Stderr, "build tree: %v\n", err)
		os.Exit(1)
	}

	record := runRecord{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Commit:    gitShortCommit(),
		GoVersion: runtime.Version(),
		Repos:     *repoCount,
		Latency:   latency.String(),
		Runs:      *runs,
		Metrics:   map[string]metric{},
	}

	ctx := context.Background()
	var paths []string
	record.Metrics["Scan"] = measure(*runs, func() error {
		results, err := discovery.Scan(ctx, discovery.Options{Roots: []string{root}})
		paths = discovery.Paths(results)
		return err
	})
	if len(paths) != *repoCount {
		fmt.Fprintf(os.Stderr, "scan found %d repositories, expected %d\n", len(paths), *repoCount)
		os.Exit(1)
	}

	cfg := config.DefaultConfig()
	eng := engine.New(&cfg, vcs.NewGitAdapter(&latencyRunner{delay: *latency}), nil)
	for _, limit := range caps {
		name := "Refresh/unbounded"
		if limit > 0 {
			name = fmt.Sprintf("Refresh/cap-%d", limit)
		}
		record.Metrics[name] = measure(*runs, func() error {
			_, err := eng.Refresh(ctx, paths, engine.RefreshOptions{Concurrency: limit})
			return err
		})
	}

	previous, _ := loadLastRecord(*historyPath)
	if err := appendRecord(*historyPath, record); err != nil {
		fmt.Fprintf(os.Stderr, "append history: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("updated perf history: %s\n", *historyPath)
	printSummary(record, previous)
}

// latencyRunner answers every refresh step for a clean repository one commit
// behind origin/main, sleeping to simulate process startup.
type latencyRunner struct {
	delay time.Duration
}

func (r *latencyRunner) Run(ctx context.Context, _ string, args ...string) (string, error) {
	select {
	case <-time.After(r.delay):
	case <-ctx.Done():
		return "", ctx.Err()
	}
	switch strings.Join(args, " ") {
	case "rev-parse --abbrev-ref HEAD":
		return "main\n", nil
	case "rev-parse --abbrev-ref --symbolic-full-name HEAD@{upstream}":
		return "origin/main\n", nil
	case "log HEAD..origin/main --oneline":
		return "abc1234 upstream change\n", nil
	default:
		return "", nil
	}
}

// buildTree lays out count repositories in group directories of width each,
// with one plain directory per group for the scanner to walk through.
func buildTree(root string, count, width int) error {
	if width <= 0 {
		width = 1
	}
	for i := range count {
		group := filepath.Join(root, fmt.Sprintf("group-%03d", i/width))
		if err := os.MkdirAll(filepath.Join(group, "docs"), 0o755); err != nil {
			return err
		}
		if err := os.MkdirAll(filepath.Join(group, fmt.Sprintf("repo-%04d", i), ".git"), 0o755); err != nil {
			return err
		}
	}
	return nil
}

func measure(runs int, fn func() error) metric {
	if runs <= 0 {
		runs = 1
	}
	var total time.Duration
	for range runs {
		start := time.Now()
		if err := fn(); err != nil {
			fmt.Fprintf(os.Stderr, "run failed: %v\n", err)
			os.Exit(1)
		}
		total += time.Since(start)
	}
	return metric{NsPerOp: float64(total.Nanoseconds()) / float64(runs)}
}

func parseLevels(raw string) ([]int, error) {
	parts := strutil.SplitCSV(raw)
	if len(parts) == 0 {
		return nil, fmt.Errorf("no concurrency levels provided")
	}
	out := make([]int, 0, len(parts))
	for _, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("invalid concurrency level %q", part)
		}
		out = append(out, n)
	}
	return out, nil
}

func gitShortCommit() string {
	out, err := exec.Command("git", "rev-parse", "--short", "HEAD").Output()
	if err != nil {
		return "unknown"
	}
	return strings.TrimSpace(string(out))
}

func appendRecord(path string, record runRecord) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	line, err := json.Marshal(record)
	if err != nil {
		return err
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		return err
	}
	return nil
}

func loadLastRecord(path string) (*runRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	scanner := bufio.NewScanner(f)
	var last string
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			last = line
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if last == "" {
		return nil, fmt.Errorf("history file is empty")
	}
	var record runRecord
	if err := json.Unmarshal([]byte(last), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func printSummary(current runRecord, previous *runRecord) {
	names := make([]string, 0, len(current.Metrics))
	for name := range current.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("perf summary (%d repos, %s per git call):\n", current.Repos, current.Latency)
	for _, name := range names {
		m := current.Metrics[name]
		ms := m.NsPerOp / float64(time.Millisecond)
		if previous == nil {
			fmt.Printf("  %-24s %10.2fms\n", name, ms)
			continue
		}
		prev, ok := previous.Metrics[name]
		if !ok || prev.NsPerOp == 0 {
			fmt.Printf("  %-24s %10.2fms\n", name, ms)
			continue
		}
		deltaPct := ((m.NsPerOp - prev.NsPerOp) / prev.NsPerOp) * 100
		fmt.Printf("  %-24s %10.2fms (%+.2f%% vs previous)\n", name, ms, deltaPct)
	}
}
