package gitsync

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

const (
	noHeadersUsage = "when using table format, do not print headers"
)

func addFormatFlag(cmd *cobra.Command, def, usage string) {
	cmd.Flags().StringP("format", "o", def, usage)
}

func addNoHeadersFlag(cmd *cobra.Command) {
	cmd.Flags().Bool("no-headers", false, noHeadersUsage)
}

// addScanFlags registers the discovery overrides shared by every command
// that scans.
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().String("roots", "", "comma-separated root directories to scan (overrides config)")
	cmd.Flags().String("ignore-path", "", "comma-separated directories to skip (overrides config)")
	cmd.Flags().String("ignore-name", "", "comma-separated directory names to skip at any depth (overrides config)")
	cmd.Flags().String("exclude", "", "comma-separated glob patterns to exclude (overrides config)")
}

// addRefreshFlags registers the git execution overrides.
func addRefreshFlags(cmd *cobra.Command) {
	cmd.Flags().Int("concurrency", 0, "max parallel repository checks; 0 checks all at once (overrides config)")
	cmd.Flags().Int("timeout", 0, "seconds allowed per git command; 0 disables the limit (overrides config)")
	cmd.Flags().String("git", "", "path to the git executable (overrides config)")
}

func addPullFlags(cmd *cobra.Command) {
	cmd.Flags().BoolP("yes", "y", false, "pull without prompting")
	cmd.Flags().Bool("dry-run", false, "report what would be pulled without pulling")
}

func validateFormat(format string, allowed ...string) (string, error) {
	normalized := strings.ToLower(strings.TrimSpace(format))
	for _, a := range allowed {
		if normalized == a {
			return normalized, nil
		}
	}
	return "", fmt.Errorf("unsupported format %q (supported: %s)", format, strings.Join(allowed, ", "))
}
