// SPDX-License-Identifier: MIT
package gitsync

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/skaphos/gitsync/internal/config"
	"github.com/skaphos/gitsync/internal/discovery"
	"github.com/skaphos/gitsync/internal/strutil"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Bootstrap a gitsync configuration",
	Long: "Creates a gitsync config file in the current directory by default. " +
		"Without --roots the new config scans the directory it lives in.",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		cfgPath, err := config.InitConfigPath(flagConfig, cwd)
		if err != nil {
			return err
		}
		if _, err := os.Stat(cfgPath); err == nil {
			if !force {
				return fmt.Errorf("config already exists at %q (use --force to overwrite)", cfgPath)
			}
			if err := os.Remove(cfgPath); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove existing config %q: %w", cfgPath, err)
			}
		}

		cfg := config.DefaultConfig()
		if raw := flagString(cmd, "roots"); raw != "" {
			cfg.Scan.RootDirectories = strutil.SplitCSV(raw)
		} else {
			cfg.Scan.RootDirectories = []string{"."}
		}
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "Wrote config to %s\n", cfgPath); err != nil {
			return err
		}

		results, err := discovery.Scan(cmd.Context(), discovery.Options{
			Roots:       config.ResolvePaths(cfgPath, cfg.Scan.RootDirectories),
			IgnoreNames: cfg.Scan.IgnoreDirectoryNames,
		})
		if err != nil {
			return err
		}
		infof("found %d repositories under the configured roots", len(results))
		return nil
	},
}

func init() {
	initCmd.Flags().Bool("force", false, "overwrite existing config without prompting")
	initCmd.Flags().String("roots", "", "comma-separated root directories to record in the new config")

	rootCmd.AddCommand(initCmd)
}
