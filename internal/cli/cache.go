// ABOUTME: cache commands
// ABOUTME: Manages the on-disk copy of downloaded assets
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage downloaded assets",
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete cached assets",
	Args:  cobra.NoArgs,
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	if cfg.AssetURL == "" || cfg.CacheDir == "" {
		fmt.Fprintln(out, "no asset cache configured")
		return nil
	}

	f, err := newHTTPFetcher(cfg)
	if err != nil {
		return err
	}
	if err := f.Cleanup(); err != nil {
		return fmt.Errorf("clear %s: %w", cfg.CacheDir, err)
	}
	logger.Infow("Cleared asset cache", "dir", cfg.CacheDir)
	fmt.Fprintf(out, "cleared %s\n", cfg.CacheDir)
	return nil
}
