// ABOUTME: progress commands
// ABOUTME: Shows and resets stored learner progress
package cli

import (
	"fmt"

	"github.com/slidesounds/slidesounds-go/internal/progress"
	"github.com/slidesounds/slidesounds-go/pkg/curriculum"
	"github.com/spf13/cobra"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Inspect learner progress",
}

var progressShowCmd = &cobra.Command{
	Use:   "show",
	Short: "List completed words",
	Args:  cobra.NoArgs,
	RunE:  runProgressShow,
}

var progressResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear completed words and the tutorial flag",
	Args:  cobra.NoArgs,
	RunE:  runProgressReset,
}

func init() {
	rootCmd.AddCommand(progressCmd)
	progressCmd.AddCommand(progressShowCmd, progressResetCmd)
}

func runProgressShow(cmd *cobra.Command, args []string) error {
	store, err := progress.Open(cmd.Context(), cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	words, err := store.CompletedWords(cmd.Context())
	if err != nil {
		return err
	}
	seen, err := store.HasSeenTutorial(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d/%d words complete\n", len(words), curriculum.Len())
	for _, id := range words {
		fmt.Fprintf(out, "  %s\n", id)
	}
	fmt.Fprintf(out, "tutorial seen: %v\n", seen)
	return nil
}

func runProgressReset(cmd *cobra.Command, args []string) error {
	store, err := progress.Open(cmd.Context(), cfg.DBPath)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Reset(cmd.Context()); err != nil {
		return err
	}
	logger.Infow("Progress reset", "db", cfg.DBPath)
	fmt.Fprintln(cmd.OutOrStdout(), "progress cleared")
	return nil
}
