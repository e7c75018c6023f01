// ABOUTME: check command
// ABOUTME: Verifies every curriculum word has audio for all of its units
package cli

import (
	"fmt"
	"strings"

	"github.com/slidesounds/slidesounds-go/pkg/curriculum"
	"github.com/slidesounds/slidesounds-go/pkg/phonics"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check curriculum coverage against the asset store",
	Long: `Segment every curriculum word and report graphemes without audio.

With --load, every referenced phoneme is also fetched and decoded.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)

	checkCmd.Flags().Bool("load", false, "Fetch and decode every phoneme asset")
}

func runCheck(cmd *cobra.Command, args []string) error {
	load, _ := cmd.Flags().GetBool("load")
	out := cmd.OutOrStdout()

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}
	seg := newSegmenter(fetcher)

	var missing []string
	var units []phonics.Unit
	for _, w := range curriculum.All() {
		p := seg.Segment(w.Text)
		if !p.Playable() {
			missing = append(missing, fmt.Sprintf("%s (%s)", w.ID, strings.Join(p.Missing, ", ")))
		}
		units = append(units, p.Units...)
	}

	fmt.Fprintf(out, "%d/%d words playable\n", curriculum.Len()-len(missing), curriculum.Len())
	for _, m := range missing {
		fmt.Fprintf(out, "  missing: %s\n", m)
	}

	failed := 0
	if load {
		eng, err := newEngine(cfg, fetcher, true)
		if err != nil {
			return err
		}
		defer eng.Close()

		res := eng.Preload(cmd.Context(), units)
		fmt.Fprintf(out, "%d assets decoded\n", len(res.Loaded))
		for path, err := range res.Failed {
			fmt.Fprintf(out, "  failed: %s: %v\n", path, err)
		}
		failed = len(res.Failed)
	}

	if len(missing) > 0 || failed > 0 {
		return fmt.Errorf("%d words missing audio, %d assets failed", len(missing), failed)
	}
	return nil
}
