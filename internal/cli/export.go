// ABOUTME: export command
// ABOUTME: Writes a word's synthesized blend to a WAV file
package cli

import (
	"fmt"
	"os"

	"github.com/slidesounds/slidesounds-go/pkg/audio/encode"
	"github.com/slidesounds/slidesounds-go/pkg/blend"
	"github.com/slidesounds/slidesounds-go/pkg/curriculum"
	"github.com/spf13/cobra"
)

var exportCmd = &cobra.Command{
	Use:   "export [word] [output.wav]",
	Short: "Render a word's blended audio to WAV",
	Long: `Join a word's phoneme clips into one buffer and write it as WAV.

Examples:
  slidesounds export cat cat.wav
  slidesounds export ship ship.wav --bit-depth 24`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().Int("bit-depth", 16, "Output bit depth (16 or 24)")
}

func runExport(cmd *cobra.Command, args []string) error {
	wordID, outputPath := args[0], args[1]
	bitDepth, _ := cmd.Flags().GetInt("bit-depth")

	text := wordID
	if w, ok := curriculum.ByID(wordID); ok {
		text = w.Text
	}

	fetcher, err := newFetcher(cfg)
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg, fetcher, true)
	if err != nil {
		return err
	}
	defer eng.Close()

	parsed := newSegmenter(fetcher).Segment(text)
	if len(parsed.Units) == 0 {
		return fmt.Errorf("nothing to export for %q", wordID)
	}

	wb, err := blend.NewLoader(eng, blend.WithLogger(logger.SugaredLogger)).Blend(cmd.Context(), parsed.Units)
	if err != nil {
		return fmt.Errorf("blend %s: %w", wordID, err)
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outputPath, err)
	}
	if err := encode.WAV(f, wb.Buffer, bitDepth); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", outputPath, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.Infow("Exported word",
		"word", wordID,
		"output", outputPath,
		"duration", wb.Duration,
		"zones", len(wb.Zones),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %d zones, %v\n", outputPath, len(wb.Zones), wb.Duration)
	return nil
}
