// ABOUTME: play command
// ABOUTME: Runs the terminal scrubber for curriculum words
package cli

import (
	"fmt"

	"github.com/slidesounds/slidesounds-go/internal/lesson"
	"github.com/slidesounds/slidesounds-go/internal/logging"
	"github.com/slidesounds/slidesounds-go/internal/ui"
	"github.com/slidesounds/slidesounds-go/pkg/curriculum"
	"github.com/spf13/cobra"
)

const defaultPlayLog = "slidesounds.log"

var playCmd = &cobra.Command{
	Use:   "play [word]",
	Short: "Scrub words in the terminal",
	Long: `Open the terminal scrubber. Drag across the track with the mouse, or
hold space and use the arrow keys. n and p move between words.

Logs go to slidesounds.log unless --log-file is set.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd)

	playCmd.Flags().Bool("silent", false, "Run without opening the sound card")
}

func runPlay(cmd *cobra.Command, args []string) error {
	silent, _ := cmd.Flags().GetBool("silent")

	wordID := curriculum.DefaultWordID
	if len(args) > 0 {
		wordID = args[0]
	}
	if _, ok := curriculum.ByID(wordID); !ok {
		return fmt.Errorf("unknown word %q", wordID)
	}

	// Log lines on stderr would tear the alt screen
	if !cmd.Flags().Changed("log-file") {
		l, err := logging.NewFileLogger(verbose, defaultPlayLog)
		if err != nil {
			return err
		}
		logger = l
	}

	st, err := newStack(cmd.Context(), cfg, silent)
	if err != nil {
		return err
	}
	defer st.Close()

	sc := scrubConfig(cfg)
	sc.TapDistancePx = ui.TapDistanceCells

	track := ui.NewTrack()
	bridge := &ui.Bridge{}
	l, err := st.newLesson(sc, lesson.Events{
		OnScrubStart:  bridge.ScrubStart,
		OnScrubMove:   bridge.ScrubMove,
		OnScrubEnd:    bridge.ScrubEnd,
		OnAutoAdvance: bridge.AutoAdvance,
		OnComplete:    bridge.Complete,
		OnWordAudio:   bridge.WordAudio,
	}, track)
	if err != nil {
		return err
	}
	defer l.Close()

	program := ui.NewProgram(ui.NewModel(l, track, wordID))
	bridge.Attach(program)

	logger.Infow("Starting scrubber", "word", wordID, "silent", silent)
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
