// ABOUTME: segment command
// ABOUTME: Prints the phoneme units of one or more words
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/slidesounds/slidesounds-go/pkg/phonics"
	"github.com/spf13/cobra"
)

var segmentCmd = &cobra.Command{
	Use:   "segment [word...]",
	Short: "Split words into phoneme units",
	Long: `Split words into the units a learner scrubs across.

Examples:
  slidesounds segment cat ship cake
  slidesounds segment --json rain`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSegment,
}

func init() {
	rootCmd.AddCommand(segmentCmd)

	segmentCmd.Flags().Bool("json", false, "Print JSON instead of a table")
}

func runSegment(cmd *cobra.Command, args []string) error {
	asJSON, _ := cmd.Flags().GetBool("json")

	seg := phonics.NewSegmenter()
	parsed := make([]phonics.ParsedWord, len(args))
	for i, word := range args {
		parsed[i] = seg.Segment(word)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(parsed)
	}
	for _, p := range parsed {
		writeParsed(out, p)
	}
	return nil
}

func writeParsed(w io.Writer, p phonics.ParsedWord) {
	var parts []string
	for _, u := range p.Units {
		label := u.Grapheme
		switch {
		case u.IsSilent:
			label += "(silent)"
		case u.IsStop:
			label += "(stop)"
		}
		parts = append(parts, label)
	}

	status := "playable"
	if !p.Playable() {
		status = "not playable"
	}
	fmt.Fprintf(w, "%-10s %-40s %s\n", p.Word, strings.Join(parts, " | "), status)
	if len(p.Missing) > 0 {
		fmt.Fprintf(w, "%-10s missing: %s\n", "", strings.Join(p.Missing, ", "))
	}
}
