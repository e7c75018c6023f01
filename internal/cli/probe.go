// ABOUTME: probe command
// ABOUTME: Connects to a relay and performs a scripted full-word scrub
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/slidesounds/slidesounds-go/internal/discovery"
	"github.com/slidesounds/slidesounds-go/internal/relay"
	"github.com/slidesounds/slidesounds-go/pkg/curriculum"
	"github.com/spf13/cobra"
)

const (
	probeWidth = 300.0
	probeSteps = 30
)

var probeCmd = &cobra.Command{
	Use:   "probe [ws-url]",
	Short: "Scrub a word on a relay end to end",
	Long: `Connect to a relay, select a word, drag across it and wait for the
word to complete. Without a URL the first relay found over mDNS is used.

Examples:
  slidesounds probe ws://192.168.1.20:8927/scrub --word ship
  slidesounds probe`,
	Args: cobra.MaximumNArgs(1),
	RunE: runProbe,
}

func init() {
	rootCmd.AddCommand(probeCmd)

	probeCmd.Flags().String("word", curriculum.DefaultWordID, "Word to scrub")
	probeCmd.Flags().Duration("step", 40*time.Millisecond, "Delay between pointer moves")
	probeCmd.Flags().Duration("timeout", 10*time.Second, "Overall timeout")
}

func runProbe(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	wordID, _ := flags.GetString("word")
	step, _ := flags.GetDuration("step")
	timeout, _ := flags.GetDuration("timeout")

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	url := ""
	if len(args) > 0 {
		url = args[0]
	} else {
		found, err := firstRelay(ctx)
		if err != nil {
			return err
		}
		url = found
	}

	host, _ := os.Hostname()
	c := relay.NewClient(relay.ClientConfig{
		URL:    url,
		Name:   host + "-probe",
		Logger: logger.SugaredLogger,
	})
	if err := c.Connect(ctx); err != nil {
		return err
	}
	defer c.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "connected to %s (%s)\n", c.Hello().Name, url)

	if err := c.SetLayout(relay.LayoutUpdate{Width: probeWidth}); err != nil {
		return err
	}
	if err := c.SelectWord(wordID); err != nil {
		return err
	}

	seg, err := await(ctx, c, c.Segments, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "segments: %v\n", graphemes(seg))
	if !seg.Playable {
		return fmt.Errorf("%s is not playable on this relay (missing %v)", wordID, seg.Missing)
	}

	audio, err := await(ctx, c, c.WordAudio, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "word audio ready: %s\n", audio.Source)

	const id = 1
	c.PointerDown(id, 0)
	for i := 1; i <= probeSteps; i++ {
		select {
		case <-time.After(step):
		case <-ctx.Done():
			return ctx.Err()
		}
		c.PointerMove(id, probeWidth*float64(i)/probeSteps)
	}
	c.PointerUp(id, probeWidth)

	done, err := await(ctx, c, c.Completed, out)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "completed %s\n", done.WordID)
	return nil
}

// await waits for the next value on ch, printing scrub events while it
// waits. Relay errors fail the wait.
func await[T any](ctx context.Context, c *relay.Client, ch chan T, out io.Writer) (T, error) {
	var zero T
	for {
		select {
		case v := <-ch:
			return v, nil
		case ev := <-c.Scrub:
			fmt.Fprintf(out, "  %-14s zone=%d ratio=%.2f\n", ev.Type, ev.Update.Zone, ev.Update.Ratio)
		case e := <-c.Errors:
			return zero, fmt.Errorf("relay error %s: %s", e.Error, e.Message)
		case <-c.Done():
			return zero, errors.New("relay closed the connection")
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}

func graphemes(seg relay.Segments) []string {
	out := make([]string, len(seg.Units))
	for i, u := range seg.Units {
		out[i] = u.Grapheme
	}
	return out
}

func firstRelay(ctx context.Context) (string, error) {
	mgr := discovery.NewManager(discovery.Config{Logger: logger.SugaredLogger})
	mgr.Browse()
	defer mgr.Stop()

	select {
	case r, ok := <-mgr.Relays():
		if !ok {
			return "", errors.New("discovery stopped")
		}
		logger.Infow("Discovered relay", "name", r.Name, "url", r.URL())
		return r.URL(), nil
	case <-ctx.Done():
		return "", fmt.Errorf("no relay found: %w", ctx.Err())
	}
}
