// ABOUTME: relay command
// ABOUTME: Serves lessons to remote front ends over websockets
package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/slidesounds/slidesounds-go/internal/lesson"
	"github.com/slidesounds/slidesounds-go/internal/relay"
	"github.com/slidesounds/slidesounds-go/pkg/scrub"
	"github.com/spf13/cobra"
)

var relayCmd = &cobra.Command{
	Use:   "relay",
	Short: "Serve scrub sessions over websockets",
	Long: `Run a relay. Front ends connect over a websocket, send pointer events
and layout, and the relay plays phonemes on this machine's speakers.

The relay advertises itself over mDNS unless --no-mdns is set.`,
	Args: cobra.NoArgs,
	RunE: runRelay,
}

func init() {
	rootCmd.AddCommand(relayCmd)

	relayCmd.Flags().String("addr", "", "Listen address (default from config)")
	relayCmd.Flags().String("name", "", "Advertised relay name (default from config)")
	relayCmd.Flags().Bool("no-mdns", false, "Disable mDNS advertisement")
	relayCmd.Flags().Bool("silent", false, "Run without opening the sound card")
}

func runRelay(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	addr, _ := flags.GetString("addr")
	name, _ := flags.GetString("name")
	noMDNS, _ := flags.GetBool("no-mdns")
	silent, _ := flags.GetBool("silent")

	if addr == "" {
		addr = cfg.RelayAddr
	}
	if name == "" {
		name = cfg.ServiceName
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := newStack(ctx, cfg, silent)
	if err != nil {
		return err
	}
	defer st.Close()

	sc := scrubConfig(cfg)
	srv, err := relay.New(relay.Config{
		Addr:      addr,
		Name:      name,
		Advertise: cfg.Advertise && !noMDNS,
		NewLesson: func(events lesson.Events, geom scrub.Geometry) (*lesson.Lesson, error) {
			return st.newLesson(sc, events, geom)
		},
		Logger: logger.SugaredLogger,
	})
	if err != nil {
		return err
	}

	logger.Infow("Starting relay", "addr", addr, "name", name)
	if err := srv.Run(ctx); err != nil {
		return err
	}
	logger.Info("Relay stopped")
	return nil
}
