// ABOUTME: discover command
// ABOUTME: Lists relays advertised on the local network
package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/slidesounds/slidesounds-go/internal/discovery"
	"github.com/spf13/cobra"
)

var discoverCmd = &cobra.Command{
	Use:   "discover",
	Short: "Find relays on the local network",
	Args:  cobra.NoArgs,
	RunE:  runDiscover,
}

func init() {
	rootCmd.AddCommand(discoverCmd)

	discoverCmd.Flags().Duration("timeout", 5*time.Second, "How long to browse")
}

func runDiscover(cmd *cobra.Command, args []string) error {
	timeout, _ := cmd.Flags().GetDuration("timeout")

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	mgr := discovery.NewManager(discovery.Config{Logger: logger.SugaredLogger})
	mgr.Browse()
	go func() {
		<-ctx.Done()
		mgr.Stop()
	}()

	out := cmd.OutOrStdout()
	seen := make(map[string]bool)
	for r := range mgr.Relays() {
		url := r.URL()
		if seen[url] {
			continue
		}
		seen[url] = true
		fmt.Fprintf(out, "%-24s %s\n", r.Name, url)
	}

	if len(seen) == 0 {
		fmt.Fprintln(out, "no relays found")
	}
	return nil
}
