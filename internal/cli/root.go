// ABOUTME: Root command and shared flags
// ABOUTME: Loads configuration and builds the logger before any subcommand runs
package cli

import (
	"fmt"

	"github.com/slidesounds/slidesounds-go/internal/config"
	"github.com/slidesounds/slidesounds-go/internal/logging"
	"github.com/slidesounds/slidesounds-go/internal/version"
	"github.com/spf13/cobra"
)

var (
	verbose  bool
	logFile  string
	envFile  string
	assetDir string
	assetURL string
	dbPath   string

	cfg    config.Config
	logger *logging.Logger
)

var rootCmd = &cobra.Command{
	Use:   "slidesounds",
	Short: "Slide-to-blend phonics engine",
	Long: `SlideSounds turns a word into its phonics sounds and lets a learner
drag across the letters to hear each sound, then the whole word.

Configuration comes from SLIDESOUNDS_* environment variables, an optional
.env file, and the flags below.`,
	Version:       version.Version,
	SilenceUsage:  true,
	SilenceErrors: false,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(envFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		flags := cmd.Flags()
		if flags.Changed("assets") {
			loaded.AssetDir = assetDir
		}
		if flags.Changed("asset-url") {
			loaded.AssetURL = assetURL
		}
		if flags.Changed("db") {
			loaded.DBPath = dbPath
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded

		l, err := logging.NewFileLogger(verbose, logFile)
		if err != nil {
			return err
		}
		logger = l
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			logger.Sync()
		}
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVar(&logFile, "log-file", "", "Write logs to this file instead of stderr")
	rootCmd.PersistentFlags().
		StringVar(&envFile, "env", ".env", "Environment file to load if present")
	rootCmd.PersistentFlags().
		StringVar(&assetDir, "assets", "", "Local asset root (default from config: assets)")
	rootCmd.PersistentFlags().
		StringVar(&assetURL, "asset-url", "", "Remote asset base URL; takes precedence over --assets")
	rootCmd.PersistentFlags().
		StringVar(&dbPath, "db", "", "Progress database path")
}
