// ABOUTME: Application configuration
// ABOUTME: Defaults overridden by SLIDESOUNDS_* environment variables and an optional .env file
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "SLIDESOUNDS_"

// Config holds application settings
type Config struct {
	AssetDir    string // local asset root; used when AssetURL is empty
	AssetURL    string // remote asset base URL
	CacheDir    string // on-disk cache for remote assets
	DBPath      string // progress database
	RelayAddr   string // websocket relay listen address
	ServiceName string // mDNS instance name
	Advertise   bool

	SampleRate int
	Channels   int

	TapDistancePx    float64
	StartTouchRatio  float64
	EndReachRatio    float64
	ReleaseRatio     float64
	AutoAdvanceDelay time.Duration
	StopFade         time.Duration
}

// Default returns the built-in settings
func Default() Config {
	return Config{
		AssetDir:         "assets",
		DBPath:           "slidesounds.db",
		RelayAddr:        ":8927",
		ServiceName:      "SlideSounds",
		Advertise:        true,
		SampleRate:       44100,
		Channels:         2,
		TapDistancePx:    14,
		StartTouchRatio:  0.15,
		EndReachRatio:    0.90,
		ReleaseRatio:     0.90,
		AutoAdvanceDelay: 700 * time.Millisecond,
		StopFade:         50 * time.Millisecond,
	}
}

// Load reads envFile when it exists, then applies environment overrides to
// the defaults. Variables already set in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}

	cfg := Default()
	var errs []error
	str := func(key string, dst *string) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}
	parse := func(key string, set func(string) error) {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok && v != "" {
			if err := set(v); err != nil {
				errs = append(errs, fmt.Errorf("%s%s: %w", EnvPrefix, key, err))
			}
		}
	}
	intVar := func(dst *int) func(string) error {
		return func(v string) (err error) {
			*dst, err = strconv.Atoi(v)
			return err
		}
	}
	floatVar := func(dst *float64) func(string) error {
		return func(v string) (err error) {
			*dst, err = strconv.ParseFloat(v, 64)
			return err
		}
	}
	durationVar := func(dst *time.Duration) func(string) error {
		return func(v string) (err error) {
			*dst, err = time.ParseDuration(v)
			return err
		}
	}

	str("ASSET_DIR", &cfg.AssetDir)
	str("ASSET_URL", &cfg.AssetURL)
	str("CACHE_DIR", &cfg.CacheDir)
	str("DB", &cfg.DBPath)
	str("RELAY_ADDR", &cfg.RelayAddr)
	str("SERVICE_NAME", &cfg.ServiceName)
	parse("ADVERTISE", func(v string) (err error) {
		cfg.Advertise, err = strconv.ParseBool(v)
		return err
	})
	parse("SAMPLE_RATE", intVar(&cfg.SampleRate))
	parse("CHANNELS", intVar(&cfg.Channels))
	parse("TAP_DISTANCE_PX", floatVar(&cfg.TapDistancePx))
	parse("START_TOUCH_RATIO", floatVar(&cfg.StartTouchRatio))
	parse("END_REACH_RATIO", floatVar(&cfg.EndReachRatio))
	parse("RELEASE_RATIO", floatVar(&cfg.ReleaseRatio))
	parse("AUTO_ADVANCE_DELAY", durationVar(&cfg.AutoAdvanceDelay))
	parse("STOP_FADE", durationVar(&cfg.StopFade))

	if len(errs) > 0 {
		return Config{}, errors.Join(errs...)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.Channels < 1 || c.Channels > 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", c.Channels)
	}
	for name, v := range map[string]float64{
		"start touch ratio": c.StartTouchRatio,
		"end reach ratio":   c.EndReachRatio,
		"release ratio":     c.ReleaseRatio,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be within [0,1], got %v", name, v)
		}
	}
	if c.TapDistancePx < 0 {
		return fmt.Errorf("tap distance must not be negative, got %v", c.TapDistancePx)
	}
	if c.AssetDir == "" && c.AssetURL == "" {
		return errors.New("either an asset directory or an asset URL is required")
	}
	return nil
}
