// ABOUTME: Engine configuration and defaults
// ABOUTME: Sample rate, channel layout, fade envelopes and collaborators
package engine

import (
	"errors"
	"time"

	"github.com/slidesounds/slidesounds-go/pkg/assets"
	"github.com/slidesounds/slidesounds-go/pkg/audio/output"
	"go.uber.org/zap"
)

// Fades holds the envelope durations used for playback
type Fades struct {
	// StopOut fades out other sounds before a stop consonant
	StopOut time.Duration
	// StopIn is the attack of a stop consonant
	StopIn time.Duration
	// CrossfadeOut fades out other sounds when crossfading between zones
	CrossfadeOut time.Duration
	// DefaultOut fades out other sounds otherwise
	DefaultOut time.Duration
	// ContinuousIn is the fade-in of continuous sounds
	ContinuousIn time.Duration
	// WordIn is the fade-in of whole-word playback
	WordIn time.Duration
	// Tail is silence kept after a fade-out before the voice ends
	Tail time.Duration
}

// DefaultFades returns the standard envelope durations
func DefaultFades() Fades {
	return Fades{
		StopOut:      10 * time.Millisecond,
		StopIn:       5 * time.Millisecond,
		CrossfadeOut: 35 * time.Millisecond,
		DefaultOut:   50 * time.Millisecond,
		ContinuousIn: 25 * time.Millisecond,
		WordIn:       30 * time.Millisecond,
		Tail:         10 * time.Millisecond,
	}
}

// Config holds engine configuration
type Config struct {
	// SampleRate of the output context (default: 44100)
	SampleRate int

	// Channels of the output context (default: 2)
	Channels int

	// Fetcher loads encoded assets (required)
	Fetcher assets.Fetcher

	// Device is the output context (default: oto)
	Device output.Device

	// Fades overrides envelope durations; zero fields use defaults
	Fades Fades

	Logger *zap.SugaredLogger
}

func (c *Config) applyDefaults() error {
	if c.Fetcher == nil {
		return errors.New("engine: fetcher is required")
	}
	if c.SampleRate == 0 {
		c.SampleRate = 44100
	}
	if c.Channels == 0 {
		c.Channels = 2
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop().Sugar()
	}
	if c.Device == nil {
		c.Device = output.NewOto(c.Logger)
	}

	def := DefaultFades()
	fill := func(v *time.Duration, d time.Duration) {
		if *v == 0 {
			*v = d
		}
	}
	fill(&c.Fades.StopOut, def.StopOut)
	fill(&c.Fades.StopIn, def.StopIn)
	fill(&c.Fades.CrossfadeOut, def.CrossfadeOut)
	fill(&c.Fades.DefaultOut, def.DefaultOut)
	fill(&c.Fades.ContinuousIn, def.ContinuousIn)
	fill(&c.Fades.WordIn, def.WordIn)
	fill(&c.Fades.Tail, def.Tail)
	return nil
}
