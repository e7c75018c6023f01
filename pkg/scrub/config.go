// ABOUTME: Scrub controller configuration
// ABOUTME: Completion thresholds, tap distance and timing constants
package scrub

import (
	"time"

	"go.uber.org/zap"
)

// Config holds gesture thresholds. Zero values take defaults.
type Config struct {
	// StartTouchRatio is how close to the start a drag must touch (default: 0.15)
	StartTouchRatio float64

	// EndReachRatio is how far a drag must reach (default: 0.90)
	EndReachRatio float64

	// ReleaseRatio is the minimum release position for completion (default: 0.90)
	ReleaseRatio float64

	// TapDistancePx is the travel below which a press is a tap (default: 14)
	TapDistancePx float64

	// AutoAdvanceDelay before the hint moves to the next anchor (default: 700ms)
	AutoAdvanceDelay time.Duration

	// Smoothing is the per-tick easing factor of visual progress (default: 0.25)
	Smoothing float64

	// SnapEpsilon ends easing once within this distance (default: 0.002)
	SnapEpsilon float64

	// StopFade is the fade used when a drag ends (default: 50ms)
	StopFade time.Duration

	// WordDelay lets the stop fade finish before whole-word playback (default: 60ms)
	WordDelay time.Duration

	Logger *zap.SugaredLogger
}

// DefaultConfig returns the standard thresholds
func DefaultConfig() Config {
	c := Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.StartTouchRatio == 0 {
		c.StartTouchRatio = 0.15
	}
	if c.EndReachRatio == 0 {
		c.EndReachRatio = 0.90
	}
	if c.ReleaseRatio == 0 {
		c.ReleaseRatio = 0.90
	}
	if c.TapDistancePx == 0 {
		c.TapDistancePx = 14
	}
	if c.AutoAdvanceDelay == 0 {
		c.AutoAdvanceDelay = 700 * time.Millisecond
	}
	if c.Smoothing == 0 {
		c.Smoothing = 0.25
	}
	if c.SnapEpsilon == 0 {
		c.SnapEpsilon = 0.002
	}
	if c.StopFade == 0 {
		c.StopFade = 50 * time.Millisecond
	}
	if c.WordDelay == 0 {
		c.WordDelay = 60 * time.Millisecond
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop().Sugar()
	}
}
