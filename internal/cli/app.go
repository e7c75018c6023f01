// ABOUTME: Shared construction of fetchers, engines and lessons
// ABOUTME: Turns the loaded configuration into wired components for subcommands
package cli

import (
	"context"
	"fmt"

	"github.com/slidesounds/slidesounds-go/internal/config"
	"github.com/slidesounds/slidesounds-go/internal/lesson"
	"github.com/slidesounds/slidesounds-go/internal/progress"
	"github.com/slidesounds/slidesounds-go/pkg/assets"
	"github.com/slidesounds/slidesounds-go/pkg/audio/output"
	"github.com/slidesounds/slidesounds-go/pkg/blend"
	"github.com/slidesounds/slidesounds-go/pkg/engine"
	"github.com/slidesounds/slidesounds-go/pkg/phonics"
	"github.com/slidesounds/slidesounds-go/pkg/scrub"
)

// newFetcher returns the configured asset source
func newFetcher(c config.Config) (assets.Fetcher, error) {
	if c.AssetURL == "" {
		return assets.NewDir(c.AssetDir), nil
	}
	return newHTTPFetcher(c)
}

func newHTTPFetcher(c config.Config) (*assets.HTTPFetcher, error) {
	opts := []assets.HTTPOption{assets.WithLogger(logger.SugaredLogger)}
	if c.CacheDir != "" {
		opts = append(opts, assets.WithCacheDir(c.CacheDir))
	}
	f, err := assets.NewHTTPFetcher(c.AssetURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("asset url: %w", err)
	}
	return f, nil
}

// newSegmenter checks local files when assets come from a directory
func newSegmenter(f assets.Fetcher) *phonics.Segmenter {
	if dir, ok := f.(*assets.Dir); ok {
		return phonics.NewSegmenter(phonics.WithAudioCheck(func(ref phonics.AudioRef) bool {
			return dir.Exists(string(ref))
		}))
	}
	return phonics.NewSegmenter()
}

// newEngine builds an engine. silent swaps the sound card for a discarding
// device.
func newEngine(c config.Config, f assets.Fetcher, silent bool) (*engine.Engine, error) {
	var device output.Device
	if silent {
		device = output.NewDiscard()
	}
	return engine.New(engine.Config{
		SampleRate: c.SampleRate,
		Channels:   c.Channels,
		Fetcher:    f,
		Device:     device,
		Logger:     logger.SugaredLogger,
	})
}

func scrubConfig(c config.Config) scrub.Config {
	return scrub.Config{
		StartTouchRatio:  c.StartTouchRatio,
		EndReachRatio:    c.EndReachRatio,
		ReleaseRatio:     c.ReleaseRatio,
		TapDistancePx:    c.TapDistancePx,
		AutoAdvanceDelay: c.AutoAdvanceDelay,
		StopFade:         c.StopFade,
		Logger:           logger.SugaredLogger,
	}
}

// stack is everything a lesson needs, shared across lessons
type stack struct {
	fetcher assets.Fetcher
	seg     *phonics.Segmenter
	engine  *engine.Engine
	words   *blend.Loader
	store   *progress.SQLiteStore
}

func newStack(ctx context.Context, c config.Config, silent bool) (*stack, error) {
	f, err := newFetcher(c)
	if err != nil {
		return nil, err
	}
	eng, err := newEngine(c, f, silent)
	if err != nil {
		return nil, err
	}
	store, err := progress.Open(ctx, c.DBPath)
	if err != nil {
		eng.Close()
		return nil, err
	}
	return &stack{
		fetcher: f,
		seg:     newSegmenter(f),
		engine:  eng,
		words:   blend.NewLoader(eng, blend.WithLogger(logger.SugaredLogger)),
		store:   store,
	}, nil
}

func (s *stack) newLesson(sc scrub.Config, events lesson.Events, geom scrub.Geometry) (*lesson.Lesson, error) {
	return lesson.New(lesson.Config{
		Engine:    s.engine,
		Segmenter: s.seg,
		Words:     s.words,
		Progress:  s.store,
		Scrub:     sc,
		Geometry:  geom,
		Events:    events,
		Logger:    logger.SugaredLogger,
	})
}

func (s *stack) Close() {
	s.engine.Close()
	s.store.Close()
}
