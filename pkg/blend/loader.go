// ABOUTME: Whole-word audio resolution
// ABOUTME: Prefers prerecorded word audio and falls back to a phoneme blend
package blend

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/slidesounds/slidesounds-go/pkg/audio"
	"github.com/slidesounds/slidesounds-go/pkg/curriculum"
	"github.com/slidesounds/slidesounds-go/pkg/phonics"
	"go.uber.org/zap"
)

// ErrNoBuffers is returned when none of a word's phoneme clips load
var ErrNoBuffers = errors.New("no audio buffers could be loaded")

// Source tells where whole-word audio came from
type Source string

const (
	SourcePrerecorded Source = "prerecorded"
	SourceBlended     Source = "blended"
)

// ClipLoader loads decoded clips at a fixed output rate
type ClipLoader interface {
	Load(ctx context.Context, path string) (*audio.Buffer, error)
	SampleRate() int
}

// WordAudio is the resolved whole-word audio
type WordAudio struct {
	Buffer   *audio.Buffer
	Zones    []ZoneTiming // nil for prerecorded audio
	Duration time.Duration
	Source   Source
}

// Loader resolves and caches whole-word audio
type Loader struct {
	clips    ClipLoader
	wordPath func(id string) string
	logger   *zap.SugaredLogger

	mu    sync.Mutex
	cache map[string]*WordAudio
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithWordPath overrides where prerecorded word audio lives. A function
// returning "" disables prerecorded lookup.
func WithWordPath(fn func(id string) string) LoaderOption {
	return func(l *Loader) { l.wordPath = fn }
}

// WithLogger sets the logger
func WithLogger(logger *zap.SugaredLogger) LoaderOption {
	return func(l *Loader) { l.logger = logger }
}

// NewLoader creates a loader backed by clips
func NewLoader(clips ClipLoader, opts ...LoaderOption) *Loader {
	l := &Loader{
		clips:    clips,
		wordPath: curriculum.WordAudioPath,
		logger:   zap.NewNop().Sugar(),
		cache:    make(map[string]*WordAudio),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load returns the audio for a word. wordID selects the prerecorded asset
// and keys the cache; an empty wordID always blends. A blend missing any
// clip is returned but not cached.
func (l *Loader) Load(ctx context.Context, wordID string, units []phonics.Unit) (*WordAudio, error) {
	if wordID != "" {
		l.mu.Lock()
		cached, ok := l.cache[wordID]
		l.mu.Unlock()
		if ok {
			return cached, nil
		}
	}

	wa, err := l.resolve(ctx, wordID, units)
	if err != nil {
		return nil, err
	}

	if wordID != "" && complete(wa, units) {
		l.mu.Lock()
		l.cache[wordID] = wa
		l.mu.Unlock()
	}
	return wa, nil
}

// complete reports whether a blend used every playable unit. Partial blends
// are rebuilt on the next load.
func complete(wa *WordAudio, units []phonics.Unit) bool {
	return wa.Source != SourceBlended || len(wa.Zones) == len(phonics.PlayableUnits(units))
}

func (l *Loader) resolve(ctx context.Context, wordID string, units []phonics.Unit) (*WordAudio, error) {
	if wordID != "" {
		if p := l.wordPath(wordID); p != "" {
			buf, err := l.clips.Load(ctx, p)
			if err == nil {
				l.logger.Debugw("Using prerecorded word audio", "word", wordID, "path", p)
				return &WordAudio{
					Buffer:   buf,
					Duration: buf.Duration(),
					Source:   SourcePrerecorded,
				}, nil
			}
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			l.logger.Debugw("No prerecorded word audio, blending", "word", wordID, "error", err)
		}
	}

	wb, err := l.Blend(ctx, units)
	if err != nil {
		return nil, fmt.Errorf("blend %q: %w", wordID, err)
	}
	return &WordAudio{
		Buffer:   wb.Buffer,
		Zones:    wb.Zones,
		Duration: wb.Duration,
		Source:   SourceBlended,
	}, nil
}

// Blend loads the playable units' clips, keeping whichever succeed, and
// builds the word buffer from them in unit order.
func (l *Loader) Blend(ctx context.Context, units []phonics.Unit) (*WordBuffer, error) {
	playable := phonics.PlayableUnits(units)
	buffers := make([]*audio.Buffer, len(playable))

	var wg sync.WaitGroup
	for i, u := range playable {
		wg.Add(1)
		go func(i int, u phonics.Unit) {
			defer wg.Done()
			buf, err := l.clips.Load(ctx, string(u.Audio))
			if err != nil {
				l.logger.Warnw("Skipping phoneme in blend", "unit", u.ID, "error", err)
				return
			}
			buffers[i] = buf
		}(i, u)
	}
	wg.Wait()

	var entries []Entry
	for i, buf := range buffers {
		if buf != nil {
			entries = append(entries, Entry{Unit: playable[i], Buffer: buf})
		}
	}
	if len(entries) == 0 {
		return nil, ErrNoBuffers
	}
	return Build(l.clips.SampleRate(), entries), nil
}

// Forget drops the cached audio for one word
func (l *Loader) Forget(wordID string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, wordID)
}

// Reset drops cached word audio
func (l *Loader) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cache = make(map[string]*WordAudio)
}
