// ABOUTME: Phoneme audio engine
// ABOUTME: Output context lifecycle, clip cache, preload and playback rules
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/slidesounds/slidesounds-go/pkg/assets"
	"github.com/slidesounds/slidesounds-go/pkg/audio"
	"github.com/slidesounds/slidesounds-go/pkg/audio/decode"
	"github.com/slidesounds/slidesounds-go/pkg/audio/resample"
	"github.com/slidesounds/slidesounds-go/pkg/phonics"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrNoAudio is returned when a unit has no audio reference
var ErrNoAudio = errors.New("no audio for unit")

// Status is the output context state
type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusRunning       Status = "running"
	StatusSuspended     Status = "suspended"
	StatusUnavailable   Status = "unavailable"
)

// PlayOptions tunes a single Play call
type PlayOptions struct {
	// Crossfade uses the shorter fade-out when moving between zones
	Crossfade bool
}

// PreloadResult reports the outcome of a preload
type PreloadResult struct {
	Loaded []string
	Failed map[string]error
}

// OK reports whether every asset loaded
func (r PreloadResult) OK() bool {
	return len(r.Failed) == 0
}

// Engine plays phoneme clips on a single output context
type Engine struct {
	cfg    Config
	logger *zap.SugaredLogger

	mu         sync.Mutex
	status     Status
	cache      map[string]*audio.Buffer
	active     []*source
	lastPlayed string

	loads singleflight.Group
}

// New creates an engine. The output device is opened lazily by
// EnsureContextRunning.
func New(cfg Config) (*Engine, error) {
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:    cfg,
		logger: cfg.Logger,
		status: StatusUninitialized,
		cache:  make(map[string]*audio.Buffer),
	}, nil
}

// SampleRate returns the output context rate
func (e *Engine) SampleRate() int {
	return e.cfg.SampleRate
}

// Channels returns the output context channel count
func (e *Engine) Channels() int {
	return e.cfg.Channels
}

// Fades returns the effective envelope durations
func (e *Engine) Fades() Fades {
	return e.cfg.Fades
}

// Status returns the current context state
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.status
}

// EnsureContextRunning opens the output device on first use and resumes it
// when suspended. It is safe to call repeatedly.
func (e *Engine) EnsureContextRunning(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	e.mu.Lock()
	status := e.status
	e.mu.Unlock()

	switch status {
	case StatusRunning:
		return nil
	case StatusSuspended:
		if err := e.cfg.Device.Resume(); err != nil {
			return fmt.Errorf("failed to resume audio output: %w", err)
		}
		e.setStatus(StatusRunning)
		return nil
	}

	opened := make(chan error, 1)
	go func() {
		opened <- e.cfg.Device.Open(e.cfg.SampleRate, e.cfg.Channels)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case err := <-opened:
		if err != nil {
			e.setStatus(StatusUnavailable)
			e.logger.Errorw("Audio output unavailable", "error", err)
			return fmt.Errorf("failed to open audio output: %w", err)
		}
	}

	e.setStatus(StatusRunning)
	e.logger.Infow("Audio context running", "sample_rate", e.cfg.SampleRate, "channels", e.cfg.Channels)
	return nil
}

// Suspend pauses the output context
func (e *Engine) Suspend() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.status != StatusRunning {
		return nil
	}
	if err := e.cfg.Device.Suspend(); err != nil {
		return fmt.Errorf("failed to suspend audio output: %w", err)
	}
	e.status = StatusSuspended
	return nil
}

func (e *Engine) setStatus(s Status) {
	e.mu.Lock()
	e.status = s
	e.mu.Unlock()
}

// Cached reports whether the asset at path is decoded and cached
func (e *Engine) Cached(path string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.cache[assets.NormalizePath(path)]
	return ok
}

func (e *Engine) cached(key string) (*audio.Buffer, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	buf, ok := e.cache[key]
	return buf, ok
}

// Load returns the decoded clip for path, fetching and decoding it once.
// Concurrent callers share a single in-flight load; failures are not cached.
func (e *Engine) Load(ctx context.Context, path string) (*audio.Buffer, error) {
	key := assets.NormalizePath(path)
	if buf, ok := e.cached(key); ok {
		return buf, nil
	}

	// The shared load outlives any single caller's cancellation
	loadCtx := context.WithoutCancel(ctx)
	ch := e.loads.DoChan(key, func() (interface{}, error) {
		return e.load(loadCtx, key)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*audio.Buffer), nil
	}
}

func (e *Engine) load(ctx context.Context, key string) (*audio.Buffer, error) {
	if buf, ok := e.cached(key); ok {
		return buf, nil
	}

	start := time.Now()
	data, err := e.cfg.Fetcher.Fetch(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", key, err)
	}

	buf, err := decode.File(key, data)
	if err != nil {
		return nil, err
	}
	if buf.Frames() == 0 {
		return nil, fmt.Errorf("decode %s: empty clip", key)
	}
	buf = resample.Buffer(buf, e.cfg.SampleRate)

	e.mu.Lock()
	e.cache[key] = buf
	e.mu.Unlock()

	e.logger.Debugw("Loaded clip",
		"path", key,
		"frames", buf.Frames(),
		"channels", buf.Format.Channels,
		"elapsed", time.Since(start))
	return buf, nil
}

// LoadUnit returns the decoded clip for a unit
func (e *Engine) LoadUnit(ctx context.Context, u phonics.Unit) (*audio.Buffer, error) {
	if u.Audio == phonics.NoAudio {
		return nil, fmt.Errorf("%q: %w", u.Grapheme, ErrNoAudio)
	}
	return e.Load(ctx, string(u.Audio))
}

// Preload loads every unit's clip concurrently and waits for all of them
// to settle. Individual failures are reported, never returned.
func (e *Engine) Preload(ctx context.Context, units []phonics.Unit) PreloadResult {
	seen := make(map[string]bool)
	var paths []string
	for _, u := range units {
		if u.Audio == phonics.NoAudio {
			continue
		}
		key := assets.NormalizePath(string(u.Audio))
		if !seen[key] {
			seen[key] = true
			paths = append(paths, key)
		}
	}

	result := PreloadResult{Failed: make(map[string]error)}
	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, p := range paths {
		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			_, err := e.Load(ctx, p)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed[p] = err
				return
			}
			result.Loaded = append(result.Loaded, p)
		}(p)
	}
	wg.Wait()

	for p, err := range result.Failed {
		e.logger.Warnw("Failed to preload clip", "path", p, "error", err)
	}
	return result
}

// Play starts a unit's clip following stop and continuous rules. It reports
// whether a voice was started.
func (e *Engine) Play(u phonics.Unit, opts PlayOptions) bool {
	if !u.Playable() {
		return false
	}

	key := assets.NormalizePath(string(u.Audio))

	e.mu.Lock()
	defer e.mu.Unlock()

	if !u.IsStop && e.lastPlayed == u.ID {
		return false
	}
	if !e.resumeLocked() {
		return false
	}

	buf, ok := e.cache[key]
	if !ok {
		e.logger.Debugw("Clip not loaded yet, skipping", "unit", u.ID, "path", key)
		go func() {
			if _, err := e.Load(context.Background(), key); err != nil {
				e.logger.Warnw("Background load failed", "path", key, "error", err)
			}
		}()
		return false
	}

	fades := e.cfg.Fades
	fadeIn := fades.ContinuousIn
	switch {
	case u.IsStop:
		e.stopAllLocked(fades.StopOut)
		fadeIn = fades.StopIn
	case opts.Crossfade:
		e.stopAllLocked(fades.CrossfadeOut)
	default:
		e.stopAllLocked(fades.DefaultOut)
	}

	if !e.startLocked(buf, fadeIn) {
		return false
	}
	e.lastPlayed = u.ID
	return true
}

// PlayBuffer starts an arbitrary clip with the given fade-in. It does not
// stop other voices.
func (e *Engine) PlayBuffer(buf *audio.Buffer, fadeIn time.Duration) bool {
	if buf.Frames() == 0 {
		return false
	}
	buf = resample.Buffer(buf, e.cfg.SampleRate)

	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.resumeLocked() {
		return false
	}
	return e.startLocked(buf, fadeIn)
}

// StopAll fades out every active voice and clears the last played unit
func (e *Engine) StopAll(fade time.Duration) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopAllLocked(fade)
	e.lastPlayed = ""
}

// ResetLastPlayed forgets the last played unit
func (e *Engine) ResetLastPlayed() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastPlayed = ""
}

// LastPlayed returns the ID of the last unit started by Play
func (e *Engine) LastPlayed() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastPlayed
}

// Active returns the number of voices still rendering
func (e *Engine) Active() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.active)
}

// Close stops every voice and releases the output device
func (e *Engine) Close() error {
	e.mu.Lock()
	e.stopAllLocked(0)
	status := e.status
	e.status = StatusUninitialized
	e.mu.Unlock()

	if status == StatusUninitialized || status == StatusUnavailable {
		return nil
	}
	return e.cfg.Device.Close()
}

// resumeLocked makes sure the context can accept voices without blocking
func (e *Engine) resumeLocked() bool {
	switch e.status {
	case StatusRunning:
		return true
	case StatusSuspended:
		if err := e.cfg.Device.Resume(); err != nil {
			e.logger.Warnw("Failed to resume audio output", "error", err)
			return false
		}
		e.status = StatusRunning
		return true
	default:
		return false
	}
}

func (e *Engine) stopAllLocked(fade time.Duration) {
	frames := audio.DurationToFrames(fade, e.cfg.SampleRate)
	for _, s := range e.active {
		s.stop(frames)
	}
	e.active = nil
}

func (e *Engine) startLocked(buf *audio.Buffer, fadeIn time.Duration) bool {
	src := newSource(buf, e.cfg.Channels,
		audio.DurationToFrames(fadeIn, e.cfg.SampleRate),
		audio.DurationToFrames(e.cfg.Fades.Tail, e.cfg.SampleRate),
		e.release)

	voice, err := e.cfg.Device.Start(src)
	if err != nil {
		e.logger.Errorw("Failed to start voice", "error", err)
		return false
	}

	src.mu.Lock()
	src.voice = voice
	src.mu.Unlock()

	e.active = append(e.active, src)
	return true
}

// release runs when a source reaches its end. The device may call Read from
// inside Start, so cleanup happens off the reader's goroutine.
func (e *Engine) release(s *source) {
	go func() {
		e.mu.Lock()
		for i, a := range e.active {
			if a == s {
				e.active = append(e.active[:i], e.active[i+1:]...)
				break
			}
		}
		e.mu.Unlock()

		s.mu.Lock()
		voice := s.voice
		s.mu.Unlock()
		if voice != nil {
			voice.Close()
		}
	}()
}
