// ABOUTME: One active lesson word
// ABOUTME: Wires segmentation, phoneme playback, word audio and the scrub controller
package lesson

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/slidesounds/slidesounds-go/internal/progress"
	"github.com/slidesounds/slidesounds-go/pkg/blend"
	"github.com/slidesounds/slidesounds-go/pkg/curriculum"
	"github.com/slidesounds/slidesounds-go/pkg/engine"
	"github.com/slidesounds/slidesounds-go/pkg/phonics"
	"github.com/slidesounds/slidesounds-go/pkg/scrub"
	"go.uber.org/zap"
)

// ErrNotPlayable is returned for words with missing audio
var ErrNotPlayable = errors.New("word is not playable")

const resumeTimeout = 2 * time.Second

// Events are forwarded from the scrub controller. All are optional.
type Events struct {
	OnScrubStart  func()
	OnScrubMove   func(scrub.Update)
	OnScrubEnd    func(scrub.Update)
	OnAutoAdvance func(scrub.Update)
	OnComplete    func(wordID string)
	// OnWordAudio fires once whole-word audio is ready for the active word
	OnWordAudio func(wordID string, source blend.Source)
}

// Config holds lesson dependencies
type Config struct {
	Engine    *engine.Engine // required
	Segmenter *phonics.Segmenter
	Words     *blend.Loader
	Progress  progress.Store
	Scrub     scrub.Config
	Geometry  scrub.Geometry
	Events    Events
	Logger    *zap.SugaredLogger
}

// Lesson drives scrubbing for one word at a time
type Lesson struct {
	engine *engine.Engine
	seg    *phonics.Segmenter
	words  *blend.Loader
	store  progress.Store
	events Events
	logger *zap.SugaredLogger
	ctrl   *scrub.Controller

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu       sync.Mutex
	gen      int
	wordID   string
	parsed   phonics.ParsedWord
	audio    *blend.WordAudio
	prepared chan struct{}
	stopPrep context.CancelFunc
}

// New creates a lesson with no active word
func New(cfg Config) (*Lesson, error) {
	if cfg.Engine == nil {
		return nil, errors.New("lesson: engine is required")
	}
	if cfg.Segmenter == nil {
		cfg.Segmenter = phonics.NewSegmenter()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop().Sugar()
	}
	if cfg.Words == nil {
		cfg.Words = blend.NewLoader(cfg.Engine, blend.WithLogger(cfg.Logger))
	}
	if cfg.Scrub.Logger == nil {
		cfg.Scrub.Logger = cfg.Logger
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &Lesson{
		engine:   cfg.Engine,
		seg:      cfg.Segmenter,
		words:    cfg.Words,
		store:    cfg.Progress,
		events:   cfg.Events,
		logger:   cfg.Logger,
		ctx:      ctx,
		cancel:   cancel,
		prepared: closedChan(),
	}

	cb := scrub.Callbacks{
		OnScrubStart:  cfg.Events.OnScrubStart,
		OnScrubMove:   cfg.Events.OnScrubMove,
		OnScrubEnd:    cfg.Events.OnScrubEnd,
		OnAutoAdvance: cfg.Events.OnAutoAdvance,
		OnComplete:    l.handleComplete,
	}
	l.ctrl = scrub.New(cfg.Scrub, cfg.Geometry, &player{l: l}, &wordPlayer{l: l}, cb)
	return l, nil
}

// Controller returns the gesture controller that front ends feed
func (l *Lesson) Controller() *scrub.Controller {
	return l.ctrl
}

// WordID returns the active word id
func (l *Lesson) WordID() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wordID
}

// Parsed returns the active word's segmentation
func (l *Lesson) Parsed() phonics.ParsedWord {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.parsed
}

// WordAudio returns the active word's audio, nil until ready
func (l *Lesson) WordAudio() *blend.WordAudio {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.audio
}

// Prepared is closed when the active word's preload and word audio attempt
// have finished
func (l *Lesson) Prepared() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.prepared
}

// SetWord makes wordID the active word. Curriculum ids resolve to their
// text; anything else is segmented as given. Audio loads in the background.
func (l *Lesson) SetWord(wordID string) (phonics.ParsedWord, error) {
	text := wordID
	if w, ok := curriculum.ByID(wordID); ok {
		text = w.Text
	}
	parsed := l.seg.Segment(text)

	l.mu.Lock()
	if l.stopPrep != nil {
		l.stopPrep()
	}
	l.gen++
	gen := l.gen
	l.wordID = wordID
	l.parsed = parsed
	l.audio = nil
	prepCtx, stop := context.WithCancel(l.ctx)
	l.stopPrep = stop
	done := make(chan struct{})
	l.prepared = done
	l.mu.Unlock()

	l.engine.StopAll(l.engine.Fades().StopOut)
	l.words.Forget(wordID)
	l.ctrl.SetWord(parsed.Units)

	if !parsed.Playable() {
		close(done)
		stop()
		l.logger.Warnw("Word not playable", "word", wordID, "missing", parsed.Missing)
		return parsed, fmt.Errorf("%s: %w (missing %v)", wordID, ErrNotPlayable, parsed.Missing)
	}

	l.logger.Infow("Word selected", "word", wordID, "units", parsed.Graphemes())
	l.wg.Add(1)
	go func() {
		defer l.wg.Done()
		defer close(done)
		l.prepare(prepCtx, gen, wordID, parsed)
	}()
	return parsed, nil
}

func (l *Lesson) prepare(ctx context.Context, gen int, wordID string, parsed phonics.ParsedWord) {
	res := l.engine.Preload(ctx, parsed.Units)
	if !res.OK() {
		l.logger.Warnw("Some phonemes failed to load", "word", wordID, "failed", len(res.Failed))
	}

	wa, err := l.words.Load(ctx, wordID, parsed.Units)
	if err != nil {
		l.logger.Warnw("Word audio unavailable", "word", wordID, "error", err)
		return
	}

	l.mu.Lock()
	if gen != l.gen {
		l.mu.Unlock()
		return
	}
	l.audio = wa
	l.mu.Unlock()

	l.logger.Debugw("Word audio ready", "word", wordID, "source", wa.Source, "duration", wa.Duration)
	if fn := l.events.OnWordAudio; fn != nil {
		fn(wordID, wa.Source)
	}
	l.ctrl.WordAudioReady()
}

func (l *Lesson) handleComplete() {
	wordID := l.WordID()
	l.logger.Infow("Word complete", "word", wordID)

	if l.store != nil {
		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			if err := l.store.MarkWordComplete(context.WithoutCancel(l.ctx), wordID); err != nil {
				l.logger.Errorw("Failed to save progress", "word", wordID, "error", err)
			}
		}()
	}
	if fn := l.events.OnComplete; fn != nil {
		fn(wordID)
	}
}

// Close stops background work and silences playback. The engine stays open.
func (l *Lesson) Close() {
	l.cancel()
	l.wg.Wait()
	l.engine.StopAll(l.engine.Fades().StopOut)
}

// player adapts the engine to the controller. Resume opens the device off
// the gesture path.
type player struct {
	l *Lesson
}

func (p *player) Resume() {
	if p.l.engine.Status() == engine.StatusRunning {
		return
	}
	p.l.wg.Add(1)
	go func() {
		defer p.l.wg.Done()
		ctx, cancel := context.WithTimeout(p.l.ctx, resumeTimeout)
		defer cancel()
		if err := p.l.engine.EnsureContextRunning(ctx); err != nil {
			p.l.logger.Warnw("Audio output unavailable", "error", err)
		}
	}()
}

func (p *player) Play(u phonics.Unit, crossfade bool) bool {
	return p.l.engine.Play(u, engine.PlayOptions{Crossfade: crossfade})
}

func (p *player) StopAll(fade time.Duration) {
	p.l.engine.StopAll(fade)
}

func (p *player) ResetLastPlayed() {
	p.l.engine.ResetLastPlayed()
}

type wordPlayer struct {
	l *Lesson
}

func (w *wordPlayer) Ready() bool {
	return w.l.WordAudio() != nil
}

func (w *wordPlayer) PlayWord() {
	wa := w.l.WordAudio()
	if wa == nil {
		return
	}
	w.l.engine.PlayBuffer(wa.Buffer, w.l.engine.Fades().WordIn)
}

func closedChan() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}
