// ABOUTME: Scrub gesture state machine
// ABOUTME: Zone tracking, stop gating, watermark, taps and completion
package scrub

import (
	"math"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/slidesounds/slidesounds-go/pkg/phonics"
	"go.uber.org/zap"
)

// NoZone marks a position with no zone
const NoZone = -1

// Layout is the measured track geometry
type Layout struct {
	Left  float64
	Width float64
	// Anchors overrides the canonical anchors when it has one entry per unit
	Anchors []float64
}

// Geometry measures the rendered track
type Geometry interface {
	Measure() Layout
}

// GeometryFunc adapts a function to Geometry
type GeometryFunc func() Layout

// Measure calls f
func (f GeometryFunc) Measure() Layout { return f() }

// Player plays phonemes. Calls must not block.
type Player interface {
	Resume()
	Play(u phonics.Unit, crossfade bool) bool
	StopAll(fade time.Duration)
	ResetLastPlayed()
}

// WordAudio plays the whole word on completion
type WordAudio interface {
	Ready() bool
	PlayWord()
}

// Pointer is a pointer event position
type Pointer struct {
	ID int64
	X  float64
}

// Update describes the position of a gesture
type Update struct {
	Zone  int
	Ratio float64
}

// Callbacks receive gesture events. Nil callbacks are skipped.
type Callbacks struct {
	OnScrubStart  func()
	OnScrubMove   func(Update)
	OnScrubEnd    func(Update)
	OnComplete    func()
	OnAutoAdvance func(Update)
}

type timer interface {
	Stop() bool
}

type state int

const (
	stateIdle state = iota
	stateDragging
)

// Controller tracks one word's scrub gestures
type Controller struct {
	cfg    Config
	geom   Geometry
	player Player
	words  WordAudio
	cb     Callbacks
	logger *zap.SugaredLogger

	// afterFunc schedules delayed work; replaced in tests
	afterFunc func(time.Duration, func()) timer

	mu      sync.Mutex
	pending []func()

	units   []phonics.Unit
	layout  Layout
	anchors []float64

	state      state
	pointerID  int64
	session    string
	startX     float64
	maxDelta   float64
	ratio      float64
	zone       int
	playedStop map[int]bool
	touched    bool
	reached    bool

	furthest          int
	completionPending bool

	target float64
	visual float64

	autoAdvance timer
	advanceGen  int
	miniScrub   []timer
}

// New creates a controller. words may be nil when no whole-word audio is
// available; completion then stays pending until WordAudioReady.
func New(cfg Config, geom Geometry, player Player, words WordAudio, cb Callbacks) *Controller {
	cfg.applyDefaults()
	return &Controller{
		cfg:    cfg,
		geom:   geom,
		player: player,
		words:  words,
		cb:     cb,
		logger: cfg.Logger,
		afterFunc: func(d time.Duration, f func()) timer {
			return time.AfterFunc(d, f)
		},
		zone:       NoZone,
		furthest:   -1,
		playedStop: make(map[int]bool),
	}
}

// do runs fn under the lock and then fires queued callbacks
func (c *Controller) do(fn func()) {
	c.mu.Lock()
	fn()
	events := c.pending
	c.pending = nil
	c.mu.Unlock()

	for _, e := range events {
		e()
	}
}

func (c *Controller) emit(fn func()) {
	if fn != nil {
		c.pending = append(c.pending, fn)
	}
}

// SetWord switches to a new word and resets all word state
func (c *Controller) SetWord(units []phonics.Unit) {
	c.do(func() {
		c.clearTimersLocked()
		c.units = append([]phonics.Unit(nil), units...)
		c.state = stateIdle
		c.zone = NoZone
		c.furthest = -1
		c.completionPending = false
		c.target = 0
		c.visual = 0
		c.measureLocked()
		c.player.ResetLastPlayed()
	})
}

// Resize re-measures the track geometry
func (c *Controller) Resize() {
	c.do(c.measureLocked)
}

func (c *Controller) measureLocked() {
	if c.geom != nil {
		c.layout = c.geom.Measure()
	}
	c.anchors = validAnchors(c.layout.Anchors, len(c.units))
}

// Anchors returns the current anchor ratios
func (c *Controller) Anchors() []float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]float64(nil), c.anchors...)
}

// ratioAt converts an x coordinate to a track ratio. ok is false when the
// track has no width.
func (c *Controller) ratioAt(x float64) (float64, bool) {
	if c.layout.Width <= 0 || math.IsNaN(c.layout.Width) {
		return 0, false
	}
	return clampRatio((x - c.layout.Left) / c.layout.Width), true
}

// PointerDown starts a drag
func (c *Controller) PointerDown(p Pointer) {
	c.do(func() {
		if c.state == stateDragging {
			return
		}
		c.clearTimersLocked()
		c.measureLocked()

		c.state = stateDragging
		c.pointerID = p.ID
		c.session = uuid.NewString()
		c.startX = p.X
		c.maxDelta = 0
		c.zone = NoZone
		c.touched = false
		c.reached = false
		for k := range c.playedStop {
			delete(c.playedStop, k)
		}

		c.player.Resume()
		c.player.ResetLastPlayed()

		ratio, ok := c.ratioAt(p.X)
		c.logger.Debugw("Scrub started", "session", c.session, "x", p.X, "ratio", ratio)
		c.emit(c.cb.OnScrubStart)
		c.ratio = ratio
		c.setTargetLocked(ratio, true)
		if ok {
			c.evaluateLocked(ratio, true)
		}
	})
}

// PointerMove tracks a drag
func (c *Controller) PointerMove(p Pointer) {
	c.do(func() {
		if c.state != stateDragging || p.ID != c.pointerID {
			return
		}
		if d := math.Abs(p.X - c.startX); d > c.maxDelta {
			c.maxDelta = d
		}
		c.stopAutoAdvanceLocked()

		ratio, ok := c.ratioAt(p.X)
		if !ok {
			return
		}
		c.ratio = ratio
		c.setTargetLocked(ratio, false)
		c.evaluateLocked(ratio, false)
	})
}

// PointerUp ends a drag and evaluates completion
func (c *Controller) PointerUp(p Pointer) {
	c.do(func() {
		if c.state != stateDragging || p.ID != c.pointerID {
			return
		}
		if d := math.Abs(p.X - c.startX); d > c.maxDelta {
			c.maxDelta = d
		}
		ratio, ok := c.ratioAt(p.X)
		if !ok {
			ratio = c.ratio
		}
		c.finishLocked(ratio)
	})
}

// PointerCancel ends a drag without awarding completion. Audio stops and no
// tap or auto-advance follows.
func (c *Controller) PointerCancel(p Pointer) {
	c.do(func() {
		if c.state != stateDragging || p.ID != c.pointerID {
			return
		}
		c.cancelLocked()
	})
}

// evaluateLocked updates the session flags for ratio and plays a new zone
func (c *Controller) evaluateLocked(ratio float64, first bool) {
	if ratio <= c.cfg.StartTouchRatio {
		c.touched = true
	}
	if ratio >= c.cfg.EndReachRatio {
		c.reached = true
	}

	zone := Nearest(c.anchors, ratio)
	if zone != NoZone && (zone != c.zone || first) {
		c.zone = zone
		c.playZoneLocked(zone, !first)
		if zone-1 > c.furthest {
			c.furthest = zone - 1
		}
	}

	update := Update{Zone: c.zone, Ratio: ratio}
	if cb := c.cb.OnScrubMove; cb != nil {
		c.emit(func() { cb(update) })
	}
}

func (c *Controller) playZoneLocked(zone int, crossfade bool) {
	if zone < 0 || zone >= len(c.units) {
		return
	}
	u := c.units[zone]
	if !u.Playable() {
		return
	}
	if u.IsStop {
		if c.playedStop[zone] {
			return
		}
		c.playedStop[zone] = true
	}
	c.player.Play(u, crossfade)
}

func (c *Controller) finishLocked(ratio float64) {
	c.state = stateIdle
	tap := c.maxDelta < c.cfg.TapDistancePx
	lastZone := c.zone

	if tap {
		c.finishTapLocked(ratio)
		return
	}

	c.player.StopAll(c.cfg.StopFade)
	if lastZone > c.furthest {
		c.furthest = lastZone
	}
	if ratio >= c.cfg.EndReachRatio {
		c.reached = true
	}
	c.zone = NoZone
	c.setTargetLocked(ratio, false)

	update := Update{Zone: Nearest(c.anchors, ratio), Ratio: ratio}
	if cb := c.cb.OnScrubEnd; cb != nil {
		c.emit(func() { cb(update) })
	}
	c.scheduleAutoAdvanceLocked(ratio)

	complete := c.touched && c.reached && ratio >= c.cfg.ReleaseRatio
	c.logger.Debugw("Scrub ended",
		"session", c.session,
		"ratio", ratio,
		"touched_start", c.touched,
		"reached_end", c.reached,
		"complete", complete)
	if complete {
		c.completeLocked()
	}
}

func (c *Controller) cancelLocked() {
	c.state = stateIdle
	c.player.StopAll(c.cfg.StopFade)
	if c.zone > c.furthest {
		c.furthest = c.zone
	}
	c.zone = NoZone
	c.setTargetLocked(c.ratio, false)

	c.logger.Debugw("Scrub cancelled", "session", c.session, "ratio", c.ratio)
	update := Update{Zone: Nearest(c.anchors, c.ratio), Ratio: c.ratio}
	if cb := c.cb.OnScrubEnd; cb != nil {
		c.emit(func() { cb(update) })
	}
}

// finishTapLocked snaps to the nearest anchor and lets its sound ring out
func (c *Controller) finishTapLocked(ratio float64) {
	snapped := ratio
	zone := Nearest(c.anchors, ratio)
	if zone != NoZone {
		snapped = c.anchors[zone]
		if zone != c.zone {
			c.playZoneLocked(zone, true)
		}
		if zone > c.furthest {
			c.furthest = zone
		}
	}
	c.zone = NoZone
	c.player.ResetLastPlayed()
	c.setTargetLocked(snapped, true)

	c.logger.Debugw("Scrub tap", "session", c.session, "zone", zone, "ratio", snapped)
	update := Update{Zone: zone, Ratio: snapped}
	if cb := c.cb.OnScrubEnd; cb != nil {
		c.emit(func() { cb(update) })
	}
	c.miniScrubLocked(snapped)
	c.scheduleAutoAdvanceLocked(snapped)
}

func (c *Controller) completeLocked() {
	if c.words == nil || !c.words.Ready() {
		c.completionPending = true
		c.logger.Debugw("Completion pending word audio", "session", c.session)
		return
	}
	c.fireCompletionLocked()
}

func (c *Controller) fireCompletionLocked() {
	c.completionPending = false
	c.furthest = len(c.units) - 1
	c.emit(c.cb.OnComplete)

	c.player.StopAll(c.cfg.StopFade)
	if words := c.words; words != nil {
		c.afterFunc(c.cfg.WordDelay, words.PlayWord)
	}
}

// WordAudioReady fires a completion that was waiting for word audio
func (c *Controller) WordAudioReady() {
	c.do(func() {
		if c.completionPending && c.words != nil && c.words.Ready() {
			c.fireCompletionLocked()
		}
	})
}

// CompletionPending reports whether a completion awaits word audio
func (c *Controller) CompletionPending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completionPending
}

// Furthest returns the furthest zone reached, -1 before any
func (c *Controller) Furthest() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.furthest
}

// Zone returns the current zone, NoZone when idle
func (c *Controller) Zone() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.zone
}

// Dragging reports whether a drag is in progress
func (c *Controller) Dragging() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state == stateDragging
}

// Session returns the id of the current or last drag
func (c *Controller) Session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Tick advances the smoothed visual progress one step and returns it
func (c *Controller) Tick() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	diff := c.target - c.visual
	if math.Abs(diff) <= c.cfg.SnapEpsilon {
		c.visual = c.target
	} else {
		c.visual += diff * c.cfg.Smoothing
	}
	return c.visual
}

// Progress returns the smoothed visual progress without advancing it
func (c *Controller) Progress() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visual
}

func (c *Controller) setTargetLocked(ratio float64, immediate bool) {
	c.target = clampRatio(ratio)
	if immediate {
		c.visual = c.target
	}
}

func (c *Controller) miniScrubLocked(center float64) {
	c.stopMiniScrubLocked()
	steps := []struct {
		after time.Duration
		ratio float64
	}{
		{60 * time.Millisecond, center + 0.015},
		{140 * time.Millisecond, center - 0.01},
		{240 * time.Millisecond, center},
	}
	for _, s := range steps {
		ratio := s.ratio
		c.miniScrub = append(c.miniScrub, c.afterFunc(s.after, func() {
			c.do(func() { c.setTargetLocked(ratio, false) })
		}))
	}
}

func (c *Controller) scheduleAutoAdvanceLocked(origin float64) {
	c.stopAutoAdvanceLocked()
	if len(c.anchors) <= 1 {
		return
	}
	next := Nearest(c.anchors, origin) + 1
	if next >= len(c.anchors) {
		return
	}
	ratio := c.anchors[next]
	gen := c.advanceGen
	c.autoAdvance = c.afterFunc(c.cfg.AutoAdvanceDelay, func() {
		c.do(func() {
			if gen != c.advanceGen {
				return
			}
			c.autoAdvance = nil
			c.setTargetLocked(ratio, false)
			if cb := c.cb.OnAutoAdvance; cb != nil {
				update := Update{Zone: next, Ratio: ratio}
				c.emit(func() { cb(update) })
			}
		})
	})
}

func (c *Controller) stopAutoAdvanceLocked() {
	c.advanceGen++
	if c.autoAdvance != nil {
		c.autoAdvance.Stop()
		c.autoAdvance = nil
	}
}

func (c *Controller) stopMiniScrubLocked() {
	for _, t := range c.miniScrub {
		t.Stop()
	}
	c.miniScrub = nil
}

func (c *Controller) clearTimersLocked() {
	c.stopAutoAdvanceLocked()
	c.stopMiniScrubLocked()
}
