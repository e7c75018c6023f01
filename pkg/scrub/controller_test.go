// ABOUTME: Tests for the scrub gesture state machine
// ABOUTME: Tests zone playback, stop gating, taps, completion and smoothing
package scrub

import (
	"sync"
	"testing"
	"time"

	"github.com/slidesounds/slidesounds-go/pkg/phonics"
)

type fakeTimer struct {
	after   time.Duration
	fn      func()
	stopped bool
}

func (t *fakeTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

func (c *fakeClock) afterFunc(d time.Duration, fn func()) timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{after: d, fn: fn}
	c.timers = append(c.timers, t)
	return t
}

// fire runs every live timer scheduled for d
func (c *fakeClock) fire(d time.Duration) int {
	c.mu.Lock()
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && t.after == d {
			t.stopped = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	for _, t := range due {
		t.fn()
	}
	return len(due)
}

type fakePlayer struct {
	played     []string
	crossfades []bool
	stops      int
	resumes    int
	resets     int
}

func (p *fakePlayer) Resume()          { p.resumes++ }
func (p *fakePlayer) ResetLastPlayed() { p.resets++ }
func (p *fakePlayer) StopAll(fade time.Duration) {
	p.stops++
}
func (p *fakePlayer) Play(u phonics.Unit, crossfade bool) bool {
	p.played = append(p.played, u.ID)
	p.crossfades = append(p.crossfades, crossfade)
	return true
}

type fakeWords struct {
	ready bool
	plays int
}

func (w *fakeWords) Ready() bool { return w.ready }
func (w *fakeWords) PlayWord()   { w.plays++ }

type recorder struct {
	starts    int
	moves     []Update
	ends      []Update
	completes int
	advances  []Update
}

func (r *recorder) callbacks() Callbacks {
	return Callbacks{
		OnScrubStart:  func() { r.starts++ },
		OnScrubMove:   func(u Update) { r.moves = append(r.moves, u) },
		OnScrubEnd:    func(u Update) { r.ends = append(r.ends, u) },
		OnComplete:    func() { r.completes++ },
		OnAutoAdvance: func(u Update) { r.advances = append(r.advances, u) },
	}
}

var cat = []phonics.Unit{
	{ID: "c-0", Grapheme: "c", Audio: "audio/phonemes/k.wav", IsStop: true},
	{ID: "a-1", Grapheme: "a", Audio: "audio/phonemes/a_short.wav"},
	{ID: "t-2", Grapheme: "t", Audio: "audio/phonemes/t.wav", IsStop: true},
}

type harness struct {
	ctrl   *Controller
	player *fakePlayer
	words  *fakeWords
	rec    *recorder
	clock  *fakeClock
	layout *Layout
}

// newHarness builds a controller over a 300px track starting at x=100
func newHarness(t *testing.T, units []phonics.Unit) *harness {
	t.Helper()
	h := &harness{
		player: &fakePlayer{},
		words:  &fakeWords{ready: true},
		rec:    &recorder{},
		clock:  &fakeClock{},
		layout: &Layout{Left: 100, Width: 300},
	}
	geom := GeometryFunc(func() Layout { return *h.layout })
	h.ctrl = New(Config{}, geom, h.player, h.words, h.rec.callbacks())
	h.ctrl.afterFunc = h.clock.afterFunc
	h.ctrl.SetWord(units)
	return h
}

// x converts a track ratio to a screen coordinate
func (h *harness) x(ratio float64) float64 {
	return h.layout.Left + ratio*h.layout.Width
}

func (h *harness) drag(ratios ...float64) {
	h.ctrl.PointerDown(Pointer{ID: 1, X: h.x(ratios[0])})
	for _, r := range ratios[1:] {
		h.ctrl.PointerMove(Pointer{ID: 1, X: h.x(r)})
	}
}

func TestCatScrub(t *testing.T) {
	h := newHarness(t, cat)

	if got := h.ctrl.Anchors(); !equalAnchors(got, []float64{0, 0.5, 1}) {
		t.Errorf("expected anchors [0 0.5 1], got %v", got)
	}

	h.drag(0, 0.1, 0.5, 1)

	expected := []string{"c-0", "a-1", "t-2"}
	if len(h.player.played) != len(expected) {
		t.Fatalf("expected plays %v, got %v", expected, h.player.played)
	}
	for i, id := range expected {
		if h.player.played[i] != id {
			t.Errorf("play %d: expected %s, got %s", i, id, h.player.played[i])
		}
	}
	if h.player.crossfades[0] {
		t.Error("expected first touch to play without crossfade")
	}
	if !h.player.crossfades[1] {
		t.Error("expected zone change to crossfade")
	}
	if h.rec.starts != 1 {
		t.Errorf("expected 1 scrub start, got %d", h.rec.starts)
	}
	if h.player.resumes != 1 {
		t.Errorf("expected audio resume on pointer down, got %d", h.player.resumes)
	}
}

func TestStopConsonantOncePerDrag(t *testing.T) {
	h := newHarness(t, cat)

	h.drag(0.5, 1, 0.5, 1, 0.5)

	expected := []string{"a-1", "t-2", "a-1", "a-1"}
	if len(h.player.played) != len(expected) {
		t.Fatalf("expected plays %v, got %v", expected, h.player.played)
	}
	for i, id := range expected {
		if h.player.played[i] != id {
			t.Errorf("play %d: expected %s, got %s", i, id, h.player.played[i])
		}
	}

	// A new drag clears the played set
	h.ctrl.PointerUp(Pointer{ID: 1, X: h.x(0.5)})
	h.drag(1)
	if last := h.player.played[len(h.player.played)-1]; last != "t-2" {
		t.Errorf("expected stop consonant to play in a new drag, got %s", last)
	}
}

func TestFirstTouchAlwaysPlays(t *testing.T) {
	h := newHarness(t, cat)

	h.drag(0.5)
	h.ctrl.PointerUp(Pointer{ID: 1, X: h.x(0.5)})
	h.drag(0.5)

	if len(h.player.played) != 2 {
		t.Errorf("expected the same zone to play on each new touch, got %v", h.player.played)
	}
}

func TestCompletionRequiresStartTouch(t *testing.T) {
	h := newHarness(t, cat)

	h.drag(0.50, 0.70, 0.95)
	h.ctrl.PointerUp(Pointer{ID: 1, X: h.x(0.95)})

	if h.rec.completes != 0 {
		t.Error("expected no completion without touching the start")
	}
	if h.words.plays != 0 {
		t.Error("expected no word playback")
	}
}

func TestCompletionFullTraversal(t *testing.T) {
	h := newHarness(t, cat)

	h.drag(0.05, 0.5, 0.95)
	h.ctrl.PointerUp(Pointer{ID: 1, X: h.x(0.93)})

	if h.rec.completes != 1 {
		t.Fatalf("expected completion, got %d", h.rec.completes)
	}
	if h.player.stops == 0 {
		t.Error("expected audio to stop on release")
	}
	if h.words.plays != 0 {
		t.Error("expected word playback to wait for the stop fade")
	}
	if n := h.clock.fire(60 * time.Millisecond); n != 1 {
		t.Fatalf("expected one delayed word playback, got %d", n)
	}
	if h.words.plays != 1 {
		t.Errorf("expected word to play once, got %d", h.words.plays)
	}
	if h.ctrl.Furthest() != 2 {
		t.Errorf("expected furthest 2 after completion, got %d", h.ctrl.Furthest())
	}
}

func TestCompletionRequiresHighRelease(t *testing.T) {
	h := newHarness(t, cat)

	h.drag(0.05, 0.95, 0.6)
	h.ctrl.PointerUp(Pointer{ID: 1, X: h.x(0.6)})

	if h.rec.completes != 0 {
		t.Error("expected no completion when released early in the track")
	}
}

func TestCancelNeverCompletes(t *testing.T) {
	h := newHarness(t, cat)

	h.drag(0.05, 0.5, 0.95)
	h.ctrl.PointerCancel(Pointer{ID: 1})

	if h.rec.completes != 0 {
		t.Error("expected cancel not to complete")
	}
	if h.ctrl.Dragging() {
		t.Error("expected idle after cancel")
	}
	if len(h.rec.ends) != 1 {
		t.Errorf("expected scrub end on cancel, got %d", len(h.rec.ends))
	}
}

func TestCancelAfterShortPress(t *testing.T) {
	h := newHarness(t, cat)

	h.ctrl.PointerDown(Pointer{ID: 1, X: h.x(0.4)})
	played := len(h.player.played)
	h.ctrl.PointerCancel(Pointer{ID: 1})

	if len(h.player.played) != played {
		t.Errorf("expected no tap playback on cancel, got %v", h.player.played[played:])
	}
	if h.player.stops != 1 {
		t.Errorf("expected audio stopped on cancel, got %d stops", h.player.stops)
	}
	if n := h.clock.fire(700 * time.Millisecond); n != 0 {
		t.Errorf("expected no auto-advance after cancel, got %d", n)
	}
	if n := h.clock.fire(60 * time.Millisecond); n != 0 {
		t.Errorf("expected no tap nudge after cancel, got %d", n)
	}
	if len(h.rec.ends) != 1 {
		t.Errorf("expected scrub end on cancel, got %d", len(h.rec.ends))
	}
	if h.ctrl.Dragging() {
		t.Error("expected idle after cancel")
	}
}

func TestPendingCompletion(t *testing.T) {
	h := newHarness(t, cat)
	h.words.ready = false

	h.drag(0, 0.5, 1)
	h.ctrl.PointerUp(Pointer{ID: 1, X: h.x(1)})

	if h.rec.completes != 0 {
		t.Fatal("expected completion to wait for word audio")
	}
	if !h.ctrl.CompletionPending() {
		t.Fatal("expected pending completion")
	}

	// Not ready yet: nothing happens
	h.ctrl.WordAudioReady()
	if h.rec.completes != 0 {
		t.Fatal("expected completion to keep waiting")
	}

	h.words.ready = true
	h.ctrl.WordAudioReady()
	if h.rec.completes != 1 {
		t.Errorf("expected completion once word audio is ready, got %d", h.rec.completes)
	}
	if h.ctrl.CompletionPending() {
		t.Error("expected pending flag cleared")
	}

	h.ctrl.WordAudioReady()
	if h.rec.completes != 1 {
		t.Error("expected completion to fire only once")
	}
}

func TestTapSnapsAndAutoAdvances(t *testing.T) {
	h := newHarness(t, cat)

	h.ctrl.PointerDown(Pointer{ID: 1, X: h.x(0.4)})
	h.ctrl.PointerMove(Pointer{ID: 1, X: h.x(0.4) + 5})
	h.ctrl.PointerUp(Pointer{ID: 1, X: h.x(0.4) + 5})

	if len(h.rec.ends) != 1 {
		t.Fatalf("expected one scrub end, got %d", len(h.rec.ends))
	}
	end := h.rec.ends[0]
	if end.Zone != 1 || end.Ratio != 0.5 {
		t.Errorf("expected snap to zone 1 at 0.5, got %+v", end)
	}
	if h.player.stops != 0 {
		t.Error("expected tap to let the sound ring out")
	}
	if h.rec.completes != 0 {
		t.Error("expected tap never to complete")
	}
	if h.ctrl.Progress() != 0.5 {
		t.Errorf("expected visual progress snapped to 0.5, got %v", h.ctrl.Progress())
	}

	if n := h.clock.fire(700 * time.Millisecond); n != 1 {
		t.Fatalf("expected auto-advance timer, got %d", n)
	}
	if len(h.rec.advances) != 1 || h.rec.advances[0].Zone != 2 || h.rec.advances[0].Ratio != 1 {
		t.Errorf("expected auto-advance to zone 2, got %+v", h.rec.advances)
	}
}

func TestTapMiniScrub(t *testing.T) {
	h := newHarness(t, cat)

	h.ctrl.PointerDown(Pointer{ID: 1, X: h.x(0.5)})
	h.ctrl.PointerUp(Pointer{ID: 1, X: h.x(0.5)})

	h.clock.fire(60 * time.Millisecond)
	if got := h.ctrl.target; !almostEqual(got, 0.515) {
		t.Errorf("expected forward nudge to 0.515, got %v", got)
	}
	h.clock.fire(140 * time.Millisecond)
	if got := h.ctrl.target; !almostEqual(got, 0.49) {
		t.Errorf("expected backward nudge to 0.49, got %v", got)
	}
	h.clock.fire(240 * time.Millisecond)
	if got := h.ctrl.target; got != 0.5 {
		t.Errorf("expected settle at 0.5, got %v", got)
	}
}

func TestAutoAdvanceCancelledByNewDrag(t *testing.T) {
	h := newHarness(t, cat)

	h.ctrl.PointerDown(Pointer{ID: 1, X: h.x(0)})
	h.ctrl.PointerUp(Pointer{ID: 1, X: h.x(0)})
	h.ctrl.PointerDown(Pointer{ID: 2, X: h.x(0.5)})

	if n := h.clock.fire(700 * time.Millisecond); n != 0 {
		t.Errorf("expected pointer down to cancel auto-advance, fired %d", n)
	}
}

func TestNoAutoAdvanceFromLastAnchor(t *testing.T) {
	h := newHarness(t, cat)

	h.ctrl.PointerDown(Pointer{ID: 1, X: h.x(1)})
	h.ctrl.PointerUp(Pointer{ID: 1, X: h.x(1)})

	if n := h.clock.fire(700 * time.Millisecond); n != 0 {
		t.Errorf("expected no auto-advance past the last anchor, fired %d", n)
	}
}

func TestDragEndSchedulesAutoAdvance(t *testing.T) {
	h := newHarness(t, cat)

	h.drag(0, 0.5)
	h.ctrl.PointerUp(Pointer{ID: 1, X: h.x(0.5)})

	if n := h.clock.fire(700 * time.Millisecond); n != 1 {
		t.Errorf("expected auto-advance after a drag, fired %d", n)
	}
}

func TestWatermarkNeverMovesBackward(t *testing.T) {
	h := newHarness(t, cat)

	h.drag(0, 1)
	if h.ctrl.Furthest() != 1 {
		t.Errorf("expected furthest 1 while on zone 2, got %d", h.ctrl.Furthest())
	}
	h.ctrl.PointerMove(Pointer{ID: 1, X: h.x(0)})
	if h.ctrl.Furthest() != 1 {
		t.Errorf("expected furthest to stay at 1, got %d", h.ctrl.Furthest())
	}
	h.ctrl.PointerMove(Pointer{ID: 1, X: h.x(0.5)})
	h.ctrl.PointerUp(Pointer{ID: 1, X: h.x(0.5)})
	if h.ctrl.Furthest() != 1 {
		t.Errorf("expected furthest 1 after release, got %d", h.ctrl.Furthest())
	}

	h.ctrl.SetWord(cat)
	if h.ctrl.Furthest() != -1 {
		t.Errorf("expected furthest reset on word change, got %d", h.ctrl.Furthest())
	}
}

func TestZeroWidthTrack(t *testing.T) {
	h := newHarness(t, cat)
	h.layout.Width = 0

	h.drag(0, 0.5, 1)
	h.ctrl.PointerUp(Pointer{ID: 1, X: 400})

	if len(h.player.played) != 0 {
		t.Errorf("expected no playback without geometry, got %v", h.player.played)
	}
	if h.rec.completes != 0 {
		t.Error("expected no completion without geometry")
	}
}

func TestResizeWhileDragging(t *testing.T) {
	h := newHarness(t, cat)

	h.drag(0)
	h.layout.Left = 0
	h.layout.Width = 600
	h.ctrl.Resize()

	// x=300 is the middle of the resized track
	h.ctrl.PointerMove(Pointer{ID: 1, X: 300})
	if last := h.player.played[len(h.player.played)-1]; last != "a-1" {
		t.Errorf("expected resized geometry to select a-1, got %s", last)
	}
}

func TestLayoutAnchorOverride(t *testing.T) {
	h := newHarness(t, cat)
	h.layout.Anchors = InsetAnchors(cat)
	h.ctrl.Resize()

	if got := h.ctrl.Anchors(); !equalAnchors(got, []float64{0.18, 0.5, 0.82}) {
		t.Errorf("expected inset anchors, got %v", got)
	}
}

func TestSilentZoneDoesNotPlay(t *testing.T) {
	cake := []phonics.Unit{
		{ID: "c-0", Grapheme: "c", Audio: "audio/phonemes/k.wav", IsStop: true},
		{ID: "c-long-1", Grapheme: "a", Audio: "audio/phonemes/a_long.wav"},
		{ID: "k-2", Grapheme: "k", Audio: "audio/phonemes/k.wav", IsStop: true},
		{ID: "silent-e-3", Grapheme: "e", IsSilent: true},
	}
	h := newHarness(t, cake)

	h.drag(1)
	if len(h.player.played) != 0 {
		t.Errorf("expected silent zone to stay quiet, got %v", h.player.played)
	}
	if h.ctrl.Zone() != 3 {
		t.Errorf("expected zone 3, got %d", h.ctrl.Zone())
	}
}

func TestOtherPointerIgnored(t *testing.T) {
	h := newHarness(t, cat)

	h.drag(0)
	h.ctrl.PointerDown(Pointer{ID: 2, X: h.x(1)})
	h.ctrl.PointerMove(Pointer{ID: 2, X: h.x(1)})
	h.ctrl.PointerUp(Pointer{ID: 2, X: h.x(1)})

	if !h.ctrl.Dragging() {
		t.Error("expected first pointer to keep the drag")
	}
	if len(h.player.played) != 1 {
		t.Errorf("expected only the first pointer to play, got %v", h.player.played)
	}
}

func TestTickSmoothing(t *testing.T) {
	h := newHarness(t, cat)

	h.drag(0, 1)

	expected := []float64{0.25, 0.4375, 0.578125}
	for i, want := range expected {
		if got := h.ctrl.Tick(); !almostEqual(got, want) {
			t.Errorf("tick %d: expected %v, got %v", i, want, got)
		}
	}

	for i := 0; i < 100; i++ {
		h.ctrl.Tick()
	}
	if got := h.ctrl.Progress(); got != 1 {
		t.Errorf("expected progress to snap to 1, got %v", got)
	}
}

func TestSessionIDs(t *testing.T) {
	h := newHarness(t, cat)

	h.drag(0)
	first := h.ctrl.Session()
	h.ctrl.PointerUp(Pointer{ID: 1, X: h.x(0)})
	h.drag(0)

	if first == "" || first == h.ctrl.Session() {
		t.Errorf("expected a fresh session id per drag, got %q then %q", first, h.ctrl.Session())
	}
}

func TestCallbacksMayReenter(t *testing.T) {
	h := newHarness(t, cat)
	h.ctrl.cb.OnScrubMove = func(Update) {
		_ = h.ctrl.Furthest()
	}

	done := make(chan struct{})
	go func() {
		h.drag(0, 0.5)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("callback re-entering the controller deadlocked")
	}
}
