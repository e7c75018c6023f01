// ABOUTME: Tests for lesson wiring
// ABOUTME: Drives full scrubs against a silent output and on-disk assets
package lesson

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/slidesounds/slidesounds-go/pkg/assets"
	"github.com/slidesounds/slidesounds-go/pkg/audio"
	"github.com/slidesounds/slidesounds-go/pkg/audio/encode"
	"github.com/slidesounds/slidesounds-go/pkg/audio/output"
	"github.com/slidesounds/slidesounds-go/pkg/blend"
	"github.com/slidesounds/slidesounds-go/pkg/engine"
	"github.com/slidesounds/slidesounds-go/pkg/phonics"
	"github.com/slidesounds/slidesounds-go/pkg/scrub"
)

type memoryStore struct {
	mu    sync.Mutex
	words []string
}

func (s *memoryStore) MarkWordComplete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.words = append(s.words, id)
	return nil
}

func (s *memoryStore) CompletedWords(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.words...), nil
}

func (s *memoryStore) IsComplete(_ context.Context, id string) (bool, error) {
	words, _ := s.CompletedWords(context.Background())
	for _, w := range words {
		if w == id {
			return true, nil
		}
	}
	return false, nil
}

func (s *memoryStore) HasSeenTutorial(context.Context) (bool, error) { return false, nil }
func (s *memoryStore) SetTutorialSeen(context.Context) error         { return nil }
func (s *memoryStore) Reset(context.Context) error                   { return nil }
func (s *memoryStore) Close() error                                  { return nil }

// gatedFetcher holds word audio requests until released
type gatedFetcher struct {
	assets.Fetcher
	gate chan struct{}
}

func (g *gatedFetcher) Fetch(ctx context.Context, p string) ([]byte, error) {
	if strings.Contains(p, "audio/words/") {
		select {
		case <-g.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return nil, assets.ErrNotFound
	}
	return g.Fetcher.Fetch(ctx, p)
}

func writeWAV(t *testing.T, path string) {
	t.Helper()
	buf := audio.NewBuffer(44100, 1, 2205)
	for i := range buf.Samples {
		buf.Samples[i] = audio.SampleFromInt16(int16(i % 1000))
	}
	var out bytes.Buffer
	if err := encode.WAV(&out, buf, 16); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, out.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}
}

// phonemeDir writes a short clip for every phoneme in the default table
func phonemeDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, ref := range phonics.DefaultTable().AudioRefs() {
		writeWAV(t, filepath.Join(dir, string(ref)))
	}
	return dir
}

type fixture struct {
	lesson *Lesson
	store  *memoryStore
	done   chan string
}

func newFixture(t *testing.T, words *blend.Loader, eng *engine.Engine) *fixture {
	t.Helper()
	f := &fixture{store: &memoryStore{}, done: make(chan string, 4)}
	l, err := New(Config{
		Engine:   eng,
		Words:    words,
		Progress: f.store,
		Geometry: scrub.GeometryFunc(func() scrub.Layout {
			return scrub.Layout{Left: 0, Width: 300}
		}),
		Events: Events{
			OnComplete: func(id string) { f.done <- id },
		},
	})
	if err != nil {
		t.Fatalf("new lesson: %v", err)
	}
	f.lesson = l
	t.Cleanup(l.Close)
	return f
}

func newEngine(t *testing.T, fetcher assets.Fetcher) *engine.Engine {
	t.Helper()
	eng, err := engine.New(engine.Config{Fetcher: fetcher, Device: output.NewDiscard()})
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	t.Cleanup(func() { eng.Close() })
	return eng
}

func waitPrepared(t *testing.T, l *Lesson) {
	t.Helper()
	select {
	case <-l.Prepared():
	case <-time.After(5 * time.Second):
		t.Fatal("timed out preparing word")
	}
}

func fullScrub(ctrl *scrub.Controller) {
	ctrl.PointerDown(scrub.Pointer{ID: 1, X: 15})
	ctrl.PointerMove(scrub.Pointer{ID: 1, X: 150})
	ctrl.PointerMove(scrub.Pointer{ID: 1, X: 285})
	ctrl.PointerUp(scrub.Pointer{ID: 1, X: 280})
}

func TestNewRequiresEngine(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error without engine")
	}
}

func TestSetWordBlendsWithoutRecording(t *testing.T) {
	fetcher := assets.NewDir(phonemeDir(t))
	eng := newEngine(t, fetcher)
	f := newFixture(t, nil, eng)

	parsed, err := f.lesson.SetWord("sat")
	if err != nil {
		t.Fatalf("set word: %v", err)
	}
	if len(parsed.Units) != 3 {
		t.Fatalf("expected 3 units, got %d", len(parsed.Units))
	}
	waitPrepared(t, f.lesson)

	wa := f.lesson.WordAudio()
	if wa == nil {
		t.Fatal("expected word audio")
	}
	if wa.Source != blend.SourceBlended {
		t.Errorf("expected blended audio, got %s", wa.Source)
	}
	if len(wa.Zones) != 3 {
		t.Errorf("expected 3 zones, got %d", len(wa.Zones))
	}
	for _, u := range parsed.Units {
		if !eng.Cached(string(u.Audio)) {
			t.Errorf("expected %s preloaded", u.Audio)
		}
	}
}

func TestPrerecordedWordAudio(t *testing.T) {
	dir := phonemeDir(t)
	writeWAV(t, filepath.Join(dir, "audio/words/sat.wav"))
	fetcher := assets.NewDir(dir)
	eng := newEngine(t, fetcher)
	words := blend.NewLoader(eng, blend.WithWordPath(func(id string) string {
		return "audio/words/" + id + ".wav"
	}))
	f := newFixture(t, words, eng)

	if _, err := f.lesson.SetWord("sat"); err != nil {
		t.Fatalf("set word: %v", err)
	}
	waitPrepared(t, f.lesson)

	wa := f.lesson.WordAudio()
	if wa == nil || wa.Source != blend.SourcePrerecorded {
		t.Errorf("expected prerecorded audio, got %+v", wa)
	}
}

func TestFullScrubCompletesAndSavesProgress(t *testing.T) {
	fetcher := assets.NewDir(phonemeDir(t))
	eng := newEngine(t, fetcher)
	f := newFixture(t, nil, eng)

	if _, err := f.lesson.SetWord("sat"); err != nil {
		t.Fatalf("set word: %v", err)
	}
	waitPrepared(t, f.lesson)

	fullScrub(f.lesson.Controller())

	select {
	case id := <-f.done:
		if id != "sat" {
			t.Errorf("expected sat complete, got %s", id)
		}
	case <-time.After(time.Second):
		t.Fatal("expected completion")
	}

	f.lesson.Close()
	done, _ := f.store.IsComplete(context.Background(), "sat")
	if !done {
		t.Error("expected progress saved")
	}
}

func TestCompletionWaitsForWordAudio(t *testing.T) {
	gated := &gatedFetcher{Fetcher: assets.NewDir(phonemeDir(t)), gate: make(chan struct{})}
	eng := newEngine(t, gated)
	f := newFixture(t, nil, eng)

	if _, err := f.lesson.SetWord("sat"); err != nil {
		t.Fatalf("set word: %v", err)
	}

	fullScrub(f.lesson.Controller())

	select {
	case <-f.done:
		t.Fatal("expected completion to wait for word audio")
	case <-time.After(50 * time.Millisecond):
	}
	if !f.lesson.Controller().CompletionPending() {
		t.Fatal("expected pending completion")
	}

	close(gated.gate)
	select {
	case id := <-f.done:
		if id != "sat" {
			t.Errorf("expected sat, got %s", id)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("expected pending completion to fire")
	}
}

func TestSetWordNotPlayable(t *testing.T) {
	fetcher := assets.NewDir(phonemeDir(t))
	eng := newEngine(t, fetcher)
	f := newFixture(t, nil, eng)

	parsed, err := f.lesson.SetWord("c@t")
	if !errors.Is(err, ErrNotPlayable) {
		t.Fatalf("expected ErrNotPlayable, got %v", err)
	}
	if len(parsed.Missing) == 0 {
		t.Error("expected missing graphemes")
	}
	select {
	case <-f.lesson.Prepared():
	default:
		t.Error("expected prepared to be closed for unplayable words")
	}
	if f.lesson.WordAudio() != nil {
		t.Error("expected no word audio")
	}
}

func TestSetWordReplacesPrevious(t *testing.T) {
	fetcher := assets.NewDir(phonemeDir(t))
	eng := newEngine(t, fetcher)
	f := newFixture(t, nil, eng)

	f.lesson.SetWord("sat")
	waitPrepared(t, f.lesson)
	f.lesson.SetWord("pin")
	waitPrepared(t, f.lesson)

	if f.lesson.WordID() != "pin" {
		t.Errorf("expected pin active, got %s", f.lesson.WordID())
	}
	if f.lesson.Controller().Furthest() != -1 {
		t.Error("expected watermark reset for the new word")
	}
	if got := f.lesson.Parsed().Word; got != "pin" {
		t.Errorf("expected parsed pin, got %s", got)
	}
}

type flakyFetcher struct {
	assets.Fetcher
	mu      sync.Mutex
	failing string
}

func (f *flakyFetcher) Fetch(ctx context.Context, p string) ([]byte, error) {
	f.mu.Lock()
	failing := f.failing
	f.mu.Unlock()
	if failing != "" && strings.HasSuffix(p, failing) {
		return nil, assets.ErrNotFound
	}
	return f.Fetcher.Fetch(ctx, p)
}

func TestReselectRecoversFailedPhoneme(t *testing.T) {
	fetcher := &flakyFetcher{Fetcher: assets.NewDir(phonemeDir(t)), failing: "/t.wav"}
	eng := newEngine(t, fetcher)
	f := newFixture(t, nil, eng)

	if _, err := f.lesson.SetWord("sat"); err != nil {
		t.Fatal(err)
	}
	waitPrepared(t, f.lesson)
	if wa := f.lesson.WordAudio(); wa == nil || len(wa.Zones) != 2 {
		t.Fatalf("expected a 2 zone blend without t, got %+v", wa)
	}

	fetcher.mu.Lock()
	fetcher.failing = ""
	fetcher.mu.Unlock()

	if _, err := f.lesson.SetWord("sat"); err != nil {
		t.Fatal(err)
	}
	waitPrepared(t, f.lesson)
	if wa := f.lesson.WordAudio(); wa == nil || len(wa.Zones) != 3 {
		t.Errorf("expected the full 3 zone blend after reselecting, got %+v", wa)
	}
}
