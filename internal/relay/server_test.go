// ABOUTME: Tests for the websocket gesture relay
// ABOUTME: Drives handshakes, word selection and full scrubs over a real websocket
package relay

import (
	"bytes"
	"encoding/json"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/slidesounds/slidesounds-go/internal/lesson"
	"github.com/slidesounds/slidesounds-go/pkg/assets"
	"github.com/slidesounds/slidesounds-go/pkg/audio"
	"github.com/slidesounds/slidesounds-go/pkg/audio/encode"
	"github.com/slidesounds/slidesounds-go/pkg/audio/output"
	"github.com/slidesounds/slidesounds-go/pkg/engine"
	"github.com/slidesounds/slidesounds-go/pkg/phonics"
	"github.com/slidesounds/slidesounds-go/pkg/scrub"
)

type received struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

func phonemeAssets(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	clip := audio.NewBuffer(44100, 1, 2205)
	var wav bytes.Buffer
	if err := encode.WAV(&wav, clip, 16); err != nil {
		t.Fatal(err)
	}
	for _, ref := range phonics.DefaultTable().AudioRefs() {
		path := filepath.Join(dir, string(ref))
		os.MkdirAll(filepath.Dir(path), 0o755)
		if err := os.WriteFile(path, wav.Bytes(), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	return dir
}

func newTestRelay(t *testing.T) (*Server, string) {
	t.Helper()
	eng, err := engine.New(engine.Config{
		Fetcher: assets.NewDir(phonemeAssets(t)),
		Device:  output.NewDiscard(),
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { eng.Close() })

	s, err := New(Config{
		Name: "Test Relay",
		NewLesson: func(events lesson.Events, geom scrub.Geometry) (*lesson.Lesson, error) {
			return lesson.New(lesson.Config{Engine: eng, Events: events, Geometry: geom})
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, "ws" + strings.TrimPrefix(ts.URL, "http") + "/scrub"
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func sendMsg(t *testing.T, conn *websocket.Conn, msgType string, payload interface{}) {
	t.Helper()
	if err := conn.WriteJSON(Message{Type: msgType, Payload: payload}); err != nil {
		t.Fatalf("write %s: %v", msgType, err)
	}
}

// waitFor reads until a message of msgType arrives
func waitFor(t *testing.T, conn *websocket.Conn, msgType string) received {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	for {
		var msg received
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("waiting for %s: %v", msgType, err)
		}
		if msg.Type == msgType {
			return msg
		}
	}
}

func handshake(t *testing.T, url string) (*websocket.Conn, ServerHello) {
	t.Helper()
	conn := dial(t, url)
	sendMsg(t, conn, TypeClientHello, ClientHello{Name: "tablet"})

	msg := waitFor(t, conn, TypeServerHello)
	var hello ServerHello
	if err := json.Unmarshal(msg.Payload, &hello); err != nil {
		t.Fatal(err)
	}
	return conn, hello
}

func TestNewRequiresFactory(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error without lesson factory")
	}
}

func TestHandshake(t *testing.T) {
	s, url := newTestRelay(t)
	_, hello := handshake(t, url)

	if hello.ClientID == "" || hello.ServerID == "" {
		t.Errorf("expected ids, got %+v", hello)
	}
	if hello.Name != "Test Relay" || hello.Version != ProtocolVersion {
		t.Errorf("unexpected hello %+v", hello)
	}
	if s.Clients() != 1 {
		t.Errorf("expected 1 client, got %d", s.Clients())
	}
}

func TestHandshakeRejectsOtherFirstMessage(t *testing.T) {
	_, url := newTestRelay(t)
	conn := dial(t, url)

	sendMsg(t, conn, TypeWord, WordRequest{WordID: "sat"})

	msg := waitFor(t, conn, TypeServerError)
	var payload ErrorPayload
	json.Unmarshal(msg.Payload, &payload)
	if payload.Error != "bad_hello" {
		t.Errorf("expected bad_hello, got %+v", payload)
	}
}

func TestSelectWord(t *testing.T) {
	_, url := newTestRelay(t)
	conn, _ := handshake(t, url)

	sendMsg(t, conn, TypeWord, WordRequest{WordID: "sat"})

	msg := waitFor(t, conn, TypeSegments)
	var seg Segments
	if err := json.Unmarshal(msg.Payload, &seg); err != nil {
		t.Fatal(err)
	}
	if !seg.Playable || len(seg.Units) != 3 {
		t.Fatalf("expected 3 playable units, got %+v", seg)
	}
	if seg.Units[0].Grapheme != "s" || seg.Units[1].Color != "vowel" {
		t.Errorf("unexpected units %+v", seg.Units)
	}
	if len(seg.Anchors) != 3 {
		t.Errorf("expected 3 anchors, got %v", seg.Anchors)
	}
}

// controllerAnchors waits until the connected client's controller reports
// want, returning the last anchors seen
func controllerAnchors(t *testing.T, s *Server, want []float64) []float64 {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		var got []float64
		s.clientsMu.RLock()
		for _, c := range s.clients {
			got = c.lesson.Controller().Anchors()
		}
		s.clientsMu.RUnlock()
		if reflect.DeepEqual(got, want) || time.Now().After(deadline) {
			return got
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestSegmentsAnchorsMatchController(t *testing.T) {
	s, url := newTestRelay(t)
	conn, _ := handshake(t, url)

	sendMsg(t, conn, TypeLayout, LayoutUpdate{Left: 0, Width: 300})
	sendMsg(t, conn, TypeWord, WordRequest{WordID: "sat"})

	msg := waitFor(t, conn, TypeSegments)
	var seg Segments
	if err := json.Unmarshal(msg.Payload, &seg); err != nil {
		t.Fatal(err)
	}

	parsed := phonics.Segment("sat")
	want := scrub.InsetAnchors(parsed.Units)
	if !reflect.DeepEqual(seg.Anchors, want) {
		t.Errorf("expected inset anchors %v, got %v", want, seg.Anchors)
	}
	if got := controllerAnchors(t, s, seg.Anchors); !reflect.DeepEqual(got, seg.Anchors) {
		t.Errorf("expected controller anchors %v, got %v", seg.Anchors, got)
	}

	// A later layout without anchors keeps the advertised ones
	sendMsg(t, conn, TypeLayout, LayoutUpdate{Left: 0, Width: 600})
	sendMsg(t, conn, TypePointerDown, PointerEvent{PointerID: 1, X: 10})
	waitFor(t, conn, TypeScrubStart)
	sendMsg(t, conn, TypePointerCancel, PointerEvent{PointerID: 1})
	if got := controllerAnchors(t, s, seg.Anchors); !reflect.DeepEqual(got, seg.Anchors) {
		t.Errorf("expected anchors to survive resize, got %v", got)
	}

	// Client anchors still override
	custom := []float64{0.1, 0.4, 0.9}
	sendMsg(t, conn, TypeLayout, LayoutUpdate{Left: 0, Width: 600, Anchors: custom})
	if got := controllerAnchors(t, s, custom); !reflect.DeepEqual(got, custom) {
		t.Errorf("expected client anchors %v, got %v", custom, got)
	}
}

func TestSelectUnplayableWord(t *testing.T) {
	_, url := newTestRelay(t)
	conn, _ := handshake(t, url)

	sendMsg(t, conn, TypeWord, WordRequest{WordID: "c@t"})

	msg := waitFor(t, conn, TypeSegments)
	var seg Segments
	json.Unmarshal(msg.Payload, &seg)
	if seg.Playable {
		t.Error("expected unplayable word")
	}

	msg = waitFor(t, conn, TypeServerError)
	var payload ErrorPayload
	json.Unmarshal(msg.Payload, &payload)
	if payload.Error != "not_playable" {
		t.Errorf("expected not_playable, got %+v", payload)
	}
}

func TestMissingWordID(t *testing.T) {
	_, url := newTestRelay(t)
	conn, _ := handshake(t, url)

	sendMsg(t, conn, TypeWord, WordRequest{})

	msg := waitFor(t, conn, TypeServerError)
	var payload ErrorPayload
	json.Unmarshal(msg.Payload, &payload)
	if payload.Error != "bad_request" {
		t.Errorf("expected bad_request, got %+v", payload)
	}
}

func TestFullScrubOverRelay(t *testing.T) {
	_, url := newTestRelay(t)
	conn, _ := handshake(t, url)

	sendMsg(t, conn, TypeLayout, LayoutUpdate{Left: 0, Width: 300})
	sendMsg(t, conn, TypeWord, WordRequest{WordID: "sat"})
	waitFor(t, conn, TypeSegments)
	waitFor(t, conn, TypeWordAudio)

	sendMsg(t, conn, TypePointerDown, PointerEvent{PointerID: 7, X: 10})
	waitFor(t, conn, TypeScrubStart)
	sendMsg(t, conn, TypePointerMove, PointerEvent{PointerID: 7, X: 150})

	msg := waitFor(t, conn, TypeScrubMove)
	var move ScrubUpdate
	json.Unmarshal(msg.Payload, &move)
	if move.Zone != 0 {
		t.Errorf("expected first move in zone 0, got %+v", move)
	}

	sendMsg(t, conn, TypePointerMove, PointerEvent{PointerID: 7, X: 290})
	sendMsg(t, conn, TypePointerUp, PointerEvent{PointerID: 7, X: 285})

	waitFor(t, conn, TypeScrubEnd)
	msg = waitFor(t, conn, TypeComplete)
	var done WordEvent
	json.Unmarshal(msg.Payload, &done)
	if done.WordID != "sat" {
		t.Errorf("expected sat complete, got %+v", done)
	}
}

func TestDisconnectUnregisters(t *testing.T) {
	s, url := newTestRelay(t)
	conn, _ := handshake(t, url)

	conn.Close()

	deadline := time.Now().Add(5 * time.Second)
	for s.Clients() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("expected client to be removed after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
