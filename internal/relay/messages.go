// ABOUTME: Relay protocol message definitions
// ABOUTME: JSON envelopes exchanged with scrub front ends over the websocket
package relay

import (
	"encoding/json"

	"github.com/slidesounds/slidesounds-go/pkg/phonics"
)

// ProtocolVersion is sent in server/hello
const ProtocolVersion = 1

// Message types
const (
	TypeClientHello = "client/hello"
	TypeServerHello = "server/hello"
	TypeServerError = "server/error"

	TypeWord   = "lesson/word"
	TypeLayout = "lesson/layout"

	TypePointerDown   = "pointer/down"
	TypePointerMove   = "pointer/move"
	TypePointerUp     = "pointer/up"
	TypePointerCancel = "pointer/cancel"

	TypeSegments    = "word/segments"
	TypeWordAudio   = "word/audio"
	TypeComplete    = "word/complete"
	TypeScrubStart  = "scrub/start"
	TypeScrubMove   = "scrub/move"
	TypeScrubEnd    = "scrub/end"
	TypeAutoAdvance = "scrub/advance"
)

// Message is the envelope for all relay messages
type Message struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload,omitempty"`
}

// ClientHello opens a session
type ClientHello struct {
	Name string `json:"name"`
}

// ServerHello answers client/hello
type ServerHello struct {
	ClientID string `json:"client_id"`
	ServerID string `json:"server_id"`
	Name     string `json:"name"`
	Version  int    `json:"version"`
}

// ErrorPayload reports a rejected request
type ErrorPayload struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// WordRequest selects the active word
type WordRequest struct {
	WordID string `json:"word_id"`
}

// LayoutUpdate reports the client's track geometry in CSS pixels
type LayoutUpdate struct {
	Left    float64   `json:"left"`
	Width   float64   `json:"width"`
	Anchors []float64 `json:"anchors,omitempty"`
}

// PointerEvent is a pointer down/move/up/cancel
type PointerEvent struct {
	PointerID int64   `json:"pointer_id"`
	X         float64 `json:"x"`
}

// SegmentUnit is one unit as shown on the client track
type SegmentUnit struct {
	ID       string           `json:"id"`
	Grapheme string           `json:"grapheme"`
	Label    string           `json:"label"`
	Category phonics.Category `json:"category"`
	Color    string           `json:"color"`
	IsStop   bool             `json:"is_stop"`
	IsSilent bool             `json:"is_silent"`
}

// Segments describes the active word
type Segments struct {
	WordID   string        `json:"word_id"`
	Word     string        `json:"word"`
	Units    []SegmentUnit `json:"units"`
	Missing  []string      `json:"missing,omitempty"`
	Playable bool          `json:"playable"`
	Anchors  []float64     `json:"anchors"`
}

// ScrubUpdate reports a zone position
type ScrubUpdate struct {
	Zone  int     `json:"zone"`
	Ratio float64 `json:"ratio"`
}

// WordEvent names a word
type WordEvent struct {
	WordID string `json:"word_id"`
	Source string `json:"source,omitempty"`
}

// decodePayload re-decodes a generic payload into v
func decodePayload(payload interface{}, v interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

func segmentsFor(wordID string, parsed phonics.ParsedWord, anchors []float64) Segments {
	units := make([]SegmentUnit, len(parsed.Units))
	for i, u := range parsed.Units {
		units[i] = SegmentUnit{
			ID:       u.ID,
			Grapheme: u.Grapheme,
			Label:    u.Label,
			Category: u.Category,
			Color:    string(phonics.ColorFor(u.Category)),
			IsStop:   u.IsStop,
			IsSilent: u.IsSilent,
		}
	}
	return Segments{
		WordID:   wordID,
		Word:     parsed.Word,
		Units:    units,
		Missing:  parsed.Missing,
		Playable: parsed.Playable(),
		Anchors:  anchors,
	}
}
