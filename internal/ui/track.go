// ABOUTME: Terminal track geometry
// ABOUTME: Measures the scrub track in terminal cells for the gesture controller
package ui

import (
	"sync"

	"github.com/slidesounds/slidesounds-go/pkg/phonics"
	"github.com/slidesounds/slidesounds-go/pkg/scrub"
)

// TapDistanceCells is the tap threshold for cell-based pointer positions
const TapDistanceCells = 1.5

const trackMargin = 4

// Track is the scrub track laid out in terminal cells. It is shared by the
// model, which resizes it, and the controller, which measures it.
type Track struct {
	mu      sync.Mutex
	left    int
	width   int
	anchors []float64
}

// NewTrack returns a track with no width until the first resize
func NewTrack() *Track {
	return &Track{}
}

// Resize fits the track to a terminal width
func (t *Track) Resize(termWidth int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.left = trackMargin
	t.width = max(0, termWidth-2*trackMargin)
}

// SetUnits lays the anchors out for a word
func (t *Track) SetUnits(units []phonics.Unit) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.anchors = scrub.InsetAnchors(units)
}

// Measure implements scrub.Geometry
func (t *Track) Measure() scrub.Layout {
	t.mu.Lock()
	defer t.mu.Unlock()
	return scrub.Layout{
		Left:    float64(t.left),
		Width:   float64(t.width),
		Anchors: append([]float64(nil), t.anchors...),
	}
}

// Cell returns the column for a track ratio
func (t *Track) Cell(ratio float64) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.width <= 1 {
		return t.left
	}
	return t.left + int(ratio*float64(t.width-1)+0.5)
}

// Bounds returns the left column and width
func (t *Track) Bounds() (left, width int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.left, t.width
}
