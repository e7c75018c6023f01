// ABOUTME: Zone anchor layouts
// ABOUTME: Canonical edge-to-edge anchors, inset anchors and nearest lookup
package scrub

import (
	"math"

	"github.com/slidesounds/slidesounds-go/pkg/phonics"
)

// CanonicalAnchors spreads n anchors edge to edge: none for 0, the centre
// for 1, otherwise i/(n-1).
func CanonicalAnchors(n int) []float64 {
	switch n {
	case 0:
		return []float64{}
	case 1:
		return []float64{0.5}
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = float64(i) / float64(n-1)
	}
	return out
}

// InsetAnchors pads the anchors in from the track edges, more for short
// words. A consonant followed by a multi-letter chunk sits close to the
// centre like a three-letter word.
func InsetAnchors(units []phonics.Unit) []float64 {
	n := len(units)
	switch {
	case n == 0:
		return []float64{}
	case n == 1:
		return []float64{0.5}
	case n == 2 && len([]rune(units[1].Grapheme)) > 1:
		const gap = 0.24
		return []float64{0.5 - gap/2, 0.5 + gap/2}
	}

	padding := 0.08
	switch n {
	case 2:
		padding = 0.25
	case 3:
		padding = 0.18
	case 4:
		padding = 0.12
	}

	span := 1 - 2*padding
	out := CanonicalAnchors(n)
	for i, v := range out {
		out[i] = padding + v*span
	}
	return out
}

// Nearest returns the index of the anchor closest to ratio, or -1 when
// there are no anchors. Ties go to the lower index.
func Nearest(anchors []float64, ratio float64) int {
	if len(anchors) == 0 {
		return -1
	}
	ratio = clampRatio(ratio)
	best := 0
	bestDist := math.Abs(ratio - anchors[0])
	for i := 1; i < len(anchors); i++ {
		if d := math.Abs(ratio - anchors[i]); d < bestDist {
			best = i
			bestDist = d
		}
	}
	return best
}

func clampRatio(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return math.Min(1, math.Max(0, v))
}

// validAnchors uses override when it matches n units, clamping each value
// and keeping the sequence non-decreasing. Otherwise canonical anchors.
func validAnchors(override []float64, n int) []float64 {
	if len(override) != n {
		return CanonicalAnchors(n)
	}
	out := make([]float64, n)
	for i, v := range override {
		v = clampRatio(v)
		if i > 0 && v < out[i-1] {
			v = out[i-1]
		}
		out[i] = v
	}
	return out
}
