// ABOUTME: Word buffer synthesis
// ABOUTME: Lays out phoneme clips on one timeline and mixes overlaps
package blend

import (
	"time"

	"github.com/slidesounds/slidesounds-go/pkg/audio"
	"github.com/slidesounds/slidesounds-go/pkg/audio/resample"
	"github.com/slidesounds/slidesounds-go/pkg/phonics"
)

// ContinuousOverlap is how far a continuous sound starts before the
// previous clip ends
const ContinuousOverlap = 35 * time.Millisecond

// Entry pairs a unit with its decoded clip
type Entry struct {
	Unit   phonics.Unit
	Buffer *audio.Buffer
}

// ZoneTiming locates one entry within the word buffer
type ZoneTiming struct {
	Index       int
	StartSample int
	EndSample   int
	Start       time.Duration
	End         time.Duration
	IsStop      bool
}

// WordBuffer is a synthesized word
type WordBuffer struct {
	Buffer   *audio.Buffer
	Zones    []ZoneTiming
	Duration time.Duration
}

// Build joins entries into one buffer at sampleRate. It returns nil when
// there are no entries.
func Build(sampleRate int, entries []Entry) *WordBuffer {
	if len(entries) == 0 {
		return nil
	}

	channels := 1
	clips := make([]*audio.Buffer, len(entries))
	for i, e := range entries {
		if e.Buffer == nil {
			clips[i] = audio.NewBuffer(sampleRate, 1, 0)
		} else {
			clips[i] = resample.Buffer(e.Buffer, sampleRate)
		}
		if ch := clips[i].Format.Channels; ch > channels {
			channels = ch
		}
	}

	overlapMax := audio.DurationToFrames(ContinuousOverlap, sampleRate)
	zones := make([]ZoneTiming, len(entries))
	total := 0
	for i, e := range entries {
		length := clips[i].Frames()
		overlap := 0
		if i > 0 && !e.Unit.IsStop {
			overlap = min(overlapMax, length/2)
		}
		start := max(0, total-overlap)
		end := start + length
		total = end

		zones[i] = ZoneTiming{
			Index:       i,
			StartSample: start,
			EndSample:   end,
			Start:       audio.FramesToDuration(start, sampleRate),
			End:         audio.FramesToDuration(end, sampleRate),
			IsStop:      e.Unit.IsStop,
		}
	}

	mix := make([]int64, total*channels)
	for i, clip := range clips {
		start := zones[i].StartSample
		for f := 0; f < clip.Frames(); f++ {
			for ch := 0; ch < channels; ch++ {
				mix[(start+f)*channels+ch] += int64(clip.Sample(f, ch))
			}
		}
	}

	out := audio.NewBuffer(sampleRate, channels, total)
	for i, v := range mix {
		out.Samples[i] = audio.Clamp24(v)
	}

	return &WordBuffer{
		Buffer:   out,
		Zones:    zones,
		Duration: audio.FramesToDuration(total, sampleRate),
	}
}
