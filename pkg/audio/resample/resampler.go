// ABOUTME: Linear interpolation resampler
// ABOUTME: Streams chunked input or converts a whole buffer to a new rate
package resample

import "github.com/slidesounds/slidesounds-go/pkg/audio"

// Resampler performs linear interpolation between sample rates
type Resampler struct {
	inputRate  int
	outputRate int
	channels   int
	ratio      float64
	position   float64 // fractional read position relative to prev
	prev       []int32 // last input frame of the previous chunk
	primed     bool
}

// New creates a resampler for interleaved audio
func New(inputRate, outputRate, channels int) *Resampler {
	return &Resampler{
		inputRate:  inputRate,
		outputRate: outputRate,
		channels:   channels,
		ratio:      float64(inputRate) / float64(outputRate),
		prev:       make([]int32, channels),
	}
}

// Resample converts one chunk of interleaved input into output and returns
// the number of samples written. The last input frame is held back so the
// next chunk interpolates across the boundary.
func (r *Resampler) Resample(input []int32, output []int32) int {
	inputFrames := len(input) / r.channels
	if inputFrames == 0 {
		return 0
	}

	// frame -1 is the held frame from the previous chunk
	frame := func(i, ch int) int32 {
		if i < 0 {
			return r.prev[ch]
		}
		return input[i*r.channels+ch]
	}

	first := -1
	if !r.primed {
		first = 0
		r.primed = true
	}

	outputFrames := len(output) / r.channels
	outIdx := 0
	for outIdx < outputFrames {
		idx := first + int(r.position)
		if idx+1 >= inputFrames {
			break
		}
		frac := r.position - float64(int(r.position))
		for ch := 0; ch < r.channels; ch++ {
			a := float64(frame(idx, ch))
			b := float64(frame(idx+1, ch))
			output[outIdx*r.channels+ch] = int32(a + (b-a)*frac)
		}
		outIdx++
		r.position += r.ratio
	}

	// Rebase the position onto the last frame of this chunk
	consumed := float64(inputFrames - 1 - first)
	r.position -= consumed
	if r.position < 0 {
		r.position = 0
	}
	copy(r.prev, input[(inputFrames-1)*r.channels:])

	return outIdx * r.channels
}

// Reset clears interpolation state
func (r *Resampler) Reset() {
	r.position = 0
	r.primed = false
	for i := range r.prev {
		r.prev[i] = 0
	}
}

// OutputSamplesNeeded estimates the output size for a given input size
func (r *Resampler) OutputSamplesNeeded(inputSamples int) int {
	inputFrames := inputSamples / r.channels
	return (int(float64(inputFrames)/r.ratio) + 1) * r.channels
}

// Buffer returns buf converted to rate. Buffers already at rate are
// returned unchanged. The final input frame is held for the tail so the
// output length is frames*rate/inputRate rounded down.
func Buffer(buf *audio.Buffer, rate int) *audio.Buffer {
	if buf == nil || rate <= 0 || buf.Format.SampleRate <= 0 || buf.Format.SampleRate == rate {
		return buf
	}

	channels := buf.Format.Channels
	inFrames := buf.Frames()
	outFrames := int(int64(inFrames) * int64(rate) / int64(buf.Format.SampleRate))

	out := &audio.Buffer{
		Samples: make([]int32, outFrames*channels),
		Format:  buf.Format,
	}
	out.Format.SampleRate = rate
	if inFrames == 0 {
		return out
	}

	ratio := float64(buf.Format.SampleRate) / float64(rate)
	last := inFrames - 1
	for i := 0; i < outFrames; i++ {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= last {
			copy(out.Samples[i*channels:(i+1)*channels], buf.Samples[last*channels:])
			continue
		}
		frac := pos - float64(idx)
		for ch := 0; ch < channels; ch++ {
			a := float64(buf.Samples[idx*channels+ch])
			b := float64(buf.Samples[(idx+1)*channels+ch])
			out.Samples[i*channels+ch] = int32(a + (b-a)*frac)
		}
	}
	return out
}
