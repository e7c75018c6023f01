// ABOUTME: Playing clip reader with gain envelope
// ABOUTME: Renders a cached buffer to s16le PCM with linear fades
package engine

import (
	"encoding/binary"
	"io"
	"sync"

	"github.com/slidesounds/slidesounds-go/pkg/audio"
	"github.com/slidesounds/slidesounds-go/pkg/audio/output"
)

// source is one playing clip. The device pulls PCM through Read.
type source struct {
	mu       sync.Mutex
	buf      *audio.Buffer
	channels int
	pos      int // next frame to render
	fadeIn   int
	stopAt   int // frame where fade-out began, -1 while playing
	fadeOut  int
	tail     int
	finished bool

	voice  output.Voice
	onDone func(*source)
	once   sync.Once
}

func newSource(buf *audio.Buffer, channels, fadeIn, tail int, onDone func(*source)) *source {
	return &source{
		buf:      buf,
		channels: channels,
		fadeIn:   fadeIn,
		stopAt:   -1,
		tail:     tail,
		onDone:   onDone,
	}
}

// stop starts a fade-out of fade frames at the current position
func (s *source) stop(fade int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopAt >= 0 {
		return
	}
	s.stopAt = s.pos
	s.fadeOut = fade
}

// end returns the frame after which the source is done
func (s *source) end() int {
	n := s.buf.Frames()
	if s.stopAt >= 0 {
		if cut := s.stopAt + s.fadeOut + s.tail; cut < n {
			return cut
		}
	}
	return n
}

func (s *source) gain(frame int) float64 {
	g := 1.0
	if s.fadeIn > 0 && frame < s.fadeIn {
		g = float64(frame) / float64(s.fadeIn)
	}
	if s.stopAt >= 0 {
		d := frame - s.stopAt
		if d >= s.fadeOut {
			return 0
		}
		g *= 1 - float64(d)/float64(s.fadeOut)
	}
	return g
}

// Read renders whole frames into p
func (s *source) Read(p []byte) (int, error) {
	s.mu.Lock()
	frameBytes := 2 * s.channels
	end := s.end()
	if s.finished || s.pos >= end {
		s.finished = true
		s.mu.Unlock()
		s.done()
		return 0, io.EOF
	}

	frames := len(p) / frameBytes
	if remaining := end - s.pos; frames > remaining {
		frames = remaining
	}

	for i := 0; i < frames; i++ {
		f := s.pos + i
		g := s.gain(f)
		for ch := 0; ch < s.channels; ch++ {
			v := audio.Clamp24(int64(float64(s.buf.Sample(f, ch)) * g))
			binary.LittleEndian.PutUint16(p[(i*s.channels+ch)*2:], uint16(audio.SampleToInt16(v)))
		}
	}
	s.pos += frames
	s.mu.Unlock()

	return frames * frameBytes, nil
}

func (s *source) done() {
	s.once.Do(func() {
		if s.onDone != nil {
			s.onDone(s)
		}
	})
}
