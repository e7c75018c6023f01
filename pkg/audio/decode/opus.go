// ABOUTME: Opus audio decoder
// ABOUTME: Decodes Ogg Opus files to int32 samples
package decode

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/slidesounds/slidesounds-go/pkg/audio"
	"gopkg.in/hraban/opus.v2"
)

// Opus always decodes at 48kHz
const opusSampleRate = 48000

// OpusDecoder decodes mono Ogg Opus audio
type OpusDecoder struct{}

// NewOpus creates a new Opus decoder
func NewOpus() Decoder {
	return &OpusDecoder{}
}

// Decode converts Ogg Opus bytes to a buffer
func (d *OpusDecoder) Decode(data []byte) (*audio.Buffer, error) {
	stream, err := opus.NewStream(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create opus stream: %w", err)
	}
	defer stream.Close()

	// Max frame size: 120ms at 48kHz
	pcm16 := make([]int16, 5760)
	var samples []int32
	for {
		n, err := stream.Read(pcm16)
		for i := 0; i < n; i++ {
			samples = append(samples, audio.SampleFromInt16(pcm16[i]))
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("opus decode failed: %w", err)
		}
		if n == 0 {
			break
		}
	}

	return &audio.Buffer{
		Samples: samples,
		Format: audio.Format{
			Codec:      "opus",
			SampleRate: opusSampleRate,
			Channels:   1,
			BitDepth:   16,
		},
	}, nil
}
