// ABOUTME: WAV file writer
// ABOUTME: Writes a decoded buffer as a canonical RIFF/WAVE PCM file
package encode

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/slidesounds/slidesounds-go/pkg/audio"
)

// WAV writes buf as PCM WAV at the given bit depth (16 or 24)
func WAV(w io.Writer, buf *audio.Buffer, bitDepth int) error {
	if buf == nil || buf.Format.Channels <= 0 || buf.Format.SampleRate <= 0 {
		return errors.New("wav: empty buffer format")
	}

	data, err := PCM(buf.Samples, bitDepth)
	if err != nil {
		return fmt.Errorf("wav: %w", err)
	}

	channels := uint16(buf.Format.Channels)
	blockAlign := channels * uint16(bitDepth/8)
	byteRate := uint32(buf.Format.SampleRate) * uint32(blockAlign)

	header := []any{
		[4]byte{'R', 'I', 'F', 'F'},
		uint32(36 + len(data)),
		[4]byte{'W', 'A', 'V', 'E'},
		[4]byte{'f', 'm', 't', ' '},
		uint32(16),
		uint16(1), // PCM
		channels,
		uint32(buf.Format.SampleRate),
		byteRate,
		blockAlign,
		uint16(bitDepth),
		[4]byte{'d', 'a', 't', 'a'},
		uint32(len(data)),
	}
	for _, field := range header {
		if err := binary.Write(w, binary.LittleEndian, field); err != nil {
			return fmt.Errorf("write wav header: %w", err)
		}
	}

	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write wav data: %w", err)
	}
	return nil
}
