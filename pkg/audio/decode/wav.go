// ABOUTME: WAV audio decoder
// ABOUTME: Parses RIFF/WAVE chunks and decodes 16-bit or 24-bit PCM data
package decode

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/slidesounds/slidesounds-go/pkg/audio"
)

const (
	wavFormatPCM        = 1
	wavFormatExtensible = 0xFFFE
)

// WAVDecoder decodes PCM WAV files
type WAVDecoder struct{}

// NewWAV creates a new WAV decoder
func NewWAV() Decoder {
	return &WAVDecoder{}
}

type wavFmt struct {
	AudioFormat   uint16
	NumChannels   uint16
	SampleRate    uint32
	ByteRate      uint32
	BlockAlign    uint16
	BitsPerSample uint16
}

// Decode parses a RIFF/WAVE file
func (d *WAVDecoder) Decode(data []byte) (*audio.Buffer, error) {
	r := bytes.NewReader(data)

	var riff struct {
		ID   [4]byte
		Size uint32
		Wave [4]byte
	}
	if err := binary.Read(r, binary.LittleEndian, &riff); err != nil {
		return nil, fmt.Errorf("read RIFF header: %w", err)
	}
	if string(riff.ID[:]) != "RIFF" {
		return nil, errors.New("not a RIFF file")
	}
	if string(riff.Wave[:]) != "WAVE" {
		return nil, errors.New("not a WAVE file")
	}

	var (
		format   wavFmt
		fmtFound bool
		pcm      []byte
	)

	for pcm == nil {
		var chunk struct {
			ID   [4]byte
			Size uint32
		}
		if err := binary.Read(r, binary.LittleEndian, &chunk); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				break
			}
			return nil, fmt.Errorf("read chunk header: %w", err)
		}

		switch string(chunk.ID[:]) {
		case "fmt ":
			if chunk.Size < 16 {
				return nil, fmt.Errorf("fmt chunk too short: %d", chunk.Size)
			}
			if err := binary.Read(r, binary.LittleEndian, &format); err != nil {
				return nil, fmt.Errorf("read fmt chunk: %w", err)
			}
			if err := skip(r, int64(chunk.Size)-16); err != nil {
				return nil, fmt.Errorf("skip extra fmt bytes: %w", err)
			}
			fmtFound = true

		case "data":
			if !fmtFound {
				return nil, errors.New("data chunk before fmt chunk")
			}
			size := int(chunk.Size)
			if size > r.Len() {
				// Some writers leave the size unset when streaming
				size = r.Len()
			}
			pcm = make([]byte, size)
			if _, err := io.ReadFull(r, pcm); err != nil {
				return nil, fmt.Errorf("read PCM data: %w", err)
			}

		default:
			// Skip unknown chunks; align to even boundary
			n := int64(chunk.Size)
			if chunk.Size%2 != 0 {
				n++
			}
			if err := skip(r, n); err != nil {
				return nil, fmt.Errorf("skip chunk %q: %w", chunk.ID, err)
			}
		}
	}

	if !fmtFound {
		return nil, errors.New("missing fmt chunk")
	}
	if pcm == nil {
		return nil, errors.New("missing data chunk")
	}
	if format.AudioFormat != wavFormatPCM && format.AudioFormat != wavFormatExtensible {
		return nil, fmt.Errorf("unsupported audio format %d (only PCM supported)", format.AudioFormat)
	}
	if format.NumChannels == 0 {
		return nil, errors.New("wav declares zero channels")
	}

	samples, err := decodePCM(pcm, int(format.BitsPerSample))
	if err != nil {
		return nil, err
	}

	// Drop a trailing partial frame
	channels := int(format.NumChannels)
	samples = samples[:len(samples)/channels*channels]

	return &audio.Buffer{
		Samples: samples,
		Format: audio.Format{
			Codec:      "wav",
			SampleRate: int(format.SampleRate),
			Channels:   channels,
			BitDepth:   int(format.BitsPerSample),
		},
	}, nil
}

func skip(r io.Seeker, n int64) error {
	if n <= 0 {
		return nil
	}
	_, err := r.Seek(n, io.SeekCurrent)
	return err
}
