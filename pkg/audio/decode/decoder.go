// ABOUTME: Decoder interface definition
// ABOUTME: Common interface for all audio decoders and extension dispatch
package decode

import (
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/slidesounds/slidesounds-go/pkg/audio"
)

// ErrUnsupported is returned for file types without a decoder
var ErrUnsupported = errors.New("unsupported audio format")

// Decoder decodes a complete encoded asset
type Decoder interface {
	Decode(data []byte) (*audio.Buffer, error)
}

// ForPath returns the decoder for a file path or URL by extension
func ForPath(p string) (Decoder, error) {
	// Drop any query string from URLs
	if i := strings.IndexByte(p, '?'); i >= 0 {
		p = p[:i]
	}

	switch ext := strings.ToLower(path.Ext(p)); ext {
	case ".wav":
		return NewWAV(), nil
	case ".mp3":
		return NewMP3(), nil
	case ".flac":
		return NewFLAC(), nil
	case ".opus", ".ogg":
		return NewOpus(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupported, ext)
	}
}

// File decodes data using the decoder for p's extension
func File(p string, data []byte) (*audio.Buffer, error) {
	dec, err := ForPath(p)
	if err != nil {
		return nil, err
	}
	buf, err := dec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	return buf, nil
}
