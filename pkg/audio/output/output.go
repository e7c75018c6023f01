// ABOUTME: Audio output interface definition
// ABOUTME: Common interface for the single output context and its voices
package output

import "io"

// Device represents the audio output context
type Device interface {
	// Open initializes the device. Reopening keeps the existing context.
	Open(sampleRate, channels int) error

	// Start plays r as a new voice. r yields s16le interleaved PCM and
	// the voice finishes when r returns io.EOF.
	Start(r io.Reader) (Voice, error)

	// Suspend pauses all output
	Suspend() error

	// Resume restarts output after Suspend
	Resume() error

	// Close releases output resources
	Close() error
}

// Voice is one playing clip
type Voice interface {
	Close() error
}
