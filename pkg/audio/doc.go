// ABOUTME: Audio fundamentals package providing core types and utilities
// ABOUTME: Defines Format, Buffer types and sample conversion functions
// Package audio provides the decoded clip type shared by the engine and
// the word synthesizer.
//
// A Buffer holds a whole phoneme or word recording as interleaved int32
// samples in 24-bit range, regardless of the source file's bit depth.
//
// Example:
//
//	buf := audio.NewBuffer(44100, 1, 4410) // 100ms of mono silence
//	fmt.Println(buf.Frames(), buf.Duration())
//
//	// Convert 16-bit sample to 24-bit range
//	sample24 := audio.SampleFromInt16(sample16)
package audio
