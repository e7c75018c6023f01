// ABOUTME: Audio encoder package for writing decoded buffers
// ABOUTME: Provides PCM packing and WAV file output
// Package encode packs int32 samples in 24-bit range into 16-bit or
// 24-bit little-endian PCM and writes RIFF/WAV files.
//
// Example:
//
//	f, _ := os.Create("cat.wav")
//	err := encode.WAV(f, word.Buffer, 16)
package encode
