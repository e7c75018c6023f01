// ABOUTME: Audio decoder package for phoneme and word assets
// ABOUTME: Provides Decoder interface and implementations for WAV, MP3, FLAC, Opus
// Package decode turns whole audio assets into audio.Buffer values.
//
// Supports: WAV (16-bit and 24-bit PCM), MP3, FLAC, Ogg Opus
//
// All decoders output int32 samples in 24-bit range. ForPath picks a
// decoder from the file extension.
//
// Example:
//
//	data, _ := os.ReadFile("audio/phonemes/s.wav")
//	buf, err := decode.File("audio/phonemes/s.wav", data)
package decode
