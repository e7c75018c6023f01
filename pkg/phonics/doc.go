// ABOUTME: Phonics package for grapheme-to-phoneme segmentation
// ABOUTME: Holds the phoneme rule table and the word segmenter
// Package phonics splits early-reader words into pronounceable units.
//
// The rule table maps graphemes (single letters and letter groups) to
// phoneme metadata: a display label, an audio asset reference, a category
// and whether the sound is a stop. The segmenter walks a word left to right
// and applies the table in a fixed priority order:
//
//   - magic-e (CVCe) pre-pass marks the vowel to pronounce long
//   - welded sounds at the end of short words ("ank", "an")
//   - the trigraph "igh"
//   - r-controlled vowels, vowel teams, digraphs
//   - single letters
//
// Segmentation never fails. Graphemes without audio are reported in
// ParsedWord.Missing so callers can decide whether a word is playable.
//
// Example:
//
//	parsed := phonics.Segment("cake")
//	for _, u := range parsed.Units {
//	    fmt.Println(u.Grapheme, u.Category, u.IsSilent)
//	}
package phonics
