// ABOUTME: Phoneme type definitions
// ABOUTME: Defines categories, rule metadata, units and parsed words
package phonics

import "time"

// Category classifies a phoneme for playback and display
type Category string

const (
	ShortVowel          Category = "short_vowel"
	LongVowel           Category = "long_vowel"
	ContinuousConsonant Category = "continuous_consonant"
	StopConsonant       Category = "stop_consonant"
	Digraph             Category = "digraph"
	Blend               Category = "blend"
	Welded              Category = "welded"
	RControlled         Category = "r_controlled"
	VowelTeam           Category = "vowel_team"
	Silent              Category = "silent"
)

// AudioRef is an asset path relative to the asset root
type AudioRef string

// NoAudio marks a rule entry without a recorded sound
const NoAudio AudioRef = ""

// Metadata describes one grapheme in the rule table
type Metadata struct {
	Grapheme     string
	Label        string
	Audio        AudioRef
	Category     Category
	IsStop       bool
	DurationHint time.Duration
}

// HasAudio reports whether the entry references an asset
func (m Metadata) HasAudio() bool {
	return m.Audio != NoAudio
}

// Unit is one pronounceable piece of a segmented word
type Unit struct {
	ID           string
	Grapheme     string
	Label        string
	Audio        AudioRef
	Category     Category
	IsStop       bool
	IsUnit       bool // spans more than one letter
	IsSilent     bool
	DurationHint time.Duration
	Position     int
}

// Playable reports whether the unit produces sound
func (u Unit) Playable() bool {
	return !u.IsSilent && u.Audio != NoAudio
}

// ParsedWord is the result of segmenting one word
type ParsedWord struct {
	Word    string
	Units   []Unit
	Missing []string
}

// HasAllAudio reports whether every grapheme resolved to audio.
// It is vacuously true for an empty word.
func (p ParsedWord) HasAllAudio() bool {
	return len(p.Missing) == 0
}

// Playable reports whether the word can be scrubbed: all audio present and
// at least one unit.
func (p ParsedWord) Playable() bool {
	return p.HasAllAudio() && len(p.Units) > 0
}

// Graphemes returns the unit graphemes in order
func (p ParsedWord) Graphemes() []string {
	out := make([]string, len(p.Units))
	for i, u := range p.Units {
		out[i] = u.Grapheme
	}
	return out
}

// PlayableUnits returns the units that have audio and are not silent
func PlayableUnits(units []Unit) []Unit {
	var out []Unit
	for _, u := range units {
		if u.Playable() {
			out = append(out, u)
		}
	}
	return out
}
