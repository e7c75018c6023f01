// ABOUTME: Category display classes
// ABOUTME: Groups phoneme categories into vowel and consonant colours
package phonics

// ColorClass groups categories for letter colouring on the track
type ColorClass string

const (
	ColorVowel     ColorClass = "vowel"
	ColorConsonant ColorClass = "consonant"
	ColorDefault   ColorClass = "default"
)

// ColorFor maps a category to its display class. Welded sounds are
// coloured as vowels since the vowel anchors the chunk.
func ColorFor(c Category) ColorClass {
	switch c {
	case ShortVowel, LongVowel, VowelTeam, RControlled, Welded:
		return ColorVowel
	case ContinuousConsonant, StopConsonant, Digraph, Blend:
		return ColorConsonant
	default:
		return ColorDefault
	}
}
