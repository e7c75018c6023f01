// ABOUTME: Curriculum word list
// ABOUTME: Ordered lesson words with phase grouping and navigation helpers
package curriculum

import (
	"github.com/slidesounds/slidesounds-go/pkg/phonics"
)

// WordAudioDir holds prerecorded whole-word audio
const WordAudioDir = "audio/words"

// DefaultWordID is the first lesson word
const DefaultWordID = "sat"

// Word is one lesson word
type Word struct {
	ID      string
	Text    string
	Display string
	Phase   int
}

// AudioPath returns the prerecorded audio path for the word
func (w Word) AudioPath() string {
	return WordAudioPath(w.ID)
}

// WordAudioPath returns the prerecorded audio path for a word id
func WordAudioPath(id string) string {
	return WordAudioDir + "/" + id + ".mp3"
}

func w(text string, phase int) Word {
	return Word{ID: text, Text: text, Display: text, Phase: phase}
}

// Phase 1 is short a, phase 2 short e, i, o, u
var words = []Word{
	w("sat", 1), w("mat", 1), w("pat", 1), w("tap", 1), w("map", 1),
	w("sap", 1), w("nap", 1), w("cap", 1), w("can", 1), w("pan", 1),
	w("cat", 1), w("man", 1), w("fan", 1), w("ran", 1), w("tan", 1),
	w("rat", 1), w("fat", 1), w("hat", 1), w("bat", 1), w("van", 1),

	w("pet", 2), w("set", 2), w("net", 2), w("met", 2), w("wet", 2),
	w("sit", 2), w("pit", 2), w("fin", 2), w("pin", 2), w("win", 2),
	w("pot", 2), w("not", 2), w("mop", 2), w("top", 2), w("hot", 2),
	w("cup", 2), w("sun", 2), w("fun", 2), w("nut", 2), w("cut", 2),
	w("run", 2), w("pup", 2), w("mud", 2), w("hut", 2), w("bus", 2),
	w("bug", 2), w("hug", 2), w("tub", 2), w("sub", 2), w("mug", 2),
}

// All returns every word in lesson order
func All() []Word {
	out := make([]Word, len(words))
	copy(out, words)
	return out
}

// Len returns the number of words
func Len() int {
	return len(words)
}

// Index returns the position of a word id, or -1
func Index(id string) int {
	for i, word := range words {
		if word.ID == id {
			return i
		}
	}
	return -1
}

// ByID looks up a word
func ByID(id string) (Word, bool) {
	i := Index(id)
	if i < 0 {
		return Word{}, false
	}
	return words[i], true
}

// ByPhase returns the words of one phase in lesson order
func ByPhase(phase int) []Word {
	var out []Word
	for _, word := range words {
		if word.Phase == phase {
			out = append(out, word)
		}
	}
	return out
}

// Next returns the word after id, wrapping around. Unknown ids yield the
// first word.
func Next(id string) Word {
	i := Index(id)
	if i < 0 {
		return words[0]
	}
	return words[(i+1)%len(words)]
}

// Previous returns the word before id, wrapping around. Unknown ids yield
// the first word.
func Previous(id string) Word {
	i := Index(id)
	if i < 0 {
		return words[0]
	}
	return words[(i-1+len(words))%len(words)]
}

// Playable returns the words the segmenter can fully voice
func Playable(seg *phonics.Segmenter) []Word {
	var out []Word
	for _, word := range words {
		if seg.Segment(word.Text).Playable() {
			out = append(out, word)
		}
	}
	return out
}
