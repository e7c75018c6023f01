// ABOUTME: Word-specific pronunciation exceptions
// ABOUTME: Resolves ambiguous vowel teams such as "ow" and "oo" per word
package phonics

// Exceptions chooses a pronunciation variant of a grapheme for a word
type Exceptions interface {
	Variant(word, grapheme string) (string, bool)
}

// ExceptionList maps grapheme -> word -> variant name
type ExceptionList map[string]map[string]string

// Variant implements Exceptions
func (l ExceptionList) Variant(word, grapheme string) (string, bool) {
	words, ok := l[grapheme]
	if !ok {
		return "", false
	}
	v, ok := words[word]
	return v, ok
}

// Add registers a variant for the given words
func (l ExceptionList) Add(grapheme, variant string, words ...string) {
	if l[grapheme] == nil {
		l[grapheme] = make(map[string]string)
	}
	for _, w := range words {
		l[grapheme][w] = variant
	}
}

// DefaultExceptions returns the curriculum exception list.
// "ow" defaults to long o (snow); "oo" defaults to long oo (moon).
func DefaultExceptions() ExceptionList {
	l := ExceptionList{}
	l.Add("ow", "diphthong", "cow", "now", "how", "wow", "down", "town", "owl", "brown", "gown")
	l.Add("oo", "short", "book", "look", "cook", "took", "hook", "good", "wood", "foot")
	return l
}
