// ABOUTME: Word segmenter
// ABOUTME: Splits a word into phoneme units using prioritized pattern matchers
package phonics

import (
	"fmt"
	"strings"
)

// Welded sounds are only matched when the remaining suffix is this short
const maxWeldedSuffix = 4

var (
	weldedTriples = []string{"ank", "ink", "onk", "unk", "ang", "ing", "ong", "ung", "all"}
	weldedPairs   = []string{"am", "an"}
)

// matcher tries one multi-letter pattern kind against the suffix at the
// cursor. atEnd is true when the suffix is short enough to be a word ending.
type matcher func(t *Table, suffix string, atEnd bool) (Metadata, bool)

// Tried in order; the first match wins. Blends are not segmented.
var matchers = []matcher{
	matchWelded,
	matchTrigraph,
	matchRControlled,
	matchVowelTeam,
	matchDigraph,
}

func matchWelded(t *Table, suffix string, atEnd bool) (Metadata, bool) {
	if !atEnd {
		return Metadata{}, false
	}
	for _, patterns := range [][]string{weldedTriples, weldedPairs} {
		for _, p := range patterns {
			if suffix != p {
				continue
			}
			if m, ok := t.welded[p]; ok {
				return m, true
			}
		}
	}
	return Metadata{}, false
}

func matchTrigraph(t *Table, suffix string, _ bool) (Metadata, bool) {
	return lookupHead(t.trigraphs, suffix, 3)
}

func matchRControlled(t *Table, suffix string, _ bool) (Metadata, bool) {
	return lookupHead(t.rControlled, suffix, 2)
}

func matchVowelTeam(t *Table, suffix string, _ bool) (Metadata, bool) {
	return lookupHead(t.vowelTeams, suffix, 2)
}

func matchDigraph(t *Table, suffix string, _ bool) (Metadata, bool) {
	return lookupHead(t.digraphs, suffix, 2)
}

func lookupHead(group map[string]Metadata, suffix string, n int) (Metadata, bool) {
	r := []rune(suffix)
	if len(r) < n {
		return Metadata{}, false
	}
	m, ok := group[string(r[:n])]
	return m, ok
}

// Segmenter turns words into phoneme units
type Segmenter struct {
	table      *Table
	exceptions Exceptions
	audioCheck func(AudioRef) bool
}

// Option configures a Segmenter
type Option func(*Segmenter)

// WithTable replaces the default rule table
func WithTable(t *Table) Option {
	return func(s *Segmenter) { s.table = t }
}

// WithExceptions replaces the word-specific vowel team exceptions
func WithExceptions(e Exceptions) Option {
	return func(s *Segmenter) { s.exceptions = e }
}

// WithAudioCheck adds an availability check on top of the table's audio
// references, e.g. to treat files absent on disk as missing.
func WithAudioCheck(fn func(AudioRef) bool) Option {
	return func(s *Segmenter) { s.audioCheck = fn }
}

// NewSegmenter creates a segmenter with the default table and exceptions
func NewSegmenter(opts ...Option) *Segmenter {
	s := &Segmenter{
		table:      DefaultTable(),
		exceptions: DefaultExceptions(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Table returns the rule table in use
func (s *Segmenter) Table() *Table {
	return s.table
}

func (s *Segmenter) hasAudio(m Metadata) bool {
	if !m.HasAudio() {
		return false
	}
	if s.audioCheck != nil {
		return s.audioCheck(m.Audio)
	}
	return true
}

// missingSet keeps first-seen order
type missingSet struct {
	seen  map[string]bool
	order []string
}

func (m *missingSet) add(g string) {
	if m.seen == nil {
		m.seen = make(map[string]bool)
	}
	if m.seen[g] {
		return
	}
	m.seen[g] = true
	m.order = append(m.order, g)
}

// Segment splits a word into phoneme units. It never fails; unresolved
// graphemes and graphemes without audio are listed in Missing.
func (s *Segmenter) Segment(word string) ParsedWord {
	normalized := strings.ToLower(strings.TrimSpace(word))
	if normalized == "" {
		return ParsedWord{Word: word}
	}

	letters := []rune(normalized)
	longIndex := detectMagicE(letters)

	var (
		units   []Unit
		missing missingSet
	)

	emit := func(id string, m Metadata, cat Category, isUnit bool) {
		units = append(units, Unit{
			ID:           id,
			Grapheme:     m.Grapheme,
			Label:        m.Label,
			Audio:        m.Audio,
			Category:     cat,
			IsStop:       m.IsStop,
			IsUnit:       isUnit,
			IsSilent:     cat == Silent,
			DurationHint: m.DurationHint,
			Position:     len(units),
		})
	}

	for i, n := 0, 0; i < len(letters); n++ {
		// Magic-e: the final "e" is silent
		if longIndex >= 0 && i == len(letters)-1 && letters[i] == 'e' {
			emit(fmt.Sprintf("silent-e-%d", n), s.table.silent, Silent, false)
			i++
			continue
		}

		suffix := string(letters[i:])
		if m, ok := s.matchPattern(normalized, suffix, len(letters)-i <= maxWeldedSuffix); ok {
			emit(fmt.Sprintf("%s-%d", m.Grapheme, n), m, m.Category, true)
			if !s.hasAudio(m) {
				missing.add(m.Grapheme)
			}
			i += len([]rune(m.Grapheme))
			continue
		}

		ch := string(letters[i])
		i++

		if isVowel(letters[i-1]) {
			if i-1 == longIndex {
				if m, ok := s.table.longVowels[ch]; ok {
					emit(fmt.Sprintf("%s-long-%d", ch, n), m, LongVowel, false)
					if !s.hasAudio(m) {
						missing.add(ch + " (long)")
					}
					continue
				}
			}
			if m, ok := s.table.shortVowels[ch]; ok {
				emit(fmt.Sprintf("%s-%d", ch, n), m, ShortVowel, false)
				if !s.hasAudio(m) {
					missing.add(ch)
				}
				continue
			}
		}

		m, ok := s.table.stops[ch]
		if !ok {
			m, ok = s.table.continuous[ch]
		}
		if !ok {
			m, ok = s.table.basic[ch]
		}
		if !ok {
			missing.add(ch)
			continue
		}
		emit(fmt.Sprintf("%s-%d", ch, n), m, m.Category, false)
		if !s.hasAudio(m) {
			missing.add(ch)
		}
	}

	return ParsedWord{
		Word:    normalized,
		Units:   units,
		Missing: missing.order,
	}
}

func (s *Segmenter) matchPattern(word, suffix string, atEnd bool) (Metadata, bool) {
	for _, match := range matchers {
		m, ok := match(s.table, suffix, atEnd)
		if !ok {
			continue
		}
		if m.Category == VowelTeam && s.exceptions != nil {
			if variant, ok := s.exceptions.Variant(word, m.Grapheme); ok {
				if vm, ok := s.table.vowelTeams[variantKey(m.Grapheme, variant)]; ok {
					m = vm
				}
			}
		}
		return m, true
	}
	return Metadata{}, false
}

// CanPlayWord reports whether every grapheme of the word has audio
func (s *Segmenter) CanPlayWord(word string) bool {
	return s.Segment(word).HasAllAudio()
}

// MissingAudio lists the graphemes of the word that lack audio
func (s *Segmenter) MissingAudio(word string) []string {
	return s.Segment(word).Missing
}

// detectMagicE returns the index of the vowel made long by a trailing
// silent "e", or -1 when the word is not CVCe-shaped.
func detectMagicE(w []rune) int {
	n := len(w)
	if n < 4 || w[n-1] != 'e' || isVowel(w[n-2]) {
		return -1
	}
	for i := n - 3; i >= 0; i-- {
		if isVowel(w[i]) && (i == 0 || !isVowel(w[i-1])) {
			return i
		}
	}
	return -1
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u':
		return true
	}
	return false
}

var defaultSegmenter = NewSegmenter()

// Segment splits a word using the default segmenter
func Segment(word string) ParsedWord {
	return defaultSegmenter.Segment(word)
}

// CanPlayWord reports whether the default segmenter finds audio for every grapheme
func CanPlayWord(word string) bool {
	return defaultSegmenter.CanPlayWord(word)
}

// MissingAudio lists graphemes without audio using the default segmenter
func MissingAudio(word string) []string {
	return defaultSegmenter.MissingAudio(word)
}
