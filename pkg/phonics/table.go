// ABOUTME: Phoneme rule table
// ABOUTME: Static grapheme-to-phoneme metadata grouped by pattern kind
package phonics

import (
	"sort"
	"time"
)

// PhonemeDir is the asset directory holding per-phoneme recordings
const PhonemeDir = "audio/phonemes"

const (
	stopDuration       = 120 * time.Millisecond
	continuousDuration = 350 * time.Millisecond
	vowelDuration      = 300 * time.Millisecond
	unitDuration       = 450 * time.Millisecond
)

// Table groups phoneme metadata by the matcher that consults it.
// A Table is read-only after construction.
type Table struct {
	shortVowels map[string]Metadata
	longVowels  map[string]Metadata
	stops       map[string]Metadata
	continuous  map[string]Metadata
	basic       map[string]Metadata
	welded      map[string]Metadata
	trigraphs   map[string]Metadata
	rControlled map[string]Metadata
	vowelTeams  map[string]Metadata
	digraphs    map[string]Metadata
	blends      map[string]Metadata
	silent      Metadata
}

func ref(name string) AudioRef {
	return AudioRef(PhonemeDir + "/" + name)
}

func meta(grapheme, label string, audio AudioRef, cat Category, stop bool, d time.Duration) Metadata {
	return Metadata{
		Grapheme:     grapheme,
		Label:        label,
		Audio:        audio,
		Category:     cat,
		IsStop:       stop,
		DurationHint: d,
	}
}

func group(entries ...Metadata) map[string]Metadata {
	m := make(map[string]Metadata, len(entries))
	for _, e := range entries {
		m[e.Grapheme] = e
	}
	return m
}

// DefaultTable returns the curriculum rule table
func DefaultTable() *Table {
	t := &Table{}

	t.shortVowels = group(
		meta("a", "ă", ref("a_short.wav"), ShortVowel, false, vowelDuration),
		meta("e", "ĕ", ref("e_short.wav"), ShortVowel, false, vowelDuration),
		meta("i", "ĭ", ref("i_short.wav"), ShortVowel, false, vowelDuration),
		meta("o", "ŏ", ref("o_short.wav"), ShortVowel, false, vowelDuration),
		meta("u", "ŭ", ref("u_short.wav"), ShortVowel, false, vowelDuration),
	)

	t.longVowels = group(
		meta("a", "ā", ref("a_long.wav"), LongVowel, false, vowelDuration),
		meta("e", "ē", ref("e_long.wav"), LongVowel, false, vowelDuration),
		meta("i", "ī", ref("i_long.wav"), LongVowel, false, vowelDuration),
		meta("o", "ō", ref("o_long.wav"), LongVowel, false, vowelDuration),
		meta("u", "ū", ref("u_long.wav"), LongVowel, false, vowelDuration),
	)

	// "c" and "k" share a recording
	t.stops = group(
		meta("b", "b", ref("b.wav"), StopConsonant, true, stopDuration),
		meta("c", "k", ref("k.wav"), StopConsonant, true, stopDuration),
		meta("d", "d", ref("d.wav"), StopConsonant, true, stopDuration),
		meta("g", "g", ref("g.wav"), StopConsonant, true, stopDuration),
		meta("j", "j", ref("j.wav"), StopConsonant, true, stopDuration),
		meta("k", "k", ref("k.wav"), StopConsonant, true, stopDuration),
		meta("p", "p", ref("p.wav"), StopConsonant, true, stopDuration),
		meta("t", "t", ref("t.wav"), StopConsonant, true, stopDuration),
	)

	t.continuous = group(
		meta("f", "f", ref("f.wav"), ContinuousConsonant, false, continuousDuration),
		meta("h", "h", ref("h.wav"), ContinuousConsonant, false, continuousDuration),
		meta("l", "l", ref("l.wav"), ContinuousConsonant, false, continuousDuration),
		meta("m", "m", ref("m.wav"), ContinuousConsonant, false, continuousDuration),
		meta("n", "n", ref("n.wav"), ContinuousConsonant, false, continuousDuration),
		meta("r", "r", ref("r.wav"), ContinuousConsonant, false, continuousDuration),
		meta("s", "s", ref("s.wav"), ContinuousConsonant, false, continuousDuration),
		meta("v", "v", ref("v.wav"), ContinuousConsonant, false, continuousDuration),
		meta("w", "w", ref("w.wav"), ContinuousConsonant, false, continuousDuration),
		meta("y", "y", ref("y.wav"), ContinuousConsonant, false, continuousDuration),
		meta("z", "z", ref("z.wav"), ContinuousConsonant, false, continuousDuration),
	)

	// Letters outside the curriculum recordings
	t.basic = group(
		meta("q", "kw", NoAudio, StopConsonant, true, stopDuration),
		meta("x", "ks", NoAudio, StopConsonant, true, stopDuration),
	)

	t.welded = group(
		meta("ank", "ank", ref("ank.wav"), Welded, false, unitDuration),
		meta("ink", "ink", ref("ink.wav"), Welded, false, unitDuration),
		meta("onk", "onk", NoAudio, Welded, false, unitDuration),
		meta("unk", "unk", NoAudio, Welded, false, unitDuration),
		meta("ang", "ang", ref("ang.wav"), Welded, false, unitDuration),
		meta("ing", "ing", ref("ing.wav"), Welded, false, unitDuration),
		meta("ong", "ong", ref("ong.wav"), Welded, false, unitDuration),
		meta("ung", "ung", ref("ung.wav"), Welded, false, unitDuration),
		meta("all", "all", ref("all.wav"), Welded, false, unitDuration),
		meta("am", "am", ref("am.wav"), Welded, false, unitDuration),
		meta("an", "an", ref("an.wav"), Welded, false, unitDuration),
	)

	t.trigraphs = group(
		meta("igh", "ī", ref("i_long.wav"), VowelTeam, false, vowelDuration),
	)

	t.rControlled = group(
		meta("ar", "ar", ref("ar.wav"), RControlled, false, unitDuration),
		meta("or", "or", ref("or.wav"), RControlled, false, unitDuration),
		meta("er", "er", ref("er.wav"), RControlled, false, unitDuration),
		meta("ir", "er", ref("er.wav"), RControlled, false, unitDuration),
		meta("ur", "er", ref("er.wav"), RControlled, false, unitDuration),
	)

	t.vowelTeams = group(
		meta("ai", "ā", ref("a_long.wav"), VowelTeam, false, vowelDuration),
		meta("ay", "ā", ref("a_long.wav"), VowelTeam, false, vowelDuration),
		meta("ee", "ē", ref("e_long.wav"), VowelTeam, false, vowelDuration),
		meta("ea", "ē", ref("e_long.wav"), VowelTeam, false, vowelDuration),
		meta("ie", "ī", ref("i_long.wav"), VowelTeam, false, vowelDuration),
		meta("oa", "ō", ref("o_long.wav"), VowelTeam, false, vowelDuration),
		meta("oe", "ō", NoAudio, VowelTeam, false, vowelDuration),
		meta("ow", "ō", ref("o_long.wav"), VowelTeam, false, vowelDuration),
		meta("oo", "oo", ref("oo_long.wav"), VowelTeam, false, vowelDuration),
		meta("ou", "ow", ref("ow.wav"), VowelTeam, false, vowelDuration),
		meta("oi", "oy", ref("oi.wav"), VowelTeam, false, vowelDuration),
		meta("oy", "oy", ref("oi.wav"), VowelTeam, false, vowelDuration),
		meta("ue", "ū", NoAudio, VowelTeam, false, vowelDuration),
		meta("ew", "ū", NoAudio, VowelTeam, false, vowelDuration),
		meta("aw", "aw", NoAudio, VowelTeam, false, vowelDuration),
		meta("au", "aw", NoAudio, VowelTeam, false, vowelDuration),
	)

	t.digraphs = group(
		meta("sh", "sh", ref("sh.wav"), Digraph, false, continuousDuration),
		meta("ch", "ch", ref("ch.wav"), Digraph, true, stopDuration),
		meta("th", "th", ref("th.wav"), Digraph, false, continuousDuration),
		meta("wh", "w", NoAudio, Digraph, false, continuousDuration),
		meta("ng", "ng", ref("ng.wav"), Digraph, false, continuousDuration),
		meta("ck", "k", ref("k.wav"), Digraph, true, stopDuration),
		meta("ph", "f", NoAudio, Digraph, false, continuousDuration),
	)

	t.blends = group(
		meta("bl", "bl", NoAudio, Blend, false, unitDuration),
		meta("cl", "cl", NoAudio, Blend, false, unitDuration),
		meta("fl", "fl", NoAudio, Blend, false, unitDuration),
		meta("gl", "gl", NoAudio, Blend, false, unitDuration),
		meta("pl", "pl", NoAudio, Blend, false, unitDuration),
		meta("sl", "sl", NoAudio, Blend, false, unitDuration),
		meta("br", "br", NoAudio, Blend, false, unitDuration),
		meta("cr", "cr", NoAudio, Blend, false, unitDuration),
		meta("dr", "dr", NoAudio, Blend, false, unitDuration),
		meta("fr", "fr", NoAudio, Blend, false, unitDuration),
		meta("gr", "gr", NoAudio, Blend, false, unitDuration),
		meta("pr", "pr", NoAudio, Blend, false, unitDuration),
		meta("tr", "tr", NoAudio, Blend, false, unitDuration),
		meta("sk", "sk", NoAudio, Blend, false, unitDuration),
		meta("sm", "sm", NoAudio, Blend, false, unitDuration),
		meta("sn", "sn", NoAudio, Blend, false, unitDuration),
		meta("sp", "sp", NoAudio, Blend, false, unitDuration),
		meta("st", "st", NoAudio, Blend, false, unitDuration),
		meta("sw", "sw", NoAudio, Blend, false, unitDuration),
		meta("nd", "nd", NoAudio, Blend, false, unitDuration),
		meta("nt", "nt", NoAudio, Blend, false, unitDuration),
		meta("mp", "mp", NoAudio, Blend, false, unitDuration),
	)

	t.silent = meta("e", "(silent)", NoAudio, Silent, false, 0)

	// Variants selected through Exceptions
	t.vowelTeams[variantKey("ow", "diphthong")] = meta("ow", "ow", ref("ow.wav"), VowelTeam, false, vowelDuration)
	t.vowelTeams[variantKey("oo", "short")] = meta("oo", "oo", ref("oo_short.wav"), VowelTeam, false, vowelDuration)

	return t
}

func variantKey(grapheme, variant string) string {
	return grapheme + "_" + variant
}

// Lookup finds metadata for a grapheme across all groups, in the same
// precedence the segmenter uses. Blends are included.
func (t *Table) Lookup(grapheme string) (Metadata, bool) {
	for _, g := range []map[string]Metadata{
		t.welded, t.trigraphs, t.rControlled, t.vowelTeams, t.digraphs, t.blends,
		t.shortVowels, t.stops, t.continuous, t.basic,
	} {
		if m, ok := g[grapheme]; ok {
			return m, true
		}
	}
	return Metadata{}, false
}

// LongVowel returns the long form of a single vowel
func (t *Table) LongVowel(vowel string) (Metadata, bool) {
	m, ok := t.longVowels[vowel]
	return m, ok
}

// IsBlend reports whether the grapheme is a known consonant blend
func (t *Table) IsBlend(grapheme string) bool {
	_, ok := t.blends[grapheme]
	return ok
}

// AudioRefs returns every distinct audio reference in the table
func (t *Table) AudioRefs() []AudioRef {
	seen := make(map[AudioRef]bool)
	var out []AudioRef
	for _, g := range []map[string]Metadata{
		t.shortVowels, t.longVowels, t.stops, t.continuous, t.basic, t.welded,
		t.trigraphs, t.rControlled, t.vowelTeams, t.digraphs, t.blends,
	} {
		for _, m := range g {
			if m.HasAudio() && !seen[m.Audio] {
				seen[m.Audio] = true
				out = append(out, m.Audio)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
