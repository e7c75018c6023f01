// ABOUTME: Scrub gesture package
// ABOUTME: Turns pointer drags along a word track into phoneme playback
// Package scrub maps a pointer sliding along a word to phoneme zones.
//
// Each unit of a segmented word has an anchor: a ratio in [0,1] along the
// track. The zone under the pointer is the nearest anchor, ties going to the
// lower index. Crossing into a new zone plays that unit. Stop consonants
// play at most once per drag.
//
// A drag completes the word when it touched the start of the track, reached
// its end and was released near the end. A press that travels less than the
// tap distance is a tap: it snaps to the nearest anchor and never completes
// the word. Cancelled gestures never complete.
//
// The Controller is safe for concurrent use. Callbacks run after its lock
// is released, so they may call back into it.
package scrub
