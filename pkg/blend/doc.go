// ABOUTME: Whole-word audio package
// ABOUTME: Joins phoneme clips into one word buffer with per-unit zones
// Package blend synthesizes whole-word audio from phoneme clips.
//
// Build lays clips end to end. Continuous sounds overlap the previous clip
// by 35ms (at most half their own length) and the overlap is summed. The
// first clip and stop consonants start exactly where the previous clip
// ends.
//
// Loader resolves the audio played when a word is completed: a prerecorded
// recording when one exists, otherwise the blend of the word's phonemes.
package blend
