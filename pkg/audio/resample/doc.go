// ABOUTME: Audio resampling package using linear interpolation
// ABOUTME: Converts decoded clips to the output context rate
// Package resample converts audio between sample rates.
//
// Phoneme recordings are often authored at a different rate than the
// output device runs at. Buffer converts a whole decoded clip in one call;
// Resampler handles chunked input and carries interpolation state across
// calls.
//
// Example:
//
//	out := resample.Buffer(clip, 48000)
package resample
