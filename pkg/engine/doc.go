// ABOUTME: Phoneme audio engine package
// ABOUTME: Loads, caches and plays phoneme clips on one output context
// Package engine owns the audio output context and the decoded clip cache.
//
// One Engine is created per process and shared by reference. Clips are
// fetched through an assets.Fetcher, decoded, resampled to the engine rate
// and cached for the life of the engine. Concurrent loads of the same asset
// share one fetch.
//
// Playback follows phoneme rules:
//
//   - stop consonants cut everything else with a 10ms fade and start with a
//     5ms attack; they are never suppressed as repeats
//   - continuous sounds fade out what is playing (35ms when crossfading,
//     50ms otherwise) and start with a 25ms fade-in; replaying the unit that
//     played last is suppressed
//
// Play never blocks on I/O. A unit whose clip is not cached yet is skipped
// and its load is started in the background.
//
// Example:
//
//	eng, err := engine.New(engine.Config{Fetcher: assets.NewDir("public")})
//	if err := eng.EnsureContextRunning(ctx); err != nil { ... }
//	eng.Preload(ctx, parsed.Units)
//	eng.Play(parsed.Units[0], engine.PlayOptions{})
package engine
