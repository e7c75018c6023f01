// ABOUTME: Asset fetching package
// ABOUTME: Loads phoneme and word audio from a directory or an HTTP origin
// Package assets fetches encoded audio assets by their relative path.
//
// Asset paths follow the curriculum conventions (audio/phonemes/<name>.wav,
// audio/words/<id>.mp3) and are normalized to a leading slash before use,
// so "audio/x.wav" and "/audio/x.wav" name the same asset. Absolute http(s)
// URLs pass through unchanged.
//
// Two fetchers are provided: Dir reads from a local asset root and
// HTTPFetcher downloads from a base URL with an on-disk cache keyed by the
// blake3 hash of the resolved URL.
package assets
