// ABOUTME: Audio output package for playing decoded clips
// ABOUTME: Provides the Device interface and its oto implementation
// Package output provides the process-wide audio output device.
//
// A Device is opened once with the engine's sample rate and channel count.
// Each playing clip is started as its own Voice reading signed 16-bit
// little-endian PCM; the device mixes all active voices.
//
// Example:
//
//	dev := output.NewOto()
//	err := dev.Open(44100, 2)
//	voice, err := dev.Start(pcmReader)
//	defer voice.Close()
package output
