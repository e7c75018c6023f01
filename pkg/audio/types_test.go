// ABOUTME: Tests for audio types
// ABOUTME: Tests sample conversion and buffer helpers
package audio

import (
	"testing"
	"time"
)

func TestSampleFromInt16(t *testing.T) {
	tests := []struct {
		name     string
		input    int16
		expected int32
	}{
		{"zero", 0, 0},
		{"positive", 100, 100 << 8},
		{"negative", -100, -100 << 8},
		{"max", 32767, 32767 << 8},
		{"min", -32768, -32768 << 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleFromInt16(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestSampleFrom24Bit(t *testing.T) {
	tests := []struct {
		name     string
		input    [3]byte
		expected int32
	}{
		{"zero", [3]byte{0, 0, 0}, 0},
		{"positive", [3]byte{0x56, 0x34, 0x12}, 0x123456},
		{"negative", [3]byte{0x00, 0xFF, 0xFF}, -256},
		{"max positive", [3]byte{0xFF, 0xFF, 0x7F}, Max24Bit},
		{"max negative", [3]byte{0x00, 0x00, 0x80}, Min24Bit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SampleFrom24Bit(tt.input)
			if result != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, result)
			}
		})
	}
}

func TestRoundTrip16Bit(t *testing.T) {
	for _, original := range []int16{0, 100, -100, 32767, -32768} {
		if result := SampleToInt16(SampleFromInt16(original)); result != original {
			t.Errorf("round-trip failed: %d -> %d", original, result)
		}
	}
}

func TestClamp24(t *testing.T) {
	tests := []struct {
		name     string
		input    int64
		expected int32
	}{
		{"in range", 1000, 1000},
		{"over", Max24Bit + 10, Max24Bit},
		{"under", Min24Bit - 10, Min24Bit},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clamp24(tt.input); got != tt.expected {
				t.Errorf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestBufferFramesAndDuration(t *testing.T) {
	buf := NewBuffer(48000, 2, 4800)

	if buf.Frames() != 4800 {
		t.Errorf("expected 4800 frames, got %d", buf.Frames())
	}
	if buf.Duration() != 100*time.Millisecond {
		t.Errorf("expected 100ms, got %v", buf.Duration())
	}

	var empty *Buffer
	if empty.Frames() != 0 {
		t.Errorf("expected nil buffer to have 0 frames, got %d", empty.Frames())
	}
}

func TestSampleBroadcastsMono(t *testing.T) {
	buf := NewBuffer(8000, 1, 2)
	buf.Samples[0] = 10
	buf.Samples[1] = 20

	if got := buf.Sample(1, 0); got != 20 {
		t.Errorf("expected 20, got %d", got)
	}
	if got := buf.Sample(1, 1); got != 20 {
		t.Errorf("expected channel 1 to read mono channel, got %d", got)
	}
}

func TestDurationToFrames(t *testing.T) {
	if got := DurationToFrames(35*time.Millisecond, 44100); got != 1543 {
		t.Errorf("expected 1543 frames, got %d", got)
	}
}
