// ABOUTME: PCM sample unpacking
// ABOUTME: Converts 16-bit and 24-bit little-endian PCM bytes to int32 samples
package decode

import (
	"encoding/binary"
	"fmt"

	"github.com/slidesounds/slidesounds-go/pkg/audio"
)

// decodePCM converts little-endian PCM bytes to int32 samples in 24-bit range
func decodePCM(data []byte, bitDepth int) ([]int32, error) {
	switch bitDepth {
	case 24:
		numSamples := len(data) / 3
		samples := make([]int32, numSamples)
		for i := 0; i < numSamples; i++ {
			samples[i] = audio.SampleFrom24Bit([3]byte{data[i*3], data[i*3+1], data[i*3+2]})
		}
		return samples, nil
	case 16:
		numSamples := len(data) / 2
		samples := make([]int32, numSamples)
		for i := 0; i < numSamples; i++ {
			samples[i] = audio.SampleFromInt16(int16(binary.LittleEndian.Uint16(data[i*2:])))
		}
		return samples, nil
	default:
		return nil, fmt.Errorf("unsupported bit depth: %d (supported: 16, 24)", bitDepth)
	}
}

// scaleTo24 shifts a sample of the given bit depth into 24-bit range
func scaleTo24(sample int32, bitDepth int) int32 {
	switch {
	case bitDepth == 24:
		return sample
	case bitDepth < 24:
		return sample << (24 - bitDepth)
	default:
		return sample >> (bitDepth - 24)
	}
}
