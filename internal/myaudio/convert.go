// convert.go: conversions between the 16-bit PCM capture format and the
// float32 samples the model consumes.
package myaudio

import (
	"encoding/binary"
)

// SamplesFromPCM16 converts little-endian 16-bit PCM bytes into float32
// samples in [-1, 1), writing into dst and returning the number of samples
// produced. dst must hold at least len(data)/2 samples; a trailing odd byte
// is ignored.
func SamplesFromPCM16(data []byte, dst []float32) int {
	n := len(data) / 2
	if n > len(dst) {
		n = len(dst)
	}
	for i := range n {
		sample := int16(binary.LittleEndian.Uint16(data[2*i : 2*i+2]))
		dst[i] = float32(sample) / 32768.0
	}
	return n
}

// PCM16FromSamples converts float32 samples in [-1, 1] into little-endian
// 16-bit PCM bytes, clamping out-of-range values.
func PCM16FromSamples(samples []float32, dst []byte) int {
	n := len(samples)
	if 2*n > len(dst) {
		n = len(dst) / 2
	}
	for i := range n {
		scaled := float64(samples[i]) * 32768.0
		if scaled > 32767 {
			scaled = 32767
		} else if scaled < -32768 {
			scaled = -32768
		}
		binary.LittleEndian.PutUint16(dst[2*i:2*i+2], uint16(int16(scaled)))
	}
	return 2 * n
}
