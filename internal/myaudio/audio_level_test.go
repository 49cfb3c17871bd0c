package myaudio

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
)

func pcmOf(samples ...int16) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		binary.LittleEndian.PutUint16(out[2*i:2*i+2], uint16(s))
	}
	return out
}

func TestCalculateAudioLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		samples      []byte
		wantLevel    int
		wantClipping bool
	}{
		{"empty", nil, 0, false},
		{"silence", pcmOf(0, 0, 0, 0), 0, false},
		{"full_scale_clipping", pcmOf(32767, -32768, 32767, -32768), 100, true},
		{"quiet_signal", pcmOf(10, -10, 10, -10), 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := CalculateAudioLevel(tt.samples, "test")
			assert.Equal(t, tt.wantLevel, got.Level)
			assert.Equal(t, tt.wantClipping, got.Clipping)
			assert.Equal(t, "test", got.Source)
		})
	}
}

func TestCalculateAudioLevelMidScale(t *testing.T) {
	t.Parallel()

	// A constant half scale signal: rms = 16384, about -6 dBFS, which
	// scales past the top of the range and clamps to 100.
	got := CalculateAudioLevel(pcmOf(16384, 16384, 16384, 16384), "mic")
	assert.Equal(t, 100, got.Level)
	assert.False(t, got.Clipping)
}

func TestCalculateAudioLevelClippingForcesHighLevel(t *testing.T) {
	t.Parallel()

	// Mostly quiet block with a single clipped sample still reports >= 95.
	samples := make([]int16, 1024)
	samples[0] = 32767
	got := CalculateAudioLevel(pcmOf(samples...), "mic")
	assert.True(t, got.Clipping)
	assert.GreaterOrEqual(t, got.Level, 95)
}
