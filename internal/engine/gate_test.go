package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                string
		pitch               float64
		confidence          float64
		amplitude           float64
		confidenceThreshold float64
		amplitudeThreshold  float64
		want                float64
	}{
		{"both_disabled", 440, 0.9, 0.5, 0, 0, 440},
		{"confidence_below", 440, 0.9, 0.5, 0.95, 0, GatedPitch},
		{"confidence_above", 440, 0.9, 0.5, 0.8, 0, 440},
		{"confidence_equal_passes", 440, 0.9, 0.5, 0.9, 0, 440},
		{"amplitude_below", 440, 0.9, 0.01, 0, 0.05, GatedPitch},
		{"amplitude_above", 440, 0.9, 0.5, 0, 0.05, 440},
		{"both_enabled_both_pass", 440, 0.99, 0.5, 0.95, 0.05, 440},
		{"both_enabled_amplitude_fails", 440, 0.99, 0.01, 0.95, 0.05, GatedPitch},
		{"zero_confidence_threshold_always_passes", 440, 0.0, 0.5, 0, 0, 440},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Gate(tt.pitch, tt.confidence, tt.amplitude, tt.confidenceThreshold, tt.amplitudeThreshold)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestGateSentinelValue(t *testing.T) {
	t.Parallel()

	got := Gate(261.6, 0.9, 0.5, 0.95, 0)
	assert.Equal(t, -1500.0, got, "gated pitch must be the exact sentinel value")
}
