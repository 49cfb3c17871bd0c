package engine

// GatedPitch is the sentinel pitch value emitted when a prediction fails a
// threshold check. Confidence and amplitude always pass through unmodified.
const GatedPitch = -1500.0

// Gate applies threshold gating to a raw pitch prediction. A threshold of
// exactly zero disables that check. When confidence or amplitude falls below
// an enabled threshold the returned pitch is the GatedPitch sentinel,
// otherwise the pitch is returned unmodified.
func Gate(pitch, confidence, amplitude, confidenceThreshold, amplitudeThreshold float64) float64 {
	if confidenceThreshold > 0 && confidence < confidenceThreshold {
		return GatedPitch
	}
	if amplitudeThreshold > 0 && amplitude < amplitudeThreshold {
		return GatedPitch
	}
	return pitch
}
