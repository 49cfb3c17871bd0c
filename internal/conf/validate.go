package conf

import (
	"github.com/tphakala/pitchnet-go/internal/errors"
)

// ValidateSettings checks the loaded settings for values outside their domain.
// Threshold values are clamped rather than rejected, everything else errors out.
func ValidateSettings(settings *Settings) error {
	var errs []error

	if err := validateModelSettings(&settings.Model); err != nil {
		errs = append(errs, err)
	}
	if err := validateAudioSettings(&settings.Audio); err != nil {
		errs = append(errs, err)
	}
	validateRealtimeSettings(&settings.Realtime)

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func validateModelSettings(m *ModelSettings) error {
	if m.ChunkSize < 0 {
		return errors.Newf("model chunk size must not be negative: %d", m.ChunkSize).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("chunk_size", m.ChunkSize).
			Build()
	}
	if m.Threads < 0 {
		return errors.Newf("model thread count must not be negative: %d", m.Threads).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("threads", m.Threads).
			Build()
	}
	return nil
}

func validateAudioSettings(a *AudioSettings) error {
	if a.SampleRate <= 0 {
		return errors.Newf("audio sample rate must be positive: %d", a.SampleRate).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("sample_rate", a.SampleRate).
			Build()
	}
	if a.BufferSeconds <= 0 {
		a.BufferSeconds = 2
	}
	if a.CaptureSeconds <= 0 {
		a.CaptureSeconds = 30
	}
	if a.Export.Length <= 0 {
		a.Export.Length = 5
	}
	return nil
}

// validateRealtimeSettings clamps thresholds into their domain, matching the
// engine's own clamping. Out of range values are never an error.
func validateRealtimeSettings(r *RealtimeSettings) {
	r.ConfidenceThreshold = min(max(r.ConfidenceThreshold, 0), 1)
	r.AmplitudeThreshold = max(r.AmplitudeThreshold, 0)
	if r.QueueSize <= 0 {
		r.QueueSize = 100
	}
}
