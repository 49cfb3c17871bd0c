package myaudio

import (
	"encoding/binary"
	"math"
)

// AudioLevelData holds audio level data for one block of capture samples.
type AudioLevelData struct {
	Level    int    `json:"level"`    // 0-100
	Clipping bool   `json:"clipping"` // true if clipping is detected
	Source   string `json:"source"`   // source identifier
}

// CalculateAudioLevel calculates the RMS of a block of 16-bit PCM samples
// and scales it to a 0-100 level with clipping detection.
func CalculateAudioLevel(samples []byte, source string) AudioLevelData {
	if len(samples) == 0 {
		return AudioLevelData{Level: 0, Clipping: false, Source: source}
	}

	// 16-bit samples, truncate a trailing odd byte.
	if len(samples)%2 != 0 {
		samples = samples[:len(samples)-1]
	}

	var sum float64
	sampleCount := len(samples) / 2
	isClipping := false

	for i := 0; i+1 < len(samples); i += 2 {
		sample := int16(binary.LittleEndian.Uint16(samples[i : i+2]))
		sampleAbs := math.Abs(float64(sample))
		sum += sampleAbs * sampleAbs

		if sample == 32767 || sample == -32768 {
			isClipping = true
		}
	}

	if sampleCount == 0 {
		return AudioLevelData{Level: 0, Clipping: false, Source: source}
	}

	rms := math.Sqrt(sum / float64(sampleCount))

	// Convert RMS to decibels relative to 16-bit full scale, then scale
	// -60..-10 dB onto 0-100.
	db := 20 * math.Log10(rms/32768.0)
	scaledLevel := (db + 60) * (100.0 / 50.0)

	if isClipping {
		scaledLevel = math.Max(scaledLevel, 95)
	}

	if scaledLevel < 0 {
		scaledLevel = 0
	} else if scaledLevel > 100 {
		scaledLevel = 100
	}

	return AudioLevelData{
		Level:    int(scaledLevel),
		Clipping: isClipping,
		Source:   source,
	}
}
