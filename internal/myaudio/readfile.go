// readfile.go: WAV file decoding for offline analysis.
package myaudio

import (
	"fmt"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/tphakala/pitchnet-go/internal/errors"
)

// AudioChunkCallback receives one analysis window of samples at a time.
type AudioChunkCallback func(chunk []float32) error

// AudioInfo describes a decoded audio file.
type AudioInfo struct {
	SampleRate   int
	TotalSamples int
	NumChannels  int
	BitDepth     int
}

// ReadWAVInfo returns format information for a WAV file without decoding
// its sample data.
func ReadWAVInfo(path string) (AudioInfo, error) {
	file, err := os.Open(path)
	if err != nil {
		return AudioInfo{}, errors.New(err).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}
	defer file.Close() //nolint:errcheck

	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return AudioInfo{}, errors.Newf("invalid WAV file format").
			Component("myaudio").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}

	if decoder.BitDepth != 16 && decoder.BitDepth != 24 && decoder.BitDepth != 32 {
		return AudioInfo{}, errors.Newf("unsupported bit depth: %d", decoder.BitDepth).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}
	if decoder.NumChans != 1 && decoder.NumChans != 2 {
		return AudioInfo{}, errors.Newf("unsupported number of channels: %d", decoder.NumChans).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}

	fileInfo, err := file.Stat()
	if err != nil {
		return AudioInfo{}, err
	}
	bytesPerSample := int(decoder.BitDepth / 8)
	totalSamples := int(fileInfo.Size()) / bytesPerSample / int(decoder.NumChans)

	return AudioInfo{
		SampleRate:   int(decoder.SampleRate),
		TotalSamples: totalSamples,
		NumChannels:  int(decoder.NumChans),
		BitDepth:     int(decoder.BitDepth),
	}, nil
}

// ReadWAVChunks decodes a WAV file and delivers its samples to the callback
// in windows of chunkSize samples. Stereo input is downmixed to mono and the
// final partial window is zero padded. The file's sample rate is returned so
// callers can report timing correctly.
func ReadWAVChunks(path string, chunkSize int, callback AudioChunkCallback) (int, error) {
	if chunkSize <= 0 {
		return 0, errors.Newf("chunk size must be positive, got %d", chunkSize).
			Component("myaudio").
			Category(errors.CategoryValidation).
			Build()
	}

	file, err := os.Open(path)
	if err != nil {
		return 0, errors.New(err).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}
	defer file.Close() //nolint:errcheck

	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return 0, errors.Newf("input is not a valid WAV audio file").
			Component("myaudio").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}

	divisor, err := audioDivisor(int(decoder.BitDepth))
	if err != nil {
		return 0, err
	}
	channels := int(decoder.NumChans)
	sampleRate := int(decoder.SampleRate)

	buf := &audio.IntBuffer{
		Data:   make([]int, 8192),
		Format: &audio.Format{SampleRate: sampleRate, NumChannels: channels},
	}

	current := make([]float32, 0, chunkSize)
	for {
		n, err := decoder.PCMBuffer(buf)
		if err != nil {
			return sampleRate, err
		}
		if n == 0 {
			break
		}

		// Downmix interleaved frames by averaging channels.
		for i := 0; i+channels <= n; i += channels {
			var frame float32
			for c := range channels {
				frame += float32(buf.Data[i+c]) / divisor
			}
			current = append(current, frame/float32(channels))

			if len(current) == chunkSize {
				if err := callback(current); err != nil {
					return sampleRate, err
				}
				current = current[:0]
			}
		}
	}

	if len(current) > 0 {
		padded := make([]float32, chunkSize)
		copy(padded, current)
		if err := callback(padded); err != nil {
			return sampleRate, err
		}
	}

	return sampleRate, nil
}

// audioDivisor returns the normalization divisor for a PCM bit depth.
func audioDivisor(bitDepth int) (float32, error) {
	switch bitDepth {
	case 16:
		return 32768.0, nil
	case 24:
		return 8388608.0, nil
	case 32:
		return 2147483648.0, nil
	default:
		return 0, fmt.Errorf("unsupported audio file bit depth: %d", bitDepth)
	}
}
