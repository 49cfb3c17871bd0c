package myaudio

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTestWAV creates a 16-bit WAV file with the given samples.
func writeTestWAV(t *testing.T, path string, samples []int, sampleRate, channels int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, sampleRate, 16, channels, 1)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Data:   samples,
		Format: &audio.Format{SampleRate: sampleRate, NumChannels: channels},
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

func TestReadWAVInfo(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "test.wav")
	writeTestWAV(t, path, make([]int, 1000), 48000, 1)

	info, err := ReadWAVInfo(path)
	require.NoError(t, err)
	assert.Equal(t, 48000, info.SampleRate)
	assert.Equal(t, 1, info.NumChannels)
	assert.Equal(t, 16, info.BitDepth)
}

func TestReadWAVInfoRejectsGarbage(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "garbage.wav")
	require.NoError(t, os.WriteFile(path, []byte("not a wav file"), 0o644))

	_, err := ReadWAVInfo(path)
	assert.Error(t, err)
}

func TestReadWAVChunksSplitsAndPads(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "chunks.wav")
	// 1100 samples with a 512 window: two full chunks and a padded tail.
	samples := make([]int, 1100)
	for i := range samples {
		samples[i] = 1000
	}
	writeTestWAV(t, path, samples, 16000, 1)

	var chunks [][]float32
	sampleRate, err := ReadWAVChunks(path, 512, func(chunk []float32) error {
		got := make([]float32, len(chunk))
		copy(got, chunk)
		chunks = append(chunks, got)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 16000, sampleRate)
	require.Len(t, chunks, 3)

	for _, chunk := range chunks {
		assert.Len(t, chunk, 512)
	}
	// Tail chunk: 1100-1024=76 real samples followed by zero padding.
	tail := chunks[2]
	assert.InDelta(t, 1000.0/32768.0, tail[75], 1e-6)
	assert.Zero(t, tail[76])
	assert.Zero(t, tail[511])
}

func TestReadWAVChunksDownmixesStereo(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "stereo.wav")
	// Interleaved L/R frames where L=2000 and R=0, downmix averages to 1000.
	samples := make([]int, 512*2)
	for i := 0; i < len(samples); i += 2 {
		samples[i] = 2000
	}
	writeTestWAV(t, path, samples, 16000, 2)

	var got []float32
	_, err := ReadWAVChunks(path, 512, func(chunk []float32) error {
		got = append(got, chunk...)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, got, 512)
	assert.InDelta(t, 1000.0/32768.0, got[0], 1e-6)
}

func TestReadWAVChunksRejectsBadChunkSize(t *testing.T) {
	t.Parallel()

	_, err := ReadWAVChunks("irrelevant.wav", 0, func([]float32) error { return nil })
	assert.Error(t, err)
}
