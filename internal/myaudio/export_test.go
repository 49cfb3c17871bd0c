package myaudio

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportClipWritesReadableWAV(t *testing.T) {
	t.Parallel()

	cb := NewCaptureBuffer(2, 16000, 2)
	pcm := make([]byte, 16000*2) // one second
	for i := range pcm {
		pcm[i] = byte(i % 256)
	}
	cb.Write(pcm)

	dir := t.TempDir()
	path, err := ExportClip(cb, "test", dir, 1, 16000, nil)
	require.NoError(t, err)

	info, err := ReadWAVInfo(path)
	require.NoError(t, err)
	assert.Equal(t, 16000, info.SampleRate)
	assert.Equal(t, 1, info.NumChannels)
	assert.Equal(t, 16, info.BitDepth)
}

func TestExportClipFailsOnEmptyBuffer(t *testing.T) {
	t.Parallel()

	cb := NewCaptureBuffer(2, 16000, 2)
	_, err := ExportClip(cb, "test", t.TempDir(), 1, 16000, nil)
	assert.Error(t, err)
}
