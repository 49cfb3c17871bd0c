package myaudio

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaptureBufferReadLast(t *testing.T) {
	t.Parallel()

	// 1 second of 1 kHz "audio" with 2 bytes per sample.
	cb := NewCaptureBuffer(1, 1000, 2)

	data := make([]byte, 1000)
	for i := range data {
		data[i] = byte(i % 251)
	}
	cb.Write(data)

	got := cb.ReadLast(1)
	require.Len(t, got, 1000)
	assert.Equal(t, data, got)
}

func TestCaptureBufferReturnsLessWhenNotFilled(t *testing.T) {
	t.Parallel()

	cb := NewCaptureBuffer(10, 1000, 2)
	cb.Write(make([]byte, 500))

	assert.Len(t, cb.ReadLast(10), 500)
	assert.Nil(t, NewCaptureBuffer(10, 1000, 2).ReadLast(10))
}

func TestCaptureBufferWrapKeepsNewestAudio(t *testing.T) {
	t.Parallel()

	cb := NewCaptureBuffer(1, 1024, 2)
	// Capacity is 2048 bytes. Write 3072 bytes of a ramp so the first
	// 1024 bytes are overwritten.
	data := make([]byte, 3072)
	for i := range data {
		data[i] = byte(i % 256)
	}
	for i := 0; i < len(data); i += 512 {
		cb.Write(data[i : i+512])
	}

	got := cb.ReadLast(1)
	require.Len(t, got, 2048)
	assert.Equal(t, data[1024:], got)
}

func TestCaptureBufferDuration(t *testing.T) {
	t.Parallel()

	cb := NewCaptureBuffer(2, 1000, 2)
	assert.Equal(t, time.Duration(0), cb.Duration())

	cb.Write(make([]byte, 1000)) // half a second
	assert.Equal(t, 500*time.Millisecond, cb.Duration())
}
