// capture_buffer.go: rolling clip buffer keeping the most recent seconds of
// PCM audio for on-demand export.
package myaudio

import (
	"sync"
	"time"
)

// CaptureBuffer is a circular buffer of raw PCM bytes with timestamp
// tracking, sized to hold a fixed number of seconds of audio. Writes always
// succeed, the oldest audio is overwritten once the buffer has wrapped.
type CaptureBuffer struct {
	data           []byte
	writeIndex     int
	sampleRate     int
	bytesPerSample int
	bufferSize     int
	bufferDuration time.Duration
	startTime      time.Time
	initialized    bool
	wrapped        bool
	lock           sync.Mutex
}

// NewCaptureBuffer initializes a clip buffer holding durationSeconds of audio.
func NewCaptureBuffer(durationSeconds, sampleRate, bytesPerSample int) *CaptureBuffer {
	bufferSize := durationSeconds * sampleRate * bytesPerSample
	alignedBufferSize := ((bufferSize + 2047) / 2048) * 2048 // Round up to the nearest multiple of 2048
	return &CaptureBuffer{
		data:           make([]byte, alignedBufferSize),
		sampleRate:     sampleRate,
		bytesPerSample: bytesPerSample,
		bufferSize:     alignedBufferSize,
		bufferDuration: time.Second * time.Duration(durationSeconds),
	}
}

// Write adds PCM audio data to the buffer, overwriting the oldest audio once
// the buffer is full.
func (cb *CaptureBuffer) Write(data []byte) {
	cb.lock.Lock()
	defer cb.lock.Unlock()

	if !cb.initialized {
		cb.startTime = time.Now()
		cb.initialized = true
	}

	for len(data) > 0 {
		n := copy(cb.data[cb.writeIndex:], data)
		data = data[n:]
		cb.writeIndex += n
		if cb.writeIndex >= cb.bufferSize {
			cb.writeIndex = 0
			cb.wrapped = true
			// Old data has been overwritten, move the window start forward.
			cb.startTime = time.Now().Add(-cb.bufferDuration)
		}
	}
}

// ReadLast returns a copy of the most recent seconds of buffered audio,
// oldest-first. It returns less when the buffer has not filled that far yet.
func (cb *CaptureBuffer) ReadLast(seconds int) []byte {
	cb.lock.Lock()
	defer cb.lock.Unlock()

	want := seconds * cb.sampleRate * cb.bytesPerSample
	buffered := cb.writeIndex
	if cb.wrapped {
		buffered = cb.bufferSize
	}
	if want > buffered {
		want = buffered
	}
	if want == 0 {
		return nil
	}

	segment := make([]byte, want)
	start := cb.writeIndex - want
	if start >= 0 {
		copy(segment, cb.data[start:cb.writeIndex])
		return segment
	}

	// Wrapped: the segment spans the end and the start of the buffer.
	start += cb.bufferSize
	firstPartSize := cb.bufferSize - start
	copy(segment[:firstPartSize], cb.data[start:])
	copy(segment[firstPartSize:], cb.data[:cb.writeIndex])
	return segment
}

// Duration returns how much audio the buffer currently holds.
func (cb *CaptureBuffer) Duration() time.Duration {
	cb.lock.Lock()
	defer cb.lock.Unlock()

	buffered := cb.writeIndex
	if cb.wrapped {
		buffered = cb.bufferSize
	}
	samples := buffered / cb.bytesPerSample
	return time.Duration(samples) * time.Second / time.Duration(cb.sampleRate)
}
