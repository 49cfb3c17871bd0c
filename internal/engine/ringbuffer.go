// ringbuffer.go: lock-free single-producer single-consumer sample buffer
// feeding the inference worker.
package engine

import (
	"sync/atomic"
)

// minBufferCapacity is the floor for the ring buffer capacity in samples,
// regardless of the configured chunk size.
const minBufferCapacity = 4096

// RingBuffer is a fixed-capacity power-of-two sized sample buffer, safe for
// exactly one concurrent producer and one concurrent consumer. The producer
// never blocks: once the buffer is full the oldest unread samples are
// overwritten and counted as dropped. Resize and Clear are NOT safe against a
// live producer or consumer, the caller must quiesce the worker first.
type RingBuffer struct {
	data    []float32
	mask    uint64
	write   atomic.Uint64 // monotonically increasing, wrapped via mask on access
	read    atomic.Uint64 // monotonically increasing, wrapped via mask on access
	dropped atomic.Uint64 // samples overwritten before being read
}

// NewRingBuffer creates a ring buffer with capacity rounded up to the next
// power of two that is at least requestedCapacity.
func NewRingBuffer(requestedCapacity int) *RingBuffer {
	rb := &RingBuffer{}
	rb.Resize(requestedCapacity)
	return rb
}

// Resize reallocates storage with capacity rounded up to the next power of
// two, discarding all buffered content and resetting both indices.
func (rb *RingBuffer) Resize(requestedCapacity int) {
	capacity := nextPowerOfTwo(max(requestedCapacity, 1))
	rb.data = make([]float32, capacity)
	rb.mask = uint64(capacity - 1)
	rb.write.Store(0)
	rb.read.Store(0)
}

// Put appends one sample. It never fails and never blocks: if the buffer is
// full the oldest unread sample is discarded to make room.
func (rb *RingBuffer) Put(sample float32) {
	w := rb.write.Load()
	if w-rb.read.Load() >= uint64(len(rb.data)) {
		rb.read.Add(1)
		rb.dropped.Add(1)
	}
	rb.data[w&rb.mask] = sample
	rb.write.Store(w + 1)
}

// Get copies len(dst) samples oldest-first into dst and advances the read
// index. It returns false and leaves the buffer untouched if fewer samples
// are available, partial reads are never exposed.
func (rb *RingBuffer) Get(dst []float32) bool {
	n := uint64(len(dst))
	r := rb.read.Load()
	if rb.write.Load()-r < n {
		return false
	}
	for i := range dst {
		dst[i] = rb.data[(r+uint64(i))&rb.mask]
	}
	rb.read.Add(n)
	return true
}

// Available returns the number of unread samples.
func (rb *RingBuffer) Available() int {
	return int(rb.write.Load() - rb.read.Load())
}

// Capacity returns the buffer capacity in samples.
func (rb *RingBuffer) Capacity() int {
	return len(rb.data)
}

// Clear discards all buffered content. Caller must quiesce the worker first.
func (rb *RingBuffer) Clear() {
	rb.write.Store(0)
	rb.read.Store(0)
}

// Dropped returns the total number of samples overwritten before being read.
func (rb *RingBuffer) Dropped() uint64 {
	return rb.dropped.Load()
}

// bufferCapacityFor returns the ring buffer capacity used for a given chunk
// size, before power-of-two rounding.
func bufferCapacityFor(chunkSize int) int {
	return max(chunkSize, minBufferCapacity)
}

// nextPowerOfTwo returns the smallest power of two >= n.
func nextPowerOfTwo(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}
