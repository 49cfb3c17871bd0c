package engine

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNextPowerOfTwo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   int
		want int
	}{
		{"one", 1, 1},
		{"two", 2, 2},
		{"three", 3, 4},
		{"exact_power", 4096, 4096},
		{"above_power", 4097, 8192},
		{"chunk_size", 513, 1024},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, nextPowerOfTwo(tt.in))
		})
	}
}

func TestRingBufferCapacityRounding(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer(bufferCapacityFor(512))
	assert.Equal(t, 4096, rb.Capacity(), "capacity floor applies for small chunks")

	rb = NewRingBuffer(bufferCapacityFor(5000))
	assert.Equal(t, 8192, rb.Capacity(), "capacity rounds up to the next power of two")
}

func TestRingBufferPutGetOrder(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer(8)
	for i := range 6 {
		rb.Put(float32(i))
	}
	assert.Equal(t, 6, rb.Available())

	dst := make([]float32, 4)
	require.True(t, rb.Get(dst))
	assert.Equal(t, []float32{0, 1, 2, 3}, dst)
	assert.Equal(t, 2, rb.Available())
}

func TestRingBufferGetInsufficientIsNoop(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer(8)
	rb.Put(1)
	rb.Put(2)

	dst := make([]float32, 3)
	assert.False(t, rb.Get(dst))
	assert.Equal(t, 2, rb.Available(), "failed get must not consume samples")

	dst = dst[:2]
	require.True(t, rb.Get(dst))
	assert.Equal(t, []float32{1, 2}, dst)
}

func TestRingBufferOverflowDropsOldest(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer(8)
	capacity := rb.Capacity()

	// Twice the capacity without a single read: the oldest half is silently
	// discarded, the producer never fails.
	for i := range 2 * capacity {
		rb.Put(float32(i))
	}
	assert.Equal(t, capacity, rb.Available())
	assert.Equal(t, uint64(capacity), rb.Dropped())

	dst := make([]float32, capacity)
	require.True(t, rb.Get(dst))
	for i, v := range dst {
		assert.Equal(t, float32(capacity+i), v, "survivors must be the newest samples oldest-first")
	}
}

func TestRingBufferWrapAround(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer(8)
	dst := make([]float32, 6)

	// Walk the indices well past the capacity boundary.
	for round := range 10 {
		for i := range 6 {
			rb.Put(float32(round*6 + i))
		}
		require.True(t, rb.Get(dst))
		for i, v := range dst {
			assert.Equal(t, float32(round*6+i), v)
		}
	}
	assert.Equal(t, 0, rb.Available())
}

func TestRingBufferClear(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer(8)
	for i := range 5 {
		rb.Put(float32(i))
	}
	rb.Clear()
	assert.Equal(t, 0, rb.Available())
	assert.False(t, rb.Get(make([]float32, 1)))
}

func TestRingBufferResizeDiscardsContent(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer(8)
	for i := range 5 {
		rb.Put(float32(i))
	}
	rb.Resize(100)
	assert.Equal(t, 128, rb.Capacity())
	assert.Equal(t, 0, rb.Available())
}

func TestRingBufferConcurrentProducerConsumer(t *testing.T) {
	t.Parallel()

	const total = 200_000
	rb := NewRingBuffer(4096)

	var wg sync.WaitGroup
	var producerDone atomic.Bool
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := range total {
			rb.Put(float32(i % 997))
		}
		producerDone.Store(true)
	}()

	// Consume in chunks while the producer runs. Dropped samples are allowed,
	// that is the documented overwrite-oldest policy; what must hold is that
	// consumed + dropped + remaining accounts for every produced sample.
	dst := make([]float32, 256)
	consumed := 0
	for {
		if rb.Get(dst) {
			consumed += len(dst)
			continue
		}
		if producerDone.Load() {
			break
		}
	}
	wg.Wait()

	assert.LessOrEqual(t, rb.Available(), rb.Capacity())
	assert.Equal(t, uint64(total), uint64(consumed)+rb.Dropped()+uint64(rb.Available()))
}
