package engine

import (
	"sync"
)

// ModelSlot holds the currently active inference capability and its chunk
// size behind a short-held mutex. The pair is only ever replaced atomically:
// a replacement is built fully out-of-band and swapped in under the lock, so
// the worker never observes a partially-updated pair. The audio thread never
// touches this mutex.
type ModelSlot struct {
	mu         sync.Mutex
	capability Capability
	chunkSize  int
}

// NewModelSlot creates a slot holding the given capability and chunk size.
func NewModelSlot(capability Capability, chunkSize int) *ModelSlot {
	return &ModelSlot{
		capability: capability,
		chunkSize:  chunkSize,
	}
}

// Swap replaces the active capability and chunk size together, returning the
// previous capability so the caller can release it.
func (ms *ModelSlot) Swap(capability Capability, chunkSize int) Capability {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	old := ms.capability
	ms.capability = capability
	ms.chunkSize = chunkSize
	return old
}

// Invoke runs the active capability on one chunk. The mutex is held for the
// duration of the backend call.
func (ms *ModelSlot) Invoke(chunk []float32) (pitch, confidence, amplitude float64, err error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.capability.Invoke(chunk)
}

// ChunkSize returns the chunk size associated with the active capability.
func (ms *ModelSlot) ChunkSize() int {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.chunkSize
}

// Close releases the active capability.
func (ms *ModelSlot) Close() error {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	if ms.capability == nil {
		return nil
	}
	err := ms.capability.Close()
	ms.capability = nil
	return err
}
