package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelSlotSwapReturnsPrevious(t *testing.T) {
	t.Parallel()

	first := newFakeCapability(100, 0.9, 0.1)
	second := newFakeCapability(200, 0.8, 0.2)

	slot := NewModelSlot(first, 512)
	assert.Equal(t, 512, slot.ChunkSize())

	old := slot.Swap(second, 256)
	assert.Same(t, first, old)
	assert.Equal(t, 256, slot.ChunkSize())

	pitch, _, _, err := slot.Invoke(make([]float32, 256))
	require.NoError(t, err)
	assert.InDelta(t, 200, pitch, 1e-9)
}

func TestModelSlotCloseReleasesCapability(t *testing.T) {
	t.Parallel()

	capability := newFakeCapability(100, 0.9, 0.1)
	slot := NewModelSlot(capability, 512)

	require.NoError(t, slot.Close())
	assert.True(t, capability.closed.Load())
	assert.NoError(t, slot.Close(), "closing an empty slot is a no-op")
}
