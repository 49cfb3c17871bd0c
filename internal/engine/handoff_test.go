package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandoffSignalStartsIdle(t *testing.T) {
	t.Parallel()

	hs := NewHandoffSignal()
	assert.True(t, hs.TryAcquireIdle(), "one idle token must be available initially")
	assert.False(t, hs.TryAcquireIdle(), "the idle token is single-slot")
}

func TestHandoffSignalSingleFlight(t *testing.T) {
	t.Parallel()

	hs := NewHandoffSignal()

	require.True(t, hs.TryAcquireIdle())
	hs.RaiseReady()

	// With the idle token consumed no second job can be triggered.
	assert.False(t, hs.TryAcquireIdle())

	assert.True(t, hs.AwaitReady(time.Second))
	hs.ReleaseIdle()

	assert.True(t, hs.TryAcquireIdle(), "releasing idle re-enables the next trigger")
}

func TestHandoffSignalAwaitReadyTimesOut(t *testing.T) {
	t.Parallel()

	hs := NewHandoffSignal()
	start := time.Now()
	assert.False(t, hs.AwaitReady(20*time.Millisecond))
	assert.GreaterOrEqual(t, time.Since(start), 20*time.Millisecond)
}

func TestHandoffSignalAcquireIdleBlocksUntilReleased(t *testing.T) {
	t.Parallel()

	hs := NewHandoffSignal()
	require.True(t, hs.TryAcquireIdle())

	acquired := make(chan struct{})
	go func() {
		hs.AcquireIdle()
		close(acquired)
	}()

	select {
	case <-acquired:
		t.Fatal("AcquireIdle returned while the token was held")
	case <-time.After(20 * time.Millisecond):
	}

	hs.ReleaseIdle()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("AcquireIdle did not return after the token was released")
	}
}
