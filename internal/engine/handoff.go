// handoff.go: audio-thread to worker-thread signaling, enforcing at most one
// in-flight inference job.
package engine

import (
	"time"
)

// readyTimeout bounds how long the worker blocks waiting for a job so it can
// observe the stop flag during shutdown.
const readyTimeout = 100 * time.Millisecond

// HandoffSignal pairs two single-slot token channels: "idle" starts holding
// one token, "ready" starts empty. A job can only be triggered by moving the
// idle token to ready, and only the worker moves it back, so no more than one
// job is ever outstanding. Channel operations never allocate, keeping the
// producer side real-time safe.
type HandoffSignal struct {
	ready chan struct{}
	idle  chan struct{}
}

// NewHandoffSignal creates a signal pair with the worker marked idle.
func NewHandoffSignal() *HandoffSignal {
	hs := &HandoffSignal{
		ready: make(chan struct{}, 1),
		idle:  make(chan struct{}, 1),
	}
	hs.idle <- struct{}{}
	return hs
}

// TryAcquireIdle consumes the idle token without blocking. It returns false
// if the worker is busy or another trigger is already pending.
func (hs *HandoffSignal) TryAcquireIdle() bool {
	select {
	case <-hs.idle:
		return true
	default:
		return false
	}
}

// AcquireIdle blocks until the idle token is available. Used by the control
// plane to quiesce the worker: while the caller holds the token no new job
// can start.
func (hs *HandoffSignal) AcquireIdle() {
	<-hs.idle
}

// ReleaseIdle returns the idle token, re-enabling the next trigger.
func (hs *HandoffSignal) ReleaseIdle() {
	select {
	case hs.idle <- struct{}{}:
	default:
	}
}

// RaiseReady signals that a chunk is ready for the worker. The caller must
// hold the idle token.
func (hs *HandoffSignal) RaiseReady() {
	select {
	case hs.ready <- struct{}{}:
	default:
	}
}

// AwaitReady blocks until a ready signal arrives or the timeout elapses,
// returning true only when a signal was consumed.
func (hs *HandoffSignal) AwaitReady(timeout time.Duration) bool {
	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-hs.ready:
		return true
	case <-timer.C:
		return false
	}
}
