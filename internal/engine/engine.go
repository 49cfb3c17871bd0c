// Package engine implements the streaming buffering and thread-handoff core:
// samples pushed from the audio callback are buffered into fixed-size analysis
// windows and handed to an inference backend on a dedicated worker goroutine,
// without ever blocking the audio thread.
package engine

import (
	"math"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tphakala/pitchnet-go/internal/errors"
	"github.com/tphakala/pitchnet-go/internal/observability/metrics"
)

// stateFlushInvocations is how many all-zero chunks are run through the
// backend on Reset to flush any recurrent state it holds.
const stateFlushInvocations = 8

// DefaultQueueSize is the default buffer size for the results queue.
const DefaultQueueSize = 100

// Prediction is one inference output for a completed analysis window.
type Prediction struct {
	Pitch      float64       // gated pitch estimate, GatedPitch when below threshold
	Confidence float64       // raw model confidence, not clamped
	Amplitude  float64       // raw model amplitude
	Source     string        // audio source this window came from
	StartTime  time.Time     // approximate start time of the analysis window
	Elapsed    time.Duration // backend inference latency
}

// Options configures a StreamEngine.
type Options struct {
	Source              string                 // audio source name used in results and metrics
	SampleRate          int                    // sample rate of pushed audio in Hz
	QueueSize           int                    // results queue buffer size, 0 for default
	ConfidenceThreshold float64                // initial confidence threshold
	AmplitudeThreshold  float64                // initial amplitude threshold
	Metrics             *metrics.EngineMetrics // optional, may be nil
}

// StreamEngine owns the ring buffer, handoff signal, model slot and worker
// goroutine. Push is safe to call from exactly one producer; Reconfigure,
// Reset, SetThresholds and Close belong to a single control-plane goroutine.
type StreamEngine struct {
	source     string
	sampleRate int

	rb     *RingBuffer
	signal *HandoffSignal
	slot   *ModelSlot

	chunkSize atomic.Int64

	confidenceThreshold atomic.Uint64 // float64 bits
	amplitudeThreshold  atomic.Uint64 // float64 bits

	results chan Prediction
	stop    atomic.Bool
	wg      sync.WaitGroup

	paused  atomic.Bool  // producer gate, set while the buffer is mutated
	pushing atomic.Int64 // Push calls currently in flight

	metrics         *metrics.EngineMetrics
	droppedReported uint64 // worker-local watermark of rb.Dropped()
}

// New builds the initial capability, allocates the ring buffer and starts the
// worker goroutine. On builder failure no engine is created.
func New(builder CapabilityBuilder, opts Options) (*StreamEngine, error) {
	capability, chunkSize, err := builder()
	if err != nil {
		return nil, errors.New(err).
			Component("engine").
			Category(errors.CategoryModelInit).
			Build()
	}
	if chunkSize <= 0 {
		_ = capability.Close()
		return nil, errors.Newf("capability reported invalid chunk size %d", chunkSize).
			Component("engine").
			Category(errors.CategoryValidation).
			Build()
	}

	queueSize := opts.QueueSize
	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}
	sampleRate := opts.SampleRate
	if sampleRate <= 0 {
		sampleRate = 48000
	}

	e := &StreamEngine{
		source:     opts.Source,
		sampleRate: sampleRate,
		rb:         NewRingBuffer(bufferCapacityFor(chunkSize)),
		signal:     NewHandoffSignal(),
		slot:       NewModelSlot(capability, chunkSize),
		results:    make(chan Prediction, queueSize),
		metrics:    opts.Metrics,
	}
	e.chunkSize.Store(int64(chunkSize))
	e.SetThresholds(opts.ConfidenceThreshold, opts.AmplitudeThreshold)

	e.wg.Add(1)
	go e.worker()

	return e, nil
}

// Push feeds a block of samples from the audio thread. It never blocks and
// never allocates: samples go into the lock-free ring buffer and, once a full
// chunk is available and the worker is idle, a job trigger is raised.
func (e *StreamEngine) Push(samples []float32) {
	e.pushing.Add(1)
	defer e.pushing.Add(-1)

	// The buffer is being resized or cleared; these samples would be
	// discarded by that operation anyway.
	if e.paused.Load() {
		return
	}

	chunkSize := e.chunkSize.Load()
	for _, s := range samples {
		e.rb.Put(s)
		if int64(e.rb.Available()) >= chunkSize && e.signal.TryAcquireIdle() {
			e.signal.RaiseReady()
		}
	}
}

// Results returns the channel delivering one prediction per completed chunk.
// The channel is closed by Close.
func (e *StreamEngine) Results() <-chan Prediction {
	return e.results
}

// SetThresholds stores new gating thresholds. Confidence is clamped to [0,1],
// amplitude to [0,inf); a value of zero disables that check. The worker picks
// the new values up on its next job.
func (e *StreamEngine) SetThresholds(confidence, amplitude float64) {
	confidence = min(max(confidence, 0), 1)
	amplitude = max(amplitude, 0)
	e.confidenceThreshold.Store(math.Float64bits(confidence))
	e.amplitudeThreshold.Store(math.Float64bits(amplitude))
}

// Thresholds returns the current confidence and amplitude thresholds.
func (e *StreamEngine) Thresholds() (confidence, amplitude float64) {
	return math.Float64frombits(e.confidenceThreshold.Load()),
		math.Float64frombits(e.amplitudeThreshold.Load())
}

// ChunkSize returns the current analysis window length in samples.
func (e *StreamEngine) ChunkSize() int {
	return int(e.chunkSize.Load())
}

// Available returns the number of buffered unread samples.
func (e *StreamEngine) Available() int {
	return e.rb.Available()
}

// DroppedSamples returns the total number of samples lost to the
// overwrite-oldest policy.
func (e *StreamEngine) DroppedSamples() uint64 {
	return e.rb.Dropped()
}

// Reconfigure builds a replacement capability and swaps it in together with
// its chunk size. On builder failure the previous capability keeps serving
// and the buffer is left untouched. On success any partially-buffered data is
// discarded to avoid stale-size mismatches.
func (e *StreamEngine) Reconfigure(builder CapabilityBuilder) error {
	capability, chunkSize, err := builder()
	if err != nil {
		return errors.New(err).
			Component("engine").
			Category(errors.CategoryModelInit).
			Build()
	}
	if chunkSize <= 0 {
		_ = capability.Close()
		return errors.Newf("capability reported invalid chunk size %d", chunkSize).
			Component("engine").
			Category(errors.CategoryValidation).
			Build()
	}

	// Holding the idle token quiesces the worker: no job can start while the
	// buffer is being resized. The producer gate keeps Push off the buffer
	// for the same window.
	e.signal.AcquireIdle()
	e.pauseProducer()
	old := e.slot.Swap(capability, chunkSize)
	e.chunkSize.Store(int64(chunkSize))
	e.rb.Resize(bufferCapacityFor(chunkSize))
	e.resumeProducer()
	e.signal.ReleaseIdle()

	if old != nil {
		if cerr := old.Close(); cerr != nil {
			GetLogger().Warn("failed to release previous capability", "error", cerr)
		}
	}

	GetLogger().Info("engine reconfigured",
		"source", e.source,
		"chunk_size", chunkSize,
		"buffer_capacity", e.rb.Capacity())
	return nil
}

// Reset discards all buffered samples and runs the backend on an all-zero
// chunk a fixed number of times to flush any recurrent state it holds,
// discarding those outputs. Every flush invocation runs even when one of
// them fails; the first failure is returned.
func (e *StreamEngine) Reset() error {
	e.signal.AcquireIdle()
	defer e.signal.ReleaseIdle()

	e.pauseProducer()
	e.rb.Clear()
	e.resumeProducer()

	zero := make([]float32, e.chunkSize.Load())
	var flushErr error
	for range stateFlushInvocations {
		if _, _, _, err := e.slot.Invoke(zero); err != nil {
			GetLogger().Error("state flush invocation failed",
				"source", e.source,
				"error", err)
			if flushErr == nil {
				flushErr = errors.New(err).
					Component("engine").
					Category(errors.CategoryInference).
					Context("operation", "state-flush").
					Build()
			}
		}
	}
	return flushErr
}

// Close stops the worker, waits for it to exit, releases the capability and
// closes the results channel. The engine must not be used afterwards.
func (e *StreamEngine) Close() error {
	if e.stop.Swap(true) {
		return nil
	}
	// Force-raise once so a worker blocked in AwaitReady exits promptly.
	e.signal.RaiseReady()
	e.wg.Wait()
	err := e.slot.Close()
	close(e.results)
	return err
}

// worker is the inference loop: wait for a trigger, drain one chunk, invoke
// the model, gate and emit. Nothing here is fatal, every failure skips the
// current cycle and the loop continues.
func (e *StreamEngine) worker() {
	defer e.wg.Done()

	var chunk []float32
	for {
		if !e.signal.AwaitReady(readyTimeout) {
			if e.stop.Load() {
				return
			}
			continue
		}
		if e.stop.Load() {
			return
		}

		chunkSize := int(e.chunkSize.Load())
		if cap(chunk) < chunkSize {
			chunk = make([]float32, chunkSize)
		}
		e.runJob(chunk[:chunkSize])
		e.signal.ReleaseIdle()
	}
}

// runJob executes one inference cycle over a single chunk.
func (e *StreamEngine) runJob(chunk []float32) {
	e.syncDroppedMetric()
	e.metrics.SetBufferUtilization(e.source,
		float64(e.rb.Available())/float64(e.rb.Capacity()))

	// Insufficient samples can happen legitimately when the chunk size
	// changed between trigger and job, skip silently.
	if !e.rb.Get(chunk) {
		return
	}

	windowStart := time.Now().Add(-time.Duration(len(chunk)) * time.Second / time.Duration(e.sampleRate))
	start := time.Now()
	pitch, confidence, amplitude, err := e.slot.Invoke(chunk)
	elapsed := time.Since(start)
	e.metrics.RecordInference(e.source, elapsed.Seconds(), err)
	if err != nil {
		GetLogger().Error("backend invocation failed",
			"source", e.source,
			"chunk_size", len(chunk),
			"error", err)
		return
	}

	confidenceThreshold, amplitudeThreshold := e.Thresholds()
	gatedPitch := Gate(pitch, confidence, amplitude, confidenceThreshold, amplitudeThreshold)
	if gatedPitch == GatedPitch && pitch != GatedPitch {
		e.metrics.IncResultsGated(e.source)
	}

	prediction := Prediction{
		Pitch:      gatedPitch,
		Confidence: confidence,
		Amplitude:  amplitude,
		Source:     e.source,
		StartTime:  windowStart,
		Elapsed:    elapsed,
	}

	select {
	case e.results <- prediction:
	default:
		e.metrics.IncResultsDropped(e.source)
	}
}

// pauseProducer stops Push from touching the ring buffer and waits for any
// in-flight Push call to drain, so Resize and Clear see no concurrent
// producer. Must be paired with resumeProducer.
func (e *StreamEngine) pauseProducer() {
	e.paused.Store(true)
	for e.pushing.Load() != 0 {
		runtime.Gosched()
	}
}

func (e *StreamEngine) resumeProducer() {
	e.paused.Store(false)
}

// syncDroppedMetric forwards newly dropped samples to the metrics counter.
// Runs on the worker so the producer path stays free of metric updates.
func (e *StreamEngine) syncDroppedMetric() {
	dropped := e.rb.Dropped()
	if delta := dropped - e.droppedReported; delta > 0 {
		e.metrics.AddSamplesDropped(e.source, float64(delta))
		e.droppedReported = dropped
	}
}
