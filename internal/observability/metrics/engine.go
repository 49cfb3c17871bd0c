// Package metrics provides Prometheus metric collectors for the application subsystems.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics contains Prometheus metrics for the streaming engine.
// All recorder methods are safe to call on a nil receiver so the engine can
// run without observability wired in.
type EngineMetrics struct {
	registry *prometheus.Registry

	SamplesDropped    *prometheus.CounterVec
	InferencesTotal   *prometheus.CounterVec
	InferenceErrors   *prometheus.CounterVec
	InferenceDuration *prometheus.HistogramVec
	ResultsGated      *prometheus.CounterVec
	ResultsDropped    *prometheus.CounterVec
	BufferUtilization *prometheus.GaugeVec
}

// NewEngineMetrics creates and registers engine metrics on the given registry.
func NewEngineMetrics(registry *prometheus.Registry) (*EngineMetrics, error) {
	m := &EngineMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register engine metrics: %w", err)
	}
	return m, nil
}

// initMetrics initializes all metrics for EngineMetrics.
func (m *EngineMetrics) initMetrics() {
	m.SamplesDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchnet_samples_dropped_total",
			Help: "Samples overwritten in the analysis ring buffer before being read.",
		},
		[]string{"source"},
	)
	m.InferencesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchnet_inferences_total",
			Help: "Completed inference jobs.",
		},
		[]string{"source"},
	)
	m.InferenceErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchnet_inference_errors_total",
			Help: "Inference jobs that failed in the backend.",
		},
		[]string{"source"},
	)
	m.InferenceDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pitchnet_inference_duration_seconds",
			Help:    "Time taken for one model invocation.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 10), // 1ms to ~1s
		},
		[]string{"source"},
	)
	m.ResultsGated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchnet_results_gated_total",
			Help: "Predictions whose pitch was replaced by the gating sentinel.",
		},
		[]string{"source"},
	)
	m.ResultsDropped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pitchnet_results_dropped_total",
			Help: "Predictions discarded because the results queue was full.",
		},
		[]string{"source"},
	)
	m.BufferUtilization = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pitchnet_buffer_utilization_ratio",
			Help: "Fill ratio of the analysis ring buffer at the start of the last job.",
		},
		[]string{"source"},
	)
}

// AddSamplesDropped records samples lost to the overwrite-oldest policy.
func (m *EngineMetrics) AddSamplesDropped(source string, n float64) {
	if m == nil {
		return
	}
	m.SamplesDropped.WithLabelValues(source).Add(n)
}

// RecordInference records one inference job and its outcome.
func (m *EngineMetrics) RecordInference(source string, durationSeconds float64, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.InferenceErrors.WithLabelValues(source).Inc()
		return
	}
	m.InferencesTotal.WithLabelValues(source).Inc()
	m.InferenceDuration.WithLabelValues(source).Observe(durationSeconds)
}

// IncResultsGated records a prediction replaced by the gating sentinel.
func (m *EngineMetrics) IncResultsGated(source string) {
	if m == nil {
		return
	}
	m.ResultsGated.WithLabelValues(source).Inc()
}

// IncResultsDropped records a prediction discarded on a full results queue.
func (m *EngineMetrics) IncResultsDropped(source string) {
	if m == nil {
		return
	}
	m.ResultsDropped.WithLabelValues(source).Inc()
}

// SetBufferUtilization records the ring buffer fill ratio.
func (m *EngineMetrics) SetBufferUtilization(source string, ratio float64) {
	if m == nil {
		return
	}
	m.BufferUtilization.WithLabelValues(source).Set(ratio)
}

// Describe implements the prometheus.Collector interface.
func (m *EngineMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.SamplesDropped.Describe(ch)
	m.InferencesTotal.Describe(ch)
	m.InferenceErrors.Describe(ch)
	m.InferenceDuration.Describe(ch)
	m.ResultsGated.Describe(ch)
	m.ResultsDropped.Describe(ch)
	m.BufferUtilization.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *EngineMetrics) Collect(ch chan<- prometheus.Metric) {
	m.SamplesDropped.Collect(ch)
	m.InferencesTotal.Collect(ch)
	m.InferenceErrors.Collect(ch)
	m.InferenceDuration.Collect(ch)
	m.ResultsGated.Collect(ch)
	m.ResultsDropped.Collect(ch)
	m.BufferUtilization.Collect(ch)
}
