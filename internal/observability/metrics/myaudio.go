package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// MyAudioMetrics contains Prometheus metrics for the audio capture path.
// Recorder methods are safe to call on a nil receiver.
type MyAudioMetrics struct {
	registry *prometheus.Registry

	AudioLevel        *prometheus.GaugeVec
	AudioClipping     *prometheus.CounterVec
	CaptureOverruns   *prometheus.CounterVec
	DeviceRestarts    *prometheus.CounterVec
	ClipExportsTotal  *prometheus.CounterVec
	ClipExportsFailed *prometheus.CounterVec
}

// NewMyAudioMetrics creates and registers audio metrics on the given registry.
func NewMyAudioMetrics(registry *prometheus.Registry) (*MyAudioMetrics, error) {
	m := &MyAudioMetrics{registry: registry}
	m.initMetrics()
	if err := registry.Register(m); err != nil {
		return nil, fmt.Errorf("failed to register myaudio metrics: %w", err)
	}
	return m, nil
}

func (m *MyAudioMetrics) initMetrics() {
	m.AudioLevel = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "myaudio_level_percent",
			Help: "Current audio input level as a percentage of full scale.",
		},
		[]string{"source"},
	)
	m.AudioClipping = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "myaudio_clipping_total",
			Help: "Audio blocks in which clipping was detected.",
		},
		[]string{"source"},
	)
	m.CaptureOverruns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "myaudio_capture_overruns_total",
			Help: "Device callback writes discarded because the capture buffer was full.",
		},
		[]string{"source"},
	)
	m.DeviceRestarts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "myaudio_device_restarts_total",
			Help: "Unexpected capture device restarts.",
		},
		[]string{"source"},
	)
	m.ClipExportsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "myaudio_clip_exports_total",
			Help: "Audio clips exported to disk.",
		},
		[]string{"source"},
	)
	m.ClipExportsFailed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "myaudio_clip_exports_failed_total",
			Help: "Audio clip exports that failed.",
		},
		[]string{"source"},
	)
}

// SetAudioLevel records the current input level for a source.
func (m *MyAudioMetrics) SetAudioLevel(source string, levelPercent float64) {
	if m == nil {
		return
	}
	m.AudioLevel.WithLabelValues(source).Set(levelPercent)
}

// IncAudioClipping records a clipped audio block.
func (m *MyAudioMetrics) IncAudioClipping(source string) {
	if m == nil {
		return
	}
	m.AudioClipping.WithLabelValues(source).Inc()
}

// IncCaptureOverrun records a discarded device callback write.
func (m *MyAudioMetrics) IncCaptureOverrun(source string) {
	if m == nil {
		return
	}
	m.CaptureOverruns.WithLabelValues(source).Inc()
}

// IncDeviceRestart records an unexpected device restart.
func (m *MyAudioMetrics) IncDeviceRestart(source string) {
	if m == nil {
		return
	}
	m.DeviceRestarts.WithLabelValues(source).Inc()
}

// RecordClipExport records a clip export and its outcome.
func (m *MyAudioMetrics) RecordClipExport(source string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.ClipExportsFailed.WithLabelValues(source).Inc()
		return
	}
	m.ClipExportsTotal.WithLabelValues(source).Inc()
}

// Describe implements the prometheus.Collector interface.
func (m *MyAudioMetrics) Describe(ch chan<- *prometheus.Desc) {
	m.AudioLevel.Describe(ch)
	m.AudioClipping.Describe(ch)
	m.CaptureOverruns.Describe(ch)
	m.DeviceRestarts.Describe(ch)
	m.ClipExportsTotal.Describe(ch)
	m.ClipExportsFailed.Describe(ch)
}

// Collect implements the prometheus.Collector interface.
func (m *MyAudioMetrics) Collect(ch chan<- prometheus.Metric) {
	m.AudioLevel.Collect(ch)
	m.AudioClipping.Collect(ch)
	m.CaptureOverruns.Collect(ch)
	m.DeviceRestarts.Collect(ch)
	m.ClipExportsTotal.Collect(ch)
	m.ClipExportsFailed.Collect(ch)
}
