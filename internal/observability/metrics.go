// Package observability provides Prometheus metrics for monitoring the
// pitch estimation pipeline.
package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/tphakala/pitchnet-go/internal/observability/metrics"
)

// Metrics holds all the metric collectors for the application.
type Metrics struct {
	registry *prometheus.Registry
	Engine   *metrics.EngineMetrics
	MyAudio  *metrics.MyAudioMetrics
}

// NewMetrics creates a new instance of Metrics, initializing all metric
// collectors. It returns an error if any collector fails to register.
func NewMetrics() (*Metrics, error) {
	registry := prometheus.NewRegistry()

	engineMetrics, err := metrics.NewEngineMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine metrics: %w", err)
	}

	myAudioMetrics, err := metrics.NewMyAudioMetrics(registry)
	if err != nil {
		return nil, fmt.Errorf("failed to create myaudio metrics: %w", err)
	}

	return &Metrics{
		registry: registry,
		Engine:   engineMetrics,
		MyAudio:  myAudioMetrics,
	}, nil
}

// RegisterHandlers registers the metrics endpoint with the provided mux.
func (m *Metrics) RegisterHandlers(mux *http.ServeMux) {
	mux.Handle("/metrics", promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
