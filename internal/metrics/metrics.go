// Package metrics declares the Prometheus collectors exported by the server.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "formdoc_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// DocumentsRendered counts rendered documents by output (api|form|ws|cli).
	DocumentsRendered = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formdoc_documents_rendered_total",
			Help: "Total number of documents rendered from templates",
		},
		[]string{"source"},
	)

	// ConfigChanges counts configuration replacements by operation (import|reset).
	ConfigChanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "formdoc_config_changes_total",
			Help: "Total number of configuration imports and resets",
		},
		[]string{"operation", "result"},
	)

	// ActiveSessions tracks open websocket sessions.
	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "formdoc_active_sessions",
			Help: "Number of open live sessions",
		},
	)
)

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
