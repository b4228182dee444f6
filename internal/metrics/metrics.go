package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RequestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
	SessionOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dash_session_operations_total",
			Help: "Session operations by outcome.",
		},
		[]string{"op", "result"},
	)
	GuardDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "dash_guard_decisions_total",
			Help: "Route guard decisions by guard and resulting state.",
		},
		[]string{"guard", "state"},
	)
	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "dash_active_sessions",
			Help: "Browser sessions currently held in memory.",
		},
	)
)

// NewRegistry returns a registry with the gateway and runtime collectors registered.
func NewRegistry() *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		RequestCount,
		RequestDuration,
		SessionOperations,
		GuardDecisions,
		ActiveSessions,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return registry
}

func Handler(registry *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
