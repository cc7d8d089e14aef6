// Package metrics holds the Prometheus collectors of the chat orchestrator.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	chatRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lunaris_chat_requests_total",
		Help: "Chat stream requests by requested and resolved model identity.",
	}, []string{"requested", "resolved"})

	chatFallbacksTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lunaris_chat_fallbacks_total",
		Help: "Fallback attempts to the proxy provider by the model that failed.",
	}, []string{"failed"})

	chatFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "lunaris_chat_failures_total",
		Help: "Provider call failures by model identity and error kind.",
	}, []string{"model", "kind"})

	chatStreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "lunaris_chat_stream_duration_seconds",
		Help:    "Duration of successful provider streams.",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40, 80},
	}, []string{"model"})
)

func ObserveRequest(requested, resolved string) {
	chatRequestsTotal.WithLabelValues(requested, resolved).Inc()
}

func ObserveFallback(failed string) {
	chatFallbacksTotal.WithLabelValues(failed).Inc()
}

func ObserveFailure(modelName, kind string) {
	chatFailuresTotal.WithLabelValues(modelName, kind).Inc()
}

func ObserveStream(modelName string, started time.Time) {
	chatStreamDuration.WithLabelValues(modelName).Observe(time.Since(started).Seconds())
}
