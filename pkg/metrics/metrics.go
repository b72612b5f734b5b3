package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// BaristaMetrics contains the Prometheus metrics for the app
type BaristaMetrics struct {
	requests     *prometheus.CounterVec
	results      *prometheus.CounterVec
	storeLatency *prometheus.SummaryVec
}

func (m *BaristaMetrics) Init() {
	m.requests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "barista_requests_total",
		Help: "The total number of requests per operation",
	}, []string{"operation"})

	m.results = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "barista_results_total",
		Help: "The total number of results per operation per status",
	}, []string{"operation", "status"})

	m.storeLatency = promauto.NewSummaryVec(prometheus.SummaryOpts{
		Name: "barista_store_latency_ms",
		Help: "The latency of operations on the drinks store",
	}, []string{"operation"})
}

func (m BaristaMetrics) RecordRequest(operation string) {
	m.requests.
		WithLabelValues(operation).
		Inc()
}

func (m BaristaMetrics) RecordResult(operation string, status int) {
	m.results.
		WithLabelValues(operation, http.StatusText(status)).
		Inc()
}

func (m BaristaMetrics) RecordStoreLatency(operation string, latency time.Duration) {
	m.storeLatency.
		WithLabelValues(operation).
		Observe(float64(latency.Microseconds()) / 1000)
}

// HTTPHandler returns the handler exposing the metrics
func (m BaristaMetrics) HTTPHandler() http.Handler {
	return promhttp.Handler()
}
