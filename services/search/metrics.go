package search

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

const outcomeSuccess = "success"

// Metrics holds Prometheus metrics for outgoing search requests.
//
// Metrics:
//   - localsearch_client_requests_total{outcome} - requests by outcome ("success", "http_status", "network", "decode")
//   - localsearch_client_request_duration_seconds - request latency including body decoding
//   - localsearch_client_results - number of results per successful request
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration prometheus.Histogram
	ResultsReturned prometheus.Histogram
}

// NewMetrics registers the metrics with the default registry once per process.
func NewMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			RequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "localsearch_client_requests_total",
					Help: "Total number of search requests sent to the backend",
				},
				[]string{"outcome"},
			),
			RequestDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "localsearch_client_request_duration_seconds",
					Help:    "Duration of search requests in seconds",
					Buckets: prometheus.DefBuckets,
				},
			),
			ResultsReturned: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "localsearch_client_results",
					Help:    "Number of results returned per successful search",
					Buckets: []float64{0, 1, 5, 10, 20, 50, 100},
				},
			),
		}
	})

	return globalMetrics
}
