// Package metrics registers Prometheus collectors for index operations.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	QueriesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoindex_queries_total",
		Help: "Total number of index queries by operation",
	}, []string{"op"})
	QueryDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "geoindex_query_duration_ms",
		Help:    "Index query duration in milliseconds",
		Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 50, 100, 500},
	}, []string{"op"})
	MutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "geoindex_mutations_total",
		Help: "Total number of index mutations by operation and result",
	}, []string{"op", "result"})
	IndexedFeatures = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "geoindex_indexed_features",
		Help: "Number of features currently held by the index",
	})
)

func init() {
	prometheus.MustRegister(QueriesTotal)
	prometheus.MustRegister(QueryDurationMs)
	prometheus.MustRegister(MutationsTotal)
	prometheus.MustRegister(IndexedFeatures)
}

// ObserveQuery counts a query and records its duration since start.
func ObserveQuery(op string, start time.Time) {
	QueriesTotal.WithLabelValues(op).Inc()
	QueryDurationMs.WithLabelValues(op).Observe(float64(time.Since(start).Microseconds()) / 1000)
}

// ObserveMutation counts a mutation with its outcome.
func ObserveMutation(op string, ok bool) {
	result := "ok"
	if !ok {
		result = "miss"
	}
	MutationsTotal.WithLabelValues(op, result).Inc()
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler { return promhttp.Handler() }
