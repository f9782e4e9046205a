// Package metrics exposes Prometheus collectors for source loads and the
// table cache.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds every dashboard collector plus the Go and process collectors.
var Registry = prometheus.NewRegistry()

var (
	fetchTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dco_source_fetch_total",
		Help: "Source fetch attempts by outcome (ok, error).",
	}, []string{"source", "outcome"})

	fetchDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dco_source_fetch_duration_seconds",
		Help:    "Time spent fetching and parsing a source export.",
		Buckets: prometheus.DefBuckets,
	}, []string{"source"})

	sourceRows = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "dco_source_rows",
		Help: "Rows in the most recently loaded table.",
	}, []string{"source"})

	loadWarnings = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dco_load_warnings_total",
		Help: "Non-fatal warnings raised while loading a source.",
	}, []string{"source", "kind"})

	cacheRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "dco_cache_requests_total",
		Help: "Table cache lookups by result (hit, miss).",
	}, []string{"source", "result"})
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		fetchTotal,
		fetchDuration,
		sourceRows,
		loadWarnings,
		cacheRequests,
	)
}

// ObserveFetch records one fetch attempt.
func ObserveFetch(source string, ok bool, d time.Duration) {
	outcome := "ok"
	if !ok {
		outcome = "error"
	}
	fetchTotal.WithLabelValues(source, outcome).Inc()
	fetchDuration.WithLabelValues(source).Observe(d.Seconds())
}

// SetRows records the row count of the latest table for source.
func SetRows(source string, n int) {
	sourceRows.WithLabelValues(source).Set(float64(n))
}

// AddWarning counts one load warning.
func AddWarning(source, kind string) {
	loadWarnings.WithLabelValues(source, kind).Inc()
}

// CacheLookup counts a cache hit or miss.
func CacheLookup(source string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	cacheRequests.WithLabelValues(source, result).Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}
