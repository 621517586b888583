// Package metrics exposes Prometheus collectors for the audit service.
package metrics

import (
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	auditPagesTotal           *prometheus.CounterVec
	auditFetchDurationSeconds *prometheus.HistogramVec
	auditCacheHitsTotal       prometheus.Counter
	auditRecordsTotal         prometheus.Counter
	auditActiveWorkers        prometheus.Gauge

	once sync.Once
)

// Init initializes the Prometheus collectors. It is safe to call multiple
// times.
func Init() {
	once.Do(func() {
		auditPagesTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "audit_pages_total",
				Help: "Total number of landing pages processed, labeled by site and status.",
			},
			[]string{"site", "status"},
		)

		auditFetchDurationSeconds = promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "audit_fetch_duration_seconds",
				Help:    "Histogram of per-page pipeline latencies, labeled by status.",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
			},
			[]string{"status"},
		)

		auditCacheHitsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "audit_cache_hits_total",
				Help: "Total page fetches served from the TTL cache.",
			},
		)

		auditRecordsTotal = promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "audit_records_total",
				Help: "Total analysis records produced.",
			},
		)

		auditActiveWorkers = promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "audit_active_workers",
				Help: "Number of fetch workers currently processing a page.",
			},
		)
	})
}

// SanitizeSite extracts a lowercase hostname from a URL for use as a label.
// It returns "unknown" if the URL is invalid.
func SanitizeSite(rawURL string) string {
	if !strings.HasPrefix(rawURL, "http") {
		rawURL = "http://" + rawURL
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return "unknown"
	}
	return strings.ToLower(u.Hostname())
}

// Handler returns an http.Handler for exposing Prometheus metrics.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObservePage records the completion of one landing page pipeline.
func ObservePage(site string, status string, duration time.Duration) {
	if auditPagesTotal == nil {
		return
	}
	auditPagesTotal.WithLabelValues(SanitizeSite(site), status).Inc()
	auditFetchDurationSeconds.WithLabelValues(status).Observe(duration.Seconds())
}

// ObserveCacheHit increments the cache hit counter.
func ObserveCacheHit() {
	if auditCacheHitsTotal == nil {
		return
	}
	auditCacheHitsTotal.Inc()
}

// ObserveRecords adds to the produced-record counter.
func ObserveRecords(n int) {
	if auditRecordsTotal == nil || n <= 0 {
		return
	}
	auditRecordsTotal.Add(float64(n))
}

// IncActiveWorkers increments the active workers gauge.
func IncActiveWorkers() {
	if auditActiveWorkers == nil {
		return
	}
	auditActiveWorkers.Inc()
}

// DecActiveWorkers decrements the active workers gauge.
func DecActiveWorkers() {
	if auditActiveWorkers == nil {
		return
	}
	auditActiveWorkers.Dec()
}
