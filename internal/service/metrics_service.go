package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Intake outcome labels.
const (
	IntakeOutcomeAccepted   = "accepted"
	IntakeOutcomeEmptyWords = "empty_word_count"
	IntakeOutcomePastDate   = "past_date"
	IntakeOutcomeConflict   = "dates_unavailable"
	IntakeOutcomeError      = "error"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	intakeTotal     *prometheus.CounterVec
	snapshotBuilds  prometheus.Counter
	snapshotRanges  prometheus.Gauge
	exportDuration  prometheus.Observer
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	intakeTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "booking_intake_total",
		Help: "Public booking submissions by outcome",
	}, []string{"outcome"})

	snapshotBuilds := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "availability_snapshot_builds_total",
		Help: "Number of availability snapshot rebuilds",
	})

	snapshotRanges := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "availability_snapshot_ranges",
		Help: "Booked ranges in the most recent availability snapshot",
	})

	exportDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "ledger_export_duration_seconds",
		Help:    "Duration of invoice ledger export jobs",
		Buckets: prometheus.DefBuckets,
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheHits, cacheMisses,
		intakeTotal, snapshotBuilds, snapshotRanges, exportDuration, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheLatency:    cacheLatency,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		intakeTotal:     intakeTotal,
		snapshotBuilds:  snapshotBuilds,
		snapshotRanges:  snapshotRanges,
		exportDuration:  exportDuration,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, code).Inc()
}

// RecordCacheOperation tracks cache lookups.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// RecordIntake counts a public booking submission by its outcome.
func (m *MetricsService) RecordIntake(outcome string) {
	if m == nil {
		return
	}
	m.intakeTotal.WithLabelValues(outcome).Inc()
}

// RecordSnapshotBuild tracks availability snapshot rebuilds.
func (m *MetricsService) RecordSnapshotBuild(rangeCount int) {
	if m == nil {
		return
	}
	m.snapshotBuilds.Inc()
	m.snapshotRanges.Set(float64(rangeCount))
}

// ObserveLedgerExport records the duration of a ledger export job.
func (m *MetricsService) ObserveLedgerExport(duration time.Duration) {
	if m == nil {
		return
	}
	m.exportDuration.Observe(duration.Seconds())
}
