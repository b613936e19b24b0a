package service

import (
	"net/http"
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	conflictScans   prometheus.Counter
	conflictsFound  prometheus.Counter
	bulkShifts      *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	exportJobs      *prometheus.CounterVec
}

// NewMetricsService registers the collectors.
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

	conflictScans := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shift_conflict_scans_total",
		Help: "Total shift conflict scans performed",
	})

	conflictsFound := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shift_conflicts_found_total",
		Help: "Total conflicting shifts reported",
	})

	bulkShifts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bulk_shifts_total",
		Help: "Bulk shift candidates by outcome",
	}, []string{"outcome"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	exportJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "export_jobs_total",
		Help: "Schedule export jobs by final status",
	}, []string{"status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, conflictScans, conflictsFound, bulkShifts, cacheHits, cacheMisses, exportJobs, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		conflictScans:   conflictScans,
		conflictsFound:  conflictsFound,
		bulkShifts:      bulkShifts,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		exportJobs:      exportJobs,
	}
}

// Handler exposes the Prometheus scrape endpoint.
func (s *MetricsService) Handler() http.Handler {
	return s.handler
}

// ObserveHTTPRequest records one request.
func (s *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	labels := prometheus.Labels{"method": method, "path": path, "status": strconv.Itoa(status)}
	s.requestDuration.With(labels).Observe(duration.Seconds())
	s.requestTotal.With(labels).Inc()
}

// ObserveConflictScan records one conflict scan and how many overlaps it found.
func (s *MetricsService) ObserveConflictScan(found int) {
	s.conflictScans.Inc()
	if found > 0 {
		s.conflictsFound.Add(float64(found))
	}
}

// ObserveBulkOutcome records bulk candidates per resolution outcome.
func (s *MetricsService) ObserveBulkOutcome(outcome string, count int) {
	if count > 0 {
		s.bulkShifts.With(prometheus.Labels{"outcome": outcome}).Add(float64(count))
	}
}

// ObserveCacheHit records a cache lookup result.
func (s *MetricsService) ObserveCacheHit(hit bool) {
	if hit {
		s.cacheHits.Inc()
		return
	}
	s.cacheMisses.Inc()
}

// ObserveExportJob records an export job's terminal status.
func (s *MetricsService) ObserveExportJob(status string) {
	s.exportJobs.With(prometheus.Labels{"status": status}).Inc()
}
