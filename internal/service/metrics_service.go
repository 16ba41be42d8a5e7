package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the
// scheduling engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	scheduleRuns    prometheus.Counter
	runDuration     prometheus.Histogram
	sectionsTotal   *prometheus.CounterVec
	enrollTotal     *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
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

	scheduleRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_runs_total",
		Help: "Total schedule generation runs",
	})

	runDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "schedule_run_duration_seconds",
		Help:    "Duration of schedule generation runs",
		Buckets: prometheus.DefBuckets,
	})

	sectionsTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "schedule_sections_total",
		Help: "Sections processed by the scheduler, by outcome",
	}, []string{"outcome"})

	enrollTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "enrollment_requests_total",
		Help: "Enrollment attempts, by outcome",
	}, []string{"outcome"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, scheduleRuns, runDuration, sectionsTotal, enrollTotal, cacheHits, cacheMisses, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		scheduleRuns:    scheduleRuns,
		runDuration:     runDuration,
		sectionsTotal:   sectionsTotal,
		enrollTotal:     enrollTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
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
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// ObserveScheduleRun records the outcome counts of one scheduling run.
func (m *MetricsService) ObserveScheduleRun(scheduled, failed int, duration time.Duration) {
	if m == nil {
		return
	}
	m.scheduleRuns.Inc()
	m.runDuration.Observe(duration.Seconds())
	m.sectionsTotal.WithLabelValues("scheduled").Add(float64(scheduled))
	m.sectionsTotal.WithLabelValues("failed").Add(float64(failed))
}

// RecordEnrollment counts an enrollment attempt by outcome label.
func (m *MetricsService) RecordEnrollment(outcome string) {
	if m == nil {
		return
	}
	m.enrollTotal.WithLabelValues(outcome).Inc()
}

// RecordCacheOperation counts a schedule cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}
