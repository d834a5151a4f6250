package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the planner API.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	classesCreated  prometheus.Counter
	suggestions     prometheus.Counter
	reportJobs      *prometheus.CounterVec
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

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "agenda_cache_hits_total",
		Help: "Total agenda cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "agenda_cache_misses_total",
		Help: "Total agenda cache misses",
	})

	classesCreated := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "classes_generated_total",
		Help: "Total class sessions created by plan generation",
	})

	suggestions := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "rescheduling_suggestions_total",
		Help: "Total rescheduling suggestions written by holiday recomputation",
	})

	reportJobs := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "report_jobs_total",
		Help: "Total agenda report jobs by terminal status",
	}, []string{"status"})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses,
		classesCreated, suggestions, reportJobs, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		classesCreated:  classesCreated,
		suggestions:     suggestions,
		reportJobs:      reportJobs,
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

// ObserveHTTPRequest records request timing and volume.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheLookup counts an agenda cache hit or miss.
func (m *MetricsService) RecordCacheLookup(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// RecordClassesGenerated counts classes created by plan generation.
func (m *MetricsService) RecordClassesGenerated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.classesCreated.Add(float64(n))
}

// RecordSuggestions counts suggestions written during recomputation.
func (m *MetricsService) RecordSuggestions(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.suggestions.Add(float64(n))
}

// RecordReportJob counts a report job reaching a terminal status.
func (m *MetricsService) RecordReportJob(status string) {
	if m == nil {
		return
	}
	m.reportJobs.WithLabelValues(status).Inc()
}
