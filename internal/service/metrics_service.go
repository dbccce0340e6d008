package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation and provides lightweight snapshots for API consumption.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	remoteDuration  *prometheus.HistogramVec
	storeOperations *prometheus.CounterVec
	activeSessions  prometheus.Gauge

	requestCount        uint64
	remoteCallCount     uint64
	remoteFailureCount  uint64
	storeOperationCount uint64
	sessionCount        int64
}

// MetricsSnapshot is a JSON summary of the collected metrics.
type MetricsSnapshot struct {
	RequestsTotal       uint64    `json:"requestsTotal"`
	RemoteCallsTotal    uint64    `json:"remoteCallsTotal"`
	RemoteFailuresTotal uint64    `json:"remoteFailuresTotal"`
	StoreOperations     uint64    `json:"storeOperations"`
	ActiveSessions      int64     `json:"activeSessions"`
	Goroutines          int       `json:"goroutines"`
	GeneratedAt         time.Time `json:"generatedAt"`
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

	remoteDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "data_service_call_duration_seconds",
		Help:    "Duration of calls to the remote data service",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "outcome"})

	storeOperations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "store_operations_total",
		Help: "Completed appointment store operations",
	}, []string{"operation", "outcome"})

	activeSessions := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "active_sessions",
		Help: "Browser sessions currently held in memory",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, remoteDuration, storeOperations, activeSessions, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		remoteDuration:  remoteDuration,
		storeOperations: storeOperations,
		activeSessions:  activeSessions,
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
	atomic.AddUint64(&m.requestCount, 1)
}

// ObserveRemoteCall records a call to the data service.
func (m *MetricsService) ObserveRemoteCall(operation, outcome string, duration time.Duration) {
	if m == nil {
		return
	}
	m.remoteDuration.WithLabelValues(operation, outcome).Observe(duration.Seconds())
	atomic.AddUint64(&m.remoteCallCount, 1)
	if outcome != "success" {
		atomic.AddUint64(&m.remoteFailureCount, 1)
	}
}

// ObserveStoreOperation counts a completed store operation.
func (m *MetricsService) ObserveStoreOperation(operation, outcome string, _ time.Duration) {
	if m == nil {
		return
	}
	m.storeOperations.WithLabelValues(operation, outcome).Inc()
	atomic.AddUint64(&m.storeOperationCount, 1)
}

// SetActiveSessions updates the session gauge.
func (m *MetricsService) SetActiveSessions(count int) {
	if m == nil {
		return
	}
	m.activeSessions.Set(float64(count))
	atomic.StoreInt64(&m.sessionCount, int64(count))
}

// Snapshot returns aggregated metrics.
func (m *MetricsService) Snapshot() MetricsSnapshot {
	if m == nil {
		return MetricsSnapshot{}
	}
	return MetricsSnapshot{
		RequestsTotal:       atomic.LoadUint64(&m.requestCount),
		RemoteCallsTotal:    atomic.LoadUint64(&m.remoteCallCount),
		RemoteFailuresTotal: atomic.LoadUint64(&m.remoteFailureCount),
		StoreOperations:     atomic.LoadUint64(&m.storeOperationCount),
		ActiveSessions:      atomic.LoadInt64(&m.sessionCount),
		Goroutines:          runtime.NumGoroutine(),
		GeneratedAt:         time.Now().UTC(),
	}
}
