package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Metrics holds all Prometheus metrics for the API. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	// HTTP request metrics
	httpRequestsTotal    *prometheus.CounterVec
	httpRequestDuration  *prometheus.HistogramVec
	httpRequestsInFlight *prometheus.GaugeVec

	// Codec metrics
	codecOperationsTotal *prometheus.CounterVec
	codecBytesTotal      *prometheus.CounterVec

	// Archive metrics
	archiveOperationsTotal   *prometheus.CounterVec
	archiveOperationDuration *prometheus.HistogramVec
	archiveRecords           prometheus.Gauge

	// API key authentication metrics
	authRequestsTotal *prometheus.CounterVec

	// Health check metrics
	healthChecksTotal *prometheus.CounterVec
}

// NewMetrics creates all metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer to expose them on the default /metrics
// handler, or a fresh registry in tests.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	m := &Metrics{
		httpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sdbuf_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		httpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sdbuf_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		httpRequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "sdbuf_http_requests_in_flight",
				Help: "Number of HTTP requests currently being processed",
			},
			[]string{"method", "endpoint"},
		),

		codecOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sdbuf_codec_operations_total",
				Help: "Total number of encode and decode operations",
			},
			[]string{"operation", "status"},
		),

		codecBytesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sdbuf_codec_bytes_total",
				Help: "Total size of buffers encoded or decoded in bytes",
			},
			[]string{"operation"},
		),

		archiveOperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sdbuf_archive_operations_total",
				Help: "Total number of record archive operations",
			},
			[]string{"operation", "status"},
		),

		archiveOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "sdbuf_archive_operation_duration_seconds",
				Help:    "Record archive operation duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),

		archiveRecords: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "sdbuf_archive_records",
				Help: "Number of records in the archive",
			},
		),

		authRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sdbuf_auth_requests_total",
				Help: "Total number of authentication requests",
			},
			[]string{"status"},
		),

		healthChecksTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "sdbuf_health_checks_total",
				Help: "Total number of health checks",
			},
			[]string{"status"},
		),
	}

	return m
}

func statusLabel(success bool) string {
	if success {
		return statusSuccess
	}
	return statusError
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordCodecOperation records an encode or decode and the buffer size it
// produced or consumed.
func (m *Metrics) RecordCodecOperation(operation string, success bool, size int) {
	if m == nil {
		return
	}
	m.codecOperationsTotal.WithLabelValues(operation, statusLabel(success)).Inc()
	if success && size > 0 {
		m.codecBytesTotal.WithLabelValues(operation).Add(float64(size))
	}
}

// RecordArchiveOperation records an archive operation
func (m *Metrics) RecordArchiveOperation(operation string, success bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.archiveOperationsTotal.WithLabelValues(operation, statusLabel(success)).Inc()
	m.archiveOperationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// UpdateArchiveStats sets the archive record gauge
func (m *Metrics) UpdateArchiveStats(records int) {
	if m == nil {
		return
	}
	m.archiveRecords.Set(float64(records))
}

// RecordAuthRequest records an authentication request
func (m *Metrics) RecordAuthRequest(success bool) {
	if m == nil {
		return
	}
	m.authRequestsTotal.WithLabelValues(statusLabel(success)).Inc()
}

// RecordHealthCheck records a health check
func (m *Metrics) RecordHealthCheck(success bool) {
	if m == nil {
		return
	}
	m.healthChecksTotal.WithLabelValues(statusLabel(success)).Inc()
}

// InstrumentHandler instruments an HTTP handler with metrics
func (m *Metrics) InstrumentHandler(method, endpoint string, handler http.HandlerFunc) http.HandlerFunc {
	if m == nil {
		return handler
	}
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		gauge := m.httpRequestsInFlight.WithLabelValues(method, endpoint)
		gauge.Inc()
		defer gauge.Dec()

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		handler(rw, r)

		m.RecordHTTPRequest(method, endpoint, rw.statusCode, time.Since(start))
	}
}

// InstrumentAuthMiddleware instruments the authentication middleware
func (m *Metrics) InstrumentAuthMiddleware(next func(http.Handler) http.Handler) func(http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return func(h http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hasAPIKey := r.Header.Get(apiKeyHeader) != ""

			rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next(h).ServeHTTP(rw, r)

			if hasAPIKey {
				m.RecordAuthRequest(rw.statusCode != http.StatusUnauthorized)
			}
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
