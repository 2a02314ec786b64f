// Package metrics provides Prometheus metrics for the restdemo services.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the restdemo services.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer
	runtimeMetrics   bool

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	httpRateLimited     *prometheus.CounterVec

	// Error Metrics
	errorRateByEndpoint *prometheus.CounterVec
	validationFailures  *prometheus.CounterVec

	// Bookstore Metrics
	booksTotal    prometheus.Gauge
	bookMutations *prometheus.CounterVec
	bookLookups   *prometheus.CounterVec

	// User Metrics
	userLookups  *prometheus.CounterVec
	usersCreated prometheus.Counter
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to keep the exposition limited to what we register.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(
		WithPrometheusRegistry(customRegistry),
		WithRuntimeMetrics(true),
	)
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "restdemo",
		subsystem:        "api",
		histogramBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		constLabels:      prometheus.Labels{},
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	if m.runtimeMetrics {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_requests_total",
			Help:        "Total number of HTTP requests by service, endpoint and method",
			ConstLabels: m.constLabels,
		},
		[]string{"service", "endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_request_duration_milliseconds",
			Help:        "HTTP request duration in milliseconds",
			Buckets:     m.histogramBuckets,
			ConstLabels: m.constLabels,
		},
		[]string{"service", "endpoint", "method", "status_code"},
	)

	m.httpRateLimited = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "http_rate_limited_total",
			Help:        "Requests rejected by the per-client rate limiter",
			ConstLabels: m.constLabels,
		},
		[]string{"service"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "errors_by_endpoint_total",
			Help:        "Error responses by service, endpoint, method and error type",
			ConstLabels: m.constLabels,
		},
		[]string{"service", "endpoint", "method", "error_type"},
	)

	m.validationFailures = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "validation_failures_total",
			Help:        "Rejected request inputs by service and location (body, query, path)",
			ConstLabels: m.constLabels,
		},
		[]string{"service", "location"},
	)

	m.booksTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "books_total",
		Help:        "Number of books currently held in the in-memory store",
		ConstLabels: m.constLabels,
	})

	m.bookMutations = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "book_mutations_total",
			Help:        "Book add/update/delete operations by outcome",
			ConstLabels: m.constLabels,
		},
		[]string{"operation", "result"},
	)

	m.bookLookups = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "book_lookups_total",
			Help:        "Single book lookups by outcome",
			ConstLabels: m.constLabels,
		},
		[]string{"result"},
	)

	m.userLookups = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace:   m.namespace,
			Subsystem:   m.subsystem,
			Name:        "user_lookups_total",
			Help:        "Single user lookups by outcome",
			ConstLabels: m.constLabels,
		},
		[]string{"result"},
	)

	m.usersCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        "users_created_total",
		Help:        "Accepted user create requests (never persisted)",
		ConstLabels: m.constLabels,
	})
}

// Outcome label values.
const (
	ResultOK       = "ok"
	ResultNotFound = "not_found"
)

// RecordHTTPRequest records an HTTP request.
func (m *Manager) RecordHTTPRequest(service, endpoint, method, statusCode string) {
	m.httpRequests.WithLabelValues(service, endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func (m *Manager) RecordHTTPRequestDuration(service, endpoint, method, statusCode string, durationMs float64) {
	m.httpRequestDuration.WithLabelValues(service, endpoint, method, statusCode).Observe(durationMs)
}

// RecordRateLimited increments the rate limited counter for a service.
func (m *Manager) RecordRateLimited(service string) {
	m.httpRateLimited.WithLabelValues(service).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func (m *Manager) RecordErrorByEndpoint(service, endpoint, method, errorType string) {
	m.errorRateByEndpoint.WithLabelValues(service, endpoint, method, errorType).Inc()
}

// RecordValidationFailure records a rejected input.
func (m *Manager) RecordValidationFailure(service, location string) {
	m.validationFailures.WithLabelValues(service, location).Inc()
}

// UpdateBooksTotal sets the current number of stored books.
func (m *Manager) UpdateBooksTotal(count int) {
	m.booksTotal.Set(float64(count))
}

// RecordBookMutation records an add/update/delete outcome.
func (m *Manager) RecordBookMutation(operation, result string) {
	m.bookMutations.WithLabelValues(operation, result).Inc()
}

// RecordBookLookup records a single book lookup outcome.
func (m *Manager) RecordBookLookup(result string) {
	m.bookLookups.WithLabelValues(result).Inc()
}

// RecordUserLookup records a single user lookup outcome.
func (m *Manager) RecordUserLookup(result string) {
	m.userLookups.WithLabelValues(result).Inc()
}

// RecordUserCreated increments the accepted user create counter.
func (m *Manager) RecordUserCreated() {
	m.usersCreated.Inc()
}

// Package-level helpers forward to the global manager.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(service, endpoint, method, statusCode string) {
	globalManager.RecordHTTPRequest(service, endpoint, method, statusCode)
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(service, endpoint, method, statusCode string, durationMs float64) {
	globalManager.RecordHTTPRequestDuration(service, endpoint, method, statusCode, durationMs)
}

// RecordRateLimited increments the rate limited counter for a service.
func RecordRateLimited(service string) {
	globalManager.RecordRateLimited(service)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(service, endpoint, method, errorType string) {
	globalManager.RecordErrorByEndpoint(service, endpoint, method, errorType)
}

// RecordValidationFailure records a rejected input.
func RecordValidationFailure(service, location string) {
	globalManager.RecordValidationFailure(service, location)
}

// UpdateBooksTotal sets the current number of stored books.
func UpdateBooksTotal(count int) {
	globalManager.UpdateBooksTotal(count)
}

// RecordBookMutation records an add/update/delete outcome.
func RecordBookMutation(operation, result string) {
	globalManager.RecordBookMutation(operation, result)
}

// RecordBookLookup records a single book lookup outcome.
func RecordBookLookup(result string) {
	globalManager.RecordBookLookup(result)
}

// RecordUserLookup records a single user lookup outcome.
func RecordUserLookup(result string) {
	globalManager.RecordUserLookup(result)
}

// RecordUserCreated increments the accepted user create counter.
func RecordUserCreated() {
	globalManager.RecordUserCreated()
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
