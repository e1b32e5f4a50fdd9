// Package metrics provides Prometheus metrics for the todos service.
package metrics

import (
	"database/sql"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager manages all Prometheus metrics for the todos service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	registry         prometheus.Registerer

	// Business metrics
	todosTotal    prometheus.Gauge
	todosCreated  prometheus.Counter
	todosDeleted  prometheus.Counter
	todosNotFound *prometheus.CounterVec

	// Storage metrics
	storageOperations *prometheus.CounterVec
	storageLatency    *prometheus.HistogramVec
	storageErrors     *prometheus.CounterVec

	// Connection pool metrics
	poolOpenConnections prometheus.Gauge
	poolInUse           prometheus.Gauge
	poolIdle            prometheus.Gauge
	poolWaitCount       prometheus.Gauge
	poolWaitDuration    prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorRateByType     *prometheus.CounterVec
	errorRateByEndpoint *prometheus.CounterVec
	errorLatency        *prometheus.HistogramVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "todos",
		subsystem:        "api",
		histogramBuckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)

	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{
			Namespace: m.namespace, Subsystem: m.subsystem,
			Name: name, Help: help,
		})
	}
	counter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem,
			Name: name, Help: help,
		})
	}
	counterVec := func(name, help string, keys ...string) *prometheus.CounterVec {
		return auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: m.namespace, Subsystem: m.subsystem,
			Name: name, Help: help,
		}, keys)
	}
	histogramVec := func(name, help string, keys ...string) *prometheus.HistogramVec {
		return auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: m.namespace, Subsystem: m.subsystem,
			Name: name, Help: help,
			Buckets: m.histogramBuckets,
		}, keys)
	}

	m.todosTotal = gauge("todos_total", "Number of todos currently stored")
	m.todosCreated = counter("todos_created_total", "Total number of todos created")
	m.todosDeleted = counter("todos_deleted_total", "Total number of todos deleted")
	m.todosNotFound = counterVec("todos_not_found_total", "Lookups that resolved to no todo, by operation", "operation")

	m.storageOperations = counterVec("storage_operations_total", "Storage operations by operation and result", "operation", "result")
	m.storageLatency = histogramVec("storage_operation_duration_milliseconds", "Storage operation latency in milliseconds", "operation")
	m.storageErrors = counterVec("storage_errors_total", "Storage failures by operation", "operation")

	m.poolOpenConnections = gauge("db_pool_open_connections", "Established connections, in use and idle")
	m.poolInUse = gauge("db_pool_in_use_connections", "Connections currently in use")
	m.poolIdle = gauge("db_pool_idle_connections", "Idle connections")
	m.poolWaitCount = gauge("db_pool_wait_count", "Total number of connections waited for")
	m.poolWaitDuration = gauge("db_pool_wait_duration_milliseconds", "Total time blocked waiting for a connection")

	m.httpRequests = counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorRateByType = counterVec("errors_by_type_total", "Errors by type and severity", "error_type", "severity")
	m.errorRateByEndpoint = counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")
	m.errorLatency = histogramVec("error_latency_milliseconds", "Latency of failed requests in milliseconds", "component", "error_type")

	m.systemMemoryUsage = gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem,
		Name: "system_gc_pause_time_milliseconds", Help: "GC pause time in milliseconds",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
	})
}

// Business metrics.

// UpdateTodosTotal sets the number of stored todos.
func UpdateTodosTotal(count int) {
	if !globalManager.enabled {
		return
	}
	globalManager.todosTotal.Set(float64(count))
}

// RecordTodoCreated increments the created counter.
func RecordTodoCreated() {
	if !globalManager.enabled {
		return
	}
	globalManager.todosCreated.Inc()
}

// RecordTodoDeleted increments the deleted counter.
func RecordTodoDeleted() {
	if !globalManager.enabled {
		return
	}
	globalManager.todosDeleted.Inc()
}

// RecordTodoNotFound counts a lookup that found no row.
func RecordTodoNotFound(operation string) {
	if !globalManager.enabled {
		return
	}
	globalManager.todosNotFound.WithLabelValues(operation).Inc()
}

// Storage metrics.

// RecordStorageOperation records the outcome and latency of one storage call.
// result is one of "ok", "not_found" or "error".
func RecordStorageOperation(operation, result string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.storageOperations.WithLabelValues(operation, result).Inc()
	globalManager.storageLatency.WithLabelValues(operation).Observe(latencyMs)
	if result == "error" {
		globalManager.storageErrors.WithLabelValues(operation).Inc()
	}
}

// UpdatePoolStats copies database/sql pool statistics into gauges.
func UpdatePoolStats(s sql.DBStats) {
	if !globalManager.enabled {
		return
	}
	globalManager.poolOpenConnections.Set(float64(s.OpenConnections))
	globalManager.poolInUse.Set(float64(s.InUse))
	globalManager.poolIdle.Set(float64(s.Idle))
	globalManager.poolWaitCount.Set(float64(s.WaitCount))
	globalManager.poolWaitDuration.Set(float64(s.WaitDuration.Milliseconds()))
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Error metrics.

// RecordErrorByType increments error rate by type and severity.
func RecordErrorByType(errorType, severity string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint increments error rate for a specific endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// RecordErrorLatency records latency for error scenarios.
func RecordErrorLatency(component, errorType string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.errorLatency.WithLabelValues(component, errorType).Observe(latencyMs)
}

// System metrics.

// UpdateSystemMemoryUsage sets system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// RefreshInterval is how often background updaters should refresh gauges.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
