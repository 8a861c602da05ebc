// Package metrics provides Prometheus metrics for the duelrank judging
// engine and its diagnostics server.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the duelrank service.
type Manager struct {
	namespace string
	subsystem string
	buckets   []float64
	registry  prometheus.Registerer

	// Judging metrics
	judgments     *prometheus.CounterVec
	items         prometheus.Gauge
	comparisons   prometheus.Gauge
	snapshots     prometheus.Counter
	maxDelta      prometheus.Gauge
	avgDelta      prometheus.Gauge
	rankStability prometheus.Gauge
	convergedBy   *prometheus.GaugeVec

	// State persistence metrics
	stateSaves  prometheus.Counter
	stateLoads  prometheus.Counter
	stateErrors prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace: "duelrank",
		subsystem: "engine",
		buckets:   prometheus.DefBuckets,
		registry:  prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.judgments = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "judgments_total",
		Help:      "Total number of judged pairs, by outcome (win or draw)",
	}, []string{"outcome"})

	m.items = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "items",
		Help:      "Number of items currently registered in the rating store",
	})

	m.comparisons = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "comparisons",
		Help:      "Total judged pairs in the current session",
	})

	m.snapshots = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "snapshots_total",
		Help:      "Total number of convergence snapshots recorded",
	})

	m.maxDelta = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_max_delta",
		Help:      "Maximum absolute rating change between the last two snapshots",
	})

	m.avgDelta = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_avg_delta",
		Help:      "Average absolute rating change between the last two snapshots",
	})

	m.rankStability = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rank_stability",
		Help:      "Spearman rank correlation between the last two snapshots",
	})

	m.convergedBy = auto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "converged",
		Help:      "Whether the session is converged (1) by the given criterion",
	}, []string{"criterion"})

	m.stateSaves = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "state",
		Name:      "saves_total",
		Help:      "Total number of state file saves",
	})

	m.stateLoads = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "state",
		Name:      "loads_total",
		Help:      "Total number of state file loads",
	})

	m.stateErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "state",
		Name:      "errors_total",
		Help:      "Total number of state persistence failures",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests by endpoint, method, and status code",
	}, []string{"endpoint", "method", "status_code"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: "http",
		Name:      "request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.buckets,
	}, []string{"endpoint", "method", "status_code"})
}

// GetRegistry returns the registry the global metrics are registered on,
// for serving via promhttp.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RecordJudgment increments the judgment counter for an outcome.
func RecordJudgment(outcome string) {
	globalManager.judgments.WithLabelValues(outcome).Inc()
}

// UpdateItems sets the registered item count.
func UpdateItems(count int) {
	globalManager.items.Set(float64(count))
}

// UpdateComparisons sets the session-wide judged pair count.
func UpdateComparisons(count int) {
	globalManager.comparisons.Set(float64(count))
}

// RecordSnapshot increments the snapshot counter.
func RecordSnapshot() {
	globalManager.snapshots.Inc()
}

// UpdateDeltas sets the last max/avg rating change gauges.
func UpdateDeltas(maxDelta, avgDelta float64) {
	globalManager.maxDelta.Set(maxDelta)
	globalManager.avgDelta.Set(avgDelta)
}

// UpdateRankStability sets the Spearman rho gauge.
func UpdateRankStability(rho float64) {
	globalManager.rankStability.Set(rho)
}

// UpdateConverged sets the converged gauge for a criterion ("delta" or "rank").
func UpdateConverged(criterion string, converged bool) {
	v := 0.0
	if converged {
		v = 1.0
	}
	globalManager.convergedBy.WithLabelValues(criterion).Set(v)
}

// RecordStateSave increments the state save counter.
func RecordStateSave() {
	globalManager.stateSaves.Inc()
}

// RecordStateLoad increments the state load counter.
func RecordStateLoad() {
	globalManager.stateLoads.Inc()
}

// RecordStateError increments the state error counter.
func RecordStateError() {
	globalManager.stateErrors.Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}
