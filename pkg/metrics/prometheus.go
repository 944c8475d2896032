// Package metrics provides Prometheus metrics for the heatline contest engine.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Scoring
	scoresSubmitted  prometheus.Counter
	scoreOverwrites  prometheus.Counter
	validationErrors prometheus.Counter

	// Heat progression
	heatAdvances   prometheus.Counter
	heatsStarted   prometheus.Counter
	heatsCompleted prometheus.Counter
	heatsBuilt     prometheus.Counter
	activeHeats    prometheus.Gauge

	// Rankings
	rankingRecomputes        prometheus.Counter
	rankingRecomputeDuration prometheus.Histogram
	rankedSkaters            prometheus.Gauge

	// Phase transitions
	phaseTransitions       prometheus.Counter
	phaseTransitionErrors  prometheus.Counter

	// Recompute queue
	queueDepth        prometheus.Gauge
	queueCoalesced    prometheus.Counter
	queueEnqueueDrops prometheus.Counter

	// Notifications
	notificationsPublished prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System
	systemMemoryBytes prometheus.Gauge
	systemGoroutines  prometheus.Gauge
}

// Option applies a configuration option to the Manager.
type Option func(*Manager)

// WithNamespace sets the namespace for all metrics.
func WithNamespace(namespace string) Option {
	return func(m *Manager) {
		if namespace != "" {
			m.namespace = namespace
		}
	}
}

// WithSubsystem sets the subsystem for all metrics.
func WithSubsystem(subsystem string) Option {
	return func(m *Manager) {
		if subsystem != "" {
			m.subsystem = subsystem
		}
	}
}

// WithHistogramBuckets sets custom buckets for duration histograms.
func WithHistogramBuckets(buckets []float64) Option {
	return func(m *Manager) {
		if len(buckets) > 0 {
			m.histogramBuckets = buckets
		}
	}
}

// WithPrometheusRegistry sets a custom Prometheus registry.
func WithPrometheusRegistry(registry prometheus.Registerer) Option {
	return func(m *Manager) {
		if registry != nil {
			m.registry = registry
		}
	}
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry keeps the default Go collectors out of our exposition.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "heatline",
		subsystem:        "engine",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.scoresSubmitted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "scores_submitted_total",
		Help:      "Total judge scores accepted",
	})
	m.scoreOverwrites = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "score_overwrites_total",
		Help:      "Scores that replaced an existing entry for the same key",
	})
	m.validationErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "validation_errors_total",
		Help:      "Rejected score submissions",
	})

	m.heatAdvances = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "heat_advances_total",
		Help:      "Successful heat advance commands",
	})
	m.heatsStarted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "heats_started_total",
		Help:      "Heats moved from pending to in_progress",
	})
	m.heatsCompleted = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "heats_completed_total",
		Help:      "Heats that reached completed status",
	})
	m.heatsBuilt = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "heats_built_total",
		Help:      "Heats created by the auto-heat builder",
	})
	m.activeHeats = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "active_heats",
		Help:      "Heats currently in_progress",
	})

	m.rankingRecomputes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_recomputes_total",
		Help:      "Ranking recomputation runs",
	})
	m.rankingRecomputeDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranking_recompute_duration_milliseconds",
		Help:      "Ranking recomputation duration in milliseconds",
		Buckets:   m.histogramBuckets,
	})
	m.rankedSkaters = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ranked_skaters",
		Help:      "Skaters in the most recent ranking set",
	})

	m.phaseTransitions = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "phase_transitions_total",
		Help:      "Successful phase transitions",
	})
	m.phaseTransitionErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "phase_transition_errors_total",
		Help:      "Rejected phase transition attempts",
	})

	m.queueDepth = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_queue_depth",
		Help:      "Pending ranking recompute jobs",
	})
	m.queueCoalesced = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_jobs_coalesced_total",
		Help:      "Recompute jobs merged into an already-queued scope",
	})
	m.queueEnqueueDrops = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "recompute_enqueue_drops_total",
		Help:      "Recompute jobs dropped because the queue was full or closed",
	})

	m.notificationsPublished = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "notifications_published_total",
		Help:      "Change notifications published to subscribers",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "HTTP requests by endpoint, method, and status",
	}, []string{"endpoint", "method", "status"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.systemMemoryBytes = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_memory_bytes",
		Help:      "Allocated heap bytes",
	})
	m.systemGoroutines = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "system_goroutines",
		Help:      "Current goroutine count",
	})
}

// Package-level helpers record on the global manager.

func RecordScoreSubmitted()  { globalManager.scoresSubmitted.Inc() }
func RecordScoreOverwrite()  { globalManager.scoreOverwrites.Inc() }
func RecordValidationError() { globalManager.validationErrors.Inc() }

func RecordHeatAdvance()      { globalManager.heatAdvances.Inc() }
func RecordHeatStarted()      { globalManager.heatsStarted.Inc() }
func RecordHeatCompleted()    { globalManager.heatsCompleted.Inc() }
func RecordHeatsBuilt(n int)  { globalManager.heatsBuilt.Add(float64(n)) }
func UpdateActiveHeats(n int) { globalManager.activeHeats.Set(float64(n)) }

func RecordRankingRecompute() { globalManager.rankingRecomputes.Inc() }

// RecordRankingRecomputeDuration records a recompute duration in milliseconds.
func RecordRankingRecomputeDuration(ms float64) {
	globalManager.rankingRecomputeDuration.Observe(ms)
}

func UpdateRankedSkaters(n int) { globalManager.rankedSkaters.Set(float64(n)) }

func RecordPhaseTransition()      { globalManager.phaseTransitions.Inc() }
func RecordPhaseTransitionError() { globalManager.phaseTransitionErrors.Inc() }

func UpdateRecomputeQueueDepth(n int) { globalManager.queueDepth.Set(float64(n)) }
func RecordRecomputeCoalesced()       { globalManager.queueCoalesced.Inc() }
func RecordRecomputeEnqueueDrop()     { globalManager.queueEnqueueDrops.Inc() }

func RecordNotificationPublished() { globalManager.notificationsPublished.Inc() }

func UpdateSystemMemoryUsage(b uint64) { globalManager.systemMemoryBytes.Set(float64(b)) }
func UpdateSystemGoroutineCount(n int) { globalManager.systemGoroutines.Set(float64(n)) }

// RecordHTTPRequest increments the request counter for an endpoint.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records a request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

// GetRegistry returns the registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
