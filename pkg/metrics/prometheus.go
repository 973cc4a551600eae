// Package metrics provides Prometheus metrics for the mentorlink service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the mentorlink service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Feedback pipeline
	feedbackProcessed prometheus.Counter
	feedbackDuplicate prometheus.Counter
	feedbackFailed    prometheus.Counter
	rankFallbacks     prometheus.Counter
	feedbackLatency   prometheus.Histogram

	// Recommendations
	recommendationLatency prometheus.Histogram
	recommendationResults prometheus.Histogram

	// Mentorships and discovery
	mentorshipEvents *prometheus.CounterVec
	mentorsIndexed   prometheus.Gauge
	profilesTotal    prometheus.Gauge

	// Queue / workers
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueEnqueued    prometheus.Counter
	queueDequeued    prometheus.Counter
	queueEnqueueErrs prometheus.Counter
	workerCount      prometheus.Gauge

	// Storage
	storeConflicts *prometheus.CounterVec
	storeLatency   *prometheus.HistogramVec

	// Realtime
	chatPublishes    *prometheus.CounterVec
	websocketClients prometheus.Gauge

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	errorsByComponent *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "mentorlink",
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

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   buckets,
	})
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every metric
	auto := promauto.With(m.registry)

	m.feedbackProcessed = m.counter("feedback_processed_total", "Total number of feedback events applied to a mentor")
	m.feedbackDuplicate = m.counter("feedback_duplicate_total", "Total number of duplicate feedback events dropped")
	m.feedbackFailed = m.counter("feedback_failed_total", "Total number of feedback events that could not be applied")
	m.rankFallbacks = m.counter("rank_fallback_total", "Total number of rank recomputations that fell back to the rounded rating")
	m.feedbackLatency = m.histogram("feedback_latency_milliseconds", "Feedback apply latency in milliseconds", m.histogramBuckets)

	m.recommendationLatency = m.histogram("recommendation_latency_milliseconds",
		"Recommendation generation latency in milliseconds", m.histogramBuckets)
	m.recommendationResults = m.histogram("recommendation_results",
		"Number of mentors returned per recommendation request", []float64{0, 1, 2, 5, 10, 25, 50, 100, 250})

	m.mentorshipEvents = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "mentorship_events_total",
		Help:      "Mentorship lifecycle events by kind",
	}, []string{"kind"})
	m.mentorsIndexed = m.gauge("mentors_indexed", "Number of mentors in the rank index")
	m.profilesTotal = m.gauge("profiles_total", "Number of stored profiles")

	m.queueSize = m.gauge("queue_size", "Current number of pending feedback events")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum feedback queue capacity")
	m.queueEnqueued = m.counter("queue_enqueue_total", "Total number of feedback events enqueued")
	m.queueDequeued = m.counter("queue_dequeue_total", "Total number of feedback events dequeued")
	m.queueEnqueueErrs = m.counter("queue_enqueue_errors_total", "Total number of enqueue errors")
	m.workerCount = m.gauge("worker_count", "Current number of feedback workers")

	m.storeConflicts = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_conflicts_total",
		Help:      "Transaction conflicts retried by the profile store",
	}, []string{"driver"})
	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_latency_milliseconds",
		Help:      "Profile store operation latency in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"driver", "op"})

	m.chatPublishes = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "chat_publish_total",
		Help:      "Chat frames published by transport",
	}, []string{"transport"})
	m.websocketClients = m.gauge("websocket_clients", "Connected websocket clients")

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint and method",
	}, []string{"endpoint", "method", "status_code"})
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "errors_by_component_total",
		Help:      "Total number of errors by component",
	}, []string{"component", "error_type"})

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordFeedbackProcessed increments the applied feedback counter.
func RecordFeedbackProcessed() { globalManager.feedbackProcessed.Inc() }

// RecordFeedbackDuplicate increments the duplicate feedback counter.
func RecordFeedbackDuplicate() { globalManager.feedbackDuplicate.Inc() }

// RecordFeedbackFailed increments the failed feedback counter.
func RecordFeedbackFailed() { globalManager.feedbackFailed.Inc() }

// RecordRankFallback counts a rank recomputation that used the rounded rating.
func RecordRankFallback() { globalManager.rankFallbacks.Inc() }

// RecordFeedbackLatency records feedback apply latency in milliseconds.
func RecordFeedbackLatency(latencyMs float64) { globalManager.feedbackLatency.Observe(latencyMs) }

// RecordRecommendation records latency and result size of one recommendation request.
func RecordRecommendation(latencyMs float64, results int) {
	globalManager.recommendationLatency.Observe(latencyMs)
	globalManager.recommendationResults.Observe(float64(results))
}

// RecordMentorshipEvent counts a mentorship lifecycle event (registered, progress, completed).
func RecordMentorshipEvent(kind string) {
	globalManager.mentorshipEvents.WithLabelValues(kind).Inc()
}

// UpdateMentorsIndexed sets the number of mentors in the rank index.
func UpdateMentorsIndexed(count int) { globalManager.mentorsIndexed.Set(float64(count)) }

// UpdateProfilesTotal sets the number of stored profiles.
func UpdateProfilesTotal(count int) { globalManager.profilesTotal.Set(float64(count)) }

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() { globalManager.queueDequeued.Inc() }

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() { globalManager.queueEnqueueErrs.Inc() }

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordStoreConflict counts a retried transaction conflict.
func RecordStoreConflict(driver string) {
	globalManager.storeConflicts.WithLabelValues(driver).Inc()
}

// RecordStoreLatency records a store operation latency in milliseconds.
func RecordStoreLatency(driver, op string, latencyMs float64) {
	globalManager.storeLatency.WithLabelValues(driver, op).Observe(latencyMs)
}

// RecordChatPublish counts a chat frame published through transport ("local" or "redis").
func RecordChatPublish(transport string) {
	globalManager.chatPublishes.WithLabelValues(transport).Inc()
}

// UpdateWebsocketClients sets the number of connected websocket clients.
func UpdateWebsocketClients(count int) { globalManager.websocketClients.Set(float64(count)) }

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) { globalManager.systemMemoryUsage.Set(float64(bytes)) }

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) { globalManager.systemGoroutineCount.Set(float64(count)) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
