package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace      string
	subsystem      string
	latencyBuckets []float64
	scoreBuckets   []float64
	registry       prometheus.Registerer

	// Prediction metrics
	predictions       *prometheus.CounterVec
	predictionLatency prometheus.Histogram
	predictedScore    prometheus.Histogram
	flagsRaised       *prometheus.CounterVec

	// Simulator health
	simulatorPings    *prometheus.CounterVec
	simulatorTimeouts prometheus.Counter
	simulatorPanics   prometheus.Counter
	orphanedResponses prometheus.Counter

	// Telemetry ingestion
	sessionsRecorded   prometheus.Counter
	gamesRecorded      *prometheus.CounterVec
	telemetryDuplicate prometheus.Counter
	telemetryRejected  *prometheus.CounterVec

	// Queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueued      prometheus.Counter
	queueDequeued      prometheus.Counter
	queueEnqueueErrors *prometheus.CounterVec

	// Workers
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerMessagesPerSecond prometheus.Gauge

	// Store
	storeOperations *prometheus.CounterVec
	storeErrors     *prometheus.CounterVec
	storeLatency    *prometheus.HistogramVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorsByComponent *prometheus.CounterVec

	// State
	trackedSubjects prometheus.Gauge
	blindSpots      prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers its collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:      "prepscore",
		subsystem:      "engine",
		latencyBuckets: []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		scoreBuckets:   prometheus.LinearBuckets(0, 20, 11),
		registry:       prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	auto := promauto.With(m.registry)
	counter := func(name, help string) prometheus.Counter {
		return auto.NewCounter(prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help})
	}
	counterVec := func(name, help string, labels ...string) *prometheus.CounterVec {
		return auto.NewCounterVec(prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help}, labels)
	}
	gauge := func(name, help string) prometheus.Gauge {
		return auto.NewGauge(prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help})
	}

	m.predictions = counterVec("predictions_total", "Predictions served, by outcome (success, empty, error)", "outcome")
	m.predictionLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "prediction_latency_milliseconds",
		Help:      "Time from request to simulator response",
		Buckets:   m.latencyBuckets,
	})
	m.predictedScore = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "predicted_score",
		Help:      "Distribution of final predicted scores",
		Buckets:   m.scoreBuckets,
	})
	m.flagsRaised = counterVec("flags_raised_total", "Risk flags attached to predictions", "flag")

	m.simulatorPings = counterVec("simulator_pings_total", "Simulator health checks, by result", "result")
	m.simulatorTimeouts = counter("simulator_timeouts_total", "Requests abandoned because the simulator did not answer in time")
	m.simulatorPanics = counter("simulator_panics_total", "Panics recovered inside the simulator")
	m.orphanedResponses = counter("simulator_orphaned_responses_total", "Responses that arrived after their caller gave up")

	m.sessionsRecorded = counter("sessions_recorded_total", "Practice sessions folded into mastery and profile")
	m.gamesRecorded = counterVec("games_recorded_total", "Mini-game results folded into the profile", "game")
	m.telemetryDuplicate = counter("telemetry_duplicate_total", "Telemetry submissions dropped as duplicates")
	m.telemetryRejected = counterVec("telemetry_rejected_total", "Telemetry submissions rejected, by reason", "reason")

	m.queueSize = gauge("queue_size", "Requests waiting for a simulator worker")
	m.queueCapacity = gauge("queue_capacity", "Maximum queued requests")
	m.queueUtilization = gauge("queue_utilization_ratio", "Queue fill ratio (0-1)")
	m.queueEnqueued = counter("queue_enqueued_total", "Requests enqueued")
	m.queueDequeued = counter("queue_dequeued_total", "Requests dequeued")
	m.queueEnqueueErrors = counterVec("queue_enqueue_errors_total", "Rejected enqueues, by reason", "reason")

	m.workerCount = gauge("worker_count", "Simulator workers running")
	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Time a worker spends on one request",
		Buckets:   m.latencyBuckets,
	})
	m.workerMessagesPerSecond = gauge("worker_messages_per_second", "Requests handled per second across the pool")

	m.storeOperations = counterVec("store_operations_total", "Persistence operations, by bucket and operation", "bucket", "op")
	m.storeErrors = counterVec("store_errors_total", "Failed persistence operations", "bucket", "op")
	m.storeLatency = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "store_latency_milliseconds",
		Help:      "Persistence operation latency",
		Buckets:   m.latencyBuckets,
	}, []string{"op"})

	m.httpRequests = counterVec("http_requests_total", "HTTP requests", "endpoint", "method", "status_code")
	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"endpoint", "method", "status_code"})

	m.errorsByComponent = counterVec("errors_total", "Errors by component and type", "component", "error_type")

	m.trackedSubjects = gauge("tracked_subjects", "Subjects with a mastery record")
	m.blindSpots = gauge("blind_spots", "Material subjects with too little exposure")
}

// RecordPrediction counts a prediction by outcome and observes its score when successful.
func RecordPrediction(outcome string, score float64) {
	globalManager.predictions.WithLabelValues(outcome).Inc()
	if outcome == OutcomeSuccess {
		globalManager.predictedScore.Observe(score)
	}
}

// Prediction outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeEmpty   = "empty"
	OutcomeError   = "error"
)

// RecordPredictionLatency records round-trip prediction latency in milliseconds.
func RecordPredictionLatency(latencyMs float64) {
	globalManager.predictionLatency.Observe(latencyMs)
}

// RecordFlag counts a raised risk flag.
func RecordFlag(flag string) {
	globalManager.flagsRaised.WithLabelValues(flag).Inc()
}

// RecordSimulatorPing counts a health check result ("pong", "timeout", "error").
func RecordSimulatorPing(result string) {
	globalManager.simulatorPings.WithLabelValues(result).Inc()
}

// RecordSimulatorTimeout counts a request abandoned by its caller.
func RecordSimulatorTimeout() {
	globalManager.simulatorTimeouts.Inc()
}

// RecordSimulatorPanic counts a recovered panic.
func RecordSimulatorPanic() {
	globalManager.simulatorPanics.Inc()
}

// RecordOrphanedResponse counts a response nobody was waiting for.
func RecordOrphanedResponse() {
	globalManager.orphanedResponses.Inc()
}

// RecordSessionRecorded counts an ingested practice session.
func RecordSessionRecorded() {
	globalManager.sessionsRecorded.Inc()
}

// RecordGameRecorded counts an ingested mini-game result.
func RecordGameRecorded(game string) {
	globalManager.gamesRecorded.WithLabelValues(game).Inc()
}

// RecordTelemetryDuplicate counts a dropped duplicate submission.
func RecordTelemetryDuplicate() {
	globalManager.telemetryDuplicate.Inc()
}

// RecordTelemetryRejected counts a rejected submission.
func RecordTelemetryRejected(reason string) {
	globalManager.telemetryRejected.WithLabelValues(reason).Inc()
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue fill ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue counts an accepted enqueue.
func RecordQueueEnqueue() {
	globalManager.queueEnqueued.Inc()
}

// RecordQueueDequeue counts a dequeue.
func RecordQueueDequeue() {
	globalManager.queueDequeued.Inc()
}

// RecordQueueEnqueueError counts a rejected enqueue.
func RecordQueueEnqueueError(reason string) {
	globalManager.queueEnqueueErrors.WithLabelValues(reason).Inc()
}

// UpdateWorkerCount sets the number of running workers.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records how long a worker spent on one request.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// UpdateWorkerMessagesPerSecond sets the pool throughput.
func UpdateWorkerMessagesPerSecond(rate float64) {
	globalManager.workerMessagesPerSecond.Set(rate)
}

// RecordStoreOperation counts a persistence operation and its latency.
func RecordStoreOperation(bucket, op string, latencyMs float64) {
	globalManager.storeOperations.WithLabelValues(bucket, op).Inc()
	globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordStoreError counts a failed persistence operation.
func RecordStoreError(bucket, op string) {
	globalManager.storeErrors.WithLabelValues(bucket, op).Inc()
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByComponent counts an error by component and type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateTrackedSubjects sets the number of subjects with a mastery record.
func UpdateTrackedSubjects(count int) {
	globalManager.trackedSubjects.Set(float64(count))
}

// UpdateBlindSpots sets the current blind-spot count.
func UpdateBlindSpots(count int) {
	globalManager.blindSpots.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}
