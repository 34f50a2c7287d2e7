package observer

import (
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	metricsEnabled = true // Flag to control metric collection

	// Labels for gateway action metrics
	actionLabels = []string{"action", "company_id", "status"}
	// Labels for webhook event metrics
	eventProcessingLabels = []string{"event_type", "company_id"}

	// Gateway action counter and duration
	ActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nocagestor_actions_total",
			Help: "Total number of gateway actions handled, labeled by outcome.",
		},
		actionLabels,
	)
	ActionDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nocagestor_action_duration_seconds",
			Help:    "Histogram of gateway action handling durations.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		},
		actionLabels,
	)

	// Webhook intake counters
	EventsReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nocagestor_events_received_total",
			Help: "Total number of webhook events received from NATS.",
		},
		eventProcessingLabels,
	)
	EventsProcessedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nocagestor_events_processed_total",
			Help: "Total number of webhook events successfully processed and acknowledged.",
		},
		eventProcessingLabels,
	)
	EventsFailedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nocagestor_events_failed_total",
			Help: "Total number of webhook events that failed processing (resulting in Nack or error).",
		},
		eventProcessingLabels,
	)
	EventProcessingDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nocagestor_event_processing_duration_seconds",
			Help:    "Histogram of webhook event processing durations.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~20s
		},
		eventProcessingLabels,
	)

	// Global metrics instance
	Metrics *metricsStore
)

// Metrics related to database operations
var (
	dbOperationLabels = []string{"operation", "entity", "company_id", "status"}

	DatabaseOperationDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nocagestor_db_operation_duration_seconds",
			Help:    "Histogram of database operation durations.",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 15), // 1ms to ~16s
		},
		dbOperationLabels,
	)
)

// Metrics related to broadcast campaigns
var (
	broadcastLabels       = []string{"company_id"}
	broadcastStatusLabels = []string{"company_id", "status"}

	broadcastMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "nocagestor_broadcast_messages_total",
			Help: "Total number of broadcast messages attempted, labeled by final status.",
		},
		broadcastStatusLabels,
	)
	broadcastSendDurationSeconds = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "nocagestor_broadcast_send_duration_seconds",
			Help:    "Histogram of per-recipient broadcast send durations.",
			Buckets: prometheus.DefBuckets,
		},
		broadcastLabels,
	)
	broadcastQueueLength = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "nocagestor_broadcast_queue_length",
		Help: "Approximate number of recipients waiting in the broadcast worker queue.",
	})
)

// metricsStore holds references to all Prometheus metrics.
type metricsStore struct{}

// InitMetrics initializes and registers the Prometheus metrics if enabled.
// Call this function during application startup.
func InitMetrics(enabled bool) {
	if !enabled {
		metricsEnabled = false
		return
	}

	metricsEnabled = true

	// Metrics are already auto-registered via promauto, so no explicit
	// registration is needed here.
	Metrics = &metricsStore{}
}

// IncAction increments the gateway action counter.
func IncAction(action, tenant, status string) {
	if !metricsEnabled {
		return
	}
	ActionsTotal.WithLabelValues(action, sanitizeTenant(tenant), status).Inc()
}

// ObserveActionDuration records the handling time for a gateway action.
func ObserveActionDuration(action, tenant, status string, duration time.Duration) {
	if !metricsEnabled {
		return
	}
	ActionDurationSeconds.WithLabelValues(action, sanitizeTenant(tenant), status).Observe(duration.Seconds())
}

// IncEventsReceived increments the events received counter.
func IncEventsReceived(eventType, tenant string) {
	if !metricsEnabled {
		return
	}
	EventsReceivedTotal.WithLabelValues(eventType, sanitizeTenant(tenant)).Inc()
}

// IncEventsProcessed increments the events processed counter.
func IncEventsProcessed(eventType, tenant string) {
	if !metricsEnabled {
		return
	}
	EventsProcessedTotal.WithLabelValues(eventType, sanitizeTenant(tenant)).Inc()
}

// IncEventsFailed increments the events failed counter.
func IncEventsFailed(eventType, tenant string) {
	if !metricsEnabled {
		return
	}
	EventsFailedTotal.WithLabelValues(eventType, sanitizeTenant(tenant)).Inc()
}

// ObserveEventProcessingDuration records the processing time for a webhook event.
func ObserveEventProcessingDuration(eventType, tenant string, duration time.Duration) {
	if !metricsEnabled {
		return
	}
	EventProcessingDurationSeconds.WithLabelValues(eventType, sanitizeTenant(tenant)).Observe(duration.Seconds())
}

// ObserveDbOperationDuration records the duration for a database operation.
func ObserveDbOperationDuration(operation, entity, companyID string, duration time.Duration, err error) {
	if !metricsEnabled {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	DatabaseOperationDurationSeconds.WithLabelValues(operation, entity, sanitizeTenant(companyID), status).Observe(duration.Seconds())
}

// --- Broadcast Metric Helpers ---

// IncBroadcastMessage increments the per-recipient broadcast counter by status.
func IncBroadcastMessage(companyID, status string) {
	if Metrics != nil {
		broadcastMessagesTotal.WithLabelValues(sanitizeTenant(companyID), status).Inc()
	}
}

// ObserveBroadcastSendDuration records the send time for one broadcast recipient.
func ObserveBroadcastSendDuration(companyID string, duration time.Duration) {
	if Metrics != nil {
		broadcastSendDurationSeconds.WithLabelValues(sanitizeTenant(companyID)).Observe(duration.Seconds())
	}
}

// SetBroadcastQueueLength sets the current broadcast queue length.
func SetBroadcastQueueLength(length int) {
	if Metrics != nil {
		broadcastQueueLength.Set(float64(length))
	}
}

// sanitizeTenant ensures the tenant label is valid or returns a default value.
func sanitizeTenant(tenant string) string {
	if tenant == "" {
		return "unknown"
	}
	return tenant
}

// SanitizeErrorType maps specific errors to a coarse category.
// Keep this simple to avoid high cardinality.
func SanitizeErrorType(errStr string) string {
	if errStr == "" || errStr == "none" {
		return "none"
	}

	switch {
	case strings.Contains(errStr, "database"), strings.Contains(errStr, "SQL"), strings.Contains(errStr, "duplicate key"), strings.Contains(errStr, "constraint"), strings.Contains(errStr, "connection"):
		return "database"
	case strings.Contains(errStr, "validation failed"), strings.Contains(errStr, "bad request"), strings.Contains(errStr, "invalid"), strings.Contains(errStr, "missing field"):
		return "validation"
	case strings.Contains(errStr, "not found"), strings.Contains(errStr, "no rows"):
		return "not_found"
	case strings.Contains(errStr, "nats"), strings.Contains(errStr, "jetstream"):
		return "nats"
	case strings.Contains(errStr, "timeout"), strings.Contains(errStr, "deadline exceeded"):
		return "timeout"
	case strings.Contains(errStr, "unmarshal"), strings.Contains(errStr, "json"):
		return "unmarshal"
	case strings.Contains(errStr, "panic"):
		return "panic"
	default:
		return "unknown"
	}
}
