package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels for WebhookEvents.
const (
	OutcomeSynced    = "synced"
	OutcomeIgnored   = "ignored"
	OutcomeRejected  = "rejected"
	OutcomeFailed    = "failed"
	unknownEventType = "unknown"
)

var (
	WebhookEvents = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tiersync_webhook_events_total",
			Help: "Webhook deliveries by event type and outcome",
		},
		[]string{"type", "outcome"},
	)

	StoreUpsertDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tiersync_store_upsert_duration_seconds",
			Help:    "Duration of subscriber upserts in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"backend"},
	)
)

// ObserveWebhook counts one delivery. Deliveries rejected before the event
// type is known are counted as "unknown".
func ObserveWebhook(eventType, outcome string) {
	if eventType == "" {
		eventType = unknownEventType
	}
	WebhookEvents.WithLabelValues(eventType, outcome).Inc()
}
