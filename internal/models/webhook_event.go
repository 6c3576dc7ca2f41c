package models

import "time"

// Webhook event delivery statuses.
const (
	WebhookEventReceived  = "RECEIVED"
	WebhookEventProcessed = "PROCESSED"
)

// WebhookEvent mirrors the webhook_events table, used to deduplicate
// processor event deliveries by their processor-assigned ID. A row stays
// RECEIVED until the event's dispatch succeeds, so a delivery that failed
// mid-flight is picked up again when the processor redelivers.
type WebhookEvent struct {
	EventID     string     `db:"event_id"` // Processor event ID, primary key
	EventType   string     `db:"event_type"`
	Status      string     `db:"status"`
	ReceivedAt  time.Time  `db:"received_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
