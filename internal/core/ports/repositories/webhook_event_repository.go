package repositories

import (
	"context"
	"time"
)

// WebhookEventRepository tracks processor event deliveries so a redelivered
// event is never dispatched after its work already finished.
type WebhookEventRepository interface {
	// RecordEvent upserts the delivery and reports whether it still needs
	// processing. Only an event already marked processed returns false; a
	// redelivery whose earlier attempt died before MarkEventProcessed is
	// handed out again.
	RecordEvent(ctx context.Context, eventID, eventType string, receivedAt time.Time) (bool, error)

	// MarkEventProcessed records that the event was dispatched successfully.
	MarkEventProcessed(ctx context.Context, eventID string, processedAt time.Time) error
}
