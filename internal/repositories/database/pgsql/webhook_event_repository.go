package pgsql

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/mentorhub/payments-backend/internal/apperrors"
	portsrepo "github.com/mentorhub/payments-backend/internal/core/ports/repositories"
	"github.com/mentorhub/payments-backend/internal/models"
)

type PgxWebhookEventRepository struct {
	BaseRepository
}

// NewWebhookEventRepository creates a new repository for webhook event dedup.
func NewWebhookEventRepository(pool *pgxpool.Pool) portsrepo.WebhookEventRepository {
	return &PgxWebhookEventRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.WebhookEventRepository = (*PgxWebhookEventRepository)(nil)

// RecordEvent upserts the delivery and reports whether it still needs
// processing. A first delivery inserts a RECEIVED row; a redelivery is
// only refused once the stored row reached PROCESSED.
func (r *PgxWebhookEventRepository) RecordEvent(ctx context.Context, eventID, eventType string, receivedAt time.Time) (bool, error) {
	m := models.WebhookEvent{
		EventID:    eventID,
		EventType:  eventType,
		Status:     models.WebhookEventReceived,
		ReceivedAt: receivedAt,
	}
	query := `
		INSERT INTO webhook_events (event_id, event_type, status, received_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (event_id) DO NOTHING;
	`
	cmdTag, err := r.Pool.Exec(ctx, query, m.EventID, m.EventType, m.Status, m.ReceivedAt)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to record webhook event "+eventID, err)
	}
	if cmdTag.RowsAffected() == 1 {
		return true, nil
	}

	var status string
	err = r.Pool.QueryRow(ctx, `SELECT status FROM webhook_events WHERE event_id = $1;`, eventID).Scan(&status)
	if err != nil {
		return false, apperrors.NewAppError(500, "failed to check webhook event "+eventID, err)
	}
	return status != models.WebhookEventProcessed, nil
}

// MarkEventProcessed records that the event was dispatched successfully.
func (r *PgxWebhookEventRepository) MarkEventProcessed(ctx context.Context, eventID string, processedAt time.Time) error {
	query := `UPDATE webhook_events SET status = $2, processed_at = $3 WHERE event_id = $1;`
	_, err := r.Pool.Exec(ctx, query, eventID, models.WebhookEventProcessed, processedAt)
	if err != nil {
		return apperrors.NewAppError(500, "failed to mark webhook event "+eventID+" processed", err)
	}
	return nil
}
