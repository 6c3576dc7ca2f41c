package handlers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mentorhub/payments-backend/internal/apperrors"
	"github.com/mentorhub/payments-backend/internal/core/domain"
	portsrepo "github.com/mentorhub/payments-backend/internal/core/ports/repositories"
	portssvc "github.com/mentorhub/payments-backend/internal/core/ports/services"
	"github.com/mentorhub/payments-backend/internal/middleware"
)

const signatureHeader = "X-Processor-Signature"

// webhookEvent is the envelope the processor posts to us.
type webhookEvent struct {
	EventID   string `json:"id"`
	EventType string `json:"type"`
	Data      struct {
		IntentID string `json:"intent_id"`
		Reason   string `json:"reason"`
	} `json:"data"`
}

// webhookHandler ingests processor events. Deliveries are at-least-once, so
// every event is deduplicated by its ID before dispatch.
type webhookHandler struct {
	paymentService portssvc.PaymentSvcFacade
	events         portsrepo.WebhookEventRepository
	secret         string
}

func newWebhookHandler(ps portssvc.PaymentSvcFacade, events portsrepo.WebhookEventRepository, secret string) *webhookHandler {
	return &webhookHandler{paymentService: ps, events: events, secret: secret}
}

func (h *webhookHandler) handleProcessorEvent(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	if !h.verifySignature(body, c.GetHeader(signatureHeader)) {
		logger.Warn("Webhook signature verification failed")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid signature"})
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid event payload"})
		return
	}
	if event.EventID == "" || event.EventType == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event id and type are required"})
		return
	}

	pending, err := h.events.RecordEvent(c.Request.Context(), event.EventID, event.EventType, time.Now().UTC())
	if err != nil {
		logger.Error("Failed to record webhook event", slog.String("event_id", event.EventID), slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}
	if !pending {
		logger.Info("Duplicate webhook delivery ignored", slog.String("event_id", event.EventID))
		c.JSON(http.StatusOK, gin.H{"status": "already_processed"})
		return
	}

	if err := h.dispatch(c, event); err != nil {
		// An order already past this state means a competing delivery won.
		if errors.Is(err, domain.ErrInvalidTransition) {
			h.markProcessed(c, event.EventID)
			c.JSON(http.StatusOK, gin.H{"status": "already_processed"})
			return
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn("Webhook references unknown intent", slog.String("event_id", event.EventID), slog.String("intent_id", event.Data.IntentID))
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown payment intent"})
			return
		}
		// The event stays unprocessed so the processor's redelivery gets
		// dispatched again.
		logger.Error("Failed to process webhook event",
			slog.String("event_id", event.EventID),
			slog.String("event_type", event.EventType),
			slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to process event"})
		return
	}

	h.markProcessed(c, event.EventID)
	c.JSON(http.StatusOK, gin.H{"status": "processed"})
}

// markProcessed flags the event so redeliveries short-circuit. The dispatch
// already committed, so a failure here only costs a redundant (and idempotent)
// re-dispatch on the next delivery.
func (h *webhookHandler) markProcessed(c *gin.Context, eventID string) {
	if err := h.events.MarkEventProcessed(c.Request.Context(), eventID, time.Now().UTC()); err != nil {
		middleware.GetLoggerFromCtx(c.Request.Context()).Error("Failed to mark webhook event processed",
			slog.String("event_id", eventID), slog.String("error", err.Error()))
	}
}

func (h *webhookHandler) dispatch(c *gin.Context, event webhookEvent) error {
	ctx := c.Request.Context()

	switch event.EventType {
	case "payment_intent.succeeded":
		return h.paymentService.HandlePaymentSucceeded(ctx, event.Data.IntentID)
	case "payment_intent.payment_failed":
		reason := event.Data.Reason
		if reason == "" {
			reason = "processor_declined"
		}
		return h.paymentService.HandlePaymentFailed(ctx, event.Data.IntentID, reason)
	default:
		middleware.GetLoggerFromCtx(ctx).Info("Ignoring unhandled webhook event type", slog.String("event_type", event.EventType))
		return nil
	}
}

// verifySignature checks the hex HMAC-SHA256 of the raw body. With no secret
// configured, verification is skipped so local setups keep working.
func (h *webhookHandler) verifySignature(body []byte, signature string) bool {
	if h.secret == "" {
		return true
	}
	if signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(h.secret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
