package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mentorhub/payments-backend/internal/apperrors"
	"github.com/mentorhub/payments-backend/internal/core/domain"
	portsprov "github.com/mentorhub/payments-backend/internal/core/ports/providers"
	"github.com/mentorhub/payments-backend/internal/middleware"
)

// respondWithError maps service errors onto HTTP status codes so every
// handler reports the error taxonomy the same way.
func respondWithError(c *gin.Context, err error) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())

	var insufficientErr *apperrors.InsufficientBalanceError
	var staleErr *apperrors.StaleVersionError
	var procErr *portsprov.ProcessorError

	switch {
	case errors.Is(err, apperrors.ErrNotFound), errors.Is(err, apperrors.ErrAccountNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation), errors.Is(err, apperrors.ErrInactiveAccount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &insufficientErr):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":           insufficientErr.Error(),
			"account_id":      insufficientErr.AccountID,
			"required_cents":  insufficientErr.RequiredCents,
			"available_cents": insufficientErr.AvailableCents,
		})
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, apperrors.ErrPayoutAlreadyPaid),
		errors.Is(err, apperrors.ErrPayoutInProgress),
		errors.As(err, &staleErr),
		errors.Is(err, apperrors.ErrConflict),
		errors.Is(err, apperrors.ErrDuplicate):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrLockContention):
		// Retryable by the caller once the competing release finishes.
		c.JSON(http.StatusTooManyRequests, gin.H{"error": err.Error()})
	case errors.As(err, &procErr):
		logger.Error("Processor error", slog.String("code", procErr.Code), slog.Bool("retryable", procErr.Retryable))
		c.JSON(http.StatusBadGateway, gin.H{"error": procErr.Message, "retryable": procErr.Retryable})
	default:
		logger.Error("Unhandled service error", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
