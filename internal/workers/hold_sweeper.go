package workers

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/mentorhub/payments-backend/internal/apperrors"
	"github.com/mentorhub/payments-backend/internal/core/domain"
	portsrepo "github.com/mentorhub/payments-backend/internal/core/ports/repositories"
	portssvc "github.com/mentorhub/payments-backend/internal/core/ports/services"
	"github.com/mentorhub/payments-backend/internal/middleware"
)

const expiryReleaseReason = "hold_expired"

// HoldSweeper periodically releases escrow holds whose deadline has passed.
// Releases go through the regular release path, so the sweeper inherits its
// locking and idempotency and can safely race manual releases.
type HoldSweeper struct {
	holdRepo  portsrepo.HoldRepositoryFacade
	releaser  portssvc.EscrowReleaser
	interval  time.Duration
	batchSize int
}

func NewHoldSweeper(holdRepo portsrepo.HoldRepositoryFacade, releaser portssvc.EscrowReleaser, interval time.Duration, batchSize int) *HoldSweeper {
	return &HoldSweeper{
		holdRepo:  holdRepo,
		releaser:  releaser,
		interval:  interval,
		batchSize: batchSize,
	}
}

// Run blocks until ctx is cancelled, sweeping once per interval.
func (s *HoldSweeper) Run(ctx context.Context, logger *slog.Logger) {
	logger = logger.With(slog.String("worker", "hold_sweeper"))
	ctx = middleware.WithLogger(ctx, logger)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	logger.Info("Hold sweeper started", slog.Duration("interval", s.interval))
	for {
		select {
		case <-ctx.Done():
			logger.Info("Hold sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx, logger)
		}
	}
}

// Sweep releases every expired hold in the current batch. Exported for the
// benefit of callers that want an immediate pass on startup.
func (s *HoldSweeper) Sweep(ctx context.Context) {
	s.sweep(ctx, middleware.GetLoggerFromCtx(ctx))
}

func (s *HoldSweeper) sweep(ctx context.Context, logger *slog.Logger) {
	holds, err := s.holdRepo.ListExpiredHolds(ctx, time.Now().UTC(), s.batchSize)
	if err != nil {
		logger.Error("Failed to list expired holds", slog.String("error", err.Error()))
		return
	}
	if len(holds) == 0 {
		return
	}

	logger.Info("Releasing expired holds", slog.Int("count", len(holds)))
	for _, hold := range holds {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.releaser.ReleaseHold(ctx, hold.PaymentOrderID, expiryReleaseReason); err != nil {
			// Contention and concurrent releases resolve themselves; the
			// next pass picks up anything still expired.
			if errors.Is(err, apperrors.ErrLockContention) || errors.Is(err, domain.ErrInvalidTransition) {
				logger.Info("Skipping contended hold", slog.String("order_id", hold.PaymentOrderID), slog.String("error", err.Error()))
				continue
			}
			logger.Error("Failed to release expired hold",
				slog.String("order_id", hold.PaymentOrderID),
				slog.String("hold_id", hold.HoldID),
				slog.String("error", err.Error()))
		}
	}
}
