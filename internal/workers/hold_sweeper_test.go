package workers_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/mentorhub/payments-backend/internal/apperrors"
	"github.com/mentorhub/payments-backend/internal/core/domain"
	"github.com/mentorhub/payments-backend/internal/workers"

	"github.com/jackc/pgx/v5"
)

// MockHoldRepository is a mock type for the HoldRepositoryFacade interface
type MockHoldRepository struct {
	mock.Mock
}

func (m *MockHoldRepository) SaveHoldInTx(ctx context.Context, tx pgx.Tx, hold domain.FundHold) error {
	args := m.Called(ctx, tx, hold)
	return args.Error(0)
}

func (m *MockHoldRepository) FindHoldByOrderID(ctx context.Context, orderID string) (*domain.FundHold, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FundHold), args.Error(1)
}

func (m *MockHoldRepository) FindHoldByOrderIDForUpdate(ctx context.Context, tx pgx.Tx, orderID string) (*domain.FundHold, error) {
	args := m.Called(ctx, tx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.FundHold), args.Error(1)
}

func (m *MockHoldRepository) MarkHoldReleasedInTx(ctx context.Context, tx pgx.Tx, hold *domain.FundHold, userID string, now time.Time) error {
	args := m.Called(ctx, tx, hold, userID, now)
	return args.Error(0)
}

func (m *MockHoldRepository) ListExpiredHolds(ctx context.Context, asOf time.Time, limit int) ([]domain.FundHold, error) {
	args := m.Called(ctx, asOf, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FundHold), args.Error(1)
}

// MockEscrowReleaser is a mock type for the EscrowReleaser interface
type MockEscrowReleaser struct {
	mock.Mock
}

func (m *MockEscrowReleaser) ReleaseHold(ctx context.Context, orderID string, reason string) (*domain.PayoutRecord, error) {
	args := m.Called(ctx, orderID, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayoutRecord), args.Error(1)
}

type HoldSweeperTestSuite struct {
	suite.Suite
	holdRepo *MockHoldRepository
	releaser *MockEscrowReleaser
	sweeper  *workers.HoldSweeper
}

func (s *HoldSweeperTestSuite) SetupTest() {
	s.holdRepo = new(MockHoldRepository)
	s.releaser = new(MockEscrowReleaser)
	s.sweeper = workers.NewHoldSweeper(s.holdRepo, s.releaser, time.Minute, 100)
}

func (s *HoldSweeperTestSuite) TestSweep_ReleasesExpiredHolds() {
	holds := []domain.FundHold{
		{HoldID: "hold-1", PaymentOrderID: "order-1"},
		{HoldID: "hold-2", PaymentOrderID: "order-2"},
	}

	s.holdRepo.On("ListExpiredHolds", mock.Anything, mock.Anything, 100).Return(holds, nil)
	s.releaser.On("ReleaseHold", mock.Anything, "order-1", "hold_expired").
		Return(&domain.PayoutRecord{PayoutID: "payout-1"}, nil)
	s.releaser.On("ReleaseHold", mock.Anything, "order-2", "hold_expired").
		Return(&domain.PayoutRecord{PayoutID: "payout-2"}, nil)

	s.sweeper.Sweep(context.Background())

	s.releaser.AssertExpectations(s.T())
}

func (s *HoldSweeperTestSuite) TestSweep_ContinuesPastContendedHold() {
	holds := []domain.FundHold{
		{HoldID: "hold-1", PaymentOrderID: "order-1"},
		{HoldID: "hold-2", PaymentOrderID: "order-2"},
	}

	s.holdRepo.On("ListExpiredHolds", mock.Anything, mock.Anything, 100).Return(holds, nil)
	s.releaser.On("ReleaseHold", mock.Anything, "order-1", "hold_expired").
		Return(nil, apperrors.ErrLockContention)
	s.releaser.On("ReleaseHold", mock.Anything, "order-2", "hold_expired").
		Return(&domain.PayoutRecord{PayoutID: "payout-2"}, nil)

	s.sweeper.Sweep(context.Background())

	s.releaser.AssertExpectations(s.T())
}

func (s *HoldSweeperTestSuite) TestSweep_NoExpiredHolds() {
	s.holdRepo.On("ListExpiredHolds", mock.Anything, mock.Anything, 100).Return([]domain.FundHold{}, nil)

	s.sweeper.Sweep(context.Background())

	s.releaser.AssertNotCalled(s.T(), "ReleaseHold", mock.Anything, mock.Anything, mock.Anything)
}

func (s *HoldSweeperTestSuite) TestRun_StopsOnContextCancel() {
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.sweeper.Run(ctx, discardLogger())
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		s.Fail("sweeper did not stop after context cancellation")
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHoldSweeperTestSuite(t *testing.T) {
	suite.Run(t, new(HoldSweeperTestSuite))
}
