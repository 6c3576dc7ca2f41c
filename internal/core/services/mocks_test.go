package services_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"

	"github.com/mentorhub/payments-backend/internal/core/domain"
	portsprov "github.com/mentorhub/payments-backend/internal/core/ports/providers"
)

// MockAccountRepository is a mock type for the AccountRepositoryWithTx interface
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.LedgerAccount, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerAccount), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByOwner(ctx context.Context, accountType domain.AccountType, ownerID *string, currencyCode string) (*domain.LedgerAccount, error) {
	args := m.Called(ctx, accountType, ownerID, currencyCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerAccount), args.Error(1)
}

func (m *MockAccountRepository) GetBalance(ctx context.Context, accountID string) (int64, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAccountRepository) EnsureAccount(ctx context.Context, account domain.LedgerAccount) (*domain.LedgerAccount, error) {
	args := m.Called(ctx, account)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LedgerAccount), args.Error(1)
}

func (m *MockAccountRepository) SetAccountActive(ctx context.Context, accountID string, active bool, userID string, now time.Time) error {
	args := m.Called(ctx, accountID, active, userID, now)
	return args.Error(0)
}

func (m *MockAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.LedgerAccount, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.LedgerAccount), args.Error(1)
}

func (m *MockAccountRepository) GetBalancesInTx(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]int64, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int64), args.Error(1)
}

func (m *MockAccountRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockAccountRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockAccountRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockEntryRepository is a mock type for the EntryRepositoryWithTx interface
type MockEntryRepository struct {
	mock.Mock
}

func (m *MockEntryRepository) FindEntriesByAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockEntryRepository) FindEntriesByReference(ctx context.Context, referenceType, referenceID string) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, referenceType, referenceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockEntryRepository) RecordEntriesInTx(ctx context.Context, tx pgx.Tx, params []domain.RecordEntryParams, createdBy string, now time.Time) ([]domain.LedgerEntry, error) {
	args := m.Called(ctx, tx, params, createdBy, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LedgerEntry), args.Error(1)
}

func (m *MockEntryRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockEntryRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockEntryRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

// MockOrderRepository is a mock type for the OrderRepositoryWithTx interface
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) FindOrderByID(ctx context.Context, orderID string) (*domain.PaymentOrder, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentOrder), args.Error(1)
}

func (m *MockOrderRepository) FindOrderByProcessorIntentID(ctx context.Context, intentID string) (*domain.PaymentOrder, error) {
	args := m.Called(ctx, intentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentOrder), args.Error(1)
}

func (m *MockOrderRepository) SaveOrder(ctx context.Context, order *domain.PaymentOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) UpdateOrder(ctx context.Context, order *domain.PaymentOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindOrderByIDForUpdate(ctx context.Context, tx pgx.Tx, orderID string) (*domain.PaymentOrder, error) {
	args := m.Called(ctx, tx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentOrder), args.Error(1)
}

func (m *MockOrderRepository) UpdateOrderInTx(ctx context.Context, tx pgx.Tx, order *domain.PaymentOrder) error {
	args := m.Called(ctx, tx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) Begin(ctx context.Context) (pgx.Tx, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(pgx.Tx), args.Error(1)
}

func (m *MockOrderRepository) Commit(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

func (m *MockOrderRepository) Rollback(ctx context.Context, tx pgx.Tx) error {
	args := m.Called(ctx, tx)
	return args.Error(0)
}

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

// MockPayoutRepository is a mock type for the PayoutRepositoryFacade interface
type MockPayoutRepository struct {
	mock.Mock
}

func (m *MockPayoutRepository) SavePayoutInTx(ctx context.Context, tx pgx.Tx, payout domain.PayoutRecord) error {
	args := m.Called(ctx, tx, payout)
	return args.Error(0)
}

func (m *MockPayoutRepository) FindPayoutByID(ctx context.Context, payoutID string) (*domain.PayoutRecord, error) {
	args := m.Called(ctx, payoutID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayoutRecord), args.Error(1)
}

func (m *MockPayoutRepository) FindPayoutByOrderID(ctx context.Context, orderID string) (*domain.PayoutRecord, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PayoutRecord), args.Error(1)
}

func (m *MockPayoutRepository) UpdatePayoutState(ctx context.Context, payoutID string, state domain.PayoutState, userID string, now time.Time) error {
	args := m.Called(ctx, payoutID, state, userID, now)
	return args.Error(0)
}

// MockConnectedAccountRepository is a mock type for the ConnectedAccountRepository interface
type MockConnectedAccountRepository struct {
	mock.Mock
}

func (m *MockConnectedAccountRepository) FindConnectedAccountByUserID(ctx context.Context, userID string) (*domain.ConnectedAccount, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ConnectedAccount), args.Error(1)
}

func (m *MockConnectedAccountRepository) SaveConnectedAccount(ctx context.Context, account domain.ConnectedAccount) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

// MockPaymentProcessor is a mock type for the PaymentProcessor interface
type MockPaymentProcessor struct {
	mock.Mock
}

func (m *MockPaymentProcessor) CreateChargeIntent(ctx context.Context, params portsprov.ChargeIntentParams) (*portsprov.ChargeIntent, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portsprov.ChargeIntent), args.Error(1)
}

func (m *MockPaymentProcessor) CreateRefund(ctx context.Context, params portsprov.RefundParams) (*portsprov.RefundResult, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*portsprov.RefundResult), args.Error(1)
}

// MockReleaseLocker is a mock type for the ReleaseLocker interface
type MockReleaseLocker struct {
	mock.Mock
}

func (m *MockReleaseLocker) Acquire(ctx context.Context, key string) (portsprov.ReleaseLock, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(portsprov.ReleaseLock), args.Error(1)
}

// MockReleaseLock is a mock type for the ReleaseLock interface
type MockReleaseLock struct {
	mock.Mock
}

func (m *MockReleaseLock) Release(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockReleaseLock) Extend(ctx context.Context, ttl time.Duration) error {
	args := m.Called(ctx, ttl)
	return args.Error(0)
}
