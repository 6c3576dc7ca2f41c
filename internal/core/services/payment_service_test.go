package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"

	"github.com/mentorhub/payments-backend/internal/apperrors"
	"github.com/mentorhub/payments-backend/internal/core/domain"
	"github.com/mentorhub/payments-backend/internal/core/services"
	"github.com/mentorhub/payments-backend/internal/dto"
)

// MockPaymentStrategy is a mock type for the PaymentStrategy interface
type MockPaymentStrategy struct {
	mock.Mock
}

func (m *MockPaymentStrategy) InitiatePayment(ctx context.Context, order *domain.PaymentOrder) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockPaymentStrategy) OnPaymentSucceeded(ctx context.Context, orderID string) error {
	args := m.Called(ctx, orderID)
	return args.Error(0)
}

func (m *MockPaymentStrategy) OnPaymentFailed(ctx context.Context, orderID string, reason string) error {
	args := m.Called(ctx, orderID, reason)
	return args.Error(0)
}

func (m *MockPaymentStrategy) RefundPayment(ctx context.Context, orderID string, amountCents *int64, reason string, userID string) (*domain.PaymentOrder, error) {
	args := m.Called(ctx, orderID, amountCents, reason, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.PaymentOrder), args.Error(1)
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

type PaymentServiceTestSuite struct {
	suite.Suite
	orderRepo *MockOrderRepository
	direct    *MockPaymentStrategy
	escrow    *MockPaymentStrategy
	releaser  *MockEscrowReleaser
	service   *services.PaymentService
}

func (s *PaymentServiceTestSuite) SetupTest() {
	s.orderRepo = new(MockOrderRepository)
	s.direct = new(MockPaymentStrategy)
	s.escrow = new(MockPaymentStrategy)
	s.releaser = new(MockEscrowReleaser)
	s.service = services.NewPaymentService(s.orderRepo, s.direct, s.escrow, s.releaser)
}

func (s *PaymentServiceTestSuite) TestCreatePayment_DispatchesToDirect() {
	s.direct.On("InitiatePayment", mock.Anything, mock.MatchedBy(func(o *domain.PaymentOrder) bool {
		return o.State() == domain.OrderDraft &&
			o.AmountCents == 10000 &&
			o.CurrencyCode == "USD" &&
			o.StrategyType == domain.StrategyDirect &&
			o.Version == 1
	})).Return(nil)

	order, err := s.service.CreatePayment(context.Background(), dto.CreatePaymentRequest{
		AmountCents:  10000,
		CurrencyCode: "usd",
		Strategy:     "DIRECT",
	}, "payer-1")

	s.NoError(err)
	s.Equal("payer-1", order.PayerID)
	s.direct.AssertExpectations(s.T())
	s.escrow.AssertNotCalled(s.T(), "InitiatePayment", mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestCreatePayment_DispatchesToEscrow() {
	s.escrow.On("InitiatePayment", mock.Anything, mock.Anything).Return(nil)

	_, err := s.service.CreatePayment(context.Background(), dto.CreatePaymentRequest{
		AmountCents:  10000,
		CurrencyCode: "USD",
		Strategy:     "ESCROW",
		Metadata:     map[string]string{"recipient_id": "mentor-1"},
	}, "payer-1")

	s.NoError(err)
	s.escrow.AssertExpectations(s.T())
}

func (s *PaymentServiceTestSuite) TestCreatePayment_UnknownStrategy() {
	_, err := s.service.CreatePayment(context.Background(), dto.CreatePaymentRequest{
		AmountCents:  10000,
		CurrencyCode: "USD",
		Strategy:     "SUBSCRIPTION",
	}, "payer-1")

	s.ErrorIs(err, apperrors.ErrValidation)
}

func (s *PaymentServiceTestSuite) TestHandlePaymentSucceeded_RoutesByIntent() {
	order := newOrderInState("order-1", 10000, domain.StrategyEscrow, domain.OrderPending, nil)

	s.orderRepo.On("FindOrderByProcessorIntentID", mock.Anything, "pi_order-1").Return(order, nil)
	s.escrow.On("OnPaymentSucceeded", mock.Anything, "order-1").Return(nil)

	err := s.service.HandlePaymentSucceeded(context.Background(), "pi_order-1")

	s.NoError(err)
	s.escrow.AssertExpectations(s.T())
	s.direct.AssertNotCalled(s.T(), "OnPaymentSucceeded", mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestHandlePaymentFailed_RoutesByIntent() {
	order := newOrderInState("order-1", 10000, domain.StrategyDirect, domain.OrderPending, nil)

	s.orderRepo.On("FindOrderByProcessorIntentID", mock.Anything, "pi_order-1").Return(order, nil)
	s.direct.On("OnPaymentFailed", mock.Anything, "order-1", "card_declined").Return(nil)

	err := s.service.HandlePaymentFailed(context.Background(), "pi_order-1", "card_declined")

	s.NoError(err)
	s.direct.AssertExpectations(s.T())
}

func (s *PaymentServiceTestSuite) TestHandlePaymentSucceeded_UnknownIntent() {
	s.orderRepo.On("FindOrderByProcessorIntentID", mock.Anything, "pi_unknown").Return(nil, apperrors.ErrNotFound)

	err := s.service.HandlePaymentSucceeded(context.Background(), "pi_unknown")

	s.ErrorIs(err, apperrors.ErrNotFound)
}

func (s *PaymentServiceTestSuite) TestCancelPayment_FromPending() {
	order := newOrderInState("order-1", 10000, domain.StrategyDirect, domain.OrderPending, nil)

	s.orderRepo.On("Begin", mock.Anything).Return(nil, nil)
	s.orderRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil)
	s.orderRepo.On("FindOrderByIDForUpdate", mock.Anything, mock.Anything, "order-1").Return(order, nil)
	s.orderRepo.On("UpdateOrderInTx", mock.Anything, mock.Anything, order).Return(nil)
	s.orderRepo.On("Commit", mock.Anything, mock.Anything).Return(nil)

	cancelled, err := s.service.CancelPayment(context.Background(), "order-1", "payer-1")

	s.NoError(err)
	s.Equal(domain.OrderCancelled, cancelled.State())
}

func (s *PaymentServiceTestSuite) TestCancelPayment_RejectedAfterCapture() {
	order := newOrderInState("order-1", 10000, domain.StrategyDirect, domain.OrderSettled, nil)

	s.orderRepo.On("Begin", mock.Anything).Return(nil, nil)
	s.orderRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil)
	s.orderRepo.On("FindOrderByIDForUpdate", mock.Anything, mock.Anything, "order-1").Return(order, nil)

	_, err := s.service.CancelPayment(context.Background(), "order-1", "payer-1")

	s.ErrorIs(err, domain.ErrInvalidTransition)
	s.orderRepo.AssertNotCalled(s.T(), "UpdateOrderInTx", mock.Anything, mock.Anything, mock.Anything)
}

func (s *PaymentServiceTestSuite) TestRetryPayment_FromFailed() {
	order := newOrderInState("order-1", 10000, domain.StrategyDirect, domain.OrderFailed, nil)

	s.orderRepo.On("Begin", mock.Anything).Return(nil, nil)
	s.orderRepo.On("Rollback", mock.Anything, mock.Anything).Return(nil)
	s.orderRepo.On("FindOrderByIDForUpdate", mock.Anything, mock.Anything, "order-1").Return(order, nil)
	s.orderRepo.On("UpdateOrderInTx", mock.Anything, mock.Anything, order).Return(nil)
	s.orderRepo.On("Commit", mock.Anything, mock.Anything).Return(nil)

	retried, err := s.service.RetryPayment(context.Background(), "order-1", "payer-1")

	s.NoError(err)
	s.Equal(domain.OrderPending, retried.State())
	s.Nil(retried.FailureReason)
}

func (s *PaymentServiceTestSuite) TestReleaseHold_DefaultsReason() {
	payout := &domain.PayoutRecord{PayoutID: "payout-1"}
	s.releaser.On("ReleaseHold", mock.Anything, "order-1", "service_completed").Return(payout, nil)

	got, err := s.service.ReleaseHold(context.Background(), "order-1", "")

	s.NoError(err)
	s.Equal("payout-1", got.PayoutID)
	s.releaser.AssertExpectations(s.T())
}

func (s *PaymentServiceTestSuite) TestRefundPayment_DispatchesByOrderStrategy() {
	order := newOrderInState("order-1", 10000, domain.StrategyEscrow, domain.OrderHeld, nil)

	s.orderRepo.On("FindOrderByID", mock.Anything, "order-1").Return(order, nil)
	s.escrow.On("RefundPayment", mock.Anything, "order-1", (*int64)(nil), "dispute", "user-1").Return(order, nil)

	_, err := s.service.RefundPayment(context.Background(), "order-1", nil, "dispute", "user-1")

	s.NoError(err)
	s.escrow.AssertExpectations(s.T())
}

func TestPaymentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PaymentServiceTestSuite))
}
