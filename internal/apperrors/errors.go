package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound indicates that a requested resource could not be found.
var ErrNotFound = errors.New("resource not found")

// ErrValidation indicates that input data failed validation checks.
var ErrValidation = errors.New("validation error")

// ErrDuplicate indicates that an attempt was made to create a resource that already exists.
var ErrDuplicate = errors.New("resource already exists")

// ErrConflict indicates that the operation conflicts with the current state of the resource.
var ErrConflict = errors.New("conflict with current resource state")

// ErrAccountNotFound indicates a ledger entry referenced an unknown account.
var ErrAccountNotFound = errors.New("ledger account not found")

// ErrInactiveAccount indicates a posting attempt against a deactivated account.
var ErrInactiveAccount = errors.New("ledger account is inactive")

// ErrLockContention indicates the distributed lock could not be acquired in time.
// Callers may retry the operation later.
var ErrLockContention = errors.New("could not acquire lock, resource busy")

// ErrPayoutAlreadyPaid indicates a refund was attempted after the payout settled.
var ErrPayoutAlreadyPaid = errors.New("payout already paid, refund not allowed")

// ErrPayoutInProgress indicates a refund was attempted while a payout is in flight.
var ErrPayoutInProgress = errors.New("payout in progress, refund not allowed")

// InsufficientBalanceError is returned when a debit would take an account below
// zero and the account does not allow a negative balance.
type InsufficientBalanceError struct {
	AccountID      string
	RequiredCents  int64
	AvailableCents int64
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient balance on account %s: required %d, available %d",
		e.AccountID, e.RequiredCents, e.AvailableCents)
}

// StaleVersionError is returned when an optimistic-lock update matched no rows
// because the row version moved on under us.
type StaleVersionError struct {
	Entity          string
	ID              string
	ExpectedVersion int64
}

func (e *StaleVersionError) Error() string {
	return fmt.Sprintf("stale %s %s: version %d no longer current", e.Entity, e.ID, e.ExpectedVersion)
}

func (e *StaleVersionError) Is(target error) bool {
	return target == ErrConflict
}

// AppError wraps an underlying error with an HTTP-ish status code and message.
type AppError struct {
	Code    int
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new AppError wrapping the given error.
func NewAppError(code int, message string, err error) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

// NewNotFoundError creates an AppError that also matches ErrNotFound.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: 404, Message: message, Err: ErrNotFound}
}
