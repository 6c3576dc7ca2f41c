package dto

import (
	"time"

	"github.com/mentorhub/payments-backend/internal/core/domain"
	"github.com/mentorhub/payments-backend/internal/utils/money"
)

// EnsureAccountRequest defines the payload for creating or fetching a
// ledger account by its natural key.
type EnsureAccountRequest struct {
	AccountType  domain.AccountType `json:"accountType" binding:"required,oneof=USER_BALANCE PLATFORM_ESCROW PLATFORM_REVENUE EXTERNAL_PROCESSOR"`
	OwnerID      *string            `json:"ownerID"`
	CurrencyCode string             `json:"currencyCode" binding:"required,currencycode"`
}

// TransferRequest defines the payload for a direct balance transfer.
type TransferRequest struct {
	FromAccountID  string `json:"fromAccountID" binding:"required"`
	ToAccountID    string `json:"toAccountID" binding:"required"`
	AmountCents    int64  `json:"amountCents" binding:"required,gt=0"`
	CurrencyCode   string `json:"currencyCode" binding:"required,currencycode"`
	ReferenceType  string `json:"referenceType"`
	ReferenceID    string `json:"referenceID"`
	Description    string `json:"description"`
	IdempotencyKey string `json:"idempotencyKey" binding:"required"`
}

// AccountResponse defines the data returned for a ledger account.
type AccountResponse struct {
	AccountID     string  `json:"accountID"`
	AccountType   string  `json:"accountType"`
	OwnerID       *string `json:"ownerID,omitempty"`
	CurrencyCode  string  `json:"currencyCode"`
	AllowNegative bool    `json:"allowNegative"`
	IsActive      bool    `json:"isActive"`
}

// BalanceResponse carries a derived balance in both minor units and
// display form.
type BalanceResponse struct {
	AccountID     string `json:"accountID"`
	BalanceCents  int64  `json:"balanceCents"`
	CurrencyCode  string `json:"currencyCode"`
	DisplayAmount string `json:"displayAmount"`
}

// EntryResponse defines the data returned for a ledger entry.
type EntryResponse struct {
	EntryID         string    `json:"entryID"`
	DebitAccountID  string    `json:"debitAccountID"`
	CreditAccountID string    `json:"creditAccountID"`
	AmountCents     int64     `json:"amountCents"`
	DisplayAmount   string    `json:"displayAmount"`
	CurrencyCode    string    `json:"currencyCode"`
	EntryType       string    `json:"entryType"`
	ReferenceType   string    `json:"referenceType,omitempty"`
	ReferenceID     string    `json:"referenceID,omitempty"`
	Description     string    `json:"description,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ListEntriesResponse wraps a page of entries.
type ListEntriesResponse struct {
	Entries []EntryResponse `json:"entries"`
}

// ToAccountResponse converts a domain LedgerAccount to AccountResponse.
func ToAccountResponse(a *domain.LedgerAccount) AccountResponse {
	return AccountResponse{
		AccountID:     a.AccountID,
		AccountType:   string(a.AccountType),
		OwnerID:       a.OwnerID,
		CurrencyCode:  a.CurrencyCode,
		AllowNegative: a.AllowNegative,
		IsActive:      a.IsActive,
	}
}

// ToEntryResponse converts a domain LedgerEntry to EntryResponse.
func ToEntryResponse(e *domain.LedgerEntry) EntryResponse {
	return EntryResponse{
		EntryID:         e.EntryID,
		DebitAccountID:  e.DebitAccountID,
		CreditAccountID: e.CreditAccountID,
		AmountCents:     e.AmountCents,
		DisplayAmount:   money.FormatCents(e.AmountCents, e.CurrencyCode),
		CurrencyCode:    e.CurrencyCode,
		EntryType:       string(e.EntryType),
		ReferenceType:   e.ReferenceType,
		ReferenceID:     e.ReferenceID,
		Description:     e.Description,
		CreatedAt:       e.CreatedAt,
	}
}

// ToEntryResponses converts a slice of domain entries to DTOs.
func ToEntryResponses(entries []domain.LedgerEntry) []EntryResponse {
	responses := make([]EntryResponse, len(entries))
	for i := range entries {
		responses[i] = ToEntryResponse(&entries[i])
	}
	return responses
}
