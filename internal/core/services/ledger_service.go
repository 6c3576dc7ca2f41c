package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"log/slog"

	"github.com/mentorhub/payments-backend/internal/apperrors"
	"github.com/mentorhub/payments-backend/internal/core/domain"
	portsrepo "github.com/mentorhub/payments-backend/internal/core/ports/repositories"
	portssvc "github.com/mentorhub/payments-backend/internal/core/ports/services"
	"github.com/mentorhub/payments-backend/internal/dto"
)

// LedgerService implements the double-entry ledger operations on top of the
// account and entry repositories.
type LedgerService struct {
	BaseService
	accountRepo portsrepo.AccountRepositoryWithTx
	entryRepo   portsrepo.EntryRepositoryWithTx
}

// NewLedgerService creates a LedgerService.
func NewLedgerService(accountRepo portsrepo.AccountRepositoryWithTx, entryRepo portsrepo.EntryRepositoryWithTx) *LedgerService {
	return &LedgerService{
		accountRepo: accountRepo,
		entryRepo:   entryRepo,
	}
}

var _ portssvc.LedgerSvcFacade = (*LedgerService)(nil)

// EnsureAccount returns the account for (type, owner, currency), creating it
// on first use. Only the external processor account may carry a negative
// balance.
func (s *LedgerService) EnsureAccount(ctx context.Context, req dto.EnsureAccountRequest, userID string) (*domain.LedgerAccount, error) {
	if req.AccountType == domain.UserBalance && req.OwnerID == nil {
		return nil, fmt.Errorf("%w: owner is required for %s accounts", apperrors.ErrValidation, domain.UserBalance)
	}
	if req.AccountType != domain.UserBalance && req.OwnerID != nil {
		return nil, fmt.Errorf("%w: %s accounts have no owner", apperrors.ErrValidation, req.AccountType)
	}

	now := time.Now()
	account := domain.LedgerAccount{
		AccountID:     uuid.NewString(),
		AccountType:   req.AccountType,
		OwnerID:       req.OwnerID,
		CurrencyCode:  strings.ToUpper(req.CurrencyCode),
		AllowNegative: req.AccountType == domain.ExternalProcessor,
		IsActive:      true,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     userID,
			LastUpdatedAt: now,
			LastUpdatedBy: userID,
		},
	}

	stored, err := s.accountRepo.EnsureAccount(ctx, account)
	if err != nil {
		s.LogError(ctx, err, "Failed to ensure ledger account",
			slog.String("account_type", string(req.AccountType)))
		return nil, fmt.Errorf("failed to ensure ledger account: %w", err)
	}
	return stored, nil
}

// GetAccountByID retrieves a ledger account.
func (s *LedgerService) GetAccountByID(ctx context.Context, accountID string) (*domain.LedgerAccount, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", accountID, err)
	}
	return account, nil
}

// GetAccountByOwner retrieves the account for (type, owner, currency).
func (s *LedgerService) GetAccountByOwner(ctx context.Context, accountType domain.AccountType, ownerID *string, currencyCode string) (*domain.LedgerAccount, error) {
	account, err := s.accountRepo.FindAccountByOwner(ctx, accountType, ownerID, strings.ToUpper(currencyCode))
	if err != nil {
		return nil, fmt.Errorf("failed to get account by owner: %w", err)
	}
	return account, nil
}

// DeactivateAccount blocks further postings to the account. History stays.
func (s *LedgerService) DeactivateAccount(ctx context.Context, accountID string, userID string) error {
	if err := s.accountRepo.SetAccountActive(ctx, accountID, false, userID, time.Now()); err != nil {
		return fmt.Errorf("failed to deactivate account %s: %w", accountID, err)
	}
	s.LogInfo(ctx, "Ledger account deactivated", slog.String("account_id", accountID))
	return nil
}

// ReactivateAccount lifts a prior deactivation.
func (s *LedgerService) ReactivateAccount(ctx context.Context, accountID string, userID string) error {
	if err := s.accountRepo.SetAccountActive(ctx, accountID, true, userID, time.Now()); err != nil {
		return fmt.Errorf("failed to reactivate account %s: %w", accountID, err)
	}
	s.LogInfo(ctx, "Ledger account reactivated", slog.String("account_id", accountID))
	return nil
}

// GetBalance derives the account balance from its entries.
func (s *LedgerService) GetBalance(ctx context.Context, accountID string) (int64, error) {
	balance, err := s.accountRepo.GetBalance(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("failed to get balance for account %s: %w", accountID, err)
	}
	return balance, nil
}

// RecordEntry posts a single double-entry record.
func (s *LedgerService) RecordEntry(ctx context.Context, params domain.RecordEntryParams, createdBy string) (*domain.LedgerEntry, error) {
	entries, err := s.RecordEntries(ctx, []domain.RecordEntryParams{params}, createdBy)
	if err != nil {
		return nil, err
	}
	return &entries[0], nil
}

// RecordEntries atomically posts a batch: either every entry commits or none
// do. Validation happens sequentially against row-locked balances, so a batch
// can never overdraw an account through interleaved writers.
func (s *LedgerService) RecordEntries(ctx context.Context, params []domain.RecordEntryParams, createdBy string) ([]domain.LedgerEntry, error) {
	if len(params) == 0 {
		return []domain.LedgerEntry{}, nil
	}

	tx, err := s.entryRepo.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = s.entryRepo.Rollback(ctx, tx)
	}()

	entries, err := s.entryRepo.RecordEntriesInTx(ctx, tx, params, createdBy, time.Now())
	if err != nil {
		s.LogError(ctx, err, "Failed to record ledger entries", slog.Int("batch_size", len(params)))
		return nil, err
	}

	if err := s.entryRepo.Commit(ctx, tx); err != nil {
		return nil, fmt.Errorf("failed to commit ledger entries: %w", err)
	}

	s.LogInfo(ctx, "Ledger entries recorded", slog.Int("count", len(entries)))
	return entries, nil
}

// Transfer posts a TRANSFER entry between two accounts.
func (s *LedgerService) Transfer(ctx context.Context, req dto.TransferRequest, createdBy string) (*domain.LedgerEntry, error) {
	referenceType := req.ReferenceType
	if referenceType == "" {
		referenceType = "transfer"
	}

	return s.RecordEntry(ctx, domain.RecordEntryParams{
		DebitAccountID:  req.FromAccountID,
		CreditAccountID: req.ToAccountID,
		AmountCents:     req.AmountCents,
		CurrencyCode:    strings.ToUpper(req.CurrencyCode),
		EntryType:       domain.Transfer,
		ReferenceType:   referenceType,
		ReferenceID:     req.ReferenceID,
		Description:     req.Description,
		IdempotencyKey:  req.IdempotencyKey,
	}, createdBy)
}

// ListEntriesForAccount lists entries touching the account, newest first.
func (s *LedgerService) ListEntriesForAccount(ctx context.Context, accountID string, limit, offset int) ([]domain.LedgerEntry, error) {
	// Surface a not-found for unknown accounts instead of an empty page.
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}

	entries, err := s.entryRepo.FindEntriesByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for account %s: %w", accountID, err)
	}
	return entries, nil
}

// ListEntriesByReference lists entries for a business reference, oldest first.
func (s *LedgerService) ListEntriesByReference(ctx context.Context, referenceType, referenceID string) ([]domain.LedgerEntry, error) {
	entries, err := s.entryRepo.FindEntriesByReference(ctx, referenceType, referenceID)
	if err != nil {
		return nil, fmt.Errorf("failed to list entries for %s %s: %w", referenceType, referenceID, err)
	}
	return entries, nil
}
