package service

import (
	"context"
	"fmt"
	"time"

	"loyalty-ledger/internal/core/domain"
	"loyalty-ledger/internal/core/ports"
	"loyalty-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

// LedgerServiceImpl implements ports.LedgerService.
type LedgerServiceImpl struct {
	ledgerRepo ports.LedgerRepository
	log        zerolog.Logger
}

// NewLedgerService creates a new LedgerServiceImpl.
func NewLedgerService(ledgerRepo ports.LedgerRepository, log zerolog.Logger) *LedgerServiceImpl {
	return &LedgerServiceImpl{ledgerRepo: ledgerRepo, log: log}
}

// AppendEntry appends one signed entry inside the caller's transaction.
//
// The append is idempotent per (tenant, idempotency key, operation type): a
// replay returns the stored entry's id and balance instead of writing again.
// When two callers race past the read check, the unique constraint rejects the
// loser and the loser re-reads the winner's row. Either way exactly one entry
// exists and both callers see the same result.
func (s *LedgerServiceImpl) AppendEntry(ctx context.Context, tx pgx.Tx, p ports.AppendParams) (*domain.AppendResult, error) {
	if p.Amount == 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if p.IdempotencyKey == "" {
		return nil, apperror.ErrMissingIdempotencyKey()
	}

	existing, err := s.ledgerRepo.GetByIdempotencyKeyTx(ctx, tx, p.TenantID, p.IdempotencyKey, p.OperationType)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("idempotency check: %w", err))
	}
	if existing != nil {
		return &domain.AppendResult{ID: existing.ID, BalanceAfter: existing.BalanceAfter}, nil
	}

	balance, err := s.ledgerRepo.SumAmountsTx(ctx, tx, p.TenantID, p.CustomerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("derive balance: %w", err))
	}

	entry := &domain.LedgerEntry{
		ID:             uuid.New(),
		TenantID:       p.TenantID,
		CustomerID:     p.CustomerID,
		TransactionID:  p.TransactionID,
		Amount:         p.Amount,
		BalanceAfter:   balance + p.Amount,
		IdempotencyKey: p.IdempotencyKey,
		OperationType:  p.OperationType,
		CreatedAt:      time.Now().UTC(),
	}

	if err := s.ledgerRepo.Insert(ctx, tx, entry); err != nil {
		if err == ports.ErrDuplicateEntry {
			// Lost the insert race. The repo reports the duplicate as a clean
			// zero-row insert, so this transaction is still live to re-read
			// the winner's authoritative row.
			winner, rerr := s.ledgerRepo.GetByIdempotencyKeyTx(ctx, tx, p.TenantID, p.IdempotencyKey, p.OperationType)
			if rerr != nil {
				return nil, apperror.InternalError(fmt.Errorf("re-read after duplicate: %w", rerr))
			}
			if winner == nil {
				return nil, apperror.InternalError(fmt.Errorf("duplicate reported but no entry found for key %s", p.IdempotencyKey))
			}
			s.log.Debug().
				Str("idempotency_key", p.IdempotencyKey).
				Str("entry_id", winner.ID.String()).
				Msg("idempotency race self-healed")
			return &domain.AppendResult{ID: winner.ID, BalanceAfter: winner.BalanceAfter}, nil
		}
		return nil, apperror.InternalError(fmt.Errorf("append ledger entry: %w", err))
	}

	return &domain.AppendResult{ID: entry.ID, BalanceAfter: entry.BalanceAfter}, nil
}

// GetEntryByIdempotencyKey resolves the stored entry for a key.
func (s *LedgerServiceImpl) GetEntryByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string, op domain.OperationType) (*domain.LedgerEntry, error) {
	entry, err := s.ledgerRepo.GetByIdempotencyKey(ctx, tenantID, key, op)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup ledger entry: %w", err))
	}
	return entry, nil
}

// GetBalance derives the customer's balance by summing the full entry history.
func (s *LedgerServiceImpl) GetBalance(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	sum, err := s.ledgerRepo.SumAmounts(ctx, tenantID, customerID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("sum ledger: %w", err))
	}
	return sum, nil
}

// GetBalanceTx derives the balance inside the caller's transaction.
func (s *LedgerServiceImpl) GetBalanceTx(ctx context.Context, tx pgx.Tx, tenantID, customerID uuid.UUID) (int64, error) {
	sum, err := s.ledgerRepo.SumAmountsTx(ctx, tx, tenantID, customerID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("sum ledger in tx: %w", err))
	}
	return sum, nil
}

// GetLedgerHistory returns one page of entries, newest first.
func (s *LedgerServiceImpl) GetLedgerHistory(ctx context.Context, tenantID, customerID uuid.UUID, page, limit int) (*domain.LedgerPage, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	entries, total, err := s.ledgerRepo.List(ctx, tenantID, customerID, limit, (page-1)*limit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list ledger: %w", err))
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &domain.LedgerPage{
		Entries:    entries,
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
	}, nil
}
