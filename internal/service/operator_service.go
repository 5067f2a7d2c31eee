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

// OperatorServiceImpl implements ports.OperatorService: manual adjustments and
// reversals, the privileged write paths.
type OperatorServiceImpl struct {
	txRepo       ports.TransactionRepository
	customerRepo ports.CustomerRepository
	ledgerSvc    ports.LedgerService
	outboxSvc    ports.OutboxService
	auditSvc     ports.AuditService
	transactor   ports.DBTransactor
	log          zerolog.Logger
}

// NewOperatorService creates a new OperatorServiceImpl.
func NewOperatorService(
	txRepo ports.TransactionRepository,
	customerRepo ports.CustomerRepository,
	ledgerSvc ports.LedgerService,
	outboxSvc ports.OutboxService,
	auditSvc ports.AuditService,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *OperatorServiceImpl {
	return &OperatorServiceImpl{
		txRepo:       txRepo,
		customerRepo: customerRepo,
		ledgerSvc:    ledgerSvc,
		outboxSvc:    outboxSvc,
		auditSvc:     auditSvc,
		transactor:   transactor,
		log:          log,
	}
}

// ManualAdjustment applies a signed correction to a customer's balance. Unlike
// redemption there is no sufficiency check: adjustments may drive the balance
// negative. Replays with the same idempotency key return the original outcome.
func (s *OperatorServiceImpl) ManualAdjustment(ctx context.Context, req ports.ManualAdjustmentRequest) (*ports.AdjustmentResult, error) {
	if req.Amount == 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.IdempotencyKey == "" {
		return nil, apperror.ErrMissingIdempotencyKey()
	}
	if req.Reason == "" {
		return nil, apperror.Validation("Adjustment reason is required")
	}

	existing, err := s.txRepo.GetByIdempotencyKey(ctx, req.TenantID, req.IdempotencyKey)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("db idempotency check: %w", err))
	}
	if existing != nil {
		return s.resultFromAdjustment(ctx, req.TenantID, existing)
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	customer, err := s.customerRepo.LockForUpdate(ctx, dbTx, req.TenantID, req.CustomerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock customer: %w", err))
	}
	if customer == nil {
		return nil, apperror.ErrNotFound("customer")
	}

	txType := domain.TransactionTypeIssue
	if req.Amount < 0 {
		txType = domain.TransactionTypeRedeem
	}

	now := time.Now().UTC()
	userID := req.UserID
	txn := &domain.Transaction{
		ID:             uuid.New(),
		TenantID:       req.TenantID,
		CustomerID:     req.CustomerID,
		Type:           txType,
		Amount:         req.Amount,
		Status:         domain.TransactionStatusCompleted,
		IdempotencyKey: req.IdempotencyKey,
		Metadata: &domain.TransactionMetadata{
			SchemaVersion: domain.MetadataSchemaVersion,
			Type:          string(domain.AuditActionManualAdjustment),
			Reason:        req.Reason,
			AdjustedBy:    &userID,
		},
		CreatedAt: now,
	}

	appendRes, err := s.ledgerSvc.AppendEntry(ctx, dbTx, ports.AppendParams{
		TenantID:       req.TenantID,
		CustomerID:     req.CustomerID,
		Amount:         req.Amount,
		IdempotencyKey: req.IdempotencyKey,
		TransactionID:  txn.ID,
		OperationType:  domain.OperationTypeManualAdjustment,
	})
	if err != nil {
		return nil, err
	}

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		if err == ports.ErrDuplicateEntry {
			return s.replayAdjustmentAfterRace(ctx, req.TenantID, req.IdempotencyKey)
		}
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	if err := s.writeAdjustmentEvent(ctx, dbTx, req, txn.ID, appendRes.BalanceAfter); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.auditSvc.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		TenantID:     req.TenantID,
		UserID:       &userID,
		Action:       domain.AuditActionManualAdjustment,
		ResourceType: "transaction",
		ResourceID:   txn.ID.String(),
		Metadata:     fmt.Sprintf(`{"amount":%d,"reason":%q}`, req.Amount, req.Reason),
		CreatedAt:    now,
	})

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("customer_id", req.CustomerID.String()).
		Str("user_id", req.UserID.String()).
		Int64("amount", req.Amount).
		Int64("balance", appendRes.BalanceAfter).
		Msg("manual adjustment applied")

	return &ports.AdjustmentResult{
		TransactionID: txn.ID,
		Amount:        req.Amount,
		BalanceAfter:  appendRes.BalanceAfter,
	}, nil
}

// ReverseTransaction undoes a completed transaction by appending a new entry
// with the exact negated amount. The reversal's idempotency key is derived
// solely from the original transaction id, so retrying a reversal converges on
// the single existing reversal instead of reversing twice.
func (s *OperatorServiceImpl) ReverseTransaction(ctx context.Context, req ports.ReverseTransactionRequest) (*ports.AdjustmentResult, error) {
	if req.Reason == "" {
		return nil, apperror.Validation("Reversal reason is required")
	}

	original, err := s.txRepo.GetByID(ctx, req.TenantID, req.TransactionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup original transaction: %w", err))
	}
	if original == nil {
		return nil, apperror.ErrNotFound("transaction")
	}
	if original.Status == domain.TransactionStatusFailed {
		return nil, apperror.ErrInvalidState("cannot reverse a failed transaction")
	}

	result, err := s.ManualAdjustment(ctx, ports.ManualAdjustmentRequest{
		TenantID:       req.TenantID,
		CustomerID:     original.CustomerID,
		Amount:         -original.Amount,
		Reason:         req.Reason,
		UserID:         req.UserID,
		IdempotencyKey: domain.BuildReversalIdempotencyKey(original.ID),
	})
	if err != nil {
		return nil, err
	}

	if !original.IsReversed() {
		now := time.Now().UTC()
		meta := original.Metadata
		if meta == nil {
			meta = &domain.TransactionMetadata{SchemaVersion: domain.MetadataSchemaVersion}
		}
		meta.Reversed = true
		meta.ReversalTransactionID = &result.TransactionID
		meta.ReversalReason = req.Reason
		meta.ReversedAt = &now

		if err := s.txRepo.UpdateMetadata(ctx, req.TenantID, original.ID, meta); err != nil {
			// The reversal entry is durable; a lost back-reference is repairable.
			s.log.Error().Err(err).
				Str("tx_id", original.ID.String()).
				Msg("failed to mark original transaction reversed")
		}
	}

	userID := req.UserID
	s.auditSvc.Log(ctx, &domain.AuditLog{
		ID:           uuid.New(),
		TenantID:     req.TenantID,
		UserID:       &userID,
		Action:       domain.AuditActionTransactionReversed,
		ResourceType: "transaction",
		ResourceID:   original.ID.String(),
		Metadata:     fmt.Sprintf(`{"reversal_transaction_id":%q,"reason":%q}`, result.TransactionID, req.Reason),
		CreatedAt:    time.Now().UTC(),
	})

	s.log.Info().
		Str("original_tx_id", original.ID.String()).
		Str("reversal_tx_id", result.TransactionID.String()).
		Int64("amount", result.Amount).
		Msg("transaction reversed")

	return result, nil
}

// writeAdjustmentEvent reports an adjustment on the event type matching its
// direction, tagged so consumers can distinguish it from organic activity.
func (s *OperatorServiceImpl) writeAdjustmentEvent(ctx context.Context, dbTx pgx.Tx, req ports.ManualAdjustmentRequest, txnID uuid.UUID, balanceAfter int64) error {
	if req.Amount > 0 {
		return s.outboxSvc.WriteEvent(ctx, dbTx, req.TenantID, domain.EventTypePointsIssued, domain.PointsIssuedPayload{
			SchemaVersion:  domain.PayloadSchemaVersion,
			TransactionID:  txnID,
			CustomerID:     req.CustomerID,
			Amount:         req.Amount,
			BalanceAfter:   balanceAfter,
			IdempotencyKey: req.IdempotencyKey,
			Reason:         req.Reason,
			Type:           string(domain.AuditActionManualAdjustment),
		})
	}
	return s.outboxSvc.WriteEvent(ctx, dbTx, req.TenantID, domain.EventTypePointsRedeemed, domain.PointsRedeemedPayload{
		SchemaVersion:  domain.PayloadSchemaVersion,
		TransactionID:  txnID,
		CustomerID:     req.CustomerID,
		Amount:         req.Amount,
		BalanceAfter:   balanceAfter,
		IdempotencyKey: req.IdempotencyKey,
		Reason:         req.Reason,
		Type:           string(domain.AuditActionManualAdjustment),
	})
}

// resultFromAdjustment rebuilds the result of a replayed adjustment.
func (s *OperatorServiceImpl) resultFromAdjustment(ctx context.Context, tenantID uuid.UUID, txn *domain.Transaction) (*ports.AdjustmentResult, error) {
	entry, err := s.ledgerSvc.GetEntryByIdempotencyKey(ctx, tenantID, txn.IdempotencyKey, domain.OperationTypeManualAdjustment)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		// The key was spent by a non-adjustment transaction; replaying it here
		// would fabricate a result.
		return nil, apperror.ErrInvalidState("idempotency key was already used by a different operation")
	}
	return &ports.AdjustmentResult{
		TransactionID: txn.ID,
		Amount:        txn.Amount,
		BalanceAfter:  entry.BalanceAfter,
	}, nil
}

// replayAdjustmentAfterRace re-reads the winning adjustment after a lost race.
func (s *OperatorServiceImpl) replayAdjustmentAfterRace(ctx context.Context, tenantID uuid.UUID, key string) (*ports.AdjustmentResult, error) {
	winner, err := s.txRepo.GetByIdempotencyKey(ctx, tenantID, key)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("re-read after duplicate: %w", err))
	}
	if winner == nil {
		return nil, apperror.InternalError(fmt.Errorf("duplicate reported but no transaction found for key %s", key))
	}
	return s.resultFromAdjustment(ctx, tenantID, winner)
}
