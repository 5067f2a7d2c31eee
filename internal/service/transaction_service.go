package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"loyalty-ledger/internal/core/domain"
	"loyalty-ledger/internal/core/ports"
	"loyalty-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const idempotencyCacheTTL = 24 * time.Hour

// TransactionServiceImpl implements ports.TransactionService: issuing points
// from device scans and redeeming rewards.
type TransactionServiceImpl struct {
	txRepo         ports.TransactionRepository
	redemptionRepo ports.RedemptionRepository
	customerRepo   ports.CustomerRepository
	deviceRepo     ports.DeviceRepository
	rewardRepo     ports.RewardRepository
	ledgerSvc      ports.LedgerService
	outboxSvc      ports.OutboxService
	fraudSvc       ports.FraudSignalService
	idempCache     ports.IdempotencyCache
	transactor     ports.DBTransactor
	log            zerolog.Logger
}

// NewTransactionService creates a new TransactionServiceImpl.
func NewTransactionService(
	txRepo ports.TransactionRepository,
	redemptionRepo ports.RedemptionRepository,
	customerRepo ports.CustomerRepository,
	deviceRepo ports.DeviceRepository,
	rewardRepo ports.RewardRepository,
	ledgerSvc ports.LedgerService,
	outboxSvc ports.OutboxService,
	fraudSvc ports.FraudSignalService,
	idempCache ports.IdempotencyCache,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *TransactionServiceImpl {
	return &TransactionServiceImpl{
		txRepo:         txRepo,
		redemptionRepo: redemptionRepo,
		customerRepo:   customerRepo,
		deviceRepo:     deviceRepo,
		rewardRepo:     rewardRepo,
		ledgerSvc:      ledgerSvc,
		outboxSvc:      outboxSvc,
		fraudSvc:       fraudSvc,
		idempCache:     idempCache,
		transactor:     transactor,
		log:            log,
	}
}

func issueCacheKey(tenantID uuid.UUID, key string) string {
	return tenantID.String() + ":" + key + ":ISSUE"
}

func redeemCacheKey(tenantID uuid.UUID, key string) string {
	return tenantID.String() + ":" + key + ":REDEEM"
}

// IssuePoints credits points to a customer, atomically with its ledger entry
// and outbox event. Replays with the same idempotency key return the original
// outcome without writing.
func (s *TransactionServiceImpl) IssuePoints(ctx context.Context, req ports.IssuePointsRequest) (*ports.TransactionResult, error) {
	if req.Amount <= 0 {
		return nil, apperror.ErrInvalidAmount()
	}
	if req.IdempotencyKey == "" {
		return nil, apperror.ErrMissingIdempotencyKey()
	}

	// Layer 1: Redis fast path for replays
	cached, err := s.idempCache.Get(ctx, issueCacheKey(req.TenantID, req.IdempotencyKey))
	if err != nil {
		s.log.Warn().Err(err).Str("key", req.IdempotencyKey).Msg("redis idempotency check failed, falling through to DB")
	}
	if cached != nil {
		return unmarshalCachedResult[ports.TransactionResult](cached)
	}

	// Layer 2: DB replay check
	existing, err := s.txRepo.GetByIdempotencyKey(ctx, req.TenantID, req.IdempotencyKey)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("db idempotency check: %w", err))
	}
	if existing != nil {
		return s.resultFromTransaction(ctx, req.TenantID, existing, domain.OperationTypeIssue)
	}

	if req.DeviceID != nil {
		device, err := s.deviceRepo.GetActive(ctx, req.TenantID, *req.DeviceID)
		if err != nil {
			return nil, apperror.InternalError(fmt.Errorf("lookup device: %w", err))
		}
		if device == nil {
			return nil, apperror.ErrNotFound("device")
		}
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock the customer row: serializes all balance-affecting writes for this
	// customer until commit.
	customer, err := s.customerRepo.LockForUpdate(ctx, dbTx, req.TenantID, req.CustomerID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock customer: %w", err))
	}
	if customer == nil {
		return nil, apperror.ErrNotFound("customer")
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:             uuid.New(),
		TenantID:       req.TenantID,
		CustomerID:     req.CustomerID,
		Type:           domain.TransactionTypeIssue,
		Amount:         req.Amount,
		Status:         domain.TransactionStatusCompleted,
		IdempotencyKey: req.IdempotencyKey,
		DeviceID:       req.DeviceID,
		CreatedAt:      now,
	}

	appendRes, err := s.ledgerSvc.AppendEntry(ctx, dbTx, ports.AppendParams{
		TenantID:       req.TenantID,
		CustomerID:     req.CustomerID,
		Amount:         req.Amount,
		IdempotencyKey: req.IdempotencyKey,
		TransactionID:  txn.ID,
		OperationType:  domain.OperationTypeIssue,
	})
	if err != nil {
		return nil, err
	}

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		if err == ports.ErrDuplicateEntry {
			// A concurrent caller committed first; hand back their outcome.
			return s.replayAfterRace(ctx, req.TenantID, req.IdempotencyKey, domain.OperationTypeIssue)
		}
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	payload := domain.PointsIssuedPayload{
		SchemaVersion:  domain.PayloadSchemaVersion,
		TransactionID:  txn.ID,
		CustomerID:     req.CustomerID,
		Amount:         req.Amount,
		BalanceAfter:   appendRes.BalanceAfter,
		DeviceID:       req.DeviceID,
		IdempotencyKey: req.IdempotencyKey,
	}
	if err := s.outboxSvc.WriteEvent(ctx, dbTx, req.TenantID, domain.EventTypePointsIssued, payload); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	result := &ports.TransactionResult{
		ID:      txn.ID,
		Type:    txn.Type,
		Amount:  txn.Amount,
		Status:  txn.Status,
		Balance: appendRes.BalanceAfter,
	}

	s.cacheResult(ctx, issueCacheKey(req.TenantID, req.IdempotencyKey), result)
	s.fraudSvc.TrackScan(ctx, req.TenantID, req.DeviceID, req.CustomerID)

	s.log.Info().
		Str("tx_id", txn.ID.String()).
		Str("customer_id", req.CustomerID.String()).
		Int64("amount", req.Amount).
		Int64("balance", appendRes.BalanceAfter).
		Msg("points issued")

	return result, nil
}

// RedeemPoints exchanges balance for a reward. The balance check runs inside
// the same transaction as the write, under the customer row lock, so two
// concurrent redemptions cannot both pass the check on one reward's worth of
// balance. An insufficient balance aborts with no rows written.
func (s *TransactionServiceImpl) RedeemPoints(ctx context.Context, req ports.RedeemPointsRequest) (*ports.RedemptionResult, error) {
	if req.IdempotencyKey == "" {
		return nil, apperror.ErrMissingIdempotencyKey()
	}

	cached, err := s.idempCache.Get(ctx, redeemCacheKey(req.TenantID, req.IdempotencyKey))
	if err != nil {
		s.log.Warn().Err(err).Str("key", req.IdempotencyKey).Msg("redis idempotency check failed, falling through to DB")
	}
	if cached != nil {
		return unmarshalCachedResult[ports.RedemptionResult](cached)
	}

	existingRed, err := s.redemptionRepo.GetByIdempotencyKey(ctx, req.TenantID, req.IdempotencyKey)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("db idempotency check: %w", err))
	}
	if existingRed != nil {
		return s.resultFromRedemption(ctx, req.TenantID, existingRed)
	}

	reward, err := s.rewardRepo.GetActive(ctx, req.TenantID, req.RewardID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lookup reward: %w", err))
	}
	if reward == nil {
		return nil, apperror.ErrNotFound("reward")
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

	balance, err := s.ledgerSvc.GetBalanceTx(ctx, dbTx, req.TenantID, req.CustomerID)
	if err != nil {
		return nil, err
	}
	if balance < reward.PointsRequired {
		s.fraudSvc.TrackRedemption(ctx, req.TenantID, req.CustomerID, false)
		return nil, apperror.ErrInsufficientBalance()
	}

	now := time.Now().UTC()
	txn := &domain.Transaction{
		ID:             uuid.New(),
		TenantID:       req.TenantID,
		CustomerID:     req.CustomerID,
		Type:           domain.TransactionTypeRedeem,
		Amount:         -reward.PointsRequired,
		Status:         domain.TransactionStatusCompleted,
		IdempotencyKey: domain.BuildRedemptionTransactionKey(req.IdempotencyKey),
		CreatedAt:      now,
	}
	redemption := &domain.Redemption{
		ID:             uuid.New(),
		TenantID:       req.TenantID,
		CustomerID:     req.CustomerID,
		RewardID:       req.RewardID,
		PointsDeducted: reward.PointsRequired,
		Status:         domain.RedemptionStatusCompleted,
		IdempotencyKey: req.IdempotencyKey,
		CompletedAt:    &now,
		CreatedAt:      now,
	}

	appendRes, err := s.ledgerSvc.AppendEntry(ctx, dbTx, ports.AppendParams{
		TenantID:       req.TenantID,
		CustomerID:     req.CustomerID,
		Amount:         -reward.PointsRequired,
		IdempotencyKey: req.IdempotencyKey,
		TransactionID:  txn.ID,
		OperationType:  domain.OperationTypeRedeem,
	})
	if err != nil {
		return nil, err
	}

	if err := s.redemptionRepo.Create(ctx, dbTx, redemption); err != nil {
		if err == ports.ErrDuplicateEntry {
			return s.replayRedemptionAfterRace(ctx, req.TenantID, req.IdempotencyKey)
		}
		return nil, apperror.InternalError(fmt.Errorf("create redemption: %w", err))
	}

	if err := s.txRepo.Create(ctx, dbTx, txn); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create transaction: %w", err))
	}

	payload := domain.PointsRedeemedPayload{
		SchemaVersion:  domain.PayloadSchemaVersion,
		RedemptionID:   redemption.ID,
		TransactionID:  txn.ID,
		CustomerID:     req.CustomerID,
		RewardID:       req.RewardID,
		PointsDeducted: reward.PointsRequired,
		BalanceAfter:   appendRes.BalanceAfter,
		IdempotencyKey: req.IdempotencyKey,
	}
	if err := s.outboxSvc.WriteEvent(ctx, dbTx, req.TenantID, domain.EventTypePointsRedeemed, payload); err != nil {
		return nil, err
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	result := &ports.RedemptionResult{
		ID:             redemption.ID,
		Status:         redemption.Status,
		PointsDeducted: reward.PointsRequired,
		Balance:        appendRes.BalanceAfter,
	}

	s.cacheResult(ctx, redeemCacheKey(req.TenantID, req.IdempotencyKey), result)
	s.fraudSvc.TrackRedemption(ctx, req.TenantID, req.CustomerID, true)

	s.log.Info().
		Str("redemption_id", redemption.ID.String()).
		Str("customer_id", req.CustomerID.String()).
		Int64("points_deducted", reward.PointsRequired).
		Int64("balance", appendRes.BalanceAfter).
		Msg("points redeemed")

	return result, nil
}

// resultFromTransaction rebuilds the caller-visible result for a replayed
// issuance from durable rows. The balance returned is the one the original
// write produced, so replays are byte-for-byte repeatable.
func (s *TransactionServiceImpl) resultFromTransaction(ctx context.Context, tenantID uuid.UUID, txn *domain.Transaction, op domain.OperationType) (*ports.TransactionResult, error) {
	entry, err := s.ledgerSvc.GetEntryByIdempotencyKey(ctx, tenantID, txn.IdempotencyKey, op)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		// The key belongs to a transaction of a different kind (e.g. it was
		// spent by a manual adjustment), so there is no matching entry to
		// replay from.
		return nil, apperror.ErrInvalidState("idempotency key was already used by a different operation")
	}
	return &ports.TransactionResult{
		ID:      txn.ID,
		Type:    txn.Type,
		Amount:  txn.Amount,
		Status:  txn.Status,
		Balance: entry.BalanceAfter,
	}, nil
}

// resultFromRedemption rebuilds the caller-visible result for a replayed
// redemption.
func (s *TransactionServiceImpl) resultFromRedemption(ctx context.Context, tenantID uuid.UUID, red *domain.Redemption) (*ports.RedemptionResult, error) {
	entry, err := s.ledgerSvc.GetEntryByIdempotencyKey(ctx, tenantID, red.IdempotencyKey, domain.OperationTypeRedeem)
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, apperror.InternalError(fmt.Errorf("redemption %s has no ledger entry", red.ID))
	}
	return &ports.RedemptionResult{
		ID:             red.ID,
		Status:         red.Status,
		PointsDeducted: red.PointsDeducted,
		Balance:        entry.BalanceAfter,
	}, nil
}

// replayAfterRace re-reads the winning transaction after a lost insert race.
func (s *TransactionServiceImpl) replayAfterRace(ctx context.Context, tenantID uuid.UUID, key string, op domain.OperationType) (*ports.TransactionResult, error) {
	winner, err := s.txRepo.GetByIdempotencyKey(ctx, tenantID, key)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("re-read after duplicate: %w", err))
	}
	if winner == nil {
		return nil, apperror.InternalError(fmt.Errorf("duplicate reported but no transaction found for key %s", key))
	}
	return s.resultFromTransaction(ctx, tenantID, winner, op)
}

// replayRedemptionAfterRace re-reads the winning redemption after a lost race.
func (s *TransactionServiceImpl) replayRedemptionAfterRace(ctx context.Context, tenantID uuid.UUID, key string) (*ports.RedemptionResult, error) {
	winner, err := s.redemptionRepo.GetByIdempotencyKey(ctx, tenantID, key)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("re-read after duplicate: %w", err))
	}
	if winner == nil {
		return nil, apperror.InternalError(fmt.Errorf("duplicate reported but no redemption found for key %s", key))
	}
	return s.resultFromRedemption(ctx, tenantID, winner)
}

// cacheResult stores a serialized result in Redis, best-effort.
func (s *TransactionServiceImpl) cacheResult(ctx context.Context, key string, result any) {
	raw, err := json.Marshal(result)
	if err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to marshal result for cache")
		return
	}
	if err := s.idempCache.Set(ctx, key, raw, idempotencyCacheTTL); err != nil {
		s.log.Warn().Err(err).Str("key", key).Msg("failed to cache idempotency result")
	}
}

// unmarshalCachedResult deserializes a cached result.
func unmarshalCachedResult[T any](data []byte) (*T, error) {
	out := new(T)
	if err := json.Unmarshal(data, out); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("unmarshal cached result: %w", err))
	}
	return out, nil
}
