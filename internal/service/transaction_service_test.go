package service

import (
	"context"
	"encoding/json"
	"testing"

	"loyalty-ledger/internal/core/domain"
	"loyalty-ledger/internal/core/ports"
	"loyalty-ledger/internal/core/ports/mocks"
	"loyalty-ledger/pkg/apperror"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type txnTestDeps struct {
	svc            *TransactionServiceImpl
	txRepo         *mocks.MockTransactionRepository
	redemptionRepo *mocks.MockRedemptionRepository
	customerRepo   *mocks.MockCustomerRepository
	deviceRepo     *mocks.MockDeviceRepository
	rewardRepo     *mocks.MockRewardRepository
	ledgerSvc      *mocks.MockLedgerService
	outboxSvc      *mocks.MockOutboxService
	fraudSvc       *mocks.MockFraudSignalService
	idempCache     *mocks.MockIdempotencyCache
	transactor     *mocks.MockDBTransactor
	ctrl           *gomock.Controller
}

func setupTransactionService(t *testing.T) *txnTestDeps {
	ctrl := gomock.NewController(t)
	d := &txnTestDeps{
		txRepo:         mocks.NewMockTransactionRepository(ctrl),
		redemptionRepo: mocks.NewMockRedemptionRepository(ctrl),
		customerRepo:   mocks.NewMockCustomerRepository(ctrl),
		deviceRepo:     mocks.NewMockDeviceRepository(ctrl),
		rewardRepo:     mocks.NewMockRewardRepository(ctrl),
		ledgerSvc:      mocks.NewMockLedgerService(ctrl),
		outboxSvc:      mocks.NewMockOutboxService(ctrl),
		fraudSvc:       mocks.NewMockFraudSignalService(ctrl),
		idempCache:     mocks.NewMockIdempotencyCache(ctrl),
		transactor:     mocks.NewMockDBTransactor(ctrl),
		ctrl:           ctrl,
	}
	d.svc = NewTransactionService(
		d.txRepo, d.redemptionRepo, d.customerRepo, d.deviceRepo, d.rewardRepo,
		d.ledgerSvc, d.outboxSvc, d.fraudSvc, d.idempCache, d.transactor,
		zerolog.Nop(),
	)
	return d
}

// ==================== IssuePoints ====================

func TestTransactionService_IssuePoints_Success(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	tenantID := uuid.New()
	customerID := uuid.New()
	req := ports.IssuePointsRequest{
		TenantID:       tenantID,
		CustomerID:     customerID,
		Amount:         50,
		IdempotencyKey: "K1",
	}
	tx := &mockTx{}

	d.idempCache.EXPECT().Get(gomock.Any(), issueCacheKey(tenantID, "K1")).Return(nil, nil)
	d.txRepo.EXPECT().GetByIdempotencyKey(gomock.Any(), tenantID, "K1").Return(nil, nil)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	d.customerRepo.EXPECT().
		LockForUpdate(gomock.Any(), tx, tenantID, customerID).
		Return(&domain.Customer{ID: customerID, TenantID: tenantID}, nil)
	d.ledgerSvc.EXPECT().
		AppendEntry(gomock.Any(), tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, p ports.AppendParams) (*domain.AppendResult, error) {
			assert.Equal(t, int64(50), p.Amount)
			assert.Equal(t, "K1", p.IdempotencyKey)
			assert.Equal(t, domain.OperationTypeIssue, p.OperationType)
			return &domain.AppendResult{ID: uuid.New(), BalanceAfter: 50}, nil
		})
	d.txRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(nil)
	d.outboxSvc.EXPECT().
		WriteEvent(gomock.Any(), tx, tenantID, domain.EventTypePointsIssued, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, _ uuid.UUID, _ string, payload any) error {
			p, ok := payload.(domain.PointsIssuedPayload)
			require.True(t, ok)
			assert.Equal(t, int64(50), p.Amount)
			assert.Equal(t, int64(50), p.BalanceAfter)
			return nil
		})
	d.idempCache.EXPECT().Set(gomock.Any(), issueCacheKey(tenantID, "K1"), gomock.Any(), idempotencyCacheTTL).Return(nil)
	d.fraudSvc.EXPECT().TrackScan(gomock.Any(), tenantID, gomock.Nil(), customerID)

	result, err := d.svc.IssuePoints(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, int64(50), result.Balance)
	assert.Equal(t, domain.TransactionTypeIssue, result.Type)
	assert.Equal(t, domain.TransactionStatusCompleted, result.Status)
}

func TestTransactionService_IssuePoints_ReplayFromCache(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	tenantID := uuid.New()
	cached := ports.TransactionResult{
		ID:      uuid.New(),
		Type:    domain.TransactionTypeIssue,
		Amount:  50,
		Status:  domain.TransactionStatusCompleted,
		Balance: 50,
	}
	raw, err := json.Marshal(cached)
	require.NoError(t, err)

	d.idempCache.EXPECT().Get(gomock.Any(), issueCacheKey(tenantID, "K1")).Return(raw, nil)

	result, err := d.svc.IssuePoints(context.Background(), ports.IssuePointsRequest{
		TenantID:       tenantID,
		CustomerID:     uuid.New(),
		Amount:         50,
		IdempotencyKey: "K1",
	})
	require.NoError(t, err)
	assert.Equal(t, cached.ID, result.ID)
	assert.Equal(t, int64(50), result.Balance)
}

func TestTransactionService_IssuePoints_ReplayFromDB(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	tenantID := uuid.New()
	txnID := uuid.New()
	existing := &domain.Transaction{
		ID:             txnID,
		TenantID:       tenantID,
		Type:           domain.TransactionTypeIssue,
		Amount:         50,
		Status:         domain.TransactionStatusCompleted,
		IdempotencyKey: "K1",
	}

	d.idempCache.EXPECT().Get(gomock.Any(), issueCacheKey(tenantID, "K1")).Return(nil, nil)
	d.txRepo.EXPECT().GetByIdempotencyKey(gomock.Any(), tenantID, "K1").Return(existing, nil)
	d.ledgerSvc.EXPECT().
		GetEntryByIdempotencyKey(gomock.Any(), tenantID, "K1", domain.OperationTypeIssue).
		Return(&domain.LedgerEntry{ID: uuid.New(), BalanceAfter: 50}, nil)

	// Same transaction id and balance come back; nothing is written.
	result, err := d.svc.IssuePoints(context.Background(), ports.IssuePointsRequest{
		TenantID:       tenantID,
		CustomerID:     uuid.New(),
		Amount:         50,
		IdempotencyKey: "K1",
	})
	require.NoError(t, err)
	assert.Equal(t, txnID, result.ID)
	assert.Equal(t, int64(50), result.Balance)
}

// A key consumed by another operation kind is not a replay: there is no issue
// ledger entry behind the stored transaction, and the caller gets a conflict
// instead of a fabricated result.
func TestTransactionService_IssuePoints_KeyUsedByOtherOperation(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	tenantID := uuid.New()
	adjustedBy := uuid.New()
	existing := &domain.Transaction{
		ID:             uuid.New(),
		TenantID:       tenantID,
		Type:           domain.TransactionTypeIssue,
		Amount:         30,
		Status:         domain.TransactionStatusCompleted,
		IdempotencyKey: "K1",
		Metadata: &domain.TransactionMetadata{
			SchemaVersion: domain.MetadataSchemaVersion,
			Type:          string(domain.AuditActionManualAdjustment),
			AdjustedBy:    &adjustedBy,
		},
	}

	d.idempCache.EXPECT().Get(gomock.Any(), issueCacheKey(tenantID, "K1")).Return(nil, nil)
	d.txRepo.EXPECT().GetByIdempotencyKey(gomock.Any(), tenantID, "K1").Return(existing, nil)
	// The key's ledger entry lives under MANUAL_ADJUSTMENT, so the issue-scoped
	// lookup finds nothing.
	d.ledgerSvc.EXPECT().
		GetEntryByIdempotencyKey(gomock.Any(), tenantID, "K1", domain.OperationTypeIssue).
		Return(nil, nil)

	_, err := d.svc.IssuePoints(context.Background(), ports.IssuePointsRequest{
		TenantID:       tenantID,
		CustomerID:     uuid.New(),
		Amount:         50,
		IdempotencyKey: "K1",
	})
	require.Error(t, err)
	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "LED_004", appErr.Code)
}

func TestTransactionService_IssuePoints_InvalidAmount(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.IssuePoints(context.Background(), ports.IssuePointsRequest{
		TenantID:       uuid.New(),
		CustomerID:     uuid.New(),
		Amount:         -5,
		IdempotencyKey: "K1",
	})
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "LED_001", appErr.Code)
}

func TestTransactionService_IssuePoints_MissingIdempotencyKey(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	_, err := d.svc.IssuePoints(context.Background(), ports.IssuePointsRequest{
		TenantID:   uuid.New(),
		CustomerID: uuid.New(),
		Amount:     50,
	})
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "LED_005", appErr.Code)
}

func TestTransactionService_IssuePoints_CustomerNotFound(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	tenantID := uuid.New()
	customerID := uuid.New()
	tx := &mockTx{}

	d.idempCache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
	d.txRepo.EXPECT().GetByIdempotencyKey(gomock.Any(), tenantID, "K1").Return(nil, nil)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	d.customerRepo.EXPECT().LockForUpdate(gomock.Any(), tx, tenantID, customerID).Return(nil, nil)

	_, err := d.svc.IssuePoints(context.Background(), ports.IssuePointsRequest{
		TenantID:       tenantID,
		CustomerID:     customerID,
		Amount:         50,
		IdempotencyKey: "K1",
	})
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "LED_002", appErr.Code)
}

func TestTransactionService_IssuePoints_InactiveDevice(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	tenantID := uuid.New()
	deviceID := uuid.New()

	d.idempCache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
	d.txRepo.EXPECT().GetByIdempotencyKey(gomock.Any(), tenantID, "K1").Return(nil, nil)
	d.deviceRepo.EXPECT().GetActive(gomock.Any(), tenantID, deviceID).Return(nil, nil)

	_, err := d.svc.IssuePoints(context.Background(), ports.IssuePointsRequest{
		TenantID:       tenantID,
		CustomerID:     uuid.New(),
		Amount:         50,
		DeviceID:       &deviceID,
		IdempotencyKey: "K1",
	})
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "LED_002", appErr.Code)
}

// ==================== RedeemPoints ====================

func TestTransactionService_RedeemPoints_Success(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	tenantID := uuid.New()
	customerID := uuid.New()
	rewardID := uuid.New()
	tx := &mockTx{}
	reward := &domain.Reward{ID: rewardID, TenantID: tenantID, PointsRequired: 100, Active: true}

	d.idempCache.EXPECT().Get(gomock.Any(), redeemCacheKey(tenantID, "K3")).Return(nil, nil)
	d.redemptionRepo.EXPECT().GetByIdempotencyKey(gomock.Any(), tenantID, "K3").Return(nil, nil)
	d.rewardRepo.EXPECT().GetActive(gomock.Any(), tenantID, rewardID).Return(reward, nil)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	d.customerRepo.EXPECT().
		LockForUpdate(gomock.Any(), tx, tenantID, customerID).
		Return(&domain.Customer{ID: customerID, TenantID: tenantID}, nil)
	d.ledgerSvc.EXPECT().GetBalanceTx(gomock.Any(), tx, tenantID, customerID).Return(int64(110), nil)
	d.ledgerSvc.EXPECT().
		AppendEntry(gomock.Any(), tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, p ports.AppendParams) (*domain.AppendResult, error) {
			assert.Equal(t, int64(-100), p.Amount)
			assert.Equal(t, "K3", p.IdempotencyKey)
			assert.Equal(t, domain.OperationTypeRedeem, p.OperationType)
			return &domain.AppendResult{ID: uuid.New(), BalanceAfter: 10}, nil
		})
	d.redemptionRepo.EXPECT().Create(gomock.Any(), tx, gomock.Any()).Return(nil)
	d.txRepo.EXPECT().
		Create(gomock.Any(), tx, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ pgx.Tx, txn *domain.Transaction) error {
			// The Transaction row carries a derived key so it can coexist with
			// the Redemption row under the per-tenant key constraint.
			assert.Equal(t, domain.BuildRedemptionTransactionKey("K3"), txn.IdempotencyKey)
			assert.Equal(t, int64(-100), txn.Amount)
			return nil
		})
	d.outboxSvc.EXPECT().
		WriteEvent(gomock.Any(), tx, tenantID, domain.EventTypePointsRedeemed, gomock.Any()).
		Return(nil)
	d.idempCache.EXPECT().Set(gomock.Any(), redeemCacheKey(tenantID, "K3"), gomock.Any(), idempotencyCacheTTL).Return(nil)
	d.fraudSvc.EXPECT().TrackRedemption(gomock.Any(), tenantID, customerID, true)

	result, err := d.svc.RedeemPoints(context.Background(), ports.RedeemPointsRequest{
		TenantID:       tenantID,
		CustomerID:     customerID,
		RewardID:       rewardID,
		IdempotencyKey: "K3",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(100), result.PointsDeducted)
	assert.Equal(t, int64(10), result.Balance)
	assert.Equal(t, domain.RedemptionStatusCompleted, result.Status)
}

func TestTransactionService_RedeemPoints_InsufficientBalance(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	tenantID := uuid.New()
	customerID := uuid.New()
	rewardID := uuid.New()
	tx := &mockTx{}
	reward := &domain.Reward{ID: rewardID, TenantID: tenantID, PointsRequired: 100, Active: true}

	d.idempCache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
	d.redemptionRepo.EXPECT().GetByIdempotencyKey(gomock.Any(), tenantID, "K-fail").Return(nil, nil)
	d.rewardRepo.EXPECT().GetActive(gomock.Any(), tenantID, rewardID).Return(reward, nil)
	d.transactor.EXPECT().Begin(gomock.Any()).Return(tx, nil)
	d.customerRepo.EXPECT().
		LockForUpdate(gomock.Any(), tx, tenantID, customerID).
		Return(&domain.Customer{ID: customerID, TenantID: tenantID}, nil)
	d.ledgerSvc.EXPECT().GetBalanceTx(gomock.Any(), tx, tenantID, customerID).Return(int64(50), nil)
	d.fraudSvc.EXPECT().TrackRedemption(gomock.Any(), tenantID, customerID, false)

	// No AppendEntry, no Create, no WriteEvent: the abort writes nothing.
	_, err := d.svc.RedeemPoints(context.Background(), ports.RedeemPointsRequest{
		TenantID:       tenantID,
		CustomerID:     customerID,
		RewardID:       rewardID,
		IdempotencyKey: "K-fail",
	})
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "LED_003", appErr.Code)
}

func TestTransactionService_RedeemPoints_RewardNotFound(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	tenantID := uuid.New()
	rewardID := uuid.New()

	d.idempCache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)
	d.redemptionRepo.EXPECT().GetByIdempotencyKey(gomock.Any(), tenantID, "K3").Return(nil, nil)
	d.rewardRepo.EXPECT().GetActive(gomock.Any(), tenantID, rewardID).Return(nil, nil)

	_, err := d.svc.RedeemPoints(context.Background(), ports.RedeemPointsRequest{
		TenantID:       tenantID,
		CustomerID:     uuid.New(),
		RewardID:       rewardID,
		IdempotencyKey: "K3",
	})
	require.Error(t, err)
	appErr, ok := err.(*apperror.AppError)
	require.True(t, ok)
	assert.Equal(t, "LED_002", appErr.Code)
}

func TestTransactionService_RedeemPoints_ReplayFromDB(t *testing.T) {
	d := setupTransactionService(t)
	defer d.ctrl.Finish()

	tenantID := uuid.New()
	redemptionID := uuid.New()
	existing := &domain.Redemption{
		ID:             redemptionID,
		TenantID:       tenantID,
		PointsDeducted: 100,
		Status:         domain.RedemptionStatusCompleted,
		IdempotencyKey: "K3",
	}

	d.idempCache.EXPECT().Get(gomock.Any(), redeemCacheKey(tenantID, "K3")).Return(nil, nil)
	d.redemptionRepo.EXPECT().GetByIdempotencyKey(gomock.Any(), tenantID, "K3").Return(existing, nil)
	d.ledgerSvc.EXPECT().
		GetEntryByIdempotencyKey(gomock.Any(), tenantID, "K3", domain.OperationTypeRedeem).
		Return(&domain.LedgerEntry{ID: uuid.New(), BalanceAfter: 10}, nil)

	result, err := d.svc.RedeemPoints(context.Background(), ports.RedeemPointsRequest{
		TenantID:       tenantID,
		CustomerID:     uuid.New(),
		RewardID:       uuid.New(),
		IdempotencyKey: "K3",
	})
	require.NoError(t, err)
	assert.Equal(t, redemptionID, result.ID)
	assert.Equal(t, int64(10), result.Balance)
}
