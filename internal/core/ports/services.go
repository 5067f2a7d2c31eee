package ports

import (
	"context"

	"loyalty-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// AppendParams holds the input for one idempotent ledger append.
type AppendParams struct {
	TenantID       uuid.UUID
	CustomerID     uuid.UUID
	Amount         int64 // signed, nonzero
	IdempotencyKey string
	TransactionID  uuid.UUID
	OperationType  domain.OperationType
}

// LedgerService owns balance derivation and idempotent-append semantics.
type LedgerService interface {
	// AppendEntry appends inside the caller's transaction. Repeated calls with
	// the same (tenant, key, operation type) converge on one stored entry and
	// one result, sequentially or concurrently.
	AppendEntry(ctx context.Context, tx pgx.Tx, p AppendParams) (*domain.AppendResult, error)
	// GetEntryByIdempotencyKey resolves the stored entry for a key, used to
	// rebuild replay responses. Returns (nil, nil) when no entry exists.
	GetEntryByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string, op domain.OperationType) (*domain.LedgerEntry, error)
	GetBalance(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)
	GetBalanceTx(ctx context.Context, tx pgx.Tx, tenantID, customerID uuid.UUID) (int64, error)
	GetLedgerHistory(ctx context.Context, tenantID, customerID uuid.UUID, page, limit int) (*domain.LedgerPage, error)
}

// OutboxService writes events-to-publish. WriteEvent MUST be called with the
// same pgx.Tx as the ledger/transaction writes it reports on; writing outside
// that transaction reintroduces the dual-write problem.
type OutboxService interface {
	WriteEvent(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, eventType string, payload any) error
}

// IssuePointsRequest holds validated input for issuing points.
type IssuePointsRequest struct {
	TenantID       uuid.UUID
	CustomerID     uuid.UUID
	Amount         int64 // > 0
	DeviceID       *uuid.UUID
	IdempotencyKey string
}

// TransactionResult is the caller-visible outcome of an issue operation.
type TransactionResult struct {
	ID      uuid.UUID                `json:"id"`
	Type    domain.TransactionType   `json:"type"`
	Amount  int64                    `json:"amount"`
	Status  domain.TransactionStatus `json:"status"`
	Balance int64                    `json:"balance"`
}

// RedeemPointsRequest holds validated input for redeeming a reward.
type RedeemPointsRequest struct {
	TenantID       uuid.UUID
	CustomerID     uuid.UUID
	RewardID       uuid.UUID
	IdempotencyKey string
}

// RedemptionResult is the caller-visible outcome of a redemption.
type RedemptionResult struct {
	ID             uuid.UUID               `json:"id"`
	Status         domain.RedemptionStatus `json:"status"`
	PointsDeducted int64                   `json:"points_deducted"`
	Balance        int64                   `json:"balance"`
}

// TransactionService coordinates customer-initiated point mutations.
type TransactionService interface {
	IssuePoints(ctx context.Context, req IssuePointsRequest) (*TransactionResult, error)
	RedeemPoints(ctx context.Context, req RedeemPointsRequest) (*RedemptionResult, error)
}

// ManualAdjustmentRequest holds validated input for a privileged adjustment.
type ManualAdjustmentRequest struct {
	TenantID       uuid.UUID
	CustomerID     uuid.UUID
	Amount         int64 // signed, nonzero; may drive the balance negative
	Reason         string
	UserID         uuid.UUID
	IdempotencyKey string
}

// AdjustmentResult is the outcome of an adjustment or reversal.
type AdjustmentResult struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	Amount        int64     `json:"amount"`
	BalanceAfter  int64     `json:"balance_after"`
}

// ReverseTransactionRequest holds validated input for reversing a transaction.
type ReverseTransactionRequest struct {
	TenantID      uuid.UUID
	TransactionID uuid.UUID
	Reason        string
	UserID        uuid.UUID
}

// OperatorService exposes privileged operator tooling: manual adjustments and
// transaction reversals. Authorization is resolved by the caller.
type OperatorService interface {
	ManualAdjustment(ctx context.Context, req ManualAdjustmentRequest) (*AdjustmentResult, error)
	ReverseTransaction(ctx context.Context, req ReverseTransactionRequest) (*AdjustmentResult, error)
}

// AuditService records privileged mutations, fire-and-forget. A failed audit
// write never rolls back the business operation.
type AuditService interface {
	Log(ctx context.Context, entry *domain.AuditLog)
}

// FraudSignalService tracks activity signals after commit, best-effort.
type FraudSignalService interface {
	TrackScan(ctx context.Context, tenantID uuid.UUID, deviceID *uuid.UUID, customerID uuid.UUID)
	TrackRedemption(ctx context.Context, tenantID, customerID uuid.UUID, success bool)
}
