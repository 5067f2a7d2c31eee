package ports

import (
	"context"
	"time"

	"loyalty-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// LedgerRepository defines persistence for append-only ledger entries.
// Methods accepting pgx.Tx run inside the caller's atomic unit; the plain
// variants read through the pool.
type LedgerRepository interface {
	// Insert appends an entry. A unique-violation on
	// (tenant_id, idempotency_key, operation_type) surfaces as
	// ErrDuplicateEntry so callers can self-heal the race.
	Insert(ctx context.Context, tx pgx.Tx, entry *domain.LedgerEntry) error
	GetByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string, op domain.OperationType) (*domain.LedgerEntry, error)
	GetByIdempotencyKeyTx(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, key string, op domain.OperationType) (*domain.LedgerEntry, error)
	SumAmounts(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error)
	SumAmountsTx(ctx context.Context, tx pgx.Tx, tenantID, customerID uuid.UUID) (int64, error)
	List(ctx context.Context, tenantID, customerID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, int64, error)
}

// TransactionRepository defines persistence for transaction records.
type TransactionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Transaction, error)
	GetByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*domain.Transaction, error)
	UpdateMetadata(ctx context.Context, tenantID, id uuid.UUID, meta *domain.TransactionMetadata) error
}

// RedemptionRepository defines persistence for reward redemptions.
type RedemptionRepository interface {
	Create(ctx context.Context, tx pgx.Tx, r *domain.Redemption) error
	GetByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*domain.Redemption, error)
}

// OutboxRepository defines persistence for outbox events. Create runs inside
// the caller's atomic unit; the remaining methods belong to the dispatcher.
type OutboxRepository interface {
	Create(ctx context.Context, tx pgx.Tx, event *domain.OutboxEvent) error
	FetchPending(ctx context.Context, limit int) ([]domain.OutboxEvent, error)
	MarkPublished(ctx context.Context, id uuid.UUID, publishedAt time.Time) error
	IncrementRetry(ctx context.Context, id uuid.UUID, retryCount int) error
	MarkFailed(ctx context.Context, id uuid.UUID, retryCount int) error
}

// CustomerRepository reads customer reference data.
// LockForUpdate pins the customer row for the duration of the enclosing
// transaction; it is the serialization point for balance checks.
type CustomerRepository interface {
	GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Customer, error)
	LockForUpdate(ctx context.Context, tx pgx.Tx, tenantID, id uuid.UUID) (*domain.Customer, error)
}

// DeviceRepository reads device reference data.
type DeviceRepository interface {
	GetActive(ctx context.Context, tenantID, id uuid.UUID) (*domain.Device, error)
}

// RewardRepository reads reward reference data.
type RewardRepository interface {
	GetActive(ctx context.Context, tenantID, id uuid.UUID) (*domain.Reward, error)
}

// AuditRepository persists audit log entries.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditLog) error
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
