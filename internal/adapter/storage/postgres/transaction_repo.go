package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"loyalty-ledger/internal/core/domain"
	"loyalty-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TransactionRepo implements ports.TransactionRepository. Metadata is stored
// as JSONB and marshalled explicitly so the schema version always round-trips.
type TransactionRepo struct {
	pool Pool
}

// NewTransactionRepo creates a new TransactionRepo.
func NewTransactionRepo(pool Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

// Create inserts a transaction record within a database transaction.
func (r *TransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	meta, err := marshalMetadata(t.Metadata)
	if err != nil {
		return err
	}

	query := `INSERT INTO transactions
		(id, tenant_id, customer_id, type, amount, status, idempotency_key, device_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = tx.Exec(ctx, query,
		t.ID, t.TenantID, t.CustomerID, t.Type, t.Amount,
		t.Status, t.IdempotencyKey, t.DeviceID, meta, t.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrDuplicateEntry
		}
		return fmt.Errorf("insert transaction: %w", err)
	}
	return nil
}

// GetByID fetches a transaction by id within the tenant.
func (r *TransactionRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Transaction, error) {
	query := `SELECT id, tenant_id, customer_id, type, amount, status, idempotency_key, device_id, metadata, created_at
		FROM transactions WHERE tenant_id = $1 AND id = $2`

	return scanTransaction(r.pool.QueryRow(ctx, query, tenantID, id))
}

// GetByIdempotencyKey fetches a transaction by its idempotency key.
func (r *TransactionRepo) GetByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*domain.Transaction, error) {
	query := `SELECT id, tenant_id, customer_id, type, amount, status, idempotency_key, device_id, metadata, created_at
		FROM transactions WHERE tenant_id = $1 AND idempotency_key = $2`

	return scanTransaction(r.pool.QueryRow(ctx, query, tenantID, key))
}

// UpdateMetadata replaces the metadata blob of an existing transaction. Used to
// mark a transaction reversed with a back-reference to the reversing one.
func (r *TransactionRepo) UpdateMetadata(ctx context.Context, tenantID, id uuid.UUID, meta *domain.TransactionMetadata) error {
	raw, err := marshalMetadata(meta)
	if err != nil {
		return err
	}

	query := `UPDATE transactions SET metadata = $1 WHERE tenant_id = $2 AND id = $3`

	tag, err := r.pool.Exec(ctx, query, raw, tenantID, id)
	if err != nil {
		return fmt.Errorf("update transaction metadata: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update transaction metadata: no transaction %s", id)
	}
	return nil
}

func marshalMetadata(meta *domain.TransactionMetadata) ([]byte, error) {
	if meta == nil {
		return nil, nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal transaction metadata: %w", err)
	}
	return raw, nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	t := &domain.Transaction{}
	var meta []byte
	err := row.Scan(
		&t.ID, &t.TenantID, &t.CustomerID, &t.Type, &t.Amount,
		&t.Status, &t.IdempotencyKey, &t.DeviceID, &meta, &t.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan transaction: %w", err)
	}
	if len(meta) > 0 {
		t.Metadata = &domain.TransactionMetadata{}
		if err := json.Unmarshal(meta, t.Metadata); err != nil {
			return nil, fmt.Errorf("unmarshal transaction metadata: %w", err)
		}
	}
	return t, nil
}
