package postgres

import (
	"context"
	"errors"
	"fmt"

	"loyalty-ledger/internal/core/domain"
	"loyalty-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ledgerColumns = `id, tenant_id, customer_id, transaction_id, amount, balance_after, idempotency_key, operation_type, created_at`

// LedgerRepo implements ports.LedgerRepository. The table carries a unique
// constraint on (tenant_id, idempotency_key, operation_type); that constraint,
// not any prior read, is the source of truth for idempotency.
type LedgerRepo struct {
	pool Pool
}

// NewLedgerRepo creates a new LedgerRepo.
func NewLedgerRepo(pool Pool) *LedgerRepo {
	return &LedgerRepo{pool: pool}
}

// Insert appends a ledger entry within a database transaction. Duplicates on
// the idempotency constraint come back as ports.ErrDuplicateEntry. The insert
// uses ON CONFLICT DO NOTHING rather than letting the unique violation raise:
// a raised 23505 aborts the enclosing transaction, which would break the
// caller's re-read of the winning row on that same transaction.
func (r *LedgerRepo) Insert(ctx context.Context, tx pgx.Tx, e *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (` + ledgerColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT ON CONSTRAINT uq_ledger_idempotency DO NOTHING`

	ct, err := tx.Exec(ctx, query,
		e.ID, e.TenantID, e.CustomerID, e.TransactionID,
		e.Amount, e.BalanceAfter, e.IdempotencyKey, e.OperationType, e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return ports.ErrDuplicateEntry
	}
	return nil
}

// GetByIdempotencyKey fetches an entry by its idempotency tuple.
func (r *LedgerRepo) GetByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string, op domain.OperationType) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries
		WHERE tenant_id = $1 AND idempotency_key = $2 AND operation_type = $3`

	return scanLedgerEntry(r.pool.QueryRow(ctx, query, tenantID, key, op))
}

// GetByIdempotencyKeyTx is the in-transaction variant, used to re-read the
// winning entry after a lost insert race.
func (r *LedgerRepo) GetByIdempotencyKeyTx(ctx context.Context, tx pgx.Tx, tenantID uuid.UUID, key string, op domain.OperationType) (*domain.LedgerEntry, error) {
	query := `SELECT ` + ledgerColumns + ` FROM ledger_entries
		WHERE tenant_id = $1 AND idempotency_key = $2 AND operation_type = $3`

	return scanLedgerEntry(tx.QueryRow(ctx, query, tenantID, key, op))
}

// SumAmounts derives the current balance from the full entry history.
func (r *LedgerRepo) SumAmounts(ctx context.Context, tenantID, customerID uuid.UUID) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM ledger_entries
		WHERE tenant_id = $1 AND customer_id = $2`

	var sum int64
	if err := r.pool.QueryRow(ctx, query, tenantID, customerID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum ledger amounts: %w", err)
	}
	return sum, nil
}

// SumAmountsTx derives the balance inside the caller's transaction. Combined
// with a row lock on the customer this closes the stale-read race between a
// balance check and the subsequent append.
func (r *LedgerRepo) SumAmountsTx(ctx context.Context, tx pgx.Tx, tenantID, customerID uuid.UUID) (int64, error) {
	query := `SELECT COALESCE(SUM(amount), 0) FROM ledger_entries
		WHERE tenant_id = $1 AND customer_id = $2`

	var sum int64
	if err := tx.QueryRow(ctx, query, tenantID, customerID).Scan(&sum); err != nil {
		return 0, fmt.Errorf("sum ledger amounts in tx: %w", err)
	}
	return sum, nil
}

// List fetches a customer's entries newest first, with the total count.
func (r *LedgerRepo) List(ctx context.Context, tenantID, customerID uuid.UUID, limit, offset int) ([]domain.LedgerEntry, int64, error) {
	countQuery := `SELECT COUNT(*) FROM ledger_entries WHERE tenant_id = $1 AND customer_id = $2`

	var total int64
	if err := r.pool.QueryRow(ctx, countQuery, tenantID, customerID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count ledger entries: %w", err)
	}

	dataQuery := `SELECT ` + ledgerColumns + ` FROM ledger_entries
		WHERE tenant_id = $1 AND customer_id = $2
		ORDER BY created_at DESC LIMIT $3 OFFSET $4`

	rows, err := r.pool.Query(ctx, dataQuery, tenantID, customerID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.LedgerEntry
	for rows.Next() {
		e := domain.LedgerEntry{}
		err := rows.Scan(
			&e.ID, &e.TenantID, &e.CustomerID, &e.TransactionID,
			&e.Amount, &e.BalanceAfter, &e.IdempotencyKey, &e.OperationType, &e.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("scan ledger entry row: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate ledger entry rows: %w", err)
	}
	return entries, total, nil
}

// scanLedgerEntry is a helper to scan a single row into a LedgerEntry.
func scanLedgerEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	e := &domain.LedgerEntry{}
	err := row.Scan(
		&e.ID, &e.TenantID, &e.CustomerID, &e.TransactionID,
		&e.Amount, &e.BalanceAfter, &e.IdempotencyKey, &e.OperationType, &e.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan ledger entry: %w", err)
	}
	return e, nil
}
