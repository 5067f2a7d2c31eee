package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// Transactor hands out the transactions that scope every balance-affecting
// write: the customer row lock, the ledger append, the transaction row and the
// outbox event all ride on one pgx.Tx and commit or roll back together.
type Transactor struct {
	pool Pool
}

// NewTransactor wraps the shared connection pool.
func NewTransactor(pool Pool) *Transactor {
	return &Transactor{pool: pool}
}

// Begin opens a transaction on the pool. Callers are expected to defer a
// Rollback and Commit explicitly on success.
func (t *Transactor) Begin(ctx context.Context) (pgx.Tx, error) {
	return t.pool.Begin(ctx)
}
