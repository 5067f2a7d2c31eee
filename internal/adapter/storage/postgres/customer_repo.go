package postgres

import (
	"context"
	"errors"
	"fmt"

	"loyalty-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// CustomerRepo implements ports.CustomerRepository.
type CustomerRepo struct {
	pool Pool
}

// NewCustomerRepo creates a new CustomerRepo.
func NewCustomerRepo(pool Pool) *CustomerRepo {
	return &CustomerRepo{pool: pool}
}

// GetByID fetches a customer by id within the tenant.
func (r *CustomerRepo) GetByID(ctx context.Context, tenantID, id uuid.UUID) (*domain.Customer, error) {
	query := `SELECT id, tenant_id, name, created_at FROM customers
		WHERE tenant_id = $1 AND id = $2`

	return scanCustomer(r.pool.QueryRow(ctx, query, tenantID, id))
}

// LockForUpdate fetches the customer row with FOR UPDATE, blocking concurrent
// mutations for the same customer until the enclosing transaction ends. All
// balance-affecting writes acquire this lock first, which serializes the
// check-then-append sequence and prevents double spends.
func (r *CustomerRepo) LockForUpdate(ctx context.Context, tx pgx.Tx, tenantID, id uuid.UUID) (*domain.Customer, error) {
	query := `SELECT id, tenant_id, name, created_at FROM customers
		WHERE tenant_id = $1 AND id = $2 FOR UPDATE`

	return scanCustomer(tx.QueryRow(ctx, query, tenantID, id))
}

func scanCustomer(row pgx.Row) (*domain.Customer, error) {
	c := &domain.Customer{}
	err := row.Scan(&c.ID, &c.TenantID, &c.Name, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan customer: %w", err)
	}
	return c, nil
}
