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

// RedemptionRepo implements ports.RedemptionRepository.
type RedemptionRepo struct {
	pool Pool
}

// NewRedemptionRepo creates a new RedemptionRepo.
func NewRedemptionRepo(pool Pool) *RedemptionRepo {
	return &RedemptionRepo{pool: pool}
}

// Create inserts a redemption record within a database transaction.
func (r *RedemptionRepo) Create(ctx context.Context, tx pgx.Tx, red *domain.Redemption) error {
	query := `INSERT INTO redemptions
		(id, tenant_id, customer_id, reward_id, points_deducted, status, idempotency_key, completed_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := tx.Exec(ctx, query,
		red.ID, red.TenantID, red.CustomerID, red.RewardID, red.PointsDeducted,
		red.Status, red.IdempotencyKey, red.CompletedAt, red.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ports.ErrDuplicateEntry
		}
		return fmt.Errorf("insert redemption: %w", err)
	}
	return nil
}

// GetByIdempotencyKey fetches a redemption by its idempotency key.
func (r *RedemptionRepo) GetByIdempotencyKey(ctx context.Context, tenantID uuid.UUID, key string) (*domain.Redemption, error) {
	query := `SELECT id, tenant_id, customer_id, reward_id, points_deducted, status, idempotency_key, completed_at, created_at
		FROM redemptions WHERE tenant_id = $1 AND idempotency_key = $2`

	red := &domain.Redemption{}
	err := r.pool.QueryRow(ctx, query, tenantID, key).Scan(
		&red.ID, &red.TenantID, &red.CustomerID, &red.RewardID, &red.PointsDeducted,
		&red.Status, &red.IdempotencyKey, &red.CompletedAt, &red.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan redemption: %w", err)
	}
	return red, nil
}
