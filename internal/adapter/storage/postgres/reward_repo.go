package postgres

import (
	"context"
	"errors"
	"fmt"

	"loyalty-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// RewardRepo implements ports.RewardRepository.
type RewardRepo struct {
	pool Pool
}

// NewRewardRepo creates a new RewardRepo.
func NewRewardRepo(pool Pool) *RewardRepo {
	return &RewardRepo{pool: pool}
}

// GetActive fetches an active reward by id within the tenant. Inactive or
// unknown rewards return (nil, nil).
func (r *RewardRepo) GetActive(ctx context.Context, tenantID, id uuid.UUID) (*domain.Reward, error) {
	query := `SELECT id, tenant_id, name, points_required, active, created_at FROM rewards
		WHERE tenant_id = $1 AND id = $2 AND active = true`

	rw := &domain.Reward{}
	err := r.pool.QueryRow(ctx, query, tenantID, id).Scan(
		&rw.ID, &rw.TenantID, &rw.Name, &rw.PointsRequired, &rw.Active, &rw.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan reward: %w", err)
	}
	return rw, nil
}
