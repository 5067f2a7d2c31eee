package postgres

import (
	"context"
	"errors"
	"fmt"

	"loyalty-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DeviceRepo implements ports.DeviceRepository.
type DeviceRepo struct {
	pool Pool
}

// NewDeviceRepo creates a new DeviceRepo.
func NewDeviceRepo(pool Pool) *DeviceRepo {
	return &DeviceRepo{pool: pool}
}

// GetActive fetches an active device by id within the tenant. Inactive or
// unknown devices return (nil, nil).
func (r *DeviceRepo) GetActive(ctx context.Context, tenantID, id uuid.UUID) (*domain.Device, error) {
	query := `SELECT id, tenant_id, label, active, created_at FROM devices
		WHERE tenant_id = $1 AND id = $2 AND active = true`

	d := &domain.Device{}
	err := r.pool.QueryRow(ctx, query, tenantID, id).Scan(
		&d.ID, &d.TenantID, &d.Label, &d.Active, &d.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("scan device: %w", err)
	}
	return d, nil
}
