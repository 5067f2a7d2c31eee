package postgres

import (
	"context"
	"fmt"

	"loyalty-ledger/internal/core/domain"
)

// AuditRepo implements ports.AuditRepository. Audit writes run outside ledger
// transactions; a lost audit row never rolls back a committed mutation.
type AuditRepo struct {
	pool Pool
}

// NewAuditRepo creates a new AuditRepo.
func NewAuditRepo(pool Pool) *AuditRepo {
	return &AuditRepo{pool: pool}
}

// Create inserts an audit log entry.
func (r *AuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	query := `INSERT INTO audit_logs
		(id, tenant_id, user_id, action, resource_type, resource_id, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := r.pool.Exec(ctx, query,
		entry.ID, entry.TenantID, entry.UserID, entry.Action,
		entry.ResourceType, entry.ResourceID, entry.Metadata, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}
