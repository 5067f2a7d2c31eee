package domain

import (
	"time"

	"github.com/google/uuid"
)

// Reference data: customers, devices, and rewards are owned by external
// services. The core only reads them to validate mutation preconditions.

// Customer is a loyalty program member.
type Customer struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Device is a point-of-sale device registered to a tenant.
type Device struct {
	ID        uuid.UUID `json:"id"`
	TenantID  uuid.UUID `json:"tenant_id"`
	Label     string    `json:"label"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Reward is a redeemable catalog item with a fixed point cost.
type Reward struct {
	ID             uuid.UUID `json:"id"`
	TenantID       uuid.UUID `json:"tenant_id"`
	Name           string    `json:"name"`
	PointsRequired int64     `json:"points_required"`
	Active         bool      `json:"active"`
	CreatedAt      time.Time `json:"created_at"`
}
