package domain

import (
	"time"

	"github.com/google/uuid"
)

// RedemptionStatus represents the lifecycle state of a reward redemption.
type RedemptionStatus string

const (
	RedemptionStatusCompleted RedemptionStatus = "COMPLETED"
	RedemptionStatusFailed    RedemptionStatus = "FAILED"
)

// Redemption records one reward-redemption attempt, tied 1:1 to a REDEEM
// transaction with inverted-sign amount.
type Redemption struct {
	ID             uuid.UUID        `json:"id"`
	TenantID       uuid.UUID        `json:"tenant_id"`
	CustomerID     uuid.UUID        `json:"customer_id"`
	RewardID       uuid.UUID        `json:"reward_id"`
	PointsDeducted int64            `json:"points_deducted"`
	Status         RedemptionStatus `json:"status"`
	IdempotencyKey string           `json:"idempotency_key"`
	CompletedAt    *time.Time       `json:"completed_at,omitempty"`
	CreatedAt      time.Time        `json:"created_at"`
}
