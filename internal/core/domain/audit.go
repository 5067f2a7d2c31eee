package domain

import (
	"time"

	"github.com/google/uuid"
)

// AuditAction represents the type of audited action.
type AuditAction string

const (
	AuditActionManualAdjustment    AuditAction = "MANUAL_ADJUSTMENT"
	AuditActionTransactionReversed AuditAction = "TRANSACTION_REVERSED"

	// Fraud-signal trail, recorded best-effort after commits.
	AuditActionScanExecuted     AuditAction = "SCAN_EXECUTED"
	AuditActionRedemptionOK     AuditAction = "REDEMPTION_SUCCESS"
	AuditActionRedemptionFailed AuditAction = "REDEMPTION_FAILED"
)

// AuditLog records a single audited action in the system.
type AuditLog struct {
	ID           uuid.UUID   `json:"id"`
	TenantID     uuid.UUID   `json:"tenant_id"`
	UserID       *uuid.UUID  `json:"user_id,omitempty"`
	Action       AuditAction `json:"action"`
	ResourceType string      `json:"resource_type"`
	ResourceID   string      `json:"resource_id,omitempty"`
	Metadata     string      `json:"metadata,omitempty"` // JSON string
	CreatedAt    time.Time   `json:"created_at"`
}
