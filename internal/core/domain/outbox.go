package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OutboxStatus is the delivery state of an outbox event.
// PENDING -> PUBLISHED is terminal success; PENDING -> FAILED is terminal
// failure after the retry budget is exhausted.
type OutboxStatus string

const (
	OutboxStatusPending   OutboxStatus = "PENDING"
	OutboxStatusPublished OutboxStatus = "PUBLISHED"
	OutboxStatusFailed    OutboxStatus = "FAILED"
)

// Event types published by the ledger core.
const (
	EventTypePointsIssued   = "points.issued"
	EventTypePointsRedeemed = "points.redeemed"
)

// PayloadSchemaVersion is the current version of outbox event payloads.
const PayloadSchemaVersion = 1

// OutboxEvent is a durable record of a domain fact to publish. It is created in
// the same database transaction as the ledger write it reports on; only the
// dispatcher mutates it afterwards.
type OutboxEvent struct {
	ID          uuid.UUID       `json:"id"`
	TenantID    uuid.UUID       `json:"tenant_id"`
	EventType   string          `json:"event_type"`
	Payload     json.RawMessage `json:"payload"`
	Status      OutboxStatus    `json:"status"`
	RetryCount  int             `json:"retry_count"`
	CreatedAt   time.Time       `json:"created_at"`
	PublishedAt *time.Time      `json:"published_at,omitempty"`
}

// PointsIssuedPayload is the payload for points.issued events.
type PointsIssuedPayload struct {
	SchemaVersion  int        `json:"schema_version"`
	TransactionID  uuid.UUID  `json:"transaction_id"`
	CustomerID     uuid.UUID  `json:"customer_id"`
	Amount         int64      `json:"amount"`
	BalanceAfter   int64      `json:"balance_after"`
	DeviceID       *uuid.UUID `json:"device_id,omitempty"`
	IdempotencyKey string     `json:"idempotency_key"`
	Reason         string     `json:"reason,omitempty"`
	Type           string     `json:"type,omitempty"` // MANUAL_ADJUSTMENT when applicable
}

// PointsRedeemedPayload is the payload for points.redeemed events.
type PointsRedeemedPayload struct {
	SchemaVersion  int       `json:"schema_version"`
	RedemptionID   uuid.UUID `json:"redemption_id,omitempty"`
	TransactionID  uuid.UUID `json:"transaction_id"`
	CustomerID     uuid.UUID `json:"customer_id"`
	RewardID       uuid.UUID `json:"reward_id,omitempty"`
	PointsDeducted int64     `json:"points_deducted,omitempty"`
	Amount         int64     `json:"amount,omitempty"`
	BalanceAfter   int64     `json:"balance_after"`
	IdempotencyKey string    `json:"idempotency_key"`
	Reason         string    `json:"reason,omitempty"`
	Type           string    `json:"type,omitempty"` // MANUAL_ADJUSTMENT when applicable
}
