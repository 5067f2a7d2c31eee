package domain

import (
	"time"

	"github.com/google/uuid"
)

// TransactionType represents the direction of a points movement.
type TransactionType string

const (
	TransactionTypeIssue  TransactionType = "ISSUE"
	TransactionTypeRedeem TransactionType = "REDEEM"
)

// TransactionStatus represents the recorded outcome of a mutation attempt.
type TransactionStatus string

const (
	TransactionStatusCompleted TransactionStatus = "COMPLETED"
	TransactionStatusFailed    TransactionStatus = "FAILED"
)

// MetadataSchemaVersion is the current version of TransactionMetadata. Consumers
// use it to evolve independently of producers.
const MetadataSchemaVersion = 1

// TransactionMetadata is the typed metadata blob attached to a transaction.
// Stored as JSONB; fields are additive only.
type TransactionMetadata struct {
	SchemaVersion         int        `json:"schema_version"`
	Type                  string     `json:"type,omitempty"` // e.g. MANUAL_ADJUSTMENT
	Reason                string     `json:"reason,omitempty"`
	AdjustedBy            *uuid.UUID `json:"adjusted_by,omitempty"`
	Reversed              bool       `json:"reversed,omitempty"`
	ReversalTransactionID *uuid.UUID `json:"reversal_transaction_id,omitempty"`
	ReversalReason        string     `json:"reversal_reason,omitempty"`
	ReversedAt            *time.Time `json:"reversed_at,omitempty"`
}

// Transaction is a business-level record of one points mutation attempt. Exactly
// one LedgerEntry corresponds to it, matched by idempotency key + operation type.
// Amount is signed: ISSUE rows are positive, REDEEM rows negative, so a reversal
// is always the exact negation of the stored amount.
type Transaction struct {
	ID             uuid.UUID            `json:"id"`
	TenantID       uuid.UUID            `json:"tenant_id"`
	CustomerID     uuid.UUID            `json:"customer_id"`
	Type           TransactionType      `json:"type"`
	Amount         int64                `json:"amount"`
	Status         TransactionStatus    `json:"status"`
	IdempotencyKey string               `json:"idempotency_key"`
	DeviceID       *uuid.UUID           `json:"device_id,omitempty"`
	Metadata       *TransactionMetadata `json:"metadata,omitempty"`
	CreatedAt      time.Time            `json:"created_at"`
}

// IsReversed reports whether a reversal has already been applied.
func (t *Transaction) IsReversed() bool {
	return t.Metadata != nil && t.Metadata.Reversed
}

// BuildReversalIdempotencyKey derives the idempotency key for reversing a
// transaction. It depends only on the original transaction id, so a retried
// reversal request converges on the single existing reversal instead of
// double-reversing.
func BuildReversalIdempotencyKey(originalTransactionID uuid.UUID) string {
	return "reversal-" + originalTransactionID.String()
}

// BuildRedemptionTransactionKey derives the key used for the Transaction row
// created by a redemption. The redemption itself keeps the client key; the
// suffix keeps the two rows distinct under the per-tenant key constraint.
func BuildRedemptionTransactionKey(idempotencyKey string) string {
	return idempotencyKey + "-tx"
}
