package domain

import (
	"time"

	"github.com/google/uuid"
)

// OperationType classifies what kind of business operation produced a ledger entry.
// Idempotency is scoped per (tenant, idempotency key, operation type), so the same
// raw key may legitimately appear under different operation types.
type OperationType string

const (
	OperationTypeTransaction      OperationType = "TRANSACTION"
	OperationTypeIssue            OperationType = "ISSUE"
	OperationTypeRedeem           OperationType = "REDEEM"
	OperationTypeManualAdjustment OperationType = "MANUAL_ADJUSTMENT"
)

// LedgerEntry is one immutable, signed point-balance movement. Entries are
// append-only: reversals are new entries with inverted sign, never mutations.
type LedgerEntry struct {
	ID             uuid.UUID     `json:"id"`
	TenantID       uuid.UUID     `json:"tenant_id"`
	CustomerID     uuid.UUID     `json:"customer_id"`
	TransactionID  uuid.UUID     `json:"transaction_id"`
	Amount         int64         `json:"amount"`        // Signed points
	BalanceAfter   int64         `json:"balance_after"` // Running balance including this entry
	IdempotencyKey string        `json:"idempotency_key"`
	OperationType  OperationType `json:"operation_type"`
	CreatedAt      time.Time     `json:"created_at"`
}

// AppendResult is what an idempotent append returns: the identity of the one
// entry stored for the key and the balance it produced. Repeated calls with the
// same (tenant, key, operation type) return the same result.
type AppendResult struct {
	ID           uuid.UUID `json:"id"`
	BalanceAfter int64     `json:"balance_after"`
}

// LedgerPage is one page of ledger history, newest entries first.
type LedgerPage struct {
	Entries    []LedgerEntry `json:"entries"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"total_pages"`
}
