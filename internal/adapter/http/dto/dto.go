package dto

// IssuePointsRequest is the request body for issuing points.
type IssuePointsRequest struct {
	CustomerID string  `json:"customer_id" binding:"required,uuid"`
	Amount     int64   `json:"amount" binding:"required,gt=0"`
	DeviceID   *string `json:"device_id,omitempty" binding:"omitempty,uuid"`
}

// RedeemPointsRequest is the request body for redeeming a reward.
type RedeemPointsRequest struct {
	CustomerID string `json:"customer_id" binding:"required,uuid"`
	RewardID   string `json:"reward_id" binding:"required,uuid"`
}

// ManualAdjustmentRequest is the request body for a privileged balance adjustment.
// Amount is signed; negative adjustments may drive the balance below zero.
type ManualAdjustmentRequest struct {
	CustomerID string `json:"customer_id" binding:"required,uuid"`
	Amount     int64  `json:"amount" binding:"required"`
	Reason     string `json:"reason" binding:"required,max=500"`
}

// ReverseTransactionRequest is the request body for reversing a transaction.
type ReverseTransactionRequest struct {
	Reason string `json:"reason" binding:"required,max=500"`
}

// TransactionResponse is the response body for an issue operation.
type TransactionResponse struct {
	ID      string `json:"id"`
	Type    string `json:"type"`
	Amount  int64  `json:"amount"`
	Status  string `json:"status"`
	Balance int64  `json:"balance"`
}

// RedemptionResponse is the response body for a redemption.
type RedemptionResponse struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	PointsDeducted int64  `json:"points_deducted"`
	Balance        int64  `json:"balance"`
}

// AdjustmentResponse is the response body for adjustments and reversals.
type AdjustmentResponse struct {
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	BalanceAfter  int64  `json:"balance_after"`
}

// BalanceResponse is the response for a balance query.
type BalanceResponse struct {
	CustomerID string `json:"customer_id"`
	Balance    int64  `json:"balance"`
}

// LedgerEntryResponse is one ledger movement in a history page.
type LedgerEntryResponse struct {
	ID            string `json:"id"`
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	BalanceAfter  int64  `json:"balance_after"`
	OperationType string `json:"operation_type"`
	CreatedAt     string `json:"created_at"`
}

// LedgerHistoryResponse wraps a paginated ledger history.
type LedgerHistoryResponse struct {
	Entries    []LedgerEntryResponse `json:"entries"`
	Page       int                   `json:"page"`
	Limit      int                   `json:"limit"`
	Total      int64                 `json:"total"`
	TotalPages int                   `json:"total_pages"`
}
