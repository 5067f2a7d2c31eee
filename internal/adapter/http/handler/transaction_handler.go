package handler

import (
	"loyalty-ledger/internal/adapter/http/dto"
	"loyalty-ledger/internal/adapter/http/middleware"
	"loyalty-ledger/internal/core/ports"
	"loyalty-ledger/pkg/apperror"
	"loyalty-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// TransactionHandler handles customer-facing point mutations.
type TransactionHandler struct {
	txnSvc ports.TransactionService
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(txnSvc ports.TransactionService) *TransactionHandler {
	return &TransactionHandler{txnSvc: txnSvc}
}

// IssuePoints handles POST /api/v1/transactions/issue.
func (h *TransactionHandler) IssuePoints(c *gin.Context) {
	tenantID, ok := c.Get(middleware.CtxTenantID)
	if !ok {
		response.Error(c, apperror.ErrMissingTenant())
		return
	}

	key, err := idempotencyKey(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.IssuePointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		response.Error(c, apperror.Validation("customer_id must be a valid UUID"))
		return
	}

	var deviceID *uuid.UUID
	if req.DeviceID != nil {
		id, err := uuid.Parse(*req.DeviceID)
		if err != nil {
			response.Error(c, apperror.Validation("device_id must be a valid UUID"))
			return
		}
		deviceID = &id
	}

	result, err := h.txnSvc.IssuePoints(c.Request.Context(), ports.IssuePointsRequest{
		TenantID:       tenantID.(uuid.UUID),
		CustomerID:     customerID,
		Amount:         req.Amount,
		DeviceID:       deviceID,
		IdempotencyKey: key,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.TransactionResponse{
		ID:      result.ID.String(),
		Type:    string(result.Type),
		Amount:  result.Amount,
		Status:  string(result.Status),
		Balance: result.Balance,
	})
}

// RedeemPoints handles POST /api/v1/transactions/redeem.
func (h *TransactionHandler) RedeemPoints(c *gin.Context) {
	tenantID, ok := c.Get(middleware.CtxTenantID)
	if !ok {
		response.Error(c, apperror.ErrMissingTenant())
		return
	}

	key, err := idempotencyKey(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.RedeemPointsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		response.Error(c, apperror.Validation("customer_id must be a valid UUID"))
		return
	}
	rewardID, err := uuid.Parse(req.RewardID)
	if err != nil {
		response.Error(c, apperror.Validation("reward_id must be a valid UUID"))
		return
	}

	result, err := h.txnSvc.RedeemPoints(c.Request.Context(), ports.RedeemPointsRequest{
		TenantID:       tenantID.(uuid.UUID),
		CustomerID:     customerID,
		RewardID:       rewardID,
		IdempotencyKey: key,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, dto.RedemptionResponse{
		ID:             result.ID.String(),
		Status:         string(result.Status),
		PointsDeducted: result.PointsDeducted,
		Balance:        result.Balance,
	})
}

// idempotencyKey reads and validates the Idempotency-Key header.
func idempotencyKey(c *gin.Context) (string, error) {
	key := c.GetHeader(middleware.HeaderIdempotencyKey)
	if key == "" {
		return "", apperror.ErrMissingIdempotencyKey()
	}
	if !dto.ValidIdempotencyKey(key) {
		return "", apperror.Validation("idempotency key must be at most 255 URL-safe characters")
	}
	return key, nil
}
