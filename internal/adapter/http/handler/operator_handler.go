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

// OperatorHandler handles privileged operator endpoints.
type OperatorHandler struct {
	operatorSvc ports.OperatorService
}

// NewOperatorHandler creates a new OperatorHandler.
func NewOperatorHandler(operatorSvc ports.OperatorService) *OperatorHandler {
	return &OperatorHandler{operatorSvc: operatorSvc}
}

// ManualAdjustment handles POST /api/v1/operator/adjustments.
func (h *OperatorHandler) ManualAdjustment(c *gin.Context) {
	tenantID, ok := c.Get(middleware.CtxTenantID)
	if !ok {
		response.Error(c, apperror.ErrMissingTenant())
		return
	}
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrMissingUser())
		return
	}

	key, err := idempotencyKey(c)
	if err != nil {
		response.Error(c, err)
		return
	}

	var req dto.ManualAdjustmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		response.Error(c, apperror.Validation("customer_id must be a valid UUID"))
		return
	}

	result, err := h.operatorSvc.ManualAdjustment(c.Request.Context(), ports.ManualAdjustmentRequest{
		TenantID:       tenantID.(uuid.UUID),
		CustomerID:     customerID,
		Amount:         req.Amount,
		Reason:         req.Reason,
		UserID:         userID.(uuid.UUID),
		IdempotencyKey: key,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, toAdjustmentResponse(result))
}

// ReverseTransaction handles POST /api/v1/operator/transactions/:id/reverse.
func (h *OperatorHandler) ReverseTransaction(c *gin.Context) {
	tenantID, ok := c.Get(middleware.CtxTenantID)
	if !ok {
		response.Error(c, apperror.ErrMissingTenant())
		return
	}
	userID, ok := c.Get(middleware.CtxUserID)
	if !ok {
		response.Error(c, apperror.ErrMissingUser())
		return
	}

	transactionID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("transaction id must be a valid UUID"))
		return
	}

	var req dto.ReverseTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, apperror.Validation(err.Error()))
		return
	}

	result, err := h.operatorSvc.ReverseTransaction(c.Request.Context(), ports.ReverseTransactionRequest{
		TenantID:      tenantID.(uuid.UUID),
		TransactionID: transactionID,
		Reason:        req.Reason,
		UserID:        userID.(uuid.UUID),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, toAdjustmentResponse(result))
}

// toAdjustmentResponse converts a service result to its DTO.
func toAdjustmentResponse(r *ports.AdjustmentResult) dto.AdjustmentResponse {
	return dto.AdjustmentResponse{
		TransactionID: r.TransactionID.String(),
		Amount:        r.Amount,
		BalanceAfter:  r.BalanceAfter,
	}
}
