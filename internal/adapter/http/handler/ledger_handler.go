package handler

import (
	"strconv"

	"loyalty-ledger/internal/adapter/http/dto"
	"loyalty-ledger/internal/adapter/http/middleware"
	"loyalty-ledger/internal/core/ports"
	"loyalty-ledger/pkg/apperror"
	"loyalty-ledger/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// LedgerHandler handles balance and history reads.
type LedgerHandler struct {
	ledgerSvc ports.LedgerService
}

// NewLedgerHandler creates a new LedgerHandler.
func NewLedgerHandler(ledgerSvc ports.LedgerService) *LedgerHandler {
	return &LedgerHandler{ledgerSvc: ledgerSvc}
}

// GetBalance handles GET /api/v1/customers/:id/balance.
func (h *LedgerHandler) GetBalance(c *gin.Context) {
	tenantID, ok := c.Get(middleware.CtxTenantID)
	if !ok {
		response.Error(c, apperror.ErrMissingTenant())
		return
	}

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("customer id must be a valid UUID"))
		return
	}

	balance, err := h.ledgerSvc.GetBalance(c.Request.Context(), tenantID.(uuid.UUID), customerID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, dto.BalanceResponse{
		CustomerID: customerID.String(),
		Balance:    balance,
	})
}

// GetLedgerHistory handles GET /api/v1/customers/:id/ledger.
func (h *LedgerHandler) GetLedgerHistory(c *gin.Context) {
	tenantID, ok := c.Get(middleware.CtxTenantID)
	if !ok {
		response.Error(c, apperror.ErrMissingTenant())
		return
	}

	customerID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.Error(c, apperror.Validation("customer id must be a valid UUID"))
		return
	}

	// Out-of-range values are clamped by the service.
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	history, err := h.ledgerSvc.GetLedgerHistory(c.Request.Context(), tenantID.(uuid.UUID), customerID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}

	entries := make([]dto.LedgerEntryResponse, 0, len(history.Entries))
	for _, e := range history.Entries {
		entries = append(entries, dto.LedgerEntryResponse{
			ID:            e.ID.String(),
			TransactionID: e.TransactionID.String(),
			Amount:        e.Amount,
			BalanceAfter:  e.BalanceAfter,
			OperationType: string(e.OperationType),
			CreatedAt:     e.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		})
	}

	response.OK(c, dto.LedgerHistoryResponse{
		Entries:    entries,
		Page:       history.Page,
		Limit:      history.Limit,
		Total:      history.Total,
		TotalPages: history.TotalPages,
	})
}
