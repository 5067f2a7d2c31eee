package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"loyalty-ledger/internal/adapter/http/dto"
	"loyalty-ledger/internal/adapter/http/middleware"
	"loyalty-ledger/internal/core/domain"
	"loyalty-ledger/internal/core/ports"
	"loyalty-ledger/internal/core/ports/mocks"
	"loyalty-ledger/pkg/apperror"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(t *testing.T, method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, bytes.NewReader(body))
	c.Request.Header.Set("Content-Type", "application/json")
	return c, w
}

// --- Transaction Handler Tests ---

func TestIssuePoints_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTxn := mocks.NewMockTransactionService(ctrl)
	h := NewTransactionHandler(mockTxn)

	tenantID := uuid.New()
	customerID := uuid.New()
	txnID := uuid.New()

	mockTxn.EXPECT().IssuePoints(gomock.Any(), ports.IssuePointsRequest{
		TenantID:       tenantID,
		CustomerID:     customerID,
		Amount:         50,
		IdempotencyKey: "K1",
	}).Return(&ports.TransactionResult{
		ID:      txnID,
		Type:    domain.TransactionTypeIssue,
		Amount:  50,
		Status:  domain.TransactionStatusCompleted,
		Balance: 50,
	}, nil)

	body, _ := json.Marshal(dto.IssuePointsRequest{
		CustomerID: customerID.String(),
		Amount:     50,
	})

	c, w := newTestContext(t, http.MethodPost, "/api/v1/transactions/issue", body)
	c.Request.Header.Set(middleware.HeaderIdempotencyKey, "K1")
	c.Set(middleware.CtxTenantID, tenantID)

	h.IssuePoints(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, txnID.String(), data["id"])
	assert.Equal(t, float64(50), data["balance"])
}

func TestIssuePoints_MissingIdempotencyKey(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTxn := mocks.NewMockTransactionService(ctrl)
	h := NewTransactionHandler(mockTxn)

	body, _ := json.Marshal(dto.IssuePointsRequest{
		CustomerID: uuid.New().String(),
		Amount:     50,
	})

	c, w := newTestContext(t, http.MethodPost, "/api/v1/transactions/issue", body)
	c.Set(middleware.CtxTenantID, uuid.New())

	h.IssuePoints(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "LED_005", resp["error_code"])
}

func TestIssuePoints_InvalidAmount(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTxn := mocks.NewMockTransactionService(ctrl)
	h := NewTransactionHandler(mockTxn)

	// amount <= 0 fails the binding's gt=0 constraint
	body := []byte(`{"customer_id":"` + uuid.New().String() + `","amount":-5}`)

	c, w := newTestContext(t, http.MethodPost, "/api/v1/transactions/issue", body)
	c.Request.Header.Set(middleware.HeaderIdempotencyKey, "K1")
	c.Set(middleware.CtxTenantID, uuid.New())

	h.IssuePoints(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestIssuePoints_MissingTenant(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTxn := mocks.NewMockTransactionService(ctrl)
	h := NewTransactionHandler(mockTxn)

	c, w := newTestContext(t, http.MethodPost, "/api/v1/transactions/issue", []byte(`{}`))

	h.IssuePoints(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRedeemPoints_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTxn := mocks.NewMockTransactionService(ctrl)
	h := NewTransactionHandler(mockTxn)

	tenantID := uuid.New()
	customerID := uuid.New()
	rewardID := uuid.New()
	redemptionID := uuid.New()

	mockTxn.EXPECT().RedeemPoints(gomock.Any(), ports.RedeemPointsRequest{
		TenantID:       tenantID,
		CustomerID:     customerID,
		RewardID:       rewardID,
		IdempotencyKey: "K3",
	}).Return(&ports.RedemptionResult{
		ID:             redemptionID,
		Status:         domain.RedemptionStatusCompleted,
		PointsDeducted: 100,
		Balance:        10,
	}, nil)

	body, _ := json.Marshal(dto.RedeemPointsRequest{
		CustomerID: customerID.String(),
		RewardID:   rewardID.String(),
	})

	c, w := newTestContext(t, http.MethodPost, "/api/v1/transactions/redeem", body)
	c.Request.Header.Set(middleware.HeaderIdempotencyKey, "K3")
	c.Set(middleware.CtxTenantID, tenantID)

	h.RedeemPoints(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, redemptionID.String(), data["id"])
	assert.Equal(t, float64(100), data["points_deducted"])
	assert.Equal(t, float64(10), data["balance"])
}

func TestRedeemPoints_InsufficientBalance(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockTxn := mocks.NewMockTransactionService(ctrl)
	h := NewTransactionHandler(mockTxn)

	mockTxn.EXPECT().RedeemPoints(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrInsufficientBalance())

	body, _ := json.Marshal(dto.RedeemPointsRequest{
		CustomerID: uuid.New().String(),
		RewardID:   uuid.New().String(),
	})

	c, w := newTestContext(t, http.MethodPost, "/api/v1/transactions/redeem", body)
	c.Request.Header.Set(middleware.HeaderIdempotencyKey, "K9")
	c.Set(middleware.CtxTenantID, uuid.New())

	h.RedeemPoints(c)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "LED_003", resp["error_code"])
}

// --- Ledger Handler Tests ---

func TestGetBalance_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	tenantID := uuid.New()
	customerID := uuid.New()

	mockLedger.EXPECT().GetBalance(gomock.Any(), tenantID, customerID).Return(int64(110), nil)

	c, w := newTestContext(t, http.MethodGet, "/api/v1/customers/"+customerID.String()+"/balance", nil)
	c.Set(middleware.CtxTenantID, tenantID)
	c.Params = gin.Params{{Key: "id", Value: customerID.String()}}

	h.GetBalance(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(110), data["balance"])
}

func TestGetBalance_InvalidCustomerID(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	c, w := newTestContext(t, http.MethodGet, "/api/v1/customers/not-a-uuid/balance", nil)
	c.Set(middleware.CtxTenantID, uuid.New())
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.GetBalance(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetLedgerHistory_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockLedger := mocks.NewMockLedgerService(ctrl)
	h := NewLedgerHandler(mockLedger)

	tenantID := uuid.New()
	customerID := uuid.New()
	entry := domain.LedgerEntry{
		ID:            uuid.New(),
		TenantID:      tenantID,
		CustomerID:    customerID,
		TransactionID: uuid.New(),
		Amount:        -100,
		BalanceAfter:  10,
		OperationType: domain.OperationTypeRedeem,
	}

	mockLedger.EXPECT().GetLedgerHistory(gomock.Any(), tenantID, customerID, 2, 10).
		Return(&domain.LedgerPage{
			Entries:    []domain.LedgerEntry{entry},
			Page:       2,
			Limit:      10,
			Total:      11,
			TotalPages: 2,
		}, nil)

	c, w := newTestContext(t, http.MethodGet, "/api/v1/customers/"+customerID.String()+"/ledger?page=2&limit=10", nil)
	c.Set(middleware.CtxTenantID, tenantID)
	c.Params = gin.Params{{Key: "id", Value: customerID.String()}}

	h.GetLedgerHistory(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(11), data["total"])
	entries := data["entries"].([]interface{})
	require.Len(t, entries, 1)
	assert.Equal(t, float64(-100), entries[0].(map[string]interface{})["amount"])
}

// --- Operator Handler Tests ---

func TestManualAdjustment_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOp := mocks.NewMockOperatorService(ctrl)
	h := NewOperatorHandler(mockOp)

	tenantID := uuid.New()
	customerID := uuid.New()
	userID := uuid.New()
	txnID := uuid.New()

	mockOp.EXPECT().ManualAdjustment(gomock.Any(), ports.ManualAdjustmentRequest{
		TenantID:       tenantID,
		CustomerID:     customerID,
		Amount:         -20,
		Reason:         "goodwill correction",
		UserID:         userID,
		IdempotencyKey: "K4",
	}).Return(&ports.AdjustmentResult{
		TransactionID: txnID,
		Amount:        -20,
		BalanceAfter:  -10,
	}, nil)

	body, _ := json.Marshal(dto.ManualAdjustmentRequest{
		CustomerID: customerID.String(),
		Amount:     -20,
		Reason:     "goodwill correction",
	})

	c, w := newTestContext(t, http.MethodPost, "/api/v1/operator/adjustments", body)
	c.Request.Header.Set(middleware.HeaderIdempotencyKey, "K4")
	c.Set(middleware.CtxTenantID, tenantID)
	c.Set(middleware.CtxUserID, userID)

	h.ManualAdjustment(c)

	assert.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, txnID.String(), data["transaction_id"])
	assert.Equal(t, float64(-10), data["balance_after"])
}

func TestManualAdjustment_MissingUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOp := mocks.NewMockOperatorService(ctrl)
	h := NewOperatorHandler(mockOp)

	c, w := newTestContext(t, http.MethodPost, "/api/v1/operator/adjustments", []byte(`{}`))
	c.Set(middleware.CtxTenantID, uuid.New())

	h.ManualAdjustment(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestManualAdjustment_MissingReason(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOp := mocks.NewMockOperatorService(ctrl)
	h := NewOperatorHandler(mockOp)

	body, _ := json.Marshal(dto.ManualAdjustmentRequest{
		CustomerID: uuid.New().String(),
		Amount:     -20,
	})

	c, w := newTestContext(t, http.MethodPost, "/api/v1/operator/adjustments", body)
	c.Request.Header.Set(middleware.HeaderIdempotencyKey, "K4")
	c.Set(middleware.CtxTenantID, uuid.New())
	c.Set(middleware.CtxUserID, uuid.New())

	h.ManualAdjustment(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestReverseTransaction_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOp := mocks.NewMockOperatorService(ctrl)
	h := NewOperatorHandler(mockOp)

	tenantID := uuid.New()
	userID := uuid.New()
	originalID := uuid.New()
	reversalID := uuid.New()

	mockOp.EXPECT().ReverseTransaction(gomock.Any(), ports.ReverseTransactionRequest{
		TenantID:      tenantID,
		TransactionID: originalID,
		Reason:        "fraudulent scan",
		UserID:        userID,
	}).Return(&ports.AdjustmentResult{
		TransactionID: reversalID,
		Amount:        -50,
		BalanceAfter:  60,
	}, nil)

	body, _ := json.Marshal(dto.ReverseTransactionRequest{Reason: "fraudulent scan"})

	c, w := newTestContext(t, http.MethodPost, "/api/v1/operator/transactions/"+originalID.String()+"/reverse", body)
	c.Set(middleware.CtxTenantID, tenantID)
	c.Set(middleware.CtxUserID, userID)
	c.Params = gin.Params{{Key: "id", Value: originalID.String()}}

	h.ReverseTransaction(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, reversalID.String(), data["transaction_id"])
	assert.Equal(t, float64(-50), data["amount"])
}

func TestReverseTransaction_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockOp := mocks.NewMockOperatorService(ctrl)
	h := NewOperatorHandler(mockOp)

	mockOp.EXPECT().ReverseTransaction(gomock.Any(), gomock.Any()).
		Return(nil, apperror.ErrNotFound("Transaction"))

	body, _ := json.Marshal(dto.ReverseTransactionRequest{Reason: "mistake"})

	c, w := newTestContext(t, http.MethodPost, "/", body)
	c.Set(middleware.CtxTenantID, uuid.New())
	c.Set(middleware.CtxUserID, uuid.New())
	c.Params = gin.Params{{Key: "id", Value: uuid.New().String()}}

	h.ReverseTransaction(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

// --- Health Check ---

func TestHealthCheck_NoCheckers(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)
	HealthCheck()(c)
	assert.Equal(t, http.StatusOK, w.Code)
}

type fakeChecker struct {
	name string
	err  error
}

func (f fakeChecker) Ping(context.Context) error { return f.err }
func (f fakeChecker) Name() string               { return f.name }

func TestHealthCheck_Degraded(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/health", nil)

	HealthCheck(
		fakeChecker{name: "postgres"},
		fakeChecker{name: "nats", err: errors.New("not connected")},
	)(c)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "degraded", resp["status"])
}
