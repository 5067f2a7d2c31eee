package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	err := New("LED_001", "Amount must be a nonzero quantity", http.StatusBadRequest)
	assert.Equal(t, "[LED_001] Amount must be a nonzero quantity", err.Error())
}

func TestAppError_ErrorWithWrapped(t *testing.T) {
	inner := errors.New("connection refused")
	err := Wrap("SYS_001", "Internal database error", http.StatusInternalServerError, inner)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Contains(t, err.Error(), "SYS_001")
}

func TestAppError_Unwrap(t *testing.T) {
	inner := errors.New("root cause")
	err := InternalError(fmt.Errorf("query failed: %w", inner))
	assert.True(t, errors.Is(err, inner))
}

func TestAppError_ErrorsAs(t *testing.T) {
	var appErr *AppError
	err := fmt.Errorf("wrapped: %w", ErrInsufficientBalance())
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "LED_003", appErr.Code)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.HTTPStatus)
}

func TestErrNotFound_Message(t *testing.T) {
	err := ErrNotFound("Customer")
	assert.Equal(t, "LED_002", err.Code)
	assert.Equal(t, "Customer not found", err.Message)
	assert.Equal(t, http.StatusNotFound, err.HTTPStatus)
}

func TestErrInvalidState(t *testing.T) {
	err := ErrInvalidState("Cannot reverse a failed transaction")
	assert.Equal(t, "LED_004", err.Code)
	assert.Equal(t, http.StatusConflict, err.HTTPStatus)
}
