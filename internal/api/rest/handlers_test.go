package rest

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bank-settlement-engine/internal/models"
	"bank-settlement-engine/internal/money"
	"bank-settlement-engine/internal/services"
	servicemocks "bank-settlement-engine/internal/services/mocks"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func setupTestRouter(handlers *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return SetupTransferRouter(handlers, testSecret)
}

func userToken(t *testing.T, userID int64) string {
	t.Helper()
	token, err := IssueToken(testSecret, userID, time.Minute)
	require.NoError(t, err)
	return token
}

func getAs(router *gin.Engine, target, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("GET", target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func postTransfer(router *gin.Engine, body string, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest("POST", "/api/v1/transfers", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestHandlers_InitiateTransfer_Accepted(t *testing.T) {
	mockService := new(servicemocks.MockTransactionService)
	router := setupTestRouter(NewHandlers(mockService))

	mockService.On("InitiateTransfer", mock.Anything, int64(10), mock.MatchedBy(func(r *models.TransferRequest) bool {
		return r.SrcAccount == 1 && r.DestAccount == 2 && r.Amount.Equal(decimal.RequireFromString("150.00"))
	})).Return(&models.TransferResponse{TransactionID: 99, Status: models.StatusPending, Message: "Transfer accepted for settlement"}, nil)

	w := postTransfer(router, `{"src_account":1,"dest_account":2,"amount":"150.00"}`, userToken(t, 10))

	assert.Equal(t, http.StatusAccepted, w.Code)

	var result models.TransferResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &result))
	assert.Equal(t, int64(99), result.TransactionID)
	assert.Equal(t, models.StatusPending, result.Status)

	mockService.AssertExpectations(t)
}

func TestHandlers_InitiateTransfer_ForeignSourceAccount(t *testing.T) {
	mockService := new(servicemocks.MockTransactionService)
	router := setupTestRouter(NewHandlers(mockService))

	mockService.On("InitiateTransfer", mock.Anything, int64(77), mock.Anything).
		Return(nil, services.ErrForbiddenAccount)

	w := postTransfer(router, `{"src_account":1,"dest_account":2,"amount":150}`, userToken(t, 77))
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestHandlers_InitiateTransfer_AnonymousRejected(t *testing.T) {
	mockService := new(servicemocks.MockTransactionService)
	router := setupTestRouter(NewHandlers(mockService))

	w := postTransfer(router, `{"src_account":1,"dest_account":2,"amount":"4999.00"}`, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "InitiateTransfer", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandlers_InitiateTransfer_InvalidToken(t *testing.T) {
	router := setupTestRouter(NewHandlers(new(servicemocks.MockTransactionService)))

	w := postTransfer(router, `{"src_account":1,"dest_account":2,"amount":150}`, "garbage")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandlers_InitiateTransfer_BadRequest(t *testing.T) {
	router := setupTestRouter(NewHandlers(new(servicemocks.MockTransactionService)))

	w := postTransfer(router, `{"src_account":1`, userToken(t, 10))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlers_InitiateTransfer_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{services.ErrInsufficientFunds, http.StatusBadRequest},
		{services.ErrAccountNotFound, http.StatusNotFound},
		{services.ErrQueueUnavailable, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			mockService := new(servicemocks.MockTransactionService)
			router := setupTestRouter(NewHandlers(mockService))
			mockService.On("InitiateTransfer", mock.Anything, int64(10), mock.Anything).Return(nil, tt.err)

			w := postTransfer(router, `{"src_account":1,"dest_account":2,"amount":"1.00"}`, userToken(t, 10))
			assert.Equal(t, tt.code, w.Code)
		})
	}
}

func TestHandlers_GetTransactionStatus(t *testing.T) {
	mockService := new(servicemocks.MockTransactionService)
	router := setupTestRouter(NewHandlers(mockService))

	mockService.On("GetTransactionStatus", mock.Anything, int64(10), int64(42)).Return(&models.TransactionStatusResponse{
		TransactionID: 42,
		DestAccount:   2,
		Amount:        money.MustParse("150.00"),
		Status:        models.StatusSuccess,
	}, nil)

	w := getAs(router, "/api/v1/transactions/42", userToken(t, 10))

	assert.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "SUCCESS", body["status"])
	assert.Equal(t, 150.0, body["amount"])
}

func TestHandlers_GetTransactionStatus_NotFoundAndInvalid(t *testing.T) {
	mockService := new(servicemocks.MockTransactionService)
	router := setupTestRouter(NewHandlers(mockService))

	mockService.On("GetTransactionStatus", mock.Anything, int64(10), int64(404)).Return(nil, services.ErrTransactionNotFound)

	w := getAs(router, "/api/v1/transactions/404", userToken(t, 10))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = getAs(router, "/api/v1/transactions/abc", userToken(t, 10))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandlers_GetTransactionStatus_Ownership(t *testing.T) {
	mockService := new(servicemocks.MockTransactionService)
	router := setupTestRouter(NewHandlers(mockService))

	mockService.On("GetTransactionStatus", mock.Anything, int64(20), int64(42)).Return(nil, services.ErrForbiddenTransaction)

	w := getAs(router, "/api/v1/transactions/42", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = getAs(router, "/api/v1/transactions/42", userToken(t, 20))
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "Not authorized to view this transaction")

	mockService.AssertNumberOfCalls(t, "GetTransactionStatus", 1)
}

func TestHandlers_ListAudit(t *testing.T) {
	mockService := new(servicemocks.MockTransactionService)
	router := setupTestRouter(NewHandlers(mockService))

	mockService.On("ListAudit", mock.Anything, 10).Return([]*models.AuditLog{{ID: 1, EventType: models.AuditTransactionSuccess}}, nil)

	w := getAs(router, "/api/v1/audit", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = getAs(router, "/api/v1/audit?limit=10", userToken(t, 10))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), models.AuditTransactionSuccess)
}

func TestHandlers_GenerateRandomTransfer(t *testing.T) {
	router := setupTestRouter(NewHandlers(new(servicemocks.MockTransactionService)))

	token := userToken(t, 10)
	w := getAs(router, "/api/v1/transfers/generate?accounts=1,2", token)
	require.Equal(t, http.StatusOK, w.Code)

	var req models.TransferRequest
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &req))
	assert.NotEqual(t, req.SrcAccount, req.DestAccount)

	w = getAs(router, "/api/v1/transfers/generate?accounts=1", token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseUserToken(t *testing.T) {
	token, err := IssueToken(testSecret, 7, time.Minute)
	require.NoError(t, err)

	userID, err := ParseUserToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), userID)

	_, err = ParseUserToken("other-secret", token)
	assert.Error(t, err)

	expired, err := IssueToken(testSecret, 7, -time.Minute)
	require.NoError(t, err)
	_, err = ParseUserToken(testSecret, expired)
	assert.Error(t, err)
}
