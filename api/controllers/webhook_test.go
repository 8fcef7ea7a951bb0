package controllers

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/edupay-labs/edupay-backend/internal/payments"
	gatewaywebhook "github.com/edupay-labs/edupay-backend/internal/webhooks/gateway"
	"github.com/edupay-labs/edupay-backend/pkg/db/models"
	"github.com/edupay-labs/edupay-backend/pkg/logger"
)

func setupWebhookControllerDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  trustee_id TEXT NOT NULL,
  student_name TEXT,
  student_external_id TEXT,
  student_email TEXT,
  gateway_name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS payment_statuses (
  id TEXT PRIMARY KEY,
  collect_id TEXT NOT NULL,
  collect_request_id TEXT NOT NULL UNIQUE,
  custom_order_id TEXT,
  order_amount NUMERIC NOT NULL,
  transaction_amount NUMERIC,
  status TEXT NOT NULL DEFAULT 'pending',
  payment_mode TEXT,
  payment_details TEXT,
  bank_reference TEXT,
  payment_message TEXT,
  error_message TEXT,
  payment_time DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE IF NOT EXISTS webhook_logs (
  id TEXT PRIMARY KEY,
  payload TEXT NOT NULL,
  received_at DATETIME
);`,
	}
	for _, stmt := range schema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newWebhookHandler(t *testing.T, db *gorm.DB) http.HandlerFunc {
	t.Helper()

	svc, err := gatewaywebhook.NewService(gatewaywebhook.ServiceParams{
		Logs:     gatewaywebhook.NewLogRepository(db),
		Payments: payments.NewRepository(db),
		Logger:   logger.New(logger.Options{ServiceName: "webhook-test", Output: io.Discard}),
	})
	require.NoError(t, err)
	return GatewayWebhook(svc, nil)
}

func postWebhook(handler http.HandlerFunc, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	handler.ServeHTTP(resp, req)
	return resp
}

func TestGatewayWebhookSuccess(t *testing.T) {
	db := setupWebhookControllerDB(t)

	order := &models.Order{ID: uuid.New(), SchoolID: "S1", TrusteeID: "T1", GatewayName: "edviron"}
	require.NoError(t, db.Create(order).Error)
	status := &models.PaymentStatus{
		ID:               uuid.New(),
		CollectID:        order.ID,
		CollectRequestID: "R1",
		OrderAmount:      decimal.NewFromInt(500),
		Status:           "pending",
	}
	require.NoError(t, db.Create(status).Error)

	resp := postWebhook(newWebhookHandler(t, db),
		`{"status": 200, "order_info": {"collect_request_id": "R1", "status": "success", "transaction_amount": 500}}`)

	require.Equal(t, http.StatusOK, resp.Code)
	var body struct {
		Message         string `json:"message"`
		UpdatedRecordID string `json:"updated_record_id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, status.ID.String(), body.UpdatedRecordID)
	assert.NotEmpty(t, body.Message)
}

func TestGatewayWebhookUnmatchedKeyReturns404WithKey(t *testing.T) {
	db := setupWebhookControllerDB(t)

	resp := postWebhook(newWebhookHandler(t, db),
		`{"status": 200, "order_info": {"collect_request_id": "ghost", "status": "success"}}`)

	require.Equal(t, http.StatusNotFound, resp.Code)
	var body struct {
		Message          string `json:"message"`
		CollectRequestID string `json:"collect_request_id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "ghost", body.CollectRequestID)
	assert.NotEmpty(t, body.Message)
}

func TestGatewayWebhookMissingKeyReturns400(t *testing.T) {
	db := setupWebhookControllerDB(t)

	resp := postWebhook(newWebhookHandler(t, db),
		`{"status": 200, "order_info": {"status": "success"}}`)

	require.Equal(t, http.StatusBadRequest, resp.Code)

	// the raw payload is still logged for the audit trail
	var count int64
	require.NoError(t, db.Table("webhook_logs").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}
