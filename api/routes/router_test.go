package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/edupay-labs/edupay-backend/api/middleware"
	"github.com/edupay-labs/edupay-backend/internal/auth"
	"github.com/edupay-labs/edupay-backend/internal/payments"
	"github.com/edupay-labs/edupay-backend/internal/transactions"
	"github.com/edupay-labs/edupay-backend/internal/users"
	gatewaywebhook "github.com/edupay-labs/edupay-backend/internal/webhooks/gateway"
	pkgauth "github.com/edupay-labs/edupay-backend/pkg/auth"
	"github.com/edupay-labs/edupay-backend/pkg/config"
	"github.com/edupay-labs/edupay-backend/pkg/gateway"
	"github.com/edupay-labs/edupay-backend/pkg/logger"
)

type stubSessionChecker struct{}

func (stubSessionChecker) HasSession(context.Context, string) (bool, error) {
	return true, nil
}

type stubGatewayClient struct{}

func (stubGatewayClient) CreateCollectRequest(_ context.Context, _ decimal.Decimal, _ string) (*gateway.CollectRequest, error) {
	return &gateway.CollectRequest{
		CollectRequestID:  "R1",
		CollectRequestURL: "https://pay.example/R1",
	}, nil
}

func (stubGatewayClient) FetchCollectStatus(context.Context, string) (*gateway.CollectStatus, error) {
	return &gateway.CollectStatus{Status: "PENDING"}, nil
}

func setupRouterTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`,
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

func routerTestConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "dev", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "router-test-secret",
			Issuer:            "edupay-test",
			ExpirationMinutes: 5,
			SessionTTLMinutes: 5,
		},
		Password: config.PasswordConfig{
			ArgonMemoryKB:    8192,
			ArgonTime:        1,
			ArgonParallelism: 1,
		},
		Transactions: config.TransactionsConfig{
			DefaultLimit:       10,
			SchoolDefaultLimit: 50,
			MaxLimit:           100,
		},
	}
}

func newTestRouter(t *testing.T) (http.Handler, *config.Config) {
	t.Helper()

	db := setupRouterTestDB(t)
	cfg := routerTestConfig()
	logg := logger.New(logger.Options{ServiceName: "router-test", Output: io.Discard})

	paymentsRepo := payments.NewRepository(db)

	authService, err := auth.NewService(auth.ServiceParams{
		UserRepo:       users.NewRepository(db),
		SessionManager: routerTestSessions{},
		JWTConfig:      cfg.JWT,
		PasswordConfig: cfg.Password,
	})
	require.NoError(t, err)

	paymentsService, err := payments.NewService(payments.ServiceParams{
		Repo:    paymentsRepo,
		Gateway: stubGatewayClient{},
		Logger:  logg,
	})
	require.NoError(t, err)

	transactionsService, err := transactions.NewService(transactions.ServiceParams{
		Repo:   transactions.NewRepository(db),
		Config: cfg.Transactions,
	})
	require.NoError(t, err)

	webhookService, err := gatewaywebhook.NewService(gatewaywebhook.ServiceParams{
		Logs:     gatewaywebhook.NewLogRepository(db),
		Payments: paymentsRepo,
		Logger:   logg,
	})
	require.NoError(t, err)

	router := NewRouter(RouterParams{
		Config:              cfg,
		Logger:              logg,
		SessionCheck:        stubSessionChecker{},
		AuthService:         authService,
		PaymentsService:     paymentsService,
		TransactionsService: transactionsService,
		WebhookService:      webhookService,
	})
	return router, cfg
}

type routerTestSessions struct{}

func (routerTestSessions) Create(context.Context, string) error { return nil }
func (routerTestSessions) Revoke(context.Context, string) error { return nil }

func mintTestCookie(t *testing.T, cfg *config.Config) *http.Cookie {
	t.Helper()

	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Email:  "viewer@example.com",
	})
	require.NoError(t, err)
	return &http.Cookie{Name: middleware.TokenCookieName, Value: token}
}

func TestRouterHealthIsPublic(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRouterWebhookIsPublic(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/webhook",
		strings.NewReader(`{"status": 200, "order_info": {"collect_request_id": "ghost"}}`))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	// no auth gate: the handler ran and answered not-found, not 401
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestRouterProtectedRoutesRequireCookie(t *testing.T) {
	router, cfg := newTestRouter(t)

	paths := []string{
		"/transactions",
		"/transaction-status/R1",
		"/check-status/R1",
		"/orders/unreconciled",
		"/api/auth/me",
	}
	for _, path := range paths {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		resp := httptest.NewRecorder()
		router.ServeHTTP(resp, req)
		assert.Equal(t, http.StatusUnauthorized, resp.Code, path)
	}

	req := httptest.NewRequest(http.MethodGet, "/transactions", nil)
	req.AddCookie(mintTestCookie(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestRouterAuthEndpointsUnderAPIPrefix(t *testing.T) {
	router, _ := newTestRouter(t)

	register := `{"name": "Viewer", "email": "viewer@example.com", "password": "sekret1"}`
	req := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(register))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())

	login := `{"email": "viewer@example.com", "password": "sekret1"}`
	req = httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(login))
	req.Header.Set("Content-Type", "application/json")
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var tokenCookie *http.Cookie
	for _, c := range resp.Result().Cookies() {
		if c.Name == middleware.TokenCookieName {
			tokenCookie = c
		}
	}
	require.NotNil(t, tokenCookie)

	req = httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(tokenCookie)
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var me struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &me))
	assert.Equal(t, "viewer@example.com", me.User.Email)
}

func TestRouterCreatePaymentFlow(t *testing.T) {
	router, cfg := newTestRouter(t)

	body := `{
		"amount": 500,
		"callback_url": "https://school.example/callback",
		"trustee_id": "T1",
		"student_info": {"name": "Alice"},
		"gateway_name": "edviron",
		"school_id": "S1"
	}`
	req := httptest.NewRequest(http.MethodPost, "/create-payment", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.AddCookie(mintTestCookie(t, cfg))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusCreated, resp.Code, resp.Body.String())
	var created struct {
		CollectRequestID string `json:"collect_request_id"`
		PaymentPageURL   string `json:"paymentPageUrl"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &created))
	assert.Equal(t, "R1", created.CollectRequestID)
	assert.Equal(t, "https://pay.example/R1", created.PaymentPageURL)

	// the linked pending status is queryable right away
	req = httptest.NewRequest(http.MethodGet, "/transaction-status/R1", nil)
	req.AddCookie(mintTestCookie(t, cfg))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	var row struct {
		Status           string `json:"status"`
		CollectRequestID string `json:"collect_request_id"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &row))
	assert.Equal(t, "pending", row.Status)
	assert.Equal(t, "R1", row.CollectRequestID)
}
