package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/edupay-labs/edupay-backend/pkg/db/models"
)

func setupPaymentsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  school_id TEXT NOT NULL,
  trustee_id TEXT NOT NULL,
  student_name TEXT,
  student_external_id TEXT,
  student_email TEXT,
  gateway_name TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	paymentStatuses := `
CREATE TABLE IF NOT EXISTS payment_statuses (
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
);`
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(paymentStatuses).Error)
	return db
}

func createTestOrder(t *testing.T, repo Repository, schoolID string) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:          uuid.New(),
		SchoolID:    schoolID,
		TrusteeID:   "T1",
		GatewayName: "edviron",
	}
	require.NoError(t, repo.CreateOrder(context.Background(), order))
	return order
}

func createTestStatus(t *testing.T, repo Repository, orderID uuid.UUID, collectRequestID string) *models.PaymentStatus {
	t.Helper()

	status := &models.PaymentStatus{
		ID:               uuid.New(),
		CollectID:        orderID,
		CollectRequestID: collectRequestID,
		OrderAmount:      decimal.NewFromInt(500),
		Status:           "pending",
	}
	require.NoError(t, repo.CreatePaymentStatus(context.Background(), status))
	return status
}

func strPtr(s string) *string { return &s }

func TestFindStatusByCollectRequestID(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := createTestOrder(t, repo, "S1")
	createTestStatus(t, repo, order.ID, "R1")

	found, err := repo.FindStatusByCollectRequestID(ctx, "R1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, order.ID, found.CollectID)
	assert.Equal(t, "pending", found.Status)

	missing, err := repo.FindStatusByCollectRequestID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestApplyStatusUpdateMergesOnlyProvidedFields(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := createTestOrder(t, repo, "S1")
	createTestStatus(t, repo, order.ID, "R1")

	amount := decimal.NewFromInt(500)
	when := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	updated, err := repo.ApplyStatusUpdate(ctx, "R1", StatusUpdate{
		Status:            strPtr("success"),
		TransactionAmount: &amount,
		BankReference:     strPtr("BR-1"),
		PaymentTime:       &when,
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, "success", updated.Status)
	require.NotNil(t, updated.TransactionAmount)
	assert.True(t, updated.TransactionAmount.Equal(amount))
	assert.Nil(t, updated.PaymentMode)
	assert.True(t, updated.OrderAmount.Equal(decimal.NewFromInt(500)))

	// a later partial update leaves earlier merged fields alone
	second, err := repo.ApplyStatusUpdate(ctx, "R1", StatusUpdate{
		PaymentMode: strPtr("upi"),
	})
	require.NoError(t, err)
	require.NotNil(t, second)
	assert.Equal(t, "success", second.Status)
	require.NotNil(t, second.BankReference)
	assert.Equal(t, "BR-1", *second.BankReference)
	require.NotNil(t, second.PaymentMode)
	assert.Equal(t, "upi", *second.PaymentMode)
}

func TestApplyStatusUpdateKeepsExistingCustomOrderID(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	order := createTestOrder(t, repo, "S1")
	status := createTestStatus(t, repo, order.ID, "R1")
	require.NoError(t, db.Model(status).Update("custom_order_id", "DISPLAY-9").Error)

	updated, err := repo.ApplyStatusUpdate(ctx, "R1", StatusUpdate{
		CustomOrderID: strPtr("R1"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated)
	require.NotNil(t, updated.CustomOrderID)
	assert.Equal(t, "DISPLAY-9", *updated.CustomOrderID)

	// an empty display id counts as never set
	require.NoError(t, db.Model(status).Update("custom_order_id", "").Error)
	updated, err = repo.ApplyStatusUpdate(ctx, "R1", StatusUpdate{
		CustomOrderID: strPtr("R1"),
	})
	require.NoError(t, err)
	require.NotNil(t, updated.CustomOrderID)
	assert.Equal(t, "R1", *updated.CustomOrderID)
}

func TestApplyStatusUpdateNeverUpserts(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	updated, err := repo.ApplyStatusUpdate(ctx, "ghost", StatusUpdate{
		Status: strPtr("success"),
	})
	require.NoError(t, err)
	assert.Nil(t, updated)

	var count int64
	require.NoError(t, db.Table("payment_statuses").Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestFindOrdersMissingStatus(t *testing.T) {
	db := setupPaymentsTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	reconciled := createTestOrder(t, repo, "S1")
	createTestStatus(t, repo, reconciled.ID, "R1")
	orphaned := createTestOrder(t, repo, "S2")

	orders, err := repo.FindOrdersMissingStatus(ctx, 10)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, orphaned.ID, orders[0].ID)
}
