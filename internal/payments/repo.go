package payments

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/edupay-labs/edupay-backend/pkg/db/models"
)

// StatusUpdate is a field-level merge against a PaymentStatus row. Nil fields
// are left untouched, which is what makes webhook replays converge.
type StatusUpdate struct {
	OrderAmount       *decimal.Decimal
	TransactionAmount *decimal.Decimal
	Status            *string
	PaymentMode       *string
	PaymentDetails    *string
	BankReference     *string
	PaymentMessage    *string
	ErrorMessage      *string
	PaymentTime       *time.Time
	CustomOrderID     *string
}

// Repository handles order and payment-status persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	CreateOrder(ctx context.Context, order *models.Order) error
	CreatePaymentStatus(ctx context.Context, status *models.PaymentStatus) error
	FindStatusByCollectRequestID(ctx context.Context, collectRequestID string) (*models.PaymentStatus, error)
	ApplyStatusUpdate(ctx context.Context, collectRequestID string, update StatusUpdate) (*models.PaymentStatus, error)
	FindOrdersMissingStatus(ctx context.Context, limit int) ([]models.Order, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a payments repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *repository) CreatePaymentStatus(ctx context.Context, status *models.PaymentStatus) error {
	return r.db.WithContext(ctx).Create(status).Error
}

func (r *repository) FindStatusByCollectRequestID(ctx context.Context, collectRequestID string) (*models.PaymentStatus, error) {
	var status models.PaymentStatus
	err := r.db.WithContext(ctx).
		Where("collect_request_id = ?", collectRequestID).
		First(&status).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &status, nil
}

// ApplyStatusUpdate merges the non-nil fields into the row matched by
// collect_request_id. Returns nil without error when no row matches; it never
// creates one.
func (r *repository) ApplyStatusUpdate(ctx context.Context, collectRequestID string, update StatusUpdate) (*models.PaymentStatus, error) {
	fields := map[string]any{}
	if update.OrderAmount != nil {
		fields["order_amount"] = *update.OrderAmount
	}
	if update.TransactionAmount != nil {
		fields["transaction_amount"] = *update.TransactionAmount
	}
	if update.Status != nil {
		fields["status"] = *update.Status
	}
	if update.PaymentMode != nil {
		fields["payment_mode"] = *update.PaymentMode
	}
	if update.PaymentDetails != nil {
		fields["payment_details"] = *update.PaymentDetails
	}
	if update.BankReference != nil {
		fields["bank_reference"] = *update.BankReference
	}
	if update.PaymentMessage != nil {
		fields["payment_message"] = *update.PaymentMessage
	}
	if update.ErrorMessage != nil {
		fields["error_message"] = *update.ErrorMessage
	}
	if update.PaymentTime != nil {
		fields["payment_time"] = *update.PaymentTime
	}
	if update.CustomOrderID != nil {
		// only fills the display id when it was never meaningfully set
		fields["custom_order_id"] = gorm.Expr("COALESCE(NULLIF(custom_order_id, ''), ?)", *update.CustomOrderID)
	}

	if len(fields) == 0 {
		return r.FindStatusByCollectRequestID(ctx, collectRequestID)
	}

	res := r.db.WithContext(ctx).
		Model(&models.PaymentStatus{}).
		Where("collect_request_id = ?", collectRequestID).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}

	return r.FindStatusByCollectRequestID(ctx, collectRequestID)
}

// FindOrdersMissingStatus lists orders whose PaymentStatus creation never
// completed, the operator-visible trace of a failed gateway call.
func (r *repository) FindOrdersMissingStatus(ctx context.Context, limit int) ([]models.Order, error) {
	if limit <= 0 {
		limit = 100
	}
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Table("orders").
		Joins("LEFT JOIN payment_statuses ON payment_statuses.collect_id = orders.id").
		Where("payment_statuses.id IS NULL").
		Order("orders.created_at DESC").
		Limit(limit).
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}
