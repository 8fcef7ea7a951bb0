package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentStatus is the mutable settlement record for an order. Exactly one row
// exists per order; collect_request_id is the gateway-assigned key that
// webhooks and status polls reconcile against.
type PaymentStatus struct {
	ID                uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CollectID         uuid.UUID        `gorm:"column:collect_id;type:uuid;not null;index"`
	CollectRequestID  string           `gorm:"column:collect_request_id;not null;uniqueIndex"`
	CustomOrderID     *string          `gorm:"column:custom_order_id"`
	OrderAmount       decimal.Decimal  `gorm:"column:order_amount;type:numeric(12,2);not null"`
	TransactionAmount *decimal.Decimal `gorm:"column:transaction_amount;type:numeric(12,2)"`
	Status            string           `gorm:"column:status;not null;default:'pending';index"`
	PaymentMode       *string          `gorm:"column:payment_mode"`
	PaymentDetails    *string          `gorm:"column:payment_details"`
	BankReference     *string          `gorm:"column:bank_reference"`
	PaymentMessage    *string          `gorm:"column:payment_message"`
	ErrorMessage      *string          `gorm:"column:error_message"`
	PaymentTime       *time.Time       `gorm:"column:payment_time"`
	CreatedAt         time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
