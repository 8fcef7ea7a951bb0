package transactions

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is the flat read model the dashboard consumes: a payment status
// row joined to its owning order. Order-side fields are pointers because the
// flexible-key lookup tolerates a missing order.
type Transaction struct {
	ID                uuid.UUID        `gorm:"column:id" json:"id"`
	CollectID         uuid.UUID        `gorm:"column:collect_id" json:"collect_id"`
	SchoolID          *string          `gorm:"column:school_id" json:"school_id"`
	TrusteeID         *string          `gorm:"column:trustee_id" json:"trustee_id"`
	Gateway           *string          `gorm:"column:gateway" json:"gateway"`
	OrderAmount       decimal.Decimal  `gorm:"column:order_amount" json:"order_amount"`
	TransactionAmount *decimal.Decimal `gorm:"column:transaction_amount" json:"transaction_amount"`
	Status            string           `gorm:"column:status" json:"status"`
	CustomOrderID     *string          `gorm:"column:custom_order_id" json:"custom_order_id"`
	CollectRequestID  string           `gorm:"column:collect_request_id" json:"collect_request_id"`
	PaymentTime       time.Time        `gorm:"-" json:"payment_time"`
	PaidAt            *time.Time       `gorm:"column:payment_time" json:"-"`
	PaymentMode       *string          `gorm:"column:payment_mode" json:"payment_mode"`
	PaymentDetails    *string          `gorm:"column:payment_details" json:"payment_details"`
	BankReference     *string          `gorm:"column:bank_reference" json:"bank_reference"`
	PaymentMessage    *string          `gorm:"column:payment_message" json:"payment_message"`
	ErrorMessage      *string          `gorm:"column:error_message" json:"error_message"`
	CreatedAt         time.Time        `gorm:"column:created_at" json:"created_at"`
	UpdatedAt         time.Time        `gorm:"column:updated_at" json:"updated_at"`
}

// resolvePaymentTime fills the display time from the raw nullable column,
// falling back to created_at for rows the gateway has not stamped yet. The
// fallback happens here rather than in SQL: a COALESCE over datetime columns
// loses its declared type and scans back as text on sqlite.
func (t *Transaction) resolvePaymentTime() {
	if t.PaidAt != nil {
		t.PaymentTime = *t.PaidAt
		return
	}
	t.PaymentTime = t.CreatedAt
}
