package models

import (
	"time"

	"github.com/google/uuid"
)

// StudentInfo carries the optional student details attached to an order.
type StudentInfo struct {
	Name       *string `gorm:"column:student_name" json:"name,omitempty"`
	ExternalID *string `gorm:"column:student_external_id" json:"id,omitempty"`
	Email      *string `gorm:"column:student_email" json:"email,omitempty"`
}

// Order records a payment intent. Immutable after creation except timestamps.
type Order struct {
	ID          uuid.UUID   `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	SchoolID    string      `gorm:"column:school_id;not null;index"`
	TrusteeID   string      `gorm:"column:trustee_id;not null"`
	StudentInfo StudentInfo `gorm:"embedded"`
	GatewayName string      `gorm:"column:gateway_name;not null"`
	CreatedAt   time.Time   `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time   `gorm:"column:updated_at;autoUpdateTime"`
}
