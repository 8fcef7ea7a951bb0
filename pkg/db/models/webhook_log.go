package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// WebhookLog is the append-only audit trail of inbound gateway notifications.
// Rows are written before reconciliation is attempted and never mutated.
type WebhookLog struct {
	ID         uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Payload    json.RawMessage `gorm:"column:payload;type:jsonb;not null"`
	ReceivedAt time.Time       `gorm:"column:received_at;autoCreateTime"`
}
