package gatewaywebhook

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/edupay-labs/edupay-backend/pkg/db/models"
)

// LogRepository appends inbound notifications to the audit trail.
type LogRepository interface {
	Append(ctx context.Context, payload json.RawMessage) (*models.WebhookLog, error)
}

type logRepository struct {
	db *gorm.DB
}

// NewLogRepository builds the webhook log repository.
func NewLogRepository(db *gorm.DB) LogRepository {
	return &logRepository{db: db}
}

func (r *logRepository) Append(ctx context.Context, payload json.RawMessage) (*models.WebhookLog, error) {
	entry := &models.WebhookLog{
		ID:      uuid.New(),
		Payload: payload,
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return nil, err
	}
	return entry, nil
}
