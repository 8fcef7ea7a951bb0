// Package gatewaywebhook reconciles asynchronous payment gateway
// notifications against locally tracked payment statuses.
package gatewaywebhook

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"

	"github.com/edupay-labs/edupay-backend/internal/payments"
	pkgerrors "github.com/edupay-labs/edupay-backend/pkg/errors"
	"github.com/edupay-labs/edupay-backend/pkg/logger"
	"github.com/edupay-labs/edupay-backend/pkg/metrics"
)

const (
	outcomeReconciled = "reconciled"
	outcomeUnmatched  = "unmatched"
	outcomeRejected   = "rejected"
)

// ServiceParams groups dependencies for the webhook reconciler.
type ServiceParams struct {
	Logs     LogRepository
	Payments payments.Repository
	Logger   *logger.Logger
	Metrics  *metrics.WebhookMetrics
}

// Service logs every inbound notification and applies it to the matching
// payment status row.
type Service struct {
	logs     LogRepository
	payments payments.Repository
	logger   *logger.Logger
	metrics  *metrics.WebhookMetrics
}

// NewService builds a webhook reconciler service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Logs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "webhook log repo required")
	}
	if params.Payments == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments repo required")
	}
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	return &Service{
		logs:     params.Logs,
		payments: params.Payments,
		logger:   params.Logger,
		metrics:  params.Metrics,
	}, nil
}

type envelope struct {
	Status    json.Number `json:"status"`
	OrderInfo *orderInfo  `json:"order_info"`
}

type orderInfo struct {
	CollectRequestID  string           `json:"collect_request_id"`
	OrderID           string           `json:"order_id"`
	OrderAmount       *decimal.Decimal `json:"order_amount"`
	TransactionAmount *decimal.Decimal `json:"transaction_amount"`
	Gateway           *string          `json:"gateway"`
	Status            *string          `json:"status"`
	PaymentMode       *string          `json:"payment_mode"`
	PaymentDetails    *string          `json:"payment_details"`
	BankReference     *string          `json:"bank_reference"`
	PaymentMessage    *string          `json:"payment_message"`
	ErrorMessage      *string          `json:"error_message"`
	PaymentTime       *string          `json:"payment_time"`
}

// Result acknowledges a reconciled notification.
type Result struct {
	Message         string `json:"message"`
	UpdatedRecordID string `json:"updated_record_id"`
}

// Process appends the raw payload to the webhook log, then applies an
// idempotent field-level update to the payment status row matched by the
// reconciliation key. The log write happens before any validation so every
// inbound call is auditable, including malformed ones.
func (s *Service) Process(ctx context.Context, payload json.RawMessage) (*Result, error) {
	if _, err := s.logs.Append(ctx, payload); err != nil {
		s.metrics.IncOutcome(outcomeRejected)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "append webhook log")
	}

	var body envelope
	if err := json.Unmarshal(payload, &body); err != nil {
		s.metrics.IncOutcome(outcomeRejected)
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "malformed webhook payload")
	}
	if body.Status == "" {
		s.metrics.IncOutcome(outcomeRejected)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "webhook status must be a number")
	}
	if body.OrderInfo == nil {
		s.metrics.IncOutcome(outcomeRejected)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order_info is required and must be an object")
	}

	info := body.OrderInfo
	key := info.CollectRequestID
	if key == "" {
		key = info.OrderID
	}
	if key == "" {
		s.metrics.IncOutcome(outcomeRejected)
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing collect_request_id in payload")
	}
	ctx = s.logger.WithCollectRequestID(ctx, key)

	update := payments.StatusUpdate{
		OrderAmount:       info.OrderAmount,
		TransactionAmount: info.TransactionAmount,
		Status:            info.Status,
		PaymentMode:       info.PaymentMode,
		PaymentDetails:    info.PaymentDetails,
		BankReference:     info.BankReference,
		PaymentMessage:    info.PaymentMessage,
		ErrorMessage:      info.ErrorMessage,
		PaymentTime:       parsePaymentTime(info.PaymentTime),
		CustomOrderID:     &key,
	}

	updated, err := s.payments.ApplyStatusUpdate(ctx, key, update)
	if err != nil {
		s.metrics.IncOutcome(outcomeRejected)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "apply webhook status update")
	}
	if updated == nil {
		s.logger.Warn(ctx, "webhook matched no payment status row")
		s.metrics.IncOutcome(outcomeUnmatched)
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found").
			WithDetails(map[string]any{"collect_request_id": key})
	}

	s.logger.Info(ctx, "webhook reconciled")
	s.metrics.IncOutcome(outcomeReconciled)
	return &Result{
		Message:         "webhook processed successfully",
		UpdatedRecordID: updated.ID.String(),
	}, nil
}

// parsePaymentTime falls back to the receipt time when the gateway omits or
// mangles payment_time, so settled rows always carry a timestamp.
func parsePaymentTime(raw *string) *time.Time {
	now := time.Now().UTC()
	if raw == nil || *raw == "" {
		return &now
	}
	parsed, err := time.Parse(time.RFC3339, *raw)
	if err != nil {
		return &now
	}
	return &parsed
}
