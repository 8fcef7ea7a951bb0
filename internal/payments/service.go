package payments

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/edupay-labs/edupay-backend/pkg/db/models"
	"github.com/edupay-labs/edupay-backend/pkg/enums"
	pkgerrors "github.com/edupay-labs/edupay-backend/pkg/errors"
	"github.com/edupay-labs/edupay-backend/pkg/gateway"
	"github.com/edupay-labs/edupay-backend/pkg/logger"
)

// GatewayClient is the outbound surface of the remote payment gateway.
type GatewayClient interface {
	CreateCollectRequest(ctx context.Context, amount decimal.Decimal, callbackURL string) (*gateway.CollectRequest, error)
	FetchCollectStatus(ctx context.Context, collectRequestID string) (*gateway.CollectStatus, error)
}

// ServiceParams groups dependencies for the payments service.
type ServiceParams struct {
	Repo    Repository
	Gateway GatewayClient
	Logger  *logger.Logger
}

// Service creates collection requests and reconciles polled statuses.
type Service struct {
	repo    Repository
	gateway GatewayClient
	logger  *logger.Logger
}

// NewService builds a payments service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "payments repo required")
	}
	if params.Gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "gateway client required")
	}
	return &Service{
		repo:    params.Repo,
		gateway: params.Gateway,
		logger:  params.Logger,
	}, nil
}

// CreateCollectInput is the validated payload for a new collection request.
type CreateCollectInput struct {
	Amount      decimal.Decimal
	CallbackURL string
	TrusteeID   string
	StudentInfo models.StudentInfo
	GatewayName string
	SchoolID    string
}

// CreateCollectResult mirrors the shape the dashboard frontend consumes.
type CreateCollectResult struct {
	CollectRequestID string `json:"collect_request_id"`
	PaymentPageURL   string `json:"paymentPageUrl"`
}

// CreateCollect persists the order, registers the collection with the gateway,
// and records its pending payment status.
//
// The order write deliberately precedes the gateway call. When the gateway
// fails, the order survives without a PaymentStatus row; that partial state is
// surfaced to operators through FindOrdersMissingStatus rather than rolled
// back.
func (s *Service) CreateCollect(ctx context.Context, input CreateCollectInput) (*CreateCollectResult, error) {
	if input.Amount.Sign() <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be positive")
	}
	if input.CallbackURL == "" || input.TrusteeID == "" || input.GatewayName == "" || input.SchoolID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "missing required fields")
	}

	order := &models.Order{
		ID:          uuid.New(),
		SchoolID:    input.SchoolID,
		TrusteeID:   input.TrusteeID,
		StudentInfo: input.StudentInfo,
		GatewayName: input.GatewayName,
	}
	if err := s.repo.CreateOrder(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
	}

	collect, err := s.gateway.CreateCollectRequest(ctx, input.Amount, input.CallbackURL)
	if err != nil {
		if s.logger != nil {
			lctx := s.logger.WithFields(ctx, map[string]any{
				"order_id":  order.ID.String(),
				"school_id": input.SchoolID,
			})
			s.logger.Warn(lctx, "gateway call failed after order write; order left without payment status")
		}
		return nil, err
	}

	pending := string(enums.PaymentStatePending)
	status := &models.PaymentStatus{
		ID:               uuid.New(),
		CollectID:        order.ID,
		CollectRequestID: collect.CollectRequestID,
		CustomOrderID:    &collect.CollectRequestID,
		OrderAmount:      input.Amount,
		Status:           pending,
	}
	if err := s.repo.CreatePaymentStatus(ctx, status); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create payment status")
	}

	return &CreateCollectResult{
		CollectRequestID: collect.CollectRequestID,
		PaymentPageURL:   collect.CollectRequestURL,
	}, nil
}

// CollectStatusResult carries the gateway's live view plus its signed
// confirmation token.
type CollectStatusResult struct {
	Status    string           `json:"status"`
	Amount    *decimal.Decimal `json:"amount"`
	Details   json.RawMessage  `json:"details"`
	StatusJWT string           `json:"statusJwt"`
}

// CheckCollectStatus polls the gateway and merges the answer into the local
// payment status row. When no local row matches, the gateway result is still
// returned; the divergence is logged instead of materialized as a new row.
func (s *Service) CheckCollectStatus(ctx context.Context, collectRequestID string) (*CollectStatusResult, error) {
	fetched, err := s.gateway.FetchCollectStatus(ctx, collectRequestID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	update := StatusUpdate{
		Status:      &fetched.Status,
		PaymentTime: &now,
	}
	if fetched.Amount != nil {
		update.TransactionAmount = fetched.Amount
	}
	if details := detailsToString(fetched.Details); details != nil {
		update.PaymentDetails = details
	}

	updated, err := s.repo.ApplyStatusUpdate(ctx, collectRequestID, update)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reconcile polled status")
	}
	if updated == nil && s.logger != nil {
		lctx := s.logger.WithCollectRequestID(ctx, collectRequestID)
		s.logger.Warn(lctx, "polled status has no matching local payment record")
	}

	return &CollectStatusResult{
		Status:    fetched.Status,
		Amount:    fetched.Amount,
		Details:   fetched.Details,
		StatusJWT: fetched.StatusJWT,
	}, nil
}

// ListUnreconciledOrders exposes the operator scan for orders left without a
// payment status by a failed gateway call.
func (s *Service) ListUnreconciledOrders(ctx context.Context, limit int) ([]models.Order, error) {
	orders, err := s.repo.FindOrdersMissingStatus(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "scan unreconciled orders")
	}
	return orders, nil
}

// detailsToString flattens the gateway's free-form details document into the
// text column the dashboard projects.
func detailsToString(raw json.RawMessage) *string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}
	var asString string
	if err := json.Unmarshal(raw, &asString); err == nil {
		return &asString
	}
	compact := string(raw)
	return &compact
}
