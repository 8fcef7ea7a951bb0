package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/edupay-labs/edupay-backend/api/responses"
	"github.com/edupay-labs/edupay-backend/api/validators"
	"github.com/edupay-labs/edupay-backend/internal/payments"
	"github.com/edupay-labs/edupay-backend/pkg/db/models"
	pkgerrors "github.com/edupay-labs/edupay-backend/pkg/errors"
	"github.com/edupay-labs/edupay-backend/pkg/logger"
)

type createPaymentRequest struct {
	Amount      decimal.Decimal    `json:"amount" validate:"required"`
	CallbackURL string             `json:"callback_url" validate:"required,url"`
	TrusteeID   string             `json:"trustee_id" validate:"required"`
	StudentInfo models.StudentInfo `json:"student_info"`
	GatewayName string             `json:"gateway_name" validate:"required"`
	SchoolID    string             `json:"school_id" validate:"required"`
}

// CreatePayment registers a new collection request with the gateway.
func CreatePayment(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body createPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateCollect(r.Context(), payments.CreateCollectInput{
			Amount:      body.Amount,
			CallbackURL: body.CallbackURL,
			TrusteeID:   body.TrusteeID,
			StudentInfo: body.StudentInfo,
			GatewayName: body.GatewayName,
			SchoolID:    body.SchoolID,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// CheckPaymentStatus polls the gateway for a collection request's live status.
func CheckPaymentStatus(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		collectRequestID := chi.URLParam(r, "collect_request_id")
		if collectRequestID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "collect_request_id is required"))
			return
		}

		result, err := svc.CheckCollectStatus(r.Context(), collectRequestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// UnreconciledOrders is the operator scan for orders whose payment status was
// never written because the gateway call failed.
func UnreconciledOrders(svc *payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 100, 1, 1000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		orders, err := svc.ListUnreconciledOrders(r.Context(), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"orders": orders})
	}
}
