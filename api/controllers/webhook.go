package controllers

import (
	"io"
	"net/http"

	"github.com/edupay-labs/edupay-backend/api/responses"
	gatewaywebhook "github.com/edupay-labs/edupay-backend/internal/webhooks/gateway"
	pkgerrors "github.com/edupay-labs/edupay-backend/pkg/errors"
	"github.com/edupay-labs/edupay-backend/pkg/logger"
)

const maxWebhookBodyBytes = 1 << 20

// GatewayWebhook ingests asynchronous payment notifications. An unmatched
// reconciliation key answers 404 with the key echoed back so the gateway
// operator can diagnose the divergence.
func GatewayWebhook(svc *gatewaywebhook.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "read webhook body"))
			return
		}

		result, err := svc.Process(r.Context(), payload)
		if err != nil {
			typed := pkgerrors.As(err)
			if typed != nil && typed.Code() == pkgerrors.CodeNotFound {
				body := map[string]any{"message": typed.Message()}
				if details, ok := typed.Details().(map[string]any); ok {
					if key, ok := details["collect_request_id"]; ok {
						body["collect_request_id"] = key
					}
				}
				responses.WriteJSON(w, http.StatusNotFound, body)
				return
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
