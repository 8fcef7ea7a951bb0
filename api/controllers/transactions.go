package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/edupay-labs/edupay-backend/api/responses"
	"github.com/edupay-labs/edupay-backend/api/validators"
	"github.com/edupay-labs/edupay-backend/internal/transactions"
	"github.com/edupay-labs/edupay-backend/pkg/logger"
	"github.com/edupay-labs/edupay-backend/pkg/pagination"
)

// TransactionsList serves the paginated, filterable all-transactions view.
func TransactionsList(svc *transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1000000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 1000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		query := r.URL.Query()
		result, err := svc.List(r.Context(), transactions.ListQuery{
			Page:     pagination.Params{Page: page, Limit: limit},
			Sort:     query.Get("sort"),
			Order:    query.Get("order"),
			Status:   query.Get("status"),
			SchoolID: query.Get("school"),
			Search:   query.Get("search"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// TransactionsBySchool serves one school's transactions, newest payment first.
func TransactionsBySchool(svc *transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := validators.ParseQueryInt(r, "page", 1, 1, 1000000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		limit, err := validators.ParseQueryInt(r, "limit", 0, 0, 1000)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListBySchool(r.Context(), chi.URLParam(r, "schoolId"), pagination.Params{
			Page:  page,
			Limit: limit,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// TransactionStatus resolves one transaction by any of its identifiers.
func TransactionStatus(svc *transactions.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		row, err := svc.CheckStatus(r.Context(), chi.URLParam(r, "custom_order_id"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, row)
	}
}
