package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/edupay-labs/edupay-backend/api/middleware"
	"github.com/edupay-labs/edupay-backend/api/responses"
	"github.com/edupay-labs/edupay-backend/api/validators"
	"github.com/edupay-labs/edupay-backend/internal/auth"
	"github.com/edupay-labs/edupay-backend/pkg/config"
	pkgerrors "github.com/edupay-labs/edupay-backend/pkg/errors"
	"github.com/edupay-labs/edupay-backend/pkg/logger"
)

// AuthRegister creates a dashboard user.
func AuthRegister(svc *auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.RegisterRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.Register(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]any{
			"message": "user registered successfully",
			"user":    user,
		})
	}
}

// AuthLogin verifies credentials and drops the token cookie.
func AuthLogin(svc *auth.Service, cfg *config.Config, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var body auth.LoginRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Login(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.TokenCookieName,
			Value:    result.Token,
			Path:     "/",
			MaxAge:   int(cfg.JWT.SessionTTL() / time.Second),
			HttpOnly: true,
			Secure:   cfg.App.IsProd(),
			SameSite: http.SameSiteLaxMode,
		})
		responses.WriteSuccess(w, result)
	}
}

// AuthLogout revokes the session behind the presented cookie and clears it.
func AuthLogout(svc *auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Logout(r.Context(), middleware.SessionIDFromContext(r.Context())); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		http.SetCookie(w, &http.Cookie{
			Name:     middleware.TokenCookieName,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
		responses.WriteSuccess(w, map[string]string{"message": "logged out successfully"})
	}
}

// AuthMe returns the authenticated user's profile.
func AuthMe(svc *auth.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := uuid.Parse(middleware.UserIDFromContext(r.Context()))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid user id"))
			return
		}

		user, err := svc.Me(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"user": user})
	}
}
