package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/edupay-labs/edupay-backend/api/controllers"
	"github.com/edupay-labs/edupay-backend/api/middleware"
	"github.com/edupay-labs/edupay-backend/internal/auth"
	"github.com/edupay-labs/edupay-backend/internal/payments"
	"github.com/edupay-labs/edupay-backend/internal/transactions"
	gatewaywebhook "github.com/edupay-labs/edupay-backend/internal/webhooks/gateway"
	"github.com/edupay-labs/edupay-backend/pkg/auth/session"
	"github.com/edupay-labs/edupay-backend/pkg/config"
	"github.com/edupay-labs/edupay-backend/pkg/logger"
	"github.com/edupay-labs/edupay-backend/pkg/metrics"
)

// RouterParams bundles everything the HTTP surface needs.
type RouterParams struct {
	Config       *config.Config
	Logger       *logger.Logger
	SessionCheck session.Checker
	HTTPMetrics  *metrics.HTTPMetrics
	Registry     *prometheus.Registry

	AuthService         *auth.Service
	PaymentsService     *payments.Service
	TransactionsService *transactions.Service
	WebhookService      *gatewaywebhook.Service

	ReadinessDeps map[string]controllers.Pinger
}

// NewRouter assembles the route tree. The webhook, health, metrics, and
// credential endpoints are public; everything else requires the cookie token.
func NewRouter(params RouterParams) http.Handler {
	cfg := params.Config
	logg := params.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(params.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, params.ReadinessDeps))
	})
	if params.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(params.Registry, promhttp.HandlerOpts{}))
	}

	r.Post("/webhook", controllers.GatewayWebhook(params.WebhookService, logg))

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(params.AuthService, logg))
		r.Post("/login", controllers.AuthLogin(params.AuthService, cfg, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, params.SessionCheck, logg))
			r.Get("/logout", controllers.AuthLogout(params.AuthService, logg))
			r.Get("/me", controllers.AuthMe(params.AuthService, logg))
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, params.SessionCheck, logg))

		r.Post("/create-payment", controllers.CreatePayment(params.PaymentsService, logg))
		r.Get("/check-status/{collect_request_id}", controllers.CheckPaymentStatus(params.PaymentsService, logg))
		r.Get("/orders/unreconciled", controllers.UnreconciledOrders(params.PaymentsService, logg))

		r.Get("/transactions", controllers.TransactionsList(params.TransactionsService, logg))
		r.Get("/transactions/school/{schoolId}", controllers.TransactionsBySchool(params.TransactionsService, logg))
		r.Get("/transaction-status/{custom_order_id}", controllers.TransactionStatus(params.TransactionsService, logg))
	})

	return r
}
