package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/remitkit/remitroute/api/controllers/assignvendor"
	"github.com/remitkit/remitroute/api/middleware"
	"github.com/remitkit/remitroute/internal/assignment"
	"github.com/remitkit/remitroute/internal/vendors"
	"github.com/remitkit/remitroute/pkg/config"
	"github.com/remitkit/remitroute/pkg/db"
	"github.com/remitkit/remitroute/pkg/enums"
	"github.com/remitkit/remitroute/pkg/logger"
	"github.com/remitkit/remitroute/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisP redis.Pinger,
	assignService assignment.Service,
	vendorResolver *vendors.Resolver,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", assignvendor.HealthLive(cfg))
		r.Get("/ready", assignvendor.HealthReady(cfg, logg, dbP, redisP))
	})

	r.Route("/api/v1/remit", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))

		r.Route("/orders/{orderID}", func(r chi.Router) {
			r.Post("/assign", assignvendor.AvailableVendors(assignService, logg))
			r.Post("/quote", assignvendor.Quote(assignService, logg))
			r.Post("/process", assignvendor.Process(assignService, logg))
			r.Get("/status", assignvendor.Status(assignService, logg))
			r.Post("/cancel", assignvendor.Cancel(assignService, logg))
			r.Post("/amend", assignvendor.Amend(assignService, logg))

			r.With(middleware.RequireRole(logg,
				string(enums.ActorRoleSupervisor),
				string(enums.ActorRoleAdmin),
			)).Post("/release", assignvendor.Release(assignService, logg))
		})

		r.Route("/vendors/{vendorID}", func(r chi.Router) {
			r.Post("/verify-wallet", assignvendor.VerifyWallet(vendorResolver, logg))
			r.Get("/balance", assignvendor.Balance(vendorResolver, logg))
		})
	})

	return r
}
