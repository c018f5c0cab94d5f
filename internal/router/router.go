package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ecommerce-auth/internal/config"
	"ecommerce-auth/internal/handler"
	"ecommerce-auth/internal/metrics"
	"ecommerce-auth/internal/middleware"
)

type Handlers struct {
	Auth   *handler.AuthHandler
	Health *handler.HealthHandler
}

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	handlers Handlers,
	m *metrics.Metrics,
	gatherer prometheus.Gatherer,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.Metrics(m))
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/healthz", handlers.Health.Live)
	r.Get("/readyz", handlers.Health.Ready)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/auth", func(auth chi.Router) {
		auth.Use(middleware.Timeout(cfg.RequestTimeout))

		auth.Post("/signup", handlers.Auth.Signup)
		auth.Post("/login", handlers.Auth.Login)
		auth.Post("/logout", handlers.Auth.Logout)
		auth.Post("/refresh-token", handlers.Auth.Refresh)
		auth.With(authMiddleware.RequireAuth).Get("/profile", handlers.Auth.Profile)
	})

	return r
}
