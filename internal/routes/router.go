package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"infinite-experiment/skyboard/internal/api"
	"infinite-experiment/skyboard/internal/constants"
	"infinite-experiment/skyboard/internal/logging"
	"infinite-experiment/skyboard/internal/middleware"
)

// RegisterRoutes builds the router. The returned func tears down live workspaces.
func RegisterRoutes(deps *api.Dependencies, gatherer prometheus.Gatherer, upSince time.Time) (http.Handler, func()) {
	cfg := deps.Config

	// initialize Chi router
	r := chi.NewRouter()

	// global middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.MetricsMiddleware(deps.Metrics))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "HX-Request", "HX-Target", "HX-Current-URL", "HX-Trigger"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}))

	if cfg.AppEnv != "production" {
		r.Use(middleware.DebugLogging)
	}

	r.Get("/healthCheck", api.HealthCheckHandler(deps.Services.API, deps.Services.Cache, upSince))
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, "127.0.0.1", "::1")

	var closeUI func()
	r.Group(func(uiRouter chi.Router) {
		uiRouter.Use(limiter.Middleware)
		uiRouter.Use(middleware.SessionMiddleware)
		uiRouter.Use(middleware.ThemeMiddleware(constants.Theme(cfg.DefaultTheme)))
		closeUI = RegisterUIRoutes(uiRouter, deps)
	})

	logging.Info("Router initialized",
		"environment", cfg.AppEnv,
		"cors_origins", cfg.CORSAllowedOrigins,
	)
	return r, closeUI
}
