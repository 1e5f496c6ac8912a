// Package api exposes the action dispatcher over HTTP.
package api

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"github.com/pable/footstats/internal/api/handler"
	"github.com/pable/footstats/internal/config"
)

// NewRouter creates and configures the Chi router with all middleware and routes.
func NewRouter(p handler.Performer, d handler.Dataset, asker handler.Asker, cfg config.ServerConfig, logger *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	// --- Middleware stack ---
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(TimingMiddleware)
	r.Use(middleware.Recoverer)

	c := corslib.New(corslib.Options{
		AllowedOrigins:   cfg.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "POST", "HEAD", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{"X-Process-Time", "X-Request-Id"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	if cfg.RateLimit.Enabled {
		r.Use(RateLimitMiddleware(cfg.RateLimit.Requests, cfg.RateLimit.Window()))
	}

	h := handler.New(p, d, asker, logger)

	// --- Routes ---
	r.Get("/health", h.HealthCheck)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/actions", h.ListActions)
		r.Post("/actions/{name}", h.PerformAction)

		r.Get("/teams", h.ListTeams)
		r.Get("/teams/{team}/players", h.ListPlayers)

		r.Post("/reload", h.Reload)
		r.Post("/ask", h.Ask)
	})

	return r
}
