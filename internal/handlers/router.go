package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Lixing-Zhang/qr-menu/internal/config"
	"github.com/Lixing-Zhang/qr-menu/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter wires the menu and health handlers with the middleware stack
func NewRouter(menuHandler *MenuHandler, healthHandler *HealthHandler, auth config.AuthConfig, log *slog.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger(log))
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))
	r.Use(chimiddleware.Compress(5))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "If-None-Match", "api_key"},
		ExposedHeaders:   []string{"ETag"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", healthHandler.ServeHTTP)

	r.Get("/", menuHandler.Page)

	r.Route("/api/menu", func(r chi.Router) {
		r.Get("/", menuHandler.ListBlocks)
		r.With(middleware.APIKeyAuth(auth)).Post("/refresh", menuHandler.Refresh)
		r.Get("/{blockName}", menuHandler.GetBlock)
	})

	r.NotFound(menuHandler.NotFound)

	return r
}
