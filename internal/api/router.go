package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/ozonewatch/woudc-client/internal/metrics"
)

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(h *Handlers, logger *slog.Logger, provider *metrics.Provider) chi.Router {
	r := chi.NewRouter()

	// Add middleware stack
	r.Use(middleware.RequestID)
	r.Use(RequestIDResponse) // Add X-Request-ID to response headers
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(Recovery(logger))
	r.Use(middleware.Compress(5)) // Gzip compression
	r.Use(ContentTypeJSON)
	if provider != nil {
		r.Use(Metrics(provider))
	}

	// CORS configuration
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Content-Length"},
		ExposedHeaders:   []string{"Link", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300, // 5 minutes
	}))

	// Health check endpoint
	r.Get("/health", h.Health)

	if provider != nil {
		r.Handle("/metrics", provider.Handler())
	}

	// Landing page
	r.Get("/", h.LandingPage)

	// Datasets
	r.Get("/collections", h.Collections)
	r.Get("/collections/{datasetId}", h.Collection)
	r.Get("/collections/{datasetId}/items", h.Items)

	// Archive metadata
	r.Route("/metadata", func(r chi.Router) {
		r.Get("/stations", h.Stations)
		r.Get("/instruments", h.Instruments)
		r.Get("/contributors", h.Contributors)
	})

	// 404 handler
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		WriteNotFound(w, "endpoint not found")
	})

	// 405 handler
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, http.StatusMethodNotAllowed, "MethodNotAllowed", "method not allowed")
	})

	return r
}
