/**
 * @description
 * This file sets up the HTTP router for the memory service using the go-chi/chi
 * router. It defines the API routes, applies middleware for logging, CORS, and
 * service authentication, and maps the routes to their handler functions.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers the memory service routes.
// When jwtSecret is empty, service authentication is disabled and all routes
// are open; this is intended for local development only.
func NewRouter(h *MemoryHandlers, jwtSecret string) *chi.Mux {
	r := chi.NewRouter()

	// Setup middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("Memory service is healthy"))
	})

	r.Group(func(r chi.Router) {
		if jwtSecret != "" {
			r.Use(ServiceAuthMiddleware(jwtSecret))
		}

		r.Post("/memory", h.BuildMemoryHandler)
		r.Post("/suggestions", h.SuggestionsHandler)
		r.Post("/analysis", h.AccountAnalysisHandler)

		r.Get("/memory", h.ListMemoriesHandler)
		r.Get("/memory/{userID}", h.GetMemoryHandler)
		r.Get("/memory/{userID}/history", h.MemoryHistoryHandler)
		r.Patch("/memory/{userID}/insights", h.PatchInsightsHandler)
		r.Delete("/memory/{userID}", h.DeleteMemoryHandler)
	})

	return r
}
