package api

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

func NewRouter(apiHandler *APIHandler, frontendOrigin string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)       // Basic request logging
	r.Use(middleware.Recoverer)    // Recover from panics
	r.Use(middleware.StripSlashes) // Ensure consistent path handling
	r.Use(cors.Handler(cors.Options{
		AllowOriginFunc:  allowOrigin(frontendOrigin),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
	// The cors middleware short-circuits proper preflights; this catches
	// bare OPTIONS requests on any path so they never reach routing.
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}
			next.ServeHTTP(w, r)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
	})

	r.Get("/", apiHandler.HealthHandler)

	// All API routes live under /api
	r.Route("/api", func(r chi.Router) {
		r.Get("/", apiHandler.HealthHandler)
		r.Get("/health", apiHandler.HealthHandler)
		r.Post("/embeddings", apiHandler.IngestHandler)
		r.Post("/ask", apiHandler.AskHandler)
	})

	return r
}

// allowOrigin permits credentialed requests from localhost and 127.0.0.1
// on any port, plus the configured frontend origin. With no configured
// origin every caller is allowed.
func allowOrigin(frontendOrigin string) func(r *http.Request, origin string) bool {
	return func(r *http.Request, origin string) bool {
		if u, err := url.Parse(origin); err == nil {
			host := u.Hostname()
			if host == "localhost" || host == "127.0.0.1" {
				return true
			}
		}
		if frontendOrigin == "" {
			return true
		}
		return origin == frontendOrigin
	}
}
