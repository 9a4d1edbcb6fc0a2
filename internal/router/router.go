// Package router sets up all HTTP routes and middleware chains for the
// biblioteca API. Routes are grouped by the access they require: open
// auth endpoints, authenticated catalog and lending, and admin-only
// catalog management.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"biblioteca/internal/handlers"
	"biblioteca/internal/middleware"
)

// New creates and returns the configured Chi router with all middleware
// and route groups wired up. secureCookies marks the CSRF cookie Secure.
func New(sessions middleware.SessionLoader, limiter *middleware.RateLimiter, secureCookies bool, auth *handlers.Auth, catalog *handlers.Catalog, loans *handlers.Loans) chi.Router {
	r := chi.NewRouter()

	// Global middleware, applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.SecureHeaders)
	r.Use(limiter.Middleware)
	r.Use(middleware.LoadSession(sessions))

	// Health check: no auth, no CSRF.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Auth endpoints are reachable without a session or CSRF token.
		r.Post("/auth/register", auth.Register)
		r.Post("/auth/login", auth.Login)
		r.Post("/auth/logout", auth.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.NewCSRF(secureCookies))
			r.Use(middleware.RequireAuth)

			r.Get("/me", auth.Me)

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", catalog.ListCategories)
				r.Get("/{id}", catalog.GetCategory)
				r.Put("/{id}", catalog.UpdateCategory)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", catalog.CreateCategory)
					r.Delete("/{id}", catalog.DeleteCategory)
				})
			})

			r.Route("/books", func(r chi.Router) {
				r.Get("/", catalog.ListBooks)
				r.Get("/{id}", catalog.GetBook)
				r.Put("/{id}", catalog.UpdateBook)

				r.Group(func(r chi.Router) {
					r.Use(middleware.RequireAdmin)
					r.Post("/", catalog.CreateBook)
					r.Delete("/{id}", catalog.DeleteBook)
				})
			})

			r.Route("/loans", func(r chi.Router) {
				r.Get("/", loans.List)
				r.Post("/", loans.Checkout)
				r.Post("/{id}/return", loans.Return)
			})
			r.Post("/returns", loans.ReturnByBook)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
