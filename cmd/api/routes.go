package main

import (
	"context"
	"net/http"
	"time"

	"bookreview/internal/auth"
	"bookreview/internal/book"
	"bookreview/internal/httpx"
	"bookreview/internal/review"
	"bookreview/internal/user"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

type handlers struct {
	books   *book.HTTPHandler
	reviews *review.HTTPHandler
	users   *user.HTTPHandler
	auth    *auth.HTTPHandler
}

type routerConfig struct {
	jwtSecret      string
	allowedOrigins []string
	maxBodyBytes   int64
	enableHSTS     bool
	rateLimiter    *httpx.RateLimitMiddleware
	ready          func(ctx context.Context) error
}

func newRouter(h handlers, cfg routerConfig, log *zap.Logger) http.Handler {
	r := chi.NewRouter()

	r.Use(httpx.RequestIDMiddleware)
	r.Use(httpx.AccessLogMiddleware(log))
	r.Use(httpx.RecoveryMiddleware(log))
	r.Use(httpx.MetricsMiddleware)
	r.Use(httpx.SecurityHeadersMiddleware(cfg.enableHSTS))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.allowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", httpx.RequestIDHeader},
		ExposedHeaders:   []string{httpx.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	r.Use(httpx.RequestSizeLimitMiddleware(cfg.maxBodyBytes))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 500*time.Millisecond)
		defer cancel()
		if err := cfg.ready(ctx); err != nil {
			log.Warn("readiness check failed", zap.Error(err))
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})
	r.Handle("/metrics", promhttp.Handler())

	api := func(r chi.Router) {
		if cfg.rateLimiter != nil {
			r.Use(cfg.rateLimiter.Middleware)
		}

		r.Post("/auth/register", h.users.RegisterUser)
		r.Post("/auth/login", h.auth.Login)

		r.Get("/books", h.books.List)
		r.Get("/books/search", h.books.Search)
		r.Get("/books/{id}", h.books.Get)

		r.Group(func(r chi.Router) {
			r.Use(httpx.AuthMiddleware(cfg.jwtSecret))

			r.Get("/auth/me", h.users.GetCurrentUser)
			r.Post("/books", h.books.Create)
			r.Post("/books/{id}/reviews", h.reviews.Create)
			r.Put("/reviews/{id}", h.reviews.Update)
			r.Delete("/reviews/{id}", h.reviews.Delete)
		})
	}

	r.Group(api)
	r.Route("/api", api)

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		httpx.JSONError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})
	return r
}
