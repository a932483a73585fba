// Judgarr - Media Request Data Usage Tracking and Automated Punishments
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/judgarr

// Package api exposes the read-only status HTTP surface: user standing,
// punished-user listings, health, and Prometheus metrics. Mutations stay
// on the CLI; the API never writes except through lazy expiry.
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/judgarr/internal/config"
	"github.com/tomtom215/judgarr/internal/logging"
	"github.com/tomtom215/judgarr/internal/metrics"
	"github.com/tomtom215/judgarr/internal/users"
)

// Pinger reports storage liveness for the readiness probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Router assembles the HTTP surface over the user manager.
type Router struct {
	cfg   config.ServerConfig
	users *users.Manager
	db    Pinger
}

// NewRouter creates a router. db may be nil; health then reports only
// process liveness.
func NewRouter(cfg config.ServerConfig, userMgr *users.Manager, db Pinger) *Router {
	return &Router{cfg: cfg, users: userMgr, db: db}
}

// Setup wires all routes and middleware.
func (rt *Router) Setup() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(rt.corsHandler())

	r.Get("/health", rt.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rt.rateLimiter())
		r.Use(observeRequests)

		r.Get("/users/punished", rt.handlePunishedUsers)
		r.Get("/users/{id}/status", rt.handleUserStatus)
	})

	return r
}

// Serve runs the HTTP server until ctx is cancelled.
func (rt *Router) Serve(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", rt.cfg.Host, rt.cfg.Port)

	timeout := rt.cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           rt.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       timeout,
		WriteTimeout:      timeout,
		IdleTimeout:       2 * timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", addr).Msg("Status API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown status API: %w", err)
		}
		return nil
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("status API: %w", err)
		}
		return nil
	}
}

func (rt *Router) corsHandler() func(http.Handler) http.Handler {
	origins := rt.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	})
}

func (rt *Router) rateLimiter() func(http.Handler) http.Handler {
	reqs := rt.cfg.RateLimitReqs
	if reqs <= 0 {
		reqs = 100
	}
	window := rt.cfg.RateLimitWindow
	if window <= 0 {
		window = time.Minute
	}
	return httprate.LimitByIP(reqs, window)
}

// observeRequests records per-route duration and error counts.
func observeRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		metrics.HTTPRequestDuration.WithLabelValues(r.Method, route).Observe(time.Since(start).Seconds())
		if ww.Status() >= 500 {
			metrics.HTTPRequestErrors.WithLabelValues(r.Method, route).Inc()
		}
	})
}
