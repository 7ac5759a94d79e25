// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/pulseboard/internal/config"
	"github.com/tomtom215/pulseboard/internal/middleware"
)

// Router wires handlers and middleware into a chi router.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
}

// NewRouter builds a Router from the security settings in cfg.
func NewRouter(handler *Handler, cfg *config.Config) *Router {
	mw := DefaultChiMiddlewareConfig()
	mw.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mw.RateLimitRequests = cfg.Security.RateLimitReqs
	mw.RateLimitWindow = cfg.Security.RateLimitWindow
	mw.RateLimitDisabled = cfg.Security.RateLimitDisabled

	return &Router{handler: handler, chiMiddleware: NewChiMiddleware(mw)}
}

// Setup returns the root HTTP handler.
func (router *Router) Setup() http.Handler {
	h := router.handler
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(recoverPanics)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		NewResponseWriter(w, r).NotFound("No route for " + r.Method + " " + r.URL.Path)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		WriteError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Get("/live", h.HealthLive)
		r.Get("/ready", h.HealthReady)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)

		// The upgrade needs the raw connection, so it skips compression.
		r.Get("/ws", h.WebSocket)

		r.Group(func(r chi.Router) {
			r.Use(router.chiMiddleware.RateLimit())
			r.Use(h.perfMon.Middleware)
			r.Use(middleware.Compression)

			r.Get("/config", h.Config)
			r.Get("/stats", h.Stats)

			r.Get("/dashboard", h.Dashboard)
			r.Post("/dashboard", h.DashboardQuery)
			r.Get("/kpis/{id}", h.KPI)
			r.Get("/charts/{id}", h.Chart)

			r.Get("/records", h.Records)
			r.Post("/records", h.AppendRecords)
			r.Delete("/records", h.ClearRecords)
			r.Get("/records/summary", h.RecordsSummary)

			r.Post("/upload", h.Upload)
			r.Post("/sample", h.Sample)
		})
	})

	return r
}
