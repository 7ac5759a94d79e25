// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

/*
Package middleware provides HTTP middleware for the Pulseboard API.

Every middleware here has the chi signature func(http.Handler) http.Handler
and can be passed to chi.Router.Use directly.

Key Components:

  - RequestID: X-Request-ID propagation with logging context integration
  - PrometheusMetrics: request counts, latencies and in-flight gauge, labelled
    by chi route pattern so path parameters do not explode cardinality
  - Compression: gzip responses via klauspost/compress, skipping WebSocket
    upgrades
  - PerformanceMonitor: sliding window of request latencies with percentile
    summaries, served by the API stats endpoint

Typical stack:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Route("/api/v1", func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    r.Use(monitor.Middleware)
	    r.Use(middleware.Compression)
	    r.Get("/dashboard", h.Dashboard)
	})
*/
package middleware
