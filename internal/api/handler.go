// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package api

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/tomtom215/pulseboard/internal/config"
	"github.com/tomtom215/pulseboard/internal/dashboard"
	"github.com/tomtom215/pulseboard/internal/middleware"
	"github.com/tomtom215/pulseboard/internal/websocket"
)

const (
	defaultRecordsLimit = 100
	defaultWSPath       = "/api/v1/ws"
)

// Handler holds the dependencies of every endpoint.
type Handler struct {
	svc       *dashboard.Service
	hub       *websocket.Hub
	cfg       *config.Config
	perfMon   *middleware.PerformanceMonitor
	ws        http.Handler
	startTime time.Time
	ready     atomic.Bool
}

// NewHandler creates a Handler. hub may be nil, in which case the
// websocket endpoint answers 503.
func NewHandler(svc *dashboard.Service, hub *websocket.Hub, cfg *config.Config) *Handler {
	h := &Handler{
		svc:       svc,
		hub:       hub,
		cfg:       cfg,
		perfMon:   middleware.NewPerformanceMonitor(1000, middleware.DefaultSlowThreshold),
		startTime: time.Now(),
	}
	if hub != nil {
		h.ws = websocket.NewHandler(hub, cfg.Security.CORSOrigins, cfg.WebSocket.CBOREnabled)
	}
	return h
}

// MarkReady flips the readiness probe once background services run.
func (h *Handler) MarkReady(ready bool) {
	h.ready.Store(ready)
}

// PerformanceMonitor returns the latency window fed by the router.
func (h *Handler) PerformanceMonitor() *middleware.PerformanceMonitor {
	return h.perfMon
}

// queryInt reads an integer query parameter. ok is false when the value is
// present but not an integer.
func queryInt(r *http.Request, key string, def int) (n int, ok bool) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return n, true
}
