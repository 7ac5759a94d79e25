// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/pulseboard/internal/middleware"
	"github.com/tomtom215/pulseboard/internal/records"
)

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status        string  `json:"status"`
	Records       int     `json:"records"`
	Capacity      int     `json:"capacity"`
	Clients       int     `json:"websocket_clients"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

func (h *Handler) health(status string) HealthStatus {
	st := h.svc.Stats()
	hs := HealthStatus{
		Status:        status,
		Records:       st.Size,
		Capacity:      st.Capacity,
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}
	if h.hub != nil {
		hs.Clients = h.hub.GetClientCount()
	}
	return hs
}

// HealthLive always answers 200 while the process serves HTTP.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.health("alive"))
}

// HealthReady answers 503 until MarkReady(true).
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	if !h.ready.Load() {
		rw.ServiceUnavailable("Server is starting")
		return
	}
	rw.Success(h.health("ready"))
}

// StatsResponse is the body of GET /stats.
type StatsResponse struct {
	Store     records.Stats              `json:"store"`
	Clients   int                        `json:"websocket_clients"`
	Endpoints []middleware.EndpointStats `json:"endpoints"`
}

// Stats reports store counters, connected clients and endpoint latencies.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	resp := StatsResponse{
		Store:     h.svc.Stats(),
		Endpoints: h.perfMon.Stats(),
	}
	if h.hub != nil {
		resp.Clients = h.hub.GetClientCount()
	}
	NewResponseWriter(w, r).Success(resp)
}
