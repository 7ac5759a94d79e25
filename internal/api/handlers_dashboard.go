// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/pulseboard/internal/engine"
	"github.com/tomtom215/pulseboard/internal/registry"
	"github.com/tomtom215/pulseboard/internal/websocket"
)

// maxQueryBytes bounds the POST /dashboard body.
const maxQueryBytes = 64 << 10

// ConfigResponse is the body of GET /config.
type ConfigResponse struct {
	registry.Document
	WebSocket WebSocketInfo `json:"websocket"`
	Data      DataInfo      `json:"data"`
}

// WebSocketInfo tells clients where and how to connect.
type WebSocketInfo struct {
	Path         string   `json:"path"`
	Subprotocols []string `json:"subprotocols"`
}

// DataInfo describes ingestion limits.
type DataInfo struct {
	MaxRecords        int      `json:"max_records"`
	UploadMaxBytes    int64    `json:"upload_max_bytes"`
	AllowedExtensions []string `json:"allowed_extensions"`
}

// KPIResponse is one KPI with its display string.
type KPIResponse struct {
	engine.KPIResult
	Formatted string           `json:"formatted"`
	Filters   []engine.Anomaly `json:"filter_anomalies,omitempty"`
}

// ChartResponse is one chart.
type ChartResponse struct {
	engine.ChartResult
	Filters []engine.Anomaly `json:"filter_anomalies,omitempty"`
}

// Config returns the definitions document and connection details.
func (h *Handler) Config(w http.ResponseWriter, r *http.Request) {
	protocols := []string{websocket.JSONSubprotocol}
	if h.cfg.WebSocket.CBOREnabled {
		protocols = []string{websocket.CBORSubprotocol, websocket.JSONSubprotocol}
	}
	NewResponseWriter(w, r).Success(ConfigResponse{
		Document: h.svc.Registry().Document(),
		WebSocket: WebSocketInfo{
			Path:         defaultWSPath,
			Subprotocols: protocols,
		},
		Data: DataInfo{
			MaxRecords:        h.svc.Store().Capacity(),
			UploadMaxBytes:    h.cfg.Data.UploadMaxBytes,
			AllowedExtensions: h.cfg.Data.AllowedExtensions,
		},
	})
}

// Dashboard evaluates every KPI and chart under the query selection.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	sel := parseSelection(r.URL.Query(), h.svc.Registry())
	NewResponseWriter(w, r).Success(h.svc.Current(r.Context(), sel))
}

// DashboardQuery evaluates every KPI and chart under a JSON selection.
func (h *Handler) DashboardQuery(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	var q DashboardQuery
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQueryBytes))
	if err := dec.Decode(&q); err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			rw.PayloadTooLarge(tooBig.Limit)
			return
		}
		rw.BadRequest("Invalid JSON body: " + err.Error())
		return
	}
	rw.Success(h.svc.Current(r.Context(), q.Filters))
}

// KPI evaluates one KPI.
func (h *Handler) KPI(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	req := DefinitionRequest{ID: chi.URLParam(r, "id")}
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	sel := parseSelection(r.URL.Query(), h.svc.Registry())
	res, anomalies, ok := h.svc.KPI(r.Context(), req.ID, sel)
	if !ok {
		rw.NotFound("KPI not found: " + req.ID)
		return
	}
	rw.Success(KPIResponse{
		KPIResult: res,
		Formatted: engine.FormatValue(res.Value, res.Format),
		Filters:   anomalies,
	})
}

// Chart evaluates one chart.
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	req := DefinitionRequest{ID: chi.URLParam(r, "id")}
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	sel := parseSelection(r.URL.Query(), h.svc.Registry())
	res, anomalies, ok := h.svc.Chart(r.Context(), req.ID, sel)
	if !ok {
		rw.NotFound("Chart not found: " + req.ID)
		return
	}
	rw.Success(ChartResponse{ChartResult: res, Filters: anomalies})
}

// WebSocket upgrades the connection to the broadcast relay.
func (h *Handler) WebSocket(w http.ResponseWriter, r *http.Request) {
	if h.ws == nil {
		NewResponseWriter(w, r).ServiceUnavailable("WebSocket relay is not running")
		return
	}
	h.ws.ServeHTTP(w, r)
}
