// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/pulseboard/internal/logging"
)

// Handler upgrades HTTP requests to websocket clients of a Hub.
type Handler struct {
	hub      *Hub
	origins  []string
	upgrader websocket.Upgrader
}

// NewHandler returns a handler that accepts connections from the given
// origins ("*" allows any). When cbor is true the pulseboard.cbor
// subprotocol is offered.
func NewHandler(hub *Hub, allowedOrigins []string, cbor bool) *Handler {
	h := &Handler{hub: hub, origins: allowedOrigins}
	protocols := []string{JSONSubprotocol}
	if cbor {
		protocols = []string{CBORSubprotocol, JSONSubprotocol}
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:   1024,
		WriteBufferSize:  4096,
		HandshakeTimeout: 10 * time.Second,
		Subprotocols:     protocols,
		CheckOrigin:      h.checkOrigin,
	}
	return h
}

// checkOrigin rejects requests without an Origin header and origins not in
// the allow list.
func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		logging.Warn().Msg("websocket connection rejected: missing Origin header")
		return false
	}
	for _, allowed := range h.origins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	logging.Warn().Str("origin", origin).Msg("websocket connection rejected from unauthorized origin")
	return false
}

// ServeHTTP upgrades the connection, queues the current snapshot and
// registers the client.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an error response.
		logging.Ctx(r.Context()).Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	enc := EncodingJSON
	if conn.Subprotocol() == CBORSubprotocol {
		enc = EncodingCBOR
	}
	client := NewClient(h.hub, conn, enc)
	if snap, ok := h.hub.snapshotMessage(); ok {
		client.enqueue(snap)
	}
	if !h.hub.register(client) {
		deadline := time.Now().Add(writeWait)
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"), deadline)
		_ = conn.Close()
		return
	}
	client.Start()
}
