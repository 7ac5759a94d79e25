// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

/*
Package websocket relays dashboard updates to connected browsers.

It follows the gorilla/websocket hub pattern: a Hub goroutine owns the client
set and fans messages out, and each Client runs a read pump and a write pump.

	┌──────────┐  Publish(update)  ┌─────┐
	│ dashboard├──────────────────►│ Hub │
	└──────────┘                   └──┬──┘
	                       ┌──────────┼──────────┐
	                   Client 1   Client 2   Client 3

Delivery is fire-and-forget. Publish never blocks: when the broadcast queue
is full the update is dropped, and a client whose send queue is full is
disconnected. Both are logged and counted in
pulseboard_websocket_dropped_total.

# Messages

Every frame carries {"type": ..., "data": ...}.

Server to client:

  - dashboard_update: a dashboard.Update after every store write
  - snapshot: the current dashboard, sent on connect and on request_data
  - pong: reply to ping
  - error: unknown or malformed client message

Client to server:

  - ping
  - request_data

# Encodings

Clients that offer the "pulseboard.cbor" subprotocol receive binary frames
encoded as deterministic CBOR (RFC 8949 core deterministic encoding). All
other clients receive JSON text frames. Client messages may arrive in
either form; the frame type selects the decoder.

# Usage

	hub := websocket.NewHub(websocket.WithSendBuffer(256))
	hub.SetSnapshotProvider(func() any { return svc.Snapshot(context.Background()) })
	svc.SetPublisher(hub)
	go hub.RunWithContext(ctx)

	r.Handle("/api/v1/ws", websocket.NewHandler(hub, cfg.Security.CORSOrigins, true))
*/
package websocket
