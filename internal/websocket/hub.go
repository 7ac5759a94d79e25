// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/tomtom215/pulseboard/internal/dashboard"
	"github.com/tomtom215/pulseboard/internal/logging"
	"github.com/tomtom215/pulseboard/internal/metrics"
)

// ShutdownReason identifies why the hub stopped.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

const (
	defaultBroadcastBuffer = 256
	defaultSendBuffer      = 256
)

// Option configures a Hub.
type Option func(*Hub)

// WithSendBuffer sets the per-client send queue length.
func WithSendBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.sendBuffer = n
		}
	}
}

// WithBroadcastBuffer sets the hub's broadcast queue length.
func WithBroadcastBuffer(n int) Option {
	return func(h *Hub) {
		if n > 0 {
			h.broadcast = make(chan Message, n)
		}
	}
}

// Hub maintains the set of active clients and broadcasts messages to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan Message
	Register   chan *Client
	Unregister chan *Client
	mu         sync.RWMutex

	sendBuffer int

	snapMu   sync.RWMutex
	snapshot func() any

	// done is closed once RunWithContext has stopped for good.
	done     chan struct{}
	stopOnce sync.Once
}

// NewHub creates a Hub. Call RunWithContext to start it.
func NewHub(opts ...Option) *Hub {
	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, defaultBroadcastBuffer),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
		sendBuffer: defaultSendBuffer,
		done:       make(chan struct{}),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// SetSnapshotProvider sets the function that produces the data for snapshot
// messages.
func (h *Hub) SetSnapshotProvider(fn func() any) {
	h.snapMu.Lock()
	h.snapshot = fn
	h.snapMu.Unlock()
}

// snapshotMessage returns the current snapshot message, or false when no
// provider is set.
func (h *Hub) snapshotMessage() (Message, bool) {
	h.snapMu.RLock()
	fn := h.snapshot
	h.snapMu.RUnlock()
	if fn == nil {
		return Message{}, false
	}
	return Message{Type: MessageTypeSnapshot, Data: fn()}, true
}

// RunWithContext runs the hub until ctx is done, then closes every client
// and returns ctx.Err().
//
// Shutdown is checked first, then client lifecycle events, then broadcasts,
// so the client set is current before any message is fanned out.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		default:
		}

		select {
		case client := <-h.Register:
			h.addClient(client)
			continue
		case client := <-h.Unregister:
			h.removeClient(client)
			continue
		default:
		}

		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.addClient(client)
		case client := <-h.Unregister:
			h.removeClient(client)
		case message := <-h.broadcast:
			h.broadcastToClients(message)
		}
	}
}

// register hands client to the running hub. It returns false once the hub
// has stopped.
func (h *Hub) register(client *Client) bool {
	select {
	case h.Register <- client:
		return true
	case <-h.done:
		return false
	}
}

// unregister removes client, or does nothing once the hub has stopped.
func (h *Hub) unregister(client *Client) {
	select {
	case h.Unregister <- client:
	case <-h.done:
	}
}

// Done is closed when the hub has shut down.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	n := len(h.clients)
	h.mu.Unlock()

	metrics.WSConnections.Set(float64(n))
	logging.Info().
		Uint64("client_id", client.id).
		Str("encoding", string(client.encoding)).
		Int("total_clients", n).
		Msg("websocket client connected")
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		client.close()
	}
	n := len(h.clients)
	h.mu.Unlock()

	if ok {
		metrics.WSConnections.Set(float64(n))
		logging.Info().Uint64("client_id", client.id).Int("total_clients", n).Msg("websocket client disconnected")
	}
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	h.stopOnce.Do(func() { close(h.done) })
	n := h.GetClientCount()
	h.closeAllClients()

	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(getShutdownReason(ctx))).
		Int("clients_closed", n).
		Msg("websocket hub stopped")
}

func getShutdownReason(ctx context.Context) ShutdownReason {
	if ctx.Err() == context.DeadlineExceeded {
		return ShutdownReasonContextDeadline
	}
	return ShutdownReasonContextCanceled
}

// sortedClients returns the clients in id order. Callers hold h.mu.
func (h *Hub) sortedClients() []*Client {
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })
	return clients
}

// broadcastToClients encodes message once per encoding in use and queues it
// on every client. Clients whose queue is full are disconnected.
func (h *Hub) broadcastToClients(message Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	frames := make(map[Encoding][]byte, 2)
	var toRemove []*Client

	for _, client := range h.sortedClients() {
		frame, ok := frames[client.encoding]
		if !ok {
			data, err := Encode(message, client.encoding)
			if err != nil {
				metrics.WSDropped.WithLabelValues("encode_error").Inc()
				logging.Error().Err(err).Str("message_type", message.Type).
					Str("encoding", string(client.encoding)).Msg("failed to encode websocket message")
				frames[client.encoding] = nil
				continue
			}
			frames[client.encoding] = data
			frame = data
		}
		if frame == nil {
			continue
		}

		if client.trySend(frame) {
			metrics.WSMessagesSent.WithLabelValues(string(client.encoding)).Inc()
			continue
		}
		toRemove = append(toRemove, client)
	}

	for _, client := range toRemove {
		metrics.WSDropped.WithLabelValues("client_slow").Inc()
		logging.Warn().Uint64("client_id", client.id).Msg("websocket client too slow, disconnecting")
		client.close()
		delete(h.clients, client)
	}
	if len(toRemove) > 0 {
		metrics.WSConnections.Set(float64(len(h.clients)))
	}
}

func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, client := range h.sortedClients() {
		client.close()
		delete(h.clients, client)
	}
	metrics.WSConnections.Set(0)
}

// Broadcast queues a message for every client without blocking. It reports
// whether the message was queued.
func (h *Hub) Broadcast(messageType string, data any) bool {
	select {
	case h.broadcast <- Message{Type: messageType, Data: data}:
		return true
	default:
		metrics.WSDropped.WithLabelValues("broadcast_full").Inc()
		logging.Warn().Str("message_type", messageType).Msg("broadcast channel full, dropping message")
		return false
	}
}

// Publish implements dashboard.Publisher.
func (h *Hub) Publish(update dashboard.Update) {
	h.Broadcast(MessageTypeDashboardUpdate, update)
}

// GetClientCount returns the number of connected clients.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
