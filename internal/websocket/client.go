// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/tomtom215/pulseboard/internal/logging"
	"github.com/tomtom215/pulseboard/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// clientIDCounter gives clients monotonically increasing ids, which fixes
// the broadcast order.
var clientIDCounter atomic.Uint64

// Client is a middleman between one websocket connection and the hub.
type Client struct {
	id       uint64
	hub      *Hub
	conn     *websocket.Conn
	encoding Encoding

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

// NewClient creates a Client that receives frames in the given encoding.
func NewClient(hub *Hub, conn *websocket.Conn, enc Encoding) *Client {
	if enc == "" {
		enc = EncodingJSON
	}
	return &Client{
		id:       clientIDCounter.Add(1),
		hub:      hub,
		conn:     conn,
		encoding: enc,
		send:     make(chan []byte, hub.sendBuffer),
	}
}

// ID returns the client's identifier.
func (c *Client) ID() uint64 { return c.id }

// Encoding returns the wire format negotiated for the client.
func (c *Client) Encoding() Encoding { return c.encoding }

// trySend queues an encoded frame without blocking. It returns false when
// the queue is full or the client is closed.
func (c *Client) trySend(frame []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- frame:
		return true
	default:
		return false
	}
}

// enqueue encodes msg for this client and queues it without blocking.
func (c *Client) enqueue(msg Message) bool {
	frame, err := Encode(msg, c.encoding)
	if err != nil {
		metrics.WSDropped.WithLabelValues("encode_error").Inc()
		logging.Error().Err(err).Str("message_type", msg.Type).Msg("failed to encode websocket message")
		return false
	}
	if !c.trySend(frame) {
		metrics.WSDropped.WithLabelValues("client_slow").Inc()
		return false
	}
	metrics.WSMessagesSent.WithLabelValues(string(c.encoding)).Inc()
	return true
}

// close closes the send queue once; the write pump then sends a close
// frame.
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump reads client messages until the connection fails.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		frameType, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Uint64("client_id", c.id).Msg("unexpected websocket close error")
			}
			return
		}
		c.handle(frameType, data)
	}
}

func (c *Client) handle(frameType int, data []byte) {
	msg, err := decodeInbound(frameType, data)
	if err != nil {
		c.enqueue(Message{Type: MessageTypeError, Data: map[string]string{"message": "malformed message"}})
		return
	}

	switch msg.Type {
	case MessageTypePing:
		c.enqueue(Message{Type: MessageTypePong})
	case MessageTypeRequestData:
		if snap, ok := c.hub.snapshotMessage(); ok {
			c.enqueue(snap)
		}
	default:
		logging.Debug().Uint64("client_id", c.id).Str("type", msg.Type).Msg("unknown websocket message type")
		c.enqueue(Message{Type: MessageTypeError, Data: map[string]string{"message": "unknown message type: " + msg.Type}})
	}
}

// writePump writes queued frames and keepalive pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	frameType := c.encoding.frameType()
	for {
		select {
		case frame, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(frameType, frame); err != nil {
				logging.Debug().Err(err).Uint64("client_id", c.id).Msg("websocket write failed")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// Start runs the client's pumps.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}
