// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package websocket

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

// Message types
const (
	MessageTypeDashboardUpdate = "dashboard_update"
	MessageTypeSnapshot        = "snapshot"
	MessageTypePing            = "ping"
	MessageTypePong            = "pong"
	MessageTypeRequestData     = "request_data"
	MessageTypeError           = "error"
)

// Subprotocols offered during the handshake, in preference order.
const (
	CBORSubprotocol = "pulseboard.cbor"
	JSONSubprotocol = "pulseboard.json"
)

// Message is the envelope for every frame.
type Message struct {
	Type string `json:"type" cbor:"type"`
	Data any    `json:"data,omitempty" cbor:"data,omitempty"`
}

// Encoding selects the wire format for a client.
type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingCBOR Encoding = "cbor"
)

// frameType returns the websocket frame type used for the encoding.
func (e Encoding) frameType() int {
	if e == EncodingCBOR {
		return websocket.BinaryMessage
	}
	return websocket.TextMessage
}

var cborEncMode = func() cbor.EncMode {
	opts := cbor.CoreDetEncOptions()
	opts.Time = cbor.TimeRFC3339Nano
	em, err := opts.EncMode()
	if err != nil {
		panic(fmt.Sprintf("websocket: invalid CBOR options: %v", err))
	}
	return em
}()

// Encode serializes msg for the given encoding.
func Encode(msg Message, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingCBOR:
		return cborEncMode.Marshal(msg)
	case EncodingJSON, "":
		return json.Marshal(msg)
	default:
		return nil, fmt.Errorf("unknown encoding %q", enc)
	}
}

// inbound is the part of a client message the server acts on.
type inbound struct {
	Type string `json:"type" cbor:"type"`
}

// decodeInbound parses a client frame. Binary frames are CBOR, text frames
// are JSON.
func decodeInbound(frameType int, data []byte) (inbound, error) {
	var msg inbound
	var err error
	if frameType == websocket.BinaryMessage {
		err = cbor.Unmarshal(data, &msg)
	} else {
		err = json.Unmarshal(data, &msg)
	}
	if err != nil {
		return inbound{}, fmt.Errorf("decode client message: %w", err)
	}
	return msg, nil
}
