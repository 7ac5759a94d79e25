// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package websocket

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/pulseboard/internal/dashboard"
	"github.com/tomtom215/pulseboard/internal/logging"
	"github.com/tomtom215/pulseboard/internal/metrics"
)

//nolint:gochecknoinits // init ensures consistent logging for tests
func init() {
	logging.Init(logging.Config{Level: "error", Format: "json", Output: io.Discard})
}

// startHub runs a hub until the test ends.
func startHub(t *testing.T, opts ...Option) *Hub {
	t.Helper()
	hub := NewHub(opts...)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = hub.RunWithContext(ctx)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return hub
}

// testClient builds a client with no connection.
func testClient(hub *Hub, enc Encoding) *Client {
	return &Client{id: clientIDCounter.Add(1), hub: hub, encoding: enc, send: make(chan []byte, hub.sendBuffer)}
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for hub.GetClientCount() != n {
		if time.Now().After(deadline) {
			t.Fatalf("client count = %d, want %d", hub.GetClientCount(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func receive(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case frame, ok := <-c.send:
		if !ok {
			t.Fatal("send channel closed")
		}
		return frame
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return nil
	}
}

func TestNewHubOptions(t *testing.T) {
	hub := NewHub(WithSendBuffer(8), WithBroadcastBuffer(2), WithSendBuffer(-1))
	if hub.sendBuffer != 8 {
		t.Errorf("sendBuffer = %d, want 8", hub.sendBuffer)
	}
	if cap(hub.broadcast) != 2 {
		t.Errorf("broadcast capacity = %d, want 2", cap(hub.broadcast))
	}
	if hub.GetClientCount() != 0 {
		t.Error("new hub has clients")
	}
}

func TestHubPublishEncodesPerClient(t *testing.T) {
	hub := startHub(t)
	jsonClient := testClient(hub, EncodingJSON)
	cborClient := testClient(hub, EncodingCBOR)
	hub.Register <- jsonClient
	hub.Register <- cborClient
	waitForClients(t, hub, 2)

	before := testutil.ToFloat64(metrics.WSMessagesSent.WithLabelValues("cbor"))
	hub.Publish(dashboard.Update{Source: "api", Operation: "append", Added: 2, TotalRecords: 2})

	var msg struct {
		Type string           `json:"type"`
		Data dashboard.Update `json:"data"`
	}
	if err := json.Unmarshal(receive(t, jsonClient), &msg); err != nil {
		t.Fatalf("json frame: %v", err)
	}
	if msg.Type != MessageTypeDashboardUpdate || msg.Data.TotalRecords != 2 {
		t.Errorf("json message = %+v", msg)
	}

	var cmsg struct {
		Type string           `cbor:"type"`
		Data dashboard.Update `cbor:"data"`
	}
	if err := cborUnmarshal(receive(t, cborClient), &cmsg); err != nil {
		t.Fatalf("cbor frame: %v", err)
	}
	if cmsg.Type != MessageTypeDashboardUpdate || cmsg.Data.Source != "api" {
		t.Errorf("cbor message = %+v", cmsg)
	}
	if got := testutil.ToFloat64(metrics.WSMessagesSent.WithLabelValues("cbor")) - before; got != 1 {
		t.Errorf("cbor messages metric delta = %v, want 1", got)
	}
}

func TestHubDisconnectsSlowClient(t *testing.T) {
	hub := startHub(t, WithSendBuffer(1))
	slow := testClient(hub, EncodingJSON)
	fast := testClient(hub, EncodingJSON)
	hub.Register <- slow
	hub.Register <- fast
	waitForClients(t, hub, 2)

	before := testutil.ToFloat64(metrics.WSDropped.WithLabelValues("client_slow"))
	hub.Broadcast("one", nil)
	receive(t, fast)
	hub.Broadcast("two", nil)

	waitForClients(t, hub, 1)
	if got := testutil.ToFloat64(metrics.WSDropped.WithLabelValues("client_slow")) - before; got != 1 {
		t.Errorf("client_slow delta = %v, want 1", got)
	}
	receive(t, slow) // the first frame is still queued
	if _, ok := <-slow.send; ok {
		t.Error("slow client's queue should be closed")
	}
	if slow.trySend([]byte("x")) {
		t.Error("trySend on a closed client succeeded")
	}
}

func TestHubBroadcastQueueFull(t *testing.T) {
	hub := NewHub(WithBroadcastBuffer(1)) // not running
	before := testutil.ToFloat64(metrics.WSDropped.WithLabelValues("broadcast_full"))

	if !hub.Broadcast("a", nil) {
		t.Fatal("first broadcast should be queued")
	}
	if hub.Broadcast("b", nil) {
		t.Error("second broadcast should be dropped")
	}
	if got := testutil.ToFloat64(metrics.WSDropped.WithLabelValues("broadcast_full")) - before; got != 1 {
		t.Errorf("broadcast_full delta = %v, want 1", got)
	}
}

func TestHubUnregister(t *testing.T) {
	hub := startHub(t)
	c := testClient(hub, EncodingJSON)
	hub.Register <- c
	waitForClients(t, hub, 1)

	hub.Unregister <- c
	waitForClients(t, hub, 0)
	// Unregistering twice must not close the channel twice.
	hub.Unregister <- c
	hub.Unregister <- testClient(hub, EncodingJSON)
	waitForClients(t, hub, 0)
}

func TestHubRunWithContextClosesClients(t *testing.T) {
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- hub.RunWithContext(ctx) }()

	c := testClient(hub, EncodingJSON)
	hub.Register <- c
	waitForClients(t, hub, 1)

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("RunWithContext() = %v, want context.Canceled", err)
		}
	case <-time.After(time.Second):
		t.Fatal("hub did not stop")
	}
	if hub.GetClientCount() != 0 {
		t.Errorf("clients left after shutdown: %d", hub.GetClientCount())
	}
	if _, ok := <-c.send; ok {
		t.Error("client queue should be closed on shutdown")
	}
}

// stoppedHub returns a hub whose RunWithContext has already returned.
func stoppedHub(t *testing.T) *Hub {
	t.Helper()
	hub := NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := hub.RunWithContext(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("RunWithContext() = %v", err)
	}
	select {
	case <-hub.Done():
	default:
		t.Fatal("Done() not closed after shutdown")
	}
	return hub
}

func TestHubRegisterAfterShutdownDoesNotBlock(t *testing.T) {
	hub := stoppedHub(t)

	finished := make(chan bool, 1)
	go func() {
		ok := hub.register(testClient(hub, EncodingJSON))
		hub.unregister(testClient(hub, EncodingJSON))
		finished <- ok
	}()
	select {
	case ok := <-finished:
		if ok {
			t.Error("register() = true on a stopped hub")
		}
	case <-time.After(time.Second):
		t.Fatal("register/unregister blocked after the hub stopped")
	}
}

func TestGetShutdownReason(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if got := getShutdownReason(ctx); got != ShutdownReasonContextCanceled {
		t.Errorf("canceled: %s", got)
	}

	ctx, cancel = context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()
	if got := getShutdownReason(ctx); got != ShutdownReasonContextDeadline {
		t.Errorf("deadline: %s", got)
	}
}

func TestSnapshotMessage(t *testing.T) {
	hub := NewHub()
	if _, ok := hub.snapshotMessage(); ok {
		t.Error("snapshot without provider")
	}
	hub.SetSnapshotProvider(func() any { return map[string]int{"total_records": 3} })
	msg, ok := hub.snapshotMessage()
	if !ok || msg.Type != MessageTypeSnapshot {
		t.Errorf("snapshotMessage() = %+v, %v", msg, ok)
	}
}
