// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

//go:build nats

package stream

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/nats-io/nats-server/v2/server"
)

func startNATS(t *testing.T) string {
	t.Helper()
	ns, err := server.NewServer(&server.Options{Host: "127.0.0.1", Port: -1, NoLog: true, NoSigs: true})
	if err != nil {
		t.Fatalf("create NATS server: %v", err)
	}
	go ns.Start()
	if !ns.ReadyForConnections(10 * time.Second) {
		ns.Shutdown()
		t.Fatal("NATS server not ready")
	}
	t.Cleanup(ns.Shutdown)
	return ns.ClientURL()
}

func TestConsumerAppendsPublishedRecords(t *testing.T) {
	url := startNATS(t)
	s := &sink{}

	c, err := NewConsumer(Config{URL: url, Subject: "pulseboard.test", QueueGroup: "pb"}, s)
	if err != nil {
		t.Fatalf("NewConsumer() error = %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- c.Serve(ctx) }()

	pub, err := wmNats.NewPublisher(wmNats.PublisherConfig{
		URL:       url,
		Marshaler: &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{Disabled: true},
	}, watermill.NopLogger{})
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}
	t.Cleanup(func() { _ = pub.Close() })

	// Core NATS drops messages published before the subscription exists,
	// so keep publishing until the first one lands.
	deadline := time.Now().Add(5 * time.Second)
	for s.count() == 0 && time.Now().Before(deadline) {
		if err := pub.Publish("pulseboard.test",
			message.NewMessage(watermill.NewUUID(), []byte(`[{"status":"Active"},{"status":"Pending"}]`)),
			message.NewMessage(watermill.NewUUID(), []byte(`not json`)),
		); err != nil {
			t.Fatalf("Publish() error = %v", err)
		}
		time.Sleep(50 * time.Millisecond)
	}
	if s.count() == 0 {
		t.Fatal("no records consumed")
	}

	s.mu.Lock()
	if len(s.batches[0]) != 2 {
		t.Errorf("first batch has %d records, want 2", len(s.batches[0]))
	}
	s.mu.Unlock()

	cancel()
	select {
	case err := <-errCh:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve() = %v, want context.Canceled", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not stop")
	}
}

func TestNewConsumerValidation(t *testing.T) {
	if _, err := NewConsumer(Config{Subject: "x"}, nil); err == nil {
		t.Error("nil sink should fail")
	}
	if _, err := NewConsumer(Config{URL: "nats://127.0.0.1:4222"}, &sink{}); err == nil {
		t.Error("missing subject should fail")
	}
}
