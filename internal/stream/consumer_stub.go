// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

//go:build !nats

package stream

import "context"

// Consumer is a stub for builds without NATS.
type Consumer struct{}

// NewConsumer returns ErrNATSNotAvailable in builds without the nats tag.
func NewConsumer(_ Config, _ Sink) (*Consumer, error) {
	return nil, ErrNATSNotAvailable
}

// Serve returns ErrNATSNotAvailable.
func (c *Consumer) Serve(_ context.Context) error { return ErrNATSNotAvailable }

// Close is a no-op.
func (c *Consumer) Close() error { return nil }

// String implements fmt.Stringer.
func (c *Consumer) String() string { return "nats-consumer" }
