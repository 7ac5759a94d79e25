// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

//go:build nats

package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	natsgo "github.com/nats-io/nats.go"

	"github.com/tomtom215/pulseboard/internal/logging"
)

// Consumer subscribes to a NATS subject and feeds payloads to a Sink. It
// implements suture.Service.
type Consumer struct {
	cfg        Config
	sink       Sink
	logger     watermill.LoggerAdapter
	subscriber message.Subscriber
}

// NewConsumer connects to NATS. The connection retries in the background if
// the server is not reachable yet.
func NewConsumer(cfg Config, sink Sink) (*Consumer, error) {
	if sink == nil {
		return nil, errors.New("stream: sink is required")
	}
	if cfg.Subject == "" {
		return nil, errors.New("stream: subject is required")
	}
	if cfg.CloseTimeout <= 0 {
		cfg.CloseTimeout = 10 * time.Second
	}

	logger := watermill.NewSlogLogger(logging.NewSlogLogger("stream"))

	natsOpts := []natsgo.Option{
		natsgo.Name("pulseboard"),
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(2 * time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{"url": nc.ConnectedUrl()})
		}),
	}

	sub, err := wmNats.NewSubscriber(wmNats.SubscriberConfig{
		URL:              cfg.URL,
		QueueGroupPrefix: cfg.QueueGroup,
		SubscribersCount: 1,
		CloseTimeout:     cfg.CloseTimeout,
		AckWaitTimeout:   30 * time.Second,
		NatsOptions:      natsOpts,
		Unmarshaler:      &wmNats.NATSMarshaler{},
		JetStream:        wmNats.JetStreamConfig{Disabled: true},
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create NATS subscriber: %w", err)
	}

	return &Consumer{cfg: cfg, sink: sink, logger: logger, subscriber: sub}, nil
}

// Serve consumes messages until ctx is done.
func (c *Consumer) Serve(ctx context.Context) error {
	messages, err := c.subscriber.Subscribe(ctx, c.cfg.Subject)
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", c.cfg.Subject, err)
	}
	logging.Info().Str("subject", c.cfg.Subject).Str("queue_group", c.cfg.QueueGroup).Msg("NATS record consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return errors.New("NATS subscription closed")
			}
			handlePayload(ctx, c.sink, msg.Payload)
			msg.Ack()
		}
	}
}

// Close shuts the subscriber down.
func (c *Consumer) Close() error {
	return c.subscriber.Close()
}

// String implements fmt.Stringer for supervisor logs.
func (c *Consumer) String() string { return "nats-consumer" }
