// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package stream ingests records published on a NATS subject.
//
// Payloads are JSON: one record object or an array of them. Each accepted
// payload becomes one Append on the dashboard, so a batch is visible
// atomically. Malformed payloads are acknowledged and counted in
// pulseboard_nats_messages_total{result="malformed"}; they never stop the
// consumer.
//
// The consumer uses Watermill over core NATS (no JetStream): records are
// live telemetry and the store keeps no history to replay into.
//
// NATS support is compiled in only with the nats build tag:
//
//	go build -tags nats ./cmd/server
//
// Without it, NewConsumer returns ErrNATSNotAvailable.
package stream
