// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package stream

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/pulseboard/internal/dashboard"
	"github.com/tomtom215/pulseboard/internal/ingest"
	"github.com/tomtom215/pulseboard/internal/logging"
	"github.com/tomtom215/pulseboard/internal/metrics"
	"github.com/tomtom215/pulseboard/internal/records"
)

// ErrNATSNotAvailable is returned by NewConsumer in builds without the nats
// tag.
var ErrNATSNotAvailable = errors.New("NATS support not enabled (build with -tags nats)")

// Sink receives decoded records. *dashboard.Service satisfies it.
type Sink interface {
	Append(ctx context.Context, recs []records.Record, source string) dashboard.Update
}

// Config configures the consumer.
type Config struct {
	URL        string
	Subject    string
	QueueGroup string

	// CloseTimeout bounds how long Close waits for in-flight messages.
	CloseTimeout time.Duration
}

// Message results, as counted in the NATS metric.
const (
	resultAccepted  = "accepted"
	resultMalformed = "malformed"
	resultEmpty     = "empty"
)

// handlePayload decodes one payload and appends it to sink. It returns the
// metric result label.
func handlePayload(ctx context.Context, sink Sink, payload []byte) string {
	res, err := ingest.DecodePayload(payload)
	switch {
	case err != nil && !errors.Is(err, ingest.ErrNoRecords):
		metrics.NATSMessages.WithLabelValues(resultMalformed).Inc()
		logging.Ctx(ctx).Warn().Err(err).Int("bytes", len(payload)).Msg("dropping malformed NATS payload")
		return resultMalformed
	case len(res.Records) == 0:
		metrics.NATSMessages.WithLabelValues(resultEmpty).Inc()
		return resultEmpty
	}

	if len(res.DroppedFields) > 0 || res.SkippedItems > 0 {
		logging.Ctx(ctx).Debug().
			Strs("dropped_fields", res.DroppedFields).
			Int("skipped_items", res.SkippedItems).
			Msg("NATS payload partially ingested")
	}
	sink.Append(ctx, res.Records, dashboard.SourceNATS)
	metrics.NATSMessages.WithLabelValues(resultAccepted).Inc()
	return resultAccepted
}
