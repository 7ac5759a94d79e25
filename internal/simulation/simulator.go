// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package simulation feeds synthetic sales records into the dashboard at a
// fixed rate, standing in for a live data source.
package simulation

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"

	"github.com/tomtom215/pulseboard/internal/dashboard"
	"github.com/tomtom215/pulseboard/internal/ingest"
	"github.com/tomtom215/pulseboard/internal/logging"
	"github.com/tomtom215/pulseboard/internal/records"
)

// Sink receives generated records. *dashboard.Service satisfies it.
type Sink interface {
	Append(ctx context.Context, recs []records.Record, source string) dashboard.Update
}

// Config controls the simulator.
type Config struct {
	Interval time.Duration
	Seed     uint64
	// FirstID is the id of the first generated record.
	FirstID int
}

// Simulator appends one synthetic record per interval. It implements
// suture.Service; a restart continues the same record sequence.
type Simulator struct {
	sink    Sink
	gen     *ingest.Generator
	limiter *rate.Limiter
	now     func() time.Time
	emitted atomic.Uint64
}

// New creates a simulator. Interval must be positive.
func New(sink Sink, cfg Config) (*Simulator, error) {
	if sink == nil {
		return nil, errors.New("simulation: sink is required")
	}
	if cfg.Interval <= 0 {
		return nil, errors.New("simulation: interval must be positive")
	}
	if cfg.FirstID <= 0 {
		cfg.FirstID = 1
	}
	return &Simulator{
		sink:    sink,
		gen:     ingest.NewGenerator(cfg.Seed, cfg.FirstID),
		limiter: rate.NewLimiter(rate.Every(cfg.Interval), 1),
		now:     time.Now,
	}, nil
}

// Serve generates records until ctx is done.
func (s *Simulator) Serve(ctx context.Context) error {
	logging.Info().
		Float64("records_per_second", float64(s.limiter.Limit())).
		Msg("simulated data stream started")

	for {
		if err := s.limiter.Wait(ctx); err != nil {
			if ctx.Err() != nil {
				logging.Info().Uint64("emitted", s.emitted.Load()).Msg("simulated data stream stopped")
				return ctx.Err()
			}
			return err
		}

		rec := s.gen.Next(s.now())
		s.sink.Append(ctx, []records.Record{rec}, dashboard.SourceSimulation)
		s.emitted.Add(1)
	}
}

// Emitted returns the number of records generated so far.
func (s *Simulator) Emitted() uint64 { return s.emitted.Load() }

// String implements fmt.Stringer for supervisor logs.
func (s *Simulator) String() string { return "simulator" }
