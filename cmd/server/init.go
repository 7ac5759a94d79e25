// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/tomtom215/pulseboard/internal/config"
	"github.com/tomtom215/pulseboard/internal/dashboard"
	"github.com/tomtom215/pulseboard/internal/logging"
	"github.com/tomtom215/pulseboard/internal/registry"
	"github.com/tomtom215/pulseboard/internal/simulation"
	"github.com/tomtom215/pulseboard/internal/stream"
	"github.com/tomtom215/pulseboard/internal/supervisor"
)

// loadRegistry reads the definitions file named in the configuration, or
// the built-in definitions when none is set.
func loadRegistry(cfg *config.Config) (*registry.Registry, error) {
	path := cfg.Dashboard.DefinitionsPath
	if path == "" {
		reg := registry.Default()
		kpis, charts, filters := reg.Counts()
		logging.Info().
			Int("kpis", kpis).
			Int("charts", charts).
			Int("filters", filters).
			Msg("Using built-in dashboard definitions")
		return reg, nil
	}

	reg, err := registry.LoadFile(path)
	if err != nil {
		var cfgErr *registry.ConfigError
		if errors.As(err, &cfgErr) {
			for _, p := range cfgErr.Problems {
				logging.Error().Str("path", path).Msg(p.String())
			}
		}
		return nil, err
	}

	kpis, charts, filters := reg.Counts()
	logging.Info().
		Str("path", path).
		Int("kpis", kpis).
		Int("charts", charts).
		Int("filters", filters).
		Msg("Dashboard definitions loaded")
	return reg, nil
}

// initSources loads the startup data set and registers the simulator and
// NATS consumer with the ingest layer.
func initSources(ctx context.Context, cfg *config.Config, svc *dashboard.Service, tree *supervisor.SupervisorTree) error {
	if cfg.Data.LoadSampleOnStart {
		u := svc.LoadSample(ctx, cfg.Data.SampleRecords, cfg.Data.SimulationSeed)
		logging.Info().Int("records", u.TotalRecords).Msg("Sample data loaded")
	}

	if cfg.Data.EnableSimulation {
		sim, err := simulation.New(svc, simulation.Config{
			Interval: cfg.Data.SimulationInterval,
			Seed:     cfg.Data.SimulationSeed,
			FirstID:  svc.Store().Len() + 1,
		})
		if err != nil {
			return fmt.Errorf("create simulator: %w", err)
		}
		tree.AddIngestService(sim)
		logging.Info().Dur("interval", cfg.Data.SimulationInterval).Msg("Simulator added to supervisor tree")
	}

	if cfg.NATS.Enabled {
		consumer, err := stream.NewConsumer(stream.Config{
			URL:        cfg.NATS.URL,
			Subject:    cfg.NATS.Subject,
			QueueGroup: cfg.NATS.QueueGroup,
		}, svc)
		switch {
		case errors.Is(err, stream.ErrNATSNotAvailable):
			logging.Warn().Msg("NATS_ENABLED is set but this binary was built without -tags nats")
		case err != nil:
			return fmt.Errorf("create NATS consumer: %w", err)
		default:
			tree.AddIngestService(consumer)
			logging.Info().
				Str("url", cfg.NATS.URL).
				Str("subject", cfg.NATS.Subject).
				Msg("NATS consumer added to supervisor tree")
		}
	}
	return nil
}
