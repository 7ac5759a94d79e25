// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/pulseboard/internal/api"
	"github.com/tomtom215/pulseboard/internal/config"
	"github.com/tomtom215/pulseboard/internal/dashboard"
	"github.com/tomtom215/pulseboard/internal/logging"
	"github.com/tomtom215/pulseboard/internal/metrics"
	"github.com/tomtom215/pulseboard/internal/supervisor"
	"github.com/tomtom215/pulseboard/internal/supervisor/services"
	ws "github.com/tomtom215/pulseboard/internal/websocket"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Caller:    cfg.Logging.Caller,
		Timestamp: true,
	})
	metrics.SetAppInfo(version)

	logging.Info().
		Str("version", version).
		Str("environment", cfg.Server.Environment).
		Int("max_records", cfg.Data.MaxRecords).
		Msg("Starting Pulseboard")

	reg, err := loadRegistry(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Invalid dashboard definitions")
	}

	svc := dashboard.New(reg, cfg.Data.MaxRecords)

	wsHub := ws.NewHub(ws.WithSendBuffer(cfg.WebSocket.SendBuffer))
	svc.SetPublisher(wsHub)
	wsHub.SetSnapshotProvider(func() any {
		return svc.Snapshot(context.Background())
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	if err := initSources(ctx, cfg, svc, tree); err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize data sources")
	}

	handler := api.NewHandler(svc, wsHub, cfg)
	router := api.NewRouter(handler, cfg)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		IdleTimeout:       60 * time.Second,
	}

	tree.AddMessagingService(services.NewHubService(wsHub))
	tree.AddAPIService(services.NewHTTPServerService(server, tree.Config().ShutdownTimeout))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	errCh := tree.ServeBackground(ctx)
	handler.MarkReady(true)

	var runErr error
	select {
	case <-ctx.Done():
		logging.Info().Msg("Shutdown signal received, waiting for supervisor to finish...")
		runErr = <-errCh
	case runErr = <-errCh:
	}
	handler.MarkReady(false)
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		logging.Error().Err(runErr).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, s := range unstopped {
			logging.Warn().Str("service", s.Name).Msg("Service failed to stop")
		}
		os.Exit(1)
	}

	logging.Info().Msg("Pulseboard stopped gracefully")
}
