// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

/*
Package main is the entry point for the Pulseboard server.

Pulseboard keeps a bounded window of records in memory, evaluates the
configured KPIs and charts over it, and pushes every change to WebSocket
clients.

# Application Architecture

Services run under a Suture v4 supervisor tree:

	RootSupervisor ("pulseboard")
	├── IngestSupervisor ("ingest-layer")
	│   ├── Simulator (ENABLE_SIMULATION=true)
	│   └── NATS consumer (optional, -tags nats)
	├── MessagingSupervisor ("messaging-layer")
	│   └── WebSocket hub
	└── APISupervisor ("api-layer")
	    └── HTTP server

Startup order:

 1. Configuration: Koanf v2 with defaults, config file and environment
 2. Logging: zerolog with JSON or console output
 3. Definitions: KPI, chart and filter definitions (fatal on ConfigError)
 4. Dashboard service: record window, engine cache and publisher
 5. WebSocket hub: snapshot provider and update relay
 6. Data sources: optional sample data, simulator and NATS consumer
 7. HTTP server: Chi router with the middleware stack
 8. Supervisor tree, then the readiness probe flips to ready

# Configuration

Priority: environment variables > config file > defaults.

	HTTP_PORT=8000
	LOG_LEVEL=info                  # trace, debug, info, warn, error
	LOG_FORMAT=json                 # json or console
	MAX_RECORDS=1000                # window capacity, read once
	ENABLE_SIMULATION=true
	SIMULATION_INTERVAL=2s
	LOAD_SAMPLE_ON_START=false
	DASHBOARD_CONFIG=kpis.yaml      # built-in definitions when empty
	CORS_ORIGINS=*
	NATS_ENABLED=false

# Build Tags

	go build ./cmd/server              # core server
	go build -tags nats ./cmd/server   # with the NATS record consumer

# Signal Handling

SIGINT and SIGTERM cancel the root context. The HTTP server drains in-flight
requests, the hub closes every client, and services that miss the shutdown
timeout are logged.
*/
package main
