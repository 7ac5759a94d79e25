// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

/*
Package supervisor provides process supervision for Pulseboard using suture v4.

Long-running components are grouped into three layers so that a crash in one
does not take the others down:

	RootSupervisor ("pulseboard")
	├── IngestSupervisor ("ingest-layer")
	│   ├── Simulator (if ENABLE_SIMULATION)
	│   └── NATS consumer (if NATS_ENABLED, build tag: nats)
	├── MessagingSupervisor ("messaging-layer")
	│   └── HubService (websocket broadcast relay)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

A failing NATS consumer is restarted with backoff while dashboard clients stay
connected and the API keeps answering from the in-memory store.

Supervisor events (start, stop, failure, backoff) are logged through the
sutureslog adapter, so pass a slog.Logger backed by the zerolog handler:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())
	if err != nil {
	    return err
	}
	tree.AddIngestService(sim)
	tree.AddMessagingService(services.NewHubService(hub))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))

	errCh := tree.ServeBackground(ctx)
*/
package supervisor
