// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

/*
Package api provides the HTTP surface of Pulseboard.

Every JSON endpoint answers with the same envelope:

	{
	  "success": true,
	  "data": {...},
	  "error": {"code": "NOT_FOUND", "message": "...", "details": {...}, "request_id": "..."},
	  "meta": {"request_id": "...", "timestamp": "...", "duration_ms": 3}
	}

Routes (all under /api/v1 unless noted):

	GET    /health/live             liveness
	GET    /health/ready            readiness
	GET    /config                  dashboard definitions
	GET    /dashboard               KPIs, charts and filter states
	POST   /dashboard               same, selection in the JSON body
	GET    /kpis/{id}               one KPI
	GET    /charts/{id}             one chart
	GET    /records                 most recent records (?limit=)
	POST   /records                 append a JSON object or array
	DELETE /records                 clear the store
	GET    /records/summary         field profile of the window
	POST   /upload                  replace from a .json, .csv or .xlsx file
	POST   /sample                  replace with generated sample data (?records=)
	GET    /stats                   store, websocket and endpoint latency stats
	GET    /ws                      websocket upgrade
	GET    /metrics                 Prometheus (root, not under /api/v1)

Filters are passed as query parameters keyed by filter id:

	/api/v1/dashboard?filter.region=North,South&filter.revenue.min=100&filter.day.max=2026-01-31

Multiselect tokens are read as JSON scalars when they parse as one (1, true,
"1"), otherwise as strings, so number and string options stay distinct.

Usage:

	h := api.NewHandler(svc, hub, cfg)
	router := api.NewRouter(h, cfg)
	server := &http.Server{Addr: cfg.Server.Addr(), Handler: router.Setup()}
*/
package api
