// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package metrics defines the Prometheus collectors exposed on /metrics.
//
// Collectors are registered with the default registry through promauto at
// package init, so importing the package is enough to expose them. The
// Record* helpers keep label handling in one place:
//
//	metrics.RecordIngest("upload", len(recs))
//	metrics.ObserveEngine("dashboard", time.Since(start))
//
// # Metric families
//
//	pulseboard_store_records                 gauge    records in the window
//	pulseboard_store_capacity                gauge    window capacity
//	pulseboard_store_evictions_total         counter  records pushed out of the window
//	pulseboard_records_ingested_total        counter  by source (upload, api, sample, simulation, nats)
//	pulseboard_ingest_errors_total           counter  by format
//	pulseboard_engine_duration_seconds       histogram by kind (dashboard, kpi, chart)
//	pulseboard_data_anomalies_total          counter  by anomaly kind
//	pulseboard_websocket_clients             gauge
//	pulseboard_websocket_messages_total      counter  by encoding
//	pulseboard_websocket_dropped_total       counter  by reason
//	pulseboard_cache_hits_total              counter
//	pulseboard_cache_misses_total            counter
//	pulseboard_nats_messages_total           counter  by result
//	api_requests_total                       counter  by method, endpoint, status_code
//	api_request_duration_seconds             histogram by method, endpoint
//	api_active_requests                      gauge
//	app_info                                 gauge    version, go_version
package metrics
