// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package metrics

import (
	"runtime"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Record store
	StoreRecords = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulseboard_store_records",
			Help: "Number of records currently held in the dashboard window",
		},
	)

	StoreCapacity = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulseboard_store_capacity",
			Help: "Maximum number of records the dashboard window holds",
		},
	)

	StoreEvictions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulseboard_store_evictions_total",
			Help: "Total number of records evicted from the window by newer records",
		},
	)

	// Ingestion
	RecordsIngested = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_records_ingested_total",
			Help: "Total number of records accepted, by source",
		},
		[]string{"source"}, // upload, api, sample, simulation, nats
	)

	IngestErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_ingest_errors_total",
			Help: "Total number of rejected ingestion attempts, by format",
		},
		[]string{"format"},
	)

	// Aggregation engine
	EngineDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pulseboard_engine_duration_seconds",
			Help:    "Time spent evaluating KPIs and charts",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
		},
		[]string{"kind"}, // dashboard, kpi, chart
	)

	DataAnomalies = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_data_anomalies_total",
			Help: "Data anomalies met while evaluating published updates, by kind",
		},
		[]string{"kind"},
	)

	// Result cache
	CacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulseboard_cache_hits_total",
			Help: "Dashboard evaluations served from cache",
		},
	)

	CacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pulseboard_cache_misses_total",
			Help: "Dashboard evaluations that had to be computed",
		},
	)

	// Broadcast relay
	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pulseboard_websocket_clients",
			Help: "Number of connected WebSocket clients",
		},
	)

	WSMessagesSent = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_websocket_messages_total",
			Help: "Messages queued to WebSocket clients, by encoding",
		},
		[]string{"encoding"}, // json, cbor
	)

	WSDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_websocket_dropped_total",
			Help: "Messages dropped before reaching a client, by reason",
		},
		[]string{"reason"}, // broadcast_full, client_slow, encode_error
	)

	// NATS ingestion
	NATSMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pulseboard_nats_messages_total",
			Help: "Record messages consumed from NATS, by result",
		},
		[]string{"result"}, // accepted, malformed, empty
	)

	// HTTP API
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// SetAppInfo publishes the build version.
func SetAppInfo(version string) {
	AppInfo.WithLabelValues(version, runtime.Version()).Set(1)
}

// SetStoreSize updates the window gauges.
func SetStoreSize(size, capacity int) {
	StoreRecords.Set(float64(size))
	StoreCapacity.Set(float64(capacity))
}

// RecordEvictions counts records pushed out of the window.
func RecordEvictions(n int) {
	if n > 0 {
		StoreEvictions.Add(float64(n))
	}
}

// RecordIngest counts accepted records.
func RecordIngest(source string, n int) {
	if n > 0 {
		RecordsIngested.WithLabelValues(source).Add(float64(n))
	}
}

// RecordIngestError counts a rejected upload or payload.
func RecordIngestError(format string) {
	if format == "" {
		format = "unknown"
	}
	IngestErrors.WithLabelValues(format).Inc()
}

// ObserveEngine records how long an evaluation took.
func ObserveEngine(kind string, d time.Duration) {
	EngineDuration.WithLabelValues(kind).Observe(d.Seconds())
}

// RecordAnomalies adds per-kind anomaly counts.
func RecordAnomalies(counts map[string]int) {
	for kind, n := range counts {
		if n > 0 {
			DataAnomalies.WithLabelValues(kind).Add(float64(n))
		}
	}
}

// RecordCache counts a cache lookup.
func RecordCache(hit bool) {
	if hit {
		CacheHits.Inc()
	} else {
		CacheMisses.Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint string, statusCode int, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
