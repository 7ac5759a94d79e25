// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package config loads server configuration with Koanf v2.
//
// Three layers are merged, later layers winning:
//
//  1. Built-in defaults (defaultConfig)
//  2. An optional YAML file: $CONFIG_PATH, ./config.yaml, ./config.yml,
//     /etc/pulseboard/config.yaml
//  3. Environment variables, through an explicit mapping table
//
// # Environment Variables
//
//	HTTP_HOST, DASHBOARD_HOST          server.host (default 0.0.0.0)
//	HTTP_PORT, DASHBOARD_PORT          server.port (default 8000)
//	HTTP_TIMEOUT                       server.timeout
//	ENVIRONMENT                        server.environment
//	MAX_RECORDS                        data.max_records (default 1000)
//	ENABLE_SIMULATION                  data.enable_simulation (default true)
//	SIMULATION_INTERVAL                data.simulation_interval (default 2s)
//	SIMULATION_SEED                    data.simulation_seed
//	SAMPLE_RECORDS                     data.sample_records (default 100)
//	UPLOAD_MAX_BYTES                   data.upload_max_bytes (default 16 MiB)
//	ALLOWED_EXTENSIONS                 data.allowed_extensions (comma separated)
//	DASHBOARD_CONFIG                   dashboard.definitions_path
//	WS_SEND_BUFFER                     websocket.send_buffer
//	WS_CBOR_ENABLED                    websocket.cbor_enabled
//	CORS_ORIGINS                       security.cors_origins (comma separated)
//	RATE_LIMIT_REQUESTS                security.rate_limit_reqs
//	RATE_LIMIT_WINDOW                  security.rate_limit_window
//	DISABLE_RATE_LIMIT                 security.rate_limit_disabled
//	NATS_ENABLED, NATS_URL             nats.enabled, nats.url
//	NATS_SUBJECT, NATS_QUEUE_GROUP     nats.subject, nats.queue_group
//	LOG_LEVEL, LOG_FORMAT, LOG_CALLER  logging.*
//
// Unknown environment variables are ignored.
package config
