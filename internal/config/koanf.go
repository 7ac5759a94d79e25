// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/pulseboard/config.yaml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:        "0.0.0.0",
			Port:        8000,
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Data: DataConfig{
			MaxRecords:         1000,
			EnableSimulation:   true,
			SimulationInterval: 2 * time.Second,
			SimulationSeed:     42,
			SampleRecords:      100,
			UploadMaxBytes:     16 << 20, // 16 MiB
			AllowedExtensions:  []string{"json", "csv", "xlsx"},
		},
		WebSocket: WebSocketConfig{
			SendBuffer:  256,
			CBOREnabled: true,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		NATS: NATSConfig{
			Enabled:    false,
			URL:        "nats://127.0.0.1:4222",
			Subject:    "pulseboard.records",
			QueueGroup: "pulseboard",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load reads defaults, the optional config file and the environment, then
// validates the result.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	normalize(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths are split on commas when they arrive as strings.
var sliceConfigPaths = []string{
	"security.cors_origins",
	"data.allowed_extensions",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			continue
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// normalize lower-cases enum-like settings and strips leading dots from
// extensions.
func normalize(cfg *Config) {
	cfg.Server.Environment = strings.ToLower(strings.TrimSpace(cfg.Server.Environment))
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	for i, ext := range cfg.Data.AllowedExtensions {
		cfg.Data.AllowedExtensions[i] = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	}
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Both the HTTP_ and DASHBOARD_ spellings of host and port are accepted.
var envMappings = map[string]string{
	"http_host":      "server.host",
	"dashboard_host": "server.host",
	"http_port":      "server.port",
	"dashboard_port": "server.port",
	"http_timeout":   "server.timeout",
	"environment":    "server.environment",

	"max_records":          "data.max_records",
	"enable_simulation":    "data.enable_simulation",
	"simulation_interval":  "data.simulation_interval",
	"simulation_seed":      "data.simulation_seed",
	"sample_records":       "data.sample_records",
	"load_sample_on_start": "data.load_sample_on_start",
	"upload_max_bytes":     "data.upload_max_bytes",
	"allowed_extensions":   "data.allowed_extensions",

	"dashboard_config": "dashboard.definitions_path",

	"ws_send_buffer":  "websocket.send_buffer",
	"ws_cbor_enabled": "websocket.cbor_enabled",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",

	"nats_enabled":     "nats.enabled",
	"nats_url":         "nats.url",
	"nats_subject":     "nats.subject",
	"nats_queue_group": "nats.queue_group",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc returns the koanf path for a known variable and "" for
// everything else, which makes koanf skip it.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
