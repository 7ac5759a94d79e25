// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package config

import (
	"net"
	"strconv"
	"time"
)

// Config is the complete server configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Data      DataConfig      `koanf:"data"`
	Dashboard DashboardConfig `koanf:"dashboard"`
	WebSocket WebSocketConfig `koanf:"websocket"`
	Security  SecurityConfig  `koanf:"security"`
	NATS      NATSConfig      `koanf:"nats"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Host        string        `koanf:"host"`
	Port        int           `koanf:"port"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"` // development or production
}

// Addr returns host:port for net.Listen.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// DataConfig controls the record window and data sources.
type DataConfig struct {
	// MaxRecords is the capacity of the record window. It is read once at
	// startup.
	MaxRecords int `koanf:"max_records"`

	EnableSimulation   bool          `koanf:"enable_simulation"`
	SimulationInterval time.Duration `koanf:"simulation_interval"`
	SimulationSeed     uint64        `koanf:"simulation_seed"`

	// SampleRecords is the default size of POST /api/v1/sample and of the
	// data set loaded at startup when LoadSampleOnStart is set.
	SampleRecords     int  `koanf:"sample_records"`
	LoadSampleOnStart bool `koanf:"load_sample_on_start"`

	UploadMaxBytes    int64    `koanf:"upload_max_bytes"`
	AllowedExtensions []string `koanf:"allowed_extensions"`
}

// DashboardConfig locates the KPI, chart and filter definitions. The
// built-in definitions are used when DefinitionsPath is empty.
type DashboardConfig struct {
	DefinitionsPath string `koanf:"definitions_path"`
}

// WebSocketConfig tunes the broadcast relay.
type WebSocketConfig struct {
	SendBuffer  int  `koanf:"send_buffer"`
	CBOREnabled bool `koanf:"cbor_enabled"`
}

// SecurityConfig holds CORS and rate limiting settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// NATSConfig enables record ingestion from a NATS subject. It only has an
// effect in binaries built with the nats tag.
type NATSConfig struct {
	Enabled    bool   `koanf:"enabled"`
	URL        string `koanf:"url"`
	Subject    string `koanf:"subject"`
	QueueGroup string `koanf:"queue_group"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// IsProduction reports whether the server runs in production mode.
func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}
