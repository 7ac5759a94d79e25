// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// cleanEnv unsets every mapped variable for the duration of the test and
// moves into an empty directory so no stray config.yaml is picked up.
func cleanEnv(t *testing.T) {
	t.Helper()
	keys := []string{ConfigPathEnvVar}
	for k := range envMappings {
		keys = append(keys, strings.ToUpper(k))
	}
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	t.Chdir(t.TempDir())
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Server.Port != 8000 {
		t.Errorf("Server.Port = %d, want 8000", cfg.Server.Port)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0", cfg.Server.Host)
	}
	if cfg.Data.MaxRecords != 1000 {
		t.Errorf("Data.MaxRecords = %d, want 1000", cfg.Data.MaxRecords)
	}
	if !cfg.Data.EnableSimulation {
		t.Error("Data.EnableSimulation should be true by default")
	}
	if cfg.Data.SimulationInterval != 2*time.Second {
		t.Errorf("Data.SimulationInterval = %v, want 2s", cfg.Data.SimulationInterval)
	}
	if cfg.Data.UploadMaxBytes != 16<<20 {
		t.Errorf("Data.UploadMaxBytes = %d, want 16MiB", cfg.Data.UploadMaxBytes)
	}
	if cfg.NATS.Enabled {
		t.Error("NATS.Enabled should be false by default")
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("Logging = %+v, want info/json", cfg.Logging)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults do not validate: %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"HTTP_PORT", "server.port"},
		{"DASHBOARD_PORT", "server.port"},
		{"DASHBOARD_HOST", "server.host"},
		{"MAX_RECORDS", "data.max_records"},
		{"ENABLE_SIMULATION", "data.enable_simulation"},
		{"DASHBOARD_CONFIG", "dashboard.definitions_path"},
		{"CORS_ORIGINS", "security.cors_origins"},
		{"NATS_URL", "nats.url"},
		{"log_level", "logging.level"},
		{"PATH", ""},
		{"HOME", ""},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			if got := envTransformFunc(tt.key); got != tt.want {
				t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
			}
		})
	}
}

func TestFindConfigFile(t *testing.T) {
	cleanEnv(t)

	if got := findConfigFile(); got != "" {
		t.Errorf("findConfigFile() = %q, want empty", got)
	}

	if err := os.WriteFile("config.yml", []byte("server:\n  port: 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if got := findConfigFile(); got != "config.yml" {
		t.Errorf("findConfigFile() = %q, want config.yml", got)
	}

	custom := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(custom, []byte("{}"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(ConfigPathEnvVar, custom)
	if got := findConfigFile(); got != custom {
		t.Errorf("findConfigFile() = %q, want %q", got, custom)
	}

	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))
	if got := findConfigFile(); got != "config.yml" {
		t.Errorf("missing CONFIG_PATH should fall back to defaults, got %q", got)
	}
}

func TestLoadEnvVars(t *testing.T) {
	cleanEnv(t)
	t.Setenv("DASHBOARD_PORT", "9000")
	t.Setenv("MAX_RECORDS", "250")
	t.Setenv("ENABLE_SIMULATION", "false")
	t.Setenv("SIMULATION_INTERVAL", "500ms")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("ALLOWED_EXTENSIONS", ".CSV,json")
	t.Setenv("LOG_LEVEL", "DEBUG")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Data.MaxRecords != 250 {
		t.Errorf("Data.MaxRecords = %d, want 250", cfg.Data.MaxRecords)
	}
	if cfg.Data.EnableSimulation {
		t.Error("Data.EnableSimulation should be false")
	}
	if cfg.Data.SimulationInterval != 500*time.Millisecond {
		t.Errorf("Data.SimulationInterval = %v, want 500ms", cfg.Data.SimulationInterval)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if len(cfg.Data.AllowedExtensions) != 2 || cfg.Data.AllowedExtensions[0] != "csv" {
		t.Errorf("Data.AllowedExtensions = %v, want [csv json]", cfg.Data.AllowedExtensions)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want 0.0.0.0 (default)", cfg.Server.Host)
	}
}

func TestLoadConfigFile(t *testing.T) {
	cleanEnv(t)

	content := `
server:
  port: 8123
  environment: production
data:
  max_records: 50
  simulation_interval: 5s
dashboard:
  definitions_path: /etc/pulseboard/dashboard.json
nats:
  enabled: true
  url: nats://broker:4222
  subject: sales.records
`
	if err := os.WriteFile("config.yaml", []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8123 || !cfg.IsProduction() {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Data.MaxRecords != 50 || cfg.Data.SimulationInterval != 5*time.Second {
		t.Errorf("Data = %+v", cfg.Data)
	}
	if cfg.Dashboard.DefinitionsPath != "/etc/pulseboard/dashboard.json" {
		t.Errorf("Dashboard.DefinitionsPath = %q", cfg.Dashboard.DefinitionsPath)
	}
	if !cfg.NATS.Enabled || cfg.NATS.Subject != "sales.records" || cfg.NATS.QueueGroup != "pulseboard" {
		t.Errorf("NATS = %+v", cfg.NATS)
	}
}

func TestLoadEnvOverridesFile(t *testing.T) {
	cleanEnv(t)
	if err := os.WriteFile("config.yaml", []byte("server:\n  port: 8123\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("HTTP_PORT", "8124")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Server.Port != 8124 {
		t.Errorf("Server.Port = %d, want 8124 from env", cfg.Server.Port)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"port out of range", map[string]string{"HTTP_PORT": "70000"}, "HTTP_PORT"},
		{"zero records", map[string]string{"MAX_RECORDS": "0"}, "MAX_RECORDS"},
		{"tiny interval", map[string]string{"SIMULATION_INTERVAL": "1ms"}, "SIMULATION_INTERVAL"},
		{"bad extension", map[string]string{"ALLOWED_EXTENSIONS": "json,exe"}, "ALLOWED_EXTENSIONS"},
		{"bad rate limit", map[string]string{"RATE_LIMIT_REQUESTS": "0"}, "RATE_LIMIT_REQUESTS"},
		{"bad nats url", map[string]string{"NATS_ENABLED": "true", "NATS_URL": "http://x:4222"}, "NATS_URL"},
		{"bad log level", map[string]string{"LOG_LEVEL": "verbose"}, "LOG_LEVEL"},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}, "LOG_FORMAT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cleanEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			if err == nil {
				t.Fatal("Load() should fail")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %s", err, tt.wantErr)
			}
		})
	}
}

func TestRateLimitDisabledSkipsValidation(t *testing.T) {
	cfg := defaultConfig()
	cfg.Security.RateLimitDisabled = true
	cfg.Security.RateLimitReqs = 0
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil when rate limiting is disabled", err)
	}
}

func TestServerAddr(t *testing.T) {
	s := ServerConfig{Host: "::1", Port: 8000}
	if got := s.Addr(); got != "[::1]:8000" {
		t.Errorf("Addr() = %q", got)
	}
}
