// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package logging

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// capture swaps the global logger for one writing to a buffer and restores
// the previous logger and level when the test ends.
func capture(t *testing.T) *bytes.Buffer {
	t.Helper()
	prev := Logger()
	prevLevel := GetLevel()
	t.Cleanup(func() {
		SetLogger(prev)
		SetLevel(prevLevel)
	})

	var buf bytes.Buffer
	SetLogger(zerolog.New(&buf))
	SetLevel(zerolog.TraceLevel)
	return &buf
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Level != "info" || cfg.Format != "json" || cfg.Caller || !cfg.Timestamp {
		t.Errorf("DefaultConfig() = %+v", cfg)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input string
		want  zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warning", zerolog.WarnLevel},
		{" error ", zerolog.ErrorLevel},
		{"off", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := parseLevel(tt.input); got != tt.want {
			t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestInitJSONAndConsole(t *testing.T) {
	prev := Logger()
	prevLevel := GetLevel()
	defer func() {
		SetLogger(prev)
		SetLevel(prevLevel)
	}()

	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	Debug().Str("kpi", "total_revenue").Msg("evaluated")
	out := buf.String()
	if !strings.Contains(out, `"level":"debug"`) || !strings.Contains(out, `"kpi":"total_revenue"`) {
		t.Errorf("json output = %s", out)
	}

	buf.Reset()
	Init(Config{Level: "info", Format: "console", Output: &buf})
	Info().Msg("console line")
	if strings.Contains(buf.String(), `"level"`) || !strings.Contains(buf.String(), "console line") {
		t.Errorf("console output = %s", buf.String())
	}

	buf.Reset()
	Debug().Msg("hidden")
	if buf.Len() != 0 {
		t.Errorf("debug written at info level: %s", buf.String())
	}
}

func TestLevelHelpers(t *testing.T) {
	buf := capture(t)

	tests := []struct {
		emit  func()
		level string
	}{
		{func() { Trace().Msg("m") }, "trace"},
		{func() { Debug().Msg("m") }, "debug"},
		{func() { Info().Msg("m") }, "info"},
		{func() { Warn().Msg("m") }, "warn"},
		{func() { Error().Msg("m") }, "error"},
		{func() { Err(errors.New("boom")).Msg("m") }, "error"},
	}
	for _, tt := range tests {
		buf.Reset()
		tt.emit()
		if !strings.Contains(buf.String(), `"level":"`+tt.level+`"`) {
			t.Errorf("want level %s in %s", tt.level, buf.String())
		}
	}
}

func TestWithComponent(t *testing.T) {
	buf := capture(t)

	l := WithComponent("simulator")
	l.Info().Msg("tick")
	if !strings.Contains(buf.String(), `"component":"simulator"`) {
		t.Errorf("output = %s", buf.String())
	}
}
