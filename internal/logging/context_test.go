// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package logging

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestGenerateIDs(t *testing.T) {
	if _, err := uuid.Parse(GenerateRequestID()); err != nil {
		t.Errorf("request id is not a UUID: %v", err)
	}
	a, b := GenerateCorrelationID(), GenerateCorrelationID()
	if len(a) != 8 || a == b {
		t.Errorf("correlation ids %q, %q", a, b)
	}
}

func TestContextIDs(t *testing.T) {
	ctx := context.Background()
	if RequestIDFromContext(ctx) != "" || CorrelationIDFromContext(ctx) != "" {
		t.Error("empty context should carry no ids")
	}

	ctx = ContextWithRequestID(ctx, "req-1")
	ctx = ContextWithNewCorrelationID(ctx)
	if RequestIDFromContext(ctx) != "req-1" {
		t.Errorf("request id = %q", RequestIDFromContext(ctx))
	}
	if len(CorrelationIDFromContext(ctx)) != 8 {
		t.Errorf("correlation id = %q", CorrelationIDFromContext(ctx))
	}
}

func TestCtxAddsFields(t *testing.T) {
	buf := capture(t)

	ctx := ContextWithCorrelationID(ContextWithRequestID(context.Background(), "req-9"), "corr1234")
	Ctx(ctx).Info().Msg("with ids")
	out := buf.String()
	if !strings.Contains(out, `"request_id":"req-9"`) || !strings.Contains(out, `"correlation_id":"corr1234"`) {
		t.Errorf("output = %s", out)
	}

	buf.Reset()
	Ctx(context.Background()).Info().Msg("plain")
	if strings.Contains(buf.String(), "request_id") {
		t.Errorf("unexpected request_id: %s", buf.String())
	}

	buf.Reset()
	l := CtxWith(ctx).Str("upload", "sales.csv").Logger()
	l.Info().Msg("upload")
	if !strings.Contains(buf.String(), `"upload":"sales.csv"`) || !strings.Contains(buf.String(), "req-9") {
		t.Errorf("output = %s", buf.String())
	}
}
