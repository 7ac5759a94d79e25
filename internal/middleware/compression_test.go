// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

var compressBody = strings.Repeat(`{"kpi":"total_revenue","value":12345.67}`, 64)

func compressHandler() http.Handler {
	return Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, compressBody)
	}))
}

func TestCompression(t *testing.T) {
	tests := []struct {
		name           string
		acceptEncoding string
		upgrade        string
		method         string
		wantGzip       bool
	}{
		{name: "gzip accepted", acceptEncoding: "gzip, deflate, br", wantGzip: true},
		{name: "gzip with quality", acceptEncoding: "br;q=1.0, gzip;q=0.8", wantGzip: true},
		{name: "no accept encoding"},
		{name: "deflate only", acceptEncoding: "deflate"},
		{name: "websocket upgrade", acceptEncoding: "gzip", upgrade: "websocket"},
		{name: "head request", acceptEncoding: "gzip", method: http.MethodHead},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			method := tt.method
			if method == "" {
				method = http.MethodGet
			}
			req := httptest.NewRequest(method, "/api/v1/dashboard", nil)
			if tt.acceptEncoding != "" {
				req.Header.Set("Accept-Encoding", tt.acceptEncoding)
			}
			if tt.upgrade != "" {
				req.Header.Set("Upgrade", tt.upgrade)
			}
			rec := httptest.NewRecorder()
			compressHandler().ServeHTTP(rec, req)

			gotGzip := rec.Header().Get("Content-Encoding") == "gzip"
			if gotGzip != tt.wantGzip {
				t.Fatalf("gzip = %v, want %v", gotGzip, tt.wantGzip)
			}
			if rec.Header().Get("Vary") != "Accept-Encoding" {
				t.Errorf("Vary = %q", rec.Header().Get("Vary"))
			}
			if !tt.wantGzip {
				return
			}

			zr, err := gzip.NewReader(rec.Body)
			if err != nil {
				t.Fatalf("gzip.NewReader() error = %v", err)
			}
			plain, err := io.ReadAll(zr)
			if err != nil {
				t.Fatalf("read body: %v", err)
			}
			if string(plain) != compressBody {
				t.Error("decompressed body does not match")
			}
		})
	}
}

func TestCompression_PreservesStatus(t *testing.T) {
	handler := Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, "created")
	}))
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Errorf("status = %d, want 201", rec.Code)
	}
}
