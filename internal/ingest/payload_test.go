// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package ingest

import (
	"errors"
	"slices"
	"testing"

	"github.com/tomtom215/pulseboard/internal/records"
)

func TestDecodePayload(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		records int
		skipped int
		dropped []string
		wantErr error
	}{
		{name: "object", in: `{"Region": "North", "revenue": 10}`, records: 1},
		{name: "array", in: `[{"a": 1}, {"a": 2}, 3, "x"]`, records: 2, skipped: 2},
		{name: "nested dropped", in: `{"a": 1, "tags": ["x"], "meta": {"b": 2}}`, records: 1, dropped: []string{"meta", "tags"}},
		{name: "empty array", in: `[]`, records: 0},
		{name: "blank", in: "  \n", wantErr: ErrNoRecords},
		{name: "scalar", in: `42`, wantErr: ErrInvalidPayload},
		{name: "malformed", in: `{"a":`, wantErr: ErrInvalidPayload},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := DecodePayload([]byte(tt.in))
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("err = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodePayload() error = %v", err)
			}
			if len(res.Records) != tt.records || res.SkippedItems != tt.skipped {
				t.Errorf("records/skipped = %d/%d, want %d/%d", len(res.Records), res.SkippedItems, tt.records, tt.skipped)
			}
			if len(res.DroppedFields) != len(tt.dropped) {
				t.Fatalf("dropped = %v, want %v", res.DroppedFields, tt.dropped)
			}
			for i := range tt.dropped {
				if res.DroppedFields[i] != tt.dropped[i] {
					t.Errorf("dropped = %v, want %v", res.DroppedFields, tt.dropped)
				}
			}
		})
	}
}

func TestDecodePayloadKeepsFieldNames(t *testing.T) {
	res, err := DecodePayload([]byte(`{"Order Date": "2026-01-01", "n": "5"}`))
	if err != nil {
		t.Fatal(err)
	}
	r := res.Records[0]
	if _, ok := r.Get("Order Date"); !ok {
		t.Errorf("field renamed: %v", r.Names())
	}
	if n, _ := r.Get("n"); n.Kind() != records.KindString || n.String() != "5" {
		t.Errorf("n = %v, want string 5", n)
	}
	if _, ok := r.Get(FieldRecordID); ok {
		t.Error("live payloads should not get _record_id")
	}
}

func TestDecodePayloadKeepsFieldOrder(t *testing.T) {
	res, err := DecodePayload([]byte(`[{"zeta": 1, "alpha": 2, "tags": [1], "mid": null}, {"b": 1, "a": 2, "b": 3}]`))
	if err != nil {
		t.Fatal(err)
	}
	if got := res.Records[0].Names(); !slices.Equal(got, []string{"zeta", "alpha", "mid"}) {
		t.Errorf("first record fields = %v, want document order", got)
	}
	second := res.Records[1]
	if got := second.Names(); !slices.Equal(got, []string{"b", "a"}) {
		t.Errorf("second record fields = %v", got)
	}
	if f, _ := second.Number("b"); f != 3 {
		t.Errorf("repeated key b = %v, want last value 3", f)
	}
}

func TestDecodePayloadRejectsTrailingData(t *testing.T) {
	if _, err := DecodePayload([]byte(`{"a": 1} {"b": 2}`)); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("err = %v, want ErrInvalidPayload", err)
	}
}
