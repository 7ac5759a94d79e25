// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package api

import (
	"net/url"
	"testing"

	"github.com/tomtom215/pulseboard/internal/records"
	"github.com/tomtom215/pulseboard/internal/registry"
)

func TestParseSelection(t *testing.T) {
	reg, err := registry.Load([]byte(`{
	  "kpis": [{"id": "n", "name": "N", "calculation": "count"}],
	  "filters": [
	    {"id": "region", "field": "region", "type": "multiselect"},
	    {"id": "revenue", "field": "revenue", "type": "numberrange", "options": {"min": 0, "max": 10}},
	    {"id": "day", "field": "date", "type": "daterange", "options": {}},
	    {"id": "size.max", "field": "size", "type": "multiselect"}
	  ]
	}`))
	if err != nil {
		t.Fatalf("registry.Load() error = %v", err)
	}

	t.Run("empty query", func(t *testing.T) {
		if sel := parseSelection(url.Values{"limit": {"5"}}, reg); sel != nil {
			t.Errorf("selection = %+v, want nil", sel)
		}
	})

	t.Run("tokens keep their kind", func(t *testing.T) {
		sel := parseSelection(url.Values{"filter.region": {"North, 1", "true,", "null"}}, reg)
		got := sel["region"].Values
		want := []struct {
			kind records.Kind
			str  string
		}{
			{records.KindString, "North"},
			{records.KindNumber, "1"},
			{records.KindBool, "true"},
			{records.KindString, "null"},
		}
		if len(got) != len(want) {
			t.Fatalf("values = %v", got)
		}
		for i, w := range want {
			if got[i].Kind() != w.kind || got[i].String() != w.str {
				t.Errorf("value %d = %v (kind %v), want %s", i, got[i], got[i].Kind(), w.str)
			}
		}
	})

	t.Run("range bounds", func(t *testing.T) {
		sel := parseSelection(url.Values{
			"filter.revenue.min": {"2.5"},
			"filter.revenue.max": {"", "lots"},
			"filter.day.min":     {"2026-01-01"},
		}, reg)
		if f, ok := sel["revenue"].Min.Float(); !ok || f != 2.5 {
			t.Errorf("revenue min = %v", sel["revenue"].Min)
		}
		if s, ok := sel["revenue"].Max.Str(); !ok || s != "lots" {
			t.Errorf("non-numeric max should stay a string, got %v", sel["revenue"].Max)
		}
		if s, ok := sel["day"].Min.Str(); !ok || s != "2026-01-01" {
			t.Errorf("day min = %v", sel["day"].Min)
		}
		if sel["day"].Max != nil {
			t.Errorf("day max = %v, want nil", sel["day"].Max)
		}
	})

	t.Run("defined id wins over suffix", func(t *testing.T) {
		sel := parseSelection(url.Values{"filter.size.max": {"XL"}}, reg)
		if len(sel["size.max"].Values) != 1 {
			t.Errorf("selection = %+v, want values on size.max", sel)
		}
		if _, ok := sel["size"]; ok {
			t.Error("suffix reading applied to a defined id")
		}
	})

	t.Run("unknown ids are kept", func(t *testing.T) {
		sel := parseSelection(url.Values{"filter.nope": {"x"}, "filter.": {"y"}}, reg)
		if len(sel) != 1 || len(sel["nope"].Values) != 1 {
			t.Errorf("selection = %+v", sel)
		}
	})

	t.Run("blank values are dropped", func(t *testing.T) {
		if sel := parseSelection(url.Values{"filter.region": {" , "}}, reg); sel != nil {
			t.Errorf("selection = %+v, want nil", sel)
		}
	})
}
