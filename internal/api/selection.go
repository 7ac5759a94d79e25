// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package api

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/tomtom215/pulseboard/internal/engine"
	"github.com/tomtom215/pulseboard/internal/records"
	"github.com/tomtom215/pulseboard/internal/registry"
)

const (
	filterParamPrefix = "filter."
	minSuffix         = ".min"
	maxSuffix         = ".max"
)

// parseSelection reads filter.<id>, filter.<id>.min and filter.<id>.max
// query parameters. A parameter naming an id that is itself defined wins
// over the suffix reading. Unknown ids are kept so the engine can report
// them.
func parseSelection(q url.Values, reg *registry.Registry) engine.Selection {
	sel := make(engine.Selection)
	for key, raw := range q {
		name, ok := strings.CutPrefix(key, filterParamPrefix)
		if !ok || name == "" {
			continue
		}

		id, bound := name, ""
		if _, defined := reg.Filter(name); !defined {
			switch {
			case strings.HasSuffix(name, minSuffix):
				id, bound = strings.TrimSuffix(name, minSuffix), minSuffix
			case strings.HasSuffix(name, maxSuffix):
				id, bound = strings.TrimSuffix(name, maxSuffix), maxSuffix
			}
		}

		def, _ := reg.Filter(id)
		fv := sel[id]
		switch bound {
		case minSuffix:
			fv.Min = parseBound(lastNonEmpty(raw), def.Type)
		case maxSuffix:
			fv.Max = parseBound(lastNonEmpty(raw), def.Type)
		default:
			fv.Values = append(fv.Values, parseTokens(raw)...)
		}
		if !fv.IsZero() {
			sel[id] = fv
		}
	}
	if len(sel) == 0 {
		return nil
	}
	return sel
}

// parseTokens splits comma-separated values across repeated parameters.
func parseTokens(raw []string) []records.Value {
	var out []records.Value
	for _, param := range raw {
		for _, tok := range strings.Split(param, ",") {
			tok = strings.TrimSpace(tok)
			if tok == "" {
				continue
			}
			out = append(out, parseScalar(tok))
		}
	}
	return out
}

// parseScalar reads tok as a JSON scalar when it is one, else as a string.
func parseScalar(tok string) records.Value {
	var v records.Value
	if err := json.Unmarshal([]byte(tok), &v); err != nil || v.IsNull() {
		return records.String(tok)
	}
	return v
}

func parseBound(s string, kind registry.FilterKind) *records.Value {
	if s == "" {
		return nil
	}
	if kind == registry.FilterNumberRange {
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			v := records.Number(f)
			return &v
		}
	}
	v := records.String(s)
	return &v
}

func lastNonEmpty(raw []string) string {
	for i := len(raw) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(raw[i]); s != "" {
			return s
		}
	}
	return ""
}
