// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package ingest

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/tomtom215/pulseboard/internal/records"
)

// wrapperKeys are checked in order when a JSON object wraps the data array.
var wrapperKeys = []string{"data", "items", "records", "results", "rows", "entries"}

func readJSON(r io.Reader) (*table, error) {
	doc, err := decodeDocument(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrNoRecords
		}
		return nil, fmt.Errorf("decode: %w", err)
	}

	t := newTable(false)
	dropped := make(map[string]struct{})

	switch v := doc.(type) {
	case []any:
		t.addItems(v, dropped)
	case *object:
		switch {
		case isFlat(v):
			t.addObject(v, dropped)
		default:
			if key := mainDataKey(v); key != "" {
				items, _ := v.get(key)
				t.addItems(items.([]any), dropped)
			} else {
				t.addObject(v, dropped)
			}
		}
	default:
		return nil, fmt.Errorf("document must be an object or an array, got %T", doc)
	}

	t.report.DroppedFields = slices.Sorted(maps.Keys(dropped))
	return t, nil
}

func (t *table) addItems(items []any, dropped map[string]struct{}) {
	for _, item := range items {
		obj, ok := item.(*object)
		if !ok {
			t.report.SkippedItems++
			continue
		}
		t.addObject(obj, dropped)
	}
}

// leaf is a flattened scalar with its dot-joined name.
type leaf struct {
	name  string
	value any
}

func (t *table) addObject(obj *object, dropped map[string]struct{}) {
	rec := records.NewRecord()
	for _, l := range flatten("", obj, nil, dropped) {
		name := normalizeName(l.name)
		if name == "" || rec.Has(name) {
			continue
		}
		v, ok := records.FromAny(l.value)
		if !ok {
			dropped[name] = struct{}{}
			continue
		}
		rec.Set(name, v)
		t.addColumn(name)
	}
	t.rows = append(t.rows, rec)
}

// flatten appends the scalar leaves of obj to out in document order under
// dot-joined names. Arrays are recorded in dropped and skipped.
func flatten(prefix string, obj *object, out []leaf, dropped map[string]struct{}) []leaf {
	for _, k := range obj.keys {
		name := k
		if prefix != "" {
			name = prefix + "." + k
		}
		switch child := obj.vals[k].(type) {
		case *object:
			out = flatten(name, child, out, dropped)
		case []any:
			dropped[normalizeName(name)] = struct{}{}
		default:
			out = append(out, leaf{name: name, value: child})
		}
	}
	return out
}

// isFlat reports whether every value of obj is a scalar.
func isFlat(obj *object) bool {
	for _, v := range obj.vals {
		switch v.(type) {
		case *object, []any:
			return false
		}
	}
	return true
}

// mainDataKey returns the key holding the record array of a wrapper object:
// the first well-known key holding an array, else the key of the longest
// non-empty array. Ties go to the alphabetically first key.
func mainDataKey(obj *object) string {
	for _, key := range wrapperKeys {
		if _, ok := obj.vals[key].([]any); ok {
			return key
		}
	}
	best, bestLen := "", 0
	for _, key := range slices.Sorted(maps.Keys(obj.vals)) {
		if arr, ok := obj.vals[key].([]any); ok && len(arr) > bestLen {
			best, bestLen = key, len(arr)
		}
	}
	return best
}
