// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package ingest

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/pulseboard/internal/records"
)

// dateKeywords mark column names that may hold timestamps.
var dateKeywords = []string{"date", "time", "timestamp", "created", "updated", "start", "end"}

// numericThreshold is the share of rows that must parse as numbers before a
// text column is treated as numeric.
const numericThreshold = 0.5

// table is the intermediate form shared by all readers.
type table struct {
	columns []string
	seen    map[string]struct{}
	rows    []records.Record

	// textual is set for sources where every cell arrives as a string.
	textual bool
	report  Report
}

func newTable(textual bool) *table {
	return &table{seen: make(map[string]struct{}), textual: textual}
}

func (t *table) addColumn(name string) {
	if _, ok := t.seen[name]; ok {
		return
	}
	t.seen[name] = struct{}{}
	t.columns = append(t.columns, name)
}

// normalizeName trims, lower-cases and replaces spaces with underscores.
func normalizeName(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "_"))
}

// headerNames normalizes a header row. Blank names become column_N and
// repeated names get a numeric suffix.
func headerNames(raw []string) []string {
	out := make([]string, len(raw))
	used := make(map[string]int, len(raw))
	for i, h := range raw {
		name := normalizeName(h)
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		if n := used[name]; n > 0 {
			used[name] = n + 1
			name = fmt.Sprintf("%s_%d", name, n+1)
		}
		used[name]++
		out[i] = name
	}
	return out
}

// clean runs the pipeline described in the package documentation and
// returns the surviving records.
func (t *table) clean(opts Options) []records.Record {
	t.report.SourceRows = len(t.rows)
	t.dropEmptyRows()
	if len(t.rows) == 0 {
		return nil
	}
	t.dropEmptyColumns()

	dates := t.parseDateColumns()
	if t.textual {
		t.inferTypes(dates)
	}

	stamp := ""
	if !opts.Timestamp.IsZero() {
		stamp = opts.Timestamp.UTC().Format(time.RFC3339Nano)
	}
	for i := range t.rows {
		t.rows[i].Set(FieldRecordID, records.Number(float64(i)))
		if stamp != "" {
			t.rows[i].Set(FieldProcessedAt, records.String(stamp))
		}
	}
	return t.rows
}

func (t *table) dropEmptyRows() {
	kept := t.rows[:0]
	for _, r := range t.rows {
		empty := true
		for _, v := range r.All() {
			if !v.IsNull() {
				empty = false
				break
			}
		}
		if empty {
			t.report.EmptyRows++
			continue
		}
		kept = append(kept, r)
	}
	t.rows = kept
}

func (t *table) dropEmptyColumns() {
	kept := t.columns[:0]
	for _, col := range t.columns {
		populated := false
		for _, r := range t.rows {
			if v, ok := r.Get(col); ok && !v.IsNull() {
				populated = true
				break
			}
		}
		if populated {
			kept = append(kept, col)
			continue
		}
		t.report.EmptyColumns = append(t.report.EmptyColumns, col)
		for i := range t.rows {
			t.rows[i].Delete(col)
		}
	}
	t.columns = kept
}

func isDateColumn(name string) bool {
	for _, kw := range dateKeywords {
		if strings.Contains(name, kw) {
			return true
		}
	}
	return false
}

// parseDateColumns rewrites keyword columns as RFC 3339 strings. A column
// is only rewritten when every non-null value parses; otherwise it is left
// untouched.
func (t *table) parseDateColumns() map[string]bool {
	converted := make(map[string]bool)
	for _, col := range t.columns {
		if !isDateColumn(col) {
			continue
		}
		parsed := make([]time.Time, len(t.rows))
		present := make([]bool, len(t.rows))
		ok := true
		for i, r := range t.rows {
			v, has := r.Get(col)
			if !has || v.IsNull() {
				continue
			}
			if v.Kind() != records.KindString {
				ok = false
				break
			}
			ts, good := v.Time()
			if !good {
				ok = false
				break
			}
			parsed[i], present[i] = ts, true
		}
		if !ok {
			continue
		}
		for i := range t.rows {
			if present[i] {
				t.rows[i].Set(col, records.String(parsed[i].Format(time.RFC3339Nano)))
			}
		}
		converted[col] = true
		t.report.DateColumns = append(t.report.DateColumns, col)
	}
	return converted
}

// inferTypes converts string cells of text sources into booleans or numbers.
func (t *table) inferTypes(skip map[string]bool) {
	for _, col := range t.columns {
		if skip[col] {
			continue
		}
		if t.isBooleanColumn(col) {
			for i := range t.rows {
				if v, ok := t.rows[i].Get(col); ok && !v.IsNull() {
					s, _ := v.Str()
					t.rows[i].Set(col, records.Bool(strings.EqualFold(strings.TrimSpace(s), "true")))
				}
			}
			t.report.BooleanColumns = append(t.report.BooleanColumns, col)
			continue
		}

		numeric := 0
		for _, r := range t.rows {
			if v, has := r.Get(col); has {
				if _, ok := parseNumber(v); ok {
					numeric++
				}
			}
		}
		if float64(numeric)/float64(len(t.rows)) <= numericThreshold {
			continue
		}
		for i := range t.rows {
			v, has := t.rows[i].Get(col)
			if !has {
				continue
			}
			if f, ok := parseNumber(v); ok {
				t.rows[i].Set(col, records.Number(f))
			} else {
				t.rows[i].Set(col, records.Null())
			}
		}
		t.report.NumericColumns = append(t.report.NumericColumns, col)
	}
}

func (t *table) isBooleanColumn(col string) bool {
	seen := false
	for _, r := range t.rows {
		v, ok := r.Get(col)
		if !ok || v.IsNull() {
			continue
		}
		s, isStr := v.Str()
		if !isStr {
			return false
		}
		s = strings.TrimSpace(s)
		if !strings.EqualFold(s, "true") && !strings.EqualFold(s, "false") {
			return false
		}
		seen = true
	}
	return seen
}

// parseNumber reads a finite number from a number or numeric string value.
func parseNumber(v records.Value) (float64, bool) {
	if f, ok := v.Float(); ok {
		return f, true
	}
	s, ok := v.Str()
	if !ok {
		return 0, false
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
