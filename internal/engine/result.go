// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package engine

import (
	"time"

	"github.com/tomtom215/pulseboard/internal/records"
	"github.com/tomtom215/pulseboard/internal/registry"
)

// AnomalyKind classifies a non-fatal data problem met during evaluation.
type AnomalyKind string

const (
	// AnomalyMissingField counts records where a referenced field is absent.
	AnomalyMissingField AnomalyKind = "missing_field"
	// AnomalyNullValue counts records where a referenced field is null.
	AnomalyNullValue AnomalyKind = "null_value"
	// AnomalyNonNumeric counts records where a numeric field held another kind.
	AnomalyNonNumeric AnomalyKind = "non_numeric"
	// AnomalyFieldAbsent means no record in the snapshot has the field.
	AnomalyFieldAbsent AnomalyKind = "field_absent"
	// AnomalyEmptySnapshot means there were no records to evaluate.
	AnomalyEmptySnapshot AnomalyKind = "empty_snapshot"
	// AnomalyNegativeClamped counts pie slices whose negative sum became zero.
	AnomalyNegativeClamped AnomalyKind = "negative_clamped"
	// AnomalyUnknownFilter means a selection named a filter that is not defined.
	AnomalyUnknownFilter AnomalyKind = "unknown_filter"
	// AnomalyInvalidSelection means a selection could not be applied as given.
	AnomalyInvalidSelection AnomalyKind = "invalid_selection"
)

// Anomaly is a diagnostic note attached to a result.
type Anomaly struct {
	Kind   AnomalyKind `json:"kind" cbor:"kind"`
	Field  string      `json:"field,omitempty" cbor:"field,omitempty"`
	Count  int         `json:"count,omitempty" cbor:"count,omitempty"`
	Detail string      `json:"detail,omitempty" cbor:"detail,omitempty"`
}

// KPIResult is the evaluated value of one KPI. Value is nil when there is no
// data to compute it from, which is distinct from a computed zero.
type KPIResult struct {
	ID           string               `json:"id" cbor:"id"`
	Name         string               `json:"name" cbor:"name"`
	Calculation  registry.Calculation `json:"calculation" cbor:"calculation"`
	Value        *float64             `json:"value" cbor:"value"`
	NoData       bool                 `json:"no_data" cbor:"no_data"`
	Format       registry.FormatKind  `json:"format" cbor:"format"`
	Contributing int                  `json:"contributing" cbor:"contributing"`
	Anomalies    []Anomaly            `json:"anomalies,omitempty" cbor:"anomalies,omitempty"`
}

// Aggregate says how a category or cell value was produced.
type Aggregate string

const (
	AggregateCount Aggregate = "count"
	AggregateSum   Aggregate = "sum"
)

// Point is one (x, y) pair of a line or scatter series.
type Point struct {
	X     records.Value  `json:"x" cbor:"x"`
	Y     records.Value  `json:"y" cbor:"y"`
	Group *records.Value `json:"group,omitempty" cbor:"group,omitempty"`
}

// Category is one bar or pie slice.
type Category struct {
	Label     records.Value `json:"label" cbor:"label"`
	Value     float64       `json:"value" cbor:"value"`
	Count     int           `json:"count" cbor:"count"`
	Aggregate Aggregate     `json:"aggregate" cbor:"aggregate"`
}

// Cell is one non-empty heatmap bucket.
type Cell struct {
	X         records.Value `json:"x" cbor:"x"`
	Y         records.Value `json:"y" cbor:"y"`
	Value     float64       `json:"value" cbor:"value"`
	Count     int           `json:"count" cbor:"count"`
	Aggregate Aggregate     `json:"aggregate" cbor:"aggregate"`
}

// ChartResult is the evaluated series of one chart. Exactly one of Points,
// Categories or Cells is used, depending on Kind.
type ChartResult struct {
	ID         string             `json:"id" cbor:"id"`
	Kind       registry.ChartKind `json:"kind" cbor:"kind"`
	Title      string             `json:"title" cbor:"title"`
	XField     string             `json:"x_field" cbor:"x_field"`
	YField     string             `json:"y_field,omitempty" cbor:"y_field,omitempty"`
	Points     []Point            `json:"points,omitempty" cbor:"points,omitempty"`
	Categories []Category         `json:"categories,omitempty" cbor:"categories,omitempty"`
	Cells      []Cell             `json:"cells,omitempty" cbor:"cells,omitempty"`
	Empty      bool               `json:"empty" cbor:"empty"`
	Anomalies  []Anomaly          `json:"anomalies,omitempty" cbor:"anomalies,omitempty"`
}

// FilterState describes a filter control and the values it can offer.
type FilterState struct {
	ID      string              `json:"id" cbor:"id"`
	Name    string              `json:"name" cbor:"name"`
	Field   string              `json:"field" cbor:"field"`
	Type    registry.FilterKind `json:"type" cbor:"type"`
	Options []records.Value     `json:"options,omitempty" cbor:"options,omitempty"`
	Min     *records.Value      `json:"min,omitempty" cbor:"min,omitempty"`
	Max     *records.Value      `json:"max,omitempty" cbor:"max,omitempty"`
}

// Result is a full dashboard evaluation.
type Result struct {
	KPIs            []KPIResult   `json:"kpis" cbor:"kpis"`
	Charts          []ChartResult `json:"charts" cbor:"charts"`
	Filters         []FilterState `json:"filters" cbor:"filters"`
	TotalRecords    int           `json:"total_records" cbor:"total_records"`
	FilteredRecords int           `json:"filtered_records" cbor:"filtered_records"`
	Version         uint64        `json:"version" cbor:"version"`
	ComputedAt      time.Time     `json:"computed_at" cbor:"computed_at"`
	Anomalies       []Anomaly     `json:"anomalies,omitempty" cbor:"anomalies,omitempty"`
}

// AnomalyCount tallies anomalies by kind across the whole result.
func (r Result) AnomalyCount() map[AnomalyKind]int {
	out := make(map[AnomalyKind]int)
	add := func(list []Anomaly) {
		for _, a := range list {
			out[a.Kind]++
		}
	}
	add(r.Anomalies)
	for _, k := range r.KPIs {
		add(k.Anomalies)
	}
	for _, c := range r.Charts {
		add(c.Anomalies)
	}
	return out
}
