// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package engine

import (
	"fmt"
	"math"

	"github.com/tomtom215/pulseboard/internal/records"
	"github.com/tomtom215/pulseboard/internal/registry"
)

// EvaluateChart computes the series for def over recs.
//
// line and scatter emit one point per record holding both x and y, in input
// order. bar and pie group by x in first-seen order; a group's value is the
// sum of its numeric y values, or its record count when no record in the
// group has a numeric y. Records without x fall into a null-labelled group so
// that group counts always add up to the snapshot size, unless no record
// carries x at all, in which case the series is empty. pie clamps negative
// sums to zero. heatmap emits only non-empty (x, y) buckets in first-seen
// order, valued by the sum of numeric z when z_field is set, else by count.
func EvaluateChart(recs []records.Record, def registry.ChartDefinition) ChartResult {
	res := ChartResult{
		ID:     def.ID,
		Kind:   def.Type,
		Title:  def.DisplayTitle(),
		XField: def.XField,
		YField: def.YField,
	}

	switch def.Type {
	case registry.ChartLine, registry.ChartScatter:
		res.Points, res.Anomalies = pointSeries(recs, def)
		res.Empty = len(res.Points) == 0
	case registry.ChartBar, registry.ChartPie:
		res.Categories, res.Anomalies = groupSeries(recs, def)
		if def.Type == registry.ChartPie {
			res.Anomalies = append(res.Anomalies, clampNegative(res.Categories, def.XField)...)
		}
		res.Empty = len(res.Categories) == 0
	case registry.ChartHeatmap:
		res.Cells, res.Anomalies = heatmapSeries(recs, def)
		res.Empty = len(res.Cells) == 0
	default:
		res.Empty = true
	}

	if len(recs) == 0 {
		res.Anomalies = append(res.Anomalies, Anomaly{Kind: AnomalyEmptySnapshot})
	}
	return res
}

// presence tracks how often a field was missing for a chart.
type presence struct {
	field  string
	absent int
	null   int
}

func (p *presence) observe(r records.Record) (records.Value, bool) {
	v, ok := r.Get(p.field)
	if !ok {
		p.absent++
		return v, false
	}
	if v.IsNull() {
		p.null++
		return v, false
	}
	return v, true
}

func (p *presence) anomalies(total int) []Anomaly {
	if p.field == "" {
		return nil
	}
	if total > 0 && p.absent == total {
		return []Anomaly{{Kind: AnomalyFieldAbsent, Field: p.field, Count: total}}
	}
	var out []Anomaly
	if p.absent > 0 {
		out = append(out, Anomaly{Kind: AnomalyMissingField, Field: p.field, Count: p.absent})
	}
	if p.null > 0 {
		out = append(out, Anomaly{Kind: AnomalyNullValue, Field: p.field, Count: p.null})
	}
	return out
}

func pointSeries(recs []records.Record, def registry.ChartDefinition) ([]Point, []Anomaly) {
	xs := presence{field: def.XField}
	ys := presence{field: def.YField}
	points := make([]Point, 0, len(recs))

	for _, r := range recs {
		x, okX := xs.observe(r)
		y, okY := ys.observe(r)
		if !okX || !okY {
			continue
		}
		p := Point{X: x, Y: y}
		if def.ColorField != "" {
			if g, ok := r.Get(def.ColorField); ok {
				p.Group = &g
			}
		}
		points = append(points, p)
	}

	anomalies := append(xs.anomalies(len(recs)), ys.anomalies(len(recs))...)
	return points, anomalies
}

type group struct {
	label   records.Value
	count   int
	sum     float64
	numeric int
}

func (g *group) add(r records.Record, field string) {
	g.count++
	if field == "" {
		return
	}
	if f, ok := r.Number(field); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
		g.sum += f
		g.numeric++
	}
}

func (g *group) value() (float64, Aggregate) {
	if g.numeric > 0 {
		return g.sum, AggregateSum
	}
	return float64(g.count), AggregateCount
}

func groupSeries(recs []records.Record, def registry.ChartDefinition) ([]Category, []Anomaly) {
	xs := presence{field: def.XField}
	order := make([]string, 0)
	groups := make(map[string]*group)

	for _, r := range recs {
		x, ok := xs.observe(r)
		if !ok {
			x = records.Null()
		}
		key := x.Key()
		g, seen := groups[key]
		if !seen {
			g = &group{label: x}
			groups[key] = g
			order = append(order, key)
		}
		g.add(r, def.YField)
	}

	if len(recs) > 0 && xs.absent == len(recs) {
		return []Category{}, xs.anomalies(len(recs))
	}

	out := make([]Category, 0, len(order))
	for _, key := range order {
		g := groups[key]
		v, agg := g.value()
		out = append(out, Category{Label: g.label, Value: v, Count: g.count, Aggregate: agg})
	}

	anomalies := xs.anomalies(len(recs))
	if def.YField != "" && len(recs) > 0 {
		scan := scanNumeric(recs, def.YField)
		if scan.numeric > 0 {
			anomalies = append(anomalies, scan.anomalies(def.YField, len(recs))...)
		}
	}
	return out, anomalies
}

func clampNegative(cats []Category, field string) []Anomaly {
	var out []Anomaly
	for i := range cats {
		if cats[i].Value < 0 {
			out = append(out, Anomaly{
				Kind:   AnomalyNegativeClamped,
				Field:  field,
				Count:  cats[i].Count,
				Detail: fmt.Sprintf("slice %q summed to %g", cats[i].Label.String(), cats[i].Value),
			})
			cats[i].Value = 0
		}
	}
	return out
}

type cellKey struct {
	x, y string
}

type bucket struct {
	x, y    records.Value
	count   int
	sum     float64
	numeric int
}

func heatmapSeries(recs []records.Record, def registry.ChartDefinition) ([]Cell, []Anomaly) {
	xs := presence{field: def.XField}
	ys := presence{field: def.YField}
	order := make([]cellKey, 0)
	buckets := make(map[cellKey]*bucket)

	for _, r := range recs {
		x, okX := xs.observe(r)
		y, okY := ys.observe(r)
		if !okX || !okY {
			continue
		}
		key := cellKey{x: x.Key(), y: y.Key()}
		b, seen := buckets[key]
		if !seen {
			b = &bucket{x: x, y: y}
			buckets[key] = b
			order = append(order, key)
		}
		b.count++
		if def.ZField != "" {
			if f, ok := r.Number(def.ZField); ok && !math.IsNaN(f) && !math.IsInf(f, 0) {
				b.sum += f
				b.numeric++
			}
		}
	}

	cells := make([]Cell, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		c := Cell{X: b.x, Y: b.y, Count: b.count, Value: float64(b.count), Aggregate: AggregateCount}
		if b.numeric > 0 {
			c.Value = b.sum
			c.Aggregate = AggregateSum
		}
		cells = append(cells, c)
	}

	anomalies := append(xs.anomalies(len(recs)), ys.anomalies(len(recs))...)
	if def.ZField != "" && len(recs) > 0 {
		scan := scanNumeric(recs, def.ZField)
		if scan.numeric > 0 {
			anomalies = append(anomalies, scan.anomalies(def.ZField, len(recs))...)
		}
	}
	return cells, anomalies
}
