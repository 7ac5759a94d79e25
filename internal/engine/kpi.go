// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package engine

import (
	"math"

	"github.com/tomtom215/pulseboard/internal/records"
	"github.com/tomtom215/pulseboard/internal/registry"
)

// numericScan is the outcome of reading one field as a number across a
// snapshot.
type numericScan struct {
	sum        float64
	numeric    int
	absent     int
	null       int
	nonNumeric int
}

func scanNumeric(recs []records.Record, field string) numericScan {
	var s numericScan
	for _, r := range recs {
		v, ok := r.Get(field)
		switch {
		case !ok:
			s.absent++
		case v.IsNull():
			s.null++
		default:
			f, isNum := v.Float()
			if !isNum || math.IsNaN(f) || math.IsInf(f, 0) {
				s.nonNumeric++
				continue
			}
			s.sum += f
			s.numeric++
		}
	}
	return s
}

// anomalies reports the records that did not contribute to a numeric scan.
func (s numericScan) anomalies(field string, total int) []Anomaly {
	if total > 0 && s.absent == total {
		return []Anomaly{{Kind: AnomalyFieldAbsent, Field: field, Count: total}}
	}
	var out []Anomaly
	if s.absent > 0 {
		out = append(out, Anomaly{Kind: AnomalyMissingField, Field: field, Count: s.absent})
	}
	if s.null > 0 {
		out = append(out, Anomaly{Kind: AnomalyNullValue, Field: field, Count: s.null})
	}
	if s.nonNumeric > 0 {
		out = append(out, Anomaly{Kind: AnomalyNonNumeric, Field: field, Count: s.nonNumeric})
	}
	return out
}

// EvaluateKPI computes def over recs. It never fails: records that cannot
// contribute are skipped and reported as anomalies, and a KPI with nothing
// to compute from is returned with NoData set and a nil Value.
//
//   - count: number of records.
//   - sum: sum of numeric values of the field; no data if none are numeric.
//   - mean: sum divided by the number of numeric values; no data if none.
//   - count_where: records matching the condition by type-aware equality.
//   - percentage_where: count_where / count * 100, rounded to one decimal;
//     no data for an empty snapshot.
//
// count_where and percentage_where report no data when the condition field
// is absent from every record of a non-empty snapshot.
func EvaluateKPI(recs []records.Record, def registry.KPIDefinition) KPIResult {
	res := KPIResult{
		ID:          def.ID,
		Name:        def.Name,
		Calculation: def.Calculation,
		Format:      def.Format,
	}
	if res.Format == "" {
		res.Format = registry.FormatNumber
	}

	total := len(recs)
	if total == 0 && def.Calculation != registry.CalcCount {
		res.Anomalies = append(res.Anomalies, Anomaly{Kind: AnomalyEmptySnapshot})
	}

	switch def.Calculation {
	case registry.CalcCount:
		res.setValue(float64(total), total)

	case registry.CalcSum, registry.CalcMean:
		scan := scanNumeric(recs, def.Field)
		res.Anomalies = append(res.Anomalies, scan.anomalies(def.Field, total)...)
		if scan.numeric == 0 {
			res.setNoData()
			break
		}
		if def.Calculation == registry.CalcSum {
			res.setValue(scan.sum, scan.numeric)
		} else {
			res.setValue(scan.sum/float64(scan.numeric), scan.numeric)
		}

	case registry.CalcCountWhere, registry.CalcPercentageWhere:
		if def.Condition == nil {
			res.setNoData()
			break
		}
		matched, present := countWhere(recs, *def.Condition)
		if total > 0 && present == 0 {
			res.Anomalies = append(res.Anomalies, Anomaly{
				Kind:  AnomalyFieldAbsent,
				Field: def.Condition.Field,
				Count: total,
			})
			res.setNoData()
			break
		}
		if def.Calculation == registry.CalcCountWhere {
			res.setValue(float64(matched), matched)
			break
		}
		if total == 0 {
			res.setNoData()
			break
		}
		res.setValue(roundTo(100*float64(matched)/float64(total), 1), matched)

	default:
		res.setNoData()
	}

	return res
}

// countWhere returns how many records match c and how many have the
// condition field at all.
func countWhere(recs []records.Record, c registry.Condition) (matched, present int) {
	for _, r := range recs {
		if _, ok := r.Get(c.Field); ok {
			present++
		}
		if c.Matches(r) {
			matched++
		}
	}
	return matched, present
}

func (r *KPIResult) setValue(v float64, contributing int) {
	r.Value = &v
	r.NoData = false
	r.Contributing = contributing
}

func (r *KPIResult) setNoData() {
	r.Value = nil
	r.NoData = true
	r.Contributing = 0
}

// roundTo rounds half away from zero to the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}
