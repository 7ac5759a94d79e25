// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package engine

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"time"

	"github.com/tomtom215/pulseboard/internal/records"
	"github.com/tomtom215/pulseboard/internal/registry"
)

// maxDerivedOptions caps the distinct values offered by a multiselect
// filter that has no configured options.
const maxDerivedOptions = 100

// FilterValue is the user's choice for one filter. Multiselect filters use
// Values; range filters use Min and/or Max.
type FilterValue struct {
	Values []records.Value `json:"values,omitempty"`
	Min    *records.Value  `json:"min,omitempty"`
	Max    *records.Value  `json:"max,omitempty"`
}

// IsZero reports whether the value selects nothing, leaving records unfiltered.
func (v FilterValue) IsZero() bool {
	return len(v.Values) == 0 && v.Min == nil && v.Max == nil
}

// Selection maps filter ids to the user's choices.
type Selection map[string]FilterValue

// Key returns a stable string for the selection, suitable as a cache key.
func (s Selection) Key() string {
	if len(s) == 0 {
		return ""
	}
	ids := make([]string, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var b strings.Builder
	for _, id := range ids {
		v := s[id]
		if v.IsZero() {
			continue
		}
		b.WriteString(id)
		b.WriteByte('=')
		for i, val := range v.Values {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(val.Key())
		}
		if v.Min != nil {
			b.WriteString("|min:" + v.Min.Key())
		}
		if v.Max != nil {
			b.WriteString("|max:" + v.Max.Key())
		}
		b.WriteByte(';')
	}
	return b.String()
}

// predicate decides whether one record passes a filter.
type predicate func(records.Record) bool

// ApplySelection returns the records that pass every selected filter, in
// their original order. recs is not modified. Records lacking a filtered
// field are excluded. Unknown filter ids and unusable bounds are reported as
// anomalies and otherwise ignored.
func ApplySelection(recs []records.Record, reg *registry.Registry, sel Selection) ([]records.Record, []Anomaly) {
	if len(sel) == 0 {
		return recs, nil
	}

	ids := make([]string, 0, len(sel))
	for id := range sel {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var preds []predicate
	var anomalies []Anomaly
	for _, id := range ids {
		choice := sel[id]
		if choice.IsZero() {
			continue
		}
		def, ok := reg.Filter(id)
		if !ok {
			anomalies = append(anomalies, Anomaly{Kind: AnomalyUnknownFilter, Detail: id})
			continue
		}
		p, err := buildPredicate(def, choice)
		if err != nil {
			anomalies = append(anomalies, Anomaly{
				Kind:   AnomalyInvalidSelection,
				Field:  def.Field,
				Detail: fmt.Sprintf("%s: %v", id, err),
			})
			continue
		}
		preds = append(preds, p)
	}
	if len(preds) == 0 {
		return recs, anomalies
	}

	out := make([]records.Record, 0, len(recs))
	for _, r := range recs {
		keep := true
		for _, p := range preds {
			if !p(r) {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, r)
		}
	}
	return out, anomalies
}

func buildPredicate(def registry.FilterDefinition, choice FilterValue) (predicate, error) {
	field := def.Field
	switch def.Type {
	case registry.FilterMultiSelect:
		if len(choice.Values) == 0 {
			return nil, fmt.Errorf("multiselect needs values")
		}
		wanted := make(map[string]struct{}, len(choice.Values))
		for _, v := range choice.Values {
			wanted[v.Key()] = struct{}{}
		}
		return func(r records.Record) bool {
			v, ok := r.Get(field)
			if !ok {
				return false
			}
			_, hit := wanted[v.Key()]
			return hit
		}, nil

	case registry.FilterNumberRange:
		lo, hi, err := floatBounds(choice)
		if err != nil {
			return nil, err
		}
		return func(r records.Record) bool {
			f, ok := r.Number(field)
			if !ok {
				return false
			}
			return (lo == nil || f >= *lo) && (hi == nil || f <= *hi)
		}, nil

	case registry.FilterDateRange:
		lo, hi, err := timeBounds(choice)
		if err != nil {
			return nil, err
		}
		return func(r records.Record) bool {
			v, ok := r.Get(field)
			if !ok {
				return false
			}
			t, ok := v.Time()
			if !ok {
				return false
			}
			return (lo == nil || !t.Before(*lo)) && (hi == nil || !t.After(*hi))
		}, nil
	}
	return nil, fmt.Errorf("unsupported filter type %q", def.Type)
}

func floatBounds(choice FilterValue) (lo, hi *float64, err error) {
	read := func(v *records.Value, name string) (*float64, error) {
		if v == nil {
			return nil, nil
		}
		f, ok := v.Float()
		if !ok {
			return nil, fmt.Errorf("%s bound %q is not a number", name, v.String())
		}
		return &f, nil
	}
	if lo, err = read(choice.Min, "min"); err != nil {
		return nil, nil, err
	}
	if hi, err = read(choice.Max, "max"); err != nil {
		return nil, nil, err
	}
	if lo == nil && hi == nil {
		return nil, nil, fmt.Errorf("range needs min or max")
	}
	return lo, hi, nil
}

func timeBounds(choice FilterValue) (lo, hi *time.Time, err error) {
	read := func(v *records.Value, name string) (*time.Time, error) {
		if v == nil {
			return nil, nil
		}
		t, ok := v.Time()
		if !ok {
			return nil, fmt.Errorf("%s bound %q is not a date", name, v.String())
		}
		return &t, nil
	}
	if lo, err = read(choice.Min, "min"); err != nil {
		return nil, nil, err
	}
	if hi, err = read(choice.Max, "max"); err != nil {
		return nil, nil, err
	}
	if lo == nil && hi == nil {
		return nil, nil, fmt.Errorf("range needs min or max")
	}
	return lo, hi, nil
}

// FilterStates describes every filter for the presentation layer. Multiselect
// filters without configured options offer the distinct values seen in recs,
// in first-seen order.
func FilterStates(recs []records.Record, reg *registry.Registry) []FilterState {
	defs := reg.Filters()
	out := make([]FilterState, 0, len(defs))
	for _, def := range defs {
		st := FilterState{
			ID:    def.ID,
			Name:  def.Name,
			Field: def.Field,
			Type:  def.Type,
			Min:   def.Options.Min,
			Max:   def.Options.Max,
		}
		if st.Name == "" {
			st.Name = def.ID
		}
		if def.Type == registry.FilterMultiSelect {
			if len(def.Options.Values) > 0 {
				st.Options = slices.Clone(def.Options.Values)
			} else {
				st.Options = DistinctValues(recs, def.Field, maxDerivedOptions)
			}
		}
		out = append(out, st)
	}
	return out
}

// DistinctValues returns up to limit distinct non-null values of field in
// first-seen order. A non-positive limit means no limit.
func DistinctValues(recs []records.Record, field string, limit int) []records.Value {
	seen := make(map[string]struct{})
	var out []records.Value
	for _, r := range recs {
		v, ok := r.Get(field)
		if !ok || v.IsNull() {
			continue
		}
		key := v.Key()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, v)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
