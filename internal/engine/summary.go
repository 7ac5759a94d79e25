// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package engine

import (
	"slices"

	"github.com/tomtom215/pulseboard/internal/records"
)

// FieldProfile describes how one field is populated across a snapshot.
type FieldProfile struct {
	Name    string `json:"name"`
	Present int    `json:"present"`
	Null    int    `json:"null"`
	Numbers int    `json:"numbers"`
	Strings int    `json:"strings"`
	Bools   int    `json:"bools"`
	Dates   int    `json:"dates"`
}

// Dominant returns the kind most values of the field hold.
func (p FieldProfile) Dominant() string {
	best, name := 0, "null"
	for _, c := range []struct {
		n    int
		kind string
	}{
		{p.Numbers, "numeric"},
		{p.Dates, "datetime"},
		{p.Strings, "categorical"},
		{p.Bools, "boolean"},
	} {
		if c.n > best {
			best, name = c.n, c.kind
		}
	}
	return name
}

// Summary describes a snapshot as a whole.
type Summary struct {
	TotalRecords       int            `json:"total_records"`
	TotalColumns       int            `json:"total_columns"`
	NumericColumns     int            `json:"numeric_columns"`
	CategoricalColumns int            `json:"categorical_columns"`
	DatetimeColumns    int            `json:"datetime_columns"`
	BooleanColumns     int            `json:"boolean_columns"`
	MissingValues      int            `json:"missing_values"`
	Fields             []FieldProfile `json:"fields"`
}

// Summarize profiles every field that appears in recs. A value is missing
// when its field is null or absent in a record where some other record has
// it. String values that parse as timestamps count as dates.
func Summarize(recs []records.Record) Summary {
	profiles := make(map[string]*FieldProfile)
	for _, r := range recs {
		for name, v := range r.All() {
			p, ok := profiles[name]
			if !ok {
				p = &FieldProfile{Name: name}
				profiles[name] = p
			}
			p.Present++
			switch v.Kind() {
			case records.KindNull:
				p.Null++
			case records.KindNumber:
				p.Numbers++
			case records.KindBool:
				p.Bools++
			case records.KindString:
				if _, isTime := v.Time(); isTime {
					p.Dates++
				} else {
					p.Strings++
				}
			}
		}
	}

	s := Summary{
		TotalRecords: len(recs),
		TotalColumns: len(profiles),
		Fields:       make([]FieldProfile, 0, len(profiles)),
	}
	for _, p := range profiles {
		s.MissingValues += p.Null + (len(recs) - p.Present)
		switch p.Dominant() {
		case "numeric":
			s.NumericColumns++
		case "datetime":
			s.DatetimeColumns++
		case "categorical":
			s.CategoricalColumns++
		case "boolean":
			s.BooleanColumns++
		}
		s.Fields = append(s.Fields, *p)
	}
	slices.SortFunc(s.Fields, func(a, b FieldProfile) int {
		switch {
		case a.Name < b.Name:
			return -1
		case a.Name > b.Name:
			return 1
		default:
			return 0
		}
	})
	return s
}
