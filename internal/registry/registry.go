// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package registry

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/goccy/go-json"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/tomtom215/pulseboard/internal/records"
	"github.com/tomtom215/pulseboard/internal/validation"
)

// Registry holds validated KPI, chart and filter definitions. It is
// immutable after construction and safe for concurrent use.
type Registry struct {
	// doc is the document as written, before normalization.
	doc Document

	kpis    []KPIDefinition
	charts  []ChartDefinition
	filters []FilterDefinition

	kpiIndex    map[string]int
	chartIndex  map[string]int
	filterIndex map[string]int
}

// Load parses a JSON definitions document. Comments and trailing commas are
// tolerated.
func Load(data []byte) (*Registry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, documentError(ErrEmptyDocument)
	}

	var doc Document
	if err := json.Unmarshal(jsonc.ToJSON(data), &doc); err != nil {
		return nil, documentError(fmt.Errorf("decode JSON: %w", err))
	}
	return New(doc)
}

// LoadYAML parses a YAML definitions document with the same shape as the
// JSON form.
func LoadYAML(data []byte) (*Registry, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, documentError(ErrEmptyDocument)
	}

	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, documentError(fmt.Errorf("decode YAML: %w", err))
	}
	return New(doc)
}

// LoadFile reads path and picks the parser from its extension. Files ending
// in .yaml or .yml are YAML; everything else is treated as JSON.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("read definitions: %w", err)
	}

	var reg *Registry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		reg, err = LoadYAML(data)
	default:
		reg, err = Load(data)
	}
	var ce *ConfigError
	if errors.As(err, &ce) {
		ce.Source = path
	}
	return reg, err
}

// New validates doc and builds a Registry from it. The document is copied;
// later changes to doc do not affect the registry.
func New(doc Document) (*Registry, error) {
	r := &Registry{
		doc:         cloneDocument(doc),
		kpis:        cloneDefs(doc.KPIs, KPIDefinition.clone),
		charts:      cloneDefs(doc.Charts, ChartDefinition.clone),
		filters:     cloneDefs(doc.Filters, FilterDefinition.clone),
		kpiIndex:    make(map[string]int, len(doc.KPIs)),
		chartIndex:  make(map[string]int, len(doc.Charts)),
		filterIndex: make(map[string]int, len(doc.Filters)),
	}

	var problems []Problem

	for i := range r.kpis {
		def := &r.kpis[i]
		problems = append(problems, checkKPI(i, def)...)
		problems = append(problems, indexID(r.kpiIndex, CategoryKPI, i, def.ID)...)
	}
	for i := range r.charts {
		problems = append(problems, checkChart(i, &r.charts[i])...)
		problems = append(problems, indexID(r.chartIndex, CategoryChart, i, r.charts[i].ID)...)
	}
	for i := range r.filters {
		def := &r.filters[i]
		problems = append(problems, checkFilter(i, def)...)
		problems = append(problems, indexID(r.filterIndex, CategoryFilter, i, def.ID)...)
	}

	if len(problems) > 0 {
		return nil, &ConfigError{Problems: problems}
	}
	return r, nil
}

func cloneDefs[T any](defs []T, clone func(T) T) []T {
	if defs == nil {
		return nil
	}
	out := make([]T, len(defs))
	for i, d := range defs {
		out[i] = clone(d)
	}
	return out
}

func cloneDocument(doc Document) Document {
	return Document{
		KPIs:    cloneDefs(doc.KPIs, KPIDefinition.clone),
		Charts:  cloneDefs(doc.Charts, ChartDefinition.clone),
		Filters: cloneDefs(doc.Filters, FilterDefinition.clone),
	}
}

func indexID(index map[string]int, cat Category, i int, id string) []Problem {
	if id == "" {
		return nil
	}
	if first, dup := index[id]; dup {
		return []Problem{{
			Category: cat,
			Index:    i,
			ID:       id,
			Field:    "id",
			Message:  fmt.Sprintf("duplicate id %q (first declared at index %d)", id, first),
		}}
	}
	index[id] = i
	return nil
}

// structProblems runs tag validation and converts failures to problems.
func structProblems(cat Category, i int, id string, def interface{}) []Problem {
	verr := validation.ValidateStruct(def)
	if verr == nil {
		return nil
	}
	out := make([]Problem, 0, len(verr.Errors()))
	for _, fe := range verr.Errors() {
		field := fe.Field()
		if _, rest, ok := strings.Cut(fe.Namespace(), "."); ok {
			field = rest
		}
		out = append(out, Problem{
			Category: cat,
			Index:    i,
			ID:       id,
			Field:    field,
			Message:  fe.Error(),
		})
	}
	return out
}

func checkKPI(i int, def *KPIDefinition) []Problem {
	def.Calculation = Calculation(strings.ToLower(strings.TrimSpace(string(def.Calculation))))
	def.Format = FormatKind(strings.ToLower(strings.TrimSpace(string(def.Format))))
	if def.Format == "" {
		def.Format = FormatNumber
	}

	var problems []Problem
	add := func(field, msg string) {
		problems = append(problems, Problem{
			Category: CategoryKPI,
			Index:    i,
			ID:       def.ID,
			Field:    field,
			Message:  msg,
		})
	}
	if def.Calculation.NeedsField() && strings.TrimSpace(def.Field) == "" {
		add("field", fmt.Sprintf("field is required when calculation is %s", def.Calculation))
	}
	if def.Calculation.NeedsCondition() && def.Condition == nil {
		add("condition", fmt.Sprintf("condition is required when calculation is %s", def.Calculation))
	}
	if def.Condition != nil {
		raw := strings.ToLower(strings.TrimSpace(string(def.Condition.Operator)))
		if raw == "" {
			raw = string(OpEquals)
		}
		op, ok := operatorAliases[raw]
		if !ok {
			add("condition.operator", fmt.Sprintf("unsupported operator %q (supported: equals)", def.Condition.Operator))
			op = Operator(raw)
		}
		def.Condition.Operator = op
	}

	return append(structProblems(CategoryKPI, i, def.ID, def), problems...)
}

func checkChart(i int, def *ChartDefinition) []Problem {
	def.Type = ChartKind(strings.ToLower(strings.TrimSpace(string(def.Type))))
	return structProblems(CategoryChart, i, def.ID, def)
}

func checkFilter(i int, def *FilterDefinition) []Problem {
	def.Type = FilterKind(strings.ToLower(strings.TrimSpace(string(def.Type))))
	problems := structProblems(CategoryFilter, i, def.ID, def)

	add := func(msg string) {
		problems = append(problems, Problem{
			Category: CategoryFilter,
			Index:    i,
			ID:       def.ID,
			Field:    "options",
			Message:  msg,
		})
	}

	opts := def.Options
	if def.Type.IsRange() && len(opts.Values) > 0 {
		add(fmt.Sprintf("%s options must be a {min, max} object", def.Type))
		return problems
	}
	switch def.Type {
	case FilterMultiSelect:
		if opts.IsBounds() {
			add("multiselect options must be a list of values")
		}
	case FilterNumberRange:
		lo, hi, ok := numberBounds(opts)
		if !ok {
			add("numberrange bounds must be numbers")
		} else if lo != nil && hi != nil && *lo > *hi {
			add("min must not exceed max")
		}
	case FilterDateRange:
		if msg := checkDateBounds(opts); msg != "" {
			add(msg)
		}
	}
	return problems
}

func numberBounds(opts FilterOptions) (lo, hi *float64, ok bool) {
	read := func(v *records.Value) (*float64, bool) {
		if v == nil || v.IsNull() {
			return nil, true
		}
		f, ok := v.Float()
		if !ok {
			return nil, false
		}
		return &f, true
	}
	lo, okLo := read(opts.Min)
	hi, okHi := read(opts.Max)
	return lo, hi, okLo && okHi
}

func checkDateBounds(opts FilterOptions) string {
	var minT, maxT *records.Value
	if opts.Min != nil && !opts.Min.IsNull() {
		minT = opts.Min
	}
	if opts.Max != nil && !opts.Max.IsNull() {
		maxT = opts.Max
	}
	for _, v := range []*records.Value{minT, maxT} {
		if v == nil {
			continue
		}
		if _, ok := v.Time(); !ok {
			return fmt.Sprintf("daterange bound %q is not a date", v.String())
		}
	}
	if minT != nil && maxT != nil {
		lo, _ := minT.Time()
		hi, _ := maxT.Time()
		if lo.After(hi) {
			return "min must not be after max"
		}
	}
	return ""
}

// KPIs returns the KPI definitions in declaration order.
func (r *Registry) KPIs() []KPIDefinition {
	out := make([]KPIDefinition, len(r.kpis))
	for i, def := range r.kpis {
		out[i] = def.clone()
	}
	return out
}

// Charts returns the chart definitions in declaration order.
func (r *Registry) Charts() []ChartDefinition {
	return cloneDefs(r.charts, ChartDefinition.clone)
}

// Filters returns the filter definitions in declaration order.
func (r *Registry) Filters() []FilterDefinition {
	return cloneDefs(r.filters, FilterDefinition.clone)
}

// KPI looks up a KPI definition by id.
func (r *Registry) KPI(id string) (KPIDefinition, bool) {
	i, ok := r.kpiIndex[id]
	if !ok {
		return KPIDefinition{}, false
	}
	return r.kpis[i].clone(), true
}

// Chart looks up a chart definition by id.
func (r *Registry) Chart(id string) (ChartDefinition, bool) {
	i, ok := r.chartIndex[id]
	if !ok {
		return ChartDefinition{}, false
	}
	return r.charts[i].clone(), true
}

// Filter looks up a filter definition by id.
func (r *Registry) Filter(id string) (FilterDefinition, bool) {
	i, ok := r.filterIndex[id]
	if !ok {
		return FilterDefinition{}, false
	}
	return r.filters[i].clone(), true
}

// Document returns the definitions as they were written, including display
// keys and without the defaults and case folding applied on load.
func (r *Registry) Document() Document {
	return cloneDocument(r.doc)
}

// Counts returns the number of KPIs, charts and filters.
func (r *Registry) Counts() (kpis, charts, filters int) {
	return len(r.kpis), len(r.charts), len(r.filters)
}
