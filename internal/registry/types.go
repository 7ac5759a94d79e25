// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package registry

import (
	"bytes"
	"fmt"
	"maps"
	"slices"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/tomtom215/pulseboard/internal/records"
)

// Calculation is the KPI aggregate kind.
type Calculation string

const (
	CalcCount           Calculation = "count"
	CalcSum             Calculation = "sum"
	CalcMean            Calculation = "mean"
	CalcCountWhere      Calculation = "count_where"
	CalcPercentageWhere Calculation = "percentage_where"
)

// NeedsField reports whether the calculation reads a target field.
func (c Calculation) NeedsField() bool {
	return c == CalcSum || c == CalcMean
}

// NeedsCondition reports whether the calculation evaluates a condition.
func (c Calculation) NeedsCondition() bool {
	return c == CalcCountWhere || c == CalcPercentageWhere
}

// ChartKind is the chart type.
type ChartKind string

const (
	ChartLine    ChartKind = "line"
	ChartBar     ChartKind = "bar"
	ChartPie     ChartKind = "pie"
	ChartScatter ChartKind = "scatter"
	ChartHeatmap ChartKind = "heatmap"
)

// FilterKind is the filter control type.
type FilterKind string

const (
	FilterMultiSelect FilterKind = "multiselect"
	FilterDateRange   FilterKind = "daterange"
	FilterNumberRange FilterKind = "numberrange"
)

// IsRange reports whether the filter takes a bound pair.
func (k FilterKind) IsRange() bool {
	return k == FilterDateRange || k == FilterNumberRange
}

// FormatKind is the presentation tag carried alongside a KPI value.
type FormatKind string

const (
	FormatNumber     FormatKind = "number"
	FormatCurrency   FormatKind = "currency"
	FormatDecimal    FormatKind = "decimal"
	FormatPercentage FormatKind = "percentage"
)

// Operator is a condition operator. Only equality exists today.
type Operator string

const OpEquals Operator = "equals"

// operatorAliases maps accepted spellings to their canonical operator.
var operatorAliases = map[string]Operator{
	"equals": OpEquals,
	"eq":     OpEquals,
	"==":     OpEquals,
	"=":      OpEquals,
}

// Condition is a single predicate over one record field.
type Condition struct {
	Field    string        `json:"field" yaml:"field" validate:"required"`
	Operator Operator      `json:"operator" yaml:"operator" validate:"required"`
	Value    records.Value `json:"value" yaml:"value" validate:"-"`
}

// Matches reports whether r satisfies the condition. An absent field never
// matches, not even a null condition value.
func (c Condition) Matches(r records.Record) bool {
	v, ok := r.Get(c.Field)
	if !ok {
		return false
	}
	switch c.Operator {
	case OpEquals:
		return v.Equal(c.Value)
	default:
		return false
	}
}

// KPIDefinition describes one KPI.
type KPIDefinition struct {
	ID          string      `json:"id" yaml:"id" validate:"required,notblank"`
	Name        string      `json:"name" yaml:"name" validate:"required"`
	Description string      `json:"description,omitempty" yaml:"description,omitempty"`
	Icon        string      `json:"icon,omitempty" yaml:"icon,omitempty"`
	Color       string      `json:"color,omitempty" yaml:"color,omitempty"`
	Calculation Calculation `json:"calculation" yaml:"calculation" validate:"required,oneof=count mean sum count_where percentage_where"`
	Field       string      `json:"field,omitempty" yaml:"field,omitempty"`
	Condition   *Condition  `json:"condition,omitempty" yaml:"condition,omitempty"`
	Format      FormatKind  `json:"format,omitempty" yaml:"format,omitempty" validate:"omitempty,oneof=number currency decimal percentage"`

	// Display holds keys the server does not interpret.
	Display map[string]any `json:"-" yaml:"-"`
}

func (d KPIDefinition) clone() KPIDefinition {
	if d.Condition != nil {
		c := *d.Condition
		d.Condition = &c
	}
	d.Display = maps.Clone(d.Display)
	return d
}

// ChartDefinition describes one chart.
type ChartDefinition struct {
	ID          string    `json:"id" yaml:"id" validate:"required,notblank"`
	Name        string    `json:"name,omitempty" yaml:"name,omitempty"`
	Type        ChartKind `json:"type" yaml:"type" validate:"required,oneof=line bar pie scatter heatmap"`
	XField      string    `json:"x_field" yaml:"x_field" validate:"required"`
	YField      string    `json:"y_field,omitempty" yaml:"y_field,omitempty" validate:"required_if=Type line,required_if=Type scatter,required_if=Type heatmap"`
	ColorField  string    `json:"color_field,omitempty" yaml:"color_field,omitempty"`
	ZField      string    `json:"z_field,omitempty" yaml:"z_field,omitempty"`
	Title       string    `json:"title,omitempty" yaml:"title,omitempty"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`

	Display map[string]any `json:"-" yaml:"-"`
}

func (c ChartDefinition) clone() ChartDefinition {
	c.Display = maps.Clone(c.Display)
	return c
}

// DisplayTitle returns the title, falling back to the name and then the id.
func (c ChartDefinition) DisplayTitle() string {
	switch {
	case c.Title != "":
		return c.Title
	case c.Name != "":
		return c.Name
	default:
		return c.ID
	}
}

// FilterOptions is either an enumerated value list or a bound pair. In JSON
// it is an array or an object with "min" and "max".
type FilterOptions struct {
	Values []records.Value
	Min    *records.Value
	Max    *records.Value
}

// IsBounds reports whether the options hold a bound pair.
func (o FilterOptions) IsBounds() bool {
	return o.Min != nil || o.Max != nil
}

// IsZero reports whether no options were given.
func (o FilterOptions) IsZero() bool {
	return len(o.Values) == 0 && !o.IsBounds()
}

type boundPair struct {
	Min *records.Value `json:"min,omitempty" yaml:"min,omitempty"`
	Max *records.Value `json:"max,omitempty" yaml:"max,omitempty"`
}

// MarshalJSON writes the list form or the bound form.
func (o FilterOptions) MarshalJSON() ([]byte, error) {
	if o.IsBounds() {
		return json.Marshal(boundPair{Min: o.Min, Max: o.Max})
	}
	if o.Values == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(o.Values)
}

// UnmarshalJSON accepts an array of scalars or a {min, max} object.
func (o *FilterOptions) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*o = FilterOptions{}
		return nil
	}
	switch trimmed[0] {
	case '[':
		var values []records.Value
		if err := json.Unmarshal(trimmed, &values); err != nil {
			return fmt.Errorf("options list: %w", err)
		}
		*o = FilterOptions{Values: values}
	case '{':
		var bp boundPair
		if err := json.Unmarshal(trimmed, &bp); err != nil {
			return fmt.Errorf("options bounds: %w", err)
		}
		*o = FilterOptions{Min: bp.Min, Max: bp.Max}
	default:
		return fmt.Errorf("options must be a list or a {min, max} object")
	}
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (o FilterOptions) MarshalYAML() (any, error) {
	if o.IsBounds() {
		return boundPair{Min: o.Min, Max: o.Max}, nil
	}
	return o.Values, nil
}

// UnmarshalYAML mirrors UnmarshalJSON.
func (o *FilterOptions) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var values []records.Value
		if err := node.Decode(&values); err != nil {
			return fmt.Errorf("options list: %w", err)
		}
		*o = FilterOptions{Values: values}
	case yaml.MappingNode:
		var bp boundPair
		if err := node.Decode(&bp); err != nil {
			return fmt.Errorf("options bounds: %w", err)
		}
		*o = FilterOptions{Min: bp.Min, Max: bp.Max}
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*o = FilterOptions{}
			return nil
		}
		return fmt.Errorf("options must be a list or a {min, max} mapping")
	default:
		return fmt.Errorf("options must be a list or a {min, max} mapping")
	}
	return nil
}

// FilterDefinition describes one filter control.
type FilterDefinition struct {
	ID      string        `json:"id" yaml:"id" validate:"required,notblank"`
	Name    string        `json:"name,omitempty" yaml:"name,omitempty"`
	Field   string        `json:"field" yaml:"field" validate:"required"`
	Type    FilterKind    `json:"type" yaml:"type" validate:"required,oneof=multiselect daterange numberrange"`
	Options FilterOptions `json:"options" yaml:"options" validate:"-"`

	Display map[string]any `json:"-" yaml:"-"`
}

func (f FilterDefinition) clone() FilterDefinition {
	f.Options.Values = slices.Clone(f.Options.Values)
	f.Display = maps.Clone(f.Display)
	return f
}

// Document is the on-disk shape of a definitions file.
type Document struct {
	KPIs    []KPIDefinition    `json:"kpis" yaml:"kpis"`
	Charts  []ChartDefinition  `json:"charts" yaml:"charts"`
	Filters []FilterDefinition `json:"filters" yaml:"filters"`
}
