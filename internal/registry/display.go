// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package registry

import (
	"bytes"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

// Definitions carry presentation keys the server does not interpret (icons,
// trend arrows, backgrounds) in Display. They are kept on load and written
// back unchanged, after the known keys.

type (
	plainKPI    KPIDefinition
	plainChart  ChartDefinition
	plainFilter FilterDefinition
)

var (
	kpiKeys    = tagKeys(reflect.TypeOf(KPIDefinition{}))
	chartKeys  = tagKeys(reflect.TypeOf(ChartDefinition{}))
	filterKeys = tagKeys(reflect.TypeOf(FilterDefinition{}))
)

// tagKeys returns the JSON names of the struct fields of t.
func tagKeys(t reflect.Type) map[string]bool {
	keys := make(map[string]bool, t.NumField())
	for i := range t.NumField() {
		name, _, _ := strings.Cut(t.Field(i).Tag.Get("json"), ",")
		if name != "" && name != "-" {
			keys[name] = true
		}
	}
	return keys
}

// extraJSON returns the members of a JSON object that are not in known.
func extraJSON(data []byte, known map[string]bool) (map[string]any, error) {
	var all map[string]any
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, err
	}
	var extra map[string]any
	for k, v := range all {
		if known[k] {
			continue
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = v
	}
	return extra, nil
}

// withExtraJSON appends the members of extra to the encoded object base.
// Keys that collide with known fields are skipped.
func withExtraJSON(base []byte, extra map[string]any, known map[string]bool) ([]byte, error) {
	if len(extra) == 0 {
		return base, nil
	}
	base = bytes.TrimSpace(base)
	if len(base) < 2 || base[len(base)-1] != '}' {
		return nil, fmt.Errorf("expected a JSON object, got %s", base)
	}

	var buf bytes.Buffer
	buf.Write(base[:len(base)-1])
	first := len(bytes.TrimSpace(base[1:len(base)-1])) == 0
	for _, k := range slices.Sorted(maps.Keys(extra)) {
		if known[k] {
			continue
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(extra[k])
		if err != nil {
			return nil, fmt.Errorf("display key %q: %w", k, err)
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// extraYAML returns the entries of a YAML mapping whose keys are not in known.
func extraYAML(node *yaml.Node, known map[string]bool) (map[string]any, error) {
	if node.Kind != yaml.MappingNode {
		return nil, nil
	}
	var extra map[string]any
	for i := 0; i+1 < len(node.Content); i += 2 {
		k := node.Content[i].Value
		if known[k] {
			continue
		}
		var v any
		if err := node.Content[i+1].Decode(&v); err != nil {
			return nil, fmt.Errorf("display key %q: %w", k, err)
		}
		if extra == nil {
			extra = make(map[string]any)
		}
		extra[k] = v
	}
	return extra, nil
}

// withExtraYAML encodes base as a mapping node followed by the entries of
// extra in key order.
func withExtraYAML(base any, extra map[string]any, known map[string]bool) (*yaml.Node, error) {
	var node yaml.Node
	if err := node.Encode(base); err != nil {
		return nil, err
	}
	for _, k := range slices.Sorted(maps.Keys(extra)) {
		if known[k] {
			continue
		}
		var val yaml.Node
		if err := val.Encode(extra[k]); err != nil {
			return nil, fmt.Errorf("display key %q: %w", k, err)
		}
		key := &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}
		node.Content = append(node.Content, key, &val)
	}
	return &node, nil
}

// MarshalJSON writes the known fields followed by Display.
func (d KPIDefinition) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(plainKPI(d))
	if err != nil {
		return nil, err
	}
	return withExtraJSON(base, d.Display, kpiKeys)
}

// UnmarshalJSON reads the known fields and collects the rest into Display.
func (d *KPIDefinition) UnmarshalJSON(data []byte) error {
	var p plainKPI
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraJSON(data, kpiKeys)
	if err != nil {
		return err
	}
	p.Display = extra
	*d = KPIDefinition(p)
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (d KPIDefinition) MarshalYAML() (any, error) {
	return withExtraYAML(plainKPI(d), d.Display, kpiKeys)
}

// UnmarshalYAML mirrors UnmarshalJSON.
func (d *KPIDefinition) UnmarshalYAML(node *yaml.Node) error {
	var p plainKPI
	if err := node.Decode(&p); err != nil {
		return err
	}
	extra, err := extraYAML(node, kpiKeys)
	if err != nil {
		return err
	}
	p.Display = extra
	*d = KPIDefinition(p)
	return nil
}

// MarshalJSON writes the known fields followed by Display.
func (d ChartDefinition) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(plainChart(d))
	if err != nil {
		return nil, err
	}
	return withExtraJSON(base, d.Display, chartKeys)
}

// UnmarshalJSON reads the known fields and collects the rest into Display.
func (d *ChartDefinition) UnmarshalJSON(data []byte) error {
	var p plainChart
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraJSON(data, chartKeys)
	if err != nil {
		return err
	}
	p.Display = extra
	*d = ChartDefinition(p)
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (d ChartDefinition) MarshalYAML() (any, error) {
	return withExtraYAML(plainChart(d), d.Display, chartKeys)
}

// UnmarshalYAML mirrors UnmarshalJSON.
func (d *ChartDefinition) UnmarshalYAML(node *yaml.Node) error {
	var p plainChart
	if err := node.Decode(&p); err != nil {
		return err
	}
	extra, err := extraYAML(node, chartKeys)
	if err != nil {
		return err
	}
	p.Display = extra
	*d = ChartDefinition(p)
	return nil
}

// MarshalJSON writes the known fields followed by Display.
func (d FilterDefinition) MarshalJSON() ([]byte, error) {
	base, err := json.Marshal(plainFilter(d))
	if err != nil {
		return nil, err
	}
	return withExtraJSON(base, d.Display, filterKeys)
}

// UnmarshalJSON reads the known fields and collects the rest into Display.
func (d *FilterDefinition) UnmarshalJSON(data []byte) error {
	var p plainFilter
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	extra, err := extraJSON(data, filterKeys)
	if err != nil {
		return err
	}
	p.Display = extra
	*d = FilterDefinition(p)
	return nil
}

// MarshalYAML mirrors MarshalJSON.
func (d FilterDefinition) MarshalYAML() (any, error) {
	return withExtraYAML(plainFilter(d), d.Display, filterKeys)
}

// UnmarshalYAML mirrors UnmarshalJSON.
func (d *FilterDefinition) UnmarshalYAML(node *yaml.Node) error {
	var p plainFilter
	if err := node.Decode(&p); err != nil {
		return err
	}
	extra, err := extraYAML(node, filterKeys)
	if err != nil {
		return err
	}
	p.Display = extra
	*d = FilterDefinition(p)
	return nil
}
