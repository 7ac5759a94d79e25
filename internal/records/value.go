// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package records

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/goccy/go-json"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
)

// String returns the kind name used in logs and anomaly details.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	default:
		return "unknown"
	}
}

// ErrNestedValue is returned when a decoded field holds an object or array.
var ErrNestedValue = errors.New("nested values are not supported in records")

// Value is a single field value. The zero Value is null.
type Value struct {
	kind Kind
	num  float64
	str  string
	b    bool
}

// Null returns the null value.
func Null() Value { return Value{} }

// Bool returns a boolean value.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number returns a numeric value.
func Number(f float64) Value { return Value{kind: KindNumber, num: f} }

// String returns a string value.
func String(s string) Value { return Value{kind: KindString, str: s} }

// Kind reports which variant v holds.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Float returns the numeric payload. ok is false for non-numbers; booleans
// and numeric-looking strings are not coerced.
func (v Value) Float() (f float64, ok bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.num, true
}

// Str returns the string payload.
func (v Value) Str() (s string, ok bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.str, true
}

// Boolean returns the boolean payload.
func (v Value) Boolean() (b, ok bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// Equal compares kind and payload. Numbers compare by IEEE equality.
func (v Value) Equal(o Value) bool {
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindNull:
		return true
	case KindBool:
		return v.b == o.b
	case KindNumber:
		return v.num == o.num
	default:
		return v.str == o.str
	}
}

// Key returns a grouping key that is unique per (kind, payload) pair.
func (v Value) Key() string {
	switch v.kind {
	case KindBool:
		return "b:" + strconv.FormatBool(v.b)
	case KindNumber:
		return "n:" + strconv.FormatFloat(v.num, 'g', -1, 64)
	case KindString:
		return "s:" + v.str
	default:
		return "null"
	}
}

// Interface returns the payload as a plain Go value (nil, bool, float64 or string).
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return nil
		}
		return v.num
	case KindString:
		return v.str
	default:
		return nil
	}
}

// String renders v for display. Null renders as an empty string.
func (v Value) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.num, 'f', -1, 64)
	case KindString:
		return v.str
	default:
		return ""
	}
}

// MarshalJSON encodes v as the matching JSON scalar.
func (v Value) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Interface())
}

// UnmarshalJSON decodes a JSON scalar. Objects and arrays are rejected.
func (v *Value) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	val, ok := FromAny(raw)
	if !ok {
		return ErrNestedValue
	}
	*v = val
	return nil
}

// MarshalYAML lets definitions containing values round-trip through YAML.
func (v Value) MarshalYAML() (any, error) {
	return v.Interface(), nil
}

// UnmarshalYAML decodes a YAML scalar using the unmarshal callback form.
func (v *Value) UnmarshalYAML(unmarshal func(any) error) error {
	var raw any
	if err := unmarshal(&raw); err != nil {
		return err
	}
	val, ok := FromAny(raw)
	if !ok {
		return ErrNestedValue
	}
	*v = val
	return nil
}

// timeLayouts are tried in order when reading a string as a timestamp.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Time interprets v as a timestamp. Strings are parsed as RFC 3339, ISO 8601
// without zone (UTC assumed) or a plain date; numbers are Unix seconds.
func (v Value) Time() (time.Time, bool) {
	switch v.kind {
	case KindNumber:
		if math.IsNaN(v.num) || math.IsInf(v.num, 0) {
			return time.Time{}, false
		}
		sec, frac := math.Modf(v.num)
		return time.Unix(int64(sec), int64(frac*1e9)).UTC(), true
	case KindString:
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, v.str); err == nil {
				return t.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

// FromAny converts a decoded scalar into a Value. It returns false for maps,
// slices and other composite types.
func FromAny(raw any) (Value, bool) {
	switch t := raw.(type) {
	case nil:
		return Null(), true
	case Value:
		return t, true
	case bool:
		return Bool(t), true
	case string:
		return String(t), true
	case float64:
		return Number(t), true
	case float32:
		return Number(float64(t)), true
	case int:
		return Number(float64(t)), true
	case int8:
		return Number(float64(t)), true
	case int16:
		return Number(float64(t)), true
	case int32:
		return Number(float64(t)), true
	case int64:
		return Number(float64(t)), true
	case uint:
		return Number(float64(t)), true
	case uint8:
		return Number(float64(t)), true
	case uint16:
		return Number(float64(t)), true
	case uint32:
		return Number(float64(t)), true
	case uint64:
		return Number(float64(t)), true
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return String(t.String()), true
		}
		return Number(f), true
	case time.Time:
		return String(t.UTC().Format(time.RFC3339)), true
	case fmt.Stringer:
		return String(t.String()), true
	default:
		return Value{}, false
	}
}
