// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package records

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"iter"
	"slices"

	"github.com/goccy/go-json"
)

// Field is one named value of a record.
type Field struct {
	Name  string
	Value Value
}

// F builds a Field.
func F(name string, v Value) Field {
	return Field{Name: name, Value: v}
}

// Record is a flat, ordered mapping from field name to value. A name that
// is not in the record is absent; a name set to Null() is present with a
// null value. Fields keep the order in which they were first set.
//
// Records share storage when copied. Clone before mutating a record that
// has been handed to a Store or another goroutine.
type Record struct {
	fields []Field
	index  map[string]int
}

// NewRecord builds a record from fields in order. A repeated name
// overwrites the earlier value and keeps its position.
func NewRecord(fields ...Field) Record {
	r := Record{
		fields: make([]Field, 0, len(fields)),
		index:  make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		r.Set(f.Name, f.Value)
	}
	return r
}

// Get returns the value of name and whether it is present.
func (r Record) Get(name string) (Value, bool) {
	i, ok := r.index[name]
	if !ok {
		return Value{}, false
	}
	return r.fields[i].Value, true
}

// Has reports whether name is present.
func (r Record) Has(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Number returns the numeric value of name. ok is false when the field is
// absent or holds a non-number.
func (r Record) Number(name string) (float64, bool) {
	v, ok := r.Get(name)
	if !ok {
		return 0, false
	}
	return v.Float()
}

// Set assigns v to name. New names are appended after existing fields.
func (r *Record) Set(name string, v Value) {
	if i, ok := r.index[name]; ok {
		r.fields[i].Value = v
		return
	}
	if r.index == nil {
		r.index = make(map[string]int)
	}
	r.index[name] = len(r.fields)
	r.fields = append(r.fields, Field{Name: name, Value: v})
}

// Delete removes name, keeping the order of the remaining fields.
func (r *Record) Delete(name string) {
	i, ok := r.index[name]
	if !ok {
		return
	}
	r.fields = slices.Delete(r.fields, i, i+1)
	delete(r.index, name)
	for j := i; j < len(r.fields); j++ {
		r.index[r.fields[j].Name] = j
	}
}

// Len returns the number of fields.
func (r Record) Len() int { return len(r.fields) }

// Fields returns a copy of the fields in order.
func (r Record) Fields() []Field {
	return slices.Clone(r.fields)
}

// Names returns the field names in order.
func (r Record) Names() []string {
	out := make([]string, len(r.fields))
	for i, f := range r.fields {
		out[i] = f.Name
	}
	return out
}

// All iterates over the fields in order.
func (r Record) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		for _, f := range r.fields {
			if !yield(f.Name, f.Value) {
				return
			}
		}
	}
}

// Clone returns an independent copy. Values are immutable so this is a
// full copy.
func (r Record) Clone() Record {
	out := Record{
		fields: slices.Clone(r.fields),
		index:  make(map[string]int, len(r.fields)),
	}
	if out.fields == nil {
		out.fields = []Field{}
	}
	for i, f := range out.fields {
		out.index[f.Name] = i
	}
	return out
}

// MarshalJSON encodes the record as a JSON object in field order.
func (r Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range r.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := json.Marshal(f.Name)
		if err != nil {
			return nil, err
		}
		val, err := f.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a flat JSON object in document order. Nested
// objects and arrays are rejected with ErrNestedValue.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("record must be a JSON object: %w", ErrNestedValue)
	}

	out := NewRecord()
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected token %v", tok)
		}
		var v Value
		if err := dec.Decode(&v); err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		out.Set(name, v)
	}
	if _, err := dec.Token(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	*r = out
	return nil
}
