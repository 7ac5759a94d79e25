// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package records

import (
	"github.com/fxamacker/cbor/v2"
)

// MarshalCBOR encodes v as the matching CBOR scalar.
func (v Value) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(v.Interface())
}

// UnmarshalCBOR decodes a CBOR scalar. Maps and arrays are rejected.
func (v *Value) UnmarshalCBOR(data []byte) error {
	var raw any
	if err := cbor.Unmarshal(data, &raw); err != nil {
		return err
	}
	val, ok := FromAny(raw)
	if !ok {
		return ErrNestedValue
	}
	*v = val
	return nil
}
