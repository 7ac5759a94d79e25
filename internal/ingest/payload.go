// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package ingest

import (
	"bytes"
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/tomtom215/pulseboard/internal/records"
)

// ErrInvalidPayload is returned by DecodePayload for anything other than a
// JSON object or an array of objects.
var ErrInvalidPayload = errors.New("payload must be a JSON object or an array of objects")

// PayloadResult is the outcome of decoding a live record payload.
type PayloadResult struct {
	Records       []records.Record
	DroppedFields []string
	SkippedItems  int
}

// DecodePayload decodes records pushed by a live source: a single JSON
// object or an array of objects. Unlike file ingestion, field names are
// kept as sent and no metadata is added. Nested values are dropped and
// non-object array items are skipped; both are reported.
func DecodePayload(data []byte) (PayloadResult, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return PayloadResult{}, ErrNoRecords
	}

	doc, err := decodeDocument(bytes.NewReader(data))
	if err != nil {
		return PayloadResult{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var items []any
	switch v := doc.(type) {
	case *object:
		items = []any{v}
	case []any:
		items = v
	default:
		return PayloadResult{}, ErrInvalidPayload
	}

	var res PayloadResult
	dropped := make(map[string]struct{})
	for _, item := range items {
		obj, ok := item.(*object)
		if !ok {
			res.SkippedItems++
			continue
		}
		rec := records.NewRecord()
		for _, key := range obj.keys {
			v, ok := records.FromAny(obj.vals[key])
			if !ok {
				dropped[key] = struct{}{}
				continue
			}
			rec.Set(key, v)
		}
		res.Records = append(res.Records, rec)
	}
	res.DroppedFields = slices.Sorted(maps.Keys(dropped))
	return res, nil
}
