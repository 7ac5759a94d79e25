// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package ingest turns uploaded files into records.
//
// Three formats are accepted: JSON, CSV and XLSX. All of them end up in the
// same cleaning pipeline:
//
//  1. Column names are trimmed, lower-cased and have spaces replaced by
//     underscores.
//  2. Rows with no values and columns with no values are dropped.
//  3. Columns whose name mentions a date or time keyword (date, time,
//     timestamp, created, updated, start, end) are rewritten as RFC 3339
//     strings when every value in them parses as a timestamp.
//  4. Text sources (CSV, XLSX) get type inference: a column where every
//     value is true/false becomes boolean, and a column where more than half
//     of the rows hold a number becomes numeric, with the remaining cells
//     set to null.
//  5. Every record receives a _record_id holding its 0-based position, and
//     a _processed_at timestamp when Options.Timestamp is set.
//
// JSON documents may be an array of objects, a single flat object, or an
// object wrapping the array under data, items, records, results, rows or
// entries (otherwise the longest array wins). Nested objects are flattened
// into dot-joined names; arrays inside records are dropped and listed in the
// Report.
//
// Records keep the column order of the header row, or the key order of the
// JSON document.
//
// SampleRecords produces a deterministic demonstration data set.
package ingest
