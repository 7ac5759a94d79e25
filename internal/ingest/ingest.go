// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package ingest

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/tomtom215/pulseboard/internal/records"
)

var (
	// ErrUnsupportedFormat is returned for file names whose extension is not
	// one of .json, .csv or .xlsx.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrNoRecords is returned when a source holds no usable rows.
	ErrNoRecords = errors.New("no records found")
)

// Metadata field names added to every ingested record.
const (
	FieldRecordID    = "_record_id"
	FieldProcessedAt = "_processed_at"
)

// Format identifies a source file format.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatJSON, FormatCSV, FormatXLSX}
}

// FormatFromName picks the format from a file name's extension.
func FormatFromName(name string) (Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	for _, f := range Formats() {
		if ext == string(f) {
			return f, nil
		}
	}
	if ext == "" {
		return "", fmt.Errorf("%w: %q has no extension", ErrUnsupportedFormat, name)
	}
	return "", fmt.Errorf("%w: .%s", ErrUnsupportedFormat, ext)
}

// Options tune a decode.
type Options struct {
	// Timestamp, when non-zero, is written to every record as _processed_at.
	Timestamp time.Time

	// Sheet selects the XLSX worksheet. The first sheet is used when empty.
	Sheet string
}

// Report describes what the cleaning pipeline did to a source.
type Report struct {
	Format         Format   `json:"format"`
	Encoding       string   `json:"encoding,omitempty"`
	SourceRows     int      `json:"source_rows"`
	Records        int      `json:"records"`
	EmptyRows      int      `json:"empty_rows"`
	SkippedItems   int      `json:"skipped_items"`
	DroppedFields  []string `json:"dropped_fields,omitempty"`
	EmptyColumns   []string `json:"empty_columns,omitempty"`
	DateColumns    []string `json:"date_columns,omitempty"`
	NumericColumns []string `json:"numeric_columns,omitempty"`
	BooleanColumns []string `json:"boolean_columns,omitempty"`
}

// Batch is the outcome of a decode.
type Batch struct {
	Records []records.Record
	Report  Report
}

// Decode reads r as the given format and runs the cleaning pipeline.
func Decode(format Format, r io.Reader, opts Options) (*Batch, error) {
	var (
		t   *table
		err error
	)
	switch format {
	case FormatJSON:
		t, err = readJSON(r)
	case FormatCSV:
		t, err = readCSV(r)
	case FormatXLSX:
		t, err = readXLSX(r, opts.Sheet)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", format, err)
	}
	t.report.Format = format

	recs := t.clean(opts)
	if len(recs) == 0 {
		return nil, ErrNoRecords
	}
	t.report.Records = len(recs)
	return &Batch{Records: recs, Report: t.report}, nil
}

// Parse decodes r, choosing the format from name.
func Parse(name string, r io.Reader) ([]records.Record, error) {
	format, err := FormatFromName(name)
	if err != nil {
		return nil, err
	}
	b, err := Decode(format, r, Options{})
	if err != nil {
		return nil, err
	}
	return b.Records, nil
}

// ParseJSON decodes a JSON document.
func ParseJSON(r io.Reader) ([]records.Record, error) {
	return parseAs(FormatJSON, r, Options{})
}

// ParseCSV decodes a CSV document with a header row.
func ParseCSV(r io.Reader) ([]records.Record, error) {
	return parseAs(FormatCSV, r, Options{})
}

// ParseXLSX decodes one worksheet of an XLSX workbook. An empty sheet name
// selects the first sheet.
func ParseXLSX(r io.Reader, sheet string) ([]records.Record, error) {
	return parseAs(FormatXLSX, r, Options{Sheet: sheet})
}

func parseAs(format Format, r io.Reader, opts Options) ([]records.Record, error) {
	b, err := Decode(format, r, opts)
	if err != nil {
		return nil, err
	}
	return b.Records, nil
}
