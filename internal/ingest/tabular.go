// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package ingest

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"

	"github.com/tomtom215/pulseboard/internal/records"
)

const (
	encodingUTF8   = "utf-8"
	encodingLatin1 = "iso-8859-1"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSV reads a header row followed by data rows. Input that is not valid
// UTF-8 is decoded as ISO-8859-1.
func readCSV(r io.Reader) (*table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	encoding := encodingUTF8
	if !utf8.Valid(data) {
		data, err = charmap.ISO8859_1.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", encodingLatin1, err)
		}
		encoding = encodingLatin1
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	t, err := fromRows(rows)
	if err != nil {
		return nil, err
	}
	t.report.Encoding = encoding
	return t, nil
}

// readXLSX reads one worksheet. The first row is the header.
func readXLSX(r io.Reader, sheet string) (*table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoRecords
		}
		sheet = sheets[0]
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	return fromRows(rows)
}

// fromRows builds a text table from a header row and data rows. Short rows
// are padded with nulls; cells past the header are ignored.
func fromRows(rows [][]string) (*table, error) {
	if len(rows) == 0 {
		return nil, ErrNoRecords
	}
	header := headerNames(rows[0])

	t := newTable(true)
	for _, name := range header {
		t.addColumn(name)
	}
	for _, row := range rows[1:] {
		rec := records.NewRecord()
		for i, name := range header {
			if i >= len(row) || row[i] == "" {
				rec.Set(name, records.Null())
				continue
			}
			rec.Set(name, records.String(row[i]))
		}
		t.rows = append(t.rows, rec)
	}
	return t, nil
}
