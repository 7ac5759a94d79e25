// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package api

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/tomtom215/pulseboard/internal/dashboard"
	"github.com/tomtom215/pulseboard/internal/ingest"
	"github.com/tomtom215/pulseboard/internal/logging"
	"github.com/tomtom215/pulseboard/internal/metrics"
	"github.com/tomtom215/pulseboard/internal/records"
)

// uploadFormField is the multipart field carrying the file.
const uploadFormField = "file"

// WriteResult summarizes a store write.
type WriteResult struct {
	Operation     string   `json:"operation"`
	Source        string   `json:"source"`
	Added         int      `json:"added"`
	Evicted       int      `json:"evicted"`
	TotalRecords  int      `json:"total_records"`
	Version       uint64   `json:"version"`
	DroppedFields []string `json:"dropped_fields,omitempty"`
	SkippedItems  int      `json:"skipped_items,omitempty"`
}

// UploadResult is the body of POST /upload.
type UploadResult struct {
	WriteResult
	Filename string        `json:"filename"`
	Report   ingest.Report `json:"report"`
}

func writeResult(u dashboard.Update) WriteResult {
	return WriteResult{
		Operation:    u.Operation,
		Source:       u.Source,
		Added:        u.Added,
		Evicted:      u.Evicted,
		TotalRecords: u.TotalRecords,
		Version:      u.Result.Version,
	}
}

// Records returns the most recent records, oldest first.
func (h *Handler) Records(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	limit, ok := queryInt(r, "limit", defaultRecordsLimit)
	if !ok {
		rw.BadRequest("limit must be an integer")
		return
	}
	req := RecordsRequest{Limit: limit}
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}
	req.Limit = min(req.Limit, h.svc.Store().Capacity())

	total := h.svc.Store().Len()
	recs := h.svc.Records(req.Limit)
	if recs == nil {
		recs = []records.Record{}
	}
	rw.SuccessWithPagination(recs, &PaginationMeta{
		Total:   total,
		Count:   len(recs),
		Limit:   req.Limit,
		HasMore: total > len(recs),
	})
}

// RecordsSummary profiles the fields in the window.
func (h *Handler) RecordsSummary(w http.ResponseWriter, r *http.Request) {
	NewResponseWriter(w, r).Success(h.svc.Summary())
}

// AppendRecords appends a JSON object or array of objects.
func (h *Handler) AppendRecords(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	limit := h.cfg.Data.UploadMaxBytes

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			metrics.RecordIngestError(string(ingest.FormatJSON))
			rw.PayloadTooLarge(tooBig.Limit)
			return
		}
		rw.BadRequest("Failed to read request body")
		return
	}

	payload, err := ingest.DecodePayload(body)
	if err == nil && len(payload.Records) == 0 {
		err = ingest.ErrNoRecords
	}
	if err != nil {
		metrics.RecordIngestError(string(ingest.FormatJSON))
		rw.BadRequest(err.Error())
		return
	}

	update := h.svc.Append(r.Context(), payload.Records, dashboard.SourceAPI)
	res := writeResult(update)
	res.DroppedFields = payload.DroppedFields
	res.SkippedItems = payload.SkippedItems
	rw.Created(res)
}

// ClearRecords empties the store.
func (h *Handler) ClearRecords(w http.ResponseWriter, r *http.Request) {
	update := h.svc.Clear(r.Context(), dashboard.SourceAPI)
	NewResponseWriter(w, r).Success(writeResult(update))
}

// Upload replaces the store with the records of an uploaded file.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)
	limit := h.cfg.Data.UploadMaxBytes

	r.Body = http.MaxBytesReader(w, r.Body, limit)
	file, header, err := r.FormFile(uploadFormField)
	if err != nil {
		switch {
		case isBodyTooLarge(err):
			metrics.RecordIngestError("")
			rw.PayloadTooLarge(limit)
		case errors.Is(err, http.ErrMissingFile):
			rw.BadRequest("No file provided in form field \"" + uploadFormField + "\"")
		default:
			rw.BadRequest("Invalid multipart form: " + err.Error())
		}
		return
	}
	defer file.Close()

	name := filepath.Base(header.Filename)
	if !h.extensionAllowed(name) {
		metrics.RecordIngestError(strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."))
		rw.ErrorWithDetails(http.StatusBadRequest, ErrCodeUnsupportedFormat,
			"File type not allowed", map[string]any{"allowed_extensions": h.cfg.Data.AllowedExtensions})
		return
	}
	format, err := ingest.FormatFromName(name)
	if err != nil {
		metrics.RecordIngestError("")
		rw.Error(http.StatusBadRequest, ErrCodeUnsupportedFormat, err.Error())
		return
	}

	batch, err := ingest.Decode(format, file, ingest.Options{Timestamp: time.Now().UTC()})
	if err != nil {
		metrics.RecordIngestError(string(format))
		logging.Ctx(r.Context()).Warn().Err(err).Str("filename", name).Msg("Upload rejected")
		if isBodyTooLarge(err) {
			rw.PayloadTooLarge(limit)
			return
		}
		rw.BadRequest("Failed to process file: " + err.Error())
		return
	}

	update := h.svc.Replace(r.Context(), batch.Records, dashboard.SourceUpload)
	logging.Ctx(r.Context()).Info().
		Str("filename", name).
		Str("format", string(format)).
		Int("records", len(batch.Records)).
		Int("evicted", update.Evicted).
		Msg("File uploaded")

	rw.Created(UploadResult{
		WriteResult: writeResult(update),
		Filename:    name,
		Report:      batch.Report,
	})
}

func (h *Handler) extensionAllowed(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return ext != "" && slices.Contains(h.cfg.Data.AllowedExtensions, ext)
}

// Sample replaces the store with generated records.
func (h *Handler) Sample(w http.ResponseWriter, r *http.Request) {
	rw := NewResponseWriter(w, r)

	n, ok := queryInt(r, "records", h.cfg.Data.SampleRecords)
	if !ok {
		rw.BadRequest("records must be an integer")
		return
	}
	req := SampleRequest{Records: n, Seed: h.cfg.Data.SimulationSeed}
	if raw := r.URL.Query().Get("seed"); raw != "" {
		seed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			rw.BadRequest("seed must be a non-negative integer")
			return
		}
		req.Seed = seed
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		rw.ValidationError(apiErr.Message, apiErr.Details)
		return
	}

	update := h.svc.LoadSample(r.Context(), req.Records, req.Seed)
	rw.Created(writeResult(update))
}

// isBodyTooLarge detects a MaxBytesReader overflow. The multipart reader
// does not always wrap the error, so the message is checked too.
func isBodyTooLarge(err error) bool {
	var tooBig *http.MaxBytesError
	return errors.As(err, &tooBig) || strings.Contains(err.Error(), "request body too large")
}
