// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package api

import (
	"github.com/tomtom215/pulseboard/internal/engine"
	"github.com/tomtom215/pulseboard/internal/validation"
)

// Request parameter structs validated with go-playground/validator tags.

// RecordsRequest holds GET /records query parameters. Limit is clamped to
// the store capacity after validation.
type RecordsRequest struct {
	Limit int `json:"limit" validate:"min=1"`
}

// SampleRequest holds POST /sample query parameters.
type SampleRequest struct {
	Records int    `json:"records" validate:"min=1,max=100000"`
	Seed    uint64 `json:"seed"`
}

// DefinitionRequest identifies a KPI or chart.
type DefinitionRequest struct {
	ID string `json:"id" validate:"required,max=128"`
}

// DashboardQuery is the POST /dashboard body.
type DashboardQuery struct {
	Filters engine.Selection `json:"filters"`
}

// validateRequest returns nil when v passes its validate tags.
func validateRequest(v any) *validation.APIError {
	if err := validation.ValidateStruct(v); err != nil {
		return err.ToAPIError()
	}
	return nil
}
