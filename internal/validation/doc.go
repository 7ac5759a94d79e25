// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package validation provides struct validation using go-playground/validator v10.
//
// A single validator instance is shared by the dashboard definition loader and
// the HTTP request parameter structs. Field names in error messages come from
// the json struct tag, so a failure on KPIDefinition.XField is reported as
// "x_field" exactly as it is spelled in the definitions document.
//
// # Custom Tags
//
//	notblank - string with at least one non-space character
//
// # Usage
//
//	type recordsQuery struct {
//	    Limit int `json:"limit" validate:"min=1,max=10000"`
//	}
//
//	if verr := validation.ValidateStruct(&q); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    rw.ValidationError(apiErr.Message, apiErr.Details)
//	    return
//	}
package validation
