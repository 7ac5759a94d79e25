// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package logging is the zerolog-backed structured logger used by every
// Pulseboard component.
//
// A single global logger is configured once from main:
//
//	logging.Init(logging.Config{Level: "info", Format: "json"})
//
//	logging.Info().Int("records", n).Msg("Sample data loaded")
//	logging.Error().Err(err).Str("file", name).Msg("Upload rejected")
//
// Request-scoped logging picks up the request and correlation ids stored in
// the context by the HTTP middleware:
//
//	logging.Ctx(ctx).Warn().Str("filter", id).Msg("Unknown filter ignored")
//
// Long-lived components tag their output:
//
//	log := logging.WithComponent("simulator")
//
// # Configuration
//
//	LOG_LEVEL   trace, debug, info, warn, error (default: info)
//	LOG_FORMAT  json or console (default: json)
//	LOG_CALLER  include file:line (default: false)
//
// # slog bridge
//
// Libraries that take a *slog.Logger, such as sutureslog and Watermill,
// receive one from NewSlogLogger so their output lands in the same stream.
//
// Always finish an event with Msg or Send, otherwise nothing is written.
package logging
