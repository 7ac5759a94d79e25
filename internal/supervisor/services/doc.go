// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package services adapts Pulseboard components to the suture.Service
// interface. Components that already expose Serve(ctx) error, such as the
// simulator and the NATS consumer, are added to the tree directly.
package services
