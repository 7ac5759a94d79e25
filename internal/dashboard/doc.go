// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package dashboard owns the record window and the definitions registry and
// turns writes into dashboard updates.
//
// Every write (Replace, Append, Clear) is applied to the store, evaluated
// against the registry without filters, and handed to the Publisher. Writes
// are serialized, so updates reach the Publisher in store version order.
// Publish must not block; the websocket Hub drops rather than waits.
//
// Reads (Current, KPI, Chart) evaluate a fresh snapshot under an optional
// filter selection. Full dashboard results are memoized per store version
// and selection, so polling clients between writes cost a map lookup.
package dashboard
