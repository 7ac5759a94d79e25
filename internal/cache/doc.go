// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Package cache provides a small thread-safe TTL cache for computed
// dashboard payloads.
//
// Entries expire after a fixed TTL and the cache holds at most a fixed
// number of entries; when full, expired entries are dropped first and then
// the entry closest to expiry. There is no background goroutine: cleanup
// happens on Set, so a Cache needs no Close.
//
//	c := cache.New[engine.Result](30*time.Second, 64)
//	key := cache.GenerateKey("dashboard", version, sel.Key())
//	if res, ok := c.Get(key); ok {
//	    return res
//	}
package cache
