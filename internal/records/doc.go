// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

/*
Package records holds the schema-less records that feed the dashboard and the
bounded window that stores them.

# Values

A record field is a Value: a closed variant over null, boolean, number and
string. A field that is not present in a record is "absent", which is not the
same as a field that is present with a null value. Equality is type-aware, so
the number 1 and the string "1" are different values and group separately.

	r := records.NewRecord(
	    records.F("category", records.String("A")),
	    records.F("value", records.Number(42)),
	    records.F("active", records.Bool(true)),
	)

Fields keep the order in which they were first set, and that order is kept
when a record is encoded as JSON.

# Store

Store is a fixed-capacity FIFO window (default 1000 records). Writes are
serialized; Snapshot returns an immutable point-in-time view that is never
affected by later writes. When a write would exceed capacity the oldest
records are evicted and the eviction hook fires with the count.

	store := records.NewStore(1000, records.WithEvictionHook(func(n int) {
	    metrics.RecordEvictions(n)
	}))
	store.Append(r)
	snap := store.Snapshot()
*/
package records
