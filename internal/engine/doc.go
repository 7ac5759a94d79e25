// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

/*
Package engine computes KPI values and chart series from a record snapshot.

Every function here is a pure function of its inputs: a snapshot (or slice of
records) and a definition from the registry. There is no shared state, so
concurrent evaluations never contend and callers can discard slow results.

Problems in the data never fail a computation. Absent, null or non-numeric
values are skipped and summarized as Anomaly entries on the result; a KPI
with nothing to compute from has a nil Value and NoData set; a chart with no
usable records has Empty set.

	snap := store.Snapshot()
	res := engine.Evaluate(snap, reg, engine.Selection{
	    "region": {Values: []records.Value{records.String("North")}},
	})
	for _, k := range res.KPIs {
	    fmt.Println(k.ID, engine.FormatValue(k.Value, k.Format))
	}
*/
package engine
