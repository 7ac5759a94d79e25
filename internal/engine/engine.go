// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package engine

import (
	"github.com/tomtom215/pulseboard/internal/records"
	"github.com/tomtom215/pulseboard/internal/registry"
)

// Evaluate applies sel to the snapshot and computes every KPI and chart in
// reg, in declaration order. It holds no locks and performs no I/O.
func Evaluate(snap records.Snapshot, reg *registry.Registry, sel Selection) Result {
	filtered, anomalies := ApplySelection(snap.Records, reg, sel)

	kpis := reg.KPIs()
	charts := reg.Charts()

	res := Result{
		KPIs:            make([]KPIResult, 0, len(kpis)),
		Charts:          make([]ChartResult, 0, len(charts)),
		Filters:         FilterStates(snap.Records, reg),
		TotalRecords:    snap.Len(),
		FilteredRecords: len(filtered),
		Version:         snap.Version,
		ComputedAt:      snap.TakenAt,
		Anomalies:       anomalies,
	}
	for _, def := range kpis {
		res.KPIs = append(res.KPIs, EvaluateKPI(filtered, def))
	}
	for _, def := range charts {
		res.Charts = append(res.Charts, EvaluateChart(filtered, def))
	}
	return res
}
