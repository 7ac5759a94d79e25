// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

// Command kpicalc validates dashboard definitions and evaluates them against a
// data file without running the server.
//
//	kpicalc validate kpis.yaml
//	kpicalc compute sales.csv --definitions kpis.yaml --selection '{"region":{"values":["North"]}}'
//	kpicalc sample --records 50 --seed 7 > sample.json
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
