// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package ingest

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/tomtom215/pulseboard/internal/records"
)

var (
	sampleCategories = []string{"Electronics", "Clothing", "Books", "Home & Garden", "Sports", "Automotive", "Health", "Beauty"}
	sampleRegions    = []string{"North America", "Europe", "Asia Pacific", "Latin America"}
	sampleStatuses   = []string{"Active", "Pending", "Completed"}
	samplePriorities = []string{"High", "Medium", "Low"}
)

// sampleEpoch is the timestamp of the first sample record.
var sampleEpoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

// Generator produces synthetic sales records. It is not safe for
// concurrent use.
type Generator struct {
	rng    *rand.Rand
	nextID int
}

// NewGenerator returns a generator seeded with seed whose first record has
// id firstID.
func NewGenerator(seed uint64, firstID int) *Generator {
	return &Generator{
		rng:    rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		nextID: firstID,
	}
}

// Next returns a record stamped with at.
func (g *Generator) Next(at time.Time) records.Record {
	revenue := round2(math.Exp(6 + 0.5*g.rng.NormFloat64()))
	cost := round2(math.Exp(5 + 0.4*g.rng.NormFloat64()))

	r := records.NewRecord(
		records.F("id", records.Number(float64(g.nextID))),
		records.F("timestamp", records.String(at.UTC().Format(time.RFC3339))),
		records.F("date", records.String(at.UTC().Format("2006-01-02"))),
		records.F("revenue", records.Number(revenue)),
		records.F("cost", records.Number(cost)),
		records.F("profit", records.Number(round2(revenue-cost))),
		records.F("category", records.String(pick(g.rng, sampleCategories))),
		records.F("region", records.String(pick(g.rng, sampleRegions))),
		records.F("status", records.String(pick(g.rng, sampleStatuses))),
		records.F("priority", records.String(pick(g.rng, samplePriorities))),
		records.F("units_sold", records.Number(float64(1+g.rng.IntN(49)))),
		records.F("conversion_rate", records.Number(round2(1+14*g.rng.Float64()))),
		records.F("customer_satisfaction", records.Number(math.Round((3+2*g.rng.Float64())*10)/10)),
	)
	g.nextID++
	return r
}

// SampleRecords returns n deterministic records spaced one hour apart,
// starting at 2024-01-01T00:00:00Z. The same seed always yields the same
// records.
func SampleRecords(n int, seed uint64) []records.Record {
	if n <= 0 {
		return nil
	}
	g := NewGenerator(seed, 1)
	out := make([]records.Record, n)
	for i := range out {
		out[i] = g.Next(sampleEpoch.Add(time.Duration(i) * time.Hour))
		out[i].Set(FieldRecordID, records.Number(float64(i)))
	}
	return out
}

func pick(rng *rand.Rand, choices []string) string {
	return choices[rng.IntN(len(choices))]
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
