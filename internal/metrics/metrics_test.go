// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestSetStoreSize(t *testing.T) {
	SetStoreSize(42, 1000)
	if got := testutil.ToFloat64(StoreRecords); got != 42 {
		t.Errorf("StoreRecords = %v, want 42", got)
	}
	if got := testutil.ToFloat64(StoreCapacity); got != 1000 {
		t.Errorf("StoreCapacity = %v, want 1000", got)
	}
}

func TestRecordEvictions(t *testing.T) {
	before := testutil.ToFloat64(StoreEvictions)
	RecordEvictions(3)
	RecordEvictions(0)
	RecordEvictions(-1)
	if got := testutil.ToFloat64(StoreEvictions) - before; got != 3 {
		t.Errorf("evictions delta = %v, want 3", got)
	}
}

func TestRecordIngest(t *testing.T) {
	tests := []struct {
		source string
		n      int
		want   float64
	}{
		{"upload", 10, 10},
		{"api", 1, 1},
		{"simulation", 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			c := RecordsIngested.WithLabelValues(tt.source)
			before := testutil.ToFloat64(c)
			RecordIngest(tt.source, tt.n)
			if got := testutil.ToFloat64(c) - before; got != tt.want {
				t.Errorf("delta = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRecordIngestErrorDefaultsFormat(t *testing.T) {
	c := IngestErrors.WithLabelValues("unknown")
	before := testutil.ToFloat64(c)
	RecordIngestError("")
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("delta = %v, want 1", got)
	}
}

func TestRecordAnomalies(t *testing.T) {
	c := DataAnomalies.WithLabelValues("non_numeric")
	before := testutil.ToFloat64(c)
	RecordAnomalies(map[string]int{"non_numeric": 2, "missing_field": 0})
	if got := testutil.ToFloat64(c) - before; got != 2 {
		t.Errorf("delta = %v, want 2", got)
	}
}

func TestRecordCache(t *testing.T) {
	hits, misses := testutil.ToFloat64(CacheHits), testutil.ToFloat64(CacheMisses)
	RecordCache(true)
	RecordCache(false)
	RecordCache(false)
	if got := testutil.ToFloat64(CacheHits) - hits; got != 1 {
		t.Errorf("hits delta = %v", got)
	}
	if got := testutil.ToFloat64(CacheMisses) - misses; got != 2 {
		t.Errorf("misses delta = %v", got)
	}
}

func TestRecordAPIRequest(t *testing.T) {
	c := APIRequestsTotal.WithLabelValues("GET", "/api/v1/dashboard", "200")
	before := testutil.ToFloat64(c)
	RecordAPIRequest("GET", "/api/v1/dashboard", 200, 15*time.Millisecond)
	if got := testutil.ToFloat64(c) - before; got != 1 {
		t.Errorf("delta = %v, want 1", got)
	}
	ObserveEngine("dashboard", time.Millisecond)
	if n := testutil.CollectAndCount(EngineDuration); n == 0 {
		t.Error("engine histogram has no series")
	}
}

func TestTrackActiveRequestConcurrent(t *testing.T) {
	before := testutil.ToFloat64(APIActiveRequests)
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			TrackActiveRequest(true)
			TrackActiveRequest(false)
		}()
	}
	wg.Wait()
	if got := testutil.ToFloat64(APIActiveRequests); got != before {
		t.Errorf("active requests = %v, want %v", got, before)
	}
}

func TestSetAppInfo(t *testing.T) {
	SetAppInfo("test")
	if n := testutil.CollectAndCount(AppInfo); n != 1 {
		t.Errorf("app_info series = %d, want 1", n)
	}
}
