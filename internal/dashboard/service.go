// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/pulseboard/internal/cache"
	"github.com/tomtom215/pulseboard/internal/engine"
	"github.com/tomtom215/pulseboard/internal/ingest"
	"github.com/tomtom215/pulseboard/internal/logging"
	"github.com/tomtom215/pulseboard/internal/metrics"
	"github.com/tomtom215/pulseboard/internal/records"
	"github.com/tomtom215/pulseboard/internal/registry"
)

// Record sources, used in updates, logs and the ingest metric.
const (
	SourceUpload     = "upload"
	SourceAPI        = "api"
	SourceSample     = "sample"
	SourceSimulation = "simulation"
	SourceNATS       = "nats"
)

// Write operations reported in Update.Operation.
const (
	OpReplace = "replace"
	OpAppend  = "append"
	OpClear   = "clear"
)

const (
	defaultCacheTTL     = 30 * time.Second
	defaultCacheEntries = 64
)

// Update describes one write and the unfiltered dashboard after it.
type Update struct {
	Source       string        `json:"source" cbor:"source"`
	Operation    string        `json:"operation" cbor:"operation"`
	Added        int           `json:"added" cbor:"added"`
	Evicted      int           `json:"evicted" cbor:"evicted"`
	TotalRecords int           `json:"total_records" cbor:"total_records"`
	Result       engine.Result `json:"result" cbor:"result"`
	Timestamp    time.Time     `json:"timestamp" cbor:"timestamp"`
}

// Publisher receives an Update after every write. Implementations must
// return promptly.
type Publisher interface {
	Publish(update Update)
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(Update)

// Publish calls f.
func (f PublisherFunc) Publish(u Update) { f(u) }

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the update publisher.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.publisher = p }
}

// WithCache sets the TTL and size of the result cache. A ttl <= 0 disables
// caching.
func WithCache(ttl time.Duration, entries int) Option {
	return func(s *Service) {
		if ttl <= 0 {
			s.cache = nil
			return
		}
		s.cache = cache.New[engine.Result](ttl, entries)
	}
}

// WithClock overrides the time source for snapshots and updates.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// Service owns the record store and the registry.
type Service struct {
	store *records.Store
	reg   *registry.Registry
	cache *cache.Cache[engine.Result]
	now   func() time.Time

	pubMu     sync.RWMutex
	publisher Publisher

	// writeMu orders write+publish pairs.
	writeMu sync.Mutex
}

// New creates a Service with a store of the given capacity.
func New(reg *registry.Registry, capacity int, opts ...Option) *Service {
	s := &Service{
		reg:   reg,
		cache: cache.New[engine.Result](defaultCacheTTL, defaultCacheEntries),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.store = records.NewStore(capacity,
		records.WithEvictionHook(metrics.RecordEvictions),
		records.WithClock(s.now),
	)
	metrics.SetStoreSize(0, s.store.Capacity())
	return s
}

// SetPublisher replaces the publisher. It is safe to call while writes are
// in flight.
func (s *Service) SetPublisher(p Publisher) {
	s.pubMu.Lock()
	s.publisher = p
	s.pubMu.Unlock()
}

// Registry returns the definitions the service evaluates.
func (s *Service) Registry() *registry.Registry { return s.reg }

// Store returns the underlying record store.
func (s *Service) Store() *records.Store { return s.store }

// Replace installs recs as the whole data set.
func (s *Service) Replace(ctx context.Context, recs []records.Record, source string) Update {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	evicted := s.store.Replace(recs)
	return s.afterWrite(ctx, OpReplace, source, len(recs), evicted)
}

// Append adds recs to the window, evicting the oldest records past capacity.
func (s *Service) Append(ctx context.Context, recs []records.Record, source string) Update {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	evicted := s.store.Append(recs...)
	return s.afterWrite(ctx, OpAppend, source, len(recs), evicted)
}

// Clear empties the window.
func (s *Service) Clear(ctx context.Context, source string) Update {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.store.Clear()
	return s.afterWrite(ctx, OpClear, source, 0, 0)
}

// LoadSample replaces the data set with n deterministic sample records.
func (s *Service) LoadSample(ctx context.Context, n int, seed uint64) Update {
	return s.Replace(ctx, ingest.SampleRecords(n, seed), SourceSample)
}

func (s *Service) afterWrite(ctx context.Context, op, source string, added, evicted int) Update {
	snap := s.store.Snapshot()
	res := s.evaluate(snap, nil)
	if s.cache != nil {
		s.cache.Set(cache.GenerateKey("dashboard", snap.Version, ""), res)
	}

	metrics.SetStoreSize(snap.Len(), s.store.Capacity())
	if added > 0 {
		metrics.RecordIngest(source, added)
	}
	counts := res.AnomalyCount()
	byKind := make(map[string]int, len(counts))
	for k, n := range counts {
		byKind[string(k)] = n
	}
	metrics.RecordAnomalies(byKind)

	update := Update{
		Source:       source,
		Operation:    op,
		Added:        added,
		Evicted:      evicted,
		TotalRecords: snap.Len(),
		Result:       res,
		Timestamp:    s.now().UTC(),
	}

	logging.Ctx(ctx).Debug().
		Str("source", source).
		Str("operation", op).
		Int("added", added).
		Int("evicted", evicted).
		Int("total_records", snap.Len()).
		Uint64("version", snap.Version).
		Msg("record store updated")

	s.pubMu.RLock()
	p := s.publisher
	s.pubMu.RUnlock()
	if p != nil {
		p.Publish(update)
	}
	return update
}

func (s *Service) evaluate(snap records.Snapshot, sel engine.Selection) engine.Result {
	start := time.Now()
	res := engine.Evaluate(snap, s.reg, sel)
	metrics.ObserveEngine("dashboard", time.Since(start))
	return res
}

// Current evaluates every KPI and chart under sel.
func (s *Service) Current(ctx context.Context, sel engine.Selection) engine.Result {
	snap := s.store.Snapshot()
	if s.cache == nil {
		return s.evaluate(snap, sel)
	}

	key := cache.GenerateKey("dashboard", snap.Version, sel.Key())
	if res, ok := s.cache.Get(key); ok {
		metrics.RecordCache(true)
		return res
	}
	metrics.RecordCache(false)

	res := s.evaluate(snap, sel)
	s.cache.Set(key, res)
	logging.Ctx(ctx).Trace().Uint64("version", snap.Version).Msg("dashboard result computed")
	return res
}

// KPI evaluates one KPI under sel. The second result is false when id is
// not defined.
func (s *Service) KPI(_ context.Context, id string, sel engine.Selection) (engine.KPIResult, []engine.Anomaly, bool) {
	def, ok := s.reg.KPI(id)
	if !ok {
		return engine.KPIResult{}, nil, false
	}
	start := time.Now()
	filtered, anomalies := engine.ApplySelection(s.store.Snapshot().Records, s.reg, sel)
	res := engine.EvaluateKPI(filtered, def)
	metrics.ObserveEngine("kpi", time.Since(start))
	return res, anomalies, true
}

// Chart evaluates one chart under sel. The second result is false when id
// is not defined.
func (s *Service) Chart(_ context.Context, id string, sel engine.Selection) (engine.ChartResult, []engine.Anomaly, bool) {
	def, ok := s.reg.Chart(id)
	if !ok {
		return engine.ChartResult{}, nil, false
	}
	start := time.Now()
	filtered, anomalies := engine.ApplySelection(s.store.Snapshot().Records, s.reg, sel)
	res := engine.EvaluateChart(filtered, def)
	metrics.ObserveEngine("chart", time.Since(start))
	return res, anomalies, true
}

// Records returns up to limit of the most recent records, oldest first.
func (s *Service) Records(limit int) []records.Record {
	return s.store.Tail(limit)
}

// Summary profiles the current window.
func (s *Service) Summary() engine.Summary {
	return engine.Summarize(s.store.Snapshot().Records)
}

// Stats reports the store size, capacity and version.
func (s *Service) Stats() records.Stats {
	return s.store.Stats()
}

// Snapshot returns the current unfiltered dashboard wrapped as an update.
// It backs the websocket snapshot message.
func (s *Service) Snapshot(ctx context.Context) Update {
	res := s.Current(ctx, nil)
	return Update{
		Source:       "snapshot",
		TotalRecords: res.TotalRecords,
		Result:       res,
		Timestamp:    s.now().UTC(),
	}
}
