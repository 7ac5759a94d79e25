// Pulseboard - Real-Time KPI Dashboard Server
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pulseboard

package records

import (
	"sync"
	"time"
)

// DefaultCapacity is the window size used when a non-positive capacity is given.
const DefaultCapacity = 1000

// Snapshot is an immutable view of the store at one instant. Callers must
// not modify Records or the records it contains.
type Snapshot struct {
	Records []Record  `json:"records"`
	Version uint64    `json:"version"`
	TakenAt time.Time `json:"taken_at"`
}

// Len returns the number of records in the snapshot.
func (s Snapshot) Len() int { return len(s.Records) }

// Stats describes the current state of a Store.
type Stats struct {
	Size     int    `json:"size"`
	Capacity int    `json:"capacity"`
	Version  uint64 `json:"version"`
	Evicted  uint64 `json:"evicted"`
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithEvictionHook registers fn to be called with the number of records
// evicted by each write that evicts at least one record. fn runs after the
// write lock is released.
func WithEvictionHook(fn func(n int)) StoreOption {
	return func(s *Store) {
		s.onEvict = fn
	}
}

// WithClock overrides the time source used for snapshot timestamps.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) {
		s.now = now
	}
}

// Store is a bounded FIFO window of records.
//
// Every write installs a fresh backing slice, so a slice handed out by
// Snapshot is never mutated afterwards.
type Store struct {
	mu       sync.RWMutex
	records  []Record
	capacity int
	version  uint64
	evicted  uint64

	onEvict func(n int)
	now     func() time.Time
}

// NewStore creates a store holding at most capacity records.
func NewStore(capacity int, opts ...StoreOption) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	s := &Store{
		records:  []Record{},
		capacity: capacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Replace discards the current contents and installs recs. When recs is
// longer than the capacity only the most recent (last) records are kept and
// the rest count as evicted.
func (s *Store) Replace(recs []Record) (evicted int) {
	start := 0
	if len(recs) > s.capacity {
		start = len(recs) - s.capacity
	}
	next := cloneAll(recs[start:])

	s.mu.Lock()
	s.records = next
	s.version++
	s.evicted += uint64(start)
	s.mu.Unlock()

	s.notifyEvicted(start)
	return start
}

// Append adds recs after the existing records in order, evicting the oldest
// records until the window fits. The whole batch becomes visible at once.
func (s *Store) Append(recs ...Record) (evicted int) {
	if len(recs) == 0 {
		return 0
	}
	added := cloneAll(recs)

	s.mu.Lock()
	total := len(s.records) + len(added)
	drop := 0
	if total > s.capacity {
		drop = total - s.capacity
	}

	next := make([]Record, 0, min(total, s.capacity))
	if drop < len(s.records) {
		next = append(next, s.records[drop:]...)
		next = append(next, added...)
	} else {
		next = append(next, added[drop-len(s.records):]...)
	}
	s.records = next
	s.version++
	s.evicted += uint64(drop)
	s.mu.Unlock()

	s.notifyEvicted(drop)
	return drop
}

// Clear empties the window. Cleared records are not counted as evicted.
func (s *Store) Clear() {
	s.mu.Lock()
	s.records = []Record{}
	s.version++
	s.mu.Unlock()
}

// Snapshot returns the current contents in insertion order (oldest first).
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Records: s.records,
		Version: s.version,
		TakenAt: s.now(),
	}
}

// Tail returns at most n of the most recent records, oldest first.
func (s *Store) Tail(n int) []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if n <= 0 || n >= len(s.records) {
		return s.records
	}
	return s.records[len(s.records)-n:]
}

// Len returns the number of records currently held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Capacity returns the maximum number of records held.
func (s *Store) Capacity() int { return s.capacity }

// Version increases by one on every write.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

// Evicted returns the cumulative number of records evicted for capacity.
func (s *Store) Evicted() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.evicted
}

// Stats returns size, capacity, version and eviction count together.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Stats{
		Size:     len(s.records),
		Capacity: s.capacity,
		Version:  s.version,
		Evicted:  s.evicted,
	}
}

func (s *Store) notifyEvicted(n int) {
	if n > 0 && s.onEvict != nil {
		s.onEvict(n)
	}
}

func cloneAll(recs []Record) []Record {
	out := make([]Record, len(recs))
	for i, r := range recs {
		out[i] = r.Clone()
	}
	return out
}
