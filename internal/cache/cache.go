// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package cache provides byte-valued caches with TTL support, backed by
// process memory or a shared Redis instance.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
)

// Cache stores opaque values under string keys with an expiry.
type Cache interface {
	// Get returns the value for key. The bool is false when the key is
	// missing, expired or the backend failed.
	Get(ctx context.Context, key string) ([]byte, bool)
	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration)
	// Delete removes key.
	Delete(ctx context.Context, key string)
	// Stats returns hit/miss counters.
	Stats() Stats
}

// Stats holds cache counters.
type Stats struct {
	Hits        int64
	Misses      int64
	Sets        int64
	Evictions   int64
	CurrentSize int
}

type counters struct {
	hits      atomic.Int64
	misses    atomic.Int64
	sets      atomic.Int64
	evictions atomic.Int64
}

func (c *counters) snapshot(size int) Stats {
	return Stats{
		Hits:        c.hits.Load(),
		Misses:      c.misses.Load(),
		Sets:        c.sets.Load(),
		Evictions:   c.evictions.Load(),
		CurrentSize: size,
	}
}

type entry struct {
	value      []byte
	expiration time.Time
}

// Memory is an in-process Cache. Expired entries are invisible to Get and
// removed lazily on the next Set that finds them, or by Sweep.
type Memory struct {
	clock   clockwork.Clock
	mu      sync.RWMutex
	entries map[string]entry
	stats   counters
}

// NewMemory returns an empty in-memory cache. A nil clock uses the wall clock.
func NewMemory(clock clockwork.Clock) *Memory {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Memory{clock: clock, entries: make(map[string]entry)}
}

// Get implements Cache.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok || !m.clock.Now().Before(e.expiration) {
		m.stats.misses.Add(1)
		return nil, false
	}
	m.stats.hits.Add(1)
	return e.value, true
}

// Set implements Cache. A non-positive ttl stores nothing.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	cp := append([]byte(nil), value...)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = entry{value: cp, expiration: m.clock.Now().Add(ttl)}
	m.stats.sets.Add(1)
}

// Delete implements Cache.
func (m *Memory) Delete(_ context.Context, key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
}

// Sweep removes expired entries and returns how many were dropped.
func (m *Memory) Sweep() int {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for k, e := range m.entries {
		if !now.Before(e.expiration) {
			delete(m.entries, k)
			n++
		}
	}
	m.stats.evictions.Add(int64(n))
	return n
}

// Stats implements Cache.
func (m *Memory) Stats() Stats {
	m.mu.RLock()
	size := len(m.entries)
	m.mu.RUnlock()
	return m.stats.snapshot(size)
}

// Noop caches nothing.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool)         { return nil, false }
func (Noop) Set(context.Context, string, []byte, time.Duration) {}
func (Noop) Delete(context.Context, string)                     {}
func (Noop) Stats() Stats                                       { return Stats{} }

var (
	_ Cache = (*Memory)(nil)
	_ Cache = Noop{}
)
