// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package buffer holds event records between sampling and publishing.
package buffer

import (
	"sync"

	"github.com/mahfuzsust/AnalyticsSDK/internal/event"
	"github.com/mahfuzsust/AnalyticsSDK/internal/metrics"
)

// Buffer is an ordered, in-memory record queue shared by all producers and
// the publisher. Append and Drain exclude each other, so every record is
// returned by exactly one Drain.
type Buffer struct {
	mu      sync.Mutex
	records []event.Record
}

// New returns an empty buffer.
func New() *Buffer {
	return &Buffer{}
}

// Append adds records in order. The buffer takes ownership of the values.
func (b *Buffer) Append(records ...event.Record) {
	if len(records) == 0 {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.records = append(b.records, records...)
	// Set under mu so the gauge follows the order of Append and Drain.
	metrics.SetBufferDepth(len(b.records))
}

// Drain removes and returns every pending record in append order. It
// returns nil when the buffer is empty.
func (b *Buffer) Drain() []event.Record {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.records
	b.records = nil
	metrics.SetBufferDepth(0)
	return out
}

// Len returns the number of pending records.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.records)
}
