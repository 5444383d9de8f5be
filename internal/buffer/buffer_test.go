// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package buffer

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/mahfuzsust/AnalyticsSDK/internal/event"
	"github.com/mahfuzsust/AnalyticsSDK/internal/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rec(id string) event.Record {
	r := event.New(event.Identity{UserID: "u", VideoID: "v", Title: "t"}, time.Unix(0, 0))
	r.ID = id
	return r
}

func TestBuffer_DrainOrderAndClear(t *testing.T) {
	b := New()
	assert.Nil(t, b.Drain())

	b.Append(rec("a"), rec("b"))
	b.Append(rec("c"))
	b.Append()
	assert.Equal(t, 3, b.Len())

	got := b.Drain()
	require.Len(t, got, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Zero(t, b.Len())
	assert.Nil(t, b.Drain())
}

func TestBuffer_DrainedSliceIsDetached(t *testing.T) {
	b := New()
	b.Append(rec("a"))
	first := b.Drain()

	b.Append(rec("b"))
	assert.Equal(t, "a", first[0].ID, "later appends must not alias a drained batch")
}

func TestBuffer_ConcurrentNoLossNoDuplicate(t *testing.T) {
	const producers, perProducer = 8, 500

	b := New()
	seen := make(map[string]int)
	var seenMu sync.Mutex
	collect := func(batch []event.Record) {
		seenMu.Lock()
		defer seenMu.Unlock()
		for _, r := range batch {
			seen[r.ID]++
		}
	}

	done := make(chan struct{})
	var drainer sync.WaitGroup
	drainer.Add(1)
	go func() {
		defer drainer.Done()
		for {
			select {
			case <-done:
				return
			default:
				collect(b.Drain())
			}
		}
	}()

	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				b.Append(rec(fmt.Sprintf("%d-%d", p, i)))
			}
		}()
	}
	wg.Wait()
	close(done)
	drainer.Wait()
	collect(b.Drain())

	require.Len(t, seen, producers*perProducer)
	for id, n := range seen {
		if n != 1 {
			t.Fatalf("record %s delivered %d times", id, n)
		}
	}
}

func TestBuffer_DepthGaugeMatchesLenAfterRaces(t *testing.T) {
	for range 20 {
		b := New()
		var wg sync.WaitGroup
		for p := range 4 {
			wg.Add(2)
			go func() {
				defer wg.Done()
				for i := range 50 {
					b.Append(rec(fmt.Sprintf("%d-%d", p, i)))
				}
			}()
			go func() {
				defer wg.Done()
				for range 50 {
					b.Drain()
				}
			}()
		}
		wg.Wait()
		require.Equal(t, float64(b.Len()), metrics.GetBufferDepth())
	}

	b := New()
	b.Append(rec("a"), rec("b"))
	assert.Equal(t, float64(2), metrics.GetBufferDepth())
	b.Drain()
	assert.Zero(t, metrics.GetBufferDepth())
}
