// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemory_SetGetExpire(t *testing.T) {
	ctx := context.Background()
	clock := clockwork.NewFakeClock()
	c := NewMemory(clock)

	c.Set(ctx, "k", []byte("v"), time.Minute)
	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, []byte("v"), got)

	clock.Advance(time.Minute)
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok, "entry must expire at its deadline")

	stats := c.Stats()
	assert.EqualValues(t, 1, stats.Hits)
	assert.EqualValues(t, 1, stats.Misses)
	assert.EqualValues(t, 1, stats.Sets)
	assert.Equal(t, 1, stats.CurrentSize)

	assert.Equal(t, 1, c.Sweep())
	assert.Equal(t, 0, c.Stats().CurrentSize)
	assert.EqualValues(t, 1, c.Stats().Evictions)
}

func TestMemory_SetCopiesValue(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(nil)

	buf := []byte("abc")
	c.Set(ctx, "k", buf, time.Minute)
	buf[0] = 'x'

	got, ok := c.Get(ctx, "k")
	require.True(t, ok)
	assert.Equal(t, "abc", string(got))
}

func TestMemory_NonPositiveTTLAndDelete(t *testing.T) {
	ctx := context.Background()
	c := NewMemory(nil)

	c.Set(ctx, "zero", []byte("v"), 0)
	_, ok := c.Get(ctx, "zero")
	assert.False(t, ok)

	c.Set(ctx, "k", []byte("v"), time.Hour)
	c.Delete(ctx, "k")
	_, ok = c.Get(ctx, "k")
	assert.False(t, ok)
}

func TestNoop(t *testing.T) {
	var c Cache = Noop{}
	c.Set(context.Background(), "k", []byte("v"), time.Hour)
	_, ok := c.Get(context.Background(), "k")
	assert.False(t, ok)
	assert.Equal(t, Stats{}, c.Stats())
}
