// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mahfuzsust/AnalyticsSDK/internal/cache"
	"github.com/mahfuzsust/AnalyticsSDK/internal/metrics"
)

// Cached memoizes successful lookups of an inner Geocoder. Coordinates are
// keyed at three decimal places (about 100 m). Failures are not cached.
type Cached struct {
	inner Geocoder
	store cache.Cache
	ttl   time.Duration
}

// NewCached wraps inner with store. A nil store disables caching.
func NewCached(inner Geocoder, store cache.Cache, ttl time.Duration) *Cached {
	if store == nil {
		store = cache.Noop{}
	}
	return &Cached{inner: inner, store: store, ttl: ttl}
}

// ReverseGeocode implements Geocoder.
func (c *Cached) ReverseGeocode(ctx context.Context, lat, lon float64) (Place, error) {
	key := cacheKey(lat, lon)
	if raw, ok := c.store.Get(ctx, key); ok {
		var p Place
		if err := json.Unmarshal(raw, &p); err == nil {
			metrics.RecordGeocode("hit")
			return p, nil
		}
		c.store.Delete(ctx, key)
	}
	metrics.RecordGeocode("miss")

	p, err := c.inner.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return Place{}, err
	}
	if raw, err := json.Marshal(p); err == nil {
		c.store.Set(ctx, key, raw, c.ttl)
	}
	return p, nil
}

func cacheKey(lat, lon float64) string {
	return fmt.Sprintf("revgeo:%.3f,%.3f", lat, lon)
}

var _ Geocoder = (*Cached)(nil)
