// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package geo resolves coordinates to a city and country.
package geo

import (
	"context"
	"errors"
)

// ErrNoPlace means the coordinates could not be resolved to a place.
var ErrNoPlace = errors.New("no place for coordinates")

// Place is the locality of a coordinate pair. Either field may be empty.
type Place struct {
	City    string `json:"city"`
	Country string `json:"country"`
}

// Geocoder performs reverse geocoding. Implementations must honour ctx
// cancellation; callers bound every lookup with a timeout.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (Place, error)
}

// GeocoderFunc adapts a function to Geocoder.
type GeocoderFunc func(ctx context.Context, lat, lon float64) (Place, error)

// ReverseGeocode implements Geocoder.
func (f GeocoderFunc) ReverseGeocode(ctx context.Context, lat, lon float64) (Place, error) {
	return f(ctx, lat, lon)
}
