// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package device models the host device context sampled alongside the
// player: OS version, network class and speed, fullscreen state and the
// last known location.
package device

import (
	"context"
	"errors"
)

var (
	// ErrNoLocation means no location fix is currently available.
	ErrNoLocation = errors.New("no location fix available")
	// ErrLocationDenied means the host refused access to location services.
	ErrLocationDenied = errors.New("location access not permitted")
)

// Network describes the active data connection.
type Network struct {
	Type       string  // radio generation label: "5G", "4G", "3G", "2G", "Unknown"
	SpeedMbps  float64 // downstream bandwidth estimate
	Connection string  // connection class: "WiFi", "Mobile", "Unknown"
}

// Location is a geographic fix.
type Location struct {
	Latitude  float64
	Longitude float64
}

// LocationSource returns the last known location. It returns ErrNoLocation
// when no fix exists and ErrLocationDenied when access is refused.
type LocationSource interface {
	LastLocation(ctx context.Context) (Location, error)
}

// ContextProvider exposes the device state read by every snapshot.
type ContextProvider interface {
	LocationSource
	OSVersion() string
	Network() Network
	Fullscreen() bool
}
