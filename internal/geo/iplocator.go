// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package geo

import (
	"context"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/mahfuzsust/AnalyticsSDK/internal/device"
	"github.com/oschwald/geoip2-golang"
)

type cityReader interface {
	City(ip net.IP) (*geoip2.City, error)
}

// IPLocator derives a location fix from the host's public IP using an MMDB
// city database. It serves as both the device LocationSource and the
// Geocoder for the fixes it issued, so a session without OS location
// services still reports coarse city and country.
type IPLocator struct {
	db     cityReader
	closer func() error
	ip     net.IP

	mu    sync.Mutex
	fix   *device.Location
	place Place
}

// OpenIPLocator opens the MMDB database at path and locates ip. Surrounding
// whitespace in ip is ignored.
func OpenIPLocator(path, ip string) (*IPLocator, error) {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	if parsed == nil {
		return nil, fmt.Errorf("geoip: invalid address %q", ip)
	}
	db, err := geoip2.Open(path)
	if err != nil {
		return nil, fmt.Errorf("geoip: open %s: %w", path, err)
	}
	return &IPLocator{db: db, closer: db.Close, ip: parsed}, nil
}

func newIPLocator(db cityReader, ip net.IP) *IPLocator {
	return &IPLocator{db: db, ip: ip}
}

// LastLocation implements device.LocationSource. The lookup runs once and
// the result is reused for the rest of the session.
func (l *IPLocator) LastLocation(ctx context.Context) (device.Location, error) {
	if err := ctx.Err(); err != nil {
		return device.Location{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fix != nil {
		return *l.fix, nil
	}

	if isPrivateIP(l.ip) {
		return device.Location{}, device.ErrNoLocation
	}
	record, err := l.db.City(l.ip)
	if err != nil {
		return device.Location{}, fmt.Errorf("geoip lookup: %w", err)
	}
	if record.Location.Latitude == 0 && record.Location.Longitude == 0 {
		return device.Location{}, device.ErrNoLocation
	}

	l.fix = &device.Location{
		Latitude:  record.Location.Latitude,
		Longitude: record.Location.Longitude,
	}
	l.place = Place{
		City:    record.City.Names["en"],
		Country: record.Country.Names["en"],
	}
	return *l.fix, nil
}

// ReverseGeocode implements Geocoder for the fix returned by LastLocation.
// Any other coordinates yield ErrNoPlace.
func (l *IPLocator) ReverseGeocode(ctx context.Context, lat, lon float64) (Place, error) {
	if err := ctx.Err(); err != nil {
		return Place{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fix == nil || l.fix.Latitude != lat || l.fix.Longitude != lon {
		return Place{}, ErrNoPlace
	}
	if l.place.City == "" && l.place.Country == "" {
		return Place{}, ErrNoPlace
	}
	return l.place, nil
}

// Close releases the database.
func (l *IPLocator) Close() error {
	if l.closer == nil {
		return nil
	}
	return l.closer()
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsPrivate()
}

var (
	_ Geocoder              = (*IPLocator)(nil)
	_ device.LocationSource = (*IPLocator)(nil)
)
