// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package device

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNetworkClass(t *testing.T) {
	assert.Equal(t, "5G", NetworkClass(RadioNR))
	assert.Equal(t, "4G", NetworkClass(RadioLTE))
	assert.Equal(t, "3G", NetworkClass(RadioHSPA))
	assert.Equal(t, "2G", NetworkClass(RadioGPRS))
	assert.Equal(t, "Unknown", NetworkClass(RadioUnknown))
	assert.Equal(t, "Unknown", NetworkClass(Radio(99)))
}

func TestConnectionClass(t *testing.T) {
	assert.Equal(t, ConnectionWiFi, ConnectionClass(TransportWiFi))
	assert.Equal(t, ConnectionWiFi, ConnectionClass(TransportCellular, TransportWiFi))
	assert.Equal(t, ConnectionMobile, ConnectionClass(TransportCellular))
	assert.Equal(t, ConnectionUnknown, ConnectionClass(TransportEthernet))
	assert.Equal(t, ConnectionUnknown, ConnectionClass())
}

func TestSpeedMbps(t *testing.T) {
	assert.InDelta(t, 12.5, SpeedMbps(12500), 1e-9)
	assert.Zero(t, SpeedMbps(0))
	assert.Zero(t, SpeedMbps(-10))
}

func TestIsFullscreen(t *testing.T) {
	screen := Bounds{Width: 1080, Height: 2400}
	assert.True(t, IsFullscreen(Bounds{1080, 2400}, screen))
	assert.False(t, IsFullscreen(Bounds{1080, 608}, screen))
	assert.False(t, IsFullscreen(Bounds{}, Bounds{}))
}

type fixedSource struct{ loc Location }

func (f fixedSource) LastLocation(context.Context) (Location, error) { return f.loc, nil }

func TestStatic_LocationPrecedence(t *testing.T) {
	ctx := context.Background()
	s := NewStatic("14", Network{Type: Network4G, SpeedMbps: 20, Connection: ConnectionMobile})

	_, err := s.LastLocation(ctx)
	require.ErrorIs(t, err, ErrNoLocation)

	s.SetLocationSource(fixedSource{loc: Location{Latitude: 1, Longitude: 2}})
	loc, err := s.LastLocation(ctx)
	require.NoError(t, err)
	assert.Equal(t, Location{1, 2}, loc)

	s.SetLocation(&Location{Latitude: 23.8, Longitude: 90.4})
	loc, err = s.LastLocation(ctx)
	require.NoError(t, err)
	assert.Equal(t, 23.8, loc.Latitude)

	s.SetLocationError(ErrLocationDenied)
	_, err = s.LastLocation(ctx)
	require.ErrorIs(t, err, ErrLocationDenied)

	assert.Equal(t, "14", s.OSVersion())
	assert.Equal(t, Network4G, s.Network().Type)
	s.SetBounds(Bounds{100, 100}, Bounds{100, 100})
	assert.True(t, s.Fullscreen())
}
