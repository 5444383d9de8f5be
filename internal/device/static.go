// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package device

import (
	"context"
	"sync"
)

// Static is a ContextProvider whose values are set explicitly. Hosts without
// live OS hooks (the headless agent, tests) use it directly; the location
// can be delegated to another LocationSource.
type Static struct {
	mu        sync.RWMutex
	osVersion string
	network   Network
	view      Bounds
	screen    Bounds
	location  *Location
	locErr    error
	locSource LocationSource
}

// NewStatic returns a provider reporting the given OS version and network.
func NewStatic(osVersion string, network Network) *Static {
	return &Static{osVersion: osVersion, network: network}
}

// OSVersion implements ContextProvider.
func (s *Static) OSVersion() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.osVersion
}

// Network implements ContextProvider.
func (s *Static) Network() Network {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.network
}

// Fullscreen implements ContextProvider.
func (s *Static) Fullscreen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return IsFullscreen(s.view, s.screen)
}

// LastLocation implements LocationSource.
func (s *Static) LastLocation(ctx context.Context) (Location, error) {
	s.mu.RLock()
	loc, locErr, src := s.location, s.locErr, s.locSource
	s.mu.RUnlock()

	switch {
	case locErr != nil:
		return Location{}, locErr
	case loc != nil:
		return *loc, nil
	case src != nil:
		return src.LastLocation(ctx)
	default:
		return Location{}, ErrNoLocation
	}
}

// SetNetwork replaces the reported network.
func (s *Static) SetNetwork(n Network) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.network = n
}

// SetBounds sets the player view and screen bounds used for fullscreen detection.
func (s *Static) SetBounds(view, screen Bounds) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view = view
	s.screen = screen
}

// SetLocation sets a fixed location fix. A nil location clears it.
func (s *Static) SetLocation(loc *Location) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.location = loc
	s.locErr = nil
}

// SetLocationError makes LastLocation fail with err until cleared with nil.
func (s *Static) SetLocationError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locErr = err
}

// SetLocationSource delegates LastLocation to src when no fixed location is set.
func (s *Static) SetLocationSource(src LocationSource) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locSource = src
}

var _ ContextProvider = (*Static)(nil)
