// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package player

import (
	"sync"
	"time"
)

// Simulator is an in-memory Source driven by explicit calls. It backs the
// headless agent binary and tests. Notifications are delivered synchronously
// on the caller's goroutine, outside the simulator lock.
type Simulator struct {
	mu        sync.Mutex
	state     State
	listeners []Listener
}

// NewSimulator returns a paused simulator at position zero, volume 1.
func NewSimulator() *Simulator {
	return &Simulator{state: State{Speed: 1, Volume: 1}}
}

// State implements StateProvider.
func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// AddListener implements Source.
func (s *Simulator) AddListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// RemoveListener implements Source.
func (s *Simulator) RemoveListener(l Listener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.listeners[:0]
	for _, cur := range s.listeners {
		if cur != l {
			out = append(out, cur)
		}
	}
	s.listeners = out
}

func (s *Simulator) snapshotListeners() []Listener {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Listener(nil), s.listeners...)
}

// SetPlaying toggles playback and notifies listeners when the value changes.
func (s *Simulator) SetPlaying(playing bool) {
	s.mu.Lock()
	changed := s.state.Playing != playing
	s.state.Playing = playing
	if playing {
		s.state.Buffering = false
	}
	s.mu.Unlock()

	if !changed {
		return
	}
	for _, l := range s.snapshotListeners() {
		l.OnIsPlayingChanged(playing)
	}
}

// SetBuffering marks the player as loading.
func (s *Simulator) SetBuffering(buffering bool) {
	s.mu.Lock()
	s.state.Buffering = buffering
	s.mu.Unlock()

	state := StateReady
	if buffering {
		state = StateBuffering
	}
	for _, l := range s.snapshotListeners() {
		l.OnPlaybackStateChanged(state)
	}
}

// Advance moves the playback position forward by d scaled by the playback
// speed, if playing, and raises the buffered percentage towards 100.
func (s *Simulator) Advance(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.Playing {
		return
	}
	s.state.Position += time.Duration(float64(d) * float64(s.state.Speed))
	if s.state.BufferedPercentage < 100 {
		s.state.BufferedPercentage += 5
		if s.state.BufferedPercentage > 100 {
			s.state.BufferedPercentage = 100
		}
	}
}

// SetVolume sets the output volume and mute flag.
func (s *Simulator) SetVolume(volume float32, muted bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Volume = volume
	s.state.Muted = muted
}

// SetSpeed sets the playback speed.
func (s *Simulator) SetSpeed(speed float32) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.Speed = speed
}

// SetPlayingAd marks whether an ad is currently playing.
func (s *Simulator) SetPlayingAd(ad bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state.PlayingAd = ad
}

// ChangeTracks reports a new track set.
func (s *Simulator) ChangeTracks(tracks Tracks) {
	for _, l := range s.snapshotListeners() {
		l.OnTracksChanged(tracks)
	}
}

// ResizeVideo reports a new decoded video size.
func (s *Simulator) ResizeVideo(size VideoSize) {
	for _, l := range s.snapshotListeners() {
		l.OnVideoSizeChanged(size)
	}
}

// Fail reports a playback error and stops playback.
func (s *Simulator) Fail(err PlaybackError) {
	for _, l := range s.snapshotListeners() {
		l.OnPlayerError(err)
	}
	s.SetPlaying(false)
}

// End stops playback and reports the terminal state.
func (s *Simulator) End() {
	s.SetPlaying(false)
	for _, l := range s.snapshotListeners() {
		l.OnPlaybackStateChanged(StateEnded)
	}
}

var _ Source = (*Simulator)(nil)
