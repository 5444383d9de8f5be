// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package player describes the capabilities the agent needs from the host
// media player: a consistent state snapshot and a set of notifications.
package player

import (
	"fmt"
	"time"
)

// State is the player state at one logical instant.
type State struct {
	Position           time.Duration
	Speed              float32
	Playing            bool
	Buffering          bool
	PlayingAd          bool
	Muted              bool
	BufferedPercentage int
	Volume             float32
}

// StateProvider returns the current player state. Implementations must read
// all fields under one lock (or from one player-thread hop) so the returned
// value never mixes two different player states.
type StateProvider interface {
	State() State
}

// PlaybackState is the coarse player state machine.
type PlaybackState int

const (
	StateIdle PlaybackState = iota + 1
	StateBuffering
	StateReady
	StateEnded
)

func (s PlaybackState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateBuffering:
		return "buffering"
	case StateReady:
		return "ready"
	case StateEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// VideoSize is the decoded video frame size.
type VideoSize struct {
	Width  int
	Height int
}

// PlaybackError is a player-reported playback failure.
type PlaybackError struct {
	Code    int
	Message string
}

func (e PlaybackError) Error() string {
	return fmt.Sprintf("playback error %d: %s", e.Code, e.Message)
}

// Listener receives player notifications. Callbacks may arrive on any
// goroutine and must not block for long.
type Listener interface {
	OnIsPlayingChanged(playing bool)
	OnPlaybackStateChanged(state PlaybackState)
	OnTracksChanged(tracks Tracks)
	OnVideoSizeChanged(size VideoSize)
	OnPlayerError(err PlaybackError)
}

// Source is a player that can be observed.
type Source interface {
	StateProvider
	AddListener(l Listener)
	RemoveListener(l Listener)
}
