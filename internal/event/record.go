// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package event defines the normalized record emitted for every playback
// observation and its JSON wire representation.
package event

import (
	"time"

	"github.com/google/uuid"
)

// Identity is the session-scoped part of every record.
type Identity struct {
	UserID  string
	VideoID string
	Title   string
}

// Record is one observation of player, device, network and error state.
// Optional fields are pointers and serialize as null when unset.
//
// A Record is built by a single producer and handed to the buffer by value;
// it must not be modified after it has been appended.
type Record struct {
	UserID    string    `json:"userId"`
	VideoID   string    `json:"videoId"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
	ID        string    `json:"id"`

	// PlaybackPosition is the position within the media in milliseconds.
	PlaybackPosition   int64   `json:"playbackPosition"`
	PlaybackSpeed      float32 `json:"playbackSpeed"`
	IsPlaying          bool    `json:"isPlaying"`
	IsBuffering        bool    `json:"isBuffering"`
	IsFullscreen       bool    `json:"isFullscreen"`
	IsPlayingAd        bool    `json:"isPlayingAd"`
	BufferedPercentage int     `json:"bufferedPercentage"`
	Volume             float32 `json:"volume"`
	IsMuted            bool    `json:"isMuted"`

	VideoWidth  int     `json:"videoWidth"`
	VideoHeight int     `json:"videoHeight"`
	Resolution  string  `json:"resolution"`
	Bitrate     *int    `json:"bitrate"`
	Framerate   *int    `json:"framerate"`
	VideoCodec  *string `json:"videoCodec"`
	AudioCodec  *string `json:"audioCodec"`

	OSVersion      string  `json:"osVersion"`
	NetworkType    string  `json:"networkType"`
	NetworkSpeed   float64 `json:"networkSpeed"`
	ConnectionType string  `json:"connectionType"`

	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	City      *string  `json:"city"`
	Country   *string  `json:"country"`

	ErrorCode    *int    `json:"errorCode"`
	ErrorMessage *string `json:"errorMessage"`
}

// New returns a record carrying the identity fields, a fresh event ID and the
// given creation time. All other fields are zero-valued.
func New(id Identity, at time.Time) Record {
	return Record{
		UserID:    id.UserID,
		VideoID:   id.VideoID,
		Title:     id.Title,
		Timestamp: at.UTC(),
		ID:        uuid.NewString(),
	}
}

// HasError reports whether the record was produced by a player error.
func (r Record) HasError() bool {
	return r.ErrorCode != nil
}

// HasLocation reports whether the record carries a location fix.
func (r Record) HasLocation() bool {
	return r.Latitude != nil && r.Longitude != nil
}

// Ptr returns a pointer to v. Used to fill optional record fields.
func Ptr[T any](v T) *T {
	return &v
}
