// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package player

import "strings"

// Format describes one selectable track.
type Format struct {
	SampleMimeType string
	Codecs         string
	Bitrate        int
	FrameRate      float32
	Width          int
	Height         int
}

// IsVideo reports whether the track carries video.
func (f Format) IsVideo() bool { return IsVideo(f.SampleMimeType) }

// IsAudio reports whether the track carries audio.
func (f Format) IsAudio() bool { return IsAudio(f.SampleMimeType) }

// TrackGroup is a set of tracks carrying the same content in different formats.
type TrackGroup struct {
	Formats []Format
}

// Len returns the number of tracks in the group.
func (g TrackGroup) Len() int { return len(g.Formats) }

// Format returns the format of the i-th track.
func (g TrackGroup) Format(i int) Format { return g.Formats[i] }

// Tracks is the full track set reported on a track change.
type Tracks struct {
	Groups []TrackGroup
}

// Count returns the total number of tracks across all groups.
func (t Tracks) Count() int {
	n := 0
	for _, g := range t.Groups {
		n += g.Len()
	}
	return n
}

// IsVideo reports whether the MIME type is a video type.
func IsVideo(mime string) bool {
	return topLevelType(mime) == "video"
}

// IsAudio reports whether the MIME type is an audio type.
func IsAudio(mime string) bool {
	return topLevelType(mime) == "audio"
}

func topLevelType(mime string) string {
	mime = strings.TrimSpace(strings.ToLower(mime))
	if i := strings.IndexByte(mime, '/'); i > 0 {
		return mime[:i]
	}
	return ""
}
