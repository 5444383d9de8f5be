// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package main

import (
	"context"
	"time"

	"github.com/mahfuzsust/AnalyticsSDK/internal/player"
)

const playbackStep = 250 * time.Millisecond

// demoTracks is a typical adaptive stream: three video renditions, two audio
// tracks and a subtitle track.
func demoTracks() player.Tracks {
	return player.Tracks{Groups: []player.TrackGroup{
		{Formats: []player.Format{
			{SampleMimeType: "video/avc", Codecs: "avc1.640028", Bitrate: 4_800_000, FrameRate: 29.97, Width: 1920, Height: 1080},
			{SampleMimeType: "video/avc", Codecs: "avc1.64001f", Bitrate: 2_400_000, FrameRate: 29.97, Width: 1280, Height: 720},
			{SampleMimeType: "video/avc", Codecs: "avc1.4d401e", Bitrate: 1_000_000, FrameRate: 29.97, Width: 854, Height: 480},
		}},
		{Formats: []player.Format{
			{SampleMimeType: "audio/mp4a-latm", Codecs: "mp4a.40.2", Bitrate: 128_000},
			{SampleMimeType: "audio/ac3", Codecs: "ac-3", Bitrate: 384_000},
		}},
		{Formats: []player.Format{
			{SampleMimeType: "text/vtt"},
		}},
	}}
}

// playSession drives sim like a viewer would: load tracks, start playback,
// and advance the position until ctx ends or length elapses. Reaching length
// ends the video; cancellation pauses it.
func playSession(ctx context.Context, sim *player.Simulator, length time.Duration) {
	sim.SetBuffering(true)
	sim.ChangeTracks(demoTracks())
	sim.ResizeVideo(player.VideoSize{Width: 1920, Height: 1080})
	sim.SetPlaying(true)

	ticker := time.NewTicker(playbackStep)
	defer ticker.Stop()

	var deadline <-chan time.Time
	if length > 0 {
		timer := time.NewTimer(length)
		defer timer.Stop()
		deadline = timer.C
	}

	for {
		select {
		case <-ctx.Done():
			sim.SetPlaying(false)
			return
		case <-deadline:
			sim.End()
			return
		case <-ticker.C:
			sim.Advance(playbackStep)
		}
	}
}
