// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package agent

import (
	"github.com/mahfuzsust/AnalyticsSDK/internal/event"
	xglog "github.com/mahfuzsust/AnalyticsSDK/internal/log"
	"github.com/mahfuzsust/AnalyticsSDK/internal/metrics"
	"github.com/mahfuzsust/AnalyticsSDK/internal/player"
	"github.com/mahfuzsust/AnalyticsSDK/internal/publisher"
)

var _ player.Listener = (*Agent)(nil)

// OnIsPlayingChanged implements player.Listener. Playback stopping is
// treated as a pause.
func (a *Agent) OnIsPlayingChanged(playing bool) {
	ctx, ok := a.enter()
	if !ok {
		return
	}
	defer a.mu.RUnlock()

	if !playing {
		a.flushAsync(ctx, publisher.TriggerPause)
	}
}

// OnPlaybackStateChanged implements player.Listener. Reaching the end of
// the media triggers a publish.
func (a *Agent) OnPlaybackStateChanged(state player.PlaybackState) {
	ctx, ok := a.enter()
	if !ok {
		return
	}
	defer a.mu.RUnlock()

	if state == player.StateEnded {
		a.flushAsync(ctx, publisher.TriggerVideoEnd)
	}
}

// OnTracksChanged implements player.Listener. It appends one record per
// track across all groups, annotated with that track's media fields.
func (a *Agent) OnTracksChanged(tracks player.Tracks) {
	ctx, ok := a.enter()
	if !ok {
		return
	}
	defer a.mu.RUnlock()

	recs := make([]event.Record, 0, tracks.Count())
	for _, g := range tracks.Groups {
		for i := range g.Len() {
			recs = append(recs, a.builder.BuildTrack(ctx, g.Format(i)))
		}
	}
	a.buf.Append(recs...)
	metrics.RecordEventsAppended(metrics.SourceTracks, len(recs))

	a.logger.Debug().
		Str("event", "player.tracks_changed").
		Int(xglog.FieldTracks, len(recs)).
		Msg("track records appended")
}

// OnVideoSizeChanged implements player.Listener. The size is used by later
// records; nothing is appended.
func (a *Agent) OnVideoSizeChanged(size player.VideoSize) {
	if _, ok := a.enter(); !ok {
		return
	}
	defer a.mu.RUnlock()

	a.builder.SetVideoSize(size.Width, size.Height)
	a.logger.Debug().
		Str("event", "player.video_size_changed").
		Int("width", size.Width).
		Int("height", size.Height).
		Str(xglog.FieldResolution, event.ResolutionLabel(size.Height)).
		Msg("video size changed")
}

// OnPlayerError implements player.Listener. It appends one snapshot
// carrying the error code and message.
func (a *Agent) OnPlayerError(perr player.PlaybackError) {
	ctx, ok := a.enter()
	if !ok {
		return
	}
	defer a.mu.RUnlock()

	a.buf.Append(a.builder.BuildError(ctx, perr))
	metrics.RecordEventsAppended(metrics.SourceError, 1)

	a.logger.Warn().
		Str("event", "player.error").
		Int(xglog.FieldErrorCode, perr.Code).
		Str("error_message", perr.Message).
		Msg("player error recorded")
}
