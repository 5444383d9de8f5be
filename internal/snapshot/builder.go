// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package snapshot assembles event records from the player, device and
// location collaborators.
package snapshot

import (
	"context"
	"errors"
	"math"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mahfuzsust/AnalyticsSDK/internal/device"
	"github.com/mahfuzsust/AnalyticsSDK/internal/event"
	"github.com/mahfuzsust/AnalyticsSDK/internal/geo"
	xglog "github.com/mahfuzsust/AnalyticsSDK/internal/log"
	"github.com/mahfuzsust/AnalyticsSDK/internal/metrics"
	"github.com/mahfuzsust/AnalyticsSDK/internal/player"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// DefaultGeocodeTimeout bounds location and reverse geocode lookups.
const DefaultGeocodeTimeout = 2 * time.Second

// Options configures a Builder. Player and Device are required.
type Options struct {
	Identity       event.Identity
	Player         player.StateProvider
	Device         device.ContextProvider
	Geocoder       geo.Geocoder // optional; nil leaves city and country null
	Clock          clockwork.Clock
	GeocodeTimeout time.Duration

	// FramerateFromBitrate copies a video track's bitrate into the
	// framerate field, matching the records emitted by the mobile SDK.
	FramerateFromBitrate bool

	Logger *zerolog.Logger
}

// Builder produces records for one playback session. It is safe for
// concurrent use by the sampler and player callbacks.
type Builder struct {
	identity             event.Identity
	player               player.StateProvider
	device               device.ContextProvider
	geocoder             geo.Geocoder
	clock                clockwork.Clock
	geocodeTimeout       time.Duration
	framerateFromBitrate bool
	logger               zerolog.Logger
	logLimit             *rate.Limiter

	mu     sync.RWMutex
	width  int
	height int
}

// NewBuilder returns a Builder for opts.
func NewBuilder(opts Options) *Builder {
	b := &Builder{
		identity:             opts.Identity,
		player:               opts.Player,
		device:               opts.Device,
		geocoder:             opts.Geocoder,
		clock:                opts.Clock,
		geocodeTimeout:       opts.GeocodeTimeout,
		framerateFromBitrate: opts.FramerateFromBitrate,
		logLimit:             rate.NewLimiter(rate.Every(time.Minute), 1),
	}
	if b.clock == nil {
		b.clock = clockwork.NewRealClock()
	}
	if b.geocodeTimeout <= 0 {
		b.geocodeTimeout = DefaultGeocodeTimeout
	}
	if opts.Logger != nil {
		b.logger = *opts.Logger
	} else {
		b.logger = xglog.WithComponent("snapshot")
	}
	return b
}

// SetVideoSize remembers the rendered video dimensions for later records.
func (b *Builder) SetVideoSize(width, height int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.width, b.height = width, height
}

// VideoSize returns the remembered video dimensions.
func (b *Builder) VideoSize() (width, height int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.width, b.height
}

// Build returns a record describing the current state. Location failures
// never fail the build; the affected fields stay null.
func (b *Builder) Build(ctx context.Context) event.Record {
	st := b.player.State()
	r := event.New(b.identity, b.clock.Now())

	r.PlaybackPosition = st.Position.Milliseconds()
	r.PlaybackSpeed = st.Speed
	r.IsPlaying = st.Playing
	r.IsBuffering = st.Buffering
	r.IsPlayingAd = st.PlayingAd
	r.BufferedPercentage = st.BufferedPercentage
	r.Volume = st.Volume
	r.IsMuted = st.Muted

	r.OSVersion = b.device.OSVersion()
	net := b.device.Network()
	r.NetworkType = net.Type
	r.NetworkSpeed = net.SpeedMbps
	r.ConnectionType = net.Connection
	r.IsFullscreen = b.device.Fullscreen()

	w, h := b.VideoSize()
	r.VideoWidth = w
	r.VideoHeight = h
	r.Resolution = event.ResolutionLabel(h)

	b.locate(ctx, &r)
	return r
}

// BuildError returns a snapshot annotated with the player error.
func (b *Builder) BuildError(ctx context.Context, perr player.PlaybackError) event.Record {
	r := b.Build(ctx)
	r.ErrorCode = event.Ptr(perr.Code)
	r.ErrorMessage = event.Ptr(perr.Message)
	return r
}

// BuildTrack returns a snapshot annotated with the media fields of one
// track. Tracks that are neither video nor audio carry no media fields.
func (b *Builder) BuildTrack(ctx context.Context, f player.Format) event.Record {
	r := b.Build(ctx)
	switch {
	case f.IsVideo():
		r.Bitrate = event.Ptr(f.Bitrate)
		if b.framerateFromBitrate {
			r.Framerate = event.Ptr(f.Bitrate)
		} else {
			r.Framerate = event.Ptr(int(math.Round(float64(f.FrameRate))))
		}
		r.VideoCodec = event.Ptr(f.Codecs)
	case f.IsAudio():
		r.AudioCodec = event.Ptr(f.Codecs)
	}
	return r
}

func (b *Builder) locate(ctx context.Context, r *event.Record) {
	ctx, cancel := context.WithTimeout(ctx, b.geocodeTimeout)
	defer cancel()

	loc, err := b.device.LastLocation(ctx)
	switch {
	case errors.Is(err, device.ErrLocationDenied):
		metrics.RecordGeocode("denied")
		return
	case errors.Is(err, device.ErrNoLocation):
		metrics.RecordGeocode("no_fix")
		return
	case err != nil:
		b.throttledDebug(err, "location lookup failed")
		return
	}

	r.Latitude = event.Ptr(loc.Latitude)
	r.Longitude = event.Ptr(loc.Longitude)

	if b.geocoder == nil {
		return
	}
	place, err := b.geocoder.ReverseGeocode(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		metrics.RecordGeocode("failure")
		b.throttledDebug(err, "reverse geocode failed")
		return
	}
	if place.City != "" {
		r.City = event.Ptr(place.City)
	}
	if place.Country != "" {
		r.Country = event.Ptr(place.Country)
	}
}

func (b *Builder) throttledDebug(err error, msg string) {
	if !b.logLimit.Allow() {
		return
	}
	b.logger.Debug().Err(err).Str("event", "snapshot.location_unavailable").Msg(msg)
}
