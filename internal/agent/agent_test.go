// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package agent

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/mahfuzsust/AnalyticsSDK/internal/device"
	"github.com/mahfuzsust/AnalyticsSDK/internal/event"
	"github.com/mahfuzsust/AnalyticsSDK/internal/player"
	"github.com/mahfuzsust/AnalyticsSDK/internal/transport"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// sink is a transport that records every batch.
type sink struct {
	mu      sync.Mutex
	batches [][]event.Record
	onSend  func()
}

func (s *sink) Send(_ context.Context, b transport.Batch) error {
	recs, err := event.DecodeBatch(b.Body)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.batches = append(s.batches, recs)
	hook := s.onSend
	s.mu.Unlock()
	if hook != nil {
		hook()
	}
	return nil
}

func (s *sink) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.batches)
}

func (s *sink) all() []event.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []event.Record
	for _, b := range s.batches {
		out = append(out, b...)
	}
	return out
}

func (s *sink) batch(i int) []event.Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.batches[i]
}

type harness struct {
	agent  *Agent
	clock  *clockwork.FakeClock
	player *player.Simulator
	sink   *sink
}

func newHarness(t *testing.T, src player.Source, sim *player.Simulator) *harness {
	t.Helper()
	if sim == nil {
		sim = player.NewSimulator()
	}
	if src == nil {
		src = sim
	}
	nop := zerolog.Nop()
	h := &harness{clock: clockwork.NewFakeClockAt(t0), player: sim, sink: &sink{}}

	dev := device.NewStatic("14", device.Network{Type: device.Network4G, SpeedMbps: 20, Connection: device.ConnectionWiFi})
	a, err := New(Options{
		Identity:             event.Identity{UserID: "user-1", VideoID: "video-1", Title: "Sintel"},
		Player:               src,
		Device:               dev,
		Transport:            h.sink,
		TransportKind:        "test",
		FramerateFromBitrate: true,
		Clock:                h.clock,
		Logger:               &nop,
	})
	require.NoError(t, err)
	h.agent = a
	return h
}

func (h *harness) start(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, h.agent.Start(ctx))
	// Both the sampler and the publisher tickers are armed.
	require.NoError(t, h.clock.BlockUntilContext(ctx, 2))
}

// tick advances one second and waits for the resulting sample.
func (h *harness) tick(t *testing.T) {
	t.Helper()
	want := h.agent.Pending() + 1
	h.clock.Advance(time.Second)
	require.Eventually(t, func() bool { return h.agent.Pending() == want }, time.Second, time.Millisecond)
}

func TestNew_RequiresCollaborators(t *testing.T) {
	_, err := New(Options{Device: device.NewStatic("", device.Network{}), Transport: &sink{}})
	assert.Error(t, err)
	_, err = New(Options{Player: player.NewSimulator(), Transport: &sink{}})
	assert.Error(t, err)
	_, err = New(Options{Player: player.NewSimulator(), Device: device.NewStatic("", device.Network{})})
	assert.Error(t, err)
}

// gatedSource blocks the n-th state read until release is closed.
type gatedSource struct {
	*player.Simulator
	n       int32
	reads   atomic.Int32
	release chan struct{}
}

func (g *gatedSource) State() player.State {
	if g.reads.Add(1) == g.n {
		<-g.release
	}
	return g.Simulator.State()
}

func TestAgent_EndToEndCadence(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	sim := player.NewSimulator()
	gate := &gatedSource{Simulator: sim, n: 10, release: make(chan struct{})}
	h := newHarness(t, gate, sim)
	var once sync.Once
	h.sink.onSend = func() { once.Do(func() { close(gate.release) }) }
	h.start(t)

	h.clock.Advance(100 * time.Millisecond)
	h.player.SetPlaying(true)
	h.clock.Advance(900 * time.Millisecond)
	require.Eventually(t, func() bool { return h.agent.Pending() == 1 }, time.Second, time.Millisecond)
	for range 8 {
		h.tick(t)
	}
	require.Equal(t, 9, h.agent.Pending())
	assert.Zero(t, h.sink.calls(), "nothing is published before t=10s")

	// t=10s: the publisher drains the nine samples taken at t=1..9s. The
	// sample taken at t=10s is held until the batch has been sent.
	h.clock.Advance(time.Second)
	require.Eventually(t, func() bool { return h.sink.calls() == 1 }, time.Second, time.Millisecond)

	first := h.sink.batch(0)
	require.Len(t, first, 9)
	for i, r := range first {
		assert.True(t, r.Timestamp.Equal(t0.Add(time.Duration(i+1)*time.Second)), "record %d at %s", i, r.Timestamp)
		assert.Equal(t, "user-1", r.UserID)
		assert.True(t, r.IsPlaying)
	}
	require.Eventually(t, func() bool { return h.agent.Pending() == 1 }, time.Second, time.Millisecond)

	h.clock.Advance(500 * time.Millisecond)
	require.NoError(t, h.agent.OnClose(context.Background()))
	require.Equal(t, 2, h.sink.calls())
	last := h.sink.batch(1)
	require.Len(t, last, 1)
	assert.True(t, last[0].Timestamp.Equal(t0.Add(10*time.Second)))

	// Both timers are stopped.
	h.clock.Advance(time.Minute)
	time.Sleep(20 * time.Millisecond)
	assert.Zero(t, h.agent.Pending())
	assert.Equal(t, 2, h.sink.calls())
}

func TestAgent_OnCloseWithEmptyBufferMakesNoCall(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	h := newHarness(t, nil, nil)
	h.start(t)
	for range 3 {
		h.tick(t)
	}
	require.NoError(t, h.agent.OnPause(context.Background()))
	require.Equal(t, 1, h.sink.calls())

	h.clock.Advance(500 * time.Millisecond)
	require.NoError(t, h.agent.OnClose(context.Background()))
	assert.Equal(t, 1, h.sink.calls())

	require.NoError(t, h.agent.OnClose(context.Background()), "second close is a no-op")
	assert.Equal(t, 1, h.sink.calls())
	assert.ErrorIs(t, h.agent.Start(context.Background()), ErrClosed)
}

func TestAgent_ErrorRecordBetweenSamples(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	h := newHarness(t, nil, nil)
	h.start(t)
	h.player.SetPlaying(true)
	for range 5 {
		h.tick(t)
	}

	h.clock.Advance(300 * time.Millisecond)
	h.agent.OnPlayerError(player.PlaybackError{Code: 2001, Message: "Source error"})
	require.Equal(t, 6, h.agent.Pending())

	// The next sample is due at t=6s, 700ms after the error.
	h.clock.Advance(700 * time.Millisecond)
	require.Eventually(t, func() bool { return h.agent.Pending() == 7 }, time.Second, time.Millisecond)

	require.NoError(t, h.agent.OnClose(context.Background()))
	recs := h.sink.all()
	require.Len(t, recs, 7)

	for i, r := range recs {
		if i == 5 {
			continue
		}
		assert.False(t, r.HasError(), "record %d", i)
	}
	errRec := recs[5]
	require.True(t, errRec.HasError())
	assert.Equal(t, 2001, *errRec.ErrorCode)
	assert.Equal(t, "Source error", *errRec.ErrorMessage)
	assert.True(t, errRec.Timestamp.Equal(t0.Add(5300*time.Millisecond)))
	assert.True(t, recs[4].Timestamp.Equal(t0.Add(5*time.Second)))
	assert.True(t, recs[6].Timestamp.Equal(t0.Add(6*time.Second)))
	assert.Equal(t, "user-1", errRec.UserID)
	assert.Equal(t, "4G", errRec.NetworkType)
	assert.True(t, errRec.IsPlaying)
}

func TestAgent_TrackFanOut(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	h := newHarness(t, nil, nil)
	h.start(t)

	tracks := player.Tracks{Groups: []player.TrackGroup{
		{Formats: []player.Format{
			{SampleMimeType: "video/avc", Codecs: "avc1.640028", Bitrate: 4_000_000, FrameRate: 30},
			{SampleMimeType: "video/avc", Codecs: "avc1.4d401f", Bitrate: 1_500_000, FrameRate: 30},
			{SampleMimeType: "video/hevc", Codecs: "hvc1.1.6.L93.B0", Bitrate: 800_000, FrameRate: 24},
		}},
		{Formats: []player.Format{
			{SampleMimeType: "audio/mp4a-latm", Codecs: "mp4a.40.2", Bitrate: 128_000},
			{SampleMimeType: "audio/opus", Codecs: "opus", Bitrate: 96_000},
		}},
		{Formats: []player.Format{{SampleMimeType: "text/vtt"}}},
	}}
	h.player.ChangeTracks(tracks)
	require.Equal(t, tracks.Count(), h.agent.Pending())

	require.NoError(t, h.agent.OnClose(context.Background()))
	recs := h.sink.all()
	require.Len(t, recs, 6)

	for i := range 3 {
		f := tracks.Groups[0].Formats[i]
		require.NotNil(t, recs[i].VideoCodec)
		assert.Equal(t, f.Codecs, *recs[i].VideoCodec)
		assert.Equal(t, f.Bitrate, *recs[i].Bitrate)
		assert.Equal(t, f.Bitrate, *recs[i].Framerate)
		assert.Nil(t, recs[i].AudioCodec)
	}
	for i := 3; i < 5; i++ {
		f := tracks.Groups[1].Formats[i-3]
		require.NotNil(t, recs[i].AudioCodec)
		assert.Equal(t, f.Codecs, *recs[i].AudioCodec)
		assert.Nil(t, recs[i].VideoCodec)
		assert.Nil(t, recs[i].Bitrate)
	}
	assert.Nil(t, recs[5].VideoCodec)
	assert.Nil(t, recs[5].AudioCodec)
}

func TestAgent_VideoSizeAppliesToLaterRecords(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	h := newHarness(t, nil, nil)
	h.start(t)
	h.tick(t)

	h.player.ResizeVideo(player.VideoSize{Width: 1920, Height: 1080})
	assert.Equal(t, 1, h.agent.Pending(), "size change appends nothing")
	h.tick(t)

	require.NoError(t, h.agent.OnClose(context.Background()))
	recs := h.sink.all()
	require.Len(t, recs, 2)
	assert.Equal(t, event.ResolutionUnknown, recs[0].Resolution)
	assert.Equal(t, 1920, recs[1].VideoWidth)
	assert.Equal(t, "1080p (Full HD)", recs[1].Resolution)
}

func TestAgent_PauseAndEndCallbacksFlush(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	h := newHarness(t, nil, nil)
	h.start(t)
	h.player.SetPlaying(true)
	h.tick(t)
	h.tick(t)

	h.player.SetPlaying(false)
	require.Eventually(t, func() bool { return h.sink.calls() == 1 }, time.Second, time.Millisecond)
	assert.Len(t, h.sink.batch(0), 2)

	h.player.SetPlaying(true)
	h.tick(t)
	h.player.End()
	require.Eventually(t, func() bool { return h.agent.Pending() == 0 }, time.Second, time.Millisecond)

	require.NoError(t, h.agent.OnClose(context.Background()))
	assert.Len(t, h.sink.all(), 3)
}

func TestAgent_CallbacksAfterCloseAreIgnored(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	h := newHarness(t, nil, nil)
	h.start(t)
	require.NoError(t, h.agent.OnClose(context.Background()))

	h.agent.OnPlayerError(player.PlaybackError{Code: 1, Message: "late"})
	h.agent.OnIsPlayingChanged(false)
	assert.Zero(t, h.agent.Pending())
	assert.Zero(t, h.sink.calls())
}

func TestAgent_StartTwice(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	h := newHarness(t, nil, nil)
	h.start(t)
	assert.ErrorIs(t, h.agent.Start(context.Background()), ErrStarted)
	require.NoError(t, h.agent.OnClose(context.Background()))
}
