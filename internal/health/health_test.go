// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	xglog "github.com/mahfuzsust/AnalyticsSDK/internal/log"
	"github.com/mahfuzsust/AnalyticsSDK/internal/resilience"
)

func fixed(name string, s Status) Checker {
	return CheckerFunc(name, func(context.Context) CheckResult { return CheckResult{Status: s} })
}

func TestHealth_ChecksOnlyWhenVerbose(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	m := NewManager("v1", clock)
	m.RegisterChecker(fixed("db", StatusUnhealthy))

	resp := m.Health(context.Background(), false)
	assert.Equal(t, StatusHealthy, resp.Status)
	assert.Nil(t, resp.Checks)
	assert.Equal(t, "v1", resp.Version)
	assert.Equal(t, "2024-05-01T12:00:00Z", resp.Timestamp)

	resp = m.Health(context.Background(), true)
	assert.Equal(t, StatusUnhealthy, resp.Status)
	assert.Equal(t, StatusUnhealthy, resp.Checks["db"].Status)
}

func TestReady_Aggregation(t *testing.T) {
	tests := []struct {
		name      string
		statuses  []Status
		wantReady bool
		want      Status
	}{
		{"no checks", nil, true, StatusHealthy},
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, true, StatusHealthy},
		{"degraded stays ready", []Status{StatusHealthy, StatusDegraded}, true, StatusDegraded},
		{"unhealthy wins", []Status{StatusUnhealthy, StatusDegraded}, false, StatusUnhealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := NewManager("", nil)
			for i, s := range tt.statuses {
				m.RegisterChecker(fixed(string(rune('a'+i)), s))
			}
			resp := m.Ready(context.Background())
			assert.Equal(t, tt.wantReady, resp.Ready)
			assert.Equal(t, tt.want, resp.Status)
			assert.Len(t, resp.Checks, len(tt.statuses))
		})
	}
}

func TestServeReady_StatusCodes(t *testing.T) {
	m := NewManager("", nil)
	rec := httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	m.RegisterChecker(fixed("transport", StatusUnhealthy))
	rec = httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Ready)
	assert.Equal(t, StatusUnhealthy, body.Checks["transport"].Status)

	rec = httptest.NewRecorder()
	m.ServeHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz?verbose=true", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "liveness never fails")
	var hb HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &hb))
	assert.Equal(t, StatusUnhealthy, hb.Status)
}

func TestServeReady_LogsWhenNotReady(t *testing.T) {
	var buf bytes.Buffer
	xglog.Configure(xglog.Config{Level: "info", Output: &buf})
	t.Cleanup(func() { xglog.Configure(xglog.Config{Level: "info"}) })

	m := NewManager("", nil)
	m.RegisterChecker(fixed("geoip_db", StatusUnhealthy))
	rec := httptest.NewRecorder()
	m.ServeReady(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, buf.String(), `"event":"readiness.not_ready"`)
	assert.Contains(t, buf.String(), `"component":"health"`)
}

func TestFileChecker(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "GeoLite2-City.mmdb")
	require.NoError(t, os.WriteFile(full, []byte("data"), 0o600))
	empty := filepath.Join(dir, "empty.mmdb")
	require.NoError(t, os.WriteFile(empty, nil, 0o600))

	tests := []struct {
		path string
		want Status
	}{
		{"", StatusHealthy},
		{full, StatusHealthy},
		{empty, StatusDegraded},
		{dir, StatusUnhealthy},
		{filepath.Join(dir, "missing.mmdb"), StatusUnhealthy},
	}
	for _, tt := range tests {
		c := NewFileChecker("geoip_db", tt.path)
		assert.Equal(t, "geoip_db", c.Name())
		assert.Equal(t, tt.want, c.Check(context.Background()).Status, tt.path)
	}
}

func TestPublishChecker(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	var (
		last time.Time
		err  error
	)
	c := NewPublishChecker(func() (time.Time, error) { return last, err }, clock)
	assert.Equal(t, "last_publish", c.Name())

	res := c.Check(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)
	assert.Equal(t, "nothing published yet", res.Message)

	last = clock.Now()
	clock.Advance(30 * time.Second)
	res = c.Check(context.Background())
	assert.Equal(t, StatusHealthy, res.Status)
	assert.Equal(t, "last publish 30s ago", res.Message)

	err = errors.New("collector responded 503 Service Unavailable")
	res = c.Check(context.Background())
	assert.Equal(t, StatusDegraded, res.Status)
	assert.Equal(t, err.Error(), res.Error)
	assert.Contains(t, res.Message, "last success 30s ago")
}

func TestBreakerChecker(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cb := resilience.NewCircuitBreaker("health_test", 1, time.Minute, resilience.WithClock(clock))
	c := BreakerChecker("publish_breaker", cb)
	assert.Equal(t, StatusHealthy, c.Check(context.Background()).Status)

	_ = cb.Execute(context.Background(), func(context.Context) error { return errors.New("boom") })
	require.Equal(t, resilience.StateOpen, cb.State())
	assert.Equal(t, StatusDegraded, c.Check(context.Background()).Status)
}

func TestPingChecker(t *testing.T) {
	ok := PingChecker("redis", StatusDegraded, time.Second, func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	})
	assert.Equal(t, StatusHealthy, ok.Check(context.Background()).Status)

	bad := PingChecker("redis", StatusDegraded, 0, func(context.Context) error { return errors.New("dial tcp: refused") })
	res := bad.Check(context.Background())
	assert.Equal(t, StatusDegraded, res.Status)
	assert.Equal(t, "dial tcp: refused", res.Error)
}
