// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/mahfuzsust/AnalyticsSDK/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPromhttpExposure(t *testing.T) {
	metrics.RecordEventsAppended(metrics.SourceSampler, 3)
	metrics.SetBufferDepth(3)
	metrics.RecordPublish("periodic", metrics.ResultSuccess, 3, 20*time.Millisecond)
	metrics.RecordTaskRun("sampler", "ok")
	metrics.RecordGeocode("hit")
	metrics.SetCircuitBreakerState("publisher", "closed")
	metrics.RecordCollectorReceived(3)

	srv := httptest.NewServer(promhttp.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetters(t *testing.T) {
	metrics.SetBufferDepth(7)
	assert.Equal(t, float64(7), metrics.GetBufferDepth())
	metrics.SetBufferDepth(0)
	assert.Zero(t, metrics.GetBufferDepth())

	before := metrics.GetCollectorReceived()
	metrics.RecordCollectorReceived(4)
	assert.Equal(t, before+4, metrics.GetCollectorReceived())
}
