// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	collectorRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_collector_requests_total",
		Help: "HTTP requests served by the reference collector by route and status",
	}, []string{"route", "status"})

	collectorRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "analytics_collector_request_duration_seconds",
		Help:    "Collector request latencies in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})

	collectorInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "analytics_collector_requests_in_flight",
		Help: "Collector requests currently being served",
	})
)

// RecordCollectorRequest records one served collector request.
func RecordCollectorRequest(route string, status int, took time.Duration) {
	collectorRequests.WithLabelValues(route, strconv.Itoa(status)).Inc()
	collectorRequestDuration.WithLabelValues(route).Observe(took.Seconds())
}

// CollectorRequestStarted tracks an in-flight request; call the returned func when done.
func CollectorRequestStarted() func() {
	collectorInFlight.Inc()
	return collectorInFlight.Dec
}
