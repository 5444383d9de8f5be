// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Publish results.
const (
	ResultSuccess     = "success"
	ResultFailure     = "failure"
	ResultCircuitOpen = "circuit_open"
)

var (
	publishBatches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_publish_batches_total",
		Help: "Batches handed to the transport by trigger and outcome",
	}, []string{"trigger", "result"})

	publishRecords = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_publish_records_total",
		Help: "Records delivered or dropped by outcome",
	}, []string{"result"})

	publishDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "analytics_publish_duration_seconds",
		Help:    "Time spent sending one batch, retries included",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"trigger"})

	collectorReceived = promauto.NewCounter(prometheus.CounterOpts{
		Name: "analytics_collector_received_records_total",
		Help: "Records accepted by the reference collector",
	})
)

// RecordPublish records the outcome of one flush that carried records.
func RecordPublish(trigger, result string, records int, took time.Duration) {
	publishBatches.WithLabelValues(trigger, result).Inc()
	publishRecords.WithLabelValues(result).Add(float64(records))
	publishDuration.WithLabelValues(trigger).Observe(took.Seconds())
}

// RecordCollectorReceived counts records accepted by the collector.
func RecordCollectorReceived(n int) {
	collectorReceived.Add(float64(n))
}

// GetCollectorReceived returns the records accepted so far (for testing).
func GetCollectorReceived() float64 {
	var m dto.Metric
	if err := collectorReceived.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}
