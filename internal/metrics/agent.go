// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	dto "github.com/prometheus/client_model/go"
)

// Event sources.
const (
	SourceSampler = "sampler"
	SourceTracks  = "tracks"
	SourceError   = "error"
)

var (
	eventsAppended = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_events_appended_total",
		Help: "Event records appended to the buffer by producer",
	}, []string{"source"}) // source=sampler|tracks|error

	bufferDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "analytics_buffer_depth",
		Help: "Records currently pending in the event buffer",
	})

	taskRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_task_runs_total",
		Help: "Periodic task firings by task and outcome",
	}, []string{"task", "result"}) // result=ok|panic|skipped

	geocodeTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "analytics_geocode_total",
		Help: "Reverse geocode lookups by outcome",
	}, []string{"result"}) // result=hit|miss|failure|denied|no_fix
)

// RecordEventsAppended counts n records appended by source.
func RecordEventsAppended(source string, n int) {
	if n <= 0 {
		return
	}
	eventsAppended.WithLabelValues(source).Add(float64(n))
}

// SetBufferDepth records the pending record count.
func SetBufferDepth(n int) {
	bufferDepth.Set(float64(n))
}

// GetBufferDepth returns the current value of the buffer depth gauge (for testing).
func GetBufferDepth() float64 {
	var m dto.Metric
	if err := bufferDepth.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}

// RecordTaskRun counts one firing of a periodic task.
func RecordTaskRun(task, result string) {
	taskRuns.WithLabelValues(task, result).Inc()
}

// RecordGeocode counts one reverse geocode outcome.
func RecordGeocode(result string) {
	geocodeTotal.WithLabelValues(result).Inc()
}
