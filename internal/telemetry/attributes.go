// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys used on agent spans.
const (
	BatchIDKey      = "batch.id"
	BatchSizeKey    = "batch.size"
	BatchBytesKey   = "batch.bytes"
	BatchTriggerKey = "batch.trigger"
	TransportKey    = "transport.kind"
	AttemptsKey     = "publish.attempts"

	SessionUserKey  = "session.user_id"
	SessionVideoKey = "session.video_id"

	ErrorTypeKey = "error.type"
)

// BatchAttributes describes one flushed batch.
func BatchAttributes(id, trigger string, size, bytes int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(BatchIDKey, id),
		attribute.String(BatchTriggerKey, trigger),
		attribute.Int(BatchSizeKey, size),
		attribute.Int(BatchBytesKey, bytes),
	}
}

// SessionAttributes describes the playback session. Empty values are omitted.
func SessionAttributes(userID, videoID string) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, 2)
	if userID != "" {
		attrs = append(attrs, attribute.String(SessionUserKey, userID))
	}
	if videoID != "" {
		attrs = append(attrs, attribute.String(SessionVideoKey, videoID))
	}
	return attrs
}

// ErrorAttributes classifies a failure.
func ErrorAttributes(errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.String(ErrorTypeKey, errorType)}
}
