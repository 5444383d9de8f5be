// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldSessionID = "session_id"
	FieldUserID    = "user_id"
	FieldVideoID   = "video_id"
	FieldEventID   = "event_id"
	FieldBatchID   = "batch_id"

	// Process fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldTask      = "task"
	FieldTrigger   = "trigger"

	// Batch / delivery fields
	FieldBatchSize  = "batch_size"
	FieldBytes      = "bytes"
	FieldTransport  = "transport"
	FieldStatusCode = "status_code"
	FieldAttempts   = "attempts"
	FieldEndpoint   = "endpoint"

	// Media fields
	FieldResolution = "resolution"
	FieldCodec      = "codec"
	FieldTracks     = "tracks"
	FieldErrorCode  = "error_code"

	// State fields
	FieldOldState = "old_state"
	FieldNewState = "new_state"
)
