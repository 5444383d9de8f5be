// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package transport delivers encoded event batches to a collector.
package transport

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// Kinds of transport selectable by configuration.
const (
	KindHTTP  = "http"
	KindKafka = "kafka"
	KindFile  = "file"
)

// ErrStatus is matched by errors for a collector response other than 200.
var ErrStatus = errors.New("unexpected collector status")

// Batch is one drained set of records ready for delivery.
type Batch struct {
	ID      string // unique per flush, used as idempotency key by collectors
	Trigger string // what caused the flush: periodic, pause, video_end, close
	Records int
	Body    []byte // JSON array of records
}

// Transport delivers a batch. A nil error means the collector accepted it;
// any error means the batch was not delivered.
type Transport interface {
	Send(ctx context.Context, b Batch) error
}

// Func adapts a function to Transport.
type Func func(ctx context.Context, b Batch) error

// Send implements Transport.
func (f Func) Send(ctx context.Context, b Batch) error { return f(ctx, b) }

// StatusError reports a non-200 collector response.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("collector responded %d %s", e.Code, http.StatusText(e.Code))
}

// Is makes StatusError match ErrStatus.
func (e *StatusError) Is(target error) bool { return target == ErrStatus }

// Retryable reports whether sending the same batch again could succeed:
// network errors, 429 and 5xx responses. Context errors are final.
func Retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Code == http.StatusTooManyRequests || se.Code >= 500
	}
	var ne net.Error
	return errors.As(err, &ne)
}
