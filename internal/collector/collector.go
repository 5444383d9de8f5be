// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package collector is a reference ingestion endpoint for published batches.
// It accepts the JSON array wire format, optionally gzip-encoded, and answers
// 200 for every batch it can decode.
package collector

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jonboulle/clockwork"
	"github.com/klauspost/compress/gzip"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/mahfuzsust/AnalyticsSDK/internal/event"
	"github.com/mahfuzsust/AnalyticsSDK/internal/health"
	xglog "github.com/mahfuzsust/AnalyticsSDK/internal/log"
	"github.com/mahfuzsust/AnalyticsSDK/internal/metrics"
	"github.com/mahfuzsust/AnalyticsSDK/internal/transport"
)

// DefaultMaxBodyBytes bounds a decoded batch.
const DefaultMaxBodyBytes = 8 << 20

// Received is one accepted batch.
type Received struct {
	ID      string
	Trigger string
	Records []event.Record
	At      time.Time
}

// Stats summarises what the collector has accepted.
type Stats struct {
	Batches int
	Records int
}

// Options configures a Collector.
type Options struct {
	// RateLimit is requests per minute per client IP on /events; 0 disables it.
	RateLimit    int
	MaxBodyBytes int64
	// OnBatch is called synchronously for every accepted batch.
	OnBatch func(Received)
	// Health serves /healthz and /readyz; nil uses a manager with no checks.
	Health *health.Manager

	Clock  clockwork.Clock
	Logger *zerolog.Logger
}

// Collector serves the ingestion API.
type Collector struct {
	opts   Options
	clock  clockwork.Clock
	logger zerolog.Logger

	mu    sync.Mutex
	stats Stats
}

// New builds a Collector.
func New(opts Options) *Collector {
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	c := &Collector{opts: opts, clock: opts.Clock}
	if c.clock == nil {
		c.clock = clockwork.NewRealClock()
	}
	if c.opts.Health == nil {
		c.opts.Health = health.NewManager("", c.clock)
	}
	if opts.Logger != nil {
		c.logger = *opts.Logger
	} else {
		c.logger = xglog.WithComponent("collector")
	}
	return c
}

// Handler returns the collector's routes:
//
//	POST /events   ingest one batch
//	GET  /healthz  liveness
//	GET  /readyz   readiness
//	GET  /metrics  Prometheus exposition
func (c *Collector) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(c.recoverer)
	r.Use(c.observe)

	r.Get("/healthz", c.opts.Health.ServeHealth)
	r.Get("/readyz", c.opts.Health.ServeReady)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if c.opts.RateLimit > 0 {
			r.Use(RateLimit(RateLimitConfig{RequestLimit: c.opts.RateLimit, WindowSize: time.Minute}))
		}
		r.Post("/events", c.handleEvents)
	})
	return otelhttp.NewHandler(r, "collector",
		otelhttp.WithFilter(func(req *http.Request) bool { return req.URL.Path == "/events" }))
}

// Stats returns the running totals.
func (c *Collector) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *Collector) handleEvents(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "application/json") {
		c.reject(w, r, http.StatusUnsupportedMediaType, "unsupported_media_type", errors.New(ct))
		return
	}

	var body io.Reader = http.MaxBytesReader(w, r.Body, c.opts.MaxBodyBytes)
	if strings.EqualFold(r.Header.Get("Content-Encoding"), "gzip") {
		zr, err := gzip.NewReader(body)
		if err != nil {
			c.reject(w, r, http.StatusBadRequest, "invalid_gzip", err)
			return
		}
		defer zr.Close()
		body = zr
	}

	raw, err := io.ReadAll(io.LimitReader(body, c.opts.MaxBodyBytes+1))
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge), err == nil && int64(len(raw)) > c.opts.MaxBodyBytes:
		c.reject(w, r, http.StatusRequestEntityTooLarge, "body_too_large", err)
		return
	case err != nil:
		c.reject(w, r, http.StatusBadRequest, "unreadable_body", err)
		return
	}

	records, err := event.DecodeBatch(raw)
	if err != nil {
		c.reject(w, r, http.StatusBadRequest, "invalid_batch", err)
		return
	}

	batch := Received{
		ID:      r.Header.Get(transport.HeaderBatchID),
		Trigger: r.Header.Get(transport.HeaderBatchTrigger),
		Records: records,
		At:      c.clock.Now(),
	}
	logger := xglog.WithContext(xglog.ContextWithBatchID(r.Context(), batch.ID), c.logger)

	if declared := r.Header.Get(transport.HeaderRecordCount); declared != "" {
		if n, err := strconv.Atoi(declared); err != nil || n != len(records) {
			logger.Warn().
				Str("event", "collector.count_mismatch").
				Str("declared", declared).
				Int(xglog.FieldBatchSize, len(records)).
				Msg("record count header does not match body")
		}
	}

	c.mu.Lock()
	c.stats.Batches++
	c.stats.Records += len(records)
	c.mu.Unlock()
	metrics.RecordCollectorReceived(len(records))

	if c.opts.OnBatch != nil {
		c.opts.OnBatch(batch)
	}

	logger.Debug().
		Str("event", "collector.batch").
		Str(xglog.FieldTrigger, batch.Trigger).
		Int(xglog.FieldBatchSize, len(records)).
		Int(xglog.FieldBytes, len(raw)).
		Msg("batch accepted")

	writeJSON(w, http.StatusOK, map[string]int{"accepted": len(records)})
}

func (c *Collector) reject(w http.ResponseWriter, r *http.Request, status int, reason string, err error) {
	ev := c.logger.Warn().
		Str("event", "collector.rejected").
		Str("reason", reason).
		Int(xglog.FieldStatusCode, status).
		Str("remote_addr", r.RemoteAddr)
	if err != nil {
		ev = ev.Err(err)
	}
	ev.Msg("batch rejected")
	writeJSON(w, status, map[string]string{"error": reason})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
