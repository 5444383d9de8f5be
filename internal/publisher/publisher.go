// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package publisher drains the event buffer and delivers batches through a
// transport, periodically and on demand.
package publisher

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/retrypolicy"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mahfuzsust/AnalyticsSDK/internal/buffer"
	"github.com/mahfuzsust/AnalyticsSDK/internal/event"
	xglog "github.com/mahfuzsust/AnalyticsSDK/internal/log"
	"github.com/mahfuzsust/AnalyticsSDK/internal/metrics"
	"github.com/mahfuzsust/AnalyticsSDK/internal/resilience"
	"github.com/mahfuzsust/AnalyticsSDK/internal/schedule"
	"github.com/mahfuzsust/AnalyticsSDK/internal/telemetry"
	"github.com/mahfuzsust/AnalyticsSDK/internal/transport"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Trigger names what caused a flush.
type Trigger string

const (
	TriggerPeriodic Trigger = "periodic"
	TriggerPause    Trigger = "pause"
	TriggerVideoEnd Trigger = "video_end"
	TriggerClose    Trigger = "close"
)

// Defaults.
const (
	DefaultInterval = 10 * time.Second
	DefaultTimeout  = 5 * time.Second
)

// RetryConfig bounds redelivery of one batch within a flush. MaxRetries 0
// sends each batch exactly once.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// Options configures a Publisher. Buffer and Transport are required.
type Options struct {
	Buffer        *buffer.Buffer
	Transport     transport.Transport
	TransportKind string

	Interval     time.Duration
	InitialDelay time.Duration
	Timeout      time.Duration
	Retry        RetryConfig
	Breaker      *resilience.CircuitBreaker // optional

	Clock  clockwork.Clock
	Tracer trace.Tracer
	Logger *zerolog.Logger
}

// Publisher moves records from the buffer to the transport. Delivery is at
// most once: a batch that fails is logged, counted and dropped.
type Publisher struct {
	buf       *buffer.Buffer
	transport transport.Transport
	kind      string
	timeout   time.Duration
	retry     RetryConfig
	breaker   *resilience.CircuitBreaker
	tracer    trace.Tracer
	logger    zerolog.Logger
	task      *schedule.Task
	clock     clockwork.Clock

	// flushMu orders flushes so batches reach the transport in drain order.
	flushMu sync.Mutex

	statusMu    sync.Mutex
	lastSuccess time.Time
	lastErr     error
}

// New validates opts and returns a stopped Publisher.
func New(opts Options) (*Publisher, error) {
	if opts.Buffer == nil {
		return nil, errors.New("publisher: buffer is required")
	}
	if opts.Transport == nil {
		return nil, errors.New("publisher: transport is required")
	}

	p := &Publisher{
		buf:       opts.Buffer,
		transport: opts.Transport,
		kind:      opts.TransportKind,
		timeout:   opts.Timeout,
		retry:     opts.Retry,
		breaker:   opts.Breaker,
		tracer:    opts.Tracer,
		clock:     opts.Clock,
	}
	if p.clock == nil {
		p.clock = clockwork.NewRealClock()
	}
	if p.timeout <= 0 {
		p.timeout = DefaultTimeout
	}
	if p.tracer == nil {
		p.tracer = telemetry.Tracer("analytics/publisher")
	}
	if opts.Logger != nil {
		p.logger = *opts.Logger
	} else {
		p.logger = xglog.WithComponent("publisher")
	}

	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	task, err := schedule.New(schedule.Config{
		Name:         "publisher",
		Interval:     interval,
		InitialDelay: opts.InitialDelay,
		Clock:        opts.Clock,
		Logger:       &p.logger,
	}, func(ctx context.Context) {
		_ = p.Flush(ctx, TriggerPeriodic)
	})
	if err != nil {
		return nil, fmt.Errorf("publisher: %w", err)
	}
	p.task = task
	return p, nil
}

// Start begins periodic publishing.
func (p *Publisher) Start(ctx context.Context) error {
	return p.task.Start(ctx)
}

// Stop ends periodic publishing. A periodic flush in progress completes
// first. Pending records stay in the buffer for a final Flush.
func (p *Publisher) Stop() {
	p.task.Stop()
}

// Flush drains the buffer and sends its contents as one batch. An empty
// buffer makes no transport call and returns nil. The returned error is
// informational; the batch has already been dropped.
func (p *Publisher) Flush(ctx context.Context, trigger Trigger) error {
	p.flushMu.Lock()
	defer p.flushMu.Unlock()

	records := p.buf.Drain()
	if len(records) == 0 {
		return nil
	}

	batchID := uuid.NewString()
	logger := p.logger.With().
		Str(xglog.FieldBatchID, batchID).
		Str(xglog.FieldTrigger, string(trigger)).
		Int(xglog.FieldBatchSize, len(records)).
		Logger()

	body, err := event.EncodeBatch(records)
	if err != nil {
		metrics.RecordPublish(string(trigger), metrics.ResultFailure, len(records), 0)
		logger.Error().Err(err).Str("event", "publish.encode_failed").Msg("dropping batch: encode failed")
		return fmt.Errorf("encode batch: %w", err)
	}

	batch := transport.Batch{ID: batchID, Trigger: string(trigger), Records: len(records), Body: body}

	ctx, span := p.tracer.Start(ctx, "publisher.flush",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(telemetry.BatchAttributes(batchID, string(trigger), len(records), len(body))...),
		trace.WithAttributes(attribute.String(telemetry.TransportKey, p.kind)),
	)
	defer span.End()

	sendCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	started := time.Now()
	attempts, err := p.send(sendCtx, batch)
	took := time.Since(started)
	span.SetAttributes(attribute.Int(telemetry.AttemptsKey, attempts))

	if err != nil {
		result := metrics.ResultFailure
		if errors.Is(err, resilience.ErrCircuitOpen) {
			result = metrics.ResultCircuitOpen
		}
		metrics.RecordPublish(string(trigger), result, len(records), took)
		span.RecordError(err)
		span.SetStatus(codes.Error, "publish failed")
		span.SetAttributes(telemetry.ErrorAttributes(result)...)
		logger.Error().
			Err(err).
			Str("event", "publish.failed").
			Str(xglog.FieldTransport, p.kind).
			Int(xglog.FieldAttempts, attempts).
			Dur("duration", took).
			Msg("dropping batch: publish failed")
		p.setStatus(time.Time{}, err)
		return err
	}
	p.setStatus(p.clock.Now(), nil)

	metrics.RecordPublish(string(trigger), metrics.ResultSuccess, len(records), took)
	span.SetStatus(codes.Ok, "")
	logger.Debug().
		Str("event", "publish.succeeded").
		Str(xglog.FieldTransport, p.kind).
		Int(xglog.FieldBytes, len(body)).
		Int(xglog.FieldAttempts, attempts).
		Dur("duration", took).
		Msg("batch published")
	return nil
}

// Status reports when a batch was last delivered and the error of the most
// recent flush, nil if it succeeded.
func (p *Publisher) Status() (lastSuccess time.Time, lastErr error) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	return p.lastSuccess, p.lastErr
}

func (p *Publisher) setStatus(success time.Time, err error) {
	p.statusMu.Lock()
	defer p.statusMu.Unlock()
	if !success.IsZero() {
		p.lastSuccess = success
	}
	p.lastErr = err
}

// send delivers b through the breaker and retry policy and reports how many
// transport calls were made.
func (p *Publisher) send(ctx context.Context, b transport.Batch) (int, error) {
	attempts := 0
	once := func(ctx context.Context) error {
		attempts++
		return p.transport.Send(ctx, b)
	}
	guarded := once
	if p.breaker != nil {
		guarded = func(ctx context.Context) error {
			return p.breaker.Execute(ctx, once)
		}
	}

	if p.retry.MaxRetries <= 0 {
		return attempts, guarded(ctx)
	}

	policy := retrypolicy.NewBuilder[any]().
		WithBackoff(p.retry.baseDelay(), p.retry.maxDelay()).
		WithMaxRetries(p.retry.MaxRetries).
		WithJitterFactor(0.1).
		HandleIf(func(_ any, err error) bool {
			return transport.Retryable(err)
		}).
		Build()

	err := failsafe.With[any](policy).WithContext(ctx).Run(func() error {
		return guarded(ctx)
	})
	return attempts, err
}

func (r RetryConfig) baseDelay() time.Duration {
	if r.BaseDelay > 0 {
		return r.BaseDelay
	}
	return 200 * time.Millisecond
}

func (r RetryConfig) maxDelay() time.Duration {
	if r.MaxDelay >= r.baseDelay() {
		return r.MaxDelay
	}
	return max(2*time.Second, r.baseDelay())
}
