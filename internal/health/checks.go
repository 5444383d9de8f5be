// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package health

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/mahfuzsust/AnalyticsSDK/internal/resilience"
)

// FileChecker checks that a file exists, is not a directory and is not
// empty. An empty path is reported healthy as not configured.
type FileChecker struct {
	name string
	path string
}

// NewFileChecker creates a checker for the file at path.
func NewFileChecker(name, path string) *FileChecker {
	return &FileChecker{name: name, path: path}
}

func (c *FileChecker) Name() string { return c.name }

func (c *FileChecker) Check(context.Context) CheckResult {
	if c.path == "" {
		return CheckResult{Status: StatusHealthy, Message: "not configured"}
	}
	info, err := os.Stat(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return CheckResult{Status: StatusUnhealthy, Error: "file not found", Message: c.path}
		}
		return CheckResult{Status: StatusUnhealthy, Error: err.Error()}
	}
	if info.IsDir() {
		return CheckResult{Status: StatusUnhealthy, Error: "expected file, got directory"}
	}
	if info.Size() == 0 {
		return CheckResult{Status: StatusDegraded, Message: "file is empty"}
	}
	return CheckResult{Status: StatusHealthy, Message: "file readable"}
}

// PublishChecker reports the outcome of the most recent publish. Batches are
// dropped on failure, so a failed publish degrades the agent without making
// it unready.
type PublishChecker struct {
	status func() (time.Time, error)
	clock  clockwork.Clock
}

// NewPublishChecker creates a checker over status, which returns the time of
// the last delivered batch and the error of the latest flush.
func NewPublishChecker(status func() (time.Time, error), clock clockwork.Clock) *PublishChecker {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &PublishChecker{status: status, clock: clock}
}

func (c *PublishChecker) Name() string { return "last_publish" }

func (c *PublishChecker) Check(context.Context) CheckResult {
	last, err := c.status()
	if err != nil {
		res := CheckResult{Status: StatusDegraded, Error: err.Error(), Message: "last publish failed"}
		if !last.IsZero() {
			res.Message = fmt.Sprintf("last publish failed, last success %s ago", c.clock.Since(last).Round(time.Second))
		}
		return res
	}
	if last.IsZero() {
		return CheckResult{Status: StatusHealthy, Message: "nothing published yet"}
	}
	return CheckResult{
		Status:  StatusHealthy,
		Message: fmt.Sprintf("last publish %s ago", c.clock.Since(last).Round(time.Second)),
	}
}

// BreakerChecker maps a circuit breaker's state to a result: open is
// degraded, half-open and closed are healthy.
func BreakerChecker(name string, cb *resilience.CircuitBreaker) Checker {
	return CheckerFunc(name, func(context.Context) CheckResult {
		state := cb.State()
		if state == resilience.StateOpen {
			return CheckResult{Status: StatusDegraded, Message: "circuit open, batches are dropped"}
		}
		return CheckResult{Status: StatusHealthy, Message: "circuit " + string(state)}
	})
}

// PingChecker wraps a dependency ping. A ping error reports onFail.
func PingChecker(name string, onFail Status, timeout time.Duration, ping func(ctx context.Context) error) Checker {
	return CheckerFunc(name, func(ctx context.Context) CheckResult {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}
		if err := ping(ctx); err != nil {
			return CheckResult{Status: onFail, Error: err.Error()}
		}
		return CheckResult{Status: StatusHealthy, Message: "reachable"}
	})
}
