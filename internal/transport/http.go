// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

package transport

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/mahfuzsust/AnalyticsSDK/internal/platform/httpx"
)

// HTTP headers set on every publish request.
const (
	HeaderBatchID      = "X-Analytics-Batch-Id"
	HeaderBatchTrigger = "X-Analytics-Trigger"
	HeaderRecordCount  = "X-Analytics-Records"
)

// HTTPConfig configures the HTTP transport.
type HTTPConfig struct {
	Endpoint  string
	Timeout   time.Duration
	Gzip      bool
	UserAgent string
}

// HTTP posts each batch as a JSON array to one endpoint. Only status 200
// counts as delivered.
type HTTP struct {
	endpoint string
	gzip     bool
	client   *http.Client
}

// NewHTTP validates cfg and returns an HTTP transport with an instrumented
// client.
func NewHTTP(cfg HTTPConfig) (*HTTP, error) {
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q: want http(s)://host/path", cfg.Endpoint)
	}
	client := httpx.NewClient(cfg.Timeout,
		httpx.WithTracing("analytics.publish"),
		httpx.WithUserAgent(cfg.UserAgent))
	return newHTTPWithClient(cfg.Endpoint, cfg.Gzip, client), nil
}

func newHTTPWithClient(endpoint string, gz bool, client *http.Client) *HTTP {
	return &HTTP{endpoint: endpoint, gzip: gz, client: client}
}

// Send implements Transport.
func (h *HTTP) Send(ctx context.Context, b Batch) error {
	body := b.Body
	if h.gzip {
		var err error
		if body, err = compress(body); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if h.gzip {
		req.Header.Set("Content-Encoding", "gzip")
	}
	req.Header.Set(HeaderBatchID, b.ID)
	req.Header.Set(HeaderBatchTrigger, b.Trigger)
	req.Header.Set(HeaderRecordCount, strconv.Itoa(b.Records))

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("post batch: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

func compress(body []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if _, err := zw.Write(body); err != nil {
		return nil, fmt.Errorf("gzip batch: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("gzip batch: %w", err)
	}
	return buf.Bytes(), nil
}
