// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0

// Package httpx builds the HTTP clients used for outbound publishing.
package httpx

import (
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultClientTimeout         = 5 * time.Second
	defaultDialTimeout           = 3 * time.Second
	defaultResponseHeaderTimeout = 3 * time.Second
	defaultIdleConnTimeout       = 30 * time.Second
	defaultExpectContinueTimeout = 1 * time.Second
	defaultMaxIdleConns          = 4
	defaultMaxIdleConnsPerHost   = 2
)

// Option customizes a client built by NewClient.
type Option func(*options)

type options struct {
	traced    bool
	spanName  string
	userAgent string
}

// WithTracing wraps the transport with OpenTelemetry instrumentation. Each
// request becomes a client span named spanName.
func WithTracing(spanName string) Option {
	return func(o *options) {
		o.traced = true
		o.spanName = spanName
	}
}

// WithUserAgent sets the User-Agent header on requests that carry none.
func WithUserAgent(ua string) Option {
	return func(o *options) { o.userAgent = ua }
}

// NewClient returns a hardened HTTP client. The overall timeout also caps
// the dial and response header timeouts.
func NewClient(timeout time.Duration, opts ...Option) *http.Client {
	if timeout <= 0 {
		timeout = defaultClientTimeout
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	dialTimeout := min(timeout, defaultDialTimeout)
	responseHeaderTimeout := min(timeout, defaultResponseHeaderTimeout)

	var rt http.RoundTripper = &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           (&net.Dialer{Timeout: dialTimeout, KeepAlive: 30 * time.Second}).DialContext,
		ForceAttemptHTTP2:     true,
		MaxIdleConns:          defaultMaxIdleConns,
		MaxIdleConnsPerHost:   defaultMaxIdleConnsPerHost,
		IdleConnTimeout:       defaultIdleConnTimeout,
		TLSHandshakeTimeout:   dialTimeout,
		ResponseHeaderTimeout: responseHeaderTimeout,
		ExpectContinueTimeout: defaultExpectContinueTimeout,
	}
	if o.userAgent != "" {
		rt = userAgentTransport{next: rt, ua: o.userAgent}
	}
	if o.traced {
		name := o.spanName
		rt = otelhttp.NewTransport(rt, otelhttp.WithSpanNameFormatter(func(string, *http.Request) string {
			return name
		}))
	}

	return &http.Client{Timeout: timeout, Transport: rt}
}

type userAgentTransport struct {
	next http.RoundTripper
	ua   string
}

func (t userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") != "" {
		return t.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.ua)
	return t.next.RoundTrip(r)
}

// BaseTransport returns the underlying *http.Transport of a client built
// by NewClient, unwrapping only the layers added here. It returns nil for
// instrumented clients.
func BaseTransport(c *http.Client) *http.Transport {
	switch rt := c.Transport.(type) {
	case *http.Transport:
		return rt
	case userAgentTransport:
		tr, _ := rt.next.(*http.Transport)
		return tr
	default:
		return nil
	}
}
