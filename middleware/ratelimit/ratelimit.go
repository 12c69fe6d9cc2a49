// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package ratelimit provides middleware for rate limiting requests using
// configurable stores (in-memory, x/time/rate-backed, or custom) and either
// a token bucket or sliding window algorithm.
package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"rivaas.dev/router"
)

// KeyFunc determines the rate limit key for a request (e.g. per IP, per
// user, per route).
type KeyFunc func(*router.Context) string

// Meta carries rate limit state into OnExceeded callbacks and logging.
type Meta struct {
	Limit        int
	Remaining    int
	ResetSeconds int
	Window       time.Duration
	Key          string
	Route        string
	Method       string
	ClientIP     string
}

// CommonOptions is shared configuration for both algorithms.
type CommonOptions struct {
	Key        KeyFunc
	Headers    bool
	Enforce    bool
	OnExceeded func(*router.Context, Meta) *router.Response
	logger     *slog.Logger
}

// TokenBucket allows bursts up to Burst, refilling at Rate tokens/second.
type TokenBucket struct {
	Rate  int
	Burst int
	Store TokenBucketStore
}

// TokenBucketStore backs token bucket rate limiting. Custom implementations
// (e.g. Redis-backed) let the limiter be shared across replicas.
type TokenBucketStore interface {
	// Allow reports whether a request for key is allowed at now, along with
	// remaining tokens and seconds until the next one is available.
	Allow(key string, now time.Time) (allowed bool, remaining int, resetSeconds int)
}

// SlidingWindow counts requests across the current and previous fixed
// windows for smoother limiting than a naive fixed-window counter.
type SlidingWindow struct {
	Window time.Duration
	Limit  int
	Store  WindowStore
}

// WindowStore backs sliding window rate limiting.
type WindowStore interface {
	// GetCounts returns (current count, previous count, window start unix
	// time, error).
	GetCounts(ctx context.Context, key string, window time.Duration) (int, int, int64, error)
	// Incr increments the current window count.
	Incr(ctx context.Context, key string, window time.Duration) error
}

// New returns a token bucket rate limiter with sane defaults: 100
// requests/second, burst of 20, keyed by client IP.
//
//	r.Use(ratelimit.New(
//	    ratelimit.WithRequestsPerSecond(50),
//	    ratelimit.WithBurst(10),
//	))
func New(opts ...Option) router.MiddlewareFunc {
	cfg := &config{
		requestsPerSecond: 100,
		burst:             20,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	common := CommonOptions{
		Key:     cfg.keyFunc,
		Headers: true,
		Enforce: true,
		logger:  cfg.logger,
	}
	if cfg.onLimitExceeded != nil {
		common.OnExceeded = func(c *router.Context, _ Meta) *router.Response {
			return cfg.onLimitExceeded(c)
		}
	}

	tb := TokenBucket{Rate: cfg.requestsPerSecond, Burst: cfg.burst, Store: cfg.store}
	return WithTokenBucket(tb, common)
}

func defaultKeyFunc(c *router.Context) string {
	return "ip:" + c.ClientIP()
}

func rateLimitedResponse(resetSeconds int) *router.Response {
	return router.NewResponse(http.StatusTooManyRequests).
		SetHeader("Retry-After", strconv.Itoa(resetSeconds)).
		JSON(map[string]string{"error": "too many requests"})
}

// WithTokenBucket returns middleware enforcing tb, keyed and reported per
// opts.
func WithTokenBucket(tb TokenBucket, opts CommonOptions) router.MiddlewareFunc {
	if opts.Key == nil {
		opts.Key = defaultKeyFunc
	}
	store := tb.Store
	if store == nil {
		store = newTokenBucketStore(tb.Rate, tb.Burst)
	}

	return func(c *router.Context, next router.Next) (*router.Response, error) {
		key := opts.Key(c)
		allowed, remaining, resetSeconds := store.Allow(key, time.Now())

		resp, err := applyLimitHeaders(c, next, opts, allowed, tb.Burst, remaining, resetSeconds, time.Second, key)
		return resp, err
	}
}

// WithSlidingWindow returns middleware enforcing sw, keyed and reported per
// opts.
func WithSlidingWindow(sw SlidingWindow, opts CommonOptions) router.MiddlewareFunc {
	if opts.Key == nil {
		opts.Key = defaultKeyFunc
	}
	store := sw.Store
	if store == nil {
		store = NewInMemoryStore()
	}

	return func(c *router.Context, next router.Next) (*router.Response, error) {
		key := opts.Key(c)
		now := time.Now()

		curr, prev, windowStart, err := store.GetCounts(c.RequestContext(), key, sw.Window)
		if err != nil {
			if opts.logger != nil {
				opts.logger.Warn("rate limit store error", "error", err, "key", key)
			}
			return next.Call(c)
		}

		elapsed := min(now.Sub(time.Unix(windowStart, 0)), sw.Window)
		prevWeight := max(0.0, 1.0-float64(elapsed)/float64(sw.Window))
		effectiveUsage := float64(curr) + float64(prev)*prevWeight

		_ = store.Incr(c.RequestContext(), key, sw.Window)

		remaining := max(0, int(float64(sw.Limit)-effectiveUsage))
		windowEnd := windowStart + int64(sw.Window.Seconds())
		resetSeconds := max(0, int(windowEnd-now.Unix()))

		allowed := int(effectiveUsage) < sw.Limit
		resp, callErr := applyLimitHeaders(c, next, opts, allowed, sw.Limit, remaining, resetSeconds, sw.Window, key)
		return resp, callErr
	}
}

// applyLimitHeaders sets RateLimit-* headers (when enabled), builds the
// 429/callback response on exhaustion, or otherwise calls through.
func applyLimitHeaders(c *router.Context, next router.Next, opts CommonOptions, allowed bool, limit, remaining, resetSeconds int, window time.Duration, key string) (*router.Response, error) {
	setHeaders := func(resp *router.Response) {
		if !opts.Headers || resp == nil {
			return
		}
		if window == time.Second {
			resp.SetHeader("RateLimit-Limit", strconv.Itoa(limit))
		} else {
			resp.SetHeader("RateLimit-Limit", fmt.Sprintf("%d;w=%d", limit, int(window.Seconds())))
		}
		resp.SetHeader("RateLimit-Remaining", strconv.Itoa(remaining))
		resp.SetHeader("RateLimit-Reset", strconv.Itoa(resetSeconds))
	}

	if !allowed {
		meta := Meta{
			Limit:        limit,
			Remaining:    0,
			ResetSeconds: resetSeconds,
			Window:       window,
			Key:          key,
			Route:        c.RoutePattern(),
			Method:       c.Method(),
			ClientIP:     c.ClientIP(),
		}

		var resp *router.Response
		if opts.OnExceeded != nil {
			resp = opts.OnExceeded(c, meta)
		}
		if resp == nil && opts.Enforce {
			resp = rateLimitedResponse(resetSeconds)
		}
		if resp != nil {
			setHeaders(resp)
			return resp, nil
		}
		// Report-only mode with no override response: fall through to next.
	}

	resp, err := next.Call(c)
	setHeaders(resp)
	return resp, err
}

// PerRoute is a no-op passthrough letting a limiter built with New or
// WithTokenBucket/WithSlidingWindow be attached per-route instead of
// globally via Use.
func PerRoute(m router.MiddlewareFunc) router.MiddlewareFunc {
	return m
}
