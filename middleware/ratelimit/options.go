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

package ratelimit

import (
	"log/slog"

	"rivaas.dev/router"
)

// Option configures the default token bucket limiter built by New.
type Option func(*config)

type config struct {
	logger            *slog.Logger
	requestsPerSecond int
	burst             int
	keyFunc           KeyFunc
	onLimitExceeded   func(*router.Context) *router.Response
	store             TokenBucketStore
}

// WithRequestsPerSecond sets the refill rate. Default: 100.
func WithRequestsPerSecond(rps int) Option {
	return func(cfg *config) {
		if rps > 0 {
			cfg.requestsPerSecond = rps
		}
	}
}

// WithBurst sets the maximum burst size. Default: 20.
func WithBurst(burst int) Option {
	return func(cfg *config) {
		if burst > 0 {
			cfg.burst = burst
		}
	}
}

// WithKeyFunc sets the function deriving the rate limit key from a
// request. Default: "ip:"+c.ClientIP().
func WithKeyFunc(fn KeyFunc) Option {
	return func(cfg *config) {
		cfg.keyFunc = fn
	}
}

// WithHandler overrides the response returned when the limit is exceeded.
// Default: 429 with a JSON error body.
func WithHandler(fn func(*router.Context) *router.Response) Option {
	return func(cfg *config) {
		cfg.onLimitExceeded = fn
	}
}

// WithStore overrides the token bucket storage backend. Default: an
// in-memory store sized from WithRequestsPerSecond/WithBurst; pass
// NewRateStore(...) to back the limiter with golang.org/x/time/rate
// instead.
func WithStore(store TokenBucketStore) Option {
	return func(cfg *config) {
		cfg.store = store
	}
}

// WithLogger sets the logger on the token bucket limiter built by New,
// whose store never returns errors, so nothing is logged through it.
// Sliding window limiters built via WithSlidingWindow take CommonOptions
// instead and do not receive this logger.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}
