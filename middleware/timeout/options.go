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

package timeout

import (
	"log/slog"
	"time"

	"rivaas.dev/router"
)

// WithDuration sets the timeout duration. Default: 30s.
func WithDuration(d time.Duration) Option {
	return func(cfg *config) {
		cfg.duration = d
	}
}

// WithHandler overrides the response built when a request times out.
func WithHandler(handler func(c *router.Context, timeout time.Duration) *router.Response) Option {
	return func(cfg *config) {
		cfg.handler = handler
	}
}

// WithLogger sets the logger used to record timeout events. Pass nil to
// disable logging.
func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// WithSkipPaths exempts exact paths from the timeout (e.g. long-running
// streaming or webhook endpoints).
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.skipPaths[p] = true
		}
	}
}

// WithSkipPrefix exempts paths sharing the given prefix from the timeout.
func WithSkipPrefix(prefixes ...string) Option {
	return func(cfg *config) {
		cfg.skipPrefixes = append(cfg.skipPrefixes, prefixes...)
	}
}

// WithSkipSuffix exempts paths sharing the given suffix from the timeout.
func WithSkipSuffix(suffixes ...string) Option {
	return func(cfg *config) {
		cfg.skipSuffixes = append(cfg.skipSuffixes, suffixes...)
	}
}

// WithSkip sets a custom predicate deciding whether to exempt a request
// from the timeout.
func WithSkip(fn func(c *router.Context) bool) Option {
	return func(cfg *config) {
		cfg.skipFunc = fn
	}
}
