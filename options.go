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

package router

import (
	"log/slog"
	"time"
)

// WithBodyLimit caps the number of bytes readable from any request body
// (§4.I). Requests exceeding limit fail their Body.Read with
// ErrBodyTooLarge (413) on the byte that would cross the ceiling.
//
// Default: 4MiB.
func WithBodyLimit(limit int64) Option {
	return func(r *Router) {
		r.bodyLimit = limit
	}
}

// WithCacheCapacity sets the bounded FIFO resolution cache's capacity
// (§4.F). A capacity of 0 disables caching: every request resolves
// through the trie directly.
//
// Default: 1024.
func WithCacheCapacity(capacity int) Option {
	return func(r *Router) {
		r.cacheCapacity = capacity
	}
}

// WithConnectionLimit bounds the number of simultaneously accepted
// connections the Server Adapter (§4.L) will hold open before backing off
// new accepts.
//
// Default: 10000.
func WithConnectionLimit(limit int) Option {
	return func(r *Router) {
		r.connectionCap = limit
	}
}

// WithHandshakeTimeout bounds how long a TLS handshake may take before
// the Server Adapter abandons the connection (§4.L).
//
// Default: 5s.
func WithHandshakeTimeout(d time.Duration) Option {
	return func(r *Router) {
		r.handshakeTimeout = d
	}
}

// WithState attaches an application-defined value retrievable from every
// Context via Context.State (§4.H "state()"). Typically a struct holding
// shared dependencies (a database handle, a cache client).
func WithState(state any) Option {
	return func(r *Router) {
		r.state = state
	}
}

// WithLogger sets the base logger new Contexts inherit (Context.Logger).
// A nil logger is rejected in favor of the existing noop logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Router) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithObservability attaches hooks run around every request's dispatch
// (component O). A nil recorder (the default) means dispatch carries no
// observability overhead at all.
func WithObservability(recorder ObservabilityRecorder) Option {
	return func(r *Router) {
		r.observability = recorder
	}
}

// serverTimeouts mirrors the teacher's slowloris-resistant defaults,
// applied to the *http.Server the Server Adapter constructs (§4.L).
type serverTimeouts struct {
	readHeader time.Duration
	read       time.Duration
	write      time.Duration
	idle       time.Duration
}

func defaultServerTimeouts() *serverTimeouts {
	return &serverTimeouts{
		readHeader: 5 * time.Second,
		read:       15 * time.Second,
		write:      30 * time.Second,
		idle:       60 * time.Second,
	}
}

// WithServerTimeouts configures the HTTP server's timeouts (§4.L). These
// guard against slowloris-style connection exhaustion independent of the
// connection semaphore and handshake timeout.
func WithServerTimeouts(readHeader, read, write, idle time.Duration) Option {
	return func(r *Router) {
		r.serverTimeouts = &serverTimeouts{
			readHeader: readHeader,
			read:       read,
			write:      write,
			idle:       idle,
		}
	}
}

// WithH2C enables HTTP/2 over cleartext TCP via golang.org/x/net/http2/h2c,
// for use in development or behind a trusted TLS-terminating proxy.
func WithH2C(enable bool) Option {
	return func(r *Router) {
		r.enableH2C = enable
	}
}

// WithNoRoute overrides the handler invoked as the dispatch chain's
// terminal entry when no route-specific binding matched. Equivalent to
// calling Router.NoRoute after New.
func WithNoRoute(handler MiddlewareFunc) Option {
	return func(r *Router) {
		r.noRoute = handler
	}
}
