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
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"rivaas.dev/router"
)

// Option configures the middleware.
type Option func(*config)

type config struct {
	duration     time.Duration
	logger       *slog.Logger
	handler      func(c *router.Context, timeout time.Duration) *router.Response
	skipPaths    map[string]bool
	skipPrefixes []string
	skipSuffixes []string
	skipFunc     func(c *router.Context) bool
}

func defaultConfig() *config {
	return &config{
		duration:  30 * time.Second,
		logger:    slog.Default(),
		handler:   defaultHandler,
		skipPaths: make(map[string]bool),
	}
}

func defaultHandler(c *router.Context, timeout time.Duration) *router.Response {
	return router.NewResponse(http.StatusRequestTimeout).JSON(map[string]any{
		"error":   "request timeout",
		"code":    "TIMEOUT",
		"timeout": timeout.String(),
		"path":    c.URI().Path,
	})
}

func shouldSkip(cfg *config, c *router.Context) bool {
	path := c.URI().Path
	if cfg.skipPaths[path] {
		return true
	}
	for _, prefix := range cfg.skipPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	for _, suffix := range cfg.skipSuffixes {
		if strings.HasSuffix(path, suffix) {
			return true
		}
	}
	if cfg.skipFunc != nil && cfg.skipFunc(c) {
		return true
	}
	return false
}

// New returns middleware bounding downstream execution to a duration, with
// path-based exemptions and a customizable timeout response. It wraps
// router.Timeout (filters.go) rather than reimplementing the
// goroutine/select/context-cancellation plumbing — that combinator already
// carries the documented limitation that Go cannot force-preempt a
// goroutine stuck in non-cancellable work, so an abandoned downstream call
// may keep running after this middleware has already responded.
//
//	r.Use(timeout.New(timeout.WithDuration(5 * time.Second)))
//
//	r.Use(timeout.New(
//	    timeout.WithSkipPaths("/stream", "/events"),
//	    timeout.WithSkipPrefix("/admin"),
//	))
func New(opts ...Option) router.MiddlewareFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context, next router.Next) (*router.Response, error) {
		if shouldSkip(cfg, c) {
			return next.Call(c)
		}

		passthrough := func(c *router.Context, next router.Next) (*router.Response, error) {
			return next.Call(c)
		}

		resp, err := router.Timeout(cfg.duration, passthrough)(c, next)
		if err == nil {
			return resp, nil
		}

		var rerr *router.Error
		if !errors.As(err, &rerr) || rerr.Status != http.StatusGatewayTimeout {
			return resp, err
		}

		if cfg.logger != nil {
			cfg.logger.Warn("request timeout",
				"method", c.Method(), "path", c.URI().Path, "timeout", cfg.duration.String())
		}
		return cfg.handler(c, cfg.duration), nil
	}
}
