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

// Package accesslog emits one structured log record per request via
// log/slog, with sampling, slow-request forcing, and path exclusion.
package accesslog

import (
	"crypto/sha256"
	"encoding/binary"
	"strings"
	"time"

	"rivaas.dev/router"
	"rivaas.dev/router/middleware"
)

// New returns middleware logging one structured record per request. A
// logger must be supplied via WithLogger; without one, the middleware
// still runs its sampling/timing logic but emits nothing.
//
//	import "log/slog"
//
//	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
//	r.Use(accesslog.New(
//	    accesslog.WithLogger(logger),
//	    accesslog.WithExcludePaths("/health", "/metrics"),
//	    accesslog.WithSlowThreshold(500 * time.Millisecond),
//	))
func New(opts ...Option) router.MiddlewareFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context, next router.Next) (*router.Response, error) {
		path := c.URI().Path

		if cfg.excludePaths[path] {
			return next.Call(c)
		}
		for _, prefix := range cfg.excludePrefixes {
			if strings.HasPrefix(path, prefix) {
				return next.Call(c)
			}
		}

		start := time.Now()
		resp, err := next.Call(c)
		duration := time.Since(start)

		status := responseStatus(resp, err)
		isError := status >= 400
		isSlow := cfg.slowThreshold > 0 && duration >= cfg.slowThreshold

		shouldLog := true
		if !isError && !isSlow {
			if cfg.logErrorsOnly {
				shouldLog = false
			} else if cfg.sampleRate < 1.0 {
				var requestID string
				if v := c.RequestContext().Value(middleware.RequestIDKey); v != nil {
					requestID, _ = v.(string)
				}
				shouldLog = sampleByHash(requestID, cfg.sampleRate)
			}
		}

		if shouldLog && cfg.logger != nil {
			fields := []any{
				"method", c.Method(),
				"path", path,
				"status", status,
				"duration_ms", duration.Milliseconds(),
				"bytes_sent", responseSize(resp),
				"user_agent", c.Request.UserAgent(),
				"client_ip", c.ClientIP(),
				"host", c.Request.Host,
				"proto", c.ProtoVersion(),
			}
			if routePattern := c.RoutePattern(); routePattern != "" {
				fields = append(fields, "route", routePattern)
			}
			if isSlow {
				fields = append(fields, "slow", true)
			}

			switch {
			case status >= 500:
				cfg.logger.Error("access", fields...)
			case status >= 400:
				cfg.logger.Warn("access", fields...)
			case isSlow:
				cfg.logger.Warn("access", fields...)
			default:
				cfg.logger.Info("access", fields...)
			}
		}

		return resp, err
	}
}

func responseStatus(resp *router.Response, err error) int {
	if resp != nil {
		return resp.Status
	}
	if err != nil {
		return 500
	}
	return 0
}

func responseSize(resp *router.Response) int64 {
	if resp == nil {
		return 0
	}
	if buf, ok := resp.BufferedBody(); ok {
		return int64(len(buf))
	}
	return 0
}

// sampleByHash makes a deterministic sampling decision from a hash of id,
// so the same request ID always samples the same way across replicas.
func sampleByHash(id string, rate float64) bool {
	if id == "" || rate >= 1.0 {
		return true
	}
	h := sha256.Sum256([]byte(id))
	hashValue := binary.BigEndian.Uint64(h[:8])
	threshold := uint64(rate * float64(^uint64(0)))
	return hashValue <= threshold
}
