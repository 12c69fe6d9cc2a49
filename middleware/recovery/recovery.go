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

// Package recovery provides middleware for recovering from panics in HTTP
// handlers, preventing server crashes and converting the panic into the
// router's standard error-rescue path.
package recovery

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"rivaas.dev/router"
)

// Option configures the recovery middleware.
type Option func(*config)

type config struct {
	stackTrace      bool
	stackSize       int
	disableStackAll bool
	logger          func(c *router.Context, err any, stack []byte)
}

func defaultConfig() *config {
	return &config{
		stackTrace:      true,
		stackSize:       4 << 10,
		disableStackAll: true,
		logger:          defaultLogger,
	}
}

func defaultLogger(c *router.Context, err any, stack []byte) {
	c.Logger().Error("panic recovered", "err", fmt.Sprint(err), "stack", string(stack))
}

// New returns a middleware that recovers from panics in downstream handlers
// and converts them into a 500 Error rather than crashing the goroutine
// serving the request. It should typically be registered first so it wraps
// every other middleware in the chain.
//
// Basic usage:
//
//	r.Use(recovery.New())
//
// With custom configuration:
//
//	r.Use(recovery.New(
//	    recovery.WithStackTrace(true),
//	    recovery.WithStackSize(8 << 10),
//	))
func New(opts ...Option) router.MiddlewareFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context, next router.Next) (resp *router.Response, err error) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			if span := trace.SpanFromContext(c.RequestContext()); span.SpanContext().IsValid() {
				span.SetStatus(codes.Error, "panic recovered")
				span.SetAttributes(
					attribute.Bool("exception.escaped", true),
					attribute.String("exception.type", fmt.Sprintf("%T", rec)),
					attribute.String("exception.message", fmt.Sprintf("%v", rec)),
				)
				if actualErr, ok := rec.(error); ok {
					span.RecordError(actualErr)
				}
			}

			var stack []byte
			if cfg.stackTrace {
				full := debug.Stack()
				if cfg.disableStackAll && len(full) > cfg.stackSize {
					stack = full[:cfg.stackSize]
				} else {
					stack = full
				}
			}
			if cfg.logger != nil {
				cfg.logger(c, rec, stack)
			}

			resp = nil
			err = router.Errorf(http.StatusInternalServerError, "router: panic recovered: %v", rec)
		}()

		return next.Call(c)
	}
}
