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

// Package methodoverride lets clients signal an HTTP method other than the
// one the transport actually carried, for clients (HTML forms) that only
// support GET/POST.
package methodoverride

import (
	"context"
	"strings"

	"rivaas.dev/router"
	"rivaas.dev/router/middleware"
)

// CSRFVerifiedKey is the context key a CSRF-verification middleware sets to
// true once it has confirmed the request carries a valid token.
var CSRFVerifiedKey middleware.ContextKey = "middleware.csrf_verified"

// New returns middleware that rewrites the request's recorded method from
// an override header or query parameter.
//
// SECURITY: only enable this for clients you control (HTML forms). For
// anything public, pair it with WithRequireCSRFToken(true).
//
//	r.Use(methodoverride.New())
//
//	r.Use(csrf.Verify())
//	r.Use(methodoverride.New(
//	    methodoverride.WithRequireCSRFToken(true),
//	    methodoverride.WithAllow("PUT", "PATCH", "DELETE"),
//	    methodoverride.WithOnlyOn("POST"),
//	))
func New(opts ...Option) router.MiddlewareFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	allowMap := make(map[string]bool, len(cfg.allow))
	for _, m := range cfg.allow {
		allowMap[strings.ToUpper(m)] = true
	}
	onlyOnMap := make(map[string]bool, len(cfg.onlyOn))
	for _, m := range cfg.onlyOn {
		onlyOnMap[strings.ToUpper(m)] = true
	}

	return func(c *router.Context, next router.Next) (*router.Response, error) {
		originalMethod := c.Method()

		if !onlyOnMap[strings.ToUpper(originalMethod)] {
			return next.Call(c)
		}

		if cfg.requireCSRFToken {
			verified, _ := c.RequestContext().Value(CSRFVerifiedKey).(bool)
			if !verified {
				return next.Call(c)
			}
		}

		overrideMethod := c.Headers().Get(cfg.header)
		if overrideMethod == "" && cfg.queryParam != "" {
			overrideMethod = c.URI().Query().Get(cfg.queryParam)
		}
		if overrideMethod == "" {
			return next.Call(c)
		}

		overrideMethod = strings.ToUpper(strings.TrimSpace(overrideMethod))
		if !allowMap[overrideMethod] {
			return next.Call(c)
		}

		if cfg.respectBody && c.Request.ContentLength == 0 {
			return next.Call(c)
		}

		ctx := context.WithValue(c.RequestContext(), middleware.OriginalMethodKey, originalMethod)
		c.Request = c.Request.WithContext(ctx)
		c.Request.Method = overrideMethod

		return next.Call(c)
	}
}

// GetOriginalMethod returns the method the request actually arrived with,
// before any override, or the current method if none occurred.
func GetOriginalMethod(c *router.Context) string {
	if orig, ok := c.RequestContext().Value(middleware.OriginalMethodKey).(string); ok {
		return orig
	}
	return c.Method()
}
