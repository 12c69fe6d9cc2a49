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

// Package security attaches common browser security headers
// (X-Frame-Options, CSP, HSTS, etc.) to every response. Unlike the other
// middleware subpackages here, no single teacher file covers this concern —
// it's grounded on the conventions the wider Go ecosystem's secure-headers
// middlewares (e.g. unrolled/secure, helmet-style ports) converge on, kept
// in the same functional-options idiom as its siblings.
package security

import (
	"strconv"

	"rivaas.dev/router"
)

// New returns middleware that sets security headers on every response,
// built from sane defaults and overridden by opts.
//
//	r.Use(security.New())
//
//	r.Use(security.New(
//	    security.WithFrameOptions("SAMEORIGIN"),
//	    security.WithHSTS(31536000, true, true),
//	))
func New(opts ...Option) router.MiddlewareFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context, next router.Next) (*router.Response, error) {
		resp, err := next.Call(c)
		if resp == nil {
			return resp, err
		}
		if cfg.disabled {
			return resp, err
		}

		if cfg.frameOptions != "" {
			resp.SetHeader("X-Frame-Options", cfg.frameOptions)
		}
		if cfg.contentTypeNosniff {
			resp.SetHeader("X-Content-Type-Options", "nosniff")
		}
		if cfg.xssProtection != "" {
			resp.SetHeader("X-XSS-Protection", cfg.xssProtection)
		}
		if cfg.contentSecurityPolicy != "" {
			resp.SetHeader("Content-Security-Policy", cfg.contentSecurityPolicy)
		}
		if cfg.referrerPolicy != "" {
			resp.SetHeader("Referrer-Policy", cfg.referrerPolicy)
		}
		if cfg.permissionsPolicy != "" {
			resp.SetHeader("Permissions-Policy", cfg.permissionsPolicy)
		}
		if cfg.hstsMaxAge > 0 && c.Request.TLS != nil {
			resp.SetHeader("Strict-Transport-Security", hstsValue(cfg))
		}
		for k, v := range cfg.customHeaders {
			resp.SetHeader(k, v)
		}

		return resp, err
	}
}

func hstsValue(cfg *config) string {
	value := "max-age=" + strconv.Itoa(cfg.hstsMaxAge)
	if cfg.hstsIncludeSubDomains {
		value += "; includeSubDomains"
	}
	if cfg.hstsPreload {
		value += "; preload"
	}
	return value
}
