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

package cors

import (
	"net/http"
	"slices"
	"strconv"
	"strings"

	"rivaas.dev/router"
)

// Option configures the cors middleware.
type Option func(*config)

type config struct {
	allowedOrigins   []string
	allowedMethods   []string
	allowedHeaders   []string
	exposedHeaders   []string
	allowCredentials bool
	maxAge           int
	allowAllOrigins  bool
	allowOriginFunc  func(origin string) bool
}

// defaultConfig is restrictive by default: no origins allowed until
// configured.
func defaultConfig() *config {
	return &config{
		allowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		allowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization"},
		maxAge:         3600,
	}
}

// New returns a middleware handling Cross-Origin Resource Sharing,
// answering preflight OPTIONS requests directly and annotating every other
// response with the appropriate Access-Control-* headers.
//
// Basic usage:
//
//	r.Use(cors.New(cors.WithAllowedOrigins("https://example.com")))
func New(opts ...Option) router.MiddlewareFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	allowedMethodsHeader := strings.Join(cfg.allowedMethods, ", ")
	allowedHeadersHeader := strings.Join(cfg.allowedHeaders, ", ")
	exposedHeadersHeader := strings.Join(cfg.exposedHeaders, ", ")
	maxAgeHeader := strconv.Itoa(cfg.maxAge)

	return func(c *router.Context, next router.Next) (*router.Response, error) {
		origin := c.Headers().Get("Origin")
		if origin == "" {
			return next.Call(c)
		}

		allowedOrigin := resolveOrigin(cfg, origin)
		if allowedOrigin == "" {
			return next.Call(c)
		}

		if c.Method() == http.MethodOptions {
			resp := router.NewResponse(http.StatusNoContent)
			setOriginHeaders(resp, cfg, origin, allowedOrigin)
			if exposedHeadersHeader != "" {
				resp.SetHeader("Access-Control-Expose-Headers", exposedHeadersHeader)
			}
			resp.SetHeader("Access-Control-Allow-Methods", allowedMethodsHeader)
			resp.SetHeader("Access-Control-Allow-Headers", allowedHeadersHeader)
			resp.SetHeader("Access-Control-Max-Age", maxAgeHeader)
			return resp, nil
		}

		resp, err := next.Call(c)
		if resp != nil {
			setOriginHeaders(resp, cfg, origin, allowedOrigin)
			if exposedHeadersHeader != "" {
				resp.SetHeader("Access-Control-Expose-Headers", exposedHeadersHeader)
			}
		}
		return resp, err
	}
}

func resolveOrigin(cfg *config, origin string) string {
	switch {
	case cfg.allowAllOrigins:
		return "*"
	case cfg.allowOriginFunc != nil:
		if cfg.allowOriginFunc(origin) {
			return origin
		}
	case slices.Contains(cfg.allowedOrigins, origin):
		return origin
	}
	return ""
}

func setOriginHeaders(resp *router.Response, cfg *config, origin, allowedOrigin string) {
	if cfg.allowCredentials && allowedOrigin == "*" {
		resp.SetHeader("Access-Control-Allow-Origin", origin)
		resp.SetHeader("Access-Control-Allow-Credentials", "true")
		return
	}
	resp.SetHeader("Access-Control-Allow-Origin", allowedOrigin)
	if cfg.allowCredentials {
		resp.SetHeader("Access-Control-Allow-Credentials", "true")
	}
}
