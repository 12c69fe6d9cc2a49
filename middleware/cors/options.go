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

// Package cors implements Cross-Origin Resource Sharing as router
// middleware.
package cors

// WithAllowedOrigins sets the exact origins permitted to make
// cross-origin requests.
func WithAllowedOrigins(origins ...string) Option {
	return func(cfg *config) {
		cfg.allowedOrigins = origins
	}
}

// WithAllowAllOrigins sets Access-Control-Allow-Origin to "*" for every
// request. Incompatible with WithAllowCredentials per the CORS spec; when
// both are set, the actual Origin is echoed back instead of "*".
func WithAllowAllOrigins(allow bool) Option {
	return func(cfg *config) {
		cfg.allowAllOrigins = allow
	}
}

// WithAllowedMethods sets the methods advertised in preflight responses.
func WithAllowedMethods(methods ...string) Option {
	return func(cfg *config) {
		cfg.allowedMethods = methods
	}
}

// WithAllowedHeaders sets the request headers advertised in preflight
// responses.
func WithAllowedHeaders(headers ...string) Option {
	return func(cfg *config) {
		cfg.allowedHeaders = headers
	}
}

// WithExposedHeaders sets the response headers browsers are permitted to
// read via Access-Control-Expose-Headers.
func WithExposedHeaders(headers ...string) Option {
	return func(cfg *config) {
		cfg.exposedHeaders = headers
	}
}

// WithAllowCredentials permits cookies/auth headers on cross-origin
// requests.
func WithAllowCredentials(allow bool) Option {
	return func(cfg *config) {
		cfg.allowCredentials = allow
	}
}

// WithMaxAge sets how long, in seconds, browsers may cache a preflight
// response.
func WithMaxAge(seconds int) Option {
	return func(cfg *config) {
		cfg.maxAge = seconds
	}
}

// WithAllowOriginFunc sets a custom predicate deciding whether an origin
// is allowed, taking precedence over WithAllowedOrigins.
func WithAllowOriginFunc(fn func(origin string) bool) Option {
	return func(cfg *config) {
		cfg.allowOriginFunc = fn
	}
}
