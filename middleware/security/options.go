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

package security

// Option configures the security middleware.
type Option func(*config)

type config struct {
	frameOptions          string
	contentTypeNosniff    bool
	xssProtection         string
	contentSecurityPolicy string
	referrerPolicy        string
	permissionsPolicy     string
	hstsMaxAge            int
	hstsIncludeSubDomains bool
	hstsPreload           bool
	customHeaders         map[string]string
	disabled              bool
}

func defaultConfig() *config {
	return &config{
		frameOptions:          "DENY",
		contentTypeNosniff:    true,
		xssProtection:         "1; mode=block",
		contentSecurityPolicy: "default-src 'self'",
		referrerPolicy:        "strict-origin-when-cross-origin",
		customHeaders:         make(map[string]string),
	}
}

// WithFrameOptions sets X-Frame-Options. Default: "DENY". Pass "" to omit
// the header entirely.
func WithFrameOptions(value string) Option {
	return func(cfg *config) { cfg.frameOptions = value }
}

// WithContentTypeNosniff toggles X-Content-Type-Options: nosniff. Default:
// true.
func WithContentTypeNosniff(enabled bool) Option {
	return func(cfg *config) { cfg.contentTypeNosniff = enabled }
}

// WithXSSProtection sets X-XSS-Protection. Default: "1; mode=block".
func WithXSSProtection(value string) Option {
	return func(cfg *config) { cfg.xssProtection = value }
}

// WithContentSecurityPolicy sets Content-Security-Policy. Default:
// "default-src 'self'". Pass "" to omit the header entirely.
func WithContentSecurityPolicy(value string) Option {
	return func(cfg *config) { cfg.contentSecurityPolicy = value }
}

// WithReferrerPolicy sets Referrer-Policy. Default:
// "strict-origin-when-cross-origin".
func WithReferrerPolicy(value string) Option {
	return func(cfg *config) { cfg.referrerPolicy = value }
}

// WithPermissionsPolicy sets Permissions-Policy. Unset by default.
func WithPermissionsPolicy(value string) Option {
	return func(cfg *config) { cfg.permissionsPolicy = value }
}

// WithHSTS sets Strict-Transport-Security, emitted only on requests whose
// underlying connection is TLS. maxAge of 0 disables it.
func WithHSTS(maxAgeSeconds int, includeSubDomains, preload bool) Option {
	return func(cfg *config) {
		cfg.hstsMaxAge = maxAgeSeconds
		cfg.hstsIncludeSubDomains = includeSubDomains
		cfg.hstsPreload = preload
	}
}

// WithCustomHeader attaches an additional header to every response.
func WithCustomHeader(key, value string) Option {
	return func(cfg *config) {
		cfg.customHeaders[key] = value
	}
}

// DevelopmentPreset relaxes CSP to permit inline scripts/styles and eval,
// disables HSTS, and uses SAMEORIGIN framing — suited to local development
// against a non-TLS server.
func DevelopmentPreset() Option {
	return func(cfg *config) {
		cfg.contentSecurityPolicy = "default-src 'self' 'unsafe-inline' 'unsafe-eval'"
		cfg.frameOptions = "SAMEORIGIN"
		cfg.hstsMaxAge = 0
	}
}

// NoSecurityHeaders disables every header this middleware would otherwise
// set, leaving any headers a handler sets itself untouched.
func NoSecurityHeaders() Option {
	return func(cfg *config) {
		cfg.disabled = true
	}
}
