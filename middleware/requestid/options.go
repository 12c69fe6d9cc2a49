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

// Package requestid provides middleware for generating and managing
// unique request IDs for distributed tracing and request correlation.
package requestid

// WithHeader sets the header name carrying the request ID. Default:
// "X-Request-ID".
func WithHeader(headerName string) Option {
	return func(cfg *config) {
		cfg.headerName = headerName
	}
}

// WithULID switches the default generator to produce ULIDs instead of
// UUIDs: shorter, lexicographically sortable by creation time.
func WithULID() Option {
	return func(cfg *config) {
		cfg.generator = generateULID
	}
}

// WithGenerator sets a custom function to generate request IDs. By
// default, a random UUID is used.
func WithGenerator(generator func() string) Option {
	return func(cfg *config) {
		cfg.generator = generator
	}
}

// WithAllowClientID controls whether a request ID supplied by the client
// in the configured header is trusted, or always overwritten with a
// server-generated one. Default: true.
func WithAllowClientID(allow bool) Option {
	return func(cfg *config) {
		cfg.allowClientID = allow
	}
}
