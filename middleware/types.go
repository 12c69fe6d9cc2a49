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

// Package middleware holds context keys shared across the middleware
// subpackages, so two subpackages never collide on the same string key.
package middleware

// ContextKey is the type of every key this package defines for
// context.Context.Value, avoiding collisions with other packages' keys.
type ContextKey string

const (
	// RequestIDKey stores the request ID set by middleware/requestid and
	// read by middleware/accesslog.
	RequestIDKey ContextKey = "middleware.request_id"

	// AuthUsernameKey stores the authenticated username set by
	// middleware/basicauth.
	AuthUsernameKey ContextKey = "middleware.auth_username"

	// OriginalMethodKey stores the original HTTP method before rewrite by
	// middleware/methodoverride.
	OriginalMethodKey ContextKey = "middleware.original_method"
)
