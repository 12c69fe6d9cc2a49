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

// Package basicauth implements HTTP Basic Authentication (RFC 7617) as
// router middleware.
package basicauth

// WithUsers sets the allowed username/password pairs, compared in
// constant time. Yields to WithHashedUsers and WithValidator.
func WithUsers(users map[string]string) Option {
	return func(cfg *config) {
		cfg.users = users
	}
}

// WithHashedUsers sets username to bcrypt-hash pairs, checked with
// bcrypt.CompareHashAndPassword. Takes precedence over WithUsers.
func WithHashedUsers(users map[string][]byte) Option {
	return func(cfg *config) {
		cfg.hashedUsers = users
	}
}

// WithRealm sets the authentication realm shown in the browser's
// credential prompt. Default: "Restricted".
func WithRealm(realm string) Option {
	return func(cfg *config) {
		cfg.realm = realm
	}
}

// WithValidator sets a custom validation function, taking precedence over
// both WithUsers and WithHashedUsers — useful for a database or LDAP
// lookup.
func WithValidator(validator func(username, password string) bool) Option {
	return func(cfg *config) {
		cfg.validator = validator
	}
}

// WithSkipPaths exempts the given paths from authentication.
func WithSkipPaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.skipPaths[p] = true
		}
	}
}
