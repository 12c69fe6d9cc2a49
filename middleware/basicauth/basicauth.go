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

package basicauth

import (
	"context"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"rivaas.dev/router"
	"rivaas.dev/router/middleware"
)

// Option configures the basicauth middleware.
type Option func(*config)

type config struct {
	users       map[string]string
	hashedUsers map[string][]byte
	realm       string
	validator   func(username, password string) bool
	skipPaths   map[string]bool
}

func defaultConfig() *config {
	return &config{
		users:       make(map[string]string),
		hashedUsers: make(map[string][]byte),
		realm:       "Restricted",
		skipPaths:   make(map[string]bool),
	}
}

// New returns a middleware implementing HTTP Basic Authentication
// (RFC 7617). Credentials are compared in constant time; bcrypt-hashed
// passwords set via WithHashedUsers take precedence over the plaintext
// WithUsers map, which in turn yields to WithValidator.
//
// Always run behind TLS — Basic Auth transmits credentials base64-encoded,
// not encrypted.
//
// Basic usage:
//
//	r.Use(basicauth.New(basicauth.WithUsers(map[string]string{
//	    "admin": "secretpass",
//	})))
//
// With bcrypt-hashed passwords:
//
//	r.Use(basicauth.New(basicauth.WithHashedUsers(map[string][]byte{
//	    "admin": hashedPassword,
//	})))
func New(opts ...Option) router.MiddlewareFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	authenticateHeader := `Basic realm="` + cfg.realm + `"`

	return func(c *router.Context, next router.Next) (*router.Response, error) {
		if cfg.skipPaths[c.URI().Path] {
			return next.Call(c)
		}

		username, password, ok := parseBasicAuth(c.Headers().Get("Authorization"))
		if !ok || !authenticate(cfg, username, password) {
			return unauthorized(authenticateHeader), nil
		}

		ctx := context.WithValue(c.RequestContext(), middleware.AuthUsernameKey, username)
		c.Request = c.Request.WithContext(ctx)
		return next.Call(c)
	}
}

func parseBasicAuth(header string) (username, password string, ok bool) {
	const prefix = "Basic "
	if header == "" || !strings.HasPrefix(header, prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	credentials := string(decoded)
	colon := strings.IndexByte(credentials, ':')
	if colon == -1 {
		return "", "", false
	}
	return credentials[:colon], credentials[colon+1:], true
}

func authenticate(cfg *config, username, password string) bool {
	if cfg.validator != nil {
		return cfg.validator(username, password)
	}
	if hash, ok := cfg.hashedUsers[username]; ok {
		return bcrypt.CompareHashAndPassword(hash, []byte(password)) == nil
	}
	expected, ok := cfg.users[username]
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(password), []byte(expected)) == 1
}

func unauthorized(authenticateHeader string) *router.Response {
	return router.NewResponse(http.StatusUnauthorized).
		SetHeader("WWW-Authenticate", authenticateHeader).
		JSON(map[string]string{"error": "unauthorized"})
}

// GetUsername retrieves the authenticated username set by New, or "" if
// no authentication occurred on this request.
func GetUsername(c *router.Context) string {
	username, _ := c.RequestContext().Value(middleware.AuthUsernameKey).(string)
	return username
}
