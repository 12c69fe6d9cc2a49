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

// Package trailingslash normalizes or enforces trailing-slash policy on
// request paths.
package trailingslash

import (
	"net/http"
	"strings"

	"rivaas.dev/router"
)

// Policy selects how a trailing slash mismatch is handled.
type Policy int

const (
	// PolicyRemove redirects /users/ to /users (308). The root path "/" is
	// never redirected.
	PolicyRemove Policy = iota

	// PolicyAdd redirects /users to /users/ (308). The root path "/" is
	// never redirected.
	PolicyAdd

	// PolicyStrict answers 404 when the request's trailing slash differs
	// from the matched route's pattern (New); Wrap passes every request
	// through unchanged under this policy.
	PolicyStrict
)

// Option configures the middleware.
type Option func(*config)

type config struct {
	policy Policy
}

func defaultConfig() *config {
	return &config{policy: PolicyRemove}
}

// WithPolicy sets the trailing slash policy. Default: PolicyRemove.
func WithPolicy(p Policy) Option {
	return func(c *config) {
		c.policy = p
	}
}

// Wrap applies the policy at the http.Handler level, before route
// resolution: PolicyRemove and PolicyAdd redirect (308) whether or not a
// route would match, and PolicyStrict passes every request through.
func Wrap(h http.Handler, opts ...Option) http.Handler {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path
		if path == "/" {
			h.ServeHTTP(w, r)
			return
		}

		hasSlash := strings.HasSuffix(path, "/")
		switch cfg.policy {
		case PolicyRemove:
			if hasSlash {
				redirect308HTTP(w, r, strings.TrimSuffix(path, "/"))
				return
			}
		case PolicyAdd:
			if !hasSlash {
				redirect308HTTP(w, r, path+"/")
				return
			}
		case PolicyStrict:
		}

		h.ServeHTTP(w, r)
	})
}

func redirect308HTTP(w http.ResponseWriter, r *http.Request, newPath string) {
	newURL := *r.URL
	newURL.Path = newPath
	w.Header().Set("Location", newURL.String())
	w.WriteHeader(http.StatusPermanentRedirect)
}

// New returns middleware enforcing the trailing slash policy after route
// resolution has already taken place.
//
// Registered with Use, it runs for every request, matched or not.
// PolicyRemove and PolicyAdd redirect on the request path alone. The trie
// ignores trailing slashes, so /users and /users/ resolve to the same
// route; under PolicyStrict New compares the request path with the matched
// route's pattern and answers 404 when only one of them ends in a slash.
// Requests that matched no route are passed on.
func New(opts ...Option) router.MiddlewareFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context, next router.Next) (*router.Response, error) {
		path := c.URI().Path
		if path == "/" {
			return next.Call(c)
		}

		hasSlash := strings.HasSuffix(path, "/")
		switch cfg.policy {
		case PolicyRemove:
			if hasSlash {
				return redirect308(c, strings.TrimSuffix(path, "/")), nil
			}
		case PolicyAdd:
			if !hasSlash {
				return redirect308(c, path+"/"), nil
			}
		case PolicyStrict:
			if pattern := c.RoutePattern(); pattern != "" && strings.HasSuffix(pattern, "/") != hasSlash {
				return router.NewResponse(http.StatusNotFound).String(http.StatusText(http.StatusNotFound)), nil
			}
		}

		return next.Call(c)
	}
}

func redirect308(c *router.Context, newPath string) *router.Response {
	newURL := *c.URI()
	newURL.Path = newPath
	return router.NewResponse(http.StatusPermanentRedirect).
		SetHeader("Location", newURL.String())
}
