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

package router

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
)

// noopLogger is the zero-value Context logger, used until the Server
// Adapter or an observability hook attaches a request-scoped one.
var noopLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// paramCapture is one ordered (name, span) entry threaded from the
// resolver's Bindings into the envelope, per §3 "Request Envelope".
type paramCapture struct {
	name       string
	start, end int
}

// Context is the per-request envelope threaded through the dispatch chain
// (§3 "Request Envelope", §4.H). It is pooled (component P, pool.go) and
// must not be retained past the request's lifetime — the same rule the
// teacher's Context documents for its own pooled instances.
//
// Thread safety: a Context is bound to the single goroutine dispatching its
// request and must not be shared across goroutines without copying out the
// data first.
type Context struct {
	Request *http.Request

	router *Router
	path   string // Request.URL.Path, kept for zero-copy capture slicing

	params []paramCapture
	state  any

	extensions map[string]any

	body Body

	logger *slog.Logger

	routePattern string
}

// newContext allocates a bare Context; pool.go is the only caller outside
// tests.
func newContext() *Context {
	return &Context{}
}

// reset clears c for reuse by the pool.
func (c *Context) reset() {
	c.Request = nil
	c.router = nil
	c.path = ""
	c.params = c.params[:0]
	c.state = nil
	if c.extensions != nil {
		clear(c.extensions)
	}
	c.body = Body{}
	c.logger = nil
	c.routePattern = ""
}

// prepare initializes c for an incoming request. Called by the Router
// before resolution.
func (c *Context) prepare(r *http.Request, rtr *Router) {
	c.Request = r
	c.router = rtr
	c.path = r.URL.Path
	c.logger = rtr.logger
	c.state = rtr.state
	c.body = newBody(r.Body, rtr.bodyLimit)
}

// bindParams copies capture spans from bindings into the envelope's
// parameter list (§4.H "parameter map"). Only Dynamic/CatchAll bindings
// carry a capture.
func (c *Context) bindParams(bindings []Binding) {
	for _, b := range bindings {
		name, start, end, ok := b.Capture()
		if !ok {
			continue
		}
		c.params = append(c.params, paramCapture{name: name, start: start, end: end})
	}
}

// ParamHandle is the thin, lazily-materialized view into a captured
// parameter returned by Param (§4.H "param(name)"). The zero value
// represents an absent parameter.
type ParamHandle struct {
	path       string
	start, end int
	found      bool
}

// Require yields the raw byte-span slice of the captured segment, or a 400
// Error if the parameter was never bound.
func (h ParamHandle) Require() (string, error) {
	if !h.found {
		return "", Errorf(http.StatusBadRequest, "router: missing required parameter")
	}
	return h.path[h.start:h.end], nil
}

// PercentDecode returns the percent-decoded parameter value. The result is
// the original slice, unmodified, when no escape sequences are present.
func (h ParamHandle) PercentDecode() (string, error) {
	raw, err := h.Require()
	if err != nil {
		return "", err
	}
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		return "", Errorf(http.StatusBadRequest, "router: invalid percent-encoding in parameter: %v", err)
	}
	return decoded, nil
}

// Found reports whether the handle refers to a bound parameter.
func (h ParamHandle) Found() bool { return h.found }

// Param resolves a capture by name, scanning the envelope's ordered
// parameter list (§4.H). Later-bound entries (deeper in the trie) shadow
// earlier ones with the same name, matching resolution order.
func (c *Context) Param(name string) ParamHandle {
	for i := len(c.params) - 1; i >= 0; i-- {
		p := c.params[i]
		if p.name == name {
			return ParamHandle{path: c.path, start: p.start, end: p.end, found: true}
		}
	}
	return ParamHandle{}
}

// State returns the application's shared per-app typed value (§4.H
// "state()"). Callers type-assert to the concrete type registered via
// WithState.
func (c *Context) State() any {
	return c.state
}

// Headers returns the request's header map (§4.H "headers()").
func (c *Context) Headers() http.Header {
	return c.Request.Header
}

// Method returns the request's HTTP method (§4.H "method()").
func (c *Context) Method() string {
	return c.Request.Method
}

// URI returns the request's URL (§4.H "uri()").
func (c *Context) URI() *url.URL {
	return c.Request.URL
}

// ProtoVersion returns the request's protocol version string (§4.H
// "version()"), e.g. "HTTP/1.1" or "HTTP/2.0".
func (c *Context) ProtoVersion() string {
	return c.Request.Proto
}

// Body returns the length-limited body handle, movable out of the
// envelope (§4.H "body()", §4.I). Consuming it twice returns the same
// exhausted reader; callers should treat it as consumable at most once.
func (c *Context) Body() Body {
	return c.body
}

// ExtensionsMut returns the mutable request-scoped annotation map used by
// middleware to stash values for downstream handlers (§4.H
// "extensions_mut()"), e.g. an authenticated user populated by basicauth.
// The map is lazily allocated on first use.
func (c *Context) ExtensionsMut() map[string]any {
	if c.extensions == nil {
		c.extensions = make(map[string]any, 4)
	}
	return c.extensions
}

// Logger returns the request-scoped logger, never nil.
func (c *Context) Logger() *slog.Logger {
	if c.logger != nil {
		return c.logger
	}
	return noopLogger
}

// RoutePattern returns the registration string of the terminal binding
// matched for this request, if resolution reached one.
func (c *Context) RoutePattern() string {
	return c.routePattern
}

// RequestContext returns the request's context.Context, for cancellation
// and deadline propagation into downstream calls.
func (c *Context) RequestContext() context.Context {
	return c.Request.Context()
}
