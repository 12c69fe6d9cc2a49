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
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// Option configures a Router at construction time (the teacher's
// functional-options pattern, options.go).
type Option func(*Router)

var defaultMethods = [...]string{
	http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch,
	http.MethodDelete, http.MethodHead, http.MethodOptions,
}

// Router owns one Pattern Trie per HTTP method (§3 "Trie Node" /
// §4.B-D), built during the configure phase and read-only once Serve is
// called, plus the ambient plumbing every request passes through:
// the resolution cache (F), the context pool (P), and the observability
// hooks (O).
type Router struct {
	trees   map[string]*Trie
	treesMu sync.RWMutex

	cache *resolutionCache
	pool  *contextPool

	logger        *slog.Logger
	observability ObservabilityRecorder

	state any

	bodyLimit        int64
	cacheCapacity    int
	connectionCap    int
	handshakeTimeout time.Duration
	serverTimeouts   *serverTimeouts
	enableH2C        bool

	noRoute MiddlewareFunc

	realip *realIPConfig

	server   *http.Server
	serverMu sync.Mutex
}

const (
	defaultBodyLimit        int64 = 4 << 20 // 4MiB, matches the teacher's bodylimit default order of magnitude
	defaultCacheCapacity          = 1024
	defaultConnectionCap          = 10_000
	defaultHandshakeTimeout       = 5 * time.Second
)

// New constructs a Router with its per-method tries and ambient plumbing
// initialized, applying opts in order (§7 "Registration").
func New(opts ...Option) *Router {
	r := &Router{
		trees:            make(map[string]*Trie, len(defaultMethods)),
		logger:           noopLogger,
		bodyLimit:        defaultBodyLimit,
		cacheCapacity:    defaultCacheCapacity,
		connectionCap:    defaultConnectionCap,
		handshakeTimeout: defaultHandshakeTimeout,
		serverTimeouts:   defaultServerTimeouts(),
	}
	for _, m := range defaultMethods {
		r.trees[m] = NewTrie()
	}

	for _, opt := range opts {
		opt(r)
	}

	r.cache = newResolutionCache(r.cacheCapacity)
	r.pool = newContextPool(r)

	return r
}

// MustNew is New, kept as a separate name for parity with call sites
// written against a fallible constructor. New never fails — Router
// construction allocates memory and applies options, nothing more — so
// MustNew never panics either.
func MustNew(opts ...Option) *Router {
	return New(opts...)
}

// treeFor returns the Trie for method, creating one on first use for
// non-standard methods (e.g. WebDAV verbs).
func (r *Router) treeFor(method string) *Trie {
	r.treesMu.RLock()
	t, ok := r.trees[method]
	r.treesMu.RUnlock()
	if ok {
		return t
	}

	r.treesMu.Lock()
	defer r.treesMu.Unlock()
	if t, ok = r.trees[method]; ok {
		return t
	}
	t = NewTrie()
	r.trees[method] = t
	return t
}

// Handle registers handler, preceded by mw, at pattern for method. It
// panics on a registration error (unsafe literal, duplicate catch-all,
// child-after-catch-all, §4.D) since these are programmer errors caught
// at startup, never user input.
func (r *Router) Handle(method, pattern string, handler MiddlewareFunc, mw ...MiddlewareFunc) {
	h, err := r.treeFor(method).At(pattern)
	if err != nil {
		panic("router: " + err.Error())
	}
	for _, m := range mw {
		h.AppendPartial(m)
	}
	h.AppendExact(handler)
}

// GET registers a handler for GET requests at pattern.
func (r *Router) GET(pattern string, handler MiddlewareFunc, mw ...MiddlewareFunc) {
	r.Handle(http.MethodGet, pattern, handler, mw...)
}

// POST registers a handler for POST requests at pattern.
func (r *Router) POST(pattern string, handler MiddlewareFunc, mw ...MiddlewareFunc) {
	r.Handle(http.MethodPost, pattern, handler, mw...)
}

// PUT registers a handler for PUT requests at pattern.
func (r *Router) PUT(pattern string, handler MiddlewareFunc, mw ...MiddlewareFunc) {
	r.Handle(http.MethodPut, pattern, handler, mw...)
}

// PATCH registers a handler for PATCH requests at pattern.
func (r *Router) PATCH(pattern string, handler MiddlewareFunc, mw ...MiddlewareFunc) {
	r.Handle(http.MethodPatch, pattern, handler, mw...)
}

// DELETE registers a handler for DELETE requests at pattern.
func (r *Router) DELETE(pattern string, handler MiddlewareFunc, mw ...MiddlewareFunc) {
	r.Handle(http.MethodDelete, pattern, handler, mw...)
}

// HEAD registers a handler for HEAD requests at pattern.
func (r *Router) HEAD(pattern string, handler MiddlewareFunc, mw ...MiddlewareFunc) {
	r.Handle(http.MethodHead, pattern, handler, mw...)
}

// OPTIONS registers a handler for OPTIONS requests at pattern.
func (r *Router) OPTIONS(pattern string, handler MiddlewareFunc, mw ...MiddlewareFunc) {
	r.Handle(http.MethodOptions, pattern, handler, mw...)
}

// Use registers mw as a Partial condition (§3 "Partial") at the root of
// every currently-registered method tree, so it runs on every request
// regardless of which node ultimately terminates the resolution.
func (r *Router) Use(mw ...MiddlewareFunc) {
	r.treesMu.RLock()
	defer r.treesMu.RUnlock()
	for _, t := range r.trees {
		root := Handle{trie: t, key: rootKey}
		for _, m := range mw {
			root.AppendPartial(m)
		}
	}
}

// NoRoute overrides the handler invoked when a request reaches no
// registered route. It runs as the terminal entry of the dispatch chain —
// after every Partial (Use) middleware for the request, in place of the
// built-in 404 — regardless of whether any route-specific bindings matched.
func (r *Router) NoRoute(handler MiddlewareFunc) {
	r.noRoute = handler
}

// ServeHTTP implements http.Handler (§4.L "per-request path": codec
// yields head+body, the adapter constructs the envelope, runs resolver +
// dispatch, and writes the response).
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	resp := r.dispatch(w, req)
	resp.writeTo(w)
}

func (r *Router) dispatch(w http.ResponseWriter, req *http.Request) *Response {
	path := req.URL.Path
	key := cacheKey(req.Method, path)

	var bindings []Binding
	if descriptors, hit := r.cache.get(key); hit {
		bindings = bindingsFromDescriptors(descriptors)
	} else {
		bindings = r.treeFor(req.Method).Resolve(path)
		r.cache.put(key, descriptorsFromBindings(bindings))
	}

	c := r.pool.Get()
	defer r.pool.Put(c)
	c.prepare(req, r)
	c.bindParams(bindings)
	if pattern := terminalPattern(bindings); pattern != "" {
		c.routePattern = pattern
	}

	chain := buildChain(bindings)
	if r.noRoute != nil {
		chain = append(chain, r.noRoute)
	}

	var obsState any
	if r.observability != nil {
		obsState = r.observability.OnRequestStart(c)
	}

	resp, err := newNext(chain).Call(c)
	if err != nil {
		resp = rescueToResponse(err, func(secondary error) {
			if r.observability != nil {
				r.observability.OnSecondaryFailure(c, secondary)
			}
		})
	}
	if resp == nil {
		resp = internalServerErrorResponse()
	}

	if r.observability != nil {
		r.observability.OnRequestEnd(c, obsState, resp.Status)
	}

	return resp
}

// cacheKey composes the resolution cache's key from method and path: the
// trie is per-method (treeFor), so a cache keyed on path alone would let a
// GET's cached bindings answer a POST to the same path. "\x00" can't occur
// in an HTTP method token, so method+sep+path is unambiguous.
func cacheKey(method, path string) string {
	return method + "\x00" + path
}

// terminalPattern returns the raw pattern string the resolution's terminal
// (exact) binding was registered under, or "" if nothing matched exactly
// or the matching node has no route payload. The first exact binding in
// chain order is the route whose handler runs first: a static match comes
// before its dynamic sibling, and a catch-all before deeper routes.
func terminalPattern(bindings []Binding) string {
	for _, b := range bindings {
		if b.exact && b.route != nil && b.route.pattern != "" {
			return b.route.pattern
		}
	}
	return ""
}
