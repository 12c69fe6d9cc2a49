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

import "net/http"

// MiddlewareFunc is the contract every middleware and route handler
// satisfies (§4.G/J middleware contract). A middleware must either return a
// response directly, call next.Call(c) and return its (possibly mapped)
// result, or return an error. It may mutate c before delegating.
type MiddlewareFunc func(c *Context, next Next) (*Response, error)

// Next is a first-class pop-front continuation over the dispatch chain
// (§4.J, §9 "Continuation as explicit object"). It is plain, immutable data:
// calling Call does not mutate the Next value itself, so the same Next can
// be safely reused by a middleware that wants to invoke the remainder of
// the chain more than once (e.g. to retry).
type Next struct {
	chain []MiddlewareFunc
	pos   int
}

// newNext builds a Next over the full dispatch chain, starting at the
// front.
func newNext(chain []MiddlewareFunc) Next {
	return Next{chain: chain}
}

// Call pops the front entry and invokes it with a Next advanced past it.
// If the chain is exhausted, Call yields a 404 Not Found response (§4.J
// "Dispatch terminal").
func (n Next) Call(c *Context) (*Response, error) {
	if n.pos >= len(n.chain) {
		return notFoundResponse(), nil
	}
	handler := n.chain[n.pos]
	return handler(c, Next{chain: n.chain, pos: n.pos + 1})
}

// Remaining reports how many entries are left in the chain, for
// introspection/testing (property 5, §8).
func (n Next) Remaining() int {
	return len(n.chain) - n.pos
}

func notFoundResponse() *Response {
	resp := &Response{
		Status: http.StatusNotFound,
		Header: make(http.Header),
		Body:   bufferBody([]byte(http.StatusText(http.StatusNotFound))),
	}
	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	return resp
}

// buildChain concatenates the applicable conditions of each binding, in
// binding order, per §4.G: Partial entries always included, Exact entries
// only when the binding is the resolution's terminal.
func buildChain(bindings []Binding) []MiddlewareFunc {
	var chain []MiddlewareFunc
	for _, b := range bindings {
		if b.route == nil {
			continue
		}
		for _, cond := range b.route.conditions {
			if cond.partial || b.exact {
				chain = append(chain, cond.handler)
			}
		}
	}
	return chain
}
