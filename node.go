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

// nodeKey addresses a node in a store. Keys are stable for the lifetime of
// the trie; the zero value is the root's key, named rootKey.
type nodeKey int

const rootKey nodeKey = 0

// condition is a single tagged middleware entry attached to a route
// payload, per §3 "Route Payload" / §4.G. partial conditions run on any
// match of their node; non-partial ("exact") conditions run only when the
// node is the resolution's terminal.
type condition struct {
	partial bool
	handler MiddlewareFunc
}

// routePayload is the ordered list of conditions attached to a trie node
// that has had at least one pattern registered against it.
type routePayload struct {
	conditions []condition
	pattern    string // the raw pattern registered via AppendExact, e.g. "/users/:id"
}

func (p *routePayload) appendPartial(h MiddlewareFunc) {
	p.conditions = append(p.conditions, condition{partial: true, handler: h})
}

func (p *routePayload) appendExact(h MiddlewareFunc) {
	p.conditions = append(p.conditions, condition{partial: false, handler: h})
}

// node is one vertex of the pattern trie (§3 "Trie Node"). Children are
// stored as keys into the owning store rather than owning pointers, so the
// tree can be built without cyclic ownership and walked via plain index
// lookups (§9 "Arenas + indices instead of owning pointers").
type node struct {
	pattern  pattern
	children []nodeKey
	route    *routePayload
}

// staticChild returns the key of the Static child matching literal, if any.
func (n *node) staticChild(store *store, literal string) (nodeKey, bool) {
	for _, key := range n.children {
		child := store.at(key)
		if child.pattern.kind == kindStatic && child.pattern.literal == literal {
			return key, true
		}
	}
	return 0, false
}

// dynamicChild returns the key of the Dynamic child, if any (at most one
// per node, per §4.D).
func (n *node) dynamicChild(store *store) (nodeKey, bool) {
	for _, key := range n.children {
		if store.at(key).pattern.kind == kindDynamic {
			return key, true
		}
	}
	return 0, false
}

// catchAllChild returns the key of the CatchAll child, if any (at most one
// per node, per §3's invariant).
func (n *node) catchAllChild(store *store) (nodeKey, bool) {
	for _, key := range n.children {
		if store.at(key).pattern.kind == kindCatchAll {
			return key, true
		}
	}
	return 0, false
}

// orCreateRoute lazily allocates the node's route payload.
func (n *node) orCreateRoute() *routePayload {
	if n.route == nil {
		n.route = &routePayload{}
	}
	return n.route
}
