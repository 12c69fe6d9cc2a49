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

// Trie is a radix-like tree of path segments compiled from registered
// patterns (§3, §4.D). It is built during the application-configure phase
// and is read-only once requests start being served.
type Trie struct {
	store *store
}

// NewTrie returns an empty Trie containing only the root node.
func NewTrie() *Trie {
	return &Trie{store: newStore()}
}

// Handle is returned by At and lets the caller attach middleware
// conditions to the node reached by the registered pattern.
type Handle struct {
	trie    *Trie
	key     nodeKey
	pattern string
}

// AppendPartial registers h to run whenever this node is visited during
// resolution, whether or not it is the exact terminal (§3 "Partial").
func (h Handle) AppendPartial(handler MiddlewareFunc) {
	h.trie.store.at(h.key).orCreateRoute().appendPartial(handler)
}

// AppendExact registers h to run only when this node is the exact
// terminal of a resolution (§3 "Exact"). It also records the pattern this
// node was reached by, so dispatch can report it via Context.RoutePattern.
func (h Handle) AppendExact(handler MiddlewareFunc) {
	route := h.trie.store.at(h.key).orCreateRoute()
	route.pattern = h.pattern
	route.appendExact(handler)
}

// At inserts pattern into the trie, creating or reusing nodes for each
// segment, and returns a Handle to the final segment's node (§4.D). "" and
// "/" both resolve to the root node's Handle.
func (t *Trie) At(rawPattern string) (Handle, error) {
	segments := splitPatternSegments(rawPattern)
	current := rootKey

	for _, raw := range segments {
		p, err := parseSegment(raw)
		if err != nil {
			return Handle{}, err
		}

		parent := t.store.at(current)
		if parent.pattern.kind == kindCatchAll {
			return Handle{}, ErrChildAfterCatchAll
		}

		switch p.kind {
		case kindStatic:
			if key, ok := parent.staticChild(t.store, p.literal); ok {
				current = key
				continue
			}
			current = t.store.appendChild(current, node{pattern: p})

		case kindDynamic:
			if key, ok := parent.dynamicChild(t.store); ok {
				current = key
				continue
			}
			current = t.store.appendChild(current, node{pattern: p})

		case kindCatchAll:
			if _, ok := parent.catchAllChild(t.store); ok {
				return Handle{}, ErrDuplicateCatchAll
			}
			current = t.store.appendChild(current, node{pattern: p})
		}
	}

	return Handle{trie: t, key: current, pattern: rawPattern}, nil
}
