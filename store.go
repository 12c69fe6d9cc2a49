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

// store is a flat, append-only arena of nodes addressed by stable integer
// keys (§3 "Route Store", grounded in via-router/src/routes.rs's
// RouteStore/RouteEntry). Removal is not supported; the trie is built once
// at configure time and read thereafter.
type store struct {
	nodes []node
}

// newStore returns a store pre-seeded with the root node at rootKey.
func newStore() *store {
	s := &store{nodes: make([]node, 0, 256)}
	s.nodes = append(s.nodes, node{pattern: pattern{kind: kindRoot}})
	return s
}

// insert appends n to the store and returns its new key.
func (s *store) insert(n node) nodeKey {
	key := nodeKey(len(s.nodes))
	s.nodes = append(s.nodes, n)
	return key
}

// at returns a pointer to the node addressed by key. The pointer is only
// valid until the next insert (append may reallocate the backing array);
// callers that need a stable reference across inserts must re-fetch by key.
func (s *store) at(key nodeKey) *node {
	return &s.nodes[key]
}

// appendChild inserts a new node and registers it as a child of parent,
// returning the new child's key.
func (s *store) appendChild(parent nodeKey, child node) nodeKey {
	key := s.insert(child)
	s.nodes[parent].children = append(s.nodes[parent].children, key)
	return key
}
