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

// Binding is one per-node output of a resolution (§3 "Binding"). capture is
// a byte-offset span into the original request path; hasCapture is false
// for Static and Root nodes.
type Binding struct {
	key        nodeKey
	exact      bool
	hasCapture bool
	start, end int
	paramName  string
	route      *routePayload
}

// Exact reports whether this binding's node is the resolution's terminal.
func (b Binding) Exact() bool { return b.exact }

// Capture returns the captured parameter name and the (start, end) byte
// span into the path that produced this binding, if any.
func (b Binding) Capture() (name string, start, end int, ok bool) {
	return b.paramName, b.start, b.end, b.hasCapture
}

// frontierEntry is one candidate node the resolver is currently considering
// at a given segment depth.
type frontierEntry struct {
	key nodeKey
}

// Resolve walks the trie for path and returns the ordered sequence of
// Bindings produced by the algorithm in §4.E. The root binding is always
// emitted first; Static children are visited before Dynamic before
// CatchAll at each depth, and insertion order breaks ties within a kind
// (guaranteed by node.children's append order, see §4.D).
func (t *Trie) Resolve(path string) []Binding {
	bindings := make([]Binding, 0, 4)

	splitter := newPathSplitter(path)
	firstStart, _, hasSegments := splitter.next()

	bindings = append(bindings, Binding{
		key:   rootKey,
		exact: !hasSegments,
		route: t.store.at(rootKey).route,
	})

	if !hasSegments {
		return bindings
	}

	frontier := []frontierEntry{{key: rootKey}}
	start, end := firstStart, 0
	for i := 0; ; i++ {
		if i == 0 {
			// Re-derive end for the first segment (splitter already
			// consumed it to test hasSegments).
			end = firstStart
			for end < len(path) && path[end] != '/' {
				end++
			}
		} else {
			s, e, ok := splitter.next()
			if !ok {
				break
			}
			start, end = s, e
		}

		segment := path[start:end]
		_, _, nextOK := peekNext(splitter)
		isLast := !nextOK

		var nextFrontier []frontierEntry

		for _, fe := range frontier {
			parent := t.store.at(fe.key)

			if key, ok := parent.staticChild(t.store, segment); ok {
				exact := isLast
				bindings = append(bindings, Binding{key: key, exact: exact, route: t.store.at(key).route})
				if !exact {
					nextFrontier = append(nextFrontier, frontierEntry{key: key})
				}
			}

			if key, ok := parent.dynamicChild(t.store); ok {
				child := t.store.at(key)
				exact := isLast
				bindings = append(bindings, Binding{
					key: key, exact: exact, hasCapture: true, start: start, end: end,
					paramName: child.pattern.name, route: child.route,
				})
				if !exact {
					nextFrontier = append(nextFrontier, frontierEntry{key: key})
				}
			}

			// CatchAll is terminal (§3 invariant): it absorbs this segment
			// and every segment that follows, but only for this branch —
			// sibling branches in the frontier keep matching normally.
			if key, ok := parent.catchAllChild(t.store); ok {
				child := t.store.at(key)
				bindings = append(bindings, Binding{
					key: key, exact: true, hasCapture: true, start: start, end: len(path),
					paramName: child.pattern.name, route: child.route,
				})
			}
		}

		frontier = nextFrontier
		if len(frontier) == 0 {
			break
		}
	}

	return bindings
}

// peekNext reports whether the splitter has another segment, without
// consuming it from the caller's perspective (splitter is passed by value,
// so calling next() on the copy does not advance the caller's splitter).
func peekNext(splitter pathSplitter) (start, end int, ok bool) {
	return splitter.next()
}
