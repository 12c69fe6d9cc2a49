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

import "fmt"

// patternKind tags the closed set of segment matching rules a trie node can
// carry. Only the root node uses kindRoot.
type patternKind uint8

const (
	kindRoot patternKind = iota
	kindStatic
	kindDynamic
	kindCatchAll
)

// pattern is the matching rule attached to a single trie node. literal is
// populated for kindStatic, name for kindDynamic/kindCatchAll.
type pattern struct {
	kind    patternKind
	literal string
	name    string
}

func (p pattern) String() string {
	switch p.kind {
	case kindStatic:
		return p.literal
	case kindDynamic:
		return ":" + p.name
	case kindCatchAll:
		return "*" + p.name
	default:
		return "/"
	}
}

// segmentIsURLSafe reports whether every byte of a static literal segment
// falls within the ASCII set the routing pattern language allows for
// literals (RFC 3986 pchar minus the characters we reserve for the pattern
// language itself).
func segmentIsURLSafe(segment string) bool {
	for i := 0; i < len(segment); i++ {
		b := segment[i]
		switch {
		case b == 0x21, b >= 0x24 && b <= 0x3B, b == 0x3D, b >= 0x40 && b <= 0x5F,
			b >= 0x61 && b <= 0x7A, b == 0x7C, b == 0x7E:
			continue
		default:
			return false
		}
	}
	return true
}

// parseSegment classifies a single raw pattern segment (the text between two
// slashes in a registration string) into a pattern. The segment must be
// non-empty; callers skip empty segments before calling this.
func parseSegment(segment string) (pattern, error) {
	switch segment[0] {
	case ':':
		name := segment[1:]
		if name == "" {
			return pattern{}, fmt.Errorf("%w: %q", ErrEmptyParameterName, segment)
		}
		if !isValidParamName(name) {
			return pattern{}, fmt.Errorf("%w: %q", ErrInvalidParameterName, segment)
		}
		return pattern{kind: kindDynamic, name: name}, nil
	case '*':
		name := segment[1:]
		if name == "" {
			return pattern{}, fmt.Errorf("%w: %q", ErrEmptyParameterName, segment)
		}
		if !isValidParamName(name) {
			return pattern{}, fmt.Errorf("%w: %q", ErrInvalidParameterName, segment)
		}
		return pattern{kind: kindCatchAll, name: name}, nil
	default:
		if !segmentIsURLSafe(segment) {
			return pattern{}, fmt.Errorf("%w: %q", ErrUnsafeLiteral, segment)
		}
		return pattern{kind: kindStatic, literal: segment}, nil
	}
}

// isValidParamName reports whether a parameter name is non-empty
// alphanumeric-plus-underscore, per the routing pattern language (§6).
func isValidParamName(name string) bool {
	for i := 0; i < len(name); i++ {
		b := name[i]
		switch {
		case b >= '0' && b <= '9', b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z', b == '_':
			continue
		default:
			return false
		}
	}
	return true
}

// pathSplitter iterates a path (or pattern) string as (start, end) byte spans
// delimiting non-empty segments, ignoring empty segments produced by leading,
// trailing, or repeated slashes. It is the single implementation shared by
// pattern registration and request-path resolution, per §4.A's requirement
// that both uses be identical.
type pathSplitter struct {
	path string
	pos  int
}

func newPathSplitter(path string) pathSplitter {
	return pathSplitter{path: path}
}

// next returns the next non-empty segment's byte span. ok is false once the
// path is exhausted.
func (s *pathSplitter) next() (start, end int, ok bool) {
	n := len(s.path)
	for s.pos < n {
		for s.pos < n && s.path[s.pos] == '/' {
			s.pos++
		}
		if s.pos >= n {
			return 0, 0, false
		}
		start = s.pos
		for s.pos < n && s.path[s.pos] != '/' {
			s.pos++
		}
		return start, s.pos, true
	}
	return 0, 0, false
}

// splitPatternSegments splits a registration pattern string into its raw
// segment substrings, in order, skipping empty segments. "/" and "" both
// yield zero segments (the root pattern).
func splitPatternSegments(p string) []string {
	var segments []string
	splitter := newPathSplitter(p)
	for {
		start, end, ok := splitter.next()
		if !ok {
			break
		}
		segments = append(segments, p[start:end])
	}
	return segments
}
