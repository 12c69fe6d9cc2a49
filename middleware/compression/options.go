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

package compression

// WithGzipLevel sets the gzip compression level (0-9). Default:
// gzip.DefaultCompression.
func WithGzipLevel(level int) Option {
	return func(cfg *config) {
		cfg.gzipLevel = level
	}
}

// WithBrotliLevel sets the Brotli compression level (0-11). Default: 4.
func WithBrotliLevel(level int) Option {
	return func(cfg *config) {
		cfg.brotliLevel = level
	}
}

// WithBrotliDisabled disables Brotli negotiation, leaving gzip as the only
// candidate encoding.
func WithBrotliDisabled() Option {
	return func(cfg *config) {
		cfg.enableBrotli = false
	}
}

// WithGzipDisabled disables gzip negotiation, leaving Brotli as the only
// candidate encoding.
func WithGzipDisabled() Option {
	return func(cfg *config) {
		cfg.enableGzip = false
	}
}

// WithMinSize sets the minimum buffered body size, in bytes, before
// compression is applied. Default: 0 (always compress).
func WithMinSize(size int) Option {
	return func(cfg *config) {
		cfg.minSize = size
	}
}

// WithExcludePaths exempts the given request paths from compression.
func WithExcludePaths(paths ...string) Option {
	return func(cfg *config) {
		for _, p := range paths {
			cfg.excludePaths[p] = true
		}
	}
}

// WithExcludeExtensions exempts response paths ending in any of the given
// file extensions from compression.
func WithExcludeExtensions(extensions ...string) Option {
	return func(cfg *config) {
		for _, e := range extensions {
			cfg.excludeExtensions[e] = true
		}
	}
}

// WithExcludeContentTypes exempts responses whose Content-Type contains
// any of the given substrings from compression.
func WithExcludeContentTypes(contentTypes ...string) Option {
	return func(cfg *config) {
		for _, ct := range contentTypes {
			cfg.excludeContentTypes[ct] = true
		}
	}
}
