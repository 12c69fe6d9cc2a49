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

// Package compression compresses response bodies with gzip or Brotli,
// negotiated from the request's Accept-Encoding header.
package compression

import (
	"bytes"
	"compress/gzip"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"

	"rivaas.dev/router"
)

// Option configures the compression middleware.
type Option func(*config)

type config struct {
	gzipLevel           int
	brotliLevel         int
	minSize             int
	enableGzip          bool
	enableBrotli        bool
	excludePaths        map[string]bool
	excludeExtensions   map[string]bool
	excludeContentTypes map[string]bool
}

func defaultConfig() *config {
	return &config{
		gzipLevel:           gzip.DefaultCompression,
		brotliLevel:         4,
		enableGzip:          true,
		enableBrotli:        true,
		excludePaths:        make(map[string]bool),
		excludeExtensions:   make(map[string]bool),
		excludeContentTypes: make(map[string]bool),
	}
}

var (
	gzipWriterPools   = make(map[int]*sync.Pool)
	brotliWriterPools = make(map[int]*sync.Pool)
	poolsMutex        sync.RWMutex
)

func getGzipWriterPool(level int) *sync.Pool {
	poolsMutex.RLock()
	pool, exists := gzipWriterPools[level]
	poolsMutex.RUnlock()
	if exists {
		return pool
	}

	poolsMutex.Lock()
	defer poolsMutex.Unlock()
	if pool, exists := gzipWriterPools[level]; exists {
		return pool
	}
	pool = &sync.Pool{New: func() any {
		w, _ := gzip.NewWriterLevel(io.Discard, level)
		return w
	}}
	gzipWriterPools[level] = pool
	return pool
}

func getBrotliWriterPool(level int) *sync.Pool {
	poolsMutex.RLock()
	pool, exists := brotliWriterPools[level]
	poolsMutex.RUnlock()
	if exists {
		return pool
	}

	poolsMutex.Lock()
	defer poolsMutex.Unlock()
	if pool, exists := brotliWriterPools[level]; exists {
		return pool
	}
	pool = &sync.Pool{New: func() any {
		return brotli.NewWriterLevel(io.Discard, level)
	}}
	brotliWriterPools[level] = pool
	return pool
}

// chooseEncoding selects the best encoding from the Accept-Encoding
// header, preferring Brotli over gzip on an equal or better q-value.
func chooseEncoding(acceptEncoding string, cfg *config) string {
	if acceptEncoding == "" {
		return ""
	}
	ae := strings.ToLower(acceptEncoding)
	brQ := parseQValue(ae, "br")
	gzipQ := parseQValue(ae, "gzip")

	if brQ == 0 && gzipQ == 0 {
		return ""
	}
	if cfg.enableBrotli && brQ > 0 && brQ >= gzipQ {
		return "br"
	}
	if cfg.enableGzip && gzipQ > 0 {
		return "gzip"
	}
	return ""
}

func parseQValue(accept, encoding string) float64 {
	idx := strings.Index(accept, encoding)
	if idx < 0 {
		return -1
	}
	qIdx := strings.Index(accept[idx:], "q=")
	if qIdx < 0 {
		return 1.0
	}
	qStart := idx + qIdx + 2
	end := strings.IndexAny(accept[qStart:], ",;")
	if end < 0 {
		end = len(accept) - qStart
	}
	q, err := strconv.ParseFloat(strings.TrimSpace(accept[qStart:qStart+end]), 64)
	if err != nil {
		return 1.0
	}
	return q
}

func shouldSkipStatus(status int) bool {
	return status == 204 || status == 304 || status == 206
}

func shouldSkipContentType(ct string, excludes map[string]bool) bool {
	if ct == "" {
		return false
	}
	ctLower := strings.ToLower(ct)
	if strings.Contains(ctLower, "text/event-stream") ||
		strings.Contains(ctLower, "application/grpc") ||
		strings.Contains(ctLower, "application/octet-stream") {
		return true
	}
	for excluded := range excludes {
		if strings.Contains(ctLower, strings.ToLower(excluded)) {
			return true
		}
	}
	return false
}

// New returns a middleware compressing the downstream Response's body with
// gzip or Brotli, chosen by negotiating the request's Accept-Encoding
// header. Because Response bodies here are plain values rather than a
// live io.Writer (§3 "Response"), compression runs once against the
// completed body, after next.Call returns, instead of wrapping the
// http.ResponseWriter as the teacher's version does — stream bodies are
// compressed lazily as they're drained.
//
// Basic usage:
//
//	r.Use(compression.New())
func New(opts ...Option) router.MiddlewareFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context, next router.Next) (*router.Response, error) {
		if cfg.excludePaths[c.URI().Path] {
			return next.Call(c)
		}
		path := c.URI().Path
		for ext := range cfg.excludeExtensions {
			if strings.HasSuffix(path, ext) {
				return next.Call(c)
			}
		}

		encoding := chooseEncoding(c.Headers().Get("Accept-Encoding"), cfg)
		if encoding == "" {
			return next.Call(c)
		}

		resp, err := next.Call(c)
		if resp == nil || err != nil {
			return resp, err
		}
		if resp.Header.Get("Content-Encoding") != "" {
			return resp, err
		}
		if shouldSkipStatus(resp.Status) {
			return resp, err
		}
		if shouldSkipContentType(resp.Header.Get("Content-Type"), cfg.excludeContentTypes) {
			return resp, err
		}

		if buf, ok := resp.BufferedBody(); ok {
			if len(buf) < cfg.minSize {
				return resp, err
			}
			compressed, cerr := compressBuffer(buf, encoding, cfg)
			if cerr != nil {
				return resp, err
			}
			resp.Header.Del("Content-Length")
			resp.Header.Set("Content-Encoding", encoding)
			resp.Header.Set("Vary", "Accept-Encoding")
			resp.Bytes(compressed)
			return resp, err
		}

		if stream, ok := resp.StreamReader(); ok {
			resp.Header.Del("Content-Length")
			resp.Header.Set("Content-Encoding", encoding)
			resp.Header.Set("Vary", "Accept-Encoding")
			resp.Stream(compressStream(stream, encoding, cfg))
		}

		return resp, err
	}
}

func compressBuffer(data []byte, encoding string, cfg *config) ([]byte, error) {
	var buf bytes.Buffer
	switch encoding {
	case "br":
		pool := getBrotliWriterPool(cfg.brotliLevel)
		w := pool.Get().(*brotli.Writer)
		w.Reset(&buf)
		defer func() { w.Reset(nil); pool.Put(w) }()
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	case "gzip":
		pool := getGzipWriterPool(cfg.gzipLevel)
		w := pool.Get().(*gzip.Writer)
		w.Reset(&buf)
		defer func() { w.Reset(io.Discard); pool.Put(w) }()
		if _, err := w.Write(data); err != nil {
			return nil, err
		}
		if err := w.Close(); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

// compressStream pipes src through a compressor lazily, so a large stream
// body is never fully buffered in memory.
func compressStream(src io.Reader, encoding string, cfg *config) io.Reader {
	pr, pw := io.Pipe()
	go func() {
		var w io.WriteCloser
		switch encoding {
		case "br":
			w = brotli.NewWriterLevel(pw, cfg.brotliLevel)
		case "gzip":
			w, _ = gzip.NewWriterLevel(pw, cfg.gzipLevel)
		default:
			_, err := io.Copy(pw, src)
			pw.CloseWithError(err)
			return
		}
		_, err := io.Copy(w, src)
		closeErr := w.Close()
		if err == nil {
			err = closeErr
		}
		pw.CloseWithError(err)
	}()
	return pr
}
