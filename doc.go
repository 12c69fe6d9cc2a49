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

// Package router implements the request-routing and middleware-dispatch
// core of an async HTTP server framework: a per-method Pattern Trie, a
// Match Resolver producing an ordered middleware chain, and a Dispatch
// Pipeline that threads a pooled Context through that chain to a Response.
//
// # Key features
//
//   - Static, dynamic (":name"), and catch-all ("*name") path segments
//   - A resolution cache sitting in front of the trie walk
//   - Context pooling across requests
//   - Response as an immutable value middleware build and return, rather
//     than a live io.Writer, so it can be freely inspected or replaced
//   - Explicit Next continuations instead of implicit index/Abort state
//   - OpenTelemetry tracing and metrics via ObservabilityRecorder
//   - A Server Adapter with bounded concurrency, TLS handshake timeouts,
//     and h2c support
//   - A library of composable middleware subpackages under middleware/
//
// # Constructor pattern
//
// New returns *Router directly, with no error: construction only
// allocates memory and applies options, with no I/O involved. Options that
// receive invalid configuration panic immediately rather than deferring the
// failure to a later call. MustNew is kept as an alias for codebases that
// prefer to write against a fallible-constructor convention.
//
// # Quick start
//
//	r := router.New(
//	    router.WithBodyLimit(1 << 20),
//	    router.WithObservability(obs),
//	)
//	r.Use(recovery.New())
//	r.GET("/users/:id", func(c *router.Context, next router.Next) (*router.Response, error) {
//	    id, err := c.Param("id").Require()
//	    if err != nil {
//	        return nil, err
//	    }
//	    return router.NewResponse(http.StatusOK).JSON(map[string]string{"id": id}), nil
//	})
//	log.Fatal(r.Serve(":8080"))
package router
