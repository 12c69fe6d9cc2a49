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

// Package timeout enforces a per-request deadline, on top of the core
// router.Timeout combinator (filters.go), adding path-based exemptions, a
// customizable timeout response, and logging.
//
// # Basic Usage
//
//	import (
//	    "time"
//	    "rivaas.dev/router/middleware/timeout"
//	)
//
//	r := router.MustNew()
//	r.Use(timeout.New(timeout.WithDuration(30 * time.Second)))
//
// # Skipping long-running endpoints
//
//	r.Use(timeout.New(
//	    timeout.WithDuration(30 * time.Second),
//	    timeout.WithSkipPaths("/stream", "/webhook"),
//	))
//
// # Handler Implementation
//
// Downstream handlers should still respect context cancellation for
// long-running work, since an expired timeout abandons rather than
// interrupts the in-flight goroutine:
//
//	func handler(c *router.Context, next router.Next) (*router.Response, error) {
//	    select {
//	    case <-c.RequestContext().Done():
//	        return nil, c.RequestContext().Err()
//	    case result := <-longRunningOperation(c.RequestContext()):
//	        return router.NewResponse(http.StatusOK).JSON(result), nil
//	    }
//	}
package timeout
