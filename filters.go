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

import (
	"context"
	"net/http"
	"time"
)

// Method wraps mw so it only runs for requests whose method equals verb;
// any other method delegates straight to next unchanged (§4.N).
func Method(verb string, mw MiddlewareFunc) MiddlewareFunc {
	return func(c *Context, next Next) (*Response, error) {
		if c.Method() != verb {
			return next.Call(c)
		}
		return mw(c, next)
	}
}

// Predicate reports whether mw should run for the given request.
type Predicate func(c *Context) bool

// Inspect wraps mw so it only runs when predicate(c) is true; otherwise
// delegates straight to next unchanged (§4.N "a generic filter takes
// predicate: &Request → bool").
func Inspect(predicate Predicate, mw MiddlewareFunc) MiddlewareFunc {
	return func(c *Context, next Next) (*Response, error) {
		if !predicate(c) {
			return next.Call(c)
		}
		return mw(c, next)
	}
}

// Timeout bounds mw's execution to d; on expiry it returns 504 Gateway
// Timeout and abandons mw's goroutine (§4.N, §5 "Cancellation" — Go cannot
// force-preempt a goroutine stuck in non-cancellable work, so expiry drops
// the *result*, matching the spec's "inner future is simply dropped").
func Timeout(d time.Duration, mw MiddlewareFunc) MiddlewareFunc {
	return func(c *Context, next Next) (*Response, error) {
		ctx, cancel := context.WithTimeout(c.RequestContext(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		type result struct {
			resp *Response
			err  error
		}
		done := make(chan result, 1)
		go func() {
			resp, err := mw(c, next)
			done <- result{resp, err}
		}()

		select {
		case r := <-done:
			return r.resp, r.err
		case <-ctx.Done():
			return nil, Errorf(http.StatusGatewayTimeout, "router: middleware timed out after %s", d)
		}
	}
}

// Rescue wraps mw, converting any error it returns into a Response via the
// standard error-rescue path (§4.K) instead of propagating the error
// further up the chain. Useful for scoping error handling to a subtree of
// routes rather than relying solely on the top-level dispatch rescue.
func Rescue(mw MiddlewareFunc) MiddlewareFunc {
	return func(c *Context, next Next) (*Response, error) {
		resp, err := mw(c, next)
		if err == nil {
			return resp, nil
		}
		var secondary error
		rescued := rescueToResponse(err, func(e error) { secondary = e })
		if secondary != nil {
			c.Logger().Error("rescue: secondary failure converting error to response", "err", secondary)
		}
		return rescued, nil
	}
}
