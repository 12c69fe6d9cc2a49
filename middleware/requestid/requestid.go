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

package requestid

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"encoding/binary"
	"time"

	"github.com/google/uuid"

	"rivaas.dev/router"
	"rivaas.dev/router/middleware"
)

// Option configures the requestid middleware.
type Option func(*config)

type config struct {
	headerName    string
	generator     func() string
	allowClientID bool
}

func defaultConfig() *config {
	return &config{
		headerName:    "X-Request-ID",
		generator:     generateUUID,
		allowClientID: true,
	}
}

func generateUUID() string {
	return uuid.New().String()
}

var ulidEncoding = base32.NewEncoding("0123456789ABCDEFGHJKMNPQRSTVWXYZ").WithPadding(base32.NoPadding)

// generateULID produces a time-ordered, lexicographically sortable ID: a
// 48-bit millisecond timestamp followed by 80 bits of randomness, Crockford
// base32 encoded. No pack library provides ULID generation, so this is the
// one deliberate stdlib fallback in this middleware (see WithULID).
func generateULID() string {
	var buf [16]byte
	ms := uint64(time.Now().UnixMilli())
	buf[0] = byte(ms >> 40)
	buf[1] = byte(ms >> 32)
	buf[2] = byte(ms >> 24)
	buf[3] = byte(ms >> 16)
	buf[4] = byte(ms >> 8)
	buf[5] = byte(ms)
	if _, err := rand.Read(buf[6:]); err != nil {
		binary.BigEndian.PutUint64(buf[6:14], uint64(time.Now().UnixNano()))
	}
	return ulidEncoding.EncodeToString(buf[:])
}

// New returns a middleware that attaches a unique request ID to each
// request, readable downstream via Get and echoed back in the configured
// response header. An error returned by the rest of the chain is converted
// to its response here, so error responses carry the header too.
//
// Basic usage:
//
//	r.Use(requestid.New())
//
// Custom header name:
//
//	r.Use(requestid.New(requestid.WithHeader("X-Correlation-ID")))
func New(opts ...Option) router.MiddlewareFunc {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return func(c *router.Context, next router.Next) (*router.Response, error) {
		var id string
		if cfg.allowClientID {
			id = c.Headers().Get(cfg.headerName)
		}
		if id == "" {
			id = cfg.generator()
		}

		ctx := context.WithValue(c.RequestContext(), middleware.RequestIDKey, id)
		c.Request = c.Request.WithContext(ctx)

		resp, err := router.Rescue(func(c *router.Context, next router.Next) (*router.Response, error) {
			return next.Call(c)
		})(c, next)
		if resp != nil {
			resp.SetHeader(cfg.headerName, id)
		}
		return resp, err
	}
}

// Get retrieves the request ID attached by New, or "" if none was set.
func Get(c *router.Context) string {
	id, _ := c.RequestContext().Value(middleware.RequestIDKey).(string)
	return id
}
