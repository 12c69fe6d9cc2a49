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
	"sync"
	"sync/atomic"
)

// contextPool is component P: a sync.Pool of envelopes, avoiding a fresh
// parameter-slice and extensions-map allocation on every request. Unlike
// the teacher's three size-tiered pools (its Context carries fixed [8]string
// arrays, so size class matters for reuse locality), this envelope's
// parameter list is a plain slice that simply grows as needed, so a single
// pool suffices.
type contextPool struct {
	pool   sync.Pool
	router *Router

	gets uint64
	puts uint64
}

func newContextPool(r *Router) *contextPool {
	cp := &contextPool{router: r}
	cp.pool = sync.Pool{
		New: func() any {
			return newContext()
		},
	}
	return cp
}

// Get returns a Context ready for prepare(), recycled from the pool when
// possible.
func (cp *contextPool) Get() *Context {
	atomic.AddUint64(&cp.gets, 1)
	return cp.pool.Get().(*Context)
}

// Put resets c and returns it to the pool. Callers must not use c again
// after calling Put.
func (cp *contextPool) Put(c *Context) {
	atomic.AddUint64(&cp.puts, 1)
	c.reset()
	cp.pool.Put(c)
}

// PoolStats reports pool effectiveness, mirroring the teacher's
// diagnostic surface for tuning and leak detection.
type PoolStats struct {
	Gets    uint64
	Puts    uint64
	HitRate float64 // Puts/Gets; sustained values well under 1.0 indicate leaked contexts.
}

func (cp *contextPool) Stats() PoolStats {
	gets := atomic.LoadUint64(&cp.gets)
	puts := atomic.LoadUint64(&cp.puts)
	var hitRate float64
	if gets > 0 {
		hitRate = float64(puts) / float64(gets)
	}
	return PoolStats{Gets: gets, Puts: puts, HitRate: hitRate}
}
