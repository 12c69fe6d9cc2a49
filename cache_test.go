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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolutionCache_PutAndGet(t *testing.T) {
	t.Parallel()
	c := newResolutionCache(4)

	c.put("/users/1", []bindingDescriptor{{key: 1}})

	got, ok := c.get("/users/1")
	require.True(t, ok)
	assert.Equal(t, nodeKey(1), got[0].key)
}

func TestResolutionCache_MissOnUnknownPath(t *testing.T) {
	t.Parallel()
	c := newResolutionCache(4)

	_, ok := c.get("/nowhere")
	assert.False(t, ok)
}

func TestResolutionCache_EvictsOldestAtCapacity(t *testing.T) {
	t.Parallel()
	c := newResolutionCache(2)

	c.put("/a", []bindingDescriptor{{key: 1}})
	c.put("/b", []bindingDescriptor{{key: 2}})
	c.put("/c", []bindingDescriptor{{key: 3}})

	_, ok := c.get("/a")
	assert.False(t, ok, "oldest entry should have been evicted once capacity was exceeded")

	_, ok = c.get("/b")
	assert.True(t, ok)
	_, ok = c.get("/c")
	assert.True(t, ok)
}

func TestResolutionCache_MostRecentPutIsAtFront(t *testing.T) {
	t.Parallel()
	c := newResolutionCache(3)

	c.put("/a", []bindingDescriptor{{key: 1}})
	c.put("/b", []bindingDescriptor{{key: 2}})

	require.Len(t, c.entries, 2)
	assert.Equal(t, "/b", c.entries[0].key)
}

func TestResolutionCache_PromotePastHalfwayMovesEntryToFront(t *testing.T) {
	t.Parallel()
	c := newResolutionCache(10)

	for i := 0; i < 8; i++ {
		c.put(string(rune('a'+i)), []bindingDescriptor{{key: nodeKey(i)}})
	}
	// Entries are newest-first, so the earliest-put entry ("a") now sits
	// at the back of the slice, past the halfway point.
	target := string(rune('a'))

	_, ok := c.get(target)
	require.True(t, ok)

	assert.Equal(t, target, c.entries[0].key, "a hit past the halfway mark should be promoted to the front")
}

func TestResolutionCache_GetMissOnContendedReadLock(t *testing.T) {
	t.Parallel()
	c := newResolutionCache(4)
	c.put("/a", []bindingDescriptor{{key: 1}})

	c.mu.Lock() // simulate a writer holding the lock
	_, ok := c.get("/a")
	c.mu.Unlock()

	assert.False(t, ok, "a contended lock must be treated as a cache miss, never block")
}

func TestResolutionCache_PutDropsSilentlyOnContendedWriteLock(t *testing.T) {
	t.Parallel()
	c := newResolutionCache(4)

	c.mu.Lock()
	c.put("/a", []bindingDescriptor{{key: 1}})
	c.mu.Unlock()

	_, ok := c.get("/a")
	assert.False(t, ok, "a write under lock contention should be dropped, not queued")
}

func TestResolutionCache_ZeroCapacityDisablesCaching(t *testing.T) {
	t.Parallel()
	c := newResolutionCache(0)

	require.NotPanics(t, func() {
		c.put("/a", []bindingDescriptor{{key: 1}})
	})

	_, ok := c.get("/a")
	assert.False(t, ok, "a capacity of 0 must disable caching entirely, per WithCacheCapacity's documented behavior")
}

func TestResolutionCache_NegativeCapacityDisablesCaching(t *testing.T) {
	t.Parallel()
	c := newResolutionCache(-1)

	require.NotPanics(t, func() {
		c.put("/a", []bindingDescriptor{{key: 1}})
	})

	_, ok := c.get("/a")
	assert.False(t, ok)
}

func TestDescriptorBindingRoundTrip(t *testing.T) {
	t.Parallel()
	original := []Binding{
		{key: 1, exact: true, hasCapture: true, start: 2, end: 5, paramName: "id"},
	}

	roundTripped := bindingsFromDescriptors(descriptorsFromBindings(original))

	assert.Equal(t, original, roundTripped)
}
