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
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_CallAdvancesThroughChain(t *testing.T) {
	t.Parallel()
	var order []int
	chain := []MiddlewareFunc{
		func(c *Context, next Next) (*Response, error) {
			order = append(order, 1)
			return next.Call(c)
		},
		func(c *Context, next Next) (*Response, error) {
			order = append(order, 2)
			return next.Call(c)
		},
		func(_ *Context, _ Next) (*Response, error) {
			order = append(order, 3)
			return NewResponse(http.StatusOK), nil
		},
	}

	resp, err := newNext(chain).Call(&Context{})

	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, []int{1, 2, 3}, order)
}

func TestNext_ExhaustedChainYields404(t *testing.T) {
	t.Parallel()
	resp, err := newNext(nil).Call(&Context{})

	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.Status)
}

func TestNext_RemainingReportsCount(t *testing.T) {
	t.Parallel()
	chain := []MiddlewareFunc{
		func(_ *Context, _ Next) (*Response, error) { return nil, nil },
		func(_ *Context, _ Next) (*Response, error) { return nil, nil },
	}
	n := newNext(chain)

	assert.Equal(t, 2, n.Remaining())
}

func TestNext_IsImmutableAndReusable(t *testing.T) {
	t.Parallel()
	calls := 0
	chain := []MiddlewareFunc{
		func(_ *Context, _ Next) (*Response, error) {
			calls++
			return NewResponse(http.StatusOK), nil
		},
	}
	n := newNext(chain)

	_, _ = n.Call(&Context{})
	_, _ = n.Call(&Context{})

	assert.Equal(t, 2, calls, "calling the same Next value twice should re-run the same handler, proving Call doesn't mutate n")
}

func TestNext_PropagatesHandlerError(t *testing.T) {
	t.Parallel()
	chain := []MiddlewareFunc{
		func(_ *Context, _ Next) (*Response, error) {
			return nil, Errorf(http.StatusBadRequest, "bad input")
		},
	}

	resp, err := newNext(chain).Call(&Context{})

	assert.Nil(t, resp)
	require.Error(t, err)
	assert.Equal(t, "bad input", err.Error())
}
