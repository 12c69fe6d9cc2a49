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
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCookies_ReadsIncomingCookiesIntoJar(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "session", Value: "abc"})

	var jar *CookieJar
	mw := Cookies()
	c := &Context{Request: req, extensions: map[string]any{}}
	_, err := mw(c, newNext([]MiddlewareFunc{
		func(c *Context, next Next) (*Response, error) {
			jar, _ = CookiesFrom(c)
			return next.Call(c)
		},
	}))
	require.NoError(t, err)

	require.NotNil(t, jar)
	cookie, ok := jar.Get("session")
	require.True(t, ok)
	assert.Equal(t, "abc", cookie.Value)
}

func TestCookies_AddedCookiesBecomeSetCookieHeaders(t *testing.T) {
	t.Parallel()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	mw := Cookies()
	c := &Context{Request: req, extensions: map[string]any{}}

	resp, err := mw(c, newNext([]MiddlewareFunc{
		func(c *Context, _ Next) (*Response, error) {
			jar, ok := CookiesFrom(c)
			require.True(t, ok)
			jar.Add(&http.Cookie{Name: "new", Value: "1"})
			return NewResponse(http.StatusOK), nil
		},
	}))
	require.NoError(t, err)

	assert.Contains(t, resp.Header.Get("Set-Cookie"), "new=1")
}

func TestCookies_RemoveQueuesExpiredCookie(t *testing.T) {
	t.Parallel()
	jar := newCookieJar(httptest.NewRequest(http.MethodGet, "/", nil))

	jar.Remove("session", "/")

	require.Len(t, jar.delta, 1)
	assert.Equal(t, -1, jar.delta[0].MaxAge)
	assert.Equal(t, "session", jar.delta[0].Name)
}

func TestCookiesFrom_FalseWhenNeverInstalled(t *testing.T) {
	t.Parallel()
	c := &Context{extensions: map[string]any{}}

	_, ok := CookiesFrom(c)
	assert.False(t, ok)
}
