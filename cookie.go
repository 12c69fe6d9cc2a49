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

import "net/http"

const cookieJarKey = "router.cookies"

// CookieJar holds the cookies parsed from an incoming request plus any
// added during dispatch (§4.M). Only the delta — cookies added via Add,
// never the originals — is ever written back as Set-Cookie, matching
// via-core's cookies.rs jar.delta() semantics.
type CookieJar struct {
	original map[string]*http.Cookie
	delta    []*http.Cookie
}

func newCookieJar(r *http.Request) *CookieJar {
	jar := &CookieJar{original: make(map[string]*http.Cookie)}
	for _, c := range r.Cookies() {
		jar.original[c.Name] = c
	}
	return jar
}

// Get returns the named cookie from the incoming request, if present.
func (j *CookieJar) Get(name string) (*http.Cookie, bool) {
	c, ok := j.original[name]
	return c, ok
}

// Add queues cookie to be emitted as a Set-Cookie header on the response.
func (j *CookieJar) Add(cookie *http.Cookie) {
	j.delta = append(j.delta, cookie)
}

// Remove queues a cookie deletion (an immediately-expired Set-Cookie) for
// name.
func (j *CookieJar) Remove(name, path string) {
	j.Add(&http.Cookie{Name: name, Value: "", Path: path, MaxAge: -1})
}

// Cookies parses the incoming request's Cookie header into a jar stashed in
// the envelope's extensions (§4.M), and on the way back out appends a
// Set-Cookie header for every cookie added via jar.Add or jar.Remove.
// Handlers retrieve the jar with CookiesFrom.
func Cookies() MiddlewareFunc {
	return func(c *Context, next Next) (*Response, error) {
		jar := newCookieJar(c.Request)
		c.ExtensionsMut()[cookieJarKey] = jar

		resp, err := next.Call(c)
		if err != nil {
			return resp, err
		}

		if resp != nil {
			for _, cookie := range jar.delta {
				resp.Header.Add("Set-Cookie", cookie.String())
			}
		}
		return resp, nil
	}
}

// CookiesFrom retrieves the jar installed by Cookies for the current
// request. The second return is false if Cookies was never run.
func CookiesFrom(c *Context) (*CookieJar, bool) {
	v, ok := c.ExtensionsMut()[cookieJarKey]
	if !ok {
		return nil, false
	}
	jar, ok := v.(*CookieJar)
	return jar, ok
}
