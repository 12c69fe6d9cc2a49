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

// Integration tests for basicauth combined with security, cors, and
// requestid.

package basicauth_test

import (
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"rivaas.dev/router"
	"rivaas.dev/router/middleware/basicauth"
	"rivaas.dev/router/middleware/cors"
	"rivaas.dev/router/middleware/requestid"
	"rivaas.dev/router/middleware/security"
)

func TestBasicAuthIntegration_WithSecurityAndCORS(t *testing.T) {
	r := router.MustNew()
	r.Use(security.New())
	r.Use(cors.New(
		cors.WithAllowedOrigins("https://example.com"),
		cors.WithAllowedMethods("GET", "POST"),
		cors.WithAllowedHeaders("Content-Type", "Authorization"),
	))
	r.Use(basicauth.New(basicauth.WithUsers(map[string]string{"admin": "secret"})))

	r.GET("/protected", func(c *router.Context, _ router.Next) (*router.Response, error) {
		username := basicauth.GetUsername(c)
		return router.NewResponse(http.StatusOK).JSON(map[string]string{
			"user":    username,
			"message": "protected resource",
		}), nil
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("admin:secret")))
	req.Header.Set("Origin", "https://example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "admin")
	assert.NotEmpty(t, w.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, w.Header().Get("X-Frame-Options"))
	assert.Equal(t, "https://example.com", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestBasicAuthIntegration_RejectsUnauthorizedWithSecurityHeaders(t *testing.T) {
	r := router.MustNew()
	r.Use(security.New())
	r.Use(cors.New(cors.WithAllowedOrigins("https://example.com")))
	r.Use(basicauth.New(basicauth.WithUsers(map[string]string{"admin": "secret"})))

	r.GET("/protected", func(_ *router.Context, _ router.Next) (*router.Response, error) {
		return router.NewResponse(http.StatusOK).JSON(map[string]string{"message": "should not reach here"}), nil
	})

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.NotEmpty(t, w.Header().Get("WWW-Authenticate"))
	assert.NotEmpty(t, w.Header().Get("X-Content-Type-Options"), "security headers should still be set on error")
}

func TestBasicAuthIntegration_PropagatesRequestIDAndUsername(t *testing.T) {
	r := router.MustNew()
	r.Use(requestid.New())
	r.Use(basicauth.New(basicauth.WithUsers(map[string]string{"admin": "secret"})))

	var capturedRequestID, capturedUsername string
	r.GET("/test", func(c *router.Context, _ router.Next) (*router.Response, error) {
		capturedRequestID = requestid.Get(c)
		capturedUsername = basicauth.GetUsername(c)
		return router.NewResponse(http.StatusOK).JSON(map[string]string{
			"request_id": capturedRequestID,
			"username":   capturedUsername,
		}), nil
	})

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	req.Header.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte("admin:secret")))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.NotEmpty(t, capturedRequestID, "request id should be available in handler")
	assert.Equal(t, "admin", capturedUsername)
	assert.Contains(t, w.Body.String(), capturedRequestID)
	assert.Contains(t, w.Body.String(), "admin")
}
