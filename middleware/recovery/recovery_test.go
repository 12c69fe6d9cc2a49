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

package recovery

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"rivaas.dev/router"
)

func panicHandler(value any) router.MiddlewareFunc {
	return func(_ *router.Context, _ router.Next) (*router.Response, error) {
		panic(value)
	}
}

func okHandler(c *router.Context, _ router.Next) (*router.Response, error) {
	return router.NewResponse(http.StatusOK).JSON(map[string]string{"message": "success"}), nil
}

func TestRecovery_BasicPanic(t *testing.T) {
	r := router.MustNew()
	r.Use(New())
	r.GET("/panic", panicHandler("test panic"))

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "test panic")
}

func TestRecovery_NoPanic(t *testing.T) {
	r := router.MustNew()
	r.Use(New())
	r.GET("/safe", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/safe", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRecovery_CustomLogger(t *testing.T) {
	r := router.MustNew()

	var loggedError any
	var loggedStack []byte
	loggerCalled := false

	r.Use(New(WithLogger(func(_ *router.Context, err any, stack []byte) {
		loggerCalled = true
		loggedError = err
		loggedStack = stack
	})))
	r.GET("/panic", panicHandler("logger test panic"))

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.True(t, loggerCalled, "custom logger should be called")
	assert.Equal(t, "logger test panic", loggedError)
	assert.NotEmpty(t, loggedStack)
}

func TestRecovery_DisableStackTrace(t *testing.T) {
	r := router.MustNew()

	var loggedStack []byte
	r.Use(New(
		WithStackTrace(false),
		WithLogger(func(_ *router.Context, _ any, stack []byte) {
			loggedStack = stack
		}),
	))
	r.GET("/panic", panicHandler("no stack trace"))

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Empty(t, loggedStack, "stack trace should not be captured when disabled")
}

func TestRecovery_CustomStackSize(t *testing.T) {
	r := router.MustNew()

	var loggedStack []byte
	r.Use(New(
		WithStackSize(1024),
		WithDisableStackAll(true),
		WithLogger(func(_ *router.Context, _ any, stack []byte) {
			loggedStack = stack
		}),
	))
	r.GET("/panic", panicHandler("stack size test"))

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.NotEmpty(t, loggedStack)
	assert.LessOrEqual(t, len(loggedStack), 1024)
}

func TestRecovery_MultipleMiddleware(t *testing.T) {
	r := router.MustNew()

	middlewareCalled := false
	r.Use(func(c *router.Context, next router.Next) (*router.Response, error) {
		middlewareCalled = true
		return next.Call(c)
	})
	r.Use(New())
	r.GET("/panic", panicHandler("middleware test"))

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.True(t, middlewareCalled)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRecovery_PanicInMiddleware(t *testing.T) {
	r := router.MustNew()
	r.Use(New())
	r.Use(func(_ *router.Context, _ router.Next) (*router.Response, error) {
		panic("panic in middleware")
	})
	r.GET("/test", okHandler)

	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRecovery_DifferentPanicTypes(t *testing.T) {
	tests := []struct {
		name       string
		panicValue any
	}{
		{"string panic", "string error"},
		{"int panic", 42},
		{"error panic", http.ErrBodyNotAllowed},
		{"struct panic", struct{ Message string }{"structured error"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := router.MustNew()

			var capturedPanic any
			r.Use(New(WithLogger(func(_ *router.Context, err any, _ []byte) {
				capturedPanic = err
			})))
			r.GET("/panic", panicHandler(tt.panicValue))

			req := httptest.NewRequest(http.MethodGet, "/panic", nil)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.panicValue, capturedPanic)
			assert.Equal(t, http.StatusInternalServerError, w.Code)
		})
	}
}

func TestRecovery_StackTraceContent(t *testing.T) {
	r := router.MustNew()

	var stackTrace []byte
	r.Use(New(WithLogger(func(_ *router.Context, _ any, stack []byte) {
		stackTrace = stack
	})))
	r.GET("/panic", panicHandler("stack content test"))

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	stackStr := string(stackTrace)
	assert.Contains(t, stackStr, "panic")
}

func TestRecovery_MultipleOptions(t *testing.T) {
	r := router.MustNew()

	loggerCalled := false
	r.Use(New(
		WithStackTrace(true),
		WithStackSize(2048),
		WithLogger(func(_ *router.Context, _ any, _ []byte) {
			loggerCalled = true
		}),
	))
	r.GET("/panic", panicHandler("multiple options test"))

	req := httptest.NewRequest(http.MethodGet, "/panic", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.True(t, loggerCalled)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
