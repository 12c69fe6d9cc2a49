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
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Static sentinel errors for registration-time and internal failures.
// Wrap with fmt.Errorf and %w when additional context is useful.
var (
	// Registration errors (§7 "Registration").
	ErrUnsafeLiteral        = errors.New("router: literal segment contains bytes outside the url-safe set")
	ErrEmptyParameterName   = errors.New("router: parameter name must not be empty")
	ErrInvalidParameterName = errors.New("router: parameter name must be alphanumeric or underscore")
	ErrDuplicateCatchAll    = errors.New("router: node already has a catch-all child")
	ErrChildAfterCatchAll   = errors.New("router: cannot register a child of a catch-all node")

	// Router-level configuration errors.
	ErrCacheCapacityZero     = errors.New("router: cache capacity must be non-zero")
	ErrBodyLimitZero         = errors.New("router: body limit must be non-zero")
	ErrConnectionLimitZero   = errors.New("router: connection limit must be non-zero")
	ErrResponseWriterHijack  = errors.New("router: response writer does not implement http.Hijacker")
	ErrHandshakeTimeoutRange = errors.New("router: tls handshake timeout must be positive")
)

// Hint names an optional serialization strategy for an Error's response
// body, per §3 "Error" and §4.K.
type Hint uint8

const (
	// HintNone renders the error as plain text.
	HintNone Hint = iota
	// HintJSON renders the error as the canonical JSON envelope (§6).
	HintJSON
)

// Error is the typed error every dispatch-chain failure eventually becomes.
// It carries an HTTP status (defaulting to 500), an optional serialization
// hint, a chained cause, and an optional sanitized message that overrides
// the cause's own text in the rendered response.
//
// Error is grounded in via-error's Error/Respond split (cause + {status,
// format}) translated to Go idiom: explicit fields instead of builder
// methods that consume self, chain walked via errors.Unwrap.
type Error struct {
	Status  int
	Hint    Hint
	Message string
	cause   error
}

// NewError wraps cause in an Error defaulting to status 500 and no
// serialization hint.
func NewError(cause error) *Error {
	return &Error{Status: http.StatusInternalServerError, cause: cause}
}

// Errorf is a convenience constructor building a cause from a format string.
func Errorf(status int, format string, args ...any) *Error {
	return &Error{Status: status, cause: fmt.Errorf(format, args...)}
}

// WithStatus returns a copy of e with its status replaced.
func (e *Error) WithStatus(status int) *Error {
	clone := *e
	clone.Status = status
	return &clone
}

// WithHint returns a copy of e with its serialization hint replaced.
func (e *Error) WithHint(hint Hint) *Error {
	clone := *e
	clone.Hint = hint
	return &clone
}

// WithMessage returns a copy of e with a sanitized, client-facing message
// that is used instead of the cause chain's text when rendering.
func (e *Error) WithMessage(message string) *Error {
	clone := *e
	clone.Message = message
	return &clone
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.cause != nil {
		return e.cause.Error()
	}
	return http.StatusText(e.Status)
}

// Unwrap exposes the chained cause to errors.Is/errors.As/errors.Unwrap.
func (e *Error) Unwrap() error {
	return e.cause
}

// status returns the HTTP status to use, defaulting to 500.
func (e *Error) status() int {
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}

// asError coerces any error into an *Error, defaulting to a 500 with no
// hint when err is not already one, per §7's "uncaught middleware error"
// server-kind default.
func asError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return NewError(err)
}

// errorChainMessages walks the cause chain collecting one message per link,
// outermost cause first and root cause last — matching via-error's
// respond.rs SerializedError-per-cause behavior. A sanitized Message
// replaces the whole chain, and an Error with neither a Message nor a cause
// yields its status text.
func errorChainMessages(e *Error) []string {
	if e.Message != "" || e.cause == nil {
		return []string{e.Error()}
	}
	var messages []string
	for cause := e.cause; cause != nil; cause = errors.Unwrap(cause) {
		messages = append(messages, cause.Error())
	}
	return messages
}

// jsonErrorEnvelope is the wire shape of §6's error JSON envelope.
type jsonErrorEnvelope struct {
	Errors []jsonErrorEntry `json:"errors"`
}

type jsonErrorEntry struct {
	Message string `json:"message"`
}

// rescueToResponse is the standard top-level error-to-response conversion described in
// §4.K. It is infallible from the caller's point of view: a secondary
// serialization failure degrades to a canonical 500 and is reported to
// onSecondaryFailure (nil is fine; the router wires its observability hook
// here).
func rescueToResponse(err error, onSecondaryFailure func(error)) *Response {
	e := asError(err)

	resp := &Response{Status: e.status(), Header: make(http.Header)}

	switch e.Hint {
	case HintJSON:
		envelope := jsonErrorEnvelope{}
		for _, msg := range errorChainMessages(e) {
			envelope.Errors = append(envelope.Errors, jsonErrorEntry{Message: msg})
		}
		body, marshalErr := json.Marshal(envelope)
		if marshalErr != nil {
			if onSecondaryFailure != nil {
				onSecondaryFailure(marshalErr)
			}
			return internalServerErrorResponse()
		}
		resp.Header.Set("Content-Type", "application/json")
		resp.Body = bufferBody(body)
	default:
		resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
		resp.Body = bufferBody([]byte(e.Error()))
	}

	return resp
}

func internalServerErrorResponse() *Response {
	resp := &Response{
		Status: http.StatusInternalServerError,
		Header: make(http.Header),
		Body:   bufferBody([]byte(http.StatusText(http.StatusInternalServerError))),
	}
	resp.Header.Set("Content-Type", "text/plain; charset=utf-8")
	return resp
}
