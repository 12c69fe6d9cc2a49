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
	"fmt"
	"io"
	"net/http"
)

// responseBody is the closed sum of body representations a Response can
// carry (§3 "Response"): none written yet, an owned in-memory buffer, or a
// caller-supplied stream. Go's io.Reader already erases the concrete stream
// type, so the spec's "boxed erased stream" variant collapses into
// streamBody without a separate wrapper.
type responseBody struct {
	kind   bodyKind
	buffer []byte
	stream io.Reader
	closer io.Closer
}

type bodyKind uint8

const (
	bodyEmpty bodyKind = iota
	bodyBuffer
	bodyStream
)

func emptyBody() responseBody {
	return responseBody{kind: bodyEmpty}
}

func bufferBody(b []byte) responseBody {
	return responseBody{kind: bodyBuffer, buffer: b}
}

// streamBodyFrom wraps r as a streamed response body. If r also implements
// io.Closer, writeTo closes it after the stream is drained.
func streamBodyFrom(r io.Reader) responseBody {
	body := responseBody{kind: bodyStream, stream: r}
	if c, ok := r.(io.Closer); ok {
		body.closer = c
	}
	return body
}

// writeTo copies the body to w, closing any underlying stream when done.
func (b responseBody) writeTo(w io.Writer) (int64, error) {
	defer func() {
		if b.closer != nil {
			_ = b.closer.Close()
		}
	}()

	switch b.kind {
	case bodyBuffer:
		n, err := w.Write(b.buffer)
		return int64(n), err
	case bodyStream:
		return io.Copy(w, b.stream)
	default:
		return 0, nil
	}
}

// Response is the value every dispatch-chain entry either returns or
// delegates to Next for (§3 "Response", §4.K). Unlike the teacher's
// original gin-style Context that writes straight to an http.ResponseWriter,
// Response is plain data: middleware build and return it, and only the
// Server Adapter (component L) ever writes it to the wire. This lets
// middleware freely inspect, replace, or discard a downstream Response
// before it reaches the client (§4.N "Inspect"/"Rescue" combinators).
type Response struct {
	Status int
	Header http.Header
	Body   responseBody
}

// NewResponse returns a Response with status and an empty body. Callers
// typically chain one of JSON/String/Bytes/Stream to attach a body.
func NewResponse(status int) *Response {
	return &Response{Status: status, Header: make(http.Header), Body: emptyBody()}
}

// JSON sets the body to the JSON encoding of v and the Content-Type header
// accordingly.
func (r *Response) JSON(v any) *Response {
	body, err := json.Marshal(v)
	if err != nil {
		return rescueToResponse(NewError(fmt.Errorf("router: encode json response: %w", err)), nil)
	}
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set("Content-Type", "application/json; charset=utf-8")
	r.Body = bufferBody(body)
	return r
}

// String sets the body to s as plain text.
func (r *Response) String(s string) *Response {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	if r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", "text/plain; charset=utf-8")
	}
	r.Body = bufferBody([]byte(s))
	return r
}

// Bytes sets the body to the raw bytes b.
func (r *Response) Bytes(b []byte) *Response {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	if r.Header.Get("Content-Type") == "" {
		r.Header.Set("Content-Type", "application/octet-stream")
	}
	r.Body = bufferBody(b)
	return r
}

// Stream sets the body to a reader consumed lazily while the response is
// written to the client, per the spec's "stream" body variant.
func (r *Response) Stream(rd io.Reader) *Response {
	r.Body = streamBodyFrom(rd)
	return r
}

// BufferedBody returns the response's in-memory body and true, or (nil,
// false) if the body is empty or a stream. Used by middleware (e.g.
// compression) that needs to transform an already-materialized body.
func (r *Response) BufferedBody() ([]byte, bool) {
	if r.Body.kind != bodyBuffer {
		return nil, false
	}
	return r.Body.buffer, true
}

// IsStream reports whether the response body is a lazily-consumed stream
// rather than a materialized buffer.
func (r *Response) IsStream() bool {
	return r.Body.kind == bodyStream
}

// StreamReader returns the underlying stream reader and true when
// IsStream is true, or (nil, false) otherwise. Taking ownership of the
// reader this way bypasses Response's own Close-on-write behavior, so
// callers that consume it must close it themselves if it is an io.Closer.
func (r *Response) StreamReader() (io.Reader, bool) {
	if r.Body.kind != bodyStream {
		return nil, false
	}
	return r.Body.stream, true
}

// SetHeader sets a response header, allocating the header map if needed.
func (r *Response) SetHeader(key, value string) *Response {
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	r.Header.Set(key, value)
	return r
}

// writeTo writes the status line, headers, and body to w (the Server
// Adapter's sole write path, component L).
func (r *Response) writeTo(w http.ResponseWriter) {
	header := w.Header()
	for key, values := range r.Header {
		for _, v := range values {
			header.Add(key, v)
		}
	}

	status := r.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	_, _ = r.Body.writeTo(w)
}
