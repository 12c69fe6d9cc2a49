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
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// Serve starts the HTTP server on addr, following the stdlib pattern: it
// blocks until the server exits. Use Shutdown from another goroutine for
// graceful termination. Enables h2c automatically when WithH2C(true) was
// configured (§4.L).
func (r *Router) Serve(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return r.serve(ln)
}

// ServeTLS starts the HTTPS server on addr using the given certificate and
// key files. HTTP/2 negotiates automatically via ALPN; the connection
// semaphore and handshake timeout (§4.L) still apply, wrapping the raw TCP
// accept before TLS negotiation begins.
func (r *Router) ServeTLS(addr, certFile, keyFile string) error {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	r.serverMu.Lock()
	timeout := r.handshakeTimeout
	r.serverMu.Unlock()

	tlsLn := tls.NewListener(&handshakeDeadlineListener{Listener: ln, timeout: timeout}, &tls.Config{
		Certificates: []tls.Certificate{cert},
		NextProtos:   []string{"h2", "http/1.1"},
	})

	return r.serve(tlsLn)
}

func (r *Router) serve(ln net.Listener) error {
	h := http.Handler(r)
	if r.enableH2C {
		h = h2c.NewHandler(h, &http2.Server{})
	}

	timeouts := r.serverTimeouts
	if timeouts == nil {
		timeouts = defaultServerTimeouts()
	}

	srv := &http.Server{
		Handler:           h,
		ReadHeaderTimeout: timeouts.readHeader,
		ReadTimeout:       timeouts.read,
		WriteTimeout:      timeouts.write,
		IdleTimeout:       timeouts.idle,
	}

	r.serverMu.Lock()
	r.server = srv
	r.serverMu.Unlock()

	capacity := r.connectionCap
	if capacity <= 0 {
		capacity = defaultConnectionCap
	}

	return srv.Serve(newBoundedListener(ln, capacity))
}

// Shutdown gracefully shuts down the server, waiting for active connections
// to finish or ctx to be canceled.
func (r *Router) Shutdown(ctx context.Context) error {
	r.serverMu.Lock()
	srv := r.server
	r.server = nil
	r.serverMu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

// handshakeDeadlineListener sets a read/write deadline on every accepted
// connection so a stalled TLS handshake is abandoned after timeout rather
// than holding the connection slot indefinitely (§4.L).
type handshakeDeadlineListener struct {
	net.Listener
	timeout time.Duration
}

func (l *handshakeDeadlineListener) Accept() (net.Conn, error) {
	conn, err := l.Listener.Accept()
	if err != nil {
		return nil, err
	}
	if l.timeout > 0 {
		_ = conn.SetDeadline(time.Now().Add(l.timeout))
	}
	return &clearDeadlineConn{Conn: conn}, nil
}

// clearDeadlineConn clears the handshake deadline once the first byte of
// application data is read or written, so it never bounds the lifetime of
// an established connection.
type clearDeadlineConn struct {
	net.Conn
	cleared bool
}

func (c *clearDeadlineConn) clear() {
	if !c.cleared {
		_ = c.Conn.SetDeadline(time.Time{})
		c.cleared = true
	}
}

func (c *clearDeadlineConn) Read(b []byte) (int, error) {
	n, err := c.Conn.Read(b)
	c.clear()
	return n, err
}

func (c *clearDeadlineConn) Write(b []byte) (int, error) {
	n, err := c.Conn.Write(b)
	c.clear()
	return n, err
}

// boundedListener caps the number of simultaneously open connections with
// a buffered-channel semaphore and retries a saturated Accept with
// exponential backoff (base 50ms, capped at 10s), per §4.L "Server Adapter
// contract".
type boundedListener struct {
	net.Listener
	sem chan struct{}
}

func newBoundedListener(ln net.Listener, capacity int) *boundedListener {
	return &boundedListener{Listener: ln, sem: make(chan struct{}, capacity)}
}

const (
	backoffBase = 50 * time.Millisecond
	backoffCap  = 10 * time.Second
)

func (l *boundedListener) Accept() (net.Conn, error) {
	backoff := backoffBase
	for {
		select {
		case l.sem <- struct{}{}:
			conn, err := l.Listener.Accept()
			if err != nil {
				<-l.sem
				return nil, err
			}
			return &semaphoreConn{Conn: conn, sem: l.sem}, nil
		default:
			time.Sleep(backoff)
			backoff *= 2
			if backoff > backoffCap {
				backoff = backoffCap
			}
		}
	}
}

// semaphoreConn releases its listener's semaphore slot exactly once, on
// Close.
type semaphoreConn struct {
	net.Conn
	sem    chan struct{}
	closed bool
}

func (c *semaphoreConn) Close() error {
	err := c.Conn.Close()
	if !c.closed {
		<-c.sem
		c.closed = true
	}
	return err
}
