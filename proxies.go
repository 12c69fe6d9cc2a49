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
	"fmt"
	"net"
	"strings"
)

// RealIPHeader names a header consulted for the real client IP.
type RealIPHeader string

const (
	// HeaderXFF is the X-Forwarded-For header.
	HeaderXFF RealIPHeader = "X-Forwarded-For"

	// HeaderXRealIP is the X-Real-IP header.
	HeaderXRealIP RealIPHeader = "X-Real-IP"

	// HeaderCFConnecting is the CF-Connecting-IP header (Cloudflare).
	HeaderCFConnecting RealIPHeader = "CF-Connecting-IP"
)

// TrustedProxyOption configures trusted proxy detection for ClientIP.
type TrustedProxyOption func(*trustedProxyConfig)

type trustedProxyConfig struct {
	proxies []string
	headers []RealIPHeader
	maxHops int
}

// realIPConfig is the compiled form of trustedProxyConfig.
type realIPConfig struct {
	cidrs   []*net.IPNet
	headers []RealIPHeader
	maxHops int
}

// WithProxies sets the trusted proxy CIDR ranges. Only requests whose peer
// address falls in one of these ranges have their forwarding headers
// trusted.
func WithProxies(cidrs ...string) TrustedProxyOption {
	return func(cfg *trustedProxyConfig) {
		cfg.proxies = cidrs
	}
}

// WithProxyHeaders sets which headers ClientIP consults, in order of
// preference. Defaults to [HeaderXFF, HeaderXRealIP].
func WithProxyHeaders(headers ...RealIPHeader) TrustedProxyOption {
	return func(cfg *trustedProxyConfig) {
		cfg.headers = headers
	}
}

// WithProxyMaxHops caps how many trusted proxies ClientIP walks back
// through in X-Forwarded-For before giving up. Defaults to 1.
func WithProxyMaxHops(maxHops int) TrustedProxyOption {
	return func(cfg *trustedProxyConfig) {
		cfg.maxHops = maxHops
	}
}

func compileProxies(opts *trustedProxyConfig) (*realIPConfig, error) {
	cfg := &realIPConfig{
		headers: opts.headers,
		maxHops: opts.maxHops,
	}

	if len(cfg.headers) == 0 {
		cfg.headers = []RealIPHeader{HeaderXFF, HeaderXRealIP}
	}
	if cfg.maxHops <= 0 {
		cfg.maxHops = 1
	}

	cfg.cidrs = make([]*net.IPNet, 0, len(opts.proxies))
	for _, cidr := range opts.proxies {
		_, ipnet, err := net.ParseCIDR(cidr)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR %q: %w", cidr, err)
		}
		cfg.cidrs = append(cfg.cidrs, ipnet)
	}

	return cfg, nil
}

func (cfg *realIPConfig) isTrusted(ip string) bool {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return false
	}
	for _, ipnet := range cfg.cidrs {
		if ipnet.Contains(parsed) {
			return true
		}
	}
	return false
}

// WithTrustedProxies configures trusted proxy detection for ClientIP.
//
// Security: only peers within the given CIDR ranges have their
// X-Forwarded-For/X-Real-IP/etc. headers trusted, preventing IP spoofing
// from untrusted clients.
func WithTrustedProxies(opts ...TrustedProxyOption) Option {
	return func(r *Router) {
		cfg := &trustedProxyConfig{}
		for _, opt := range opts {
			opt(cfg)
		}

		compiled, err := compileProxies(cfg)
		if err != nil {
			panic(fmt.Sprintf("router: invalid trusted proxy configuration: %v", err))
		}
		r.realip = compiled
	}
}

// ClientIP returns the request's real client address, respecting trusted
// proxy headers (§4.H, extended beyond the distilled spec since rate
// limiting and access logging both need a spoof-resistant client address).
//
// Algorithm: take the TCP peer from RemoteAddr; if that peer isn't in the
// trusted CIDR list, return it unconditionally. Otherwise walk the
// configured headers in order; for X-Forwarded-For the result is the
// leftmost entry that is not a trusted proxy address (see lastUntrustedXFF).
func (c *Context) ClientIP() string {
	remote := clientIPFromRemoteAddr(c.Request.RemoteAddr)

	if c.router == nil || c.router.realip == nil {
		return remote
	}
	cfg := c.router.realip

	if !cfg.isTrusted(remote) {
		return remote
	}

	for _, h := range cfg.headers {
		switch h {
		case HeaderXFF:
			xff := c.Request.Header.Get("X-Forwarded-For")
			if ip := lastUntrustedXFF(xff, cfg); ip != "" {
				if strings.Count(xff, ",") > 10 {
					c.Logger().Warn("suspicious X-Forwarded-For chain",
						"remote", remote, "hops", strings.Count(xff, ",")+1)
				}
				return ip
			}
		case HeaderXRealIP:
			if ip := parseOneIP(c.Request.Header.Get("X-Real-IP")); ip != "" {
				return ip
			}
		case HeaderCFConnecting:
			if ip := parseOneIP(c.Request.Header.Get("Cf-Connecting-Ip")); ip != "" {
				return ip
			}
		default:
			if ip := parseOneIP(c.Request.Header.Get(string(h))); ip != "" {
				return ip
			}
		}
	}

	return remote
}

func clientIPFromRemoteAddr(remoteAddr string) string {
	if remoteAddr == "" {
		return ""
	}
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}

// lastUntrustedXFF finds the leftmost untrusted IP in the X-Forwarded-For
// chain. A walk from the right (nearest proxy) that stops once MaxHops
// trusted hops have been crossed decides whether any untrusted entry is
// found; when one is, the returned value is the first untrusted entry of
// the whole chain.
func lastUntrustedXFF(xff string, cfg *realIPConfig) string {
	if xff == "" {
		return ""
	}

	parts := splitAndTrim(xff, ',')
	if len(parts) == 0 {
		return ""
	}

	hops := 0
	leftmostUntrusted := ""

	for i := len(parts) - 1; i >= 0; i-- {
		ip := parseOneIP(parts[i])
		if ip == "" {
			continue
		}
		if cfg.isTrusted(ip) {
			hops++
			if cfg.maxHops > 0 && hops > cfg.maxHops {
				break
			}
			continue
		}
		leftmostUntrusted = ip
	}

	if leftmostUntrusted != "" {
		for i := range parts {
			if ip := parseOneIP(parts[i]); ip != "" && !cfg.isTrusted(ip) {
				return ip
			}
		}
		return leftmostUntrusted
	}

	if len(parts) > 0 {
		if ip := parseOneIP(parts[0]); ip != "" {
			return ip
		}
	}

	return ""
}

func parseOneIP(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	ip := net.ParseIP(s)
	if ip == nil {
		return ""
	}
	return ip.String()
}

func splitAndTrim(s string, sep byte) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, string(sep))
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
