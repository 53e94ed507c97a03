// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transport provides the pooled HTTP transport owned by an
// apireq.Client.
//
// A Transport is created explicitly, shared by every request of its
// client, and closed with the client. There is no process-wide
// connection pool.
package transport

import (
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gogama/apireq/config"
	"golang.org/x/net/http2"
)

// ErrClosed is returned by Do after Close has been called.
var ErrClosed = errors.New("apireq/transport: transport closed")

// A Transport sends HTTP requests over a pool of keep-alive
// connections, negotiating HTTP/2 over TLS unless it is disabled. It
// is safe for concurrent use by multiple goroutines.
type Transport struct {
	base   *http.Transport
	client *http.Client
	closed atomic.Bool
}

// An Option customizes New.
type Option func(*options)

type options struct {
	tlsConfig *tls.Config
}

// WithTLSConfig sets the TLS client configuration. The configuration
// is cloned.
func WithTLSConfig(c *tls.Config) Option {
	return func(o *options) { o.tlsConfig = c }
}

// New creates a Transport from cfg. Zero-valued fields of cfg take
// their defaults.
func New(cfg config.Transport, opts ...Option) (*Transport, error) {
	cfg.ApplyDefaults()
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: cfg.KeepAlive,
	}
	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxConnsPerHost:       cfg.MaxConnsPerHost,
		MaxIdleConnsPerHost:   cfg.MaxIdleConnsPerHost,
		IdleConnTimeout:       cfg.IdleConnTimeout,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ExpectContinueTimeout: time.Second,
	}
	if o.tlsConfig != nil {
		base.TLSClientConfig = o.tlsConfig.Clone()
	}

	if cfg.DisableHTTP2 {
		// A non-nil empty map turns off HTTP/2 negotiation.
		base.TLSNextProto = make(map[string]func(string, *tls.Conn) http.RoundTripper)
	} else {
		h2, err := http2.ConfigureTransports(base)
		if err != nil {
			return nil, err
		}
		// Ping idle HTTP/2 connections at the keep-alive period.
		h2.ReadIdleTimeout = cfg.KeepAlive
	}

	return &Transport{
		base:   base,
		client: &http.Client{Transport: base},
	}, nil
}

// Do sends r and returns the response, following the contract of
// http.Client.Do. Any error is of type *url.Error.
func (t *Transport) Do(r *http.Request) (*http.Response, error) {
	if t.closed.Load() {
		return nil, urlError(r, ErrClosed)
	}
	return t.client.Do(r)
}

// CloseIdleConnections closes connections sitting idle in the pool.
// Connections in use are not interrupted.
func (t *Transport) CloseIdleConnections() {
	t.base.CloseIdleConnections()
}

// Close stops the transport from accepting new requests and closes its
// idle connections. Requests already in flight run to completion.
// Close always returns nil; calls after the first do nothing.
func (t *Transport) Close() error {
	if t.closed.CompareAndSwap(false, true) {
		t.base.CloseIdleConnections()
	}
	return nil
}
