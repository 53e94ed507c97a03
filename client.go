// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apireq

import (
	"context"
	"net/http"

	"github.com/gogama/apireq/config"
	"github.com/gogama/apireq/request"
	"github.com/gogama/apireq/timeout"
	"github.com/gogama/apireq/transport"
)

// An HTTPDoer implements a Do method in the same manner as the GoLang
// standard library http.Client from the net/http package.
type HTTPDoer interface {
	// Do sends an HTTP request and returns an HTTP response.
	//
	// The Do method must follow the contract documented on the GoLang
	// standard library http.Client from the net/http package. In
	// particular, it must abort promptly when the request context is
	// canceled.
	Do(r *http.Request) (*http.Response, error)
}

var emptyHandlers = HandlerGroup{}

// A Client builds and executes API requests against one API host
// using one long-lived configuration.
//
// The Client owns a pooled transport, created by New, unless a custom
// HTTPDoer is supplied with WithHTTPDoer. Clients should be reused
// rather than created as needed, and closed when no longer needed.
// Client is safe for concurrent use by multiple goroutines.
//
// On top of the HTTP features of the HTTPDoer, Client adds the
// following:
//
// • a declarative request model (request.Options) covering query
// normalization, versioned URLs, layered headers and JSON or multipart
// bodies;
//
// • a timeout guard on every execution, armed on a pluggable
// scheduler and released exactly once however the execution ends;
//
// • buffering of the entire response body into Execution.Body; and
//
// • handler chains invoked at designated plug-in points of each
// execution, which is how packages logging and tracing attach.
//
// Client never retries, never rate-limits and never interprets the
// response status code.
type Client struct {
	config        config.Client
	userAgent     string
	doer          HTTPDoer
	owned         *transport.Transport
	authorizer    Authorizer
	handlers      *HandlerGroup
	scheduler     timeout.Scheduler
	timeoutPolicy timeout.Policy
}

// An Option customizes a Client created by New.
type Option func(*Client)

// WithHTTPDoer makes the client send requests with d instead of a
// transport of its own. The client never closes d.
func WithHTTPDoer(d HTTPDoer) Option {
	return func(c *Client) { c.doer = d }
}

// WithAuthorizer sets the source of the Authorization header. Without
// an authorizer, no Authorization header is sent.
func WithAuthorizer(a Authorizer) Option {
	return func(c *Client) { c.authorizer = a }
}

// WithHandlers installs event handler chains in the client.
func WithHandlers(g *HandlerGroup) Option {
	return func(c *Client) {
		if g != nil {
			c.handlers = g
		}
	}
}

// WithScheduler sets the scheduler timeout guards are armed on. The
// default is timeout.RealScheduler.
func WithScheduler(s timeout.Scheduler) Option {
	return func(c *Client) { c.scheduler = s }
}

// WithTimeoutPolicy replaces the fixed timeout taken from
// config.Client.RequestTimeout.
func WithTimeoutPolicy(p timeout.Policy) Option {
	return func(c *Client) { c.timeoutPolicy = p }
}

// New creates a Client from cfg. Zero-valued fields of cfg take their
// defaults, and the result is validated.
func New(cfg config.Client, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.Headers = cloneMap(cfg.Headers)
	cfg.UserAgentSuffix = append([]string(nil), cfg.UserAgentSuffix...)

	c := &Client{
		config:    cfg,
		userAgent: cfg.FullUserAgent(),
		handlers:  &emptyHandlers,
		scheduler: timeout.RealScheduler,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.scheduler == nil {
		c.scheduler = timeout.RealScheduler
	}
	if c.timeoutPolicy == nil {
		c.timeoutPolicy = timeout.Fixed(cfg.RequestTimeout)
	}
	if c.doer == nil {
		t, err := transport.New(cfg.Transport)
		if err != nil {
			return nil, err
		}
		c.doer = t
		c.owned = t
	}
	return c, nil
}

// Config returns the client's configuration with defaults applied.
func (c *Client) Config() config.Client {
	return c.config
}

// UserAgent returns the User-Agent header value the client sends.
func (c *Client) UserAgent() string {
	return c.userAgent
}

// Do builds a request with NewRequest and executes it.
//
// For simple use cases, the Get, Post, Put, Patch and Delete methods
// may prove easier to use than Do.
func (c *Client) Do(ctx context.Context, method, path string, opts request.Options) (*request.Execution, error) {
	r, err := c.NewRequest(method, path, opts)
	if err != nil {
		return nil, err
	}
	return r.Execute(ctx)
}

// Get issues a GET to the API path, using the same policies followed
// by Do.
func (c *Client) Get(ctx context.Context, path string, opts request.Options) (*request.Execution, error) {
	return Get(ctx, c, path, opts)
}

// Post issues a POST to the API path, using the same policies followed
// by Do.
func (c *Client) Post(ctx context.Context, path string, opts request.Options) (*request.Execution, error) {
	return Post(ctx, c, path, opts)
}

// Put issues a PUT to the API path, using the same policies followed
// by Do.
func (c *Client) Put(ctx context.Context, path string, opts request.Options) (*request.Execution, error) {
	return Put(ctx, c, path, opts)
}

// Patch issues a PATCH to the API path, using the same policies
// followed by Do.
func (c *Client) Patch(ctx context.Context, path string, opts request.Options) (*request.Execution, error) {
	return Patch(ctx, c, path, opts)
}

// Delete issues a DELETE to the API path, using the same policies
// followed by Do.
func (c *Client) Delete(ctx context.Context, path string, opts request.Options) (*request.Execution, error) {
	return Delete(ctx, c, path, opts)
}

// CloseIdleConnections invokes the same method on the client's
// HTTPDoer. If the HTTPDoer has no CloseIdleConnections method, this
// method does nothing.
func (c *Client) CloseIdleConnections() {
	if ic, ok := c.doer.(IdleCloser); ok {
		ic.CloseIdleConnections()
	}
}

// Close closes the transport owned by the client. An HTTPDoer supplied
// with WithHTTPDoer is left open. Close always returns nil.
func (c *Client) Close() error {
	if c.owned != nil {
		return c.owned.Close()
	}
	return nil
}

func cloneMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	n := make(map[string]string, len(m))
	for k, v := range m {
		n[k] = v
	}
	return n
}
