// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apireq

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gogama/apireq/request"
	"github.com/gogama/apireq/timeout"
)

// ErrAlreadyExecuted is returned by Request.Execute on every call after
// the first.
var ErrAlreadyExecuted = errors.New("apireq: request already executed")

const nilCtxMsg = "apireq: nil context"

// A Request is one API request, fully built from a method, a path and
// a request.Options value. Everything about the request is decided
// when it is built; executing it only sends it.
//
// A Request may be executed once.
type Request struct {
	// Route is the rate-limit bucket key from Options.Route. It is
	// carried for the caller and not interpreted.
	Route string
	// Options are the options the request was built from.
	Options request.Options
	// Descriptor is the built request.
	Descriptor *request.Descriptor
	// Retries counts retries made by the caller. It starts at zero and
	// is never incremented by this package.
	Retries int

	client   *Client
	executed atomic.Bool
}

// NewRequest builds a request for method and the API path under the
// client's configuration.
//
// The build is deterministic: the same method, path, options and
// configuration always yield an equal Descriptor. Every build failure
// is returned here, before anything is scheduled or sent. Data that
// cannot be encoded, and file payloads that cannot be read, produce a
// *request.EncodingError.
func (c *Client) NewRequest(method, path string, opts request.Options) (*Request, error) {
	d, err := c.describe(method, path, &opts)
	if err != nil {
		return nil, err
	}
	return &Request{
		Route:      opts.Route,
		Options:    opts,
		Descriptor: d,
		client:     c,
	}, nil
}

func (c *Client) describe(method, path string, opts *request.Options) (*request.Descriptor, error) {
	path = opts.Query.AppendTo(path)
	u := c.config.API + path
	if !opts.Unversioned {
		u = c.config.API + "/v" + strconv.Itoa(c.config.Version) + path
	}

	body, err := request.EncodeBody(opts)
	if err != nil {
		return nil, err
	}

	layers := []request.HeaderLayer{
		request.NewHeaderLayer("defaults", c.config.Headers),
		request.SingleHeaderLayer("user-agent", request.HeaderUserAgent, c.userAgent),
	}
	if !opts.NoAuth && c.authorizer != nil {
		auth, err := c.authorizer.Authorization()
		if err != nil {
			return nil, fmt.Errorf("apireq: authorization: %w", err)
		}
		if auth != "" {
			layers = append(layers, request.SingleHeaderLayer("authorization", request.HeaderAuthorization, auth))
		}
	}
	if opts.Reason != "" {
		layers = append(layers, request.SingleHeaderLayer("reason", request.HeaderAuditLogReason, request.EncodeReason(opts.Reason)))
	}
	layers = append(layers, request.NewHeaderLayer("options", opts.Headers))
	if ct := body.ContentType(); ct != "" {
		layers = append(layers, request.SingleHeaderLayer("body", request.HeaderContentType, ct))
	}

	return request.NewDescriptor(method, u, request.MergeHeaders(layers...), body, opts.Route)
}

// Execute sends the request and returns the result.
//
// The request is bounded by the client's timeout policy. The timeout
// guard is armed before the request is sent and released exactly once
// when the execution ends, whether it succeeded, failed, timed out or
// panicked. Canceling ctx aborts the request as well.
//
// An error is returned if the request could not be sent, no response
// arrived, or the response body could not be read. Any returned error
// is of type *url.Error. When the timeout elapses first, the
// url.Error wraps a *timeout.Error and its Timeout method returns
// true. Other transport errors are returned as the HTTPDoer reported
// them. A non-2XX status code never results in an error.
//
// The returned Execution is nil only if ctx is nil or the request was
// already executed, in which case the error is ErrAlreadyExecuted.
// Otherwise its Err field references the returned error.
func (r *Request) Execute(ctx context.Context) (*request.Execution, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	if !r.executed.CompareAndSwap(false, true) {
		return nil, ErrAlreadyExecuted
	}

	c := r.client
	e := request.NewExecution(r.Descriptor)
	c.handlers.run(BeforeExecute, e)
	e.Start = time.Now()
	c.send(ctx, e)
	if e.Timeout() {
		c.handlers.run(AfterTimeout, e)
	}
	e.End = time.Now()
	c.handlers.run(AfterExecute, e)
	return e, e.Err
}

func (c *Client) send(ctx context.Context, e *request.Execution) {
	d := e.Descriptor
	reqCtx, guard := timeout.Arm(ctx, c.scheduler, c.timeoutPolicy.Timeout(e))
	defer guard.Release()

	var err error
	e.Request, err = d.ToRequest(reqCtx)
	if err != nil {
		e.Err = urlErrorWrap(d, err)
		return
	}
	c.handlers.run(BeforeSend, e)
	e.Response, err = c.doer.Do(e.Request)
	if err != nil {
		e.Response = nil
		e.Err = sendErrorWrap(d, guard, err)
		return
	}
	readBody(d, e, guard)
}

func readBody(d *request.Descriptor, e *request.Execution, guard *timeout.Guard) {
	defer func() {
		_ = e.Response.Body.Close()
	}()
	var err error
	e.Body, err = io.ReadAll(e.Response.Body)
	if err != nil {
		e.Err = sendErrorWrap(d, guard, err)
	}
}

// sendErrorWrap replaces err with the guard's timeout error if the
// guard fired and err is the resulting cancellation. Any other error
// is the transport's own and is kept even if the timer fired late.
func sendErrorWrap(d *request.Descriptor, guard *timeout.Guard, err error) error {
	if fired := guard.Fired(); fired != nil && isCancellation(err) {
		return &url.Error{
			Op:  urlErrorOp(d.Method),
			URL: d.URL.String(),
			Err: fired,
		}
	}
	return urlErrorWrap(d, err)
}

// isCancellation reports whether err is how the transport reports an
// aborted request context. net/http's own "request canceled" error is
// unexported, so it is matched by text.
func isCancellation(err error) bool {
	var timeoutErr *timeout.Error
	return errors.Is(err, context.Canceled) ||
		errors.As(err, &timeoutErr) ||
		strings.Contains(err.Error(), "request canceled")
}

func urlErrorWrap(d *request.Descriptor, err error) error {
	if _, ok := err.(*url.Error); ok {
		return err
	}

	return &url.Error{
		Op:  urlErrorOp(d.Method),
		URL: d.URL.String(),
		Err: err,
	}
}

// urlErrorOp is lifted verbatim from net/http/client.go
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
