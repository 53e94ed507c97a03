// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"net/http"
	"time"

	"github.com/gogama/apireq/transient"
	"github.com/google/uuid"
)

// An Execution represents the state of a single Descriptor execution.
//
// The Execution is updated as the execution progresses and is
// ultimately returned as its result. Timeout policies and event
// handlers may attach values with SetValue and read them back with
// Value, but should treat the exported fields as read-only. The one
// exception is the outgoing Request during the BeforeSend event, which
// handlers may decorate (for example with trace propagation headers).
type Execution struct {
	// ID uniquely identifies the execution, e.g. for log correlation.
	ID uuid.UUID
	// Descriptor is the request being executed. It is never nil.
	Descriptor *Descriptor
	// Start is the time the execution started. It is zero until then.
	Start time.Time
	// End is the time the execution ended. It is zero until then.
	End time.Time
	// Request is the HTTP request handed to the transport. It is nil
	// until the request is about to be sent.
	Request *http.Request
	// Response is the HTTP response received from the transport, with
	// its body already consumed into Body and closed. It is nil if the
	// transport returned an error.
	Response *http.Response
	// Body is the complete response body. It is nil if the execution
	// failed before a response arrived.
	//
	// Body and Err may both be non-nil if reading the body failed part
	// way through, in which case Body should be treated as invalid.
	Body []byte
	// Err is the error that ended the execution, if any. Whenever Err
	// is non-nil, it has the type *url.Error. An HTTP status code never
	// produces an error.
	Err error

	data context.Context
}

// NewExecution returns an unstarted execution for d with a fresh ID.
func NewExecution(d *Descriptor) *Execution {
	return &Execution{
		ID:         uuid.New(),
		Descriptor: d,
	}
}

// StatusCode returns the status code of the HTTP response, or 0 if
// there is no response.
func (e *Execution) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.StatusCode
}

// Header returns the HTTP response headers, or a nil header if there
// is no response. The nil header is safe for read-only use.
func (e *Execution) Header() http.Header {
	if e.Response == nil {
		var nilHeader http.Header
		return nilHeader
	}
	return e.Response.Header
}

// Duration returns the duration of the execution: zero before it
// starts, the time elapsed so far while it is in flight, and End minus
// Start once it has ended.
func (e *Execution) Duration() time.Duration {
	if !e.Started() {
		return time.Duration(0)
	} else if !e.Ended() {
		return time.Since(e.Start)
	}
	return e.End.Sub(e.Start)
}

// Started indicates whether the execution has started.
func (e *Execution) Started() bool {
	return e.Start != (time.Time{})
}

// Ended indicates whether the execution has ended. Once it has, the
// execution no longer changes.
func (e *Execution) Ended() bool {
	return e.End != (time.Time{})
}

// Timeout indicates whether Err is a timeout, either from the request
// timeout guard or from a deadline on the caller's context.
func (e *Execution) Timeout() bool {
	return transient.Categorize(e.Err) == transient.Timeout
}

// SetValue stores arbitrary data in the execution. The key follows the
// rules of context.WithValue: it must be non-nil and comparable, and
// should be of an unexported type to avoid collisions.
func (e *Execution) SetValue(key, value interface{}) {
	ctx := e.data
	if ctx == nil {
		ctx = context.Background()
	}
	e.data = context.WithValue(ctx, key, value)
}

// Value returns the data value associated with key, or nil.
func (e *Execution) Value(key interface{}) interface{} {
	ctx := e.data
	if ctx == nil {
		return nil
	}
	return ctx.Value(key)
}
