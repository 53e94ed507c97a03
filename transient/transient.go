// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transient

import (
	"context"
	"errors"
	"syscall"
)

// A Category is the transience category of an error, as reported by
// Categorize.
//
// Not means a new request built from the same inputs is very unlikely
// to succeed. Canceled means the caller gave up on the request, which
// says nothing about the remote API. Every other category means a new
// attempt has a fair prospect of success.
type Category int

const (
	// Not indicates any non-transient error, and the nil error.
	Not Category = iota
	// Timeout indicates a client-side timeout: either the request
	// timeout guard fired, or a deadline on the caller's context
	// expired, or the network stack reported a timeout.
	//
	// Categorize returns Timeout if the error or any of its wrapped
	// causes has a Timeout method that reports true.
	Timeout
	// Canceled indicates the caller's context was canceled before the
	// request settled. It is never returned for a timeout.
	Canceled
	// ConnRefused indicates the remote host refused the connection
	// (ECONNREFUSED). It is transient because the remote service may
	// be restarting.
	ConnRefused
	// ConnReset indicates the remote host reset a previously active
	// connection (ECONNRESET), which commonly happens behind load
	// balancers and during deployments.
	ConnReset
)

var categoryNames = [...]string{
	"Not",
	"Timeout",
	"Canceled",
	"ConnRefused",
	"ConnReset",
}

// String returns the name of the category.
func (c Category) String() string {
	if c < 0 || int(c) >= len(categoryNames) {
		return "Unknown"
	}
	return categoryNames[c]
}

// Transient reports whether c indicates a retryable condition. Not and
// Canceled are not transient.
func (c Category) Transient() bool {
	return c == Timeout || c == ConnRefused || c == ConnReset
}

// Categorize returns the transience category of err. Wrapped causes
// are inspected as well as err itself. Categorize never consults a
// Temporary method, since its semantics are unclear.
func Categorize(err error) Category {
	if err == nil {
		return Not
	}

	var hasTimeout hasTimeout
	if errors.As(err, &hasTimeout) && hasTimeout.Timeout() {
		return Timeout
	}

	if errors.Is(err, context.Canceled) {
		return Canceled
	}

	var errno syscall.Errno
	if errors.As(err, &errno) {
		if errno == syscall.ECONNRESET {
			return ConnReset
		} else if errno == syscall.ECONNREFUSED {
			return ConnRefused
		}
	}

	return Not
}

type hasTimeout interface {
	Timeout() bool
}
