// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apireq

import (
	"context"

	"github.com/gogama/apireq/request"
)

// Doer is the interface that wraps the basic Do method.
//
// Do builds an API request for method and path from opts, executes it,
// and returns the execution state (and error, if any). Client
// implements the Doer interface, and any other Doer implementation
// must behave substantially the same as Client.Do.
type Doer interface {
	Do(ctx context.Context, method, path string, opts request.Options) (*request.Execution, error)
}

// IdleCloser is the interface that wraps the basic CloseIdleConnections
// method.
//
// If the underlying implementation supports it, CloseIdleConnections
// closes any connections which were previously connected from previous
// requests but are now sitting idle in a "keep-alive" state. It does
// not interrupt any connections currently in use.
type IdleCloser interface {
	CloseIdleConnections()
}

// Get uses the specified Doer to issue a GET to the API path, using
// the same policies as d.Do.
func Get(ctx context.Context, d Doer, path string, opts request.Options) (*request.Execution, error) {
	return d.Do(ctx, "GET", path, opts)
}

// Post uses the specified Doer to issue a POST to the API path, using
// the same policies as d.Do.
func Post(ctx context.Context, d Doer, path string, opts request.Options) (*request.Execution, error) {
	return d.Do(ctx, "POST", path, opts)
}

// Put uses the specified Doer to issue a PUT to the API path, using
// the same policies as d.Do.
func Put(ctx context.Context, d Doer, path string, opts request.Options) (*request.Execution, error) {
	return d.Do(ctx, "PUT", path, opts)
}

// Patch uses the specified Doer to issue a PATCH to the API path,
// using the same policies as d.Do.
func Patch(ctx context.Context, d Doer, path string, opts request.Options) (*request.Execution, error) {
	return d.Do(ctx, "PATCH", path, opts)
}

// Delete uses the specified Doer to issue a DELETE to the API path,
// using the same policies as d.Do.
func Delete(ctx context.Context, d Doer, path string, opts request.Options) (*request.Execution, error) {
	return d.Do(ctx, "DELETE", path, opts)
}
