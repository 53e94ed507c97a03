// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"time"

	"github.com/gogama/apireq/request"
)

// A Policy decides the timeout for an API request execution.
//
// Implementations of Policy must be safe for concurrent use by multiple
// goroutines.
type Policy interface {
	// Timeout returns the timeout to set on the request whose execution
	// is about to start. The execution's Descriptor is set; no other
	// fields are.
	Timeout(e *request.Execution) time.Duration
}

// DefaultTimeout is the request timeout used by DefaultPolicy.
const DefaultTimeout = 15 * time.Second

// DefaultPolicy sets a fixed timeout of DefaultTimeout on each request.
var DefaultPolicy Policy = Fixed(DefaultTimeout)

// Infinite is a built-in timeout policy which never times out.
var Infinite Policy = Fixed(1<<63 - 1)

// Fixed constructs a timeout policy that returns d for every request.
func Fixed(d time.Duration) Policy {
	return fixed(d)
}

type fixed time.Duration

func (p fixed) Timeout(_ *request.Execution) time.Duration {
	return time.Duration(p)
}
