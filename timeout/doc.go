// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeout bounds the time an API request may take. It defines
// the Policy that picks the request timeout, the Scheduler that runs
// the cancellation timer, and the Guard that ties the timer to the
// request context and releases it exactly once.
package timeout
