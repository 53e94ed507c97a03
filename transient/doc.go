// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package transient classifies errors returned from executing an API
// request. Callers that own retry or rate-limit orchestration use the
// category to decide whether a failed request is worth sending again.
//
// The package depends only on the standard library, so it can be
// imported on its own without pulling in the rest of apireq.
package transient
