// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"math"
	"testing"
	"time"

	"github.com/gogama/apireq/request"
	"github.com/stretchr/testify/assert"
)

func TestDefault(t *testing.T) {
	assert.Equal(t, 15*time.Second, DefaultPolicy.Timeout(&request.Execution{}))
	assert.Equal(t, DefaultTimeout, DefaultPolicy.Timeout(&request.Execution{Descriptor: &request.Descriptor{Method: "GET"}}))
}

func TestInfinite(t *testing.T) {
	assert.Equal(t, time.Duration(math.MaxInt64), Infinite.Timeout(&request.Execution{}))
}

func TestFixed(t *testing.T) {
	p := Fixed(33 * time.Hour)
	assert.Equal(t, 33*time.Hour, p.Timeout(&request.Execution{}))
	assert.Equal(t, 33*time.Hour, p.Timeout(&request.Execution{Descriptor: &request.Descriptor{Route: "/channels/:id"}}))
}
