// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Error is the cause recorded on a request context when its timeout
// guard fires. It reports Timeout() true, so it is categorized as a
// timeout by package transient and by url.Error.
type Error struct {
	// Duration is the timeout that elapsed.
	Duration time.Duration
}

func (err *Error) Error() string {
	return fmt.Sprintf("apireq/timeout: request timed out after %s", err.Duration)
}

// Timeout always returns true.
func (err *Error) Timeout() bool {
	return true
}

// A Guard bounds one request execution. Arm creates it, and Release
// must be called exactly once on every exit path; calls after the
// first do nothing.
type Guard struct {
	ctx    context.Context
	cancel context.CancelCauseFunc
	timer  Timer
	once   sync.Once
}

// Arm derives a context from parent that is canceled with cause *Error
// when d elapses, scheduling the cancellation on s. The returned
// context is the abort signal to hand to the transport.
func Arm(parent context.Context, s Scheduler, d time.Duration) (context.Context, *Guard) {
	ctx, cancel := context.WithCancelCause(parent)
	g := &Guard{
		ctx:    ctx,
		cancel: cancel,
	}
	cause := &Error{Duration: d}
	g.timer = s.AfterFunc(d, func() {
		cancel(cause)
	})
	return ctx, g
}

// Release stops the timer and releases the derived context. Only the
// first call has an effect.
func (g *Guard) Release() {
	g.once.Do(func() {
		g.timer.Stop()
		g.cancel(nil)
	})
}

// Fired returns the timeout error if the guard's timer fired before
// it was released, and nil otherwise.
func (g *Guard) Fired() *Error {
	var err *Error
	if errors.As(context.Cause(g.ctx), &err) {
		return err
	}
	return nil
}
