// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package timeouttest provides a manually driven timeout.Scheduler for
// tests. Timers never fire on their own; a test fires them explicitly
// and inspects how often each one was stopped.
package timeouttest

import (
	"sync"
	"time"

	"github.com/gogama/apireq/timeout"
)

// Scheduler is a timeout.Scheduler whose timers fire only when the test
// calls Fire. The zero value is ready to use.
type Scheduler struct {
	mu     sync.Mutex
	timers []*Timer
}

var _ timeout.Scheduler = (*Scheduler)(nil)

// AfterFunc records a new pending timer.
func (s *Scheduler) AfterFunc(d time.Duration, f func()) timeout.Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &Timer{Duration: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

// Timers returns every timer scheduled so far, in scheduling order.
func (s *Scheduler) Timers() []*Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Timer(nil), s.timers...)
}

// Last returns the most recently scheduled timer, or nil.
func (s *Scheduler) Last() *Timer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.timers) == 0 {
		return nil
	}
	return s.timers[len(s.timers)-1]
}

// Timer is a timer created by Scheduler.
type Timer struct {
	// Duration is the delay the timer was scheduled with.
	Duration time.Duration

	mu      sync.Mutex
	f       func()
	stops   int
	stopped bool
	fired   bool
}

// Stop implements timeout.Timer.
func (t *Timer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stops++
	pending := !t.stopped && !t.fired
	t.stopped = true
	return pending
}

// Fire runs the timer's function synchronously if the timer is still
// pending, and reports whether it ran.
func (t *Timer) Fire() bool {
	t.mu.Lock()
	if t.stopped || t.fired {
		t.mu.Unlock()
		return false
	}
	t.fired = true
	f := t.f
	t.mu.Unlock()
	f()
	return true
}

// Stops returns the number of times Stop was called.
func (t *Timer) Stops() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.stops
}

// Fired reports whether Fire ran the timer's function.
func (t *Timer) Fired() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.fired
}
