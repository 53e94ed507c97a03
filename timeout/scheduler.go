// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package timeout

import "time"

// A Scheduler runs a function once after a delay.
//
// A timer created by a Scheduler is a background scheduling aid only:
// a pending timer must never keep the host process alive or delay its
// shutdown, and it must be possible to cancel it reliably with Stop.
//
// Implementations of Scheduler must be safe for concurrent use by
// multiple goroutines.
type Scheduler interface {
	// AfterFunc arranges for f to be called in its own goroutine after
	// duration d, unless the returned Timer is stopped first.
	AfterFunc(d time.Duration, f func()) Timer
}

// A Timer is a pending call scheduled by a Scheduler.
type Timer interface {
	// Stop prevents the call from firing. It returns true if the call
	// was still pending, and false if it already fired or was already
	// stopped.
	Stop() bool
}

// RealScheduler schedules calls on the Go runtime timer heap via
// time.AfterFunc. Runtime timers do not hold the process open, so the
// Scheduler contract is satisfied without further bookkeeping.
var RealScheduler Scheduler = realScheduler{}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
