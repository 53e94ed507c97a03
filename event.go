// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apireq

// An Event identifies the event type when installing or running a
// Handler. Install event handlers in a Client to extend it with custom
// functionality.
type Event int

const (
	// BeforeExecute identifies the event that occurs before a request
	// execution starts.
	//
	// When Client fires BeforeExecute, the execution is non-nil but
	// the only fields that have been set are the ID and the
	// descriptor. No timeout guard exists yet.
	BeforeExecute Event = iota
	// BeforeSend identifies the event that occurs after the timeout
	// guard is armed and the HTTP request is built, immediately before
	// it is handed to the HTTPDoer.
	//
	// When Client fires BeforeSend, the execution's request field is
	// set to the HTTP request that WILL BE sent after all BeforeSend
	// handlers have finished. Its URL and Header are copies owned by
	// the execution, so handlers may change them. A handler replacing
	// the request context must derive the new context from the old one
	// or the timeout guard will no longer abort the request.
	BeforeSend
	// AfterTimeout identifies the event that occurs after a request
	// execution failed because of a timeout, either from the client's
	// timeout guard or from a deadline on the caller's context.
	//
	// When Client fires AfterTimeout, the execution's error field is
	// set to the timeout error and the timeout guard has been
	// released.
	AfterTimeout
	// AfterExecute identifies the event that occurs after the request
	// execution ends, regardless of whether it ended successfully.
	//
	// When Client fires AfterExecute, the end time is set and the
	// execution no longer changes.
	AfterExecute
	// eventSentinel provides the total number of events typed as an
	// Event.
	eventSentinel

	// numEvents provides the total number of events types as an int.
	numEvents = int(eventSentinel)
)

var eventNames = []string{
	"BeforeExecute",
	"BeforeSend",
	"AfterTimeout",
	"AfterExecute",
}

// Events returns a slice containing all events which can occur in a
// request execution by Client, in the order in which they would
// occur.
func Events() []Event {
	return []Event{
		BeforeExecute,
		BeforeSend,
		AfterTimeout,
		AfterExecute,
	}
}

// Name returns the name of the event.
func (evt Event) Name() string {
	return eventNames[int(evt)]
}

// String returns the name of the event.
func (evt Event) String() string {
	return evt.Name()
}
