// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package request contains the data model of an API request: the Options
a caller supplies, the Descriptor built from them, and the Execution
that records what happened when the Descriptor was sent.

Options is declarative. It names a route, query parameters, headers,
an audit-log reason, file uploads and a structured payload, and leaves
the wire details to the builder in package apireq:

	opts := request.Options{
		Route: "/channels/:id/messages",
		Query: request.Query{{Key: "limit", Value: 50}},
		Data:  map[string]interface{}{"content": "hello"},
	}

A Descriptor is the fully determined request: method, URL, merged
headers and an encoded Body. Building it is a pure function of its
inputs (apart from the live authorization value), so two builds from
equal inputs produce equal descriptors. The Body is one of exactly
three variants, NoBody, JSONBody and MultipartBody, chosen once at build
time.

An Execution is both the result of executing a Descriptor and the value
handed to timeout policies and event handlers while the execution is in
flight. You will typically not allocate Execution values yourself.
*/
package request
