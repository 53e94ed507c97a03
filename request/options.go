// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

// Options describes a single API request declaratively. The zero value
// is a valid, versioned, authenticated request with no query and no
// body.
//
// Options must not be modified after it has been handed to a builder.
type Options struct {
	// Route is an opaque key grouping requests into rate-limit buckets.
	// It is carried through to the Descriptor and never interpreted.
	Route string

	// Query holds the query parameters in the order they are emitted.
	// Parameters with a nil value are dropped; slice and array values
	// expand to one parameter per element.
	Query Query

	// Unversioned omits the API version segment from the URL.
	Unversioned bool

	// NoAuth omits the Authorization header.
	NoAuth bool

	// Reason, if not empty, is sent percent-encoded in the
	// X-Audit-Log-Reason header.
	Reason string

	// Headers are merged over every other header source except the
	// Content-Type of the encoded body.
	Headers map[string]string

	// Files are uploaded in order in a multipart body. A non-empty
	// Files always selects multipart encoding, even when Data is set.
	Files []File

	// Data is the structured payload. It is encoded as the JSON body,
	// or, when Files is not empty, as the payload_json field or as
	// individual fields (see DontUsePayloadJSON). A nil Data means no
	// payload.
	Data interface{}

	// DontUsePayloadJSON, when Files is not empty, sends each top-level
	// entry of Data as its own multipart field instead of a single
	// payload_json field.
	DontUsePayloadJSON bool
}

// A File is one file upload in a multipart request body.
type File struct {
	// Name is the file name sent to the server. It is also the field
	// name unless Key is set.
	Name string
	// Key optionally overrides the multipart field name.
	Key string
	// File is the file payload: a string, []byte, io.Reader or
	// io.ReadCloser. Readers are read to the end when the request is
	// built, and closed if they are io.ReadClosers. A nil File or an
	// empty string is skipped.
	File interface{}
	// ContentType is the MIME type of the part. If empty, it is guessed
	// from the extension of Name, falling back to
	// application/octet-stream.
	ContentType string
}

// FieldName returns the multipart field name used for f.
func (f File) FieldName() string {
	if f.Key != "" {
		return f.Key
	}
	return f.Name
}
