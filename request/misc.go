// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"errors"
	"io"
)

const badFileTypeMsg = "apireq/request: invalid type (for a file payload use " +
	"string, []byte, io.Reader or io.ReadCloser)"

// BodyBytes converts a file payload to a byte slice so the multipart
// body can be fully encoded when the request is built.
//
// The conversion logic is:
//
// • If x is nil, a nil byte slice and no error is returned.
//
// • If x is a []byte, x itself and no error is returned.
//
// • If x is a string, its bytes and no error are returned.
//
// • If x is an io.Reader or io.ReadCloser, the whole contents of the
// reader are returned, and the reader is closed if it implements
// io.Closer. A read or close error is returned with a nil byte slice.
//
// • Any other type produces a nil byte slice and an error.
func BodyBytes(x interface{}) ([]byte, error) {
	switch v := x.(type) {
	case nil:
		return nil, nil
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case io.ReadCloser:
		b, err := io.ReadAll(v)
		if err != nil {
			_ = v.Close()
			return nil, err
		}
		if err = v.Close(); err != nil {
			return nil, err
		}
		return b, nil
	case io.Reader:
		return BodyBytes(io.NopCloser(v))
	default:
		return nil, errors.New(badFileTypeMsg)
	}
}
