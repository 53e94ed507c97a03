// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"net/http"
	"net/url"
	"strings"
)

func urlError(r *http.Request, err error) error {
	u := ""
	if r.URL != nil {
		u = r.URL.String()
	}
	return &url.Error{
		Op:  urlErrorOp(r.Method),
		URL: u,
		Err: err,
	}
}

// urlErrorOp matches the Op of errors returned by http.Client.
func urlErrorOp(method string) string {
	if method == "" {
		return "Get"
	}
	return method[:1] + strings.ToLower(method[1:])
}
