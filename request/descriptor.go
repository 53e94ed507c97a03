// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	urlpkg "net/url"
	"strings"
)

var (
	template, _ = http.NewRequest("GET", "", nil)
)

const (
	nilCtxMsg = "apireq/request: nil context"
)

// A Descriptor is a fully specified API request: the wire-level
// method, URL, headers and body derived from Options and the client
// configuration.
//
// A Descriptor is immutable once built. Its Header and Body must not
// be modified; use ToRequest to obtain a request that may be.
type Descriptor struct {
	// Method is the upper-case HTTP method.
	Method string

	// URL is the resolved request URL, including the query string.
	URL *urlpkg.URL

	// Header is the final merged header set.
	Header http.Header

	// Body is the encoded body variant. It is never nil.
	Body Body

	// Route is the rate-limit bucket key from Options.Route.
	Route string
}

// NewDescriptor validates and assembles a Descriptor.
//
// The method is matched case-insensitively and stored in upper case;
// an empty method means GET. A nil body means NoBody.
func NewDescriptor(method, url string, header http.Header, body Body, route string) (*Descriptor, error) {
	method = strings.ToUpper(method)
	if method == "" {
		method = "GET"
	}
	if !validMethod(method) {
		return nil, fmt.Errorf("apireq/request: invalid method %q", method)
	}
	u, err := urlpkg.Parse(url)
	if err != nil {
		return nil, err
	}
	u.Host = removeEmptyPort(u.Host)
	if header == nil {
		header = make(http.Header)
	}
	if body == nil {
		body = NoBody{}
	}
	return &Descriptor{
		Method: method,
		URL:    u,
		Header: header,
		Body:   body,
		Route:  route,
	}, nil
}

// ToRequest creates the HTTP request corresponding to the descriptor.
// The request's context is ctx, which may not be nil, and its URL and
// Header are copies, so changing them does not affect the descriptor.
func (d *Descriptor) ToRequest(ctx context.Context) (*http.Request, error) {
	if ctx == nil {
		return nil, errors.New(nilCtxMsg)
	}
	r := template.WithContext(ctx)
	r.Method = d.Method
	u := *d.URL
	r.URL = &u
	r.Host = u.Host
	r.Header = d.Header.Clone()
	if r.Header == nil {
		r.Header = make(http.Header)
	}
	if data := d.Body.Bytes(); len(data) > 0 {
		r.Body = io.NopCloser(bytes.NewReader(data))
		r.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
		r.ContentLength = int64(len(data))
	}
	return r, nil
}

func validMethod(method string) bool {
	/*
	     Method         = "OPTIONS"                ; Section 9.2
	                    | "GET"                    ; Section 9.3
	                    | "HEAD"                   ; Section 9.4
	                    | "POST"                   ; Section 9.5
	                    | "PUT"                    ; Section 9.6
	                    | "DELETE"                 ; Section 9.7
	                    | "TRACE"                  ; Section 9.8
	                    | "CONNECT"                ; Section 9.9
	                    | extension-method
	   extension-method = token
	     token          = 1*<any CHAR except CTLs or separators>
	*/
	return strings.IndexFunc(method, isNotToken) == -1
}

func isNotToken(r rune) bool {
	return !isTokenRune(r)
}

// isTokenRune classifies a rune as valid for a token as defined in
// https://tools.ietf.org/html/rfc7230#section-3.2.6
func isTokenRune(r rune) bool {
	i := int(r)
	return i < len(isTokenTable) && isTokenTable[i]
}

var isTokenTable = [127]bool{
	'!': true, '#': true, '$': true, '%': true, '&': true, '\'': true,
	'*': true, '+': true, '-': true, '.': true, '^': true, '_': true,
	'`': true, '|': true, '~': true,
	'0': true, '1': true, '2': true, '3': true, '4': true,
	'5': true, '6': true, '7': true, '8': true, '9': true,
	'A': true, 'B': true, 'C': true, 'D': true, 'E': true, 'F': true,
	'G': true, 'H': true, 'I': true, 'J': true, 'K': true, 'L': true,
	'M': true, 'N': true, 'O': true, 'P': true, 'Q': true, 'R': true,
	'S': true, 'T': true, 'U': true, 'V': true, 'W': true, 'X': true,
	'Y': true, 'Z': true,
	'a': true, 'b': true, 'c': true, 'd': true, 'e': true, 'f': true,
	'g': true, 'h': true, 'i': true, 'j': true, 'k': true, 'l': true,
	'm': true, 'n': true, 'o': true, 'p': true, 'q': true, 'r': true,
	's': true, 't': true, 'u': true, 'v': true, 'w': true, 'x': true,
	'y': true, 'z': true,
}

// hasPort reports whether s, of the form "host", "host:port" or
// "[ipv6::address]:port", includes a port.
func hasPort(s string) bool { return strings.LastIndex(s, ":") > strings.LastIndex(s, "]") }

// removeEmptyPort strips the empty port in "host:" as mandated by
// RFC 3986 Section 6.2.3.
func removeEmptyPort(host string) string {
	if hasPort(host) {
		return strings.TrimSuffix(host, ":")
	}
	return host
}
