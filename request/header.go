// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"net/http"
	"sort"
)

// Header names set by the request builder.
const (
	HeaderUserAgent      = "User-Agent"
	HeaderAuthorization  = "Authorization"
	HeaderAuditLogReason = "X-Audit-Log-Reason"
	HeaderContentType    = "Content-Type"
)

// A HeaderLayer is one named source of request headers. Layers are
// merged left to right by MergeHeaders, so a later layer overrides an
// earlier one on any key they share.
type HeaderLayer struct {
	// Name identifies the source of the layer, e.g. "defaults".
	Name string
	// Header holds the layer's header values.
	Header http.Header
}

// NewHeaderLayer builds a layer from a flat string map. Keys are
// canonicalized in sorted order, so if two keys of m differ only in
// case, the one sorting last wins deterministically.
func NewHeaderLayer(name string, m map[string]string) HeaderLayer {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	h := make(http.Header, len(m))
	for _, k := range keys {
		h.Set(k, m[k])
	}
	return HeaderLayer{Name: name, Header: h}
}

// SingleHeaderLayer builds a layer holding exactly one header.
func SingleHeaderLayer(name, key, value string) HeaderLayer {
	h := make(http.Header, 1)
	h.Set(key, value)
	return HeaderLayer{Name: name, Header: h}
}

// MergeHeaders applies layers left to right into a new header. A key
// present in a later layer replaces all values of the same key from
// earlier layers. Key comparison is case-insensitive. The layers are
// not modified.
func MergeHeaders(layers ...HeaderLayer) http.Header {
	merged := make(http.Header)
	for _, layer := range layers {
		for k, vs := range layer.Header {
			merged[http.CanonicalHeaderKey(k)] = append([]string(nil), vs...)
		}
	}
	return merged
}

// EncodeReason percent-encodes an audit-log reason the way
// encodeURIComponent does: every byte outside A-Z a-z 0-9 and
// - _ . ! ~ * ' ( ) is escaped as %XX.
func EncodeReason(s string) string {
	const hex = "0123456789ABCDEF"
	n := 0
	for i := 0; i < len(s); i++ {
		if !isReasonSafe(s[i]) {
			n++
		}
	}
	if n == 0 {
		return s
	}
	b := make([]byte, 0, len(s)+2*n)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isReasonSafe(c) {
			b = append(b, c)
		} else {
			b = append(b, '%', hex[c>>4], hex[c&15])
		}
	}
	return string(b)
}

func isReasonSafe(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	}
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}
