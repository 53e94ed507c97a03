// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package apireq

// An Authorizer supplies the Authorization header value for requests
// that are authenticated. It is consulted once per request, when the
// request is built, so it may rotate credentials between requests.
//
// An error from Authorization fails the request build. An empty value
// with a nil error omits the header.
type Authorizer interface {
	Authorization() (string, error)
}

// The AuthorizerFunc type is an adapter to allow the use of ordinary
// functions as an Authorizer.
type AuthorizerFunc func() (string, error)

// Authorization calls f().
func (f AuthorizerFunc) Authorization() (string, error) {
	return f()
}

// BotToken returns an Authorizer sending "Bot <token>".
func BotToken(token string) Authorizer {
	return staticAuth("Bot " + token)
}

// BearerToken returns an Authorizer sending "Bearer <token>".
func BearerToken(token string) Authorizer {
	return staticAuth("Bearer " + token)
}

type staticAuth string

func (a staticAuth) Authorization() (string, error) {
	return string(a), nil
}
