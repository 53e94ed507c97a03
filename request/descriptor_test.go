// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package request

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDescriptor(t *testing.T) {
	testCases := []struct {
		name    string
		method  string
		url     string
		asserts func(*testing.T, *Descriptor, error)
	}{
		{
			name:   "empty method means GET",
			method: "",
			url:    "https://foo.com/api/v10/users/@me",
			asserts: func(t *testing.T, d *Descriptor, err error) {
				require.NoError(t, err)
				assert.Equal(t, "GET", d.Method)
				assert.Equal(t, "https://foo.com/api/v10/users/@me", d.URL.String())
				assert.Equal(t, NoBody{}, d.Body)
				assert.NotNil(t, d.Header)
			},
		},
		{
			name:   "method upper-cased",
			method: "patch",
			url:    "https://foo.com",
			asserts: func(t *testing.T, d *Descriptor, err error) {
				require.NoError(t, err)
				assert.Equal(t, "PATCH", d.Method)
			},
		},
		{
			name:   "extension method",
			method: "Fake",
			url:    "http://baz.com",
			asserts: func(t *testing.T, d *Descriptor, err error) {
				require.NoError(t, err)
				assert.Equal(t, "FAKE", d.Method)
			},
		},
		{
			name:   "invalid method",
			method: "GET ME",
			url:    "http://baz.com",
			asserts: func(t *testing.T, d *Descriptor, err error) {
				assert.Nil(t, d)
				assert.EqualError(t, err, `apireq/request: invalid method "GET ME"`)
			},
		},
		{
			name:   "remove empty port",
			method: "GET",
			url:    "http://ham:/x",
			asserts: func(t *testing.T, d *Descriptor, err error) {
				require.NoError(t, err)
				assert.Equal(t, "ham", d.URL.Host)
			},
		},
		{
			name:   "invalid URL",
			method: "GET",
			url:    ":foo",
			asserts: func(t *testing.T, d *Descriptor, err error) {
				assert.Nil(t, d)
				assert.Error(t, err)
			},
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			d, err := NewDescriptor(testCase.method, testCase.url, nil, nil, "route")
			testCase.asserts(t, d, err)
			if d != nil {
				assert.Equal(t, "route", d.Route)
			}
		})
	}
}

func TestDescriptor_ToRequest(t *testing.T) {
	t.Run("nil context", func(t *testing.T) {
		d, err := NewDescriptor("GET", "https://x.com", nil, nil, "")
		require.NoError(t, err)
		//lint:ignore SA1012 testing nil context handling
		r, err := d.ToRequest(nil) //nolint:staticcheck
		assert.Nil(t, r)
		assert.EqualError(t, err, nilCtxMsg)
	})
	t.Run("no body", func(t *testing.T) {
		d, err := NewDescriptor("DELETE", "https://x.com/a?b=c", http.Header{"X-A": {"1"}}, nil, "")
		require.NoError(t, err)
		type key struct{}
		ctx := context.WithValue(context.Background(), key{}, "v")
		r, err := d.ToRequest(ctx)
		require.NoError(t, err)
		assert.Same(t, ctx, r.Context())
		assert.Equal(t, "DELETE", r.Method)
		assert.Equal(t, "https://x.com/a?b=c", r.URL.String())
		assert.Equal(t, "x.com", r.Host)
		assert.Nil(t, r.Body)
		assert.Nil(t, r.GetBody)
		assert.Equal(t, int64(0), r.ContentLength)
		assert.Equal(t, "1", r.Header.Get("X-A"))
	})
	t.Run("with body", func(t *testing.T) {
		d, err := NewDescriptor("POST", "https://x.com", http.Header{}, JSONBody{Data: []byte(`{"a":1}`)}, "")
		require.NoError(t, err)
		r, err := d.ToRequest(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(7), r.ContentLength)
		b, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(b))
		rc, err := r.GetBody()
		require.NoError(t, err)
		b, err = io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, `{"a":1}`, string(b))
	})
	t.Run("copies isolate descriptor", func(t *testing.T) {
		d, err := NewDescriptor("GET", "https://x.com/p", http.Header{"X-A": {"1"}}, nil, "")
		require.NoError(t, err)
		r, err := d.ToRequest(context.Background())
		require.NoError(t, err)
		r.Header.Set("X-A", "2")
		r.Header.Set("Traceparent", "t")
		r.URL.Path = "/changed"
		assert.Equal(t, http.Header{"X-A": {"1"}}, d.Header)
		assert.Equal(t, "/p", d.URL.Path)
	})
}
