// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package transport

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/gogama/apireq/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func protoHandler(w http.ResponseWriter, r *http.Request) {
	_, _ = io.WriteString(w, r.Proto)
}

func get(t *testing.T, tr *Transport, u string) (*http.Response, string) {
	req, err := http.NewRequest("GET", u, nil)
	require.NoError(t, err)
	resp, err := tr.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(b)
}

func trustServer(server *httptest.Server) *tls.Config {
	pool := x509.NewCertPool()
	pool.AddCert(server.Certificate())
	return &tls.Config{RootCAs: pool}
}

func TestNew(t *testing.T) {
	tr, err := New(config.Transport{})
	require.NoError(t, err)
	assert.Equal(t, config.DefaultMaxConnsPerHost, tr.base.MaxConnsPerHost)
	assert.Equal(t, config.DefaultMaxConnsPerHost, tr.base.MaxIdleConnsPerHost)
	assert.Contains(t, tr.base.TLSClientConfig.NextProtos, "h2")
	assert.NoError(t, tr.Close())
}

func TestTransport_Do(t *testing.T) {
	t.Run("http", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(protoHandler))
		defer server.Close()
		tr, err := New(config.Transport{})
		require.NoError(t, err)
		defer func() { _ = tr.Close() }()
		resp, body := get(t, tr, server.URL)
		assert.Equal(t, 200, resp.StatusCode)
		assert.Equal(t, "HTTP/1.1", body)
	})
	t.Run("http2", func(t *testing.T) {
		server := httptest.NewUnstartedServer(http.HandlerFunc(protoHandler))
		server.EnableHTTP2 = true
		server.StartTLS()
		defer server.Close()
		tlsConfig := trustServer(server)
		tr, err := New(config.Transport{}, WithTLSConfig(tlsConfig))
		require.NoError(t, err)
		defer func() { _ = tr.Close() }()
		resp, body := get(t, tr, server.URL)
		assert.Equal(t, 2, resp.ProtoMajor)
		assert.Equal(t, "HTTP/2.0", body)
	})
	t.Run("http2 disabled", func(t *testing.T) {
		server := httptest.NewUnstartedServer(http.HandlerFunc(protoHandler))
		server.EnableHTTP2 = true
		server.StartTLS()
		defer server.Close()
		tlsConfig := trustServer(server)
		tr, err := New(config.Transport{DisableHTTP2: true}, WithTLSConfig(tlsConfig))
		require.NoError(t, err)
		defer func() { _ = tr.Close() }()
		resp, body := get(t, tr, server.URL)
		assert.Equal(t, 1, resp.ProtoMajor)
		assert.Equal(t, "HTTP/1.1", body)
	})
}

func TestTransport_Close(t *testing.T) {
	tr, err := New(config.Transport{})
	require.NoError(t, err)
	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	req, err := http.NewRequest("POST", "http://localhost/x", nil)
	require.NoError(t, err)
	resp, err := tr.Do(req)
	assert.Nil(t, resp)
	var urlErr *url.Error
	require.ErrorAs(t, err, &urlErr)
	assert.Equal(t, "Post", urlErr.Op)
	assert.Equal(t, "http://localhost/x", urlErr.URL)
	assert.True(t, errors.Is(err, ErrClosed))
}
