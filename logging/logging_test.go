// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gogama/apireq"
	"github.com/gogama/apireq/config"
	"github.com/gogama/apireq/request"
	"github.com/gogama/apireq/timeout/timeouttest"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) {
	return f(r)
}

func lines(t *testing.T, buf *bytes.Buffer) []map[string]interface{} {
	var out []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := make(map[string]interface{})
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestNew(t *testing.T) {
	t.Run("json", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(config.Log{Level: "warn", Format: "json"}, WithWriter(&buf))
		assert.Equal(t, zerolog.WarnLevel, l.GetLevel())
		l.Info().Msg("hidden")
		l.Warn().Msg("shown")
		ls := lines(t, &buf)
		require.Len(t, ls, 1)
		assert.Equal(t, "shown", ls[0]["message"])
		assert.Equal(t, "apireq", ls[0]["component"])
	})
	t.Run("console", func(t *testing.T) {
		var buf bytes.Buffer
		l := New(config.Log{Level: "debug", Format: "console"}, WithWriter(&buf))
		l.Debug().Msg("hello")
		assert.Contains(t, buf.String(), "hello")
		assert.False(t, strings.HasPrefix(buf.String(), "{"))
	})
	t.Run("defaults", func(t *testing.T) {
		l := New(config.Log{}, WithWriter(io.Discard))
		assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
	})
	t.Run("bad level", func(t *testing.T) {
		l := New(config.Log{Level: "loud"}, WithWriter(io.Discard))
		assert.Equal(t, zerolog.InfoLevel, l.GetLevel())
	})
}

func TestInstall(t *testing.T) {
	newClient := func(t *testing.T, buf *bytes.Buffer, doer apireq.HTTPDoer, sched *timeouttest.Scheduler) *apireq.Client {
		g := &apireq.HandlerGroup{}
		Install(g, New(config.Log{Level: "debug"}, WithWriter(buf)))
		assert.Equal(t, 1, g.Len(apireq.BeforeExecute))
		assert.Equal(t, 1, g.Len(apireq.AfterTimeout))
		assert.Equal(t, 1, g.Len(apireq.AfterExecute))
		cl, err := apireq.New(config.Default("https://api.test/api"),
			apireq.WithHTTPDoer(doer), apireq.WithHandlers(g), apireq.WithScheduler(sched))
		require.NoError(t, err)
		return cl
	}

	t.Run("success", func(t *testing.T) {
		var buf bytes.Buffer
		cl := newClient(t, &buf, doerFunc(func(*http.Request) (*http.Response, error) {
			return &http.Response{StatusCode: 201, Body: io.NopCloser(strings.NewReader("abc"))}, nil
		}), &timeouttest.Scheduler{})
		e, err := cl.Post(context.Background(), "/x", request.Options{Route: "/x", Data: 1})
		require.NoError(t, err)

		ls := lines(t, &buf)
		require.Len(t, ls, 2)
		assert.Equal(t, "debug", ls[0]["level"])
		assert.Equal(t, "request starting", ls[0]["message"])
		assert.Equal(t, "json", ls[0]["body"])
		assert.Equal(t, e.ID.String(), ls[0][FieldExecutionID])
		assert.Equal(t, "POST", ls[0][FieldMethod])
		assert.Equal(t, "https://api.test/api/v10/x", ls[0][FieldURL])
		assert.Equal(t, "/x", ls[0][FieldRoute])
		assert.Equal(t, "info", ls[1]["level"])
		assert.Equal(t, "request completed", ls[1]["message"])
		assert.Equal(t, float64(201), ls[1][FieldStatus])
		assert.Equal(t, float64(3), ls[1][FieldBytes])
		assert.Contains(t, ls[1], FieldDuration)
	})
	t.Run("failure", func(t *testing.T) {
		var buf bytes.Buffer
		cl := newClient(t, &buf, doerFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("boom")
		}), &timeouttest.Scheduler{})
		_, err := cl.Get(context.Background(), "/x", request.Options{})
		require.Error(t, err)

		ls := lines(t, &buf)
		require.Len(t, ls, 2)
		assert.Equal(t, "error", ls[1]["level"])
		assert.Equal(t, "request failed", ls[1]["message"])
		assert.Contains(t, ls[1]["error"], "boom")
		assert.Equal(t, false, ls[1][FieldTimeout])
		assert.NotContains(t, ls[0], FieldRoute)
	})
	t.Run("timeout", func(t *testing.T) {
		var buf bytes.Buffer
		sched := &timeouttest.Scheduler{}
		cl := newClient(t, &buf, doerFunc(func(r *http.Request) (*http.Response, error) {
			sched.Last().Fire()
			<-r.Context().Done()
			return nil, r.Context().Err()
		}), sched)
		_, err := cl.Get(context.Background(), "/x", request.Options{})
		require.Error(t, err)

		ls := lines(t, &buf)
		require.Len(t, ls, 3)
		assert.Equal(t, "warn", ls[1]["level"])
		assert.Equal(t, "request timed out", ls[1]["message"])
		assert.Equal(t, "error", ls[2]["level"])
		assert.Equal(t, true, ls[2][FieldTimeout])
	})
}
