// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package tracing

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gogama/apireq"
	"github.com/gogama/apireq/config"
	"github.com/gogama/apireq/request"
	"github.com/gogama/apireq/timeout/timeouttest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

type doerFunc func(*http.Request) (*http.Response, error)

func (f doerFunc) Do(r *http.Request) (*http.Response, error) {
	return f(r)
}

func setup(t *testing.T, doer apireq.HTTPDoer, sched *timeouttest.Scheduler) (*apireq.Client, *tracetest.SpanRecorder) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	g := &apireq.HandlerGroup{}
	Install(g, tp, WithPropagator(propagation.TraceContext{}))
	cl, err := apireq.New(config.Default("https://api.test/api"),
		apireq.WithHTTPDoer(doer), apireq.WithHandlers(g), apireq.WithScheduler(sched))
	require.NoError(t, err)
	return cl, sr
}

func attrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value)
	for _, kv := range s.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestInstall(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var sent *http.Request
		cl, sr := setup(t, doerFunc(func(r *http.Request) (*http.Response, error) {
			sent = r
			return &http.Response{StatusCode: 404, Body: io.NopCloser(strings.NewReader(""))}, nil
		}), &timeouttest.Scheduler{})

		e, err := cl.Get(context.Background(), "/channels/1", request.Options{Route: "/channels/:id"})
		require.NoError(t, err)

		spans := sr.Ended()
		require.Len(t, spans, 1)
		s := spans[0]
		assert.Equal(t, "GET /channels/:id", s.Name())
		assert.Equal(t, trace.SpanKindClient, s.SpanKind())
		assert.Equal(t, codes.Ok, s.Status().Code)
		a := attrs(s)
		assert.Equal(t, "GET", a[AttrMethod].AsString())
		assert.Equal(t, "https://api.test/api/v10/channels/1", a[AttrURL].AsString())
		assert.Equal(t, "/channels/:id", a[AttrRoute].AsString())
		assert.Equal(t, e.ID.String(), a[AttrExecutionID].AsString())
		assert.Equal(t, "none", a[AttrBodyKind].AsString())
		assert.Equal(t, int64(404), a[AttrStatusCode].AsInt64())

		require.NotNil(t, sent)
		traceparent := sent.Header.Get("Traceparent")
		assert.Contains(t, traceparent, s.SpanContext().TraceID().String())
		assert.Contains(t, traceparent, s.SpanContext().SpanID().String())
		assert.Equal(t, s.SpanContext(), trace.SpanContextFromContext(sent.Context()))
		assert.Empty(t, e.Descriptor.Header.Get("Traceparent"))
	})
	t.Run("failure", func(t *testing.T) {
		cl, sr := setup(t, doerFunc(func(*http.Request) (*http.Response, error) {
			return nil, errors.New("boom")
		}), &timeouttest.Scheduler{})

		_, err := cl.Post(context.Background(), "/x", request.Options{Data: map[string]int{"a": 1}})
		require.Error(t, err)

		spans := sr.Ended()
		require.Len(t, spans, 1)
		s := spans[0]
		assert.Equal(t, "POST", s.Name())
		assert.Equal(t, codes.Error, s.Status().Code)
		assert.Contains(t, s.Status().Description, "boom")
		a := attrs(s)
		assert.NotContains(t, a, AttrStatusCode)
		assert.NotContains(t, a, AttrRoute)
		assert.Equal(t, "json", a[AttrBodyKind].AsString())
		require.Len(t, s.Events(), 1)
		assert.Equal(t, "exception", s.Events()[0].Name)
	})
	t.Run("timeout", func(t *testing.T) {
		sched := &timeouttest.Scheduler{}
		cl, sr := setup(t, doerFunc(func(r *http.Request) (*http.Response, error) {
			sched.Last().Fire()
			<-r.Context().Done()
			return nil, r.Context().Err()
		}), sched)

		e, err := cl.Get(context.Background(), "/x", request.Options{})
		require.Error(t, err)
		assert.True(t, e.Timeout())

		spans := sr.Ended()
		require.Len(t, spans, 1)
		s := spans[0]
		assert.Equal(t, codes.Error, s.Status().Code)
		names := make([]string, 0, len(s.Events()))
		for _, ev := range s.Events() {
			names = append(names, ev.Name)
		}
		assert.Equal(t, []string{"timeout", "exception"}, names)
	})
}

func TestSpanName(t *testing.T) {
	d, err := request.NewDescriptor("patch", "https://x.com", nil, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "PATCH", SpanName(d))
	d.Route = "/guilds/:id"
	assert.Equal(t, "PATCH /guilds/:id", SpanName(d))
}
