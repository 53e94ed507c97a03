// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package tracing traces apireq request executions with OpenTelemetry.
//
// Install adds event handlers that start a client span when a request
// is about to be sent, inject the span's context into the outgoing
// request headers, and end the span when the execution ends.
package tracing

import (
	"github.com/gogama/apireq"
	"github.com/gogama/apireq/request"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the name of the tracer obtained from the
// TracerProvider.
const InstrumentationName = "github.com/gogama/apireq/tracing"

// Span attribute keys.
const (
	AttrMethod      = attribute.Key("http.request.method")
	AttrURL         = attribute.Key("url.full")
	AttrStatusCode  = attribute.Key("http.response.status_code")
	AttrRoute       = attribute.Key("apireq.route")
	AttrExecutionID = attribute.Key("apireq.execution_id")
	AttrBodyKind    = attribute.Key("apireq.body")
)

// An Option customizes Install.
type Option func(*tracer)

// WithPropagator sets the propagator used to inject trace context into
// requests. The default is otel.GetTextMapPropagator().
func WithPropagator(p propagation.TextMapPropagator) Option {
	return func(t *tracer) { t.propagator = p }
}

// Install adds tracing handlers to g. Spans are created by tracers from
// tp; a nil tp means otel.GetTracerProvider().
func Install(g *apireq.HandlerGroup, tp trace.TracerProvider, opts ...Option) {
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	t := &tracer{
		tracer:     tp.Tracer(InstrumentationName),
		propagator: otel.GetTextMapPropagator(),
	}
	for _, opt := range opts {
		opt(t)
	}
	g.PushBack(apireq.BeforeSend, apireq.HandlerFunc(t.beforeSend))
	g.PushBack(apireq.AfterTimeout, apireq.HandlerFunc(t.afterTimeout))
	g.PushBack(apireq.AfterExecute, apireq.HandlerFunc(t.afterExecute))
}

type spanKey struct{}

type tracer struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

// SpanName returns the name of the span for an execution: the method,
// followed by the route if there is one.
func SpanName(d *request.Descriptor) string {
	if d.Route == "" {
		return d.Method
	}
	return d.Method + " " + d.Route
}

func (t *tracer) beforeSend(_ apireq.Event, e *request.Execution) {
	d := e.Descriptor
	attrs := []attribute.KeyValue{
		AttrMethod.String(d.Method),
		AttrURL.String(d.URL.String()),
		AttrExecutionID.String(e.ID.String()),
		AttrBodyKind.String(d.Body.Kind().String()),
	}
	if d.Route != "" {
		attrs = append(attrs, AttrRoute.String(d.Route))
	}
	// The span context derives from the request context, so the
	// timeout guard still aborts the request.
	ctx, span := t.tracer.Start(e.Request.Context(), SpanName(d),
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
	t.propagator.Inject(ctx, propagation.HeaderCarrier(e.Request.Header))
	e.Request = e.Request.WithContext(ctx)
	e.SetValue(spanKey{}, span)
}

func (t *tracer) afterTimeout(_ apireq.Event, e *request.Execution) {
	if span, ok := e.Value(spanKey{}).(trace.Span); ok {
		span.AddEvent("timeout")
	}
}

func (t *tracer) afterExecute(_ apireq.Event, e *request.Execution) {
	span, ok := e.Value(spanKey{}).(trace.Span)
	if !ok {
		return
	}
	if code := e.StatusCode(); code != 0 {
		span.SetAttributes(AttrStatusCode.Int(code))
	}
	if e.Err != nil {
		span.RecordError(e.Err)
		span.SetStatus(codes.Error, e.Err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
