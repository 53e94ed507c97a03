// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

// Package logging logs apireq request executions with zerolog.
//
// The client itself never logs. Install adds event handlers that do:
//
//	handlers := &apireq.HandlerGroup{}
//	logging.Install(handlers, logging.New(cfg.Log))
//	client, err := apireq.New(cfg, apireq.WithHandlers(handlers))
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/gogama/apireq"
	"github.com/gogama/apireq/config"
	"github.com/gogama/apireq/request"
	"github.com/rs/zerolog"
)

// Field names used in log events.
const (
	FieldExecutionID = "execution_id"
	FieldMethod      = "method"
	FieldURL         = "url"
	FieldRoute       = "route"
	FieldStatus      = "status"
	FieldDuration    = "duration"
	FieldBytes       = "bytes"
	FieldTimeout     = "timeout"
)

// An Option customizes New.
type Option func(*options)

type options struct {
	w io.Writer
}

// WithWriter sets the log destination. The default is os.Stderr.
func WithWriter(w io.Writer) Option {
	return func(o *options) { o.w = w }
}

// New creates a logger from cfg. An unknown level means info; the
// "console" format writes human-readable lines, anything else JSON.
func New(cfg config.Log, opts ...Option) zerolog.Logger {
	cfg.ApplyDefaults()
	o := options{w: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil || cfg.Level == "" {
		level = zerolog.InfoLevel
	}

	w := o.w
	if strings.ToLower(cfg.Format) == "console" {
		w = zerolog.ConsoleWriter{Out: o.w, TimeFormat: time.RFC3339, NoColor: true}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Str("component", "apireq").Logger()
}

// Install adds handlers to g that log each execution to l: its start
// at debug level, a timeout at warn level, and its end at info level,
// or error level if it failed.
func Install(g *apireq.HandlerGroup, l zerolog.Logger) {
	h := &handler{logger: l}
	g.PushBack(apireq.BeforeExecute, apireq.HandlerFunc(h.beforeExecute))
	g.PushBack(apireq.AfterTimeout, apireq.HandlerFunc(h.afterTimeout))
	g.PushBack(apireq.AfterExecute, apireq.HandlerFunc(h.afterExecute))
}

type handler struct {
	logger zerolog.Logger
}

func (h *handler) with(ev *zerolog.Event, e *request.Execution) *zerolog.Event {
	ev = ev.Str(FieldExecutionID, e.ID.String()).
		Str(FieldMethod, e.Descriptor.Method).
		Str(FieldURL, e.Descriptor.URL.String())
	if e.Descriptor.Route != "" {
		ev = ev.Str(FieldRoute, e.Descriptor.Route)
	}
	return ev
}

func (h *handler) beforeExecute(_ apireq.Event, e *request.Execution) {
	h.with(h.logger.Debug(), e).
		Str("body", e.Descriptor.Body.Kind().String()).
		Msg("request starting")
}

func (h *handler) afterTimeout(_ apireq.Event, e *request.Execution) {
	h.with(h.logger.Warn(), e).
		Dur(FieldDuration, e.Duration()).
		Msg("request timed out")
}

func (h *handler) afterExecute(_ apireq.Event, e *request.Execution) {
	if e.Err != nil {
		h.with(h.logger.Error(), e).
			Err(e.Err).
			Bool(FieldTimeout, e.Timeout()).
			Dur(FieldDuration, e.Duration()).
			Msg("request failed")
		return
	}
	h.with(h.logger.Info(), e).
		Int(FieldStatus, e.StatusCode()).
		Int(FieldBytes, len(e.Body)).
		Dur(FieldDuration, e.Duration()).
		Msg("request completed")
}
