// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	// Version is the library version reported in the default user
	// agent.
	Version = "1.0.0"

	// DefaultAPIVersion is the API version used when Client.Version is
	// zero.
	DefaultAPIVersion = 10

	// DefaultRequestTimeout is the request timeout used when
	// Client.RequestTimeout is zero.
	DefaultRequestTimeout = 15 * time.Second

	// DefaultMaxConnsPerHost is the per-host connection limit used when
	// Transport.MaxConnsPerHost is zero.
	DefaultMaxConnsPerHost = 10

	// DefaultKeepAlive is the keep-alive period used when
	// Transport.KeepAlive is zero.
	DefaultKeepAlive = 300 * time.Second
)

// DefaultUserAgent is the user agent base used when Client.UserAgent
// is empty.
var DefaultUserAgent = fmt.Sprintf("apireq (https://github.com/gogama/apireq, %s) %s", Version, runtime.Version())

// Client is the configuration shared by all requests built by one
// apireq.Client.
type Client struct {
	// API is the base URL of the API, without a trailing version
	// segment, e.g. "https://discord.com/api".
	API string `yaml:"api" mapstructure:"api" validate:"required,url"`
	// Version is the API version inserted into versioned request URLs
	// as "/v<Version>".
	Version int `yaml:"version" mapstructure:"version" validate:"gte=0"`
	// Headers are sent with every request. Every other header source
	// overrides them.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`
	// UserAgent is the base user agent.
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`
	// UserAgentSuffix is appended to UserAgent, comma separated.
	UserAgentSuffix []string `yaml:"user_agent_suffix" mapstructure:"user_agent_suffix"`
	// RequestTimeout bounds each request execution.
	RequestTimeout time.Duration `yaml:"request_timeout" mapstructure:"request_timeout" validate:"gte=0"`
	// Transport configures the pooled HTTP transport.
	Transport Transport `yaml:"transport" mapstructure:"transport"`
	// Log configures the logger built by package logging.
	Log Log `yaml:"log" mapstructure:"log"`
}

// Transport configures the connection pool owned by an apireq.Client.
type Transport struct {
	MaxConnsPerHost     int           `yaml:"max_conns_per_host" mapstructure:"max_conns_per_host" validate:"gte=0"`
	MaxIdleConnsPerHost int           `yaml:"max_idle_conns_per_host" mapstructure:"max_idle_conns_per_host" validate:"gte=0"`
	KeepAlive           time.Duration `yaml:"keep_alive" mapstructure:"keep_alive" validate:"gte=0"`
	IdleConnTimeout     time.Duration `yaml:"idle_conn_timeout" mapstructure:"idle_conn_timeout" validate:"gte=0"`
	TLSHandshakeTimeout time.Duration `yaml:"tls_handshake_timeout" mapstructure:"tls_handshake_timeout" validate:"gte=0"`
	// DisableHTTP2 turns off HTTP/2 negotiation, which is on by
	// default.
	DisableHTTP2 bool `yaml:"disable_http2" mapstructure:"disable_http2"`
}

// Log configures logging.
type Log struct {
	Level  string `yaml:"level" mapstructure:"level" validate:"oneof=trace debug info warn error disabled"`
	Format string `yaml:"format" mapstructure:"format" validate:"oneof=json console"`
}

// Default returns a configuration for api with every other field set
// to its default.
func Default(api string) Client {
	c := Client{API: api}
	c.ApplyDefaults()
	return c
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (c *Client) ApplyDefaults() {
	if c.Version == 0 {
		c.Version = DefaultAPIVersion
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.RequestTimeout == 0 {
		c.RequestTimeout = DefaultRequestTimeout
	}
	c.Transport.ApplyDefaults()
	c.Log.ApplyDefaults()
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (t *Transport) ApplyDefaults() {
	if t.MaxConnsPerHost == 0 {
		t.MaxConnsPerHost = DefaultMaxConnsPerHost
	}
	if t.MaxIdleConnsPerHost == 0 {
		t.MaxIdleConnsPerHost = t.MaxConnsPerHost
	}
	if t.KeepAlive == 0 {
		t.KeepAlive = DefaultKeepAlive
	}
	if t.IdleConnTimeout == 0 {
		t.IdleConnTimeout = 90 * time.Second
	}
	if t.TLSHandshakeTimeout == 0 {
		t.TLSHandshakeTimeout = 10 * time.Second
	}
}

// ApplyDefaults fills zero-valued fields with their defaults.
func (l *Log) ApplyDefaults() {
	if l.Level == "" {
		l.Level = "info"
	}
	if l.Format == "" {
		l.Format = "json"
	}
}

// FullUserAgent returns the user agent sent with every request:
// UserAgent, followed by the suffixes joined with ", " when there are
// any.
func (c *Client) FullUserAgent() string {
	if len(c.UserAgentSuffix) == 0 {
		return c.UserAgent
	}
	return c.UserAgent + ", " + strings.Join(c.UserAgentSuffix, ", ")
}

// Validate checks the configuration against its struct tags.
func (c *Client) Validate() error {
	err := validatorInstance().Struct(c)
	if err == nil {
		return nil
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		return fmt.Errorf("apireq/config: %w", err)
	}
	msgs := make([]string, 0, len(ves))
	for _, fe := range ves {
		msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
	}
	return fmt.Errorf("apireq/config: invalid configuration: %s", strings.Join(msgs, "; "))
}

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		// Report fields by their YAML names.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
			if name == "-" || name == "" {
				return fld.Name
			}
			return name
		})
	})
	return validate
}
