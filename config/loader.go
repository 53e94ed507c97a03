// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// DefaultEnvPrefix is the prefix of environment variables read by
// Load.
const DefaultEnvPrefix = "APIREQ"

type loader struct {
	file      string
	envPrefix string
}

// A LoadOption customizes Load.
type LoadOption func(*loader)

// WithFile makes Load read the configuration file at path. The format
// is inferred from the extension; YAML is the documented format. A
// missing file is an error.
func WithFile(path string) LoadOption {
	return func(l *loader) { l.file = path }
}

// WithEnvPrefix changes the environment variable prefix from
// DefaultEnvPrefix.
func WithEnvPrefix(prefix string) LoadOption {
	return func(l *loader) { l.envPrefix = prefix }
}

// Load builds a Client configuration from defaults, then the optional
// configuration file, then environment variables, each source
// overriding the previous one. The result has defaults applied and is
// validated.
func Load(opts ...LoadOption) (Client, error) {
	l := loader{envPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(&l)
	}

	v := viper.New()
	setDefaults(v)

	if l.file != "" {
		v.SetConfigFile(l.file)
		if err := v.ReadInConfig(); err != nil {
			return Client{}, fmt.Errorf("apireq/config: failed to read %s: %w", l.file, err)
		}
	}

	v.SetEnvPrefix(l.envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var c Client
	if err := v.Unmarshal(&c); err != nil {
		return Client{}, fmt.Errorf("apireq/config: failed to decode configuration: %w", err)
	}
	c.ApplyDefaults()
	if err := c.Validate(); err != nil {
		return Client{}, err
	}
	return c, nil
}

// setDefaults registers every key with viper so that AutomaticEnv can
// resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	d := Default("")
	v.SetDefault("api", d.API)
	v.SetDefault("version", d.Version)
	v.SetDefault("user_agent", d.UserAgent)
	v.SetDefault("user_agent_suffix", []string{})
	v.SetDefault("request_timeout", d.RequestTimeout)
	v.SetDefault("transport.max_conns_per_host", d.Transport.MaxConnsPerHost)
	v.SetDefault("transport.max_idle_conns_per_host", d.Transport.MaxIdleConnsPerHost)
	v.SetDefault("transport.keep_alive", d.Transport.KeepAlive)
	v.SetDefault("transport.idle_conn_timeout", d.Transport.IdleConnTimeout)
	v.SetDefault("transport.tls_handshake_timeout", d.Transport.TLSHandshakeTimeout)
	v.SetDefault("transport.disable_http2", d.Transport.DisableHTTP2)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}
