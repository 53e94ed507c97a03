// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package config holds the long-lived configuration shared by every
request an apireq.Client builds: the API host and version, default
headers, the user agent, the request timeout, and the settings of the
pooled transport and the logger.

Configuration can be built in code, starting from Default, or loaded
from an optional YAML file and APIREQ_* environment variables with
Load:

	cfg, err := config.Load(config.WithFile("apireq.yml"))
	if err != nil {
		...
	}
	client, err := apireq.New(cfg, apireq.WithAuthorizer(apireq.BotToken(token)))

Environment variables name the YAML keys in upper case with dots
replaced by underscores, for example APIREQ_REQUEST_TIMEOUT=20s or
APIREQ_TRANSPORT_MAX_CONNS_PER_HOST=4.
*/
package config
