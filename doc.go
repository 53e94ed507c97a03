// Copyright 2021 The apireq Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package apireq builds REST API requests from declarative options and
executes them under a timeout guard.

Create a Client from a configuration, then build and execute requests.

	cfg := config.Default("https://discord.com/api")
	client, err := apireq.New(cfg, apireq.WithAuthorizer(apireq.BotToken(token)))
	if err != nil {
		...
	}
	defer client.Close()

	ex, err := client.Get(ctx, "/users/@me", request.Options{})
	...
	ex, err := client.Post(ctx, "/channels/123/messages", request.Options{
		Data:   map[string]string{"content": "hello"},
		Reason: "greeting",
	})

A request is built in full before anything is sent: the query string
is normalized, the URL resolved (with a "/v<version>" segment unless
Options.Unversioned is set), the headers merged from the configured
defaults, the user agent, the authorizer, the audit-log reason, the
caller's headers and finally the body's content type, and the body
encoded as nothing, JSON, or multipart form data when files are
attached. Use NewRequest to inspect the result before executing it:

	r, err := client.NewRequest("PATCH", "/guilds/1", opts)
	...
	fmt.Println(r.Descriptor.URL, r.Descriptor.Header)
	ex, err := r.Execute(ctx)

Each execution is bounded by the client's timeout policy, by default a
fixed timeout from config.Client.RequestTimeout. If the timeout elapses
first the request is aborted and the error wraps a *timeout.Error.

The client does not retry, rate-limit or interpret responses: any HTTP
status code is a successful execution and is left for the caller.

To hook into the details of request execution, install a handler into
the appropriate handler chain. Packages logging and tracing provide
ready-made handlers:

	handlers := &apireq.HandlerGroup{}
	logging.Install(handlers, logging.New(cfg.Log))
	tracing.Install(handlers, otel.GetTracerProvider())
	client, err := apireq.New(cfg, apireq.WithHandlers(handlers))
*/
package apireq
