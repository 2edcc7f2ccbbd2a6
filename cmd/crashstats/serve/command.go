// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package serve

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/bureau-foundation/crashstats/cmd/crashstats/cli"
)

const shutdownTimeout = 5 * time.Second

type serveParams struct {
	cli.Session
	Listen string `flag:"listen" desc:"address to listen on (default from serve.listen in the config, 127.0.0.1:8089)"`
}

// Command returns the "serve" command.
func Command() *cli.Command {
	var params serveParams

	return &cli.Command{
		Name:    "serve",
		Summary: "Serve crash ping and correlation summaries over HTTP",
		Description: `Run a local HTTP server that answers the same queries as the pings
and correlations commands. Downloaded ping days go through the
response cache, so repeated requests for a day are served locally.

Routes:
  GET /healthz
  GET /api/pings/{date}?facet=&limit=&channel=&os=&process=&version=&signature=&arch=
  GET /api/pings/{date}/stack/{crash-id}
  GET /api/correlations/{channel}?signature=
  GET /pings/{date}   the ping summary as an HTML page

The server stops on SIGINT or SIGTERM.`,
		Usage: "crashstats serve [flags]",
		Examples: []cli.Example{
			{Description: "Serve on the default address", Command: "crashstats serve"},
			{Description: "Top Windows signatures as JSON", Command: "curl 'http://127.0.0.1:8089/api/pings/2026-02-12?os=Windows'"},
		},
		Params:      func() any { return &params },
		Annotations: cli.ReadOnly(),
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			return run(ctx, &params, logger, nil)
		},
	}
}

// run serves until ctx is done. ready, when set, receives the bound
// address once the listener is open.
func run(ctx context.Context, params *serveParams, logger *slog.Logger, ready chan<- net.Addr) error {
	cfg, err := params.Config()
	if err != nil {
		return err
	}
	address := params.Listen
	if address == "" {
		address = cfg.Serve.Listen
	}

	client, err := params.Client(logger)
	if err != nil {
		return err
	}
	store, err := params.Cache(logger)
	if err != nil {
		return err
	}
	defer store.Close()

	handler := (&server{client: client, store: store, logger: logger}).routes()
	httpServer := &http.Server{
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	listener, err := net.Listen("tcp", address)
	if err != nil {
		return cli.Validation("listening on %s: %w", address, err)
	}
	logger.Info("serving", "address", listener.Addr().String())
	if ready != nil {
		ready <- listener.Addr()
	}

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(listener)
	}()

	select {
	case err := <-serveErr:
		return cli.Internal("http server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return cli.Internal("shutting down: %w", err)
	}
	return nil
}
