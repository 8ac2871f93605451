package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/reel/internal/server"
	"github.com/desertthunder/reel/internal/session"
	"github.com/urfave/cli/v3"
)

// Serve runs the JSON HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.connect(); err != nil {
		return err
	}

	cfg := r.config.Server
	if host := cmd.String("host"); host != "" {
		cfg.Host = host
	}
	if port := cmd.Int("port"); port > 0 {
		cfg.Port = int(port)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := r.router()
	for _, route := range router.Routes() {
		r.logger.Debug("route registered", "pattern", route)
	}

	return server.NewServer(cfg.Addr(), router, r.logger).Run(ctx)
}

func (r *Runner) router() *server.BasicRouter {
	router := server.NewBasicRouter()
	router.Use(server.Recover(r.logger), server.Logging(r.logger))
	sessions := session.NewRegistry(r.config.Server.SessionIdle())
	router.Handle(http.MethodGet, "/health", server.Health(sessions))
	router.Handler(server.NewAPIHandler(r.controller, sessions, r.logger))
	return router
}
