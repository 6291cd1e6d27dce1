package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/newspet/internal/server"
	"github.com/urfave/cli/v3"
)

// Serve runs the HTTP API until interrupted.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	if err := r.open(ctx); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	router := server.NewBasicRouter()
	router.Use(
		server.Recover(r.logger),
		server.Logging(r.logger),
		server.RateLimit(r.config.Server.RequestsPerSecond, r.config.Server.Burst),
	)
	router.Handler(server.NewClassifierHandler(r.engine, r.repo, r.logger))

	addr := cmd.String("addr")
	if addr == "" {
		addr = r.config.Server.Addr
	}

	return server.Serve(ctx, addr, router, r.logger)
}
