package main

import (
	"context"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/searchagent/internal/server"
)

const shutdownTimeout = 10 * time.Second

func serveCMD(cfgPath *string) *cobra.Command {
	var addr string

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, SSE stream and web page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, err := loadApp(ctx, *cfgPath, os.Stderr)
			if err != nil {
				return err
			}
			defer a.Close()

			if addr == "" {
				addr = a.cfg.Server.Address
			}
			srv := server.New(server.Deps{
				Agent:         a.agent,
				Recent:        a.recent,
				History:       a.history,
				Metrics:       a.metrics,
				Logger:        a.logger,
				StreamEnabled: a.cfg.Server.StreamEnabled,
			})

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start(addr) }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			a.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	serve.Flags().StringVar(&addr, "addr", "", "listen address (default from server.address)")

	return serve
}
