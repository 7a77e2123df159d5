package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/eringen/inkpress"
	"github.com/eringen/inkpress/logger"
	"github.com/eringen/inkpress/views"
)

const shutdownTimeout = 10 * time.Second

func (c *cli) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site and run the publish scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			app := inkpress.New(c.cfg, views.Default(), inkpress.WithLogger(logger.Log))
			defer app.Close()

			errc := make(chan error, 1)
			go func() { errc <- app.Start() }()

			select {
			case err := <-errc:
				return err
			case <-ctx.Done():
			}

			logger.Log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := app.Shutdown(shutdownCtx); err != nil {
				return err
			}
			return <-errc
		},
	}
	cmd.Flags().String("addr", "", "listen address")
	_ = c.v.BindPFlag("addr", cmd.Flags().Lookup("addr"))
	return cmd
}
