package main

import (
	"context"
	"time"

	"github.com/alchemorsel/recipefinder/internal/infrastructure/container"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the recipe HTTP API",
	Long: `Start the HTTP API server.

The server provides:
  - POST /get_recipe  - recipe requests ({"query": "..."}, ?format=text for plain text)
  - /health           - liveness check
  - /ready            - readiness check (circuit state and credentials)
  - /metrics          - Prometheus metrics`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		app := fx.New(
			fx.NopLogger,
			container.Module(container.Options{
				ConfigPath: cfgFile,
				LogLevel:   logLevel,
			}),
		)
		if err := app.Start(ctx); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
		case <-app.Wait():
		}

		stopCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return app.Stop(stopCtx)
	},
}
