package main

import (
	"context"
	"fmt"

	"github.com/alchemorsel/recipefinder/internal/infrastructure/container"
	"github.com/alchemorsel/recipefinder/internal/ports/inbound"
	"go.uber.org/fx"
)

// startFinder builds the pipeline without the HTTP server. The returned stop
// function must be called once the caller is done.
func startFinder(ctx context.Context) (inbound.RecipeFinder, func(), error) {
	var finder inbound.RecipeFinder

	level := logLevel
	if level == "" {
		level = "warn"
	}

	app := fx.New(
		fx.NopLogger,
		container.CoreModule(container.Options{
			ConfigPath:         cfgFile,
			RequireCredentials: true,
			LogLevel:           level,
		}),
		fx.Populate(&finder),
	)
	if err := app.Err(); err != nil {
		return nil, nil, err
	}
	if err := app.Start(ctx); err != nil {
		return nil, nil, fmt.Errorf("failed to start: %w", err)
	}

	stop := func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), app.StopTimeout())
		defer cancel()
		_ = app.Stop(stopCtx)
	}
	return finder, stop, nil
}
