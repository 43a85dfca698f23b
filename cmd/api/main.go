// Package main provides the entry point for the recipefinder API server
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alchemorsel/recipefinder/internal/infrastructure/container"
	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	envFile := flag.String("env-file", ".env", "Optional dotenv file")
	flag.Parse()

	if err := godotenv.Load(*envFile); err != nil && !os.IsNotExist(err) {
		log.Printf("Ignoring env file %s: %v", *envFile, err)
	}

	app := fx.New(
		fx.NopLogger,
		container.Module(container.Options{ConfigPath: *configPath}),
	)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		if sig.ExitCode != 0 {
			log.Printf("Application requested shutdown with code %d", sig.ExitCode)
		}
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := app.Stop(shutdownCtx); err != nil {
		log.Fatalf("Failed to stop application gracefully: %v", err)
	}
}
