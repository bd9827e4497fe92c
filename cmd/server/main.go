package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mytheresa/category-service/app/config"
	"github.com/mytheresa/category-service/app/database"
	"github.com/mytheresa/category-service/app/server"
	"github.com/mytheresa/category-service/app/telemetry"
	"github.com/mytheresa/category-service/migrations"
	"github.com/mytheresa/category-service/migrations/versions"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.LoadDotEnv()
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	if err := run(ctx, cfg); err != nil {
		stop()
		log.Fatal(err)
	}
	log.Println("Shutdown complete.")
}

// run serves until ctx is done. Tracing and the database are released on
// every return path.
func run(ctx context.Context, cfg config.Config) error {
	shutdownTracing, err := telemetry.Setup(ctx, cfg.OTelEndpoint, cfg.OTelServiceName)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Printf("telemetry shutdown: %v", err)
		}
	}()

	db, err := database.Open(cfg.Database)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Printf("db close: %v", err)
		}
	}()

	chain, err := versions.Chain()
	if err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	runner := migrations.NewRunner(db, chain)
	if cfg.MigrateOnStart {
		if _, err := runner.Upgrade(ctx, migrations.TargetHead); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	} else if atHead, err := runner.IsAtHead(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	} else if !atHead {
		log.Println("WARNING: database schema is behind head, run the migrate command")
	}

	if err := server.Run(ctx, cfg, server.NewHandler(cfg, db)); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}
