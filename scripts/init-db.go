// Command init-db prepares the lookup audit database ahead of the server.
package main

import (
	"flag"
	"fmt"
	"os"

	"order_tracker/internal/config"
	"order_tracker/internal/database"
	"order_tracker/internal/logger"
	"order_tracker/internal/migrations"

	"go.uber.org/zap"
)

func main() {
	reset := flag.Bool("reset", false, "drop the audit tables before migrating")
	flag.Parse()

	cfg := config.Load()
	log, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to initialize logger:", err)
		os.Exit(1)
	}
	defer log.Sync()

	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is required to initialize the audit database")
	}

	db, err := database.Initialize(cfg.DatabaseURL, cfg.DatabaseOptions())
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer database.Close(db)

	if err := migrations.RunMigrations(db, *reset); err != nil {
		log.Fatal("failed to migrate database", zap.Error(err))
	}
	log.Info("audit database initialized", zap.Bool("reset", *reset))
}
