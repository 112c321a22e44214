package main

// Run database migrations:
//   go run ./cmd/migrate
//   go run ./cmd/migrate -status

import (
	"context"
	"flag"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/config"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/storage/db"
	"github.com/nadavyigal/new-ResumeBuilder-ai--sub005/internal/shared/telemetry"
)

func main() {
	status := flag.Bool("status", false, "print migration status instead of applying")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := telemetry.NewLogger(cfg.LogFormat, cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	ctx := context.Background()

	opts := db.OptionsFromEnv(db.DefaultCLIOptions(), logger)
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts, logger)
	if err != nil {
		logger.Error("failed to connect database", zap.Error(err))
		os.Exit(1)
	}
	defer sqlDB.Close()

	if *status {
		err = db.MigrationStatus(ctx, sqlDB)
	} else {
		err = db.RunMigrations(ctx, sqlDB)
	}
	if err != nil {
		logger.Error("migration failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("migrations complete")
}
