package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	acctapp "github.com/stockbooks/backend/internal/application/accounting"
	"github.com/stockbooks/backend/internal/infrastructure/config"
	"github.com/stockbooks/backend/internal/infrastructure/logger"
	"github.com/stockbooks/backend/internal/infrastructure/persistence"
	"go.uber.org/zap"
)

func main() {
	var (
		logLevel  string
		seedChart bool
	)
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.BoolVar(&seedChart, "seed-chart", true, "Seed the default chart of accounts")
	flag.Parse()

	log, err := logger.New(config.LogConfig{Level: logLevel, Format: "console", Output: "stdout"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	log.Info("Running schema migration", zap.String("driver", cfg.Database.Driver))
	if err := db.Migrate(); err != nil {
		log.Fatal("Migration failed", zap.Error(err))
	}
	log.Info("Schema migration complete")

	if seedChart {
		accountRepo := persistence.NewGormAccountRepository(db.DB)
		if err := acctapp.SeedDefaultChart(context.Background(), accountRepo); err != nil {
			log.Fatal("Chart seeding failed", zap.Error(err))
		}
		log.Info("Default chart of accounts seeded")
	}
}
