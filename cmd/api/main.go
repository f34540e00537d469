package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"modelrank/adapters/postgres"
	"modelrank/app"
	"modelrank/internal"
	"modelrank/internal/config"
	"modelrank/ports"
	"modelrank/ui"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := internal.DefaultLogger

	var repo ports.ComparisonRepository
	if cfg.Database.Enabled {
		db, err := sqlx.Connect("postgres", cfg.Database.URL)
		if err != nil {
			log.Fatalf("database: %v", err)
		}
		defer db.Close()
		repo = postgres.NewComparisonRepository(db)
		logger.Info("comparison persistence enabled")
	} else {
		logger.Info("no DATABASE_URL set, comparisons will not be persisted")
	}

	comparisons := app.NewComparisonService(repo, logger)
	sweeps := app.NewSweepService(comparisons, cfg.Ranking.SweepWorkers, logger)

	server := ui.NewServer(cfg, comparisons, sweeps, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Run(ctx); err != nil {
		log.Fatalf("server: %v", err)
	}
}
