package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"perfeval/adapters/api"
	"perfeval/adapters/postgres"
	"perfeval/app"
	"perfeval/internal"
	"perfeval/internal/config"
	"perfeval/ports"
)

func main() {
	_ = godotenv.Load()

	logger := internal.DefaultLogger

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var repo ports.EvaluationRepository
	if cfg.Database.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		db, err := sqlx.ConnectContext(ctx, "postgres", cfg.Database.URL)
		cancel()
		if err != nil {
			logger.Error("connect to evaluation store: %v", err)
			os.Exit(1)
		}
		defer db.Close()
		if _, err := db.Exec(postgres.Schema); err != nil {
			logger.Error("ensure schema: %v", err)
			os.Exit(1)
		}
		repo = postgres.NewEvaluationRepository(db)
		logger.Info("evaluation store connected")
	} else {
		logger.Info("no database configured, evaluations will not be persisted")
	}

	service := app.NewEvaluationService(repo, nil, logger)
	server := api.NewServer(service, repo, logger)

	if err := server.Start(":" + cfg.Server.Port); err != nil {
		logger.Error("server failed: %v", err)
		os.Exit(1)
	}
}
