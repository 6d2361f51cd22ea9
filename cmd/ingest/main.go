// Package main loads price tick CSV files into PostgreSQL.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"momentum-feature-lab/internal/ingestion"
	"momentum-feature-lab/internal/logging"
	"momentum-feature-lab/internal/storage"
	"momentum-feature-lab/internal/storage/memory"
	"momentum-feature-lab/internal/storage/migrations"
	pgstore "momentum-feature-lab/internal/storage/postgres"
)

func main() {
	// Parse flags
	input := flag.String("input", "", "Price CSV file or directory of CSV files")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	batchSize := flag.Int("batch-size", 10000, "Ticks per insert batch")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL (dry run)")
	logLevel := flag.String("log-level", "info", "Log level")
	flag.Parse()

	logger, err := logging.New(logging.Config{Level: *logLevel, Format: "console", Output: "stderr"})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	logger = logger.With().Str("component", "ingest").Logger()

	if *input == "" {
		logger.Fatal().Msg("--input is required")
	}
	if !*useMemory && *postgresDSN == "" {
		logger.Fatal().Msg("--postgres-dsn (or POSTGRES_DSN) is required unless --use-memory is set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store storage.PriceTickStore
	if *useMemory {
		logger.Info().Msg("using in-memory storage")
		store = memory.NewPriceTickStore()
	} else {
		pool, err := pgstore.NewPool(ctx, *postgresDSN)
		if err != nil {
			logger.Fatal().Err(err).Msg("connect to postgres")
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			logger.Fatal().Err(err).Msg("run migrations")
		}
		store = pgstore.NewPriceTickStore(pool)
	}

	mgr := ingestion.NewManager(ingestion.ManagerOptions{
		Source:    ingestion.NewCSVSource(*input, logger),
		Store:     store,
		BatchSize: *batchSize,
		Logger:    logger,
	})

	start := time.Now()
	n, err := mgr.IngestPrices(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			logger.Error().Int("stored", n).Msg("ticks already ingested; batch rejected")
		}
		logger.Fatal().Err(err).Int("stored", n).Msg("ingestion failed")
	}

	logger.Info().Int("ticks", n).Dur("took", time.Since(start)).Msg("ingestion complete")
}
