// Package main provides the feature pipeline entry point.
// Executes: ingestion → feature assembly → change-point merge → reporting
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"momentum-feature-lab/internal/config"
	"momentum-feature-lab/internal/ingestion"
	"momentum-feature-lab/internal/logging"
	"momentum-feature-lab/internal/normalization"
	"momentum-feature-lab/internal/observability"
	"momentum-feature-lab/internal/orchestrator"
	"momentum-feature-lab/internal/reporting"
	"momentum-feature-lab/internal/storage"
	chstore "momentum-feature-lab/internal/storage/clickhouse"
	"momentum-feature-lab/internal/storage/memory"
	"momentum-feature-lab/internal/storage/migrations"
	pgstore "momentum-feature-lab/internal/storage/postgres"
	"momentum-feature-lab/internal/verification"
)

func main() {
	// Parse flags
	configPath := flag.String("config", "", "YAML config file (defaults when empty)")
	input := flag.String("input", "", "Price CSV file or directory (overrides input.path)")
	lbw := flag.String("lbw", "", "Comma-separated lookback windows, or 'none' (overrides changepoint.lookback_windows)")
	tickers := flag.String("tickers", "", "Comma-separated tickers to process (default all)")
	workers := flag.Int("workers", 0, "Concurrent assets (overrides workers)")
	output := flag.String("output", "", "Feature CSV path (overrides output.csv_path)")
	reportPath := flag.String("report", "", "Markdown run summary path (overrides output.report_path)")
	metricsAddr := flag.String("metrics-addr", "", "Prometheus metrics HTTP address (overrides metrics_addr)")
	verify := flag.Bool("verify", false, "Compare the stored feature table against the computed one")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	if err := applyFlags(cfg, *input, *lbw, *tickers, *workers, *output, *reportPath, *metricsAddr); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}

	// Create context with cancellation for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsAddr != "" {
		startMetricsServer(cfg.MetricsAddr, logger)
	}

	if err := run(ctx, cfg, *verify, logger); err != nil {
		logger.Error().Err(err).Msg("pipeline failed")
		os.Exit(1)
	}
}

func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.LoadWithEnv(path)
	}
	cfg, err := config.Default()
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	return cfg, nil
}

func applyFlags(cfg *config.Config, input, lbw, tickers string, workers int, output, report, metricsAddr string) error {
	if input != "" {
		cfg.Input.Path = input
	}
	if lbw != "" {
		windows, err := parseWindows(lbw)
		if err != nil {
			return err
		}
		cfg.Changepoint.LookbackWindows = windows
	}
	if tickers != "" {
		cfg.Input.Tickers = strings.Split(tickers, ",")
	}
	if workers > 0 {
		cfg.Workers = workers
	}
	if output != "" {
		cfg.Output.CSVPath = output
	}
	if report != "" {
		cfg.Output.ReportPath = report
	}
	if metricsAddr != "" {
		cfg.MetricsAddr = metricsAddr
	}
	return cfg.Validate()
}

// parseWindows parses "21,63" or "none".
func parseWindows(s string) ([]int, error) {
	if strings.EqualFold(s, "none") {
		return []int{}, nil
	}
	var windows []int
	for _, part := range strings.Split(s, ",") {
		l, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid lookback window %q: %w", part, err)
		}
		windows = append(windows, l)
	}
	return windows, nil
}

func startMetricsServer(addr string, logger zerolog.Logger) {
	go func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", observability.Handler())
		mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			w.Write([]byte("ok"))
		})
		logger.Info().Str("addr", addr).Msg("starting metrics server")
		if err := http.ListenAndServe(addr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Msg("metrics server error")
		}
	}()
}

func run(ctx context.Context, cfg *config.Config, verify bool, logger zerolog.Logger) error {
	tickStore, closeTicks, err := openTickStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeTicks()

	featureStore, closeFeatures, err := openFeatureStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeFeatures()

	prims, err := cfg.Primitives()
	if err != nil {
		return err
	}

	orch := orchestrator.New(orchestrator.Options{
		Loader:          normalization.NewRunner(tickStore),
		Primitives:      prims,
		Params:          cfg.FeatureParams(),
		FeatureStore:    featureStore,
		Tickers:         cfg.Input.Tickers,
		LookbackWindows: cfg.Changepoint.LookbackWindows,
		FolderPattern:   cfg.Changepoint.FolderPattern,
		Workers:         cfg.Workers,
		Logger:          logger,
	})

	result, err := orch.Run(ctx)
	if err != nil {
		return err
	}

	check := verification.VerifyTable(result.Features, cfg.Changepoint.LookbackWindows)
	for _, issue := range check.Issues {
		logger.Error().Str("issue", issue).Msg("feature table check failed")
	}
	if !check.OK() {
		return fmt.Errorf("feature table failed %d checks", len(check.Issues))
	}

	if verify && featureStore != nil {
		report, err := verification.NewStoreVerifier(featureStore).VerifyAll(ctx, result.Features)
		if err != nil {
			return err
		}
		logger.Info().
			Int("rows", report.TotalRows).
			Int("matched", report.MatchedRows).
			Int("divergent", report.DivergentRows).
			Int("missing", report.MissingRows).
			Msg("stored feature table verified")
		if report.DivergentRows > 0 || report.MissingRows > 0 {
			return fmt.Errorf("stored feature table diverges in %d rows", report.DivergentRows+report.MissingRows)
		}
	}

	gen := reporting.NewGenerator(cfg.Changepoint.LookbackWindows)
	featuresPath := cfg.FeaturesFilePath()
	if err := gen.WriteFeatureFile(featuresPath, result); err != nil {
		return err
	}
	summary := gen.Generate(result)
	if cfg.Output.ReportPath != "" {
		if err := gen.WriteReportFile(cfg.Output.ReportPath, summary); err != nil {
			return err
		}
	}

	logger.Info().
		Int("assets", result.AssetsProcessed).
		Int("failed", result.AssetsFailed).
		Int("rows", result.RowsEmitted).
		Str("data_version", summary.DataVersion).
		Str("output", featuresPath).
		Msg("pipeline completed")
	return nil
}

// openTickStore returns the price tick store: CSV input is ingested into
// memory, postgres input is read in place.
func openTickStore(ctx context.Context, cfg *config.Config, logger zerolog.Logger) (storage.PriceTickStore, func(), error) {
	switch cfg.Input.Source {
	case config.SourcePostgres:
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, err
		}
		return pgstore.NewPriceTickStore(pool), pool.Close, nil

	default:
		store := memory.NewPriceTickStore()
		mgr := ingestion.NewManager(ingestion.ManagerOptions{
			Source: ingestion.NewCSVSource(cfg.Input.Path, logger),
			Store:  store,
			Logger: logger,
		})
		start := time.Now()
		n, err := mgr.IngestPrices(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("ingest %s: %w", cfg.Input.Path, err)
		}
		logger.Info().Int("ticks", n).Dur("took", time.Since(start)).Msg("price ticks loaded")
		return store, func() {}, nil
	}
}

// openFeatureStore returns the ClickHouse feature store when enabled.
func openFeatureStore(ctx context.Context, cfg *config.Config) (storage.FeatureStore, func(), error) {
	if !cfg.Output.ClickHouse {
		return nil, func() {}, nil
	}
	conn, err := chstore.OpenDatabase(ctx, cfg.ClickhouseDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return chstore.NewFeatureStore(conn), func() { conn.Close() }, nil
}
