// Package orchestrator provides batch pipeline orchestration.
// It coordinates: normalization → feature assembly → change-point merge → storage
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"momentum-feature-lab/internal/changepoint"
	"momentum-feature-lab/internal/domain"
	"momentum-feature-lab/internal/features"
	"momentum-feature-lab/internal/normalization"
	"momentum-feature-lab/internal/observability"
	"momentum-feature-lab/internal/signals"
	"momentum-feature-lab/internal/storage"
)

// Pipeline stages reported in AssetError.
const (
	StageLoad     = "load"
	StageAssemble = "assemble"
)

// DefaultWorkers bounds concurrent asset assembly when Options.Workers is zero.
const DefaultWorkers = 32

// Orchestrator coordinates the batch pipeline execution.
type Orchestrator struct {
	loader       normalization.SeriesLoader
	assembler    *features.Assembler
	featureStore storage.FeatureStore

	tickers         []string
	lookbackWindows []int
	folderPattern   string
	workers         int

	logger zerolog.Logger
}

// Options for creating Orchestrator.
type Options struct {
	// Required
	Loader     normalization.SeriesLoader
	Primitives signals.Primitives
	Params     features.Params

	// Optional persistence of the final table
	FeatureStore storage.FeatureStore

	// Tickers restricts the run to these assets; empty means every ticker.
	Tickers []string

	// Change-point merge: one pass per window, folder derived from the
	// pattern with the window length.
	LookbackWindows []int
	FolderPattern   string

	Workers int
	Logger  zerolog.Logger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	workers := opts.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}
	return &Orchestrator{
		loader:          opts.Loader,
		assembler:       features.NewAssembler(opts.Primitives, opts.Params),
		featureStore:    opts.FeatureStore,
		tickers:         opts.Tickers,
		lookbackWindows: opts.LookbackWindows,
		folderPattern:   opts.FolderPattern,
		workers:         workers,
		logger:          opts.Logger.With().Str("component", "orchestrator").Logger(),
	}
}

// AssetError is a failure isolated to one asset.
type AssetError struct {
	Ticker string
	Stage  string
	Err    error
}

func (e *AssetError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Ticker, e.Err)
}

func (e *AssetError) Unwrap() error {
	return e.Err
}

// WindowMerge summarizes the change-point merge of one lookback window.
type WindowMerge struct {
	LookbackWindow int
	Files          int
	FailedFiles    []string
	changepoint.MergeStats
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	AssetsProcessed int
	AssetsFailed    int
	BadTicks        int // ticks removed before winsorization
	Incomplete      int // assembled rows dropped for a missing value
	RowsAssembled   int // rows before the change-point merge
	RowsEmitted     int // rows in the final table
	Merges          []WindowMerge
	AssetErrors     []*AssetError
	Errors          []string

	// Features is the final table ordered by (ticker, date).
	Features []*domain.FeatureRow
}

// Run executes the full batch pipeline.
// Phases:
//  1. Resolve tickers
//  2. Assemble every asset concurrently
//  3. Concatenate in (ticker, date) order
//  4. Merge each lookback window's change-point table
//  5. Persist the table
func (o *Orchestrator) Run(ctx context.Context) (*RunResult, error) {
	start := time.Now()
	result, err := o.run(ctx)
	status := "success"
	if err != nil {
		status = "failed"
	}
	observability.RecordPipelineRun(status, time.Since(start))
	return result, err
}

func (o *Orchestrator) run(ctx context.Context) (*RunResult, error) {
	result := &RunResult{}

	// Phase 1: Resolve tickers
	o.log("Phase 1: Resolving tickers...")
	tickers, missing, err := o.resolveTickers(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (resolve tickers) failed: %w", err)
	}
	for _, t := range missing {
		o.addAssetError(result, &AssetError{Ticker: t, Stage: StageLoad, Err: storage.ErrNotFound})
	}
	o.log("  Found %d tickers (%d requested tickers missing)", len(tickers), len(missing))

	// Phase 2: Feature assembly
	o.log("Phase 2: Assembling features...")
	assets, err := o.assembleAll(ctx, tickers)
	if err != nil {
		return nil, fmt.Errorf("phase 2 (assemble) failed: %w", err)
	}

	// Phase 3: Concatenation
	var table []*domain.FeatureRow
	for _, a := range assets {
		if a.err != nil {
			o.addAssetError(result, a.err)
			continue
		}
		result.AssetsProcessed++
		result.BadTicks += a.res.BadTicks
		result.Incomplete += a.res.Incomplete
		table = append(table, a.res.Rows...)
	}
	result.RowsAssembled = len(table)
	o.log("  Assembled %d rows from %d assets (%d failed)", len(table), result.AssetsProcessed, result.AssetsFailed)

	// Phase 4: Change-point merge
	for _, l := range o.lookbackWindows {
		o.log("Phase 4: Merging change points (lbw=%d)...", l)
		merged, merge, err := o.mergeWindow(ctx, table, l)
		if err != nil {
			return nil, fmt.Errorf("phase 4 (change-point merge lbw=%d) failed: %w", l, err)
		}
		table = merged
		result.Merges = append(result.Merges, merge)
		for _, f := range merge.FailedFiles {
			result.Errors = append(result.Errors, fmt.Sprintf("changepoint lbw=%d: %s", l, f))
		}
		o.log("  Kept %d rows, dropped %d (%d duplicate change-point keys)", merge.Matched, merge.Dropped, merge.DuplicateKeys)
	}
	result.Features = table
	result.RowsEmitted = len(table)
	observability.RecordRowsEmitted(len(table))

	// Phase 5: Storage
	if o.featureStore != nil && len(table) > 0 {
		o.log("Phase 5: Storing %d feature rows...", len(table))
		start := time.Now()
		err := o.featureStore.InsertBulk(ctx, table)
		observability.RecordDBQuery("features", "insert_bulk", time.Since(start), err)
		if err != nil {
			return nil, fmt.Errorf("phase 5 (store features) failed: %w", err)
		}
	}

	o.log("Pipeline completed: %d assets, %d rows, %d errors",
		result.AssetsProcessed, result.RowsEmitted, len(result.Errors))

	return result, nil
}

// resolveTickers returns the tickers to process in ascending order and the
// requested tickers that the loader does not know.
func (o *Orchestrator) resolveTickers(ctx context.Context) ([]string, []string, error) {
	available, err := o.loader.Tickers(ctx)
	if err != nil {
		return nil, nil, err
	}
	available = slices.Clone(available)
	slices.Sort(available)
	available = slices.Compact(available)
	if len(o.tickers) == 0 {
		return available, nil, nil
	}

	var selected, missing []string
	requested := slices.Clone(o.tickers)
	slices.Sort(requested)
	for _, t := range slices.Compact(requested) {
		if _, ok := slices.BinarySearch(available, t); ok {
			selected = append(selected, t)
		} else {
			missing = append(missing, t)
		}
	}
	return selected, missing, nil
}

type assetResult struct {
	res *features.Result
	err *AssetError
}

// assembleAll builds every asset with at most o.workers in flight. Results
// keep the order of tickers. Only context cancellation fails the call.
func (o *Orchestrator) assembleAll(ctx context.Context, tickers []string) ([]assetResult, error) {
	results := make([]assetResult, len(tickers))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.workers)
	for i, ticker := range tickers {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			res, aerr := o.assembleOne(gctx, ticker)
			results[i] = assetResult{res: res, err: aerr}

			var bad, incomplete int
			var err error
			if aerr != nil {
				err = aerr
			} else {
				bad, incomplete = res.BadTicks, res.Incomplete
			}
			observability.RecordAsset(err, bad, incomplete, time.Since(start))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func (o *Orchestrator) assembleOne(ctx context.Context, ticker string) (res *features.Result, aerr *AssetError) {
	series, err := o.loader.LoadSeries(ctx, ticker)
	if err != nil {
		return nil, &AssetError{Ticker: ticker, Stage: StageLoad, Err: err}
	}

	defer func() {
		if r := recover(); r != nil {
			res = nil
			aerr = &AssetError{Ticker: ticker, Stage: StageAssemble, Err: fmt.Errorf("panic: %v", r)}
		}
	}()
	return o.assembler.Assemble(series), nil
}

func (o *Orchestrator) mergeWindow(ctx context.Context, table []*domain.FeatureRow, lookbackWindow int) ([]*domain.FeatureRow, WindowMerge, error) {
	folder := fmt.Sprintf(o.folderPattern, lookbackWindow)
	cp, err := changepoint.Prepare(ctx, folder, lookbackWindow, o.workers, o.logger)
	if err != nil {
		return nil, WindowMerge{}, err
	}

	merged, stats := changepoint.Include(table, cp)
	merge := WindowMerge{LookbackWindow: lookbackWindow, Files: cp.Files, MergeStats: stats}
	for _, f := range cp.Failed {
		merge.FailedFiles = append(merge.FailedFiles, f.Error())
	}
	observability.RecordChangepointMerge(lookbackWindow, cp.Files, len(cp.Failed), stats.Dropped, stats.DuplicateKeys)
	return merged, merge, nil
}

func (o *Orchestrator) addAssetError(result *RunResult, aerr *AssetError) {
	result.AssetsFailed++
	result.AssetErrors = append(result.AssetErrors, aerr)
	result.Errors = append(result.Errors, aerr.Error())

	event := o.logger.Warn()
	if errors.Is(aerr.Err, storage.ErrNotFound) {
		event = o.logger.Info()
	}
	event.Err(aerr.Err).Str("ticker", aerr.Ticker).Str("stage", aerr.Stage).Msg("asset skipped")
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	o.logger.Info().Msgf(format, args...)
}
