package changepoint

import (
	"context"
	"fmt"
	"slices"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"momentum-feature-lab/internal/domain"
	"momentum-feature-lab/internal/ingestion"
)

// Table is the change-point output of every asset for one lookback window.
type Table struct {
	LookbackWindow int
	Records        []domain.ChangepointRecord // file order, then date order within a file
	Files          int                        // files read successfully
	Failed         []*ingestion.FileError     // files skipped
}

// Prepare reads every .csv file in folder with at most workers files in
// flight. A file that cannot be read is logged, recorded in Failed and
// skipped. Only a missing folder or a cancelled context fails the call.
func Prepare(ctx context.Context, folder string, lookbackWindow, workers int, logger zerolog.Logger) (*Table, error) {
	if lookbackWindow <= 0 {
		return nil, ErrInvalidLookback
	}
	paths, err := ingestion.CSVFiles(folder)
	if err != nil {
		return nil, fmt.Errorf("list change-point files: %w", err)
	}

	type fileResult struct {
		records []domain.ChangepointRecord
		err     error
	}
	results := make([]fileResult, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, p := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			records, err := ReadFile(p, lookbackWindow)
			results[i] = fileResult{records: records, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	table := &Table{LookbackWindow: lookbackWindow}
	for i, res := range results {
		if res.err != nil {
			logger.Warn().Err(res.err).Str("file", paths[i]).Int("lbw", lookbackWindow).Msg("skipping change-point file")
			table.Failed = append(table.Failed, &ingestion.FileError{Path: paths[i], Err: res.err})
			continue
		}
		table.Files++
		table.Records = append(table.Records, res.records...)
	}

	logger.Info().
		Int("lbw", lookbackWindow).
		Int("files", table.Files).
		Int("failed", len(table.Failed)).
		Int("records", len(table.Records)).
		Msg("change-point table prepared")
	return table, nil
}

// MergeStats summarizes one Include call.
type MergeStats struct {
	Matched       int // feature rows kept
	Dropped       int // feature rows without a change-point record
	DuplicateKeys int // change-point records superseded by a later one with the same key
}

type mergeKey struct {
	ticker string
	date   int64
}

// Include inner-joins the table onto rows by (date, ticker). Every kept row
// gains the (cp_rl_L, cp_score_L) pair for the table's window and rows without
// a matching record are dropped. If a key repeats in the table the last record
// wins. Row order is preserved and the input rows are not modified.
func Include(rows []*domain.FeatureRow, table *Table) ([]*domain.FeatureRow, MergeStats) {
	var stats MergeStats

	index := make(map[mergeKey]domain.ChangepointRecord, len(table.Records))
	for _, rec := range table.Records {
		key := mergeKey{rec.Ticker, rec.Date.UnixNano()}
		if _, dup := index[key]; dup {
			stats.DuplicateKeys++
		}
		index[key] = rec
	}

	out := make([]*domain.FeatureRow, 0, len(rows))
	for _, row := range rows {
		rec, ok := index[mergeKey{row.Ticker, row.Date.UnixNano()}]
		if !ok {
			stats.Dropped++
			continue
		}
		out = append(out, withChangepoint(row, domain.ChangepointFeature{
			LookbackWindow: table.LookbackWindow,
			Location:       rec.LocationNorm,
			Score:          rec.Score,
		}))
	}
	stats.Matched = len(out)
	return out, stats
}

// withChangepoint returns a copy of row carrying cp, replacing any earlier
// value for the same window.
func withChangepoint(row *domain.FeatureRow, cp domain.ChangepointFeature) *domain.FeatureRow {
	c := *row
	c.Changepoints = slices.DeleteFunc(slices.Clone(row.Changepoints), func(f domain.ChangepointFeature) bool {
		return f.LookbackWindow == cp.LookbackWindow
	})
	c.Changepoints = append(c.Changepoints, cp)
	return &c
}
