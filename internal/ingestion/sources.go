package ingestion

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"momentum-feature-lab/internal/domain"
	"momentum-feature-lab/internal/observability"
)

// PriceSource provides raw price ticks from an external source.
type PriceSource interface {
	// Fetch returns all ticks. Ticks may be unordered; Manager enforces ordering.
	Fetch(ctx context.Context) ([]*domain.PriceTick, error)
}

// CSVSource reads ticks from a CSV file or a directory of CSV files.
type CSVSource struct {
	Path   string
	Logger zerolog.Logger
}

// NewCSVSource creates a CSV source rooted at path.
func NewCSVSource(path string, logger zerolog.Logger) *CSVSource {
	return &CSVSource{Path: path, Logger: logger}
}

// Fetch loads the file, or every CSV file when Path is a directory.
// Unreadable files inside a directory are logged and skipped.
func (s *CSVSource) Fetch(ctx context.Context) ([]*domain.PriceTick, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	info, err := os.Stat(s.Path)
	if err != nil {
		return nil, fmt.Errorf("price source: %w", err)
	}
	if !info.IsDir() {
		return LoadPriceCSV(s.Path)
	}

	res, err := LoadPriceDir(s.Path)
	if err != nil {
		return nil, err
	}
	observability.RecordPriceFilesFailed(len(res.Failed))
	for _, f := range res.Failed {
		s.Logger.Warn().Err(f.Err).Str("file", f.Path).Msg("skipping unreadable price file")
	}
	s.Logger.Info().Int("files", res.Files).Int("failed", len(res.Failed)).Int("ticks", len(res.Ticks)).Msg("loaded price files")
	return res.Ticks, nil
}

var _ PriceSource = (*CSVSource)(nil)
