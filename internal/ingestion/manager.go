package ingestion

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"momentum-feature-lab/internal/observability"
	"momentum-feature-lab/internal/storage"
)

const defaultBatchSize = 10000

// Manager orchestrates ingestion from a price source to storage.
// It enforces deterministic ordering and uses the storage layer for duplicate rejection.
type Manager struct {
	source    PriceSource
	store     storage.PriceTickStore
	batchSize int
	logger    zerolog.Logger
}

// ManagerOptions contains configuration for creating a Manager.
type ManagerOptions struct {
	Source    PriceSource
	Store     storage.PriceTickStore
	BatchSize int // ticks per InsertBulk call, default 10000
	Logger    zerolog.Logger
}

// NewManager creates a new ingestion manager.
func NewManager(opts ManagerOptions) *Manager {
	if opts.BatchSize <= 0 {
		opts.BatchSize = defaultBatchSize
	}
	return &Manager{
		source:    opts.Source,
		store:     opts.Store,
		batchSize: opts.BatchSize,
		logger:    opts.Logger,
	}
}

// IngestPrices fetches ticks, orders them by (ticker, timestamp), keeps the
// last tick of a duplicated timestamp and stores them in batches.
// Returns count of stored ticks. Ticks already in the store are rejected by
// the storage layer (ErrDuplicateKey).
func (m *Manager) IngestPrices(ctx context.Context) (int, error) {
	if m.source == nil || m.store == nil {
		return 0, nil
	}

	ticks, err := m.source.Fetch(ctx)
	if err != nil {
		return 0, err
	}
	if len(ticks) == 0 {
		return 0, nil
	}

	SortTicks(ticks)
	unique := DedupeTicks(ticks)
	if dropped := len(ticks) - len(unique); dropped > 0 {
		m.logger.Warn().Int("dropped", dropped).Msg("duplicate timestamps, keeping last tick")
	}

	stored := 0
	for start := 0; start < len(unique); start += m.batchSize {
		end := min(start+m.batchSize, len(unique))
		if err := m.store.InsertBulk(ctx, unique[start:end]); err != nil {
			return stored, fmt.Errorf("insert ticks %d-%d: %w", start, end, err)
		}
		stored += end - start
		observability.RecordTicksIngested(end - start)
		m.logger.Debug().Int("stored", stored).Int("total", len(unique)).Msg("ingest progress")
	}
	return stored, nil
}
