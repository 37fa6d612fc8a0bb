package storage

import (
	"context"

	"solana-liquidity-watch/internal/domain"
)

// SampleStore persists liquidity samples to the append-only amm_liquidity
// table. There is no update or delete path; every poll produces new rows.
type SampleStore interface {
	// InsertBatch commits all samples together or none of them. A batch is
	// one adapter's output for one cycle. An empty batch is a successful
	// no-op. Re-submitting a batch after a failure inserts duplicate rows;
	// retries are the caller's concern.
	InsertBatch(ctx context.Context, samples []*domain.LiquiditySample) error

	// GetByMarket retrieves samples for one (source, market, captured_at)
	// observation, in insertion order. Used by operational read-back checks
	// and tests; the collector's write path never reads.
	GetByMarket(ctx context.Context, source domain.Source, marketAddress string, capturedAt int64) ([]*domain.LiquiditySample, error)
}
