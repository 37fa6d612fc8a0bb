package clickhouse

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"solana-liquidity-watch/internal/domain"
	"solana-liquidity-watch/internal/storage"
)

// SampleStore implements storage.SampleStore using ClickHouse. The table is
// a MergeTree time series; a prepared batch is sent as one insert block, so
// the whole batch lands together or the send fails with nothing written.
type SampleStore struct {
	conn *Conn
}

// NewSampleStore creates a new SampleStore.
func NewSampleStore(conn *Conn) *SampleStore {
	return &SampleStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SampleStore = (*SampleStore)(nil)

// InsertBatch commits all samples as one insert block, or none of them.
func (s *SampleStore) InsertBatch(ctx context.Context, samples []*domain.LiquiditySample) error {
	if len(samples) == 0 {
		return nil
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO amm_liquidity (
			captured_at, source, market_address, pair, reserve_x, reserve_y,
			decimals_x, decimals_y, token_x_address, token_y_address, extra
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, sample := range samples {
		if sample == nil || sample.Source == "" {
			// Release the prepared batch's connection before bailing out.
			_ = batch.Abort()
			return storage.ErrInvalidInput
		}

		err := batch.Append(
			sample.CapturedAt,
			sample.Source.String(),
			sample.MarketAddress,
			sample.PairLabel,
			sample.ReserveX,
			sample.ReserveY,
			sample.DecimalsX,
			sample.DecimalsY,
			sample.TokenXAddress,
			sample.TokenYAddress,
			sample.Extra,
		)
		if err != nil {
			_ = batch.Abort()
			return fmt.Errorf("append sample %s/%s: %w", sample.Source, sample.MarketAddress, err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}

	return nil
}

// GetByMarket retrieves samples for one observation.
func (s *SampleStore) GetByMarket(ctx context.Context, source domain.Source, marketAddress string, capturedAt int64) ([]*domain.LiquiditySample, error) {
	query := `
		SELECT captured_at, source, market_address, pair, reserve_x, reserve_y,
		       decimals_x, decimals_y, token_x_address, token_y_address, extra
		FROM amm_liquidity
		WHERE source = ? AND market_address = ? AND captured_at = ?
	`

	rows, err := s.conn.Query(ctx, query, source.String(), marketAddress, capturedAt)
	if err != nil {
		return nil, fmt.Errorf("get samples by market: %w", err)
	}
	defer rows.Close()

	var samples []*domain.LiquiditySample
	for rows.Next() {
		var (
			sample             domain.LiquiditySample
			src                string
			reserveX, reserveY decimal.Decimal
		)

		err := rows.Scan(
			&sample.CapturedAt,
			&src,
			&sample.MarketAddress,
			&sample.PairLabel,
			&reserveX,
			&reserveY,
			&sample.DecimalsX,
			&sample.DecimalsY,
			&sample.TokenXAddress,
			&sample.TokenYAddress,
			&sample.Extra,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sample row: %w", err)
		}

		sample.Source = domain.Source(src)
		sample.ReserveX = reserveX
		sample.ReserveY = reserveY
		samples = append(samples, &sample)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sample rows: %w", err)
	}

	return samples, nil
}
