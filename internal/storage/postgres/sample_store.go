package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"solana-liquidity-watch/internal/domain"
	"solana-liquidity-watch/internal/storage"
)

// SampleStore implements storage.SampleStore using PostgreSQL.
type SampleStore struct {
	pool *Pool
}

// NewSampleStore creates a new SampleStore.
func NewSampleStore(pool *Pool) *SampleStore {
	return &SampleStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SampleStore = (*SampleStore)(nil)

const insertSampleQuery = `
	INSERT INTO amm_liquidity (
		captured_at, source, market_address, pair, reserve_x, reserve_y,
		decimals_x, decimals_y, token_x_address, token_y_address, extra
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
`

// InsertBatch commits all samples in one transaction, or none of them.
// The connection is acquired for this call only and released on return, so
// no transaction state can leak across batches.
func (s *SampleStore) InsertBatch(ctx context.Context, samples []*domain.LiquiditySample) error {
	if len(samples) == 0 {
		return nil
	}

	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, sample := range samples {
		if sample == nil || sample.Source == "" {
			return storage.ErrInvalidInput
		}

		_, err := tx.Exec(ctx, insertSampleQuery,
			sample.CapturedAt,
			sample.Source.String(),
			sample.MarketAddress,
			sample.PairLabel,
			sample.ReserveX.String(),
			sample.ReserveY.String(),
			sample.DecimalsX,
			sample.DecimalsY,
			sample.TokenXAddress,
			sample.TokenYAddress,
			sample.Extra,
		)
		if err != nil {
			return fmt.Errorf("insert sample %s/%s: %w", sample.Source, sample.MarketAddress, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	return nil
}

// GetByMarket retrieves samples for one observation, in insertion order.
func (s *SampleStore) GetByMarket(ctx context.Context, source domain.Source, marketAddress string, capturedAt int64) ([]*domain.LiquiditySample, error) {
	query := `
		SELECT id, captured_at, source, market_address, pair,
		       reserve_x::text, reserve_y::text,
		       decimals_x, decimals_y, token_x_address, token_y_address, extra, created_at
		FROM amm_liquidity
		WHERE source = $1 AND market_address = $2 AND captured_at = $3
		ORDER BY id ASC
	`

	rows, err := s.pool.Query(ctx, query, source.String(), marketAddress, capturedAt)
	if err != nil {
		return nil, fmt.Errorf("get samples by market: %w", err)
	}
	defer rows.Close()

	return scanSamples(rows)
}

// scanSamples scans multiple rows into a slice of LiquiditySample.
func scanSamples(rows pgx.Rows) ([]*domain.LiquiditySample, error) {
	var samples []*domain.LiquiditySample

	for rows.Next() {
		var (
			sample             domain.LiquiditySample
			source             string
			reserveX, reserveY string
		)

		err := rows.Scan(
			&sample.ID,
			&sample.CapturedAt,
			&source,
			&sample.MarketAddress,
			&sample.PairLabel,
			&reserveX,
			&reserveY,
			&sample.DecimalsX,
			&sample.DecimalsY,
			&sample.TokenXAddress,
			&sample.TokenYAddress,
			&sample.Extra,
			&sample.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sample row: %w", err)
		}

		sample.Source = domain.Source(source)

		// Reserves travel as NUMERIC text to avoid float coercion.
		sample.ReserveX, err = decimal.NewFromString(reserveX)
		if err != nil {
			return nil, fmt.Errorf("parse reserve_x: %w", err)
		}
		sample.ReserveY, err = decimal.NewFromString(reserveY)
		if err != nil {
			return nil, fmt.Errorf("parse reserve_y: %w", err)
		}

		samples = append(samples, &sample)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sample rows: %w", err)
	}

	return samples, nil
}
