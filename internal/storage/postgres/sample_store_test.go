package postgres

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-liquidity-watch/internal/domain"
	"solana-liquidity-watch/internal/storage"
)

func TestSampleStore_InsertBatchAndGetByMarket(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSampleStore(pool)

	// Reserve values beyond u64 range must survive the NUMERIC round trip.
	bigReserve, err := decimal.NewFromString("340282366920938463463374607431768211455")
	require.NoError(t, err)

	sample := &domain.LiquiditySample{
		CapturedAt:    1700000000,
		Source:        domain.SourceOrca,
		MarketAddress: "WhirlpoolAddr1",
		PairLabel:     "SOL/USDC",
		ReserveX:      bigReserve,
		ReserveY:      decimal.NewFromInt(750000000),
		DecimalsX:     domain.Decimals(9),
		DecimalsY:     domain.Decimals(6),
		TokenXAddress: "MintX1",
		TokenYAddress: "MintY1",
		Extra:         `{"liquidity":"987654321"}`,
	}

	err = store.InsertBatch(ctx, []*domain.LiquiditySample{sample})
	require.NoError(t, err)

	samples, err := store.GetByMarket(ctx, domain.SourceOrca, "WhirlpoolAddr1", 1700000000)
	require.NoError(t, err)

	require.Len(t, samples, 1)
	got := samples[0]
	assert.Equal(t, sample.CapturedAt, got.CapturedAt)
	assert.Equal(t, sample.Source, got.Source)
	assert.Equal(t, sample.MarketAddress, got.MarketAddress)
	assert.Equal(t, sample.PairLabel, got.PairLabel)
	assert.Equal(t, "340282366920938463463374607431768211455", got.ReserveX.String())
	assert.Equal(t, "750000000", got.ReserveY.String())
	require.NotNil(t, got.DecimalsX)
	require.NotNil(t, got.DecimalsY)
	assert.Equal(t, int16(9), *got.DecimalsX)
	assert.Equal(t, int16(6), *got.DecimalsY)
	assert.Equal(t, sample.TokenXAddress, got.TokenXAddress)
	assert.Equal(t, sample.TokenYAddress, got.TokenYAddress)
	assert.JSONEq(t, sample.Extra, got.Extra)
	assert.NotZero(t, got.ID)
	assert.NotZero(t, got.CreatedAt)
}

func TestSampleStore_NullableDecimals(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSampleStore(pool)

	// DOOAR-style sample: no market account, decimals unknown.
	sample := &domain.LiquiditySample{
		CapturedAt: 1700000000,
		Source:     domain.SourceDooar,
		PairLabel:  "SOL/USDC",
		ReserveX:   decimal.NewFromInt(1),
		ReserveY:   decimal.NewFromInt(2),
		Extra:      domain.EmptyExtra,
	}

	err := store.InsertBatch(ctx, []*domain.LiquiditySample{sample})
	require.NoError(t, err)

	samples, err := store.GetByMarket(ctx, domain.SourceDooar, "", 1700000000)
	require.NoError(t, err)

	require.Len(t, samples, 1)
	assert.Nil(t, samples[0].DecimalsX)
	assert.Nil(t, samples[0].DecimalsY)
	assert.Empty(t, samples[0].MarketAddress)
}

func TestSampleStore_InsertBatchAtomic(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSampleStore(pool)

	good := &domain.LiquiditySample{
		CapturedAt:    1700000000,
		Source:        domain.SourceRaydium,
		MarketAddress: "PoolAtomic",
		ReserveX:      decimal.NewFromInt(1),
		ReserveY:      decimal.NewFromInt(2),
		Extra:         domain.EmptyExtra,
	}

	// A bad row after a good one must roll the whole batch back.
	err := store.InsertBatch(ctx, []*domain.LiquiditySample{good, nil})
	assert.ErrorIs(t, err, storage.ErrInvalidInput)

	samples, err := store.GetByMarket(ctx, domain.SourceRaydium, "PoolAtomic", 1700000000)
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestSampleStore_InsertBatchEmpty(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSampleStore(pool)

	// Empty batch should succeed (no-op)
	err := store.InsertBatch(ctx, []*domain.LiquiditySample{})
	require.NoError(t, err)
}

func TestSampleStore_Ordering(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSampleStore(pool)

	batch := []*domain.LiquiditySample{
		{
			CapturedAt:    1700000000,
			Source:        domain.SourceBonkSwap,
			MarketAddress: "PoolOrder",
			PairLabel:     "first",
			ReserveX:      decimal.NewFromInt(1),
			ReserveY:      decimal.NewFromInt(1),
			Extra:         domain.EmptyExtra,
		},
		{
			CapturedAt:    1700000000,
			Source:        domain.SourceBonkSwap,
			MarketAddress: "PoolOrder",
			PairLabel:     "second",
			ReserveX:      decimal.NewFromInt(2),
			ReserveY:      decimal.NewFromInt(2),
			Extra:         domain.EmptyExtra,
		},
	}

	err := store.InsertBatch(ctx, batch)
	require.NoError(t, err)

	samples, err := store.GetByMarket(ctx, domain.SourceBonkSwap, "PoolOrder", 1700000000)
	require.NoError(t, err)

	// Insertion order is preserved.
	require.Len(t, samples, 2)
	assert.Equal(t, "first", samples[0].PairLabel)
	assert.Equal(t, "second", samples[1].PairLabel)
	assert.Less(t, samples[0].ID, samples[1].ID)
}

func TestSampleStore_EmptyResult(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSampleStore(pool)

	samples, err := store.GetByMarket(ctx, domain.SourceOrca, "nonexistent", 0)
	require.NoError(t, err)
	assert.Empty(t, samples)
}

func TestSampleStore_SeparateCyclesKeepSeparateRows(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	store := NewSampleStore(pool)

	mk := func(capturedAt int64) *domain.LiquiditySample {
		return &domain.LiquiditySample{
			CapturedAt:    capturedAt,
			Source:        domain.SourceFluxBeam,
			MarketAddress: "PoolCycles",
			ReserveX:      decimal.NewFromInt(capturedAt),
			ReserveY:      decimal.NewFromInt(capturedAt),
			Extra:         domain.EmptyExtra,
		}
	}

	// The table is append-only: the same market observed twice yields two rows.
	require.NoError(t, store.InsertBatch(ctx, []*domain.LiquiditySample{mk(1700000000)}))
	require.NoError(t, store.InsertBatch(ctx, []*domain.LiquiditySample{mk(1700000300)}))

	first, err := store.GetByMarket(ctx, domain.SourceFluxBeam, "PoolCycles", 1700000000)
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := store.GetByMarket(ctx, domain.SourceFluxBeam, "PoolCycles", 1700000300)
	require.NoError(t, err)
	assert.Len(t, second, 1)
}
