package collector

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"solana-liquidity-watch/internal/adapters"
	"solana-liquidity-watch/internal/domain"
	"solana-liquidity-watch/internal/observability"
	"solana-liquidity-watch/internal/storage"
	"solana-liquidity-watch/internal/storage/memory"
)

// fakeClock advances only when told to, so pacing is observable without
// real waiting.
type fakeClock struct {
	now     time.Time
	sleeps  []time.Duration
	onSleep func(sleepCount int)
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1700000000, 0)}
}

func (c *fakeClock) Now() time.Time {
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	if c.onSleep != nil {
		c.onSleep(len(c.sleeps))
	}
	return ctx.Err()
}

// fakeAdapter returns canned samples or a canned error and counts fetches.
type fakeAdapter struct {
	source  domain.Source
	samples []*domain.LiquiditySample
	err     error
	fetches int
	onFetch func()
}

func (a *fakeAdapter) Source() domain.Source {
	return a.source
}

func (a *fakeAdapter) Fetch(_ context.Context) ([]*domain.LiquiditySample, error) {
	a.fetches++
	if a.onFetch != nil {
		a.onFetch()
	}
	if a.err != nil {
		return nil, a.err
	}
	return a.samples, nil
}

// failingStore rejects every batch.
type failingStore struct {
	attempts int
}

func (s *failingStore) InsertBatch(_ context.Context, _ []*domain.LiquiditySample) error {
	s.attempts++
	return errors.New("connection reset")
}

func (s *failingStore) GetByMarket(_ context.Context, _ domain.Source, _ string, _ int64) ([]*domain.LiquiditySample, error) {
	return nil, nil
}

var _ storage.SampleStore = (*failingStore)(nil)

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func sampleFor(source domain.Source, market string) *domain.LiquiditySample {
	return &domain.LiquiditySample{
		CapturedAt:    1700000000,
		Source:        source,
		MarketAddress: market,
		ReserveX:      decimal.NewFromInt(100),
		ReserveY:      decimal.NewFromInt(200),
		Extra:         domain.EmptyExtra,
	}
}

func TestRun_PacesCycleStarts(t *testing.T) {
	clock := newFakeClock()
	store := memory.NewSampleStore()

	// Each cycle's work takes 1200ms of fake time.
	adapter := &fakeAdapter{
		source:  domain.SourceOrca,
		samples: []*domain.LiquiditySample{sampleFor(domain.SourceOrca, "pool")},
		onFetch: func() { clock.Advance(1200 * time.Millisecond) },
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	clock.onSleep = func(sleepCount int) {
		if sleepCount == 2 {
			cancel()
		}
	}

	col := New(Options{
		Adapters: []adapters.SourceAdapter{adapter},
		Store:    store,
		Interval: 5 * time.Second,
		Clock:    clock,
		Logger:   quietLogger(),
	})

	err := col.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// Sleep fills the interval remainder, not the full interval.
	require.Len(t, clock.sleeps, 2)
	assert.Equal(t, 3800*time.Millisecond, clock.sleeps[0])
	assert.Equal(t, 3800*time.Millisecond, clock.sleeps[1])
	assert.Equal(t, 2, adapter.fetches)
}

func TestRun_SlowCycleStartsNextImmediately(t *testing.T) {
	clock := newFakeClock()
	store := memory.NewSampleStore()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Work exceeds the interval; the second fetch stops the loop.
	adapter := &fakeAdapter{
		source:  domain.SourceOrca,
		samples: []*domain.LiquiditySample{sampleFor(domain.SourceOrca, "pool")},
	}
	adapter.onFetch = func() {
		clock.Advance(6 * time.Second)
		if adapter.fetches == 2 {
			cancel()
		}
	}

	col := New(Options{
		Adapters: []adapters.SourceAdapter{adapter},
		Store:    store,
		Interval: 5 * time.Second,
		Clock:    clock,
		Logger:   quietLogger(),
	})

	err := col.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	// No pacing sleep and no catch-up burst: cycles just run back to back.
	assert.Empty(t, clock.sleeps)
	assert.Equal(t, 2, adapter.fetches)
}

func TestRunCycle_IsolatesFetchFailures(t *testing.T) {
	store := memory.NewSampleStore()

	broken := &fakeAdapter{
		source: domain.SourceBonkSwap,
		err:    &adapters.FetchError{Source: domain.SourceBonkSwap, Market: "pool", Err: errors.New("account not found")},
	}
	healthyA := &fakeAdapter{
		source:  domain.SourceDooar,
		samples: []*domain.LiquiditySample{sampleFor(domain.SourceDooar, "")},
	}
	healthyB := &fakeAdapter{
		source: domain.SourceOrca,
		samples: []*domain.LiquiditySample{
			sampleFor(domain.SourceOrca, "pool1"),
			sampleFor(domain.SourceOrca, "pool2"),
		},
	}

	col := New(Options{
		Adapters: []adapters.SourceAdapter{broken, healthyA, healthyB},
		Store:    store,
		Clock:    newFakeClock(),
		Logger:   quietLogger(),
	})

	col.RunCycle(context.Background())

	// The broken adapter loses its cycle; the others commit normally.
	assert.Equal(t, 1, broken.fetches)
	assert.Equal(t, 1, healthyA.fetches)
	assert.Equal(t, 1, healthyB.fetches)
	assert.Equal(t, 2, store.Commits())
	assert.Equal(t, 3, store.Len())
}

func TestRunCycle_IsolatesCommitFailures(t *testing.T) {
	store := &failingStore{}

	a := &fakeAdapter{
		source:  domain.SourceDooar,
		samples: []*domain.LiquiditySample{sampleFor(domain.SourceDooar, "")},
	}
	b := &fakeAdapter{
		source:  domain.SourceRaydium,
		samples: []*domain.LiquiditySample{sampleFor(domain.SourceRaydium, "pool")},
	}

	col := New(Options{
		Adapters: []adapters.SourceAdapter{a, b},
		Store:    store,
		Clock:    newFakeClock(),
		Logger:   quietLogger(),
	})

	col.RunCycle(context.Background())

	// A failing store does not stop later adapters from being attempted.
	assert.Equal(t, 1, a.fetches)
	assert.Equal(t, 1, b.fetches)
	assert.Equal(t, 2, store.attempts)
}

func TestRunCycle_EmptyBatchIsSuccess(t *testing.T) {
	store := memory.NewSampleStore()

	empty := &fakeAdapter{source: domain.SourceFluxBeam}

	col := New(Options{
		Adapters: []adapters.SourceAdapter{empty},
		Store:    store,
		Clock:    newFakeClock(),
		Logger:   quietLogger(),
	})

	col.RunCycle(context.Background())

	assert.Equal(t, 1, empty.fetches)
	assert.Equal(t, 0, store.Commits())
	assert.Equal(t, 0, store.Len())
}

func TestRunCycle_StopsOnCancelledContext(t *testing.T) {
	store := memory.NewSampleStore()

	a := &fakeAdapter{
		source:  domain.SourceDooar,
		samples: []*domain.LiquiditySample{sampleFor(domain.SourceDooar, "")},
	}
	b := &fakeAdapter{
		source:  domain.SourceOrca,
		samples: []*domain.LiquiditySample{sampleFor(domain.SourceOrca, "pool")},
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.onFetch = cancel

	col := New(Options{
		Adapters: []adapters.SourceAdapter{a, b},
		Store:    store,
		Clock:    newFakeClock(),
		Logger:   quietLogger(),
	})

	col.RunCycle(ctx)

	// Cancellation between adapters cuts the cycle short.
	assert.Equal(t, 1, a.fetches)
	assert.Equal(t, 0, b.fetches)
}

func TestRunCycle_CancelledCycleNotCounted(t *testing.T) {
	metrics := observability.NewMetrics("")

	ctx, cancel := context.WithCancel(context.Background())
	adapter := &fakeAdapter{
		source:  domain.SourceOrca,
		samples: []*domain.LiquiditySample{sampleFor(domain.SourceOrca, "pool")},
	}
	adapter.onFetch = cancel

	col := New(Options{
		Adapters: []adapters.SourceAdapter{adapter},
		Store:    memory.NewSampleStore(),
		Clock:    newFakeClock(),
		Logger:   quietLogger(),
		Metrics:  metrics,
	})

	col.RunCycle(ctx)
	assert.Equal(t, float64(0), testutil.ToFloat64(metrics.CyclesTotal))

	// A full cycle on a fresh context does count.
	col.RunCycle(context.Background())
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.CyclesTotal))
}

func TestNew_Defaults(t *testing.T) {
	col := New(Options{Store: memory.NewSampleStore()})

	assert.Equal(t, DefaultInterval, col.interval)
	assert.NotNil(t, col.clock)
	assert.NotNil(t, col.logger)
}
