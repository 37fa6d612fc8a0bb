// Package adapters normalizes per-DEX on-chain liquidity state into
// domain.LiquiditySample batches. One adapter per protocol; each is
// independent and may fail without affecting the others.
package adapters

import (
	"context"
	"fmt"
	"sort"
	"time"

	"solana-liquidity-watch/internal/domain"
	"solana-liquidity-watch/internal/solana"
)

// SourceAdapter fetches current reserves for a fixed set of markets and
// produces normalized samples. All samples from one Fetch call share a single
// captured-at timestamp taken at call entry.
//
// A failure to resolve any single market aborts the whole call with a
// *FetchError: partial data is worse than a skipped cycle.
type SourceAdapter interface {
	// Source returns the DEX this adapter reads.
	Source() domain.Source

	// Fetch reads current state for every configured market.
	Fetch(ctx context.Context) ([]*domain.LiquiditySample, error)
}

// NowFunc supplies wall-clock time. Injectable for tests.
type NowFunc func() time.Time

// FetchError reports that an adapter could not resolve state for a market.
type FetchError struct {
	Source domain.Source
	Market string // market address, empty when the whole read failed
	Err    error
}

func (e *FetchError) Error() string {
	if e.Market == "" {
		return fmt.Sprintf("%s: fetch: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("%s: market %s: %v", e.Source, e.Market, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// fetchErr wraps err into a *FetchError for the given source and market.
func fetchErr(source domain.Source, market string, err error) *FetchError {
	return &FetchError{Source: source, Market: market, Err: err}
}

// FromDescriptors builds one adapter per source present in descs, each
// configured with that source's descriptors in input order. Adapters are
// returned in a fixed source order so cycles are deterministic.
func FromDescriptors(reader solana.AccountReader, descs []domain.MarketDescriptor, now NowFunc) ([]SourceAdapter, error) {
	if now == nil {
		now = time.Now
	}

	bySource := make(map[domain.Source][]domain.MarketDescriptor)
	for _, d := range descs {
		if !d.Source.IsValid() {
			return nil, fmt.Errorf("unknown source %q for market %s", d.Source, d.MarketAddress)
		}
		bySource[d.Source] = append(bySource[d.Source], d)
	}

	sources := make([]domain.Source, 0, len(bySource))
	for s := range bySource {
		sources = append(sources, s)
	}
	sort.Slice(sources, func(i, j int) bool { return sources[i] < sources[j] })

	out := make([]SourceAdapter, 0, len(sources))
	for _, s := range sources {
		adapter, err := newAdapter(s, reader, bySource[s], now)
		if err != nil {
			return nil, err
		}
		out = append(out, adapter)
	}
	return out, nil
}

// newAdapter constructs the protocol adapter for a source.
func newAdapter(s domain.Source, reader solana.AccountReader, descs []domain.MarketDescriptor, now NowFunc) (SourceAdapter, error) {
	switch s {
	case domain.SourceOrca:
		return NewOrca(reader, descs, now), nil
	case domain.SourceMeteora:
		return NewMeteora(reader, descs, now), nil
	case domain.SourceRaydium:
		return NewRaydium(reader, descs, now), nil
	case domain.SourceBonkSwap:
		return NewBonkSwap(reader, descs, now), nil
	case domain.SourceDooar:
		return NewDooar(reader, descs, now), nil
	case domain.SourceFluxBeam:
		return NewFluxBeam(reader, descs, now), nil
	default:
		return nil, fmt.Errorf("no adapter for source %q", s)
	}
}

// decodeVault decodes an SPL token account fetched for a market and verifies
// it is actually owned by the token program. When the descriptor names the
// expected mint, a mismatch fails the fetch: it means the configured vault
// belongs to a different pool.
func decodeVault(source domain.Source, market string, info *solana.AccountInfo, expectMint string) (*solana.TokenAccount, error) {
	if info == nil {
		return nil, fetchErr(source, market, fmt.Errorf("vault account not found"))
	}
	if info.Owner != solana.TokenProgramID {
		return nil, fetchErr(source, market, fmt.Errorf("vault owned by %s, not the token program", info.Owner))
	}
	acc, err := solana.DecodeTokenAccount(info.Data)
	if err != nil {
		return nil, fetchErr(source, market, err)
	}
	if expectMint != "" && acc.Mint != expectMint {
		return nil, fetchErr(source, market, fmt.Errorf("vault holds mint %s, configured mint is %s", acc.Mint, expectMint))
	}
	return acc, nil
}

// vaultSample builds a sample from a market's two decoded vaults.
func vaultSample(capturedAt int64, d domain.MarketDescriptor, x, y *solana.TokenAccount) *domain.LiquiditySample {
	return &domain.LiquiditySample{
		CapturedAt:    capturedAt,
		Source:        d.Source,
		MarketAddress: d.MarketAddress,
		PairLabel:     d.PairLabel,
		ReserveX:      x.Amount,
		ReserveY:      y.Amount,
		DecimalsX:     d.DecimalsX,
		DecimalsY:     d.DecimalsY,
		TokenXAddress: x.Mint,
		TokenYAddress: y.Mint,
		Extra:         domain.EmptyExtra,
	}
}
