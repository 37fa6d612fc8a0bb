package adapters

import (
	"context"

	"solana-liquidity-watch/internal/domain"
	"solana-liquidity-watch/internal/solana"
)

// Dooar reads DOOAR pools. Each market is a pair of SPL token vault accounts;
// reserve amounts and mints come straight from the vault data.
type Dooar struct {
	reader solana.AccountReader
	descs  []domain.MarketDescriptor
	now    NowFunc
}

// NewDooar creates a DOOAR adapter for the given markets.
func NewDooar(reader solana.AccountReader, descs []domain.MarketDescriptor, now NowFunc) *Dooar {
	return &Dooar{reader: reader, descs: descs, now: now}
}

// Compile-time interface check.
var _ SourceAdapter = (*Dooar)(nil)

// Source returns the DEX this adapter reads.
func (a *Dooar) Source() domain.Source {
	return domain.SourceDooar
}

// Fetch reads both vaults of every configured market, one market at a time.
func (a *Dooar) Fetch(ctx context.Context) ([]*domain.LiquiditySample, error) {
	capturedAt := a.now().Unix()

	samples := make([]*domain.LiquiditySample, 0, len(a.descs))
	for _, d := range a.descs {
		infos, err := a.reader.ReadAccounts(ctx, []string{d.TokenXVault, d.TokenYVault})
		if err != nil {
			return nil, fetchErr(a.Source(), d.MarketAddress, err)
		}

		x, err := decodeVault(a.Source(), d.MarketAddress, infos[0], d.TokenXMint)
		if err != nil {
			return nil, err
		}
		y, err := decodeVault(a.Source(), d.MarketAddress, infos[1], d.TokenYMint)
		if err != nil {
			return nil, err
		}

		samples = append(samples, vaultSample(capturedAt, d, x, y))
	}

	return samples, nil
}
