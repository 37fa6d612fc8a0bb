package adapters

import (
	"context"

	"solana-liquidity-watch/internal/domain"
	"solana-liquidity-watch/internal/solana"
)

// Meteora reads Meteora dynamic AMM pools. Each pool keeps its reserves in a
// pair of SPL token vaults, so reserve amounts and mints come from one batched
// vault read covering every configured market.
type Meteora struct {
	reader solana.AccountReader
	descs  []domain.MarketDescriptor
	now    NowFunc
}

// NewMeteora creates a Meteora adapter for the given markets.
func NewMeteora(reader solana.AccountReader, descs []domain.MarketDescriptor, now NowFunc) *Meteora {
	return &Meteora{reader: reader, descs: descs, now: now}
}

// Compile-time interface check.
var _ SourceAdapter = (*Meteora)(nil)

// Source returns the DEX this adapter reads.
func (a *Meteora) Source() domain.Source {
	return domain.SourceMeteora
}

// Fetch reads every configured market's vault pair in one batched call.
func (a *Meteora) Fetch(ctx context.Context) ([]*domain.LiquiditySample, error) {
	capturedAt := a.now().Unix()

	if len(a.descs) == 0 {
		return nil, nil
	}

	addresses := make([]string, 0, 2*len(a.descs))
	for _, d := range a.descs {
		addresses = append(addresses, d.TokenXVault, d.TokenYVault)
	}

	infos, err := a.reader.ReadAccounts(ctx, addresses)
	if err != nil {
		return nil, fetchErr(a.Source(), "", err)
	}

	samples := make([]*domain.LiquiditySample, 0, len(a.descs))
	for i, d := range a.descs {
		x, err := decodeVault(a.Source(), d.MarketAddress, infos[2*i], d.TokenXMint)
		if err != nil {
			return nil, err
		}
		y, err := decodeVault(a.Source(), d.MarketAddress, infos[2*i+1], d.TokenYMint)
		if err != nil {
			return nil, err
		}

		samples = append(samples, vaultSample(capturedAt, d, x, y))
	}

	return samples, nil
}
