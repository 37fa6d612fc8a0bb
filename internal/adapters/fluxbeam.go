package adapters

import (
	"context"
	"encoding/json"
	"fmt"

	"solana-liquidity-watch/internal/domain"
	"solana-liquidity-watch/internal/solana"
)

// FluxBeam reads FluxBeam token-swap pools. The pool account and both vaults
// are fetched together in one batched call covering every configured market;
// the pool read doubles as an existence check since FluxBeam pools can be
// closed by their creators.
type FluxBeam struct {
	reader solana.AccountReader
	descs  []domain.MarketDescriptor
	now    NowFunc
}

// NewFluxBeam creates a FluxBeam adapter for the given markets.
func NewFluxBeam(reader solana.AccountReader, descs []domain.MarketDescriptor, now NowFunc) *FluxBeam {
	return &FluxBeam{reader: reader, descs: descs, now: now}
}

// Compile-time interface check.
var _ SourceAdapter = (*FluxBeam)(nil)

// Source returns the DEX this adapter reads.
func (a *FluxBeam) Source() domain.Source {
	return domain.SourceFluxBeam
}

// Fetch reads pool account and vault pair for every market in one batch.
func (a *FluxBeam) Fetch(ctx context.Context) ([]*domain.LiquiditySample, error) {
	capturedAt := a.now().Unix()

	if len(a.descs) == 0 {
		return nil, nil
	}

	addresses := make([]string, 0, 3*len(a.descs))
	for _, d := range a.descs {
		addresses = append(addresses, d.MarketAddress, d.TokenXVault, d.TokenYVault)
	}

	infos, err := a.reader.ReadAccounts(ctx, addresses)
	if err != nil {
		return nil, fetchErr(a.Source(), "", err)
	}

	samples := make([]*domain.LiquiditySample, 0, len(a.descs))
	for i, d := range a.descs {
		pool := infos[3*i]
		if pool == nil {
			return nil, fetchErr(a.Source(), d.MarketAddress, fmt.Errorf("pool account not found"))
		}

		x, err := decodeVault(a.Source(), d.MarketAddress, infos[3*i+1], d.TokenXMint)
		if err != nil {
			return nil, err
		}
		y, err := decodeVault(a.Source(), d.MarketAddress, infos[3*i+2], d.TokenYMint)
		if err != nil {
			return nil, err
		}

		sample := vaultSample(capturedAt, d, x, y)
		sample.Extra, err = fluxBeamExtra(pool)
		if err != nil {
			return nil, fetchErr(a.Source(), d.MarketAddress, err)
		}
		samples = append(samples, sample)
	}

	return samples, nil
}

// fluxBeamExtra records which swap program owns the pool account.
func fluxBeamExtra(pool *solana.AccountInfo) (string, error) {
	payload := struct {
		PoolProgram string `json:"pool_program"`
	}{
		PoolProgram: pool.Owner,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal pool extra: %w", err)
	}
	return string(b), nil
}
