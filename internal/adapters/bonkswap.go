package adapters

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"

	"solana-liquidity-watch/internal/domain"
	"solana-liquidity-watch/internal/solana"
)

// BonkSwap reads BonkSwap pools. Unlike the vault-style DEXes, both reserves
// are embedded in the pool account itself, so one account read per market is
// enough. Token decimals cannot be recovered from the pool account and must
// come from the descriptor.
type BonkSwap struct {
	reader solana.AccountReader
	descs  []domain.MarketDescriptor
	now    NowFunc
}

// NewBonkSwap creates a BonkSwap adapter for the given markets.
func NewBonkSwap(reader solana.AccountReader, descs []domain.MarketDescriptor, now NowFunc) *BonkSwap {
	return &BonkSwap{reader: reader, descs: descs, now: now}
}

// Compile-time interface check.
var _ SourceAdapter = (*BonkSwap)(nil)

// Source returns the DEX this adapter reads.
func (a *BonkSwap) Source() domain.Source {
	return domain.SourceBonkSwap
}

// Fetch reads all pool accounts in one batched call.
func (a *BonkSwap) Fetch(ctx context.Context) ([]*domain.LiquiditySample, error) {
	capturedAt := a.now().Unix()

	if len(a.descs) == 0 {
		return nil, nil
	}

	addresses := make([]string, 0, len(a.descs))
	for _, d := range a.descs {
		addresses = append(addresses, d.MarketAddress)
	}

	infos, err := a.reader.ReadAccounts(ctx, addresses)
	if err != nil {
		return nil, fetchErr(a.Source(), "", err)
	}

	samples := make([]*domain.LiquiditySample, 0, len(a.descs))
	for i, d := range a.descs {
		if infos[i] == nil {
			return nil, fetchErr(a.Source(), d.MarketAddress, fmt.Errorf("pool account not found"))
		}

		pool, err := decodeBonkPool(infos[i].Data)
		if err != nil {
			return nil, fetchErr(a.Source(), d.MarketAddress, err)
		}

		samples = append(samples, &domain.LiquiditySample{
			CapturedAt:    capturedAt,
			Source:        d.Source,
			MarketAddress: d.MarketAddress,
			PairLabel:     d.PairLabel,
			ReserveX:      pool.ReserveX,
			ReserveY:      pool.ReserveY,
			DecimalsX:     d.DecimalsX,
			DecimalsY:     d.DecimalsY,
			TokenXAddress: pool.TokenX,
			TokenYAddress: pool.TokenY,
			Extra:         domain.EmptyExtra,
		})
	}

	return samples, nil
}

// bonkPoolMinLen covers the fields decoded below.
const bonkPoolMinLen = 216

// bonkPool is the decoded reserve-relevant portion of a BonkSwap pool account.
type bonkPool struct {
	TokenX   string
	TokenY   string
	ReserveX decimal.Decimal
	ReserveY decimal.Decimal
}

// decodeBonkPool parses base64-encoded BonkSwap pool account data.
// Layout: discriminator(8) | token_x(32) | token_y(32) | pool_x_account(32) |
// pool_y_account(32) | admin(32) | project_owner(32) |
// token_x_reserve(u64 LE) | token_y_reserve(u64 LE) | ...
func decodeBonkPool(data string) (*bonkPool, error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode pool data: %w", err)
	}
	if len(decoded) < bonkPoolMinLen {
		return nil, fmt.Errorf("pool data too short: %d bytes", len(decoded))
	}

	return &bonkPool{
		TokenX:   base58.Encode(decoded[8:40]),
		TokenY:   base58.Encode(decoded[40:72]),
		ReserveX: decimal.NewFromUint64(binary.LittleEndian.Uint64(decoded[200:208])),
		ReserveY: decimal.NewFromUint64(binary.LittleEndian.Uint64(decoded[208:216])),
	}, nil
}
