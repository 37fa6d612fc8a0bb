package adapters

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/shopspring/decimal"

	"solana-liquidity-watch/internal/domain"
	"solana-liquidity-watch/internal/solana"
)

// Orca reads Orca Whirlpool pools. Reserves come from the pool's two token
// vaults; the whirlpool account itself is read alongside them so the sample
// can carry the pool's concentrated-liquidity state in Extra.
type Orca struct {
	reader solana.AccountReader
	descs  []domain.MarketDescriptor
	now    NowFunc
}

// NewOrca creates an Orca adapter for the given markets.
func NewOrca(reader solana.AccountReader, descs []domain.MarketDescriptor, now NowFunc) *Orca {
	return &Orca{reader: reader, descs: descs, now: now}
}

// Compile-time interface check.
var _ SourceAdapter = (*Orca)(nil)

// Source returns the DEX this adapter reads.
func (a *Orca) Source() domain.Source {
	return domain.SourceOrca
}

// Fetch reads whirlpool account plus both vaults for every configured market.
func (a *Orca) Fetch(ctx context.Context) ([]*domain.LiquiditySample, error) {
	capturedAt := a.now().Unix()

	samples := make([]*domain.LiquiditySample, 0, len(a.descs))
	for _, d := range a.descs {
		infos, err := a.reader.ReadAccounts(ctx, []string{d.MarketAddress, d.TokenXVault, d.TokenYVault})
		if err != nil {
			return nil, fetchErr(a.Source(), d.MarketAddress, err)
		}

		if infos[0] == nil {
			return nil, fetchErr(a.Source(), d.MarketAddress, fmt.Errorf("whirlpool account not found"))
		}
		state, err := decodeWhirlpool(infos[0].Data)
		if err != nil {
			return nil, fetchErr(a.Source(), d.MarketAddress, err)
		}

		x, err := decodeVault(a.Source(), d.MarketAddress, infos[1], d.TokenXMint)
		if err != nil {
			return nil, err
		}
		y, err := decodeVault(a.Source(), d.MarketAddress, infos[2], d.TokenYMint)
		if err != nil {
			return nil, err
		}

		sample := vaultSample(capturedAt, d, x, y)
		sample.Extra, err = state.extraJSON()
		if err != nil {
			return nil, fetchErr(a.Source(), d.MarketAddress, err)
		}
		samples = append(samples, sample)
	}

	return samples, nil
}

// whirlpoolMinLen covers the fields decoded below.
const whirlpoolMinLen = 85

// whirlpoolState is the decoded concentrated-liquidity portion of a whirlpool
// account.
type whirlpoolState struct {
	Liquidity        decimal.Decimal
	SqrtPrice        decimal.Decimal
	TickCurrentIndex int32
}

// decodeWhirlpool parses base64-encoded whirlpool account data.
// Layout: discriminator(8) | whirlpools_config(32) | bump(1) | tick_spacing(2) |
// tick_spacing_seed(2) | fee_rate(2) | protocol_fee_rate(2) |
// liquidity(u128 LE) | sqrt_price(u128 LE) | tick_current_index(i32 LE) | ...
func decodeWhirlpool(data string) (*whirlpoolState, error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode whirlpool data: %w", err)
	}
	if len(decoded) < whirlpoolMinLen {
		return nil, fmt.Errorf("whirlpool data too short: %d bytes", len(decoded))
	}

	return &whirlpoolState{
		Liquidity:        u128LE(decoded[49:65]),
		SqrtPrice:        u128LE(decoded[65:81]),
		TickCurrentIndex: int32(binary.LittleEndian.Uint32(decoded[81:85])),
	}, nil
}

// extraJSON serializes the whirlpool state for the sample's Extra column.
func (s *whirlpoolState) extraJSON() (string, error) {
	payload := struct {
		Liquidity string `json:"liquidity"`
		SqrtPrice string `json:"sqrt_price"`
		TickIndex int32  `json:"tick_current_index"`
	}{
		Liquidity: s.Liquidity.String(),
		SqrtPrice: s.SqrtPrice.String(),
		TickIndex: s.TickCurrentIndex,
	}

	b, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal whirlpool extra: %w", err)
	}
	return string(b), nil
}

// u128LE converts a 16-byte little-endian integer to decimal.
func u128LE(b []byte) decimal.Decimal {
	be := make([]byte, 16)
	for i := 0; i < 16; i++ {
		be[i] = b[15-i]
	}
	return decimal.NewFromBigInt(new(big.Int).SetBytes(be), 0)
}
