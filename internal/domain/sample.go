package domain

import "github.com/shopspring/decimal"

// Source identifies the DEX protocol a liquidity sample was read from.
type Source string

const (
	SourceOrca     Source = "Orca"
	SourceMeteora  Source = "Meteora"
	SourceRaydium  Source = "Raydium"
	SourceBonkSwap Source = "BonkSwap"
	SourceDooar    Source = "DOOAR"
	SourceFluxBeam Source = "FluxBeam"
)

// String returns the string representation of Source.
func (s Source) String() string {
	return string(s)
}

// IsValid checks if the source is a known DEX.
func (s Source) IsValid() bool {
	switch s {
	case SourceOrca, SourceMeteora, SourceRaydium, SourceBonkSwap, SourceDooar, SourceFluxBeam:
		return true
	}
	return false
}

// LiquiditySample is one observation of a pool's reserves at a point in time.
// Corresponds to a row in the append-only amm_liquidity table.
// Reserves are raw base units; DecimalsX/DecimalsY carry the precision needed
// to interpret them.
type LiquiditySample struct {
	ID            int64           // BIGSERIAL primary key (zero until stored)
	CapturedAt    int64           // Unix timestamp (seconds), one per adapter invocation
	Source        Source          // originating DEX
	MarketAddress string          // on-chain pool/market address
	PairLabel     string          // optional human-readable market name
	ReserveX      decimal.Decimal // base units of token X held by the pool
	ReserveY      decimal.Decimal // base units of token Y held by the pool
	DecimalsX     *int16          // decimal precision for ReserveX, nil when unknown
	DecimalsY     *int16          // decimal precision for ReserveY, nil when unknown
	TokenXAddress string          // optional mint address of token X
	TokenYAddress string          // optional mint address of token Y
	Extra         string          // protocol-specific JSON payload, "{}" when unused
	CreatedAt     int64           // record creation timestamp (zero until stored)
}

// EmptyExtra is the Extra value for samples with no protocol-specific payload.
const EmptyExtra = "{}"

// Decimals returns a *int16 for embedding a known precision in a sample.
func Decimals(d int16) *int16 {
	return &d
}
