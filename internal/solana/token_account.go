package solana

import (
	"encoding/base64"
	"encoding/binary"
	"fmt"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"
)

// TokenProgramID is the SPL Token program.
const TokenProgramID = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"

// splTokenAccountMinLen covers mint(32) | owner(32) | amount(8).
const splTokenAccountMinLen = 72

// TokenAccount is the decoded reserve-relevant portion of an SPL token account.
type TokenAccount struct {
	Mint   string
	Owner  string
	Amount decimal.Decimal // raw base units
}

// DecodeTokenAccount parses base64-encoded SPL token account data.
// Token account layout: mint(32) | owner(32) | amount(8 LE) | ...
//
// The u64 amount is converted to decimal here and nowhere else, so every
// reserve value in the system passes through this one conversion point.
func DecodeTokenAccount(data string) (*TokenAccount, error) {
	decoded, err := base64.StdEncoding.DecodeString(data)
	if err != nil {
		return nil, fmt.Errorf("decode account data: %w", err)
	}

	if len(decoded) < splTokenAccountMinLen {
		return nil, fmt.Errorf("token account data too short: %d bytes", len(decoded))
	}

	amount := binary.LittleEndian.Uint64(decoded[64:72])

	return &TokenAccount{
		Mint:   base58.Encode(decoded[0:32]),
		Owner:  base58.Encode(decoded[32:64]),
		Amount: decimal.NewFromUint64(amount),
	}, nil
}

// ValidateAddress checks that addr is a base58-encoded 32-byte public key.
func ValidateAddress(addr string) error {
	decoded, err := base58.Decode(addr)
	if err != nil {
		return fmt.Errorf("decode address %q: %w", addr, err)
	}
	if len(decoded) != 32 {
		return fmt.Errorf("address %q decodes to %d bytes, want 32", addr, len(decoded))
	}
	return nil
}

// IsOnCurve reports whether addr is a valid ed25519 curve point.
// Program-derived addresses (pool authorities, most vaults) are off-curve;
// an on-curve address configured as a vault is usually a misconfigured
// wallet address.
func IsOnCurve(addr string) bool {
	decoded, err := base58.Decode(addr)
	if err != nil || len(decoded) != 32 {
		return false
	}
	_, err = new(edwards25519.Point).SetBytes(decoded)
	return err == nil
}
