package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"solana-liquidity-watch/internal/domain"
	"solana-liquidity-watch/internal/solana"
)

// marketsFile is the YAML shape of a market descriptor file.
type marketsFile struct {
	Markets []domain.MarketDescriptor `yaml:"markets"`
}

// LoadMarkets reads and validates the market descriptor file. Descriptors
// are fixed for the life of the process; validation failures here are fatal
// by design, since a malformed descriptor would otherwise surface as a
// confusing fetch failure every cycle.
//
// The returned warnings flag vault addresses that sit on the ed25519 curve:
// pool vaults are normally program-derived, so an on-curve vault is usually
// a wallet address pasted into the wrong field.
func LoadMarkets(path string) ([]domain.MarketDescriptor, []string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read markets file: %w", err)
	}

	var file marketsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, nil, fmt.Errorf("parse markets file: %w", err)
	}
	if len(file.Markets) == 0 {
		return nil, nil, fmt.Errorf("markets file %s defines no markets", path)
	}

	var warnings []string
	for i, d := range file.Markets {
		if err := validateDescriptor(d); err != nil {
			return nil, nil, fmt.Errorf("market %d (%s): %w", i, d.PairLabel, err)
		}
		for _, vault := range []string{d.TokenXVault, d.TokenYVault} {
			if vault != "" && solana.IsOnCurve(vault) {
				warnings = append(warnings, fmt.Sprintf("%s %s: vault %s is on-curve, expected a program-derived address", d.Source, d.PairLabel, vault))
			}
		}
	}

	return file.Markets, warnings, nil
}

// validateDescriptor checks one descriptor's shape for its protocol.
func validateDescriptor(d domain.MarketDescriptor) error {
	if !d.Source.IsValid() {
		return fmt.Errorf("unknown source %q", d.Source)
	}
	if d.MarketAddress == "" {
		// DOOAR pools predate on-chain market accounts; everything else
		// must name its pool.
		if d.Source != domain.SourceDooar {
			return fmt.Errorf("missing market_address")
		}
	} else if err := solana.ValidateAddress(d.MarketAddress); err != nil {
		return err
	}

	for _, mint := range []string{d.TokenXMint, d.TokenYMint} {
		if mint == "" {
			continue
		}
		if err := solana.ValidateAddress(mint); err != nil {
			return err
		}
	}

	switch d.Source {
	case domain.SourceBonkSwap:
		// Reserves come from the pool account; decimals cannot be recovered
		// from it.
		if d.DecimalsX == nil || d.DecimalsY == nil {
			return fmt.Errorf("BonkSwap markets require decimals_x and decimals_y")
		}
	default:
		if d.TokenXVault == "" || d.TokenYVault == "" {
			return fmt.Errorf("missing token_x_vault/token_y_vault")
		}
		if err := solana.ValidateAddress(d.TokenXVault); err != nil {
			return err
		}
		if err := solana.ValidateAddress(d.TokenYVault); err != nil {
			return err
		}
	}

	return nil
}
