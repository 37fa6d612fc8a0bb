package domain

// MarketDescriptor is the static configuration for one watched market.
// Descriptors are loaded once at process start and never mutated.
//
// Which addresses are set depends on the protocol: vault-style DEXes (Orca,
// Meteora, Raydium, DOOAR, FluxBeam) name the pool's two SPL token vaults,
// while BonkSwap pools embed both reserves in the pool account itself.
type MarketDescriptor struct {
	Source        Source `yaml:"source"`
	MarketAddress string `yaml:"market_address"`
	PairLabel     string `yaml:"pair"`

	// SPL token vault accounts holding the pool's reserves.
	TokenXVault string `yaml:"token_x_vault,omitempty"`
	TokenYVault string `yaml:"token_y_vault,omitempty"`

	// Optional mint addresses. Vault reads recover these from account data;
	// pool-account reads rely on the descriptor.
	TokenXMint string `yaml:"token_x_mint,omitempty"`
	TokenYMint string `yaml:"token_y_mint,omitempty"`

	// Known decimal precision per side, nil when not configured.
	DecimalsX *int16 `yaml:"decimals_x,omitempty"`
	DecimalsY *int16 `yaml:"decimals_y,omitempty"`
}
