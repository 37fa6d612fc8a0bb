package solana

import "context"

// AccountReader defines the ledger read capability the collector depends on.
// Implementations resolve current on-chain account state; the per-DEX adapters
// know how to decode it.
type AccountReader interface {
	// ReadAccounts retrieves current state for the given addresses, in order.
	// The result has one entry per requested address; an entry is nil when the
	// account does not exist on chain.
	ReadAccounts(ctx context.Context, addresses []string) ([]*AccountInfo, error)
}

// AccountInfo represents Solana account information.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"` // base64 encoded
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rentEpoch"`
}
