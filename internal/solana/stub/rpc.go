package stub

import (
	"context"

	"solana-liquidity-watch/internal/solana"
)

// AccountReader implements solana.AccountReader for testing.
// Accounts maps address to account state; addresses with no entry resolve to
// nil, matching how the RPC reports missing accounts.
type AccountReader struct {
	Accounts map[string]*solana.AccountInfo

	// Err, when set, fails every read. Simulates an unreachable ledger.
	Err error

	// Reads records every ReadAccounts call for assertions.
	Reads [][]string
}

// NewAccountReader creates a new stub account reader.
func NewAccountReader() *AccountReader {
	return &AccountReader{
		Accounts: make(map[string]*solana.AccountInfo),
	}
}

// ReadAccounts resolves addresses against the stub store.
func (r *AccountReader) ReadAccounts(_ context.Context, addresses []string) ([]*solana.AccountInfo, error) {
	r.Reads = append(r.Reads, append([]string(nil), addresses...))

	if r.Err != nil {
		return nil, r.Err
	}

	infos := make([]*solana.AccountInfo, len(addresses))
	for i, addr := range addresses {
		infos[i] = r.Accounts[addr]
	}
	return infos, nil
}
