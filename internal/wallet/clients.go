package wallet

import (
	"github/chapool/go-bridge/internal/errs"
	"github/chapool/go-bridge/internal/wallet/chain"
	"github/chapool/go-bridge/internal/wallet/evm"
	"github/chapool/go-bridge/internal/wallet/sol"
)

// Clients holds the RPC connection of every configured network.
type Clients struct {
	EVM    map[chain.Network]evm.Client
	Solana sol.RPC
}

// EVMClient returns the client of an EVM network.
func (c *Clients) EVMClient(n chain.Network) (evm.Client, error) {
	if c != nil {
		if client, ok := c.EVM[n]; ok && client != nil {
			return client, nil
		}
	}
	return nil, errs.New(errs.KindUnsupportedNetwork, "no RPC endpoint configured for %s", n)
}

// SolanaRPC returns the Solana client.
func (c *Clients) SolanaRPC() (sol.RPC, error) {
	if c == nil || c.Solana == nil {
		return nil, errs.New(errs.KindUnsupportedNetwork, "no RPC endpoint configured for %s", chain.Solana)
	}
	return c.Solana, nil
}
