package wallet

import (
	"github/chapool/go-bridge/internal/wallet/chain"
	"github/chapool/go-bridge/internal/wallet/credential"
)

// Status is the lifecycle position of one on-chain call.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusConfirmed Status = "confirmed"
	StatusFailed    Status = "failed"
)

// Result is produced once per on-chain call and never modified afterwards.
type Result struct {
	Network  chain.Network `json:"network"`
	TxID     string        `json:"txId"`
	Block    uint64        `json:"block,omitempty"` // block number (EVM) or slot (Solana)
	Status   Status        `json:"status"`
	Explorer string        `json:"explorer,omitempty"`

	// Approval is the allowance transaction that preceded an ERC20 deposit, if one was needed.
	Approval *Result `json:"approval,omitempty"`
}

// NewResult builds a Result with the network's explorer link.
func NewResult(network *chain.NetworkInfo, txID string, block uint64, status Status) *Result {
	return &Result{
		Network:  network.Name,
		TxID:     txID,
		Block:    block,
		Status:   status,
		Explorer: network.ExplorerURL(txID),
	}
}

// Account is the address the agent controls on one network.
type Account struct {
	Network chain.Network   `json:"network"`
	Address string          `json:"address"`
	Tier    credential.Tier `json:"source"`
}
