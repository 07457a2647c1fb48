package signer

import "math/big"

// SignEVMRequest represents a request to sign an EVM transaction
type SignEVMRequest struct {
	ChainID              int64    // Chain ID (1 for Ethereum mainnet, 42161 for Arbitrum, 56 for BSC)
	To                   string   // Recipient or contract address (hex string with 0x prefix)
	Value                *big.Int // Amount in wei, nil for zero
	GasLimit             uint64
	MaxFeePerGas         *big.Int
	MaxPriorityFeePerGas *big.Int
	Nonce                uint64
	Data                 []byte // Transaction data (for contract calls)
}

// WithdrawAction is the typed-data message authorising an exchange withdrawal.
type WithdrawAction struct {
	ChainID     int64    // destination chain, also the domain chain id
	Destination string   // receiver address, checksummed before signing
	Token       string   // asset symbol as the exchange names it
	Amount      string   // decimal string
	Fee         string   // decimal string from a fresh fee quote
	Nonce       *big.Int // uint256, never a float
}
