package deposit

import (
	"context"
	"time"

	"github/chapool/go-bridge/internal/wallet"
	"github/chapool/go-bridge/internal/wallet/chain"
	"github/chapool/go-bridge/internal/wallet/sol"
)

const (
	// DefaultBroker routes deposits to the spot sub-account.
	DefaultBroker uint64 = 1

	DefaultApproveTimeout = 5 * time.Minute
	DefaultConfirmTimeout = 5 * time.Minute
)

// Service moves funds from the agent's chain account into the exchange.
type Service interface {
	// Deposit validates the request before any network I/O, then signs, submits and waits
	// for one confirmation. When a submitted transaction fails to confirm the returned Result
	// is non-nil and carries the transaction id together with the error.
	Deposit(ctx context.Context, req *Request) (*wallet.Result, error)
}

// Request is a deposit of Amount of Token on Network.
type Request struct {
	Network chain.Network
	Token   string // symbol or contract/mint address
	Amount  string // decimal string

	// PrivateKey overrides the configured credential for this call only.
	PrivateKey string
}

// Config tunes the chain transaction builders.
type Config struct {
	Broker         uint64
	SolanaOpcode   byte
	ApproveTimeout time.Duration
	ConfirmTimeout time.Duration
	PollInterval   time.Duration // zero keeps the per-chain default
}

func (c Config) withDefaults() Config {
	if c.Broker == 0 {
		c.Broker = DefaultBroker
	}
	if c.SolanaOpcode == 0 {
		c.SolanaOpcode = sol.DefaultDepositOpcode
	}
	if c.ApproveTimeout <= 0 {
		c.ApproveTimeout = DefaultApproveTimeout
	}
	if c.ConfirmTimeout <= 0 {
		c.ConfirmTimeout = DefaultConfirmTimeout
	}
	return c
}
