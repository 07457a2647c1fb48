package balance

import (
	"context"
	"math/big"

	"github.com/shopspring/decimal"
	"github/chapool/go-bridge/internal/exchange"
	"github/chapool/go-bridge/internal/wallet/chain"
)

// Service is the read-only query layer. Nothing here signs or submits.
type Service interface {
	// ChainBalance reads the on-chain balance of token for owner. An empty owner selects
	// the agent's own account on that network.
	ChainBalance(ctx context.Context, network chain.Network, token string, owner string) (*TokenBalance, error)

	// ExchangeBalances lists the non-empty asset balances of the exchange account.
	ExchangeBalances(ctx context.Context) ([]exchange.Balance, error)

	// ExchangeBalance returns the free exchange balance of one asset.
	ExchangeBalance(ctx context.Context, asset string) (decimal.Decimal, error)

	// Price returns the last traded price of base in quote. An empty quote means USDT.
	Price(ctx context.Context, base, quote string) (*Price, error)
}

// Exchange is the subset of the exchange client the query layer reads from.
type Exchange interface {
	Account(ctx context.Context) (*exchange.Account, error)
	TickerPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}

// TokenBalance is one on-chain balance.
type TokenBalance struct {
	Network  chain.Network   `json:"network"`
	Owner    string          `json:"owner"`
	Symbol   string          `json:"symbol"`
	Token    string          `json:"token,omitempty"` // contract or mint, empty for native
	Amount   decimal.Decimal `json:"amount"`
	Raw      *big.Int        `json:"raw"`
	Decimals int32           `json:"decimals"`
}

type Price struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}
