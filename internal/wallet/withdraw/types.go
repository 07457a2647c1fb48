package withdraw

import (
	"context"

	"github.com/shopspring/decimal"
	"github/chapool/go-bridge/internal/exchange"
	"github/chapool/go-bridge/internal/wallet/chain"
)

// Service moves funds from the exchange account to a chain address.
type Service interface {
	// QuoteFee asks the exchange for the current withdrawal fee. Quotes are never cached.
	QuoteFee(ctx context.Context, network chain.Network, token string) (*Quote, error)

	// Withdraw validates the request, quotes a fresh fee, signs the typed-data authorisation
	// and submits it. A missing fee quote aborts the withdrawal.
	Withdraw(ctx context.Context, req *Request) (*Result, error)
}

// Exchange is the subset of the exchange client a withdrawal needs.
type Exchange interface {
	WithdrawFee(ctx context.Context, chainID int64, asset string) (decimal.Decimal, error)
	Withdraw(ctx context.Context, req *exchange.WithdrawRequest) (*exchange.WithdrawResult, error)
	Now() int64
}

// Request is a withdrawal of Amount of Token to Receiver on Network.
type Request struct {
	Network chain.Network
	Token   string
	Amount  string

	// Receiver defaults to the agent's own address on Network.
	Receiver string

	// PrivateKey overrides the configured signing key for this call only.
	PrivateKey string
}

type Quote struct {
	Network chain.Network   `json:"network"`
	ChainID int64           `json:"chainId"`
	Asset   string          `json:"asset"`
	Fee     decimal.Decimal `json:"fee"`
}

// Result is the exchange's acceptance of a withdrawal.
type Result struct {
	WithdrawID string          `json:"withdrawId"`
	Hash       string          `json:"hash,omitempty"`
	Network    chain.Network   `json:"network"`
	Asset      string          `json:"asset"`
	Amount     decimal.Decimal `json:"amount"`
	Fee        decimal.Decimal `json:"fee"`
	Receiver   string          `json:"receiver"`
	Nonce      string          `json:"nonce"`
}
