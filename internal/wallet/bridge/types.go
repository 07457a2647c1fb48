package bridge

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github/chapool/go-bridge/internal/exchange"
	"github/chapool/go-bridge/internal/wallet"
	"github/chapool/go-bridge/internal/wallet/chain"
	"github/chapool/go-bridge/internal/wallet/deposit"
	"github/chapool/go-bridge/internal/wallet/withdraw"
)

// Step names, reported as FailedAt.
const (
	StepDeposit  = "deposit"
	StepSwap     = "swap"
	StepWithdraw = "withdraw"
)

// Service runs the deposit, market buy, withdraw saga. Steps are strictly sequential and a
// completed step is never reversed.
type Service interface {
	// SwapAndBridge returns the trace of every completed step. On failure the error is a
	// *StepError carrying the same trace and the name of the failed step.
	SwapAndBridge(ctx context.Context, req *Request) (*Trace, error)
}

// Request moves Amount of FromToken on FromNetwork into TargetToken on ToNetwork.
type Request struct {
	FromNetwork chain.Network
	FromToken   string // also the quote asset of the market buy
	Amount      string
	TargetToken string
	ToNetwork   chain.Network
	ToAddress   string // defaults to the agent's own address on ToNetwork

	// PrivateKey overrides the configured deposit key for this call only.
	PrivateKey string
}

type Depositor interface {
	Deposit(ctx context.Context, req *deposit.Request) (*wallet.Result, error)
}

type Withdrawer interface {
	Withdraw(ctx context.Context, req *withdraw.Request) (*withdraw.Result, error)
}

// Exchange is the subset of the exchange client the saga trades and settles against.
type Exchange interface {
	Account(ctx context.Context) (*exchange.Account, error)
	ExchangeInfo(ctx context.Context) (*exchange.ExchangeInfo, error)
	MarketBuyQuote(ctx context.Context, symbol string, quoteQty decimal.Decimal, clientOrderID string) (*exchange.Order, error)
}

// StepResult is one completed step. Exactly one of the payload fields is set.
type StepResult struct {
	Step        string           `json:"step"`
	CompletedAt time.Time        `json:"completedAt"`
	Deposit     *wallet.Result   `json:"deposit,omitempty"`
	Order       *exchange.Order  `json:"order,omitempty"`
	Withdrawal  *withdraw.Result `json:"withdrawal,omitempty"`
}

// Trace is the forensic record of one saga run. It only ever grows.
type Trace struct {
	ID       string       `json:"id"`
	Steps    []StepResult `json:"steps"`
	FailedAt string       `json:"failedAt,omitempty"`
}

func (t *Trace) add(r StepResult) {
	t.Steps = append(t.Steps, r)
}

// Completed lists the names of the completed steps in order.
func (t *Trace) Completed() []string {
	out := make([]string, 0, len(t.Steps))
	for _, s := range t.Steps {
		out = append(out, s.Step)
	}
	return out
}
