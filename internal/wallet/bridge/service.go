package bridge

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github/chapool/go-bridge/internal/errs"
	"github/chapool/go-bridge/internal/metrics"
	"github/chapool/go-bridge/internal/util"
	"github/chapool/go-bridge/internal/wallet"
	"github/chapool/go-bridge/internal/wallet/chain"
	"github/chapool/go-bridge/internal/wallet/deposit"
	"github/chapool/go-bridge/internal/wallet/signer"
	"github/chapool/go-bridge/internal/wallet/withdraw"
)

type service struct {
	registry    *chain.Registry
	deposits    Depositor
	withdrawals Withdrawer
	exchange    Exchange
	settler     Settler
	metrics     *metrics.Recorder
	now         func() time.Time
}

// NewService creates the swap-and-bridge saga
//
//nolint:ireturn
func NewService(registry *chain.Registry, deposits Depositor, withdrawals Withdrawer, ex Exchange, settler Settler, recorder *metrics.Recorder) Service {
	if settler == nil {
		settler = NewFixedSettler()
	}
	return &service{
		registry:    registry,
		deposits:    deposits,
		withdrawals: withdrawals,
		exchange:    ex,
		settler:     settler,
		metrics:     recorder,
		now:         time.Now,
	}
}

// plan is a request validated on both ends before any funds move.
type plan struct {
	from   *chain.Token
	target *chain.Token
	amount decimal.Decimal
	symbol string
}

func (s *service) SwapAndBridge(ctx context.Context, req *Request) (*Trace, error) {
	trace := &Trace{ID: uuid.NewString()}
	ctx = util.WithLogFields(ctx, map[string]string{"component": "bridge", "trace_id": trace.ID})
	log := util.LogFromContext(ctx)

	p, err := s.validate(req)
	if err != nil {
		// nothing has been committed yet
		return trace, s.fail(ctx, trace, StepDeposit, err)
	}

	log.Info().
		Str("from", string(req.FromNetwork)).
		Str("to", string(req.ToNetwork)).
		Str("pair", p.symbol).
		Str("amount", p.amount.String()).
		Msg("Starting swap and bridge")

	// deposit
	before, err := s.freeBalance(ctx, p.from.Symbol)
	if err != nil {
		return trace, s.fail(ctx, trace, StepDeposit, err)
	}

	dep, err := s.deposits.Deposit(ctx, &deposit.Request{
		Network:    req.FromNetwork,
		Token:      req.FromToken,
		Amount:     p.amount.String(),
		PrivateKey: req.PrivateKey,
	})
	if err != nil {
		return trace, s.fail(ctx, trace, StepDeposit, err)
	}
	s.complete(trace, StepResult{Step: StepDeposit, Deposit: dep})

	// swap
	err = s.settler.Settle(ctx, Settlement{After: StepDeposit, Asset: p.from.Symbol, Before: before, Amount: p.amount})
	if err != nil {
		return trace, s.fail(ctx, trace, StepSwap, err)
	}

	before, err = s.freeBalance(ctx, p.target.Symbol)
	if err != nil {
		return trace, s.fail(ctx, trace, StepSwap, err)
	}

	order, err := s.exchange.MarketBuyQuote(ctx, p.symbol, p.amount, trace.ID)
	if err != nil {
		return trace, s.fail(ctx, trace, StepSwap, err)
	}
	bought := order.BoughtQuantity()
	if !bought.IsPositive() {
		return trace, s.fail(ctx, trace, StepSwap, errs.New(errs.KindAPI, "order %d on %s filled nothing", order.OrderID, p.symbol))
	}
	s.complete(trace, StepResult{Step: StepSwap, Order: order})

	// withdraw
	err = s.settler.Settle(ctx, Settlement{After: StepSwap, Asset: p.target.Symbol, Before: before, Amount: bought})
	if err != nil {
		return trace, s.fail(ctx, trace, StepWithdraw, err)
	}

	qty, err := s.withdrawable(ctx, p.symbol, bought)
	if err != nil {
		return trace, s.fail(ctx, trace, StepWithdraw, err)
	}

	wd, err := s.withdrawals.Withdraw(ctx, &withdraw.Request{
		Network:  req.ToNetwork,
		Token:    req.TargetToken,
		Amount:   qty.String(),
		Receiver: req.ToAddress,
	})
	if err != nil {
		return trace, s.fail(ctx, trace, StepWithdraw, err)
	}
	s.complete(trace, StepResult{Step: StepWithdraw, Withdrawal: wd})

	log.Info().Strs("steps", trace.Completed()).Msg("Swap and bridge completed")

	return trace, nil
}

func (s *service) validate(req *Request) (*plan, error) {
	amount, err := wallet.ValidateAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	fromNet, err := s.registry.Network(string(req.FromNetwork))
	if err != nil {
		return nil, err
	}
	from, err := s.registry.ResolveToken(fromNet.Name, req.FromToken)
	if err != nil {
		return nil, err
	}

	toNet, err := s.registry.Network(string(req.ToNetwork))
	if err != nil {
		return nil, err
	}
	if !toNet.IsEVM() {
		return nil, errs.New(errs.KindUnsupportedNetwork, "withdrawals to %s are not supported", toNet.Name)
	}
	target, err := s.registry.ResolveToken(toNet.Name, req.TargetToken)
	if err != nil {
		return nil, err
	}

	// the market buy and the withdrawal name assets by exchange symbol
	for _, t := range []*chain.Token{from, target} {
		if !t.IsRegistered() {
			return nil, errs.New(errs.KindUnsupportedToken, "token %s is not registered on %s", t.Address, t.Network)
		}
	}

	if strings.TrimSpace(req.ToAddress) != "" {
		if _, err := signer.NormalizeAddress(req.ToAddress); err != nil {
			return nil, err
		}
	}

	return &plan{
		from:   from,
		target: target,
		amount: amount,
		symbol: strings.ToUpper(target.Symbol + from.Symbol),
	}, nil
}

func (s *service) freeBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	acc, err := s.exchange.Account(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return acc.Free(asset), nil
}

// withdrawable rounds the bought quantity down to the symbol's lot step.
func (s *service) withdrawable(ctx context.Context, symbol string, bought decimal.Decimal) (decimal.Decimal, error) {
	info, err := s.exchange.ExchangeInfo(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	qty := bought
	if sym, ok := info.Symbol(symbol); ok {
		if step := sym.StepSize(); step.IsPositive() {
			qty = bought.Div(step).Floor().Mul(step)
		}
	}

	if !qty.IsPositive() {
		return decimal.Zero, errs.Validation("bought quantity %s rounds down to zero", bought)
	}

	return qty, nil
}

func (s *service) complete(trace *Trace, r StepResult) {
	r.CompletedAt = s.now()
	trace.add(r)
	s.metrics.ObserveStep(r.Step, nil)
}

func (s *service) fail(ctx context.Context, trace *Trace, step string, cause error) error {
	trace.FailedAt = step
	s.metrics.ObserveStep(step, cause)

	util.LogFromContext(ctx).Error().
		Err(cause).
		Str("failed_at", step).
		Strs("committed", trace.Completed()).
		Msg("Swap and bridge halted, committed steps are not reversed")

	return &StepError{Step: step, Trace: trace, Cause: cause}
}
