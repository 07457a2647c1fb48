package bridge

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github/chapool/go-bridge/internal/errs"
	"github/chapool/go-bridge/internal/exchange"
	"github/chapool/go-bridge/internal/util"
)

const (
	DefaultDepositSettleDelay = 5 * time.Second
	DefaultSwapSettleDelay    = 3 * time.Second

	DefaultSettlePollInterval = 3 * time.Second
	DefaultSettleTimeout      = 10 * time.Minute
)

// Settlement describes the exchange balance expected after a step.
type Settlement struct {
	After  string          // completed step
	Asset  string          // asset credited by the step
	Before decimal.Decimal // free balance before the step
	Amount decimal.Decimal // amount the step credits
}

// Target is the free balance at which the step counts as settled.
func (s Settlement) Target() decimal.Decimal {
	return s.Before.Add(s.Amount)
}

// Settler blocks until the exchange ledger reflects a completed step.
type Settler interface {
	Settle(ctx context.Context, s Settlement) error
}

// FixedSettler waits a fixed delay per step without looking at the ledger.
type FixedSettler struct {
	AfterDeposit time.Duration
	AfterSwap    time.Duration
}

func NewFixedSettler() *FixedSettler {
	return &FixedSettler{AfterDeposit: DefaultDepositSettleDelay, AfterSwap: DefaultSwapSettleDelay}
}

func (f *FixedSettler) Settle(ctx context.Context, s Settlement) error {
	delay := f.AfterSwap
	if s.After == StepDeposit {
		delay = f.AfterDeposit
	}
	if delay <= 0 {
		return nil
	}

	util.LogFromContext(ctx).Debug().Str("after", s.After).Dur("delay", delay).Msg("Waiting for exchange to settle")

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// AccountReader reads the exchange account.
type AccountReader interface {
	Account(ctx context.Context) (*exchange.Account, error)
}

// PollSettler polls the exchange account until the expected free balance is visible.
// Running out of time halts the saga.
type PollSettler struct {
	Exchange AccountReader
	Interval time.Duration
	Timeout  time.Duration
}

func NewPollSettler(ex AccountReader, interval, timeout time.Duration) *PollSettler {
	if interval <= 0 {
		interval = DefaultSettlePollInterval
	}
	if timeout <= 0 {
		timeout = DefaultSettleTimeout
	}
	return &PollSettler{Exchange: ex, Interval: interval, Timeout: timeout}
}

func (p *PollSettler) Settle(ctx context.Context, s Settlement) error {
	log := util.LogFromContext(ctx)
	target := s.Target()

	localCtx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		acc, err := p.Exchange.Account(localCtx)
		if err != nil && localCtx.Err() == nil {
			return err
		}

		if err == nil {
			free := acc.Free(s.Asset)
			if free.GreaterThanOrEqual(target) {
				log.Debug().Str("after", s.After).Str("asset", s.Asset).Str("free", free.String()).Msg("Exchange settled")
				return nil
			}
			log.Debug().Str("asset", s.Asset).Str("free", free.String()).Str("target", target.String()).Msg("Waiting for exchange balance")
		}

		select {
		case <-localCtx.Done():
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return errs.New(errs.KindSettlement, "%s balance did not reach %s within %s after %s", s.Asset, target, p.Timeout, s.After)
		case <-ticker.C:
		}
	}
}
