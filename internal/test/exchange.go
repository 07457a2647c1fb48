package test

import (
	"context"
	"strings"
	"sync"

	"github.com/shopspring/decimal"
	"github/chapool/go-bridge/internal/errs"
	"github/chapool/go-bridge/internal/exchange"
)

// FakeExchange is an in-memory exchange. Market buys fill at Prices and move balances.
type FakeExchange struct {
	mu sync.Mutex

	Balances map[string]decimal.Decimal   // free balance per asset
	Prices   map[string]decimal.Decimal   // keyed by pair, e.g. ETHUSDT
	Symbols  map[string]exchange.SymbolInfo

	// Fees per asset. An asset without an entry has no quote available.
	Fees map[string]decimal.Decimal

	OrderErr    error
	WithdrawErr error
	Clock       int64

	Orders      []string
	Withdrawals []exchange.WithdrawRequest
	FeeQuotes   int
}

func NewFakeExchange() *FakeExchange {
	return &FakeExchange{
		Balances: map[string]decimal.Decimal{},
		Prices:   map[string]decimal.Decimal{},
		Symbols:  map[string]exchange.SymbolInfo{},
		Fees:     map[string]decimal.Decimal{},
		Clock:    1_700_000_000_000,
	}
}

// Credit adds amount to the free balance of asset.
func (f *FakeExchange) Credit(asset string, amount decimal.Decimal) {
	f.mu.Lock()
	defer f.mu.Unlock()
	asset = strings.ToUpper(asset)
	f.Balances[asset] = f.Balances[asset].Add(amount)
}

func (f *FakeExchange) Account(_ context.Context) (*exchange.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	acc := &exchange.Account{CanTrade: true, CanWithdraw: true, CanDeposit: true}
	for asset, free := range f.Balances {
		acc.Balances = append(acc.Balances, exchange.Balance{Asset: asset, Free: free})
	}
	return acc, nil
}

func (f *FakeExchange) TickerPrice(_ context.Context, symbol string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	p, ok := f.Prices[strings.ToUpper(symbol)]
	if !ok {
		return decimal.Zero, errs.API(400, -1121, "Invalid symbol.")
	}
	return p, nil
}

func (f *FakeExchange) ExchangeInfo(_ context.Context) (*exchange.ExchangeInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	info := &exchange.ExchangeInfo{}
	for _, s := range f.Symbols {
		info.Symbols = append(info.Symbols, s)
	}
	return info, nil
}

func (f *FakeExchange) MarketBuyQuote(_ context.Context, symbol string, quoteQty decimal.Decimal, clientOrderID string) (*exchange.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Orders = append(f.Orders, clientOrderID)
	if f.OrderErr != nil {
		return nil, f.OrderErr
	}

	symbol = strings.ToUpper(symbol)
	price, ok := f.Prices[symbol]
	if !ok {
		return nil, errs.API(400, -1121, "Invalid symbol.")
	}

	info, ok := f.Symbols[symbol]
	if !ok {
		return nil, errs.API(400, -1121, "Invalid symbol.")
	}

	if f.Balances[info.QuoteAsset].LessThan(quoteQty) {
		return nil, errs.API(400, -2010, "Account has insufficient balance for requested action.")
	}

	qty := quoteQty.Div(price).Truncate(8)
	f.Balances[info.QuoteAsset] = f.Balances[info.QuoteAsset].Sub(quoteQty)
	f.Balances[info.BaseAsset] = f.Balances[info.BaseAsset].Add(qty)

	return &exchange.Order{
		Symbol:              symbol,
		OrderID:             int64(len(f.Orders)),
		ClientOrderID:       clientOrderID,
		Status:              "FILLED",
		ExecutedQty:         qty,
		CummulativeQuoteQty: quoteQty,
	}, nil
}

func (f *FakeExchange) WithdrawFee(_ context.Context, chainID int64, asset string) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.FeeQuotes++
	fee, ok := f.Fees[strings.ToUpper(asset)]
	if !ok {
		return decimal.Zero, errs.New(errs.KindAPI, "withdraw fee unavailable for %s on chain %d", asset, chainID)
	}
	return fee, nil
}

func (f *FakeExchange) Withdraw(_ context.Context, req *exchange.WithdrawRequest) (*exchange.WithdrawResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.WithdrawErr != nil {
		return nil, f.WithdrawErr
	}

	f.Withdrawals = append(f.Withdrawals, *req)
	return &exchange.WithdrawResult{WithdrawID: "w-1", Hash: "0xfeed"}, nil
}

func (f *FakeExchange) Now() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Clock
}
