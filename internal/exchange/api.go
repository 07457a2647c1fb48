package exchange

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github/chapool/go-bridge/internal/errs"
)

const (
	endpointAccount      = "/api/v1/account"
	endpointTickerPrice  = "/api/v1/ticker/price"
	endpointExchangeInfo = "/api/v1/exchangeInfo"
	endpointOrder        = "/api/v1/order"
	endpointWithdrawFee  = "/api/v1/aster/withdraw/estimateFee"
	endpointWithdraw     = "/api/v1/aster/user-withdraw"
)

// Balance is one asset line of the account.
type Balance struct {
	Asset  string          `json:"asset"`
	Free   decimal.Decimal `json:"free"`
	Locked decimal.Decimal `json:"locked"`
}

// Account is the signed account snapshot.
type Account struct {
	CanTrade    bool      `json:"canTrade"`
	CanWithdraw bool      `json:"canWithdraw"`
	CanDeposit  bool      `json:"canDeposit"`
	UpdateTime  int64     `json:"updateTime"`
	Balances    []Balance `json:"balances"`
}

// Free returns the free balance of an asset, zero when absent.
func (a *Account) Free(asset string) decimal.Decimal {
	for _, b := range a.Balances {
		if strings.EqualFold(b.Asset, asset) {
			return b.Free
		}
	}
	return decimal.Zero
}

// Account fetches the account balances.
func (c *Client) Account(ctx context.Context) (*Account, error) {
	var acc Account
	if err := c.DoJSON(ctx, &Request{Method: http.MethodGet, Endpoint: endpointAccount, Signed: true}, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

type tickerPrice struct {
	Symbol string          `json:"symbol"`
	Price  decimal.Decimal `json:"price"`
}

// TickerPrice returns the last price of a trading pair such as ETHUSDT.
func (c *Client) TickerPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	var tp tickerPrice
	err := c.DoJSON(ctx, &Request{
		Method:   http.MethodGet,
		Endpoint: endpointTickerPrice,
		Params:   map[string]string{"symbol": strings.ToUpper(symbol)},
	}, &tp)
	if err != nil {
		return decimal.Zero, err
	}
	return tp.Price, nil
}

// SymbolFilter is one trading rule of a symbol; only the fields the bridge reads are mapped.
type SymbolFilter struct {
	FilterType  string          `json:"filterType"`
	StepSize    decimal.Decimal `json:"stepSize"`
	MinQty      decimal.Decimal `json:"minQty"`
	MinNotional decimal.Decimal `json:"minNotional"`
}

type SymbolInfo struct {
	Symbol     string         `json:"symbol"`
	Status     string         `json:"status"`
	BaseAsset  string         `json:"baseAsset"`
	QuoteAsset string         `json:"quoteAsset"`
	Filters    []SymbolFilter `json:"filters"`
}

// StepSize returns the LOT_SIZE step, zero when the symbol has none.
func (s *SymbolInfo) StepSize() decimal.Decimal {
	for _, f := range s.Filters {
		if f.FilterType == "LOT_SIZE" {
			return f.StepSize
		}
	}
	return decimal.Zero
}

type ExchangeInfo struct {
	Timezone   string       `json:"timezone"`
	ServerTime int64        `json:"serverTime"`
	Symbols    []SymbolInfo `json:"symbols"`
}

// Symbol finds a trading pair, case-insensitively.
func (e *ExchangeInfo) Symbol(symbol string) (*SymbolInfo, bool) {
	for i := range e.Symbols {
		if strings.EqualFold(e.Symbols[i].Symbol, symbol) {
			return &e.Symbols[i], true
		}
	}
	return nil, false
}

// ExchangeInfo fetches trading rules for all symbols.
func (c *Client) ExchangeInfo(ctx context.Context) (*ExchangeInfo, error) {
	var info ExchangeInfo
	if err := c.DoJSON(ctx, &Request{Method: http.MethodGet, Endpoint: endpointExchangeInfo}, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

type Fill struct {
	Price           decimal.Decimal `json:"price"`
	Qty             decimal.Decimal `json:"qty"`
	Commission      decimal.Decimal `json:"commission"`
	CommissionAsset string          `json:"commissionAsset"`
}

// Order is the placement result of a market order.
type Order struct {
	Symbol              string          `json:"symbol"`
	OrderID             int64           `json:"orderId"`
	ClientOrderID       string          `json:"clientOrderId"`
	Status              string          `json:"status"`
	ExecutedQty         decimal.Decimal `json:"executedQty"`
	CummulativeQuoteQty decimal.Decimal `json:"cummulativeQuoteQty"`
	Fills               []Fill          `json:"fills"`
}

// BoughtQuantity is the executed base quantity, falling back to the sum of fills.
func (o *Order) BoughtQuantity() decimal.Decimal {
	if o.ExecutedQty.IsPositive() {
		return o.ExecutedQty
	}
	total := decimal.Zero
	for _, f := range o.Fills {
		total = total.Add(f.Qty)
	}
	return total
}

// MarketBuyQuote buys symbol spending quoteQty of the quote asset.
func (c *Client) MarketBuyQuote(ctx context.Context, symbol string, quoteQty decimal.Decimal, clientOrderID string) (*Order, error) {
	if !quoteQty.IsPositive() {
		return nil, errs.Validation("quote quantity must be positive")
	}

	params := map[string]string{
		"symbol":           strings.ToUpper(symbol),
		"side":             "BUY",
		"type":             "MARKET",
		"quoteOrderQty":    quoteQty.String(),
		"newOrderRespType": "FULL",
	}
	if clientOrderID != "" {
		params["newClientOrderId"] = clientOrderID
	}

	var order Order
	if err := c.DoJSON(ctx, &Request{Method: http.MethodPost, Endpoint: endpointOrder, Params: params, Signed: true}, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

type withdrawFee struct {
	GasCost    *decimal.Decimal `json:"gasCost"`
	Fee        *decimal.Decimal `json:"fee"`
	TokenPrice decimal.Decimal  `json:"tokenPrice"`
}

// WithdrawFee quotes the current withdrawal fee. A response without a fee is an error;
// the fee is never assumed to be zero.
func (c *Client) WithdrawFee(ctx context.Context, chainID int64, asset string) (decimal.Decimal, error) {
	var wf withdrawFee
	err := c.DoJSON(ctx, &Request{
		Method:   http.MethodGet,
		Endpoint: endpointWithdrawFee,
		Params: map[string]string{
			"chainId": strconv.FormatInt(chainID, 10),
			"asset":   strings.ToUpper(asset),
		},
	}, &wf)
	if err != nil {
		return decimal.Zero, err
	}

	switch {
	case wf.GasCost != nil && !wf.GasCost.IsNegative():
		return *wf.GasCost, nil
	case wf.Fee != nil && !wf.Fee.IsNegative():
		return *wf.Fee, nil
	default:
		return decimal.Zero, errs.New(errs.KindAPI, "withdraw fee unavailable for %s on chain %d", asset, chainID)
	}
}

// WithdrawRequest is a typed-data authorised withdrawal.
type WithdrawRequest struct {
	ChainID       int64
	Asset         string
	Amount        string
	Fee           string
	Receiver      string
	Nonce         string
	UserSignature string
	Timestamp     int64 // same millisecond value the nonce was derived from
}

type WithdrawResult struct {
	WithdrawID FlexString `json:"withdrawId"`
	Hash       string     `json:"hash"`
}

// FlexString decodes from either a JSON string or a JSON number.
type FlexString string

func (f *FlexString) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	if string(b) == "null" {
		*f = ""
		return nil
	}
	*f = FlexString(b)
	return nil
}

// Withdraw submits a signed withdrawal.
func (c *Client) Withdraw(ctx context.Context, req *WithdrawRequest) (*WithdrawResult, error) {
	params := map[string]string{
		"chainId":       strconv.FormatInt(req.ChainID, 10),
		"asset":         strings.ToUpper(req.Asset),
		"amount":        req.Amount,
		"fee":           req.Fee,
		"receiver":      req.Receiver,
		"nonce":         req.Nonce,
		"userSignature": req.UserSignature,
	}
	if req.Timestamp > 0 {
		params["timestamp"] = strconv.FormatInt(req.Timestamp, 10)
	}

	var res WithdrawResult
	if err := c.DoJSON(ctx, &Request{Method: http.MethodPost, Endpoint: endpointWithdraw, Params: params, Signed: true}, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
