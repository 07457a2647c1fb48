package balance

import (
	"context"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github/chapool/go-bridge/internal/errs"
	"github/chapool/go-bridge/internal/exchange"
	"github/chapool/go-bridge/internal/util"
	"github/chapool/go-bridge/internal/wallet"
	"github/chapool/go-bridge/internal/wallet/chain"
	"github/chapool/go-bridge/internal/wallet/evm"
	"golang.org/x/sync/errgroup"
)

const defaultQuoteAsset = "USDT"

type service struct {
	registry *chain.Registry
	clients  *wallet.Clients
	accounts wallet.Service
	exchange Exchange
}

// NewService creates the balance query service
//
//nolint:ireturn
func NewService(registry *chain.Registry, clients *wallet.Clients, accounts wallet.Service, ex Exchange) Service {
	return &service{
		registry: registry,
		clients:  clients,
		accounts: accounts,
		exchange: ex,
	}
}

func (s *service) ChainBalance(ctx context.Context, network chain.Network, tokenRef string, owner string) (*TokenBalance, error) {
	info, err := s.registry.Network(string(network))
	if err != nil {
		return nil, err
	}

	token, err := s.registry.ResolveToken(info.Name, tokenRef)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(owner) == "" {
		acc, err := s.accounts.Account(ctx, info.Name, "")
		if err != nil {
			return nil, err
		}
		owner = acc.Address
	}

	util.LogFromContext(ctx).Debug().
		Str("network", string(info.Name)).
		Str("token", token.Symbol).
		Str("owner", owner).
		Msg("Reading chain balance")

	if info.IsEVM() {
		return s.evmBalance(ctx, info, token, owner)
	}

	return s.solanaBalance(ctx, info, token, owner)
}

func (s *service) evmBalance(ctx context.Context, info *chain.NetworkInfo, token *chain.Token, owner string) (*TokenBalance, error) {
	if !common.IsHexAddress(owner) {
		return nil, errs.New(errs.KindInvalidAddress, "%q is not an EVM address", owner)
	}
	ownerAddr := common.HexToAddress(owner)

	client, err := s.clients.EVMClient(info.Name)
	if err != nil {
		return nil, err
	}

	result := &TokenBalance{Network: info.Name, Owner: ownerAddr.Hex(), Symbol: token.Symbol, Token: token.Address}

	if token.IsNative() {
		raw, err := client.BalanceAt(ctx, ownerAddr)
		if err != nil {
			return nil, errs.Wrap(errs.KindNetworkTransport, err, "failed to read %s balance", info.NativeSymbol)
		}
		result.Raw = raw
		result.Decimals = info.NativeDecimals
		result.Amount = wallet.FromBaseUnits(raw, info.NativeDecimals)
		return result, nil
	}

	contract := common.HexToAddress(token.Address)

	var (
		raw      *big.Int
		decimals uint8
		symbol   string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		raw, err = evm.TokenBalance(gctx, client, contract, ownerAddr)
		return errors.Wrap(err, "balanceOf")
	})
	g.Go(func() error {
		var err error
		decimals, err = evm.TokenDecimals(gctx, client, contract)
		return errors.Wrap(err, "decimals")
	})
	g.Go(func() error {
		// some tokens return bytes32 or nothing for symbol(); the registry symbol is kept then
		sym, err := evm.TokenSymbol(gctx, client, contract)
		if err == nil && sym != "" {
			symbol = sym
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, errs.Wrap(errs.KindNetworkTransport, err, "failed to read %s balance on %s", token.Symbol, info.Name)
	}

	if symbol != "" {
		result.Symbol = symbol
	}
	result.Raw = raw
	result.Decimals = int32(decimals)
	result.Amount = wallet.FromBaseUnits(raw, int32(decimals))

	return result, nil
}

func (s *service) solanaBalance(ctx context.Context, info *chain.NetworkInfo, token *chain.Token, owner string) (*TokenBalance, error) {
	ownerKey, err := solana.PublicKeyFromBase58(owner)
	if err != nil {
		return nil, errs.Wrap(errs.KindInvalidAddress, err, "%q is not a Solana address", owner)
	}

	client, err := s.clients.SolanaRPC()
	if err != nil {
		return nil, err
	}

	result := &TokenBalance{Network: info.Name, Owner: ownerKey.String(), Symbol: token.Symbol, Token: token.Address}

	if token.IsNative() {
		lamports, err := client.Balance(ctx, ownerKey)
		if err != nil {
			return nil, errs.Wrap(errs.KindNetworkTransport, err, "failed to read SOL balance")
		}
		result.Raw = new(big.Int).SetUint64(lamports)
		result.Decimals = info.NativeDecimals
		result.Amount = wallet.FromBaseUnits(result.Raw, info.NativeDecimals)
		return result, nil
	}

	mint, err := solana.PublicKeyFromBase58(token.Address)
	if err != nil {
		return nil, errs.Wrap(errs.KindUnsupportedToken, err, "invalid mint for %s", token.Symbol)
	}

	amount, err := client.TokenBalance(ctx, ownerKey, mint)
	if err != nil {
		return nil, errs.Wrap(errs.KindNetworkTransport, err, "failed to read %s token accounts", token.Symbol)
	}

	// no token account is a zero balance, not an error
	if amount == nil {
		result.Raw = new(big.Int)
		result.Amount = decimal.Zero
		return result, nil
	}

	result.Raw = amount.Amount
	result.Decimals = int32(amount.Decimals)
	result.Amount = wallet.FromBaseUnits(amount.Amount, int32(amount.Decimals))

	return result, nil
}

func (s *service) ExchangeBalances(ctx context.Context) ([]exchange.Balance, error) {
	acc, err := s.exchange.Account(ctx)
	if err != nil {
		return nil, err
	}

	balances := make([]exchange.Balance, 0, len(acc.Balances))
	for _, b := range acc.Balances {
		if b.Free.IsZero() && b.Locked.IsZero() {
			continue
		}
		balances = append(balances, b)
	}

	return balances, nil
}

func (s *service) ExchangeBalance(ctx context.Context, asset string) (decimal.Decimal, error) {
	acc, err := s.exchange.Account(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return acc.Free(asset), nil
}

func (s *service) Price(ctx context.Context, base, quote string) (*Price, error) {
	base = strings.ToUpper(strings.TrimSpace(base))
	quote = strings.ToUpper(strings.TrimSpace(quote))
	if quote == "" {
		quote = defaultQuoteAsset
	}
	if base == "" || !isAlnum(base) || !isAlnum(quote) {
		return nil, errs.Validation("malformed symbol %q/%q", base, quote)
	}

	symbol := base + quote
	price, err := s.exchange.TickerPrice(ctx, symbol)
	if err != nil {
		return nil, err
	}

	return &Price{Symbol: symbol, Price: price}, nil
}

func isAlnum(s string) bool {
	for _, r := range s {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
