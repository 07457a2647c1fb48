package deposit

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github/chapool/go-bridge/internal/errs"
	"github/chapool/go-bridge/internal/metrics"
	"github/chapool/go-bridge/internal/util"
	"github/chapool/go-bridge/internal/wallet"
	"github/chapool/go-bridge/internal/wallet/chain"
	"github/chapool/go-bridge/internal/wallet/credential"
)

type service struct {
	registry *chain.Registry
	clients  *wallet.Clients
	resolver *credential.Resolver
	config   Config
	metrics  *metrics.Recorder
}

// NewService creates the deposit service
//
//nolint:ireturn
func NewService(registry *chain.Registry, clients *wallet.Clients, resolver *credential.Resolver, config Config, recorder *metrics.Recorder) Service {
	return &service{
		registry: registry,
		clients:  clients,
		resolver: resolver,
		config:   config.withDefaults(),
		metrics:  recorder,
	}
}

// plan is a validated request.
type plan struct {
	network *chain.NetworkInfo
	token   *chain.Token
	amount  decimal.Decimal
}

func (s *service) Deposit(ctx context.Context, req *Request) (result *wallet.Result, err error) {
	started := time.Now()
	tracker := wallet.NewTracker(ctx, "deposit", req.Network)
	defer func() {
		s.metrics.ObserveOperation("deposit", string(req.Network), err, started)
	}()

	p, err := s.validate(req)
	if err != nil {
		return nil, tracker.Fail(err)
	}

	log := util.LogFromContext(ctx).With().
		Str("network", string(p.network.Name)).
		Str("token", p.token.Symbol).
		Str("amount", p.amount.String()).
		Logger()
	ctx = log.WithContext(ctx)

	tracker.Enter(wallet.StateResolvingCredential)
	key, err := s.resolver.Resolve(ctx, p.network, req.PrivateKey)
	if err != nil {
		return nil, tracker.Fail(err)
	}
	defer key.Zero()

	switch {
	case p.network.IsEVM() && p.token.IsNative():
		result, err = s.depositEVMNative(ctx, tracker, p, key)
	case p.network.IsEVM():
		result, err = s.depositEVMToken(ctx, tracker, p, key)
	default:
		result, err = s.depositSolana(ctx, tracker, p, key)
	}
	if err != nil {
		return result, tracker.Fail(err)
	}

	tracker.Done()

	log.Info().
		Str("tx_id", result.TxID).
		Uint64("block", result.Block).
		Str("explorer", result.Explorer).
		Msg("Deposit confirmed")

	return result, nil
}

// validate rejects bad input before any network I/O.
func (s *service) validate(req *Request) (*plan, error) {
	network, err := s.registry.Network(string(req.Network))
	if err != nil {
		return nil, err
	}

	token, err := s.registry.ResolveToken(network.Name, req.Token)
	if err != nil {
		return nil, err
	}

	amount, err := wallet.ValidateAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	if network.DepositContract == "" {
		return nil, errs.Validation("no exchange deposit contract configured for %s", network.Name)
	}

	if !network.IsEVM() {
		if !token.IsNative() {
			return nil, errs.New(errs.KindUnsupportedToken, "only %s can be deposited on %s", network.NativeSymbol, network.Name)
		}
		if network.Treasury == "" {
			return nil, errs.Validation("no exchange treasury configured for %s", network.Name)
		}
	}

	return &plan{network: network, token: token, amount: amount}, nil
}
