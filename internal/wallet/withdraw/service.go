package withdraw

import (
	"context"
	"math/big"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github/chapool/go-bridge/internal/errs"
	"github/chapool/go-bridge/internal/exchange"
	"github/chapool/go-bridge/internal/metrics"
	"github/chapool/go-bridge/internal/util"
	"github/chapool/go-bridge/internal/wallet"
	"github/chapool/go-bridge/internal/wallet/chain"
	"github/chapool/go-bridge/internal/wallet/credential"
	"github/chapool/go-bridge/internal/wallet/signer"
)

// nonceScale turns the millisecond timestamp into the withdrawal nonce.
const nonceScale = 1000

type service struct {
	registry *chain.Registry
	resolver *credential.Resolver
	exchange Exchange
	metrics  *metrics.Recorder
}

// NewService creates the withdrawal service
//
//nolint:ireturn
func NewService(registry *chain.Registry, resolver *credential.Resolver, ex Exchange, recorder *metrics.Recorder) Service {
	return &service{
		registry: registry,
		resolver: resolver,
		exchange: ex,
		metrics:  recorder,
	}
}

func (s *service) QuoteFee(ctx context.Context, network chain.Network, tokenRef string) (*Quote, error) {
	info, token, err := s.resolve(network, tokenRef)
	if err != nil {
		return nil, err
	}

	return s.quote(ctx, info, token)
}

func (s *service) quote(ctx context.Context, info *chain.NetworkInfo, token *chain.Token) (*Quote, error) {
	asset := strings.ToUpper(token.Symbol)

	fee, err := s.exchange.WithdrawFee(ctx, info.ChainID, asset)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to quote %s withdraw fee on %s", asset, info.Name)
	}

	return &Quote{Network: info.Name, ChainID: info.ChainID, Asset: asset, Fee: fee}, nil
}

func (s *service) resolve(network chain.Network, tokenRef string) (*chain.NetworkInfo, *chain.Token, error) {
	info, err := s.registry.Network(string(network))
	if err != nil {
		return nil, nil, err
	}
	if !info.IsEVM() {
		return nil, nil, errs.New(errs.KindUnsupportedNetwork, "withdrawals to %s are not supported", info.Name)
	}

	token, err := s.registry.ResolveToken(info.Name, tokenRef)
	if err != nil {
		return nil, nil, err
	}
	// the exchange names assets by symbol, an unregistered contract has none
	if !token.IsRegistered() {
		return nil, nil, errs.New(errs.KindUnsupportedToken, "token %s is not registered on %s", tokenRef, info.Name)
	}

	return info, token, nil
}

func (s *service) Withdraw(ctx context.Context, req *Request) (result *Result, err error) {
	started := time.Now()
	tracker := wallet.NewTracker(ctx, "withdraw", req.Network)
	defer func() {
		s.metrics.ObserveOperation("withdraw", string(req.Network), err, started)
	}()

	info, token, err := s.resolve(req.Network, req.Token)
	if err != nil {
		return nil, tracker.Fail(err)
	}

	amount, err := wallet.ValidateAmount(req.Amount)
	if err != nil {
		return nil, tracker.Fail(err)
	}

	if err := wallet.CheckWithdrawMinimum(token, amount); err != nil {
		return nil, tracker.Fail(err)
	}

	receiver := ""
	if strings.TrimSpace(req.Receiver) != "" {
		receiver, err = signer.NormalizeAddress(req.Receiver)
		if err != nil {
			return nil, tracker.Fail(err)
		}
	}

	tracker.Enter(wallet.StateResolvingCredential)
	key, err := s.resolver.Resolve(ctx, info, req.PrivateKey)
	if err != nil {
		return nil, tracker.Fail(err)
	}
	defer key.Zero()

	pk, err := key.ECDSA()
	if err != nil {
		return nil, tracker.Fail(errs.Wrap(errs.KindKeyDerivation, err, "invalid %s key", info.Name))
	}
	defer pk.D.SetInt64(0)

	if receiver == "" {
		if receiver, err = key.Address(); err != nil {
			return nil, tracker.Fail(err)
		}
	}

	tracker.Enter(wallet.StateSubmitting)

	// the quote is fetched per attempt and never reused
	q, err := s.quote(ctx, info, token)
	if err != nil {
		return nil, tracker.Fail(err)
	}

	if !q.Fee.LessThan(amount) {
		return nil, tracker.Fail(errs.Validation("withdraw fee %s %s exceeds amount %s", q.Fee, q.Asset, amount))
	}

	timestamp := s.exchange.Now()
	nonce := new(big.Int).Mul(big.NewInt(timestamp), big.NewInt(nonceScale))

	signature, _, err := signer.SignWithdrawal(&signer.WithdrawAction{
		ChainID:     info.ChainID,
		Destination: receiver,
		Token:       q.Asset,
		Amount:      amount.String(),
		Fee:         q.Fee.String(),
		Nonce:       nonce,
	}, pk)
	if err != nil {
		return nil, tracker.Fail(err)
	}

	log := util.LogFromContext(ctx)
	log.Info().
		Str("network", string(info.Name)).
		Str("asset", q.Asset).
		Str("amount", amount.String()).
		Str("fee", q.Fee.String()).
		Str("receiver", receiver).
		Msg("Submitting withdrawal")

	res, err := s.exchange.Withdraw(ctx, &exchange.WithdrawRequest{
		ChainID:       info.ChainID,
		Asset:         q.Asset,
		Amount:        amount.String(),
		Fee:           q.Fee.String(),
		Receiver:      receiver,
		Nonce:         nonce.String(),
		UserSignature: signature,
		Timestamp:     timestamp,
	})
	if err != nil {
		return nil, tracker.Fail(err)
	}

	tracker.Done()

	log.Info().Str("withdraw_id", string(res.WithdrawID)).Msg("Withdrawal accepted")

	return &Result{
		WithdrawID: string(res.WithdrawID),
		Hash:       res.Hash,
		Network:    info.Name,
		Asset:      q.Asset,
		Amount:     amount,
		Fee:        q.Fee,
		Receiver:   receiver,
		Nonce:      nonce.String(),
	}, nil
}

// NetAmount is what the receiver gets after the fee.
func (r *Result) NetAmount() decimal.Decimal {
	return r.Amount.Sub(r.Fee)
}
