package deposit

import (
	"context"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github/chapool/go-bridge/internal/errs"
	"github/chapool/go-bridge/internal/util"
	"github/chapool/go-bridge/internal/wallet"
	"github/chapool/go-bridge/internal/wallet/chain"
	"github/chapool/go-bridge/internal/wallet/credential"
	"github/chapool/go-bridge/internal/wallet/evm"
)

func (s *service) evmTransactor(p *plan, key *credential.Key) (evm.Client, *evm.Transactor, func(), error) {
	client, err := s.clients.EVMClient(p.network.Name)
	if err != nil {
		return nil, nil, nil, err
	}

	pk, err := key.ECDSA()
	if err != nil {
		return nil, nil, nil, errs.Wrap(errs.KindKeyDerivation, err, "invalid %s key", p.network.Name)
	}

	release := func() { pk.D.SetInt64(0) }

	return client, evm.NewTransactor(client, p.network.ChainID, pk), release, nil
}

// depositEVMNative calls depositNative on the deposit contract with the amount as value.
func (s *service) depositEVMNative(ctx context.Context, tracker *wallet.Tracker, p *plan, key *credential.Key) (*wallet.Result, error) {
	value, err := wallet.ToBaseUnits(p.amount, p.network.NativeDecimals)
	if err != nil {
		return nil, err
	}

	client, transactor, release, err := s.evmTransactor(p, key)
	if err != nil {
		return nil, err
	}
	defer release()

	data, err := evm.PackDepositNative(s.config.Broker)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack depositNative")
	}

	tracker.Enter(wallet.StateSubmitting)
	tx, err := transactor.Send(ctx, common.HexToAddress(p.network.DepositContract), value, data)
	if err != nil {
		return nil, errs.Wrap(errs.KindChainSubmission, err, "depositNative on %s", p.network.Name)
	}

	tracker.Enter(wallet.StateConfirming)
	return s.confirmEVM(ctx, client, p.network, tx, s.config.ConfirmTimeout, nil)
}

// depositEVMToken raises the allowance when needed, then calls deposit on the deposit contract.
// Token precision is always read from chain.
func (s *service) depositEVMToken(ctx context.Context, tracker *wallet.Tracker, p *plan, key *credential.Key) (*wallet.Result, error) {
	log := util.LogFromContext(ctx)

	client, transactor, release, err := s.evmTransactor(p, key)
	if err != nil {
		return nil, err
	}
	defer release()

	token := common.HexToAddress(p.token.Address)
	spender := common.HexToAddress(p.network.DepositContract)

	decimals, err := evm.TokenDecimals(ctx, client, token)
	if err != nil {
		return nil, errs.Wrap(errs.KindNetworkTransport, err, "failed to read %s decimals", p.token.Symbol)
	}

	amount, err := wallet.ToBaseUnits(p.amount, int32(decimals))
	if err != nil {
		return nil, err
	}

	allowance, err := evm.Allowance(ctx, client, token, transactor.From(), spender)
	if err != nil {
		return nil, errs.Wrap(errs.KindNetworkTransport, err, "failed to read %s allowance", p.token.Symbol)
	}

	var approval *wallet.Result
	if allowance.Cmp(amount) < 0 {
		tracker.Enter(wallet.StateApproving)
		log.Info().Str("allowance", allowance.String()).Str("required", amount.String()).Msg("Approving deposit contract")

		approval, err = s.approve(ctx, client, transactor, p, token, spender, amount)
		if err != nil {
			if approval == nil {
				return nil, err
			}
			// no deposit transaction was sent
			failed := wallet.NewResult(p.network, "", 0, wallet.StatusFailed)
			failed.Approval = approval
			return failed, err
		}
	} else {
		log.Debug().Str("allowance", allowance.String()).Msg("Allowance sufficient, skipping approve")
	}

	data, err := evm.PackDeposit(token, amount, s.config.Broker)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack deposit")
	}

	tracker.Enter(wallet.StateSubmitting)
	tx, err := transactor.Send(ctx, spender, nil, data)
	if err != nil {
		return nil, errs.Wrap(errs.KindChainSubmission, err, "deposit %s on %s", p.token.Symbol, p.network.Name)
	}

	tracker.Enter(wallet.StateConfirming)
	return s.confirmEVM(ctx, client, p.network, tx, s.config.ConfirmTimeout, approval)
}

// approve submits an approval for exactly amount and waits for it. An allowance that is still
// short afterwards is a hard failure.
func (s *service) approve(ctx context.Context, client evm.Client, transactor *evm.Transactor, p *plan, token, spender common.Address, amount *big.Int) (*wallet.Result, error) {
	data, err := evm.PackApprove(spender, amount)
	if err != nil {
		return nil, errors.Wrap(err, "failed to pack approve")
	}

	tx, err := transactor.Send(ctx, token, nil, data)
	if err != nil {
		return nil, errs.Wrap(errs.KindChainSubmission, err, "approve %s on %s", p.token.Symbol, p.network.Name)
	}

	result, err := s.confirmEVM(ctx, client, p.network, tx, s.config.ApproveTimeout, nil)
	if err != nil {
		return result, err
	}

	allowance, err := evm.Allowance(ctx, client, token, transactor.From(), spender)
	if err != nil {
		return result, errs.Wrap(errs.KindNetworkTransport, err, "failed to re-read %s allowance", p.token.Symbol)
	}
	if allowance.Cmp(amount) < 0 {
		return result, errs.New(errs.KindChainSubmission, "%s allowance is %s after approval, need %s", p.token.Symbol, allowance, amount)
	}

	return result, nil
}

// confirmEVM waits for tx and builds its final Result. approval is attached as is.
func (s *service) confirmEVM(ctx context.Context, client evm.Client, network *chain.NetworkInfo, tx *types.Transaction, timeout time.Duration, approval *wallet.Result) (*wallet.Result, error) {
	hash := tx.Hash().Hex()
	util.LogFromContext(ctx).Info().Str("tx_hash", hash).Str("explorer", network.ExplorerURL(hash)).Msg("Transaction submitted")

	receipt, err := evm.WaitForReceipt(ctx, client, tx.Hash(), timeout, s.config.PollInterval)
	if err != nil {
		result := wallet.NewResult(network, hash, 0, wallet.StatusFailed)
		result.Approval = approval
		return result, errs.Wrap(errs.KindChainSubmission, err, "transaction %s", hash)
	}

	result := wallet.NewResult(network, hash, receipt.BlockNumber.Uint64(), wallet.StatusConfirmed)
	result.Approval = approval
	return result, nil
}
