package deposit

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github/chapool/go-bridge/internal/errs"
	"github/chapool/go-bridge/internal/util"
	"github/chapool/go-bridge/internal/wallet"
	"github/chapool/go-bridge/internal/wallet/credential"
	"github/chapool/go-bridge/internal/wallet/seed"
	"github/chapool/go-bridge/internal/wallet/sol"
)

// depositSolana submits the exchange program's deposit instruction for native SOL.
func (s *service) depositSolana(ctx context.Context, tracker *wallet.Tracker, p *plan, key *credential.Key) (*wallet.Result, error) {
	lamports, err := wallet.ToBaseUnits(p.amount, p.network.NativeDecimals)
	if err != nil {
		return nil, err
	}
	if !lamports.IsUint64() {
		return nil, errs.Validation("amount %s does not fit a u64 lamport value", p.amount)
	}

	programID, err := solana.PublicKeyFromBase58(p.network.DepositContract)
	if err != nil {
		return nil, errs.Wrap(errs.KindValidation, err, "invalid deposit program %q", p.network.DepositContract)
	}
	treasury, err := solana.PublicKeyFromBase58(p.network.Treasury)
	if err != nil {
		return nil, errs.Wrap(errs.KindValidation, err, "invalid treasury %q", p.network.Treasury)
	}

	client, err := s.clients.SolanaRPC()
	if err != nil {
		return nil, err
	}

	pk, err := key.Solana()
	if err != nil {
		return nil, errs.Wrap(errs.KindKeyDerivation, err, "invalid %s key", p.network.Name)
	}
	defer seed.Zero(pk)

	depositor := sol.NewDepositor(client, &sol.DepositProgram{
		ProgramID: programID,
		Treasury:  treasury,
		Seeds:     p.network.PDASeeds,
		Opcode:    s.config.SolanaOpcode,
		Broker:    s.config.Broker,
	}, pk)

	tracker.Enter(wallet.StateSubmitting)
	sig, err := depositor.Submit(ctx, lamports.Uint64())
	if err != nil {
		return nil, errs.Wrap(errs.KindChainSubmission, err, "deposit on %s", p.network.Name)
	}

	txID := sig.String()
	util.LogFromContext(ctx).Info().Str("signature", txID).Str("explorer", p.network.ExplorerURL(txID)).Msg("Transaction submitted")

	tracker.Enter(wallet.StateConfirming)
	status, err := sol.WaitConfirmed(ctx, client, sig, s.config.ConfirmTimeout, s.config.PollInterval)
	if err != nil {
		return wallet.NewResult(p.network, txID, 0, wallet.StatusFailed), errs.Wrap(errs.KindChainSubmission, err, "transaction %s", txID)
	}

	return wallet.NewResult(p.network, txID, status.Slot, wallet.StatusConfirmed), nil
}
