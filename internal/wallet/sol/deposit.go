package sol

import (
	"context"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultDepositOpcode is the instruction tag of the exchange program's deposit entry point.
	DefaultDepositOpcode byte = 1

	DefaultConfirmPollInterval = 2 * time.Second
)

// ErrTransactionFailed is returned when a confirmed transaction carries an error.
var ErrTransactionFailed = errors.New("transaction failed")

// DepositProgram describes the exchange's deposit program.
type DepositProgram struct {
	ProgramID solana.PublicKey
	Treasury  solana.PublicKey
	Seeds     [][]string
	Opcode    byte
	Broker    uint64
}

// BuildDepositInstruction assembles the deposit instruction. Account order is fixed:
// payer (signer), payer PDA, treasury, system program.
func BuildDepositInstruction(program *DepositProgram, payer solana.PublicKey, pda solana.PublicKey, lamports uint64) (solana.Instruction, error) {
	data, err := EncodeDepositData(program.Opcode, program.Broker, lamports)
	if err != nil {
		return nil, err
	}

	return solana.NewInstruction(
		program.ProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(payer, true, true),
			solana.NewAccountMeta(pda, true, false),
			solana.NewAccountMeta(program.Treasury, true, false),
			solana.NewAccountMeta(solana.SystemProgramID, false, false),
		},
		data[:],
	), nil
}

// Depositor signs and submits deposit instructions for one key.
type Depositor struct {
	client  RPC
	program *DepositProgram
	key     solana.PrivateKey
}

func NewDepositor(client RPC, program *DepositProgram, key solana.PrivateKey) *Depositor {
	return &Depositor{client: client, program: program, key: key}
}

// Payer returns the signing account.
func (d *Depositor) Payer() solana.PublicKey {
	return d.key.PublicKey()
}

// Submit builds, signs and sends a deposit of lamports. It does not wait for confirmation.
func (d *Depositor) Submit(ctx context.Context, lamports uint64) (solana.Signature, error) {
	payer := d.Payer()

	pda, err := ResolvePDA(ctx, d.client, d.program.ProgramID, payer, d.program.Seeds)
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to derive payer program address")
	}

	ix, err := BuildDepositInstruction(d.program, payer, pda.Address, lamports)
	if err != nil {
		return solana.Signature{}, err
	}

	blockhash, err := d.client.LatestBlockhash(ctx)
	if err != nil {
		return solana.Signature{}, err
	}

	tx, err := solana.NewTransaction([]solana.Instruction{ix}, blockhash, solana.TransactionPayer(payer))
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to build transaction")
	}

	if _, err := tx.Sign(func(key solana.PublicKey) *solana.PrivateKey {
		if key.Equals(payer) {
			return &d.key
		}
		return nil
	}); err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to sign transaction")
	}

	log.Debug().
		Str("payer", payer.String()).
		Str("pda", pda.Address.String()).
		Uint64("lamports", lamports).
		Msg("Submitting Solana deposit")

	return d.client.SendTransaction(ctx, tx)
}

// WaitConfirmed polls the signature status until confirmed or timeout passes.
func WaitConfirmed(ctx context.Context, client RPC, sig solana.Signature, timeout, pollInterval time.Duration) (*SignatureStatus, error) {
	if pollInterval <= 0 {
		pollInterval = DefaultConfirmPollInterval
	}

	localCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		status, err := client.SignatureStatus(localCtx, sig)
		if err != nil {
			return nil, err
		}

		if status != nil && status.Err != "" {
			return status, errors.Wrapf(ErrTransactionFailed, "%s: %s", sig, status.Err)
		}
		if status != nil && status.Confirmed {
			return status, nil
		}

		select {
		case <-localCtx.Done():
			return nil, errors.Wrap(localCtx.Err(), "timed out waiting for confirmation")
		case <-ticker.C:
		}
	}
}
