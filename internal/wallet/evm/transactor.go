package evm

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/go-bridge/internal/wallet/signer"
)

const (
	defaultEIP1559Multiplier = 2
	// estimated gas is padded by gasLimitBufferPercent
	gasLimitBufferPercent = 20

	DefaultReceiptPollInterval = 3 * time.Second
)

// ErrReverted is returned when a mined transaction has a failed status.
var ErrReverted = errors.New("transaction reverted")

// Transactor signs and broadcasts EIP-1559 transactions for one key on one chain.
type Transactor struct {
	client  Client
	chainID int64
	key     *ecdsa.PrivateKey
	from    common.Address
}

func NewTransactor(client Client, chainID int64, key *ecdsa.PrivateKey) *Transactor {
	return &Transactor{
		client:  client,
		chainID: chainID,
		key:     key,
		from:    crypto.PubkeyToAddress(key.PublicKey),
	}
}

// From returns the sending address.
func (t *Transactor) From() common.Address {
	return t.from
}

// Send builds, signs and broadcasts a transaction. It does not wait for it to be mined.
func (t *Transactor) Send(ctx context.Context, to common.Address, value *big.Int, data []byte) (*types.Transaction, error) {
	if value == nil {
		value = new(big.Int)
	}

	nonce, err := t.client.PendingNonceAt(ctx, t.from)
	if err != nil {
		return nil, err
	}

	tipCap, err := t.client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, err
	}

	baseFee, err := t.client.BaseFee(ctx)
	if err != nil {
		return nil, err
	}

	maxFee := new(big.Int).Add(
		new(big.Int).Mul(baseFee, big.NewInt(defaultEIP1559Multiplier)),
		tipCap,
	)

	gas, err := t.client.EstimateGas(ctx, ethereum.CallMsg{
		From:  t.from,
		To:    &to,
		Value: value,
		Data:  data,
	})
	if err != nil {
		return nil, err
	}
	gas += gas * gasLimitBufferPercent / 100

	log.Debug().
		Int64("chain_id", t.chainID).
		Uint64("nonce", nonce).
		Uint64("gas", gas).
		Str("max_fee", maxFee.String()).
		Str("tip_cap", tipCap.String()).
		Msg("Prepared EVM transaction")

	tx, err := signer.SignEIP1559Transaction(t.key, &signer.SignEVMRequest{
		ChainID:              t.chainID,
		To:                   to.Hex(),
		Value:                value,
		GasLimit:             gas,
		MaxFeePerGas:         maxFee,
		MaxPriorityFeePerGas: tipCap,
		Nonce:                nonce,
		Data:                 data,
	})
	if err != nil {
		return nil, err
	}

	if err := t.client.SendTransaction(ctx, tx); err != nil {
		return nil, err
	}

	return tx, nil
}

// WaitForReceipt polls until the transaction is mined or timeout passes.
// A mined but failed transaction returns the receipt together with ErrReverted.
func WaitForReceipt(ctx context.Context, client Client, txHash common.Hash, timeout, pollInterval time.Duration) (*types.Receipt, error) {
	if pollInterval <= 0 {
		pollInterval = DefaultReceiptPollInterval
	}

	localCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		receipt, err := client.TransactionReceipt(localCtx, txHash)
		if err == nil {
			if receipt.Status != types.ReceiptStatusSuccessful {
				return receipt, errors.Wrapf(ErrReverted, "tx %s", txHash.Hex())
			}
			return receipt, nil
		}

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, errors.Wrap(err, "timed out waiting for receipt")
		}

		if !errors.Is(err, ethereum.NotFound) {
			return nil, err
		}

		select {
		case <-localCtx.Done():
			return nil, errors.Wrap(localCtx.Err(), "timed out waiting for receipt")
		case <-ticker.C:
			continue
		}
	}
}
