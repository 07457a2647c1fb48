package sol

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/pkg/errors"
)

// SignatureStatus is the confirmation state of a submitted transaction.
type SignatureStatus struct {
	Slot      uint64
	Confirmed bool
	Err       string // non-empty when the transaction failed on chain
}

// TokenAmount is a raw SPL token balance.
type TokenAmount struct {
	Amount   *big.Int
	Decimals uint8
}

// RPC is the subset of Solana JSON-RPC the bridge needs.
type RPC interface {
	LatestBlockhash(ctx context.Context) (solana.Hash, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	// SignatureStatus returns nil while the cluster has not seen the signature.
	SignatureStatus(ctx context.Context, sig solana.Signature) (*SignatureStatus, error)
	Balance(ctx context.Context, account solana.PublicKey) (uint64, error)
	// TokenBalance returns nil when the owner holds no account for mint.
	TokenBalance(ctx context.Context, owner, mint solana.PublicKey) (*TokenAmount, error)
	AccountExists(ctx context.Context, account solana.PublicKey) (bool, error)
}

type rpcClient struct {
	client *rpc.Client
}

// NewRPC returns an RPC backed by a JSON-RPC endpoint.
//
//nolint:ireturn
func NewRPC(endpoint string) RPC {
	return &rpcClient{client: rpc.New(endpoint)}
}

func (r *rpcClient) LatestBlockhash(ctx context.Context) (solana.Hash, error) {
	res, err := r.client.GetLatestBlockhash(ctx, rpc.CommitmentFinalized)
	if err != nil {
		return solana.Hash{}, errors.Wrap(err, "failed to get latest blockhash")
	}
	return res.Value.Blockhash, nil
}

func (r *rpcClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	sig, err := r.client.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		PreflightCommitment: rpc.CommitmentConfirmed,
	})
	if err != nil {
		return solana.Signature{}, errors.Wrap(err, "failed to send transaction")
	}
	return sig, nil
}

func (r *rpcClient) SignatureStatus(ctx context.Context, sig solana.Signature) (*SignatureStatus, error) {
	res, err := r.client.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get signature status")
	}
	if res == nil || len(res.Value) == 0 || res.Value[0] == nil {
		return nil, nil //nolint:nilnil
	}

	st := res.Value[0]
	status := &SignatureStatus{
		Slot: st.Slot,
		Confirmed: st.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
			st.ConfirmationStatus == rpc.ConfirmationStatusFinalized,
	}
	if st.Err != nil {
		status.Err = fmt.Sprint(st.Err)
	}

	return status, nil
}

func (r *rpcClient) Balance(ctx context.Context, account solana.PublicKey) (uint64, error) {
	res, err := r.client.GetBalance(ctx, account, rpc.CommitmentConfirmed)
	if err != nil {
		return 0, errors.Wrap(err, "failed to get balance")
	}
	return res.Value, nil
}

// parsedTokenAccount is the jsonParsed encoding of an SPL token account.
type parsedTokenAccount struct {
	Parsed struct {
		Info struct {
			TokenAmount struct {
				Amount   string `json:"amount"`
				Decimals uint8  `json:"decimals"`
			} `json:"tokenAmount"`
		} `json:"info"`
	} `json:"parsed"`
}

func (r *rpcClient) TokenBalance(ctx context.Context, owner, mint solana.PublicKey) (*TokenAmount, error) {
	res, err := r.client.GetTokenAccountsByOwner(ctx, owner,
		&rpc.GetTokenAccountsConfig{Mint: mint.ToPointer()},
		&rpc.GetTokenAccountsOpts{Encoding: solana.EncodingJSONParsed, Commitment: rpc.CommitmentConfirmed},
	)
	if err != nil {
		return nil, errors.Wrap(err, "failed to get token accounts")
	}
	if res == nil || len(res.Value) == 0 {
		return nil, nil //nolint:nilnil
	}

	raw := make([]json.RawMessage, 0, len(res.Value))
	for _, acc := range res.Value {
		if acc == nil || acc.Account.Data == nil {
			continue
		}
		raw = append(raw, acc.Account.Data.GetRawJSON())
	}

	return sumParsedTokenAccounts(raw)
}

// sumParsedTokenAccounts adds up the balances of every account the owner holds for a mint.
func sumParsedTokenAccounts(raw []json.RawMessage) (*TokenAmount, error) {
	if len(raw) == 0 {
		return nil, nil //nolint:nilnil
	}

	total := &TokenAmount{Amount: new(big.Int)}
	for _, msg := range raw {
		var acc parsedTokenAccount
		if err := json.Unmarshal(msg, &acc); err != nil {
			return nil, errors.Wrap(err, "failed to decode token account")
		}

		amount, ok := new(big.Int).SetString(acc.Parsed.Info.TokenAmount.Amount, 10)
		if !ok {
			return nil, errors.Errorf("invalid token amount %q", acc.Parsed.Info.TokenAmount.Amount)
		}

		total.Amount.Add(total.Amount, amount)
		total.Decimals = acc.Parsed.Info.TokenAmount.Decimals
	}

	return total, nil
}

func (r *rpcClient) AccountExists(ctx context.Context, account solana.PublicKey) (bool, error) {
	_, err := r.client.GetAccountInfo(ctx, account)
	if errors.Is(err, rpc.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "failed to get account info")
	}
	return true, nil
}
