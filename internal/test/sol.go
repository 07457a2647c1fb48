package test

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github/chapool/go-bridge/internal/wallet/sol"
)

// FakeSolanaRPC is an in-memory sol.RPC. Submitted transactions are confirmed on the next status query.
type FakeSolanaRPC struct {
	mu sync.Mutex

	Lamports map[solana.PublicKey]uint64
	Tokens   map[[2]solana.PublicKey]*sol.TokenAmount // (owner, mint)
	Accounts map[solana.PublicKey]bool

	SendErr error
	FailTx  string // non-empty marks every submitted transaction as failed with this error

	Sent []*solana.Transaction
}

var _ sol.RPC = (*FakeSolanaRPC)(nil)

func NewFakeSolanaRPC() *FakeSolanaRPC {
	return &FakeSolanaRPC{
		Lamports: map[solana.PublicKey]uint64{},
		Tokens:   map[[2]solana.PublicKey]*sol.TokenAmount{},
		Accounts: map[solana.PublicKey]bool{},
	}
}

func (f *FakeSolanaRPC) LatestBlockhash(_ context.Context) (solana.Hash, error) {
	return solana.Hash{1}, nil
}

func (f *FakeSolanaRPC) SendTransaction(_ context.Context, tx *solana.Transaction) (solana.Signature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.SendErr != nil {
		return solana.Signature{}, f.SendErr
	}
	if len(tx.Signatures) == 0 {
		return solana.Signature{}, errors.New("fake: transaction is not signed")
	}

	f.Sent = append(f.Sent, tx)
	return tx.Signatures[0], nil
}

func (f *FakeSolanaRPC) SignatureStatus(_ context.Context, sig solana.Signature) (*sol.SignatureStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, tx := range f.Sent {
		if tx.Signatures[0] == sig {
			return &sol.SignatureStatus{Slot: uint64(1000 + i), Confirmed: true, Err: f.FailTx}, nil
		}
	}
	return nil, nil //nolint:nilnil
}

func (f *FakeSolanaRPC) Balance(_ context.Context, account solana.PublicKey) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Lamports[account], nil
}

func (f *FakeSolanaRPC) TokenBalance(_ context.Context, owner, mint solana.PublicKey) (*sol.TokenAmount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Tokens[[2]solana.PublicKey{owner, mint}], nil
}

func (f *FakeSolanaRPC) AccountExists(_ context.Context, account solana.PublicKey) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Accounts[account], nil
}
