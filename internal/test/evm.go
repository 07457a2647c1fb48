package test

import (
	"bytes"
	"context"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/pkg/errors"
	"github/chapool/go-bridge/internal/wallet/evm"
)

// FakeToken is the on-chain state of one ERC20 contract in FakeEVMClient.
type FakeToken struct {
	Decimals   uint8
	Symbol     string
	Balances   map[common.Address]*big.Int
	Allowances map[[2]common.Address]*big.Int // (owner, spender)
}

// FakeEVMClient is an in-memory evm.Client. Approve transactions update allowances
// so the approve-then-deposit flow can be exercised end to end.
type FakeEVMClient struct {
	mu sync.Mutex

	ChainIDValue int64
	Native       map[common.Address]*big.Int
	Tokens       map[common.Address]*FakeToken

	// SendErr fails every broadcast.
	SendErr error
	// RevertSelectors marks contract calls that are mined with a failed status.
	RevertSelectors [][]byte
	// SkipApproveEffect leaves allowances unchanged after approve is mined.
	SkipApproveEffect bool

	Sent  []*types.Transaction
	Calls int

	receipts map[common.Hash]*types.Receipt
}

var _ evm.Client = (*FakeEVMClient)(nil)

func NewFakeEVMClient(chainID int64) *FakeEVMClient {
	return &FakeEVMClient{
		ChainIDValue: chainID,
		Native:       map[common.Address]*big.Int{},
		Tokens:       map[common.Address]*FakeToken{},
		receipts:     map[common.Hash]*types.Receipt{},
	}
}

// AddToken registers an ERC20 contract.
func (f *FakeEVMClient) AddToken(addr common.Address, symbol string, decimals uint8) *FakeToken {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := &FakeToken{
		Decimals:   decimals,
		Symbol:     symbol,
		Balances:   map[common.Address]*big.Int{},
		Allowances: map[[2]common.Address]*big.Int{},
	}
	f.Tokens[addr] = t
	return t
}

// SentSelectors returns the 4-byte selector of each broadcast transaction, nil for plain transfers.
func (f *FakeEVMClient) SentSelectors() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([][]byte, 0, len(f.Sent))
	for _, tx := range f.Sent {
		if len(tx.Data()) < 4 {
			out = append(out, nil)
			continue
		}
		out = append(out, tx.Data()[:4])
	}
	return out
}

// Sender recovers the signer of a broadcast transaction.
func (f *FakeEVMClient) Sender(tx *types.Transaction) (common.Address, error) {
	return types.Sender(types.NewLondonSigner(big.NewInt(f.ChainIDValue)), tx)
}

func (f *FakeEVMClient) ChainID(_ context.Context) (*big.Int, error) {
	return big.NewInt(f.ChainIDValue), nil
}

func (f *FakeEVMClient) BalanceAt(_ context.Context, account common.Address) (*big.Int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if b, ok := f.Native[account]; ok {
		return new(big.Int).Set(b), nil
	}
	return new(big.Int), nil
}

func (f *FakeEVMClient) CallContract(_ context.Context, msg ethereum.CallMsg) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls++

	if msg.To == nil || len(msg.Data) < 4 {
		return nil, errors.New("fake: invalid call")
	}

	token, ok := f.Tokens[*msg.To]
	if !ok {
		return nil, errors.New("execution reverted")
	}

	abiDef := evm.ERC20ABI
	method, err := abiDef.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}

	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, err
	}

	switch method.Name {
	case "balanceOf":
		return method.Outputs.Pack(valueOrZero(token.Balances[args[0].(common.Address)])) //nolint:forcetypeassert
	case "decimals":
		return method.Outputs.Pack(token.Decimals)
	case "symbol":
		return method.Outputs.Pack(token.Symbol)
	case "allowance":
		key := [2]common.Address{args[0].(common.Address), args[1].(common.Address)} //nolint:forcetypeassert
		return method.Outputs.Pack(valueOrZero(token.Allowances[key]))
	default:
		return nil, errors.Errorf("fake: %s is not a view", method.Name)
	}
}

func (f *FakeEVMClient) PendingNonceAt(_ context.Context, _ common.Address) (uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return uint64(len(f.Sent)), nil
}

func (f *FakeEVMClient) SuggestGasTipCap(_ context.Context) (*big.Int, error) {
	return big.NewInt(1_000_000_000), nil
}

func (f *FakeEVMClient) BaseFee(_ context.Context) (*big.Int, error) {
	return big.NewInt(2_000_000_000), nil
}

func (f *FakeEVMClient) EstimateGas(_ context.Context, _ ethereum.CallMsg) (uint64, error) {
	return 60_000, nil
}

func (f *FakeEVMClient) SendTransaction(_ context.Context, tx *types.Transaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.SendErr != nil {
		return f.SendErr
	}

	f.Sent = append(f.Sent, tx)

	status := types.ReceiptStatusSuccessful
	if len(tx.Data()) >= 4 {
		for _, sel := range f.RevertSelectors {
			if bytes.Equal(tx.Data()[:4], sel) {
				status = types.ReceiptStatusFailed
			}
		}
	}

	if status == types.ReceiptStatusSuccessful {
		f.applyApprove(tx)
	}

	f.receipts[tx.Hash()] = &types.Receipt{
		Status:      status,
		TxHash:      tx.Hash(),
		BlockNumber: big.NewInt(int64(100 + len(f.Sent))),
	}

	return nil
}

func (f *FakeEVMClient) applyApprove(tx *types.Transaction) {
	if f.SkipApproveEffect || tx.To() == nil || len(tx.Data()) < 4 {
		return
	}
	if !bytes.Equal(tx.Data()[:4], evm.MethodID(evm.ERC20ABI, "approve")) {
		return
	}

	token, ok := f.Tokens[*tx.To()]
	if !ok {
		return
	}

	args, err := evm.ERC20ABI.Methods["approve"].Inputs.Unpack(tx.Data()[4:])
	if err != nil {
		return
	}

	from, err := f.Sender(tx)
	if err != nil {
		return
	}

	token.Allowances[[2]common.Address{from, args[0].(common.Address)}] = args[1].(*big.Int) //nolint:forcetypeassert
}

func (f *FakeEVMClient) TransactionReceipt(_ context.Context, txHash common.Hash) (*types.Receipt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	r, ok := f.receipts[txHash]
	if !ok {
		return nil, ethereum.NotFound
	}
	return r, nil
}

func valueOrZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
