package deposit_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-bridge/internal/errs"
	"github/chapool/go-bridge/internal/metrics"
	"github/chapool/go-bridge/internal/test"
	"github/chapool/go-bridge/internal/wallet"
	"github/chapool/go-bridge/internal/wallet/address"
	"github/chapool/go-bridge/internal/wallet/chain"
	"github/chapool/go-bridge/internal/wallet/credential"
	"github/chapool/go-bridge/internal/wallet/deposit"
	"github/chapool/go-bridge/internal/wallet/evm"
	"github/chapool/go-bridge/internal/wallet/sol"
)

const (
	testMnemonic    = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"
	bscKey          = "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"
	bscOwner        = "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23"
	bscUSDT         = "0x55d398326f99059fF775485246999027B3197955"
	depositContract = "0x604DD02d620633Ae427888d41bfd15e38483736E"
	solProgram      = "Es9vMFrzaCERmJfrF4H2FYD4KCoNkY11McCe8BenwNYB"
	solTreasury     = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"
)

type fixture struct {
	svc deposit.Service
	bsc *test.FakeEVMClient
	sol *test.FakeSolanaRPC
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	registry := chain.DefaultRegistry()
	require.NoError(t, registry.Apply(&chain.Overlay{Networks: map[string]chain.NetworkOverlay{
		"bsc":    {DepositContract: depositContract},
		"solana": {DepositContract: solProgram, Treasury: solTreasury},
	}}))

	f := &fixture{bsc: test.NewFakeEVMClient(56), sol: test.NewFakeSolanaRPC()}

	resolver := credential.NewResolver(address.NewService(), map[chain.Network]credential.Source{
		chain.BSC:    {PrivateKey: bscKey},
		chain.Solana: {Mnemonic: testMnemonic},
	})
	clients := &wallet.Clients{EVM: map[chain.Network]evm.Client{chain.BSC: f.bsc}, Solana: f.sol}

	f.svc = deposit.NewService(registry, clients, resolver, deposit.Config{}, metrics.New())
	return f
}

func (f *fixture) addUSDT(allowance *big.Int) *test.FakeToken {
	tok := f.bsc.AddToken(common.HexToAddress(bscUSDT), "USDT", 18)
	tok.Balances[common.HexToAddress(bscOwner)] = new(big.Int).Mul(big.NewInt(1000), big.NewInt(1e18))
	if allowance != nil {
		tok.Allowances[[2]common.Address{common.HexToAddress(bscOwner), common.HexToAddress(depositContract)}] = allowance
	}
	return tok
}

func tokens(n int64) *big.Int {
	return new(big.Int).Mul(big.NewInt(n), big.NewInt(1e18))
}

func TestInvalidAmountsNeverTouchTheNetwork(t *testing.T) {
	f := newFixture(t)
	f.addUSDT(nil)

	for _, amount := range []string{"0", "-5", "abc"} {
		_, err := f.svc.Deposit(t.Context(), &deposit.Request{Network: chain.BSC, Token: "USDT", Amount: amount})
		require.ErrorIs(t, err, errs.ErrValidation, amount)
	}

	assert.Zero(t, f.bsc.Calls)
	assert.Empty(t, f.bsc.Sent)
}

func TestUnsupportedInputs(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Deposit(t.Context(), &deposit.Request{Network: "dogechain", Token: "DOGE", Amount: "1"})
	require.ErrorIs(t, err, errs.ErrUnsupportedNetwork)

	_, err = f.svc.Deposit(t.Context(), &deposit.Request{Network: chain.BSC, Token: "NOPE", Amount: "1"})
	require.ErrorIs(t, err, errs.ErrUnsupportedToken)

	_, err = f.svc.Deposit(t.Context(), &deposit.Request{Network: chain.Ethereum, Token: "ETH", Amount: "1"})
	require.ErrorIs(t, err, errs.ErrValidation, "no deposit contract configured")

	_, err = f.svc.Deposit(t.Context(), &deposit.Request{Network: chain.Solana, Token: "USDC", Amount: "1"})
	require.ErrorIs(t, err, errs.ErrUnsupportedToken)

	assert.Empty(t, f.bsc.Sent)
	assert.Empty(t, f.sol.Sent)
}

func TestNativeDeposit(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Deposit(t.Context(), &deposit.Request{Network: chain.BSC, Token: "bnb", Amount: "1.5"})
	require.NoError(t, err)
	assert.Equal(t, wallet.StatusConfirmed, res.Status)
	assert.NotZero(t, res.Block)
	assert.Contains(t, res.Explorer, "https://bscscan.com/tx/0x")

	require.Len(t, f.bsc.Sent, 1)
	tx := f.bsc.Sent[0]
	assert.Equal(t, common.HexToAddress(depositContract), *tx.To())
	assert.Equal(t, "1500000000000000000", tx.Value().String())

	method, err := evm.DepositABI.MethodById(tx.Data()[:4])
	require.NoError(t, err)
	assert.Equal(t, "depositNative", method.Name)
	args, err := method.Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, big.NewInt(int64(deposit.DefaultBroker)), args[0])
}

func TestTokenDepositWithSufficientAllowanceSkipsApprove(t *testing.T) {
	f := newFixture(t)
	f.addUSDT(tokens(100))

	res, err := f.svc.Deposit(t.Context(), &deposit.Request{Network: chain.BSC, Token: "usdt", Amount: "25"})
	require.NoError(t, err)
	assert.Nil(t, res.Approval)

	selectors := f.bsc.SentSelectors()
	require.Len(t, selectors, 1)
	assert.Equal(t, evm.MethodID(evm.DepositABI, "deposit"), selectors[0])

	args, err := evm.DepositABI.Methods["deposit"].Inputs.Unpack(f.bsc.Sent[0].Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(bscUSDT), args[0])
	assert.Equal(t, tokens(25), args[1])
}

func TestTokenDepositApprovesExactAmount(t *testing.T) {
	f := newFixture(t)
	f.addUSDT(tokens(1))

	res, err := f.svc.Deposit(t.Context(), &deposit.Request{Network: chain.BSC, Token: "USDT", Amount: "25"})
	require.NoError(t, err)
	require.NotNil(t, res.Approval)
	assert.Equal(t, wallet.StatusConfirmed, res.Approval.Status)

	selectors := f.bsc.SentSelectors()
	require.Len(t, selectors, 2)
	assert.Equal(t, evm.MethodID(evm.ERC20ABI, "approve"), selectors[0])
	assert.Equal(t, evm.MethodID(evm.DepositABI, "deposit"), selectors[1])

	args, err := evm.ERC20ABI.Methods["approve"].Inputs.Unpack(f.bsc.Sent[0].Data()[4:])
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress(depositContract), args[0])
	assert.Equal(t, tokens(25), args[1])
}

func TestAllowanceStillShortAfterApproveIsFatal(t *testing.T) {
	f := newFixture(t)
	f.addUSDT(nil)
	f.bsc.SkipApproveEffect = true

	res, err := f.svc.Deposit(t.Context(), &deposit.Request{Network: chain.BSC, Token: "USDT", Amount: "25"})
	require.ErrorIs(t, err, errs.ErrChainSubmission)

	// approve only, no deposit and no retry
	assert.Len(t, f.bsc.Sent, 1)

	require.NotNil(t, res)
	assert.Equal(t, wallet.StatusFailed, res.Status)
	assert.Empty(t, res.TxID)
	require.NotNil(t, res.Approval)
	assert.Equal(t, f.bsc.Sent[0].Hash().Hex(), res.Approval.TxID)
	assert.Equal(t, wallet.StatusConfirmed, res.Approval.Status)
}

func TestSubmissionFailuresAreChainSubmission(t *testing.T) {
	f := newFixture(t)
	f.bsc.SendErr = errors.New("insufficient funds for gas")

	_, err := f.svc.Deposit(t.Context(), &deposit.Request{Network: chain.BSC, Token: "BNB", Amount: "1"})
	require.ErrorIs(t, err, errs.ErrChainSubmission)
	assert.Contains(t, err.Error(), "insufficient funds for gas")
}

func TestRevertedDepositReturnsTransaction(t *testing.T) {
	f := newFixture(t)
	f.bsc.RevertSelectors = [][]byte{evm.MethodID(evm.DepositABI, "depositNative")}

	res, err := f.svc.Deposit(t.Context(), &deposit.Request{Network: chain.BSC, Token: "BNB", Amount: "1"})
	require.ErrorIs(t, err, errs.ErrChainSubmission)
	require.NotNil(t, res)
	assert.Equal(t, wallet.StatusFailed, res.Status)
	assert.NotEmpty(t, res.TxID)
}

func TestExplicitKeyOverridesConfiguration(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.Deposit(t.Context(), &deposit.Request{
		Network:    chain.BSC,
		Token:      "BNB",
		Amount:     "1",
		PrivateKey: "8da4ef21b864d2cc526dbdb2a120bd2874c36c9d0a1fb7f8c63d7f7a8b41de8f",
	})
	require.NoError(t, err)

	require.Len(t, f.bsc.Sent, 1)
	from, err := f.bsc.Sender(f.bsc.Sent[0])
	require.NoError(t, err)
	assert.Equal(t, common.HexToAddress("0x63FaC9201494f0bd17B9892B9fae4d52fe3BD377"), from)
}

func TestSolanaDeposit(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Deposit(t.Context(), &deposit.Request{Network: chain.Solana, Token: "sol", Amount: "0.25"})
	require.NoError(t, err)
	assert.Equal(t, wallet.StatusConfirmed, res.Status)
	assert.Contains(t, res.Explorer, "https://solscan.io/tx/")

	require.Len(t, f.sol.Sent, 1)
	tx := f.sol.Sent[0]
	require.Len(t, tx.Message.Instructions, 1)
	ix := tx.Message.Instructions[0]

	assert.Equal(t, solana.MustPublicKeyFromBase58(solProgram), tx.Message.AccountKeys[ix.ProgramIDIndex])

	opcode, broker, lamports, err := sol.DecodeDepositData(ix.Data)
	require.NoError(t, err)
	assert.Equal(t, sol.DefaultDepositOpcode, opcode)
	assert.Equal(t, deposit.DefaultBroker, broker)
	assert.Equal(t, uint64(250_000_000), lamports)

	require.Len(t, ix.Accounts, 4)
	payer := solana.MustPublicKeyFromBase58("HAgk14JpMQLgt6rVgv7cBQFJWFto5Dqxi472uT3DKpqk")
	assert.Equal(t, payer, tx.Message.AccountKeys[ix.Accounts[0]])
	assert.Equal(t, solana.MustPublicKeyFromBase58(solTreasury), tx.Message.AccountKeys[ix.Accounts[2]])
	assert.Equal(t, solana.SystemProgramID, tx.Message.AccountKeys[ix.Accounts[3]])

	pda, err := sol.DerivePDA(solana.MustPublicKeyFromBase58(solProgram), payer, nil)
	require.NoError(t, err)
	assert.Equal(t, pda.Address, tx.Message.AccountKeys[ix.Accounts[1]])
}

func TestSolanaFailedTransaction(t *testing.T) {
	f := newFixture(t)
	f.sol.FailTx = "custom program error: 0x1"

	res, err := f.svc.Deposit(t.Context(), &deposit.Request{Network: chain.Solana, Token: "SOL", Amount: "1"})
	require.ErrorIs(t, err, errs.ErrChainSubmission)
	require.NotNil(t, res)
	assert.Equal(t, wallet.StatusFailed, res.Status)
}
