package wallet_test

import (
	"math/big"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/go-bridge/internal/errs"
	"github/chapool/go-bridge/internal/wallet"
	"github/chapool/go-bridge/internal/wallet/address"
	"github/chapool/go-bridge/internal/wallet/chain"
	"github/chapool/go-bridge/internal/wallet/credential"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestValidateAmount(t *testing.T) {
	tooLong := "1" + strings.Repeat("0", wallet.MaxAmountDigits)
	for _, bad := range []string{"0", "-5", "abc", "", "  ", "0.000", "1e100000000", "1E3", "5e-3", tooLong} {
		_, err := wallet.ValidateAmount(bad)
		assert.ErrorIs(t, err, errs.ErrValidation, bad)
	}

	for _, good := range []string{"1.5", "100", " 0.0001 "} {
		d, err := wallet.ValidateAmount(good)
		require.NoError(t, err, good)
		assert.True(t, d.IsPositive())
	}
}

func TestCheckWithdrawMinimum(t *testing.T) {
	half := decimal.RequireFromString("0.5")

	usdt := &chain.Token{Symbol: "USDT", Stablecoin: true}
	err := wallet.CheckWithdrawMinimum(usdt, half)
	require.ErrorIs(t, err, errs.ErrMinimumAmount)

	eth := &chain.Token{Symbol: "ETH", Kind: chain.KindNative}
	require.NoError(t, wallet.CheckWithdrawMinimum(eth, half))

	require.NoError(t, wallet.CheckWithdrawMinimum(usdt, decimal.NewFromInt(1)))
}

func TestBaseUnits(t *testing.T) {
	v, err := wallet.ToBaseUnits(decimal.RequireFromString("1.5"), 18)
	require.NoError(t, err)
	assert.Equal(t, "1500000000000000000", v.String())

	v, err = wallet.ToBaseUnits(decimal.RequireFromString("12.345678"), 6)
	require.NoError(t, err)
	assert.Equal(t, "12345678", v.String())

	_, err = wallet.ToBaseUnits(decimal.RequireFromString("0.0000001"), 6)
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = wallet.ToBaseUnits(decimal.NewFromInt(1), chain.DecimalsUnknown)
	require.ErrorIs(t, err, errs.ErrValidation)

	// 2^256-1 fits, one more does not
	maxUint := "115792089237316195423570985008687907853269984665640564039457584007913129639935"
	v, err = wallet.ToBaseUnits(decimal.RequireFromString(maxUint), 0)
	require.NoError(t, err)
	assert.Equal(t, maxUint, v.String())

	_, err = wallet.ToBaseUnits(decimal.RequireFromString("115792089237316195423570985008687907853269984665640564039457584007913129639936"), 0)
	require.ErrorIs(t, err, errs.ErrValidation)

	_, err = wallet.ToBaseUnits(decimal.RequireFromString("1000000000000000000000000000000000000000000000000000000000000000"), 18)
	require.ErrorIs(t, err, errs.ErrValidation)

	// exponent form built directly, bypassing ValidateAmount, is bounded before scaling
	_, err = wallet.ToBaseUnits(decimal.New(1, 100000000), 18)
	require.ErrorIs(t, err, errs.ErrValidation)
	_, err = wallet.ToBaseUnits(decimal.New(1, -100000000), 18)
	require.ErrorIs(t, err, errs.ErrValidation)

	assert.Equal(t, "0.000001", wallet.FromBaseUnits(big.NewInt(1), 6).String())
	assert.True(t, wallet.FromBaseUnits(nil, 6).IsZero())
}

func TestTrackerTransitions(t *testing.T) {
	tr := wallet.NewTracker(t.Context(), "deposit", chain.BSC)
	assert.Equal(t, wallet.StateValidating, tr.State())

	tr.Enter(wallet.StateResolvingCredential)
	tr.Enter(wallet.StateSubmitting)
	cause := errors.New("rpc down")
	assert.Equal(t, cause, tr.Fail(cause))

	// terminal
	tr.Enter(wallet.StateConfirming)
	tr.Done()

	assert.Equal(t, []wallet.State{
		wallet.StateValidating,
		wallet.StateResolvingCredential,
		wallet.StateSubmitting,
		wallet.StateFailed,
	}, tr.History())
}

func TestNewResultExplorer(t *testing.T) {
	info, err := chain.DefaultRegistry().Network("bsc")
	require.NoError(t, err)

	res := wallet.NewResult(info, "0xabc", 12, wallet.StatusConfirmed)
	assert.Equal(t, "https://bscscan.com/tx/0xabc", res.Explorer)
	assert.Equal(t, chain.BSC, res.Network)
}

func TestAccounts(t *testing.T) {
	resolver := credential.NewResolver(address.NewService(), map[chain.Network]credential.Source{
		chain.Ethereum: {Mnemonic: testMnemonic},
		chain.BSC:      {PrivateKey: "0x4c0883a69102937d6231471b5dbb6204fe5129617082792ae468d01a3f362318"},
	})
	svc := wallet.NewService(chain.DefaultRegistry(), resolver)

	accounts, err := svc.Accounts(t.Context())
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	byNetwork := map[chain.Network]*wallet.Account{}
	for _, a := range accounts {
		byNetwork[a.Network] = a
	}
	assert.Equal(t, "0x9858EfFD232B4033E47d90003D41EC34EcaEda94", byNetwork[chain.Ethereum].Address)
	assert.Equal(t, credential.TierMnemonic, byNetwork[chain.Ethereum].Tier)
	assert.Equal(t, "0x2c7536E3605D9C16a7a3D7b1898e529396a65c23", byNetwork[chain.BSC].Address)

	_, err = svc.Account(t.Context(), chain.Solana, "")
	assert.ErrorIs(t, err, errs.ErrNoCredentials)
}
